package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/parcel-planner/internal/api"
	"github.com/eugenenazirov/parcel-planner/internal/config"
	"github.com/eugenenazirov/parcel-planner/internal/i18n"
	"github.com/eugenenazirov/parcel-planner/internal/metrics"
	"github.com/eugenenazirov/parcel-planner/internal/packing"
	"github.com/eugenenazirov/parcel-planner/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage      storage.Storage
	closeStorage func() error
	planner      packing.Planner
	metrics      *metrics.Metrics
	handler      *api.Handler
	router       http.Handler
	logger       *zap.Logger
	server       *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, closeStorage, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	if len(cfg.InitialBoxes) > 0 {
		if err := store.ReplaceBoxes(ctx, cfg.InitialBoxes); err != nil {
			_ = closeStorage()
			return nil, fmt.Errorf("failed to apply initial boxes: %w", err)
		}
	}

	planner := packing.New(
		packing.WithMaxWeight(cfg.MaxParcelWeight),
		packing.WithStrategy(cfg.Strategy),
	)

	handlerOpts := []api.HandlerOption{
		api.WithHandlerLogger(logger),
		api.WithTranslator(i18n.NewTranslator()),
		api.WithMaxUnits(cfg.MaxUnits),
	}
	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	var m *metrics.Metrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		m = metrics.New()
		metricsHandler = m.Handler()
		handlerOpts = append(handlerOpts, api.WithPlanMetrics(m))
		routerOpts = append(routerOpts, api.WithMetrics(m))
	}

	handler := api.NewHandler(planner, store, handlerOpts...)
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	logger.Info("application initialised",
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("strategy", string(planner.Strategy())),
		zap.Float64("max_parcel_weight", planner.MaxWeight()),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	return &App{
		storage:      store,
		closeStorage: closeStorage,
		planner:      planner,
		metrics:      m,
		handler:      handler,
		router:       apiRouter,
		logger:       logger,
		server:       NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and, when metricsHandler is
// non-nil, the Prometheus endpoint at /metrics. Everything else is 404.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.Handle("/", http.NotFoundHandler())
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the storage backend. Call it after the server has shut down.
func (a *App) Close() error {
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}
