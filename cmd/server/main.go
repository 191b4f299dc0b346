package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/eugenenazirov/parcel-planner/internal/application"
	"github.com/eugenenazirov/parcel-planner/internal/config"
	"github.com/eugenenazirov/parcel-planner/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("parcel-planner", "Parcel Planner - packs shipments into the fewest, smallest boxes")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	maxWeightFlag := kingpinApp.Flag("max-weight", "Parcel weight ceiling in grams, box included").Default("0").Float64()
	strategy := kingpinApp.Flag("strategy", "Packing strategy (smallest_first or fewest_parcels)").String()
	storageDriver := kingpinApp.Flag("storage-driver", "Catalog storage driver (memory or sqlite)").String()
	storageDSN := kingpinApp.Flag("storage-dsn", "Catalog storage data source name").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	serveCmd := kingpinApp.Command("serve", "Run the HTTP service").Default()
	packCmd := kingpinApp.Command("pack", "Plan a shipment described in a YAML or JSON file")
	requestFile := packCmd.Flag("request", "Path to the plan request file").Required().ExistingFile()
	format := packCmd.Flag("format", "Output format").Default("text").Enum("text", "json")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile:    *configFile,
		Port:          port,
		Strategy:      strategy,
		StorageDriver: storageDriver,
		StorageDSN:    storageDSN,
		LogLevel:      logLevel,
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	if *maxWeightFlag > 0 {
		overrides.MaxParcelWeight = maxWeightFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	switch command {
	case packCmd.FullCommand():
		if err := runPack(context.Background(), os.Stdout, cfg, *requestFile, *format); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("pack failed: %v", err))
			os.Exit(1)
		}
	case serveCmd.FullCommand():
		serve(cfg)
	}
}

func serve(cfg config.Config) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
