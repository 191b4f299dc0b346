package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/parcel-planner/internal/i18n"
	"github.com/eugenenazirov/parcel-planner/internal/metrics"
	"github.com/eugenenazirov/parcel-planner/internal/packing"
	"github.com/eugenenazirov/parcel-planner/internal/storage"
	"github.com/eugenenazirov/parcel-planner/internal/units"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// DefaultMaxUnits caps the number of physical units accepted in one request.
const DefaultMaxUnits = 10000

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	planner    packing.Planner
	storage    storage.Storage
	logger     *zap.Logger
	metrics    *metrics.Metrics
	translator *i18n.Translator
	maxUnits   int

	clock func() time.Time

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger sets the logger used to report plan outcomes.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPlanMetrics records plan durations and outcomes in m.
func WithPlanMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithTranslator replaces the built-in translator.
func WithTranslator(t *i18n.Translator) HandlerOption {
	return func(h *Handler) {
		if t != nil {
			h.translator = t
		}
	}
}

// WithMaxUnits limits the units a single pack request may expand to.
func WithMaxUnits(limit int) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxUnits = limit
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(planner packing.Planner, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		planner:    planner,
		storage:    store,
		logger:     zap.NewNop(),
		translator: i18n.NewTranslator(),
		maxUnits:   DefaultMaxUnits,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.storage.ListBoxes(r.Context())
	if err != nil {
		h.writeInternalError(w, r, err)
		return
	}

	resp := boxesResponse{
		Boxes:     boxes,
		UpdatedAt: h.currentCatalogUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutBoxes(w http.ResponseWriter, r *http.Request) {
	locale := h.translator.LocaleFromRequest(r)

	var req boxesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), "unable to parse JSON payload")
		return
	}

	if len(req.Boxes) == 0 {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidCatalog, locale), "boxes must contain at least one box")
		return
	}

	boxes, err := toBoxes(req.Boxes)
	if err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidCatalog, locale), err.Error())
		return
	}

	if err := h.storage.ReplaceBoxes(r.Context(), boxes); err != nil {
		if errors.Is(err, storage.ErrInvalidCatalog) {
			writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidCatalog, locale), err.Error())
			return
		}
		h.writeInternalError(w, r, err)
		return
	}

	h.markCatalogUpdated()
	h.logger.Info("box catalog replaced",
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Int("boxes", len(boxes)),
	)

	stored, err := h.storage.ListBoxes(r.Context())
	if err != nil {
		h.writeInternalError(w, r, err)
		return
	}

	resp := boxesResponse{
		Boxes:     stored,
		UpdatedAt: h.currentCatalogUpdatedAt(),
		Message:   h.translator.Translate(i18n.SuccessKeyCatalogUpdated, locale),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	locale := h.translator.LocaleFromRequest(r)

	var req packRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), "unable to parse JSON payload")
		return
	}

	q, total, err := quantities(req.Items, h.maxUnits)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	planner, err := h.plannerFor(req.Options)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	catalog, err := h.catalogFor(r.Context(), req.Boxes)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	start := time.Now()
	plan, planErr := planner.Plan(q, catalog)
	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.RecordPlan(elapsed, len(plan.Parcels), planErr)
	}

	fields := []zap.Field{
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Int("units", total),
		zap.Int("catalog_boxes", len(catalog)),
		zap.String("strategy", string(planner.Strategy())),
		zap.Duration("duration", elapsed),
	}
	if planErr != nil {
		h.logger.Info("packing plan rejected", append(fields, zap.Error(planErr))...)
		h.writeRequestError(w, r, planErr)
		return
	}
	h.logger.Debug("packing plan computed", append(fields, zap.Int("parcels", len(plan.Parcels)))...)

	resp := toPackResponse(plan)
	resp.Strategy = string(planner.Strategy())
	resp.MaxWeight = planner.MaxWeight()
	resp.CalculationTimeMs = elapsed.Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	locale := h.translator.LocaleFromRequest(r)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), "unable to parse JSON payload")
		return
	}

	box, err := req.Box.toBox()
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}
	q, _, err := quantities(req.Items, h.maxUnits)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}
	planner, err := h.plannerFor(req.Options)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Box:        box,
		Sufficient: planner.IsSingleBoxSufficient(q, box),
	})
}

func (h *Handler) handleRemainingSpace(w http.ResponseWriter, r *http.Request) {
	locale := h.translator.LocaleFromRequest(r)

	var req spaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), "unable to parse JSON payload")
		return
	}

	item, box, err := itemAndBox(req.Item, req.Box)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	report, err := packing.SpaceAfterPacking(item, box)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	blocks := report.Blocks
	if blocks == nil {
		blocks = []packing.Dimensions{}
	}
	writeJSON(w, http.StatusOK, spaceResponse{
		RemainingVolume: report.RemainingVolume,
		RemainingBlocks: blocks,
	})
}

func (h *Handler) handleHowManyFit(w http.ResponseWriter, r *http.Request) {
	locale := h.translator.LocaleFromRequest(r)

	var req howManyFitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), "unable to parse JSON payload")
		return
	}

	item, box, err := itemAndBox(req.Item, req.Box)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	limit := req.MaxPacked
	if limit <= 0 || limit > h.maxUnits {
		limit = h.maxUnits
	}
	report, err := packing.HowManyFit(item, box, limit)
	if err != nil {
		h.writeRequestError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, howManyFitResponse{
		TotalPacked:     report.TotalPacked,
		RemainingVolume: report.RemainingVolume,
	})
}

// plannerFor returns the configured planner, or a new one when the request
// overrides the weight ceiling or strategy.
func (h *Handler) plannerFor(opts packOptions) (packing.Planner, error) {
	if opts.MaxWeight < 0 {
		return nil, fmt.Errorf("%w: maxWeight must be positive", errInvalidPayload)
	}
	if opts.MaxWeight == 0 && opts.Strategy == "" {
		return h.planner, nil
	}

	strategy := h.planner.Strategy()
	if opts.Strategy != "" {
		s, err := packing.ParseStrategy(opts.Strategy)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidPayload, err)
		}
		strategy = s
	}
	maxWeight := h.planner.MaxWeight()
	if opts.MaxWeight > 0 {
		maxWeight = opts.MaxWeight
	}
	return packing.New(packing.WithMaxWeight(maxWeight), packing.WithStrategy(strategy)), nil
}

// catalogFor returns the boxes supplied with the request, or the stored
// catalog when none were supplied.
func (h *Handler) catalogFor(ctx context.Context, payloads []boxPayload) ([]packing.Box, error) {
	if len(payloads) == 0 {
		return h.storage.ListBoxes(ctx)
	}
	boxes, err := toBoxes(payloads)
	if err != nil {
		return nil, err
	}
	if err := packing.UniqueNames(boxes); err != nil {
		return nil, err
	}
	if err := storage.ValidateCatalog(boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

func itemAndBox(item, box measurement) (packing.Dimensions, packing.Dimensions, error) {
	itemDims, err := item.dimensions()
	if err != nil {
		return packing.Dimensions{}, packing.Dimensions{}, err
	}
	boxDims, err := box.dimensions()
	if err != nil {
		return packing.Dimensions{}, packing.Dimensions{}, err
	}
	return itemDims, boxDims, nil
}

// writeRequestError maps domain and validation errors onto HTTP responses.
func (h *Handler) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	locale := h.translator.LocaleFromRequest(r)

	if boxErr, ok := packing.AsBoxError(err); ok {
		message := h.translator.Translate(i18n.KeyForReason(boxErr.Reason), locale)
		switch boxErr.Reason {
		case packing.ReasonDuplicateBoxes:
			writeError(w, http.StatusUnprocessableEntity, message, boxErr.Message)
		case packing.ReasonItemUnpackable:
			writeError(w, http.StatusUnprocessableEntity, message, boxErr.Message,
				h.translator.Translate(i18n.SuggestionKeyRaiseMaxWeight, locale))
		default:
			writeError(w, http.StatusUnprocessableEntity, message, boxErr.Message,
				h.translator.Translate(i18n.SuggestionKeyLargerBoxes, locale))
		}
		return
	}

	switch {
	case errors.Is(err, errInvalidPayload),
		errors.Is(err, packing.ErrInvalidMeasurement),
		errors.Is(err, storage.ErrInvalidCatalog),
		errors.Is(err, units.ErrUnknownUnit):
		writeError(w, http.StatusBadRequest, h.translator.Translate(i18n.ErrKeyInvalidRequest, locale), err.Error())
	default:
		h.writeInternalError(w, r, err)
	}
}

func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Error(err),
	)
	locale := h.translator.LocaleFromRequest(r)
	writeError(w, http.StatusInternalServerError, h.translator.Translate(i18n.ErrKeyInternalError, locale), err.Error())
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}
