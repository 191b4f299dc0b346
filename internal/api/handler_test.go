package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/parcel-planner/internal/packing"
	"github.com/eugenenazirov/parcel-planner/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupTestRouter(t *testing.T, opts ...HandlerOption) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	logger := zaptest.NewLogger(t)
	opts = append([]HandlerOption{WithClock(clock.Now), WithHandlerLogger(logger)}, opts...)
	handler := NewHandler(packing.New(), store, opts...)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func item(number string, l, w, h, weight float64, quantity int) map[string]any {
	return map[string]any{
		"itemNumber": number,
		"length":     l,
		"width":      w,
		"height":     h,
		"weight":     weight,
		"quantity":   quantity,
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}

	h := NewHandler(packing.New(), storage.NewMemoryStorage())
	resp := httptest.NewRecorder()
	h.writeInternalError(resp, httptest.NewRequest(http.MethodGet, "/", nil), assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	decode(t, rec, &body)

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetBoxesReturnsDefaults(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/boxes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Boxes     []packing.Box `json:"boxes"`
		UpdatedAt time.Time     `json:"updatedAt"`
	}
	decode(t, rec, &body)

	want := storage.DefaultBoxes()
	if len(body.Boxes) != len(want) {
		t.Fatalf("expected %d boxes, got %d", len(want), len(body.Boxes))
	}
	for i, box := range want {
		if body.Boxes[i] != box {
			t.Fatalf("expected box %+v at position %d, got %+v", box, i, body.Boxes[i])
		}
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutBoxesUpdatesStorage(t *testing.T) {
	router, clock := setupTestRouter(t)

	clock.Advance(time.Hour)

	payload := map[string]any{
		"boxes": []map[string]any{
			{"name": "cube", "length": 10, "width": 10, "height": 10, "weight": 50},
			{"name": "tube", "length": 1, "width": 1, "height": 3, "weight": 0.4, "dimensionUnits": "in", "weightUnits": "oz"},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/boxes", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Boxes     []packing.Box `json:"boxes"`
		UpdatedAt time.Time     `json:"updatedAt"`
		Message   string        `json:"message"`
	}
	decode(t, rec, &body)

	if body.Message == "" {
		t.Fatalf("expected success message, got empty string")
	}
	if len(body.Boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(body.Boxes))
	}
	if body.Boxes[0].Name != "cube" || body.Boxes[1].Name != "tube" {
		t.Fatalf("expected catalog order to be preserved, got %+v", body.Boxes)
	}
	if body.Boxes[1].Height < 7.61 || body.Boxes[1].Height > 7.63 {
		t.Fatalf("expected tube height converted to centimeters, got %v", body.Boxes[1].Height)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}

	get := doJSON(t, router, http.MethodGet, "/api/boxes", nil)
	var listed struct {
		Boxes []packing.Box `json:"boxes"`
	}
	decode(t, get, &listed)
	if len(listed.Boxes) != 2 {
		t.Fatalf("expected stored catalog of 2 boxes, got %d", len(listed.Boxes))
	}
}

func TestPutBoxesValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := map[string]any{
		"empty": map[string]any{"boxes": []any{}},
		"duplicate": map[string]any{"boxes": []map[string]any{
			{"name": "a", "length": 1, "width": 1, "height": 1},
			{"name": "a", "length": 2, "width": 2, "height": 2},
		}},
		"negative": map[string]any{"boxes": []map[string]any{
			{"name": "a", "length": -1, "width": 1, "height": 1},
		}},
		"unnamed": map[string]any{"boxes": []map[string]any{
			{"length": 1, "width": 1, "height": 1},
		}},
	}

	for name, payload := range tests {
		rec := doJSON(t, router, http.MethodPut, "/api/boxes", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", name, rec.Code)
		}
	}
}

func TestPutBoxesRejectsMalformedJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/boxes", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPackEndpointSuccess(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items": []map[string]any{item("mug", 10, 10, 8, 300, 1)},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Box     packing.Box `json:"box"`
		Parcels []struct {
			Box            packing.Box    `json:"box"`
			Items          []string       `json:"items"`
			PackedProducts map[string]int `json:"packedProducts"`
			TotalWeight    float64        `json:"totalWeight"`
		} `json:"parcels"`
		TotalParcels int     `json:"totalParcels"`
		TotalUnits   int     `json:"totalUnits"`
		Strategy     string  `json:"strategy"`
		MaxWeight    float64 `json:"maxWeight"`
	}
	decode(t, rec, &body)

	if body.Box.Name != "small" {
		t.Fatalf("expected small box, got %s", body.Box.Name)
	}
	if body.TotalParcels != 1 || len(body.Parcels) != 1 {
		t.Fatalf("expected a single parcel, got %d", body.TotalParcels)
	}
	if body.TotalUnits != 1 {
		t.Fatalf("expected 1 unit, got %d", body.TotalUnits)
	}
	if len(body.Parcels[0].Items) != 1 || body.Parcels[0].Items[0] != "mug" {
		t.Fatalf("expected parcel to list mug, got %v", body.Parcels[0].Items)
	}
	if body.Parcels[0].PackedProducts["mug"] != 1 {
		t.Fatalf("expected packed products to count mug once, got %v", body.Parcels[0].PackedProducts)
	}
	if body.Parcels[0].TotalWeight != 390 {
		t.Fatalf("expected parcel weight 390 including tare, got %v", body.Parcels[0].TotalWeight)
	}
	if body.Strategy != string(packing.StrategySmallestFirst) {
		t.Fatalf("expected default strategy, got %s", body.Strategy)
	}
	if body.MaxWeight != packing.DefaultMaxWeight {
		t.Fatalf("expected default max weight, got %v", body.MaxWeight)
	}
}

func TestPackEndpointSplitsParcels(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"boxes": []map[string]any{
			{"name": "cube", "length": 10, "width": 10, "height": 10},
		},
		"items": []map[string]any{item("die", 10, 10, 10, 1, 3)},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TotalParcels int `json:"totalParcels"`
		TotalUnits   int `json:"totalUnits"`
	}
	decode(t, rec, &body)

	if body.TotalParcels != 3 {
		t.Fatalf("expected 3 parcels, got %d", body.TotalParcels)
	}
	if body.TotalUnits != 3 {
		t.Fatalf("expected 3 units, got %d", body.TotalUnits)
	}
}

func TestPackEndpointEmptyItems(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/pack", map[string]any{"items": []any{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		TotalParcels int   `json:"totalParcels"`
		Parcels      []any `json:"parcels"`
	}
	decode(t, rec, &body)
	if body.TotalParcels != 0 || len(body.Parcels) != 0 {
		t.Fatalf("expected empty packing, got %d parcels", body.TotalParcels)
	}
}

func TestPackEndpointBoxesTooSmall(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items": []map[string]any{item("sofa", 200, 90, 80, 1000, 1)},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var body errorResponse
	decode(t, rec, &body)
	if body.Error != "Some of your products are too big for your boxes. Please provide larger boxes." {
		t.Fatalf("unexpected error message %q", body.Error)
	}
	if body.Suggestion == "" {
		t.Fatalf("expected suggestion to be populated")
	}
}

func TestPackEndpointLocalisesErrors(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items": []map[string]any{item("sofa", 200, 90, 80, 1000, 1)},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload, "Accept-Language", "pt-BR,pt;q=0.9")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var body errorResponse
	decode(t, rec, &body)
	if body.Error != "Alguns produtos são grandes demais para as caixas. Forneça caixas maiores." {
		t.Fatalf("expected portuguese message, got %q", body.Error)
	}
}

func TestPackEndpointItemTooHeavy(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items":   []map[string]any{item("anvil", 10, 10, 8, 500, 1)},
		"options": map[string]any{"maxWeight": 400},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var body errorResponse
	decode(t, rec, &body)
	if body.Suggestion != "Raise max_weight or use lighter boxes" {
		t.Fatalf("expected weight suggestion, got %q", body.Suggestion)
	}
}

func TestPackEndpointRejectsDuplicateRequestBoxes(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"boxes": []map[string]any{
			{"name": "a", "length": 10, "width": 10, "height": 10},
			{"name": "a", "length": 20, "width": 20, "height": 20},
		},
		"items": []map[string]any{item("die", 5, 5, 5, 1, 1)},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestPackEndpointValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t, WithMaxUnits(5))

	tests := map[string]any{
		"unknown unit": map[string]any{
			"items": []map[string]any{{"itemNumber": "a", "length": 1, "width": 1, "height": 1, "quantity": 1, "dimensionUnits": "furlong"}},
		},
		"negative dimension": map[string]any{
			"items": []map[string]any{item("a", -1, 1, 1, 1, 1)},
		},
		"negative quantity": map[string]any{
			"items": []map[string]any{item("a", 1, 1, 1, 1, -1)},
		},
		"missing item number": map[string]any{
			"items": []map[string]any{{"length": 1, "width": 1, "height": 1, "quantity": 1}},
		},
		"too many units": map[string]any{
			"items": []map[string]any{item("a", 1, 1, 1, 1, 6)},
		},
		"overflowing repeated item": map[string]any{
			"items": []map[string]any{item("a", 5, 5, 5, 1, math.MaxInt64), item("a", 5, 5, 5, 1, 2)},
		},
		"overflowing across items": map[string]any{
			"items": []map[string]any{
				item("a", 5, 5, 5, 1, math.MaxInt64),
				item("b", 5, 5, 5, 1, math.MaxInt64),
				item("c", 5, 5, 5, 1, 3),
			},
		},
		"unknown strategy": map[string]any{
			"items":   []map[string]any{item("a", 1, 1, 1, 1, 1)},
			"options": map[string]any{"strategy": "random"},
		},
		"negative max weight": map[string]any{
			"items":   []map[string]any{item("a", 1, 1, 1, 1, 1)},
			"options": map[string]any{"maxWeight": -5},
		},
		"conflicting measurements": map[string]any{
			"items": []map[string]any{item("a", 1, 1, 1, 1, 1), item("a", 2, 2, 2, 1, 1)},
		},
	}

	for name, payload := range tests {
		rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestPackEndpointConvertsUnits(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items": []map[string]any{{
			"itemNumber":     "book",
			"length":         4,
			"width":          4,
			"height":         3,
			"weight":         1,
			"quantity":       1,
			"dimensionUnits": "in",
			"weightUnits":    "lb",
		}},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Box packing.Box `json:"box"`
	}
	decode(t, rec, &body)
	if body.Box.Name != "small" {
		t.Fatalf("expected small box, got %s", body.Box.Name)
	}
}

func TestPackEndpointFewestParcelsStrategy(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"boxes": []map[string]any{
			{"name": "single", "length": 5, "width": 5, "height": 5},
			{"name": "double", "length": 5, "width": 5, "height": 10},
		},
		"items":   []map[string]any{item("die", 5, 5, 5, 1, 2)},
		"options": map[string]any{"strategy": "fewest_parcels"},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Box          packing.Box `json:"box"`
		TotalParcels int         `json:"totalParcels"`
		Strategy     string      `json:"strategy"`
	}
	decode(t, rec, &body)
	if body.TotalParcels != 1 || body.Box.Name != "double" {
		t.Fatalf("expected one double parcel, got %d %s", body.TotalParcels, body.Box.Name)
	}
	if body.Strategy != "fewest_parcels" {
		t.Fatalf("expected fewest_parcels strategy, got %s", body.Strategy)
	}
}

func TestValidateEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	box := map[string]any{"name": "cube", "length": 10, "width": 10, "height": 10}
	tests := []struct {
		quantity int
		want     bool
	}{
		{quantity: 8, want: true},
		{quantity: 9, want: false},
	}

	for _, tc := range tests {
		payload := map[string]any{
			"box":   box,
			"items": []map[string]any{item("die", 5, 5, 5, 1, tc.quantity)},
		}
		rec := doJSON(t, router, http.MethodPost, "/api/pack/validate", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var body validateResponse
		decode(t, rec, &body)
		if body.Sufficient != tc.want {
			t.Fatalf("quantity %d: expected sufficient=%v, got %v", tc.quantity, tc.want, body.Sufficient)
		}
	}
}

func TestRemainingSpaceEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"item": map[string]any{"length": 5, "width": 5, "height": 5},
		"box":  map[string]any{"length": 10, "width": 10, "height": 10},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack/remaining-space", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body spaceResponse
	decode(t, rec, &body)
	if body.RemainingVolume != 875 {
		t.Fatalf("expected remaining volume 875, got %v", body.RemainingVolume)
	}
	want := []packing.Dimensions{{5, 5, 5}, {5, 5, 10}, {5, 10, 10}}
	if len(body.RemainingBlocks) != len(want) {
		t.Fatalf("expected %d blocks, got %v", len(want), body.RemainingBlocks)
	}
	for i, b := range want {
		if body.RemainingBlocks[i] != b {
			t.Fatalf("expected block %v at %d, got %v", b, i, body.RemainingBlocks[i])
		}
	}
}

func TestRemainingSpaceEndpointItemTooBig(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"item": map[string]any{"length": 11, "width": 5, "height": 5},
		"box":  map[string]any{"length": 10, "width": 10, "height": 10},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack/remaining-space", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestHowManyFitEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"item": map[string]any{"length": 5, "width": 5, "height": 5},
		"box":  map[string]any{"length": 10, "width": 10, "height": 10},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack/how-many-fit", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body howManyFitResponse
	decode(t, rec, &body)
	if body.TotalPacked != 8 {
		t.Fatalf("expected 8 units, got %d", body.TotalPacked)
	}
	if body.RemainingVolume != 0 {
		t.Fatalf("expected no remaining volume, got %v", body.RemainingVolume)
	}
}

func TestHowManyFitEndpointHonoursLimit(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"item":      map[string]any{"length": 5, "width": 5, "height": 5},
		"box":       map[string]any{"length": 10, "width": 10, "height": 10},
		"maxPacked": 3,
	}
	rec := doJSON(t, router, http.MethodPost, "/api/pack/how-many-fit", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body howManyFitResponse
	decode(t, rec, &body)
	if body.TotalPacked != 3 {
		t.Fatalf("expected 3 units, got %d", body.TotalPacked)
	}
	if body.RemainingVolume != 625 {
		t.Fatalf("expected remaining volume 625, got %v", body.RemainingVolume)
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/pack", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("expected generated UUID request id, got %q", got)
	}
}

func TestQuantitiesEnforcesUnitLimit(t *testing.T) {
	unit := measurement{Length: 5, Width: 5, Height: 5, Weight: 1}

	q, total, err := quantities([]itemPayload{
		{ItemNumber: "a", Quantity: 2, measurement: unit},
		{ItemNumber: "a", Quantity: 3, measurement: unit},
	}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || q["a"].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got total=%d entry=%d", total, q["a"].Quantity)
	}

	tests := map[string][]itemPayload{
		"single quantity above limit": {
			{ItemNumber: "a", Quantity: math.MaxInt64, measurement: unit},
		},
		"repeated item wraps": {
			{ItemNumber: "a", Quantity: math.MaxInt64, measurement: unit},
			{ItemNumber: "a", Quantity: 2, measurement: unit},
		},
		"total wraps across items": {
			{ItemNumber: "a", Quantity: math.MaxInt64, measurement: unit},
			{ItemNumber: "b", Quantity: math.MaxInt64, measurement: unit},
			{ItemNumber: "c", Quantity: 3, measurement: unit},
		},
		"total one above limit": {
			{ItemNumber: "a", Quantity: 3, measurement: unit},
			{ItemNumber: "b", Quantity: 3, measurement: unit},
		},
	}
	for name, items := range tests {
		if _, _, err := quantities(items, 5); !errors.Is(err, errInvalidPayload) {
			t.Fatalf("%s: expected invalid payload error, got %v", name, err)
		}
	}
}
