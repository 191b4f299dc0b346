package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eugenenazirov/parcel-planner/internal/packing"
	"github.com/eugenenazirov/parcel-planner/internal/units"
)

var errInvalidPayload = errors.New("invalid payload")

// measurement carries the extents and weight of a box or product together
// with the units they are expressed in. Missing units mean centimeters and
// grams.
type measurement struct {
	Length         float64 `json:"length"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Weight         float64 `json:"weight"`
	DimensionUnits string  `json:"dimensionUnits,omitempty"`
	WeightUnits    string  `json:"weightUnits,omitempty"`
}

// normalize converts the measurement to centimeters and grams.
func (m measurement) normalize() (length, width, height, weight float64, err error) {
	if length, err = units.ToCentimeters(m.Length, m.DimensionUnits); err != nil {
		return
	}
	if width, err = units.ToCentimeters(m.Width, m.DimensionUnits); err != nil {
		return
	}
	if height, err = units.ToCentimeters(m.Height, m.DimensionUnits); err != nil {
		return
	}
	weight, err = units.ToGrams(m.Weight, m.WeightUnits)
	return
}

func (m measurement) dimensions() (packing.Dimensions, error) {
	l, w, h, _, err := m.normalize()
	if err != nil {
		return packing.Dimensions{}, err
	}
	if l < 0 || w < 0 || h < 0 {
		return packing.Dimensions{}, packing.ErrInvalidMeasurement
	}
	return packing.SortDimensions(l, w, h), nil
}

type boxPayload struct {
	Name string `json:"name"`
	measurement
}

func (p boxPayload) toBox() (packing.Box, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return packing.Box{}, fmt.Errorf("%w: box name is required", errInvalidPayload)
	}
	l, w, h, weight, err := p.normalize()
	if err != nil {
		return packing.Box{}, err
	}
	return packing.NewBox(name, l, w, h, weight)
}

type itemPayload struct {
	ProductName string `json:"productName"`
	ItemNumber  string `json:"itemNumber"`
	Quantity    int    `json:"quantity"`
	measurement
}

func (p itemPayload) toItem() (packing.Item, error) {
	number := strings.TrimSpace(p.ItemNumber)
	if number == "" {
		number = strings.TrimSpace(p.ProductName)
	}
	if number == "" {
		return packing.Item{}, fmt.Errorf("%w: itemNumber or productName is required", errInvalidPayload)
	}
	if p.Quantity < 0 {
		return packing.Item{}, fmt.Errorf("%w: quantity for %s must be non-negative", errInvalidPayload, number)
	}
	l, w, h, weight, err := p.normalize()
	if err != nil {
		return packing.Item{}, err
	}
	return packing.NewItem(p.ProductName, number, l, w, h, weight)
}

type packOptions struct {
	MaxWeight float64 `json:"maxWeight,omitempty"`
	Strategy  string  `json:"strategy,omitempty"`
}

type packRequest struct {
	Boxes   []boxPayload  `json:"boxes,omitempty"`
	Items   []itemPayload `json:"items"`
	Options packOptions   `json:"options"`
}

type validateRequest struct {
	Box     boxPayload    `json:"box"`
	Items   []itemPayload `json:"items"`
	Options packOptions   `json:"options"`
}

type spaceRequest struct {
	Item measurement `json:"item"`
	Box  measurement `json:"box"`
}

type howManyFitRequest struct {
	Item      measurement `json:"item"`
	Box       measurement `json:"box"`
	MaxPacked int         `json:"maxPacked,omitempty"`
}

type boxesRequest struct {
	Boxes []boxPayload `json:"boxes"`
}

type parcelResponse struct {
	Box            packing.Box    `json:"box"`
	Items          []string       `json:"items"`
	PackedProducts map[string]int `json:"packedProducts"`
	TotalWeight    float64        `json:"totalWeight"`
}

type packResponse struct {
	Box               packing.Box      `json:"box"`
	LastParcel        *packing.Box     `json:"lastParcel,omitempty"`
	Parcels           []parcelResponse `json:"parcels"`
	TotalParcels      int              `json:"totalParcels"`
	TotalUnits        int              `json:"totalUnits"`
	Strategy          string           `json:"strategy"`
	MaxWeight         float64          `json:"maxWeight"`
	CalculationTimeMs int64            `json:"calculationTimeMs"`
}

type validateResponse struct {
	Box        packing.Box `json:"box"`
	Sufficient bool        `json:"sufficient"`
}

type spaceResponse struct {
	RemainingVolume float64              `json:"remainingVolume"`
	RemainingBlocks []packing.Dimensions `json:"remainingBlocks"`
}

type howManyFitResponse struct {
	TotalPacked     int     `json:"totalPacked"`
	RemainingVolume float64 `json:"remainingVolume"`
}

type boxesResponse struct {
	Boxes     []packing.Box `json:"boxes"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Message   string        `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// quantities converts item payloads into a quantity map keyed by item
// number. Repeated item numbers are merged. The request may expand to at most
// limit units in total.
func quantities(items []itemPayload, limit int) (packing.QuantityMap, int, error) {
	q := make(packing.QuantityMap, len(items))
	total := 0
	for _, p := range items {
		item, err := p.toItem()
		if err != nil {
			return nil, 0, err
		}
		entry, ok := q[item.ItemNumber]
		if ok && entry.Item != item {
			return nil, 0, fmt.Errorf("%w: item %s listed with different measurements", errInvalidPayload, item.ItemNumber)
		}
		// total never exceeds limit, so the subtraction cannot overflow.
		if p.Quantity > limit-total {
			return nil, 0, fmt.Errorf("%w: request expands to more than %d units", errInvalidPayload, limit)
		}
		entry.Item = item
		entry.Quantity += p.Quantity
		q[item.ItemNumber] = entry
		total += p.Quantity
	}
	return q, total, nil
}

func toBoxes(payloads []boxPayload) ([]packing.Box, error) {
	boxes := make([]packing.Box, 0, len(payloads))
	for _, p := range payloads {
		box, err := p.toBox()
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

func toPackResponse(p packing.Packing) packResponse {
	parcels := make([]parcelResponse, len(p.Parcels))
	for i, parcel := range p.Parcels {
		products := make(map[string]int)
		for _, it := range parcel.Items {
			products[it.ItemNumber]++
		}
		parcels[i] = parcelResponse{
			Box:            parcel.Box,
			Items:          parcel.ItemNumbers(),
			PackedProducts: products,
			TotalWeight:    parcel.Weight(),
		}
	}
	return packResponse{
		Box:          p.Box,
		LastParcel:   p.LastParcel,
		Parcels:      parcels,
		TotalParcels: len(p.Parcels),
		TotalUnits:   p.Units(),
	}
}
