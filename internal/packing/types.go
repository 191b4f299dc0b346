package packing

import (
	"errors"
	"fmt"
)

// ErrInvalidMeasurement is returned by the constructors when a dimension or
// weight is negative.
var ErrInvalidMeasurement = errors.New("dimensions and weight must be non-negative")

// Box is a shipping box from the catalog. Weight is the tare weight of the
// empty box.
type Box struct {
	Name   string  `json:"name" yaml:"name"`
	Length float64 `json:"length" yaml:"length"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// NewBox validates the measurements and returns a Box.
func NewBox(name string, length, width, height, weight float64) (Box, error) {
	if err := checkMeasurements(length, width, height, weight); err != nil {
		return Box{}, fmt.Errorf("box %q: %w", name, err)
	}
	return Box{Name: name, Length: length, Width: width, Height: height, Weight: weight}, nil
}

// Volume returns the interior volume of the box.
func (b Box) Volume() float64 {
	return b.Length * b.Width * b.Height
}

// Dimensions returns the box extents sorted ascending.
func (b Box) Dimensions() Dimensions {
	return SortDimensions(b.Length, b.Width, b.Height)
}

// Item is a product that can be shipped. ItemNumber identifies it in plans.
type Item struct {
	Name       string  `json:"name" yaml:"name"`
	ItemNumber string  `json:"itemNumber" yaml:"item_number"`
	Length     float64 `json:"length" yaml:"length"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	Weight     float64 `json:"weight" yaml:"weight"`
}

// NewItem validates the measurements and returns an Item.
func NewItem(name, itemNumber string, length, width, height, weight float64) (Item, error) {
	if err := checkMeasurements(length, width, height, weight); err != nil {
		return Item{}, fmt.Errorf("item %q: %w", itemNumber, err)
	}
	return Item{
		Name:       name,
		ItemNumber: itemNumber,
		Length:     length,
		Width:      width,
		Height:     height,
		Weight:     weight,
	}, nil
}

// Dimensions returns the item extents sorted ascending.
func (i Item) Dimensions() Dimensions {
	return SortDimensions(i.Length, i.Width, i.Height)
}

// ItemTuple is a single physical unit waiting to be packed.
type ItemTuple struct {
	Item       Item
	Dimensions Dimensions
	Weight     float64
}

// NewItemTuple pairs an item with its sorted dimensions.
func NewItemTuple(item Item) ItemTuple {
	return ItemTuple{Item: item, Dimensions: item.Dimensions(), Weight: item.Weight}
}

// ItemQuantity is how many units of an item the caller wants shipped.
type ItemQuantity struct {
	Item     Item `json:"item" yaml:"item"`
	Quantity int  `json:"quantity" yaml:"quantity"`
}

// QuantityMap maps an item identifier to the quantity requested.
type QuantityMap map[string]ItemQuantity

// UsableBox is a catalog box that passed the envelope prefilter.
type UsableBox struct {
	Box        Box
	Dimensions Dimensions
}

// Parcel is one physical box and the units placed in it, in placement order.
type Parcel struct {
	Box   Box
	Items []Item
}

// Weight returns the tare weight plus the weight of every unit inside.
func (p Parcel) Weight() float64 {
	total := p.Box.Weight
	for _, it := range p.Items {
		total += it.Weight
	}
	return total
}

// ItemNumbers lists the item numbers of the parcel contents in placement order.
func (p Parcel) ItemNumbers() []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.ItemNumber
	}
	return out
}

// Packing is the plan produced by the engine. Box is the box size the plan
// was built around. LastParcel is set when the final parcel was moved into a
// smaller box; the final Parcel already carries that box.
type Packing struct {
	Box        Box
	Parcels    []Parcel
	LastParcel *Box
}

// ItemsPerBox returns the item numbers of every parcel, in fill order.
func (p Packing) ItemsPerBox() [][]string {
	out := make([][]string, len(p.Parcels))
	for i, parcel := range p.Parcels {
		out[i] = parcel.ItemNumbers()
	}
	return out
}

// Units returns the number of units across all parcels.
func (p Packing) Units() int {
	n := 0
	for _, parcel := range p.Parcels {
		n += len(parcel.Items)
	}
	return n
}

func checkMeasurements(values ...float64) error {
	for _, v := range values {
		if v < 0 {
			return ErrInvalidMeasurement
		}
	}
	return nil
}
