package packing

import (
	"math"
)

// SpaceReport describes the free space left in a box after one item has been
// placed in it.
type SpaceReport struct {
	RemainingVolume float64
	Blocks          []Dimensions
}

// CapacityReport describes how many identical units fit in one box.
type CapacityReport struct {
	TotalPacked     int
	RemainingVolume float64
}

// SpaceAfterPacking places item in box and reports the free blocks left.
func SpaceAfterPacking(item, box Dimensions) (SpaceReport, error) {
	if !Fits(item, box) {
		return SpaceReport{}, newBoxError(ReasonItemTooBig, "item %s does not fit box %s", item, box)
	}
	blocks := RemainingBlocks(item, box)
	var remaining float64
	for _, b := range blocks {
		remaining += b.Volume()
	}
	return SpaceReport{RemainingVolume: remaining, Blocks: blocks}, nil
}

// HowManyFit counts how many units shaped like item fit in one box. A
// positive limit stops counting once that many units are packed. Weight is
// not considered. A zero-volume item has no natural bound, so it requires a
// positive limit; otherwise ErrInvalidMeasurement is returned.
func HowManyFit(item, box Dimensions, limit int) (CapacityReport, error) {
	if item.Volume() <= 0 && limit <= 0 {
		return CapacityReport{}, ErrInvalidMeasurement
	}
	if !Fits(item, box) {
		return CapacityReport{}, newBoxError(ReasonItemTooBig, "item %s does not fit box %s", item, box)
	}

	bound := limit
	if itemVolume := item.Volume(); itemVolume > 0 {
		byVolume := int(math.Floor(box.Volume() / itemVolume))
		if bound <= 0 || byVolume < bound {
			bound = byVolume
		}
	}

	unit := ItemTuple{Dimensions: item}
	units := make([]ItemTuple, bound)
	for i := range units {
		units[i] = unit
	}
	packed := len(fillParcel(box, 0, units, math.Inf(1)))

	return CapacityReport{
		TotalPacked:     packed,
		RemainingVolume: box.Volume() - float64(packed)*item.Volume(),
	}, nil
}

