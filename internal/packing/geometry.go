package packing

import (
	"sort"
	"strconv"
)

// Dimensions is a triple of extents sorted ascending. Sorting normalises
// orientation so two objects can be compared regardless of how they are
// rotated.
type Dimensions [3]float64

// SortDimensions returns the extents as a Dimensions triple, smallest first.
func SortDimensions(length, width, height float64) Dimensions {
	d := Dimensions{length, width, height}
	sort.Float64s(d[:])
	return d
}

// Volume returns the product of the three extents.
func (d Dimensions) Volume() float64 {
	return d[0] * d[1] * d[2]
}

// String renders the triple as "AxBxC".
func (d Dimensions) String() string {
	return formatDim(d[0]) + "x" + formatDim(d[1]) + "x" + formatDim(d[2])
}

func formatDim(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Fits reports whether required lies within container along every axis.
// Both triples must already be sorted.
func Fits(required, container Dimensions) bool {
	for i := range required {
		if required[i] > container[i] {
			return false
		}
	}
	return true
}

// Envelope returns the element-wise maximum of the sorted triples of items:
// the smallest box that can hold each item on its own.
func Envelope(items []ItemTuple) Dimensions {
	var env Dimensions
	for _, it := range items {
		for i := range env {
			if it.Dimensions[i] > env[i] {
				env[i] = it.Dimensions[i]
			}
		}
	}
	return env
}

// RemainingBlocks places item inside block and returns the free blocks left
// over, sorted by volume. The item is laid with its longest edge along the
// shortest side of the block that can take it twice, or fits it exactly, or
// failing both the first side long enough. The remaining two sides are
// rotated so the leftover blocks are as close in size as possible.
//
// The caller must ensure Fits(item, block).
func RemainingBlocks(item, block Dimensions) []Dimensions {
	box := block
	side1 := -1
	blocks := make([]Dimensions, 0, 3)

	for i, side := range box {
		if side >= item[2]*2 {
			side1 = i
			blocks = append(blocks, SortDimensions(box[i]-item[2], box[prev(i, 1)], box[prev(i, 2)]))
			box[i] = item[2]
			break
		}
		if side == item[2] {
			side1 = i
			break
		}
	}

	if side1 < 0 {
		for i, side := range box {
			if side >= item[2] {
				side1 = i
				blocks = append(blocks, SortDimensions(box[i]-item[2], item[1], item[0]))
				break
			}
		}
	}
	if side1 < 0 {
		return nil
	}

	side2, side3 := rotateRemaining(item, box, side1)

	block2a := SortDimensions(box[side1], box[side2], box[side3]-item[0])
	block3a := SortDimensions(box[side1], box[side2]-item[1], item[0])
	block2b := SortDimensions(box[side1], box[side2]-item[1], box[side3])
	block3b := SortDimensions(box[side1], box[side3]-item[0], item[1])

	if block2a.Volume() < block2b.Volume() {
		blocks = append(blocks, block2a, block3a)
	} else {
		blocks = append(blocks, block2b, block3b)
	}

	remaining := blocks[:0]
	for _, b := range blocks {
		if b[0] > 0 {
			remaining = append(remaining, b)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Volume() < remaining[j].Volume()
	})
	return remaining
}

// rotateRemaining picks the box sides that take the item's middle and
// shortest edges once its longest edge lies along side1. A forced rotation
// wins when the middle edge does not fit one of the sides.
func rotateRemaining(item, box Dimensions, side1 int) (int, int) {
	switch {
	case item[1] > box[prev(side1, 1)]:
		return prev(side1, 2), prev(side1, 1)
	case item[1] > box[prev(side1, 2)]:
		return prev(side1, 1), prev(side1, 2)
	default:
		return (side1 + 1) % 3, (side1 + 2) % 3
	}
}

func prev(i, n int) int {
	return ((i-n)%3 + 3) % 3
}
