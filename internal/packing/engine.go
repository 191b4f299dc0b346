package packing

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy selects how the engine chooses box sizes for the parcels.
type Strategy string

const (
	// StrategySmallestFirst fills each parcel in the smallest usable box that
	// accepts at least one pending unit.
	StrategySmallestFirst Strategy = "smallest_first"
	// StrategyFewestParcels packs the whole job with every usable box and
	// keeps the box needing the fewest parcels, smaller boxes winning ties.
	StrategyFewestParcels Strategy = "fewest_parcels"
)

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(raw string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case StrategySmallestFirst, StrategyFewestParcels:
		return s, nil
	case "":
		return StrategySmallestFirst, nil
	default:
		return "", fmt.Errorf("unknown packing strategy %q", raw)
	}
}

// Pack assigns items to parcels using the smallest-first strategy.
func Pack(items []ItemTuple, usable []UsableBox, maxWeight float64) (Packing, error) {
	return PackWithStrategy(items, usable, maxWeight, StrategySmallestFirst)
}

// PackWithStrategy assigns every unit in items to a parcel. usable must be
// ordered by ascending volume, as returned by SelectUsableBoxes. No parcel
// weighs more than maxWeight including the box tare.
func PackWithStrategy(items []ItemTuple, usable []UsableBox, maxWeight float64, strategy Strategy) (Packing, error) {
	if len(items) == 0 {
		var packing Packing
		if len(usable) > 0 {
			packing.Box = usable[0].Box
		}
		return packing, nil
	}
	if len(usable) == 0 {
		return Packing{}, newBoxError(ReasonBoxesTooSmall, "")
	}

	pending := orderByVolume(items)

	var (
		packing Packing
		err     error
	)
	switch strategy {
	case StrategyFewestParcels:
		packing, err = packFewestParcels(pending, usable, maxWeight)
	default:
		packing, err = packSmallestFirst(pending, usable, maxWeight)
	}
	if err != nil {
		return Packing{}, err
	}

	shrinkLastParcel(&packing, usable, maxWeight)
	return packing, nil
}

func packSmallestFirst(pending []ItemTuple, usable []UsableBox, maxWeight float64) (Packing, error) {
	var parcels []Parcel
	for len(pending) > 0 {
		placed := false
		for _, ub := range usable {
			order := fillParcel(ub.Dimensions, ub.Box.Weight, pending, maxWeight)
			if len(order) == 0 {
				continue
			}
			var contents []Item
			contents, pending = take(pending, order)
			parcels = append(parcels, Parcel{Box: ub.Box, Items: contents})
			placed = true
			break
		}
		if !placed {
			return Packing{}, unpackable(pending[0], maxWeight)
		}
	}
	return Packing{Box: parcels[0].Box, Parcels: parcels}, nil
}

func packFewestParcels(pending []ItemTuple, usable []UsableBox, maxWeight float64) (Packing, error) {
	var best *Packing
	for _, ub := range usable {
		parcels, ok := packUniform(pending, ub, maxWeight)
		if !ok {
			continue
		}
		if best == nil || len(parcels) < len(best.Parcels) {
			best = &Packing{Box: ub.Box, Parcels: parcels}
		}
	}
	if best == nil {
		return Packing{}, unpackable(pending[0], maxWeight)
	}
	return *best, nil
}

// packUniform packs every unit using one box size. It fails when some unit
// can never be placed in that box.
func packUniform(pending []ItemTuple, ub UsableBox, maxWeight float64) ([]Parcel, bool) {
	var parcels []Parcel
	for len(pending) > 0 {
		order := fillParcel(ub.Dimensions, ub.Box.Weight, pending, maxWeight)
		if len(order) == 0 {
			return nil, false
		}
		var contents []Item
		contents, pending = take(pending, order)
		parcels = append(parcels, Parcel{Box: ub.Box, Items: contents})
	}
	return parcels, true
}

// shrinkLastParcel moves the final parcel of a multi-parcel plan into the
// smallest strictly smaller box that still holds all of its units.
func shrinkLastParcel(packing *Packing, usable []UsableBox, maxWeight float64) {
	if len(packing.Parcels) < 2 {
		return
	}
	last := packing.Parcels[len(packing.Parcels)-1]
	units := make([]ItemTuple, len(last.Items))
	for i, it := range last.Items {
		units[i] = NewItemTuple(it)
	}
	units = orderByVolume(units)

	for _, ub := range usable {
		if ub.Box.Volume() >= last.Box.Volume() {
			break
		}
		order := fillParcel(ub.Dimensions, ub.Box.Weight, units, maxWeight)
		if len(order) != len(units) {
			continue
		}
		contents, _ := take(units, order)
		box := ub.Box
		packing.Parcels[len(packing.Parcels)-1] = Parcel{Box: box, Items: contents}
		packing.LastParcel = &box
		return
	}
}

// fillParcel places as many pending units as possible into one box and
// returns their indexes in placement order. Free space is tracked as a queue
// of blocks: each placement consumes a block and queues the leftover blocks
// that some still pending unit could occupy.
func fillParcel(box Dimensions, tare float64, pending []ItemTuple, maxWeight float64) []int {
	if tare > maxWeight {
		return nil
	}
	placed := make([]bool, len(pending))
	order := make([]int, 0, len(pending))
	weight := tare
	free := []Dimensions{box}

	for len(free) > 0 && len(order) < len(pending) {
		block := free[0]
		free = free[1:]
		for i, it := range pending {
			if placed[i] || !Fits(it.Dimensions, block) || weight+it.Weight > maxWeight {
				continue
			}
			placed[i] = true
			order = append(order, i)
			weight += it.Weight
			for _, left := range RemainingBlocks(it.Dimensions, block) {
				if anyFits(pending, placed, left) {
					free = append(free, left)
				}
			}
			break
		}
	}
	return order
}

func anyFits(pending []ItemTuple, placed []bool, block Dimensions) bool {
	for i, it := range pending {
		if !placed[i] && Fits(it.Dimensions, block) {
			return true
		}
	}
	return false
}

// take splits pending into the placed units (in placement order) and the
// units still waiting, preserving their relative order.
func take(pending []ItemTuple, order []int) ([]Item, []ItemTuple) {
	placed := make(map[int]struct{}, len(order))
	contents := make([]Item, 0, len(order))
	for _, idx := range order {
		placed[idx] = struct{}{}
		contents = append(contents, pending[idx].Item)
	}
	rest := make([]ItemTuple, 0, len(pending)-len(order))
	for i, it := range pending {
		if _, ok := placed[i]; !ok {
			rest = append(rest, it)
		}
	}
	return contents, rest
}

// orderByVolume returns a copy of items sorted by descending volume. Equal
// volumes keep their input order.
func orderByVolume(items []ItemTuple) []ItemTuple {
	out := make([]ItemTuple, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Dimensions.Volume() > out[j].Dimensions.Volume()
	})
	return out
}

func unpackable(it ItemTuple, maxWeight float64) *BoxError {
	if it.Weight > maxWeight {
		return newBoxError(ReasonItemUnpackable, "item %s weighs %g, limit is %g", it.Item.ItemNumber, it.Weight, maxWeight)
	}
	return newBoxError(ReasonItemUnpackable, "item %s", it.Item.ItemNumber)
}
