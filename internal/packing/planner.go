package packing

import (
	"sort"
)

// DefaultMaxWeight is the parcel weight ceiling in grams (about 70 lb).
const DefaultMaxWeight = 31710.0

// CatalogFilter narrows a catalog before box selection, for example to the
// boxes a team stocks or to exclude flat-rate boxes.
type CatalogFilter func(boxes []Box) []Box

// Planner describes the behaviour required from a packing planner.
type Planner interface {
	Plan(quantities QuantityMap, catalog []Box) (Packing, error)
	IsSingleBoxSufficient(quantities QuantityMap, box Box) bool
	MaxWeight() float64
	Strategy() Strategy
}

// Option configures a planner.
type Option func(*greedyPlanner)

// WithMaxWeight overrides the parcel weight ceiling. Non-positive values are
// ignored.
func WithMaxWeight(weight float64) Option {
	return func(p *greedyPlanner) {
		if weight > 0 {
			p.maxWeight = weight
		}
	}
}

// WithStrategy selects the packing strategy.
func WithStrategy(strategy Strategy) Option {
	return func(p *greedyPlanner) {
		if strategy != "" {
			p.strategy = strategy
		}
	}
}

// WithCatalogFilter installs a filter applied to the catalog before box
// selection.
func WithCatalogFilter(filter CatalogFilter) Option {
	return func(p *greedyPlanner) {
		p.filter = filter
	}
}

type greedyPlanner struct {
	maxWeight float64
	strategy  Strategy
	filter    CatalogFilter
}

// New creates a Planner based on first-fit-decreasing packing.
func New(opts ...Option) Planner {
	p := &greedyPlanner{
		maxWeight: DefaultMaxWeight,
		strategy:  StrategySmallestFirst,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *greedyPlanner) MaxWeight() float64 {
	return p.maxWeight
}

func (p *greedyPlanner) Strategy() Strategy {
	return p.strategy
}

// Plan expands the quantities into units, selects the usable boxes and packs
// them. The plan lists item numbers, never quantities.
func (p *greedyPlanner) Plan(quantities QuantityMap, catalog []Box) (Packing, error) {
	items := Flatten(quantities)
	if p.filter != nil {
		catalog = p.filter(catalog)
	}
	usable := SelectUsableBoxes(catalog, Envelope(items))
	if len(items) > 0 && len(usable) == 0 {
		return Packing{}, newBoxError(ReasonBoxesTooSmall, "")
	}
	return PackWithStrategy(items, usable, p.maxWeight, p.strategy)
}

// IsSingleBoxSufficient reports whether every unit fits into box as a single
// parcel under the planner's weight ceiling.
func (p *greedyPlanner) IsSingleBoxSufficient(quantities QuantityMap, box Box) bool {
	return isSingleBoxSufficient(quantities, box, p.maxWeight)
}

// Flatten expands a quantity map into one ItemTuple per physical unit. Keys
// are visited in sorted order so the result is deterministic.
func Flatten(quantities QuantityMap) []ItemTuple {
	keys := make([]string, 0, len(quantities))
	total := 0
	for key, q := range quantities {
		if q.Quantity <= 0 {
			continue
		}
		keys = append(keys, key)
		total += q.Quantity
	}
	sort.Strings(keys)

	items := make([]ItemTuple, 0, total)
	for _, key := range keys {
		q := quantities[key]
		unit := NewItemTuple(q.Item)
		for i := 0; i < q.Quantity; i++ {
			items = append(items, unit)
		}
	}
	return items
}

// UniqueNames returns a BoxError when two boxes in the catalog share a name.
func UniqueNames(boxes []Box) error {
	seen := make(map[string]struct{}, len(boxes))
	for _, box := range boxes {
		if _, ok := seen[box.Name]; ok {
			return newBoxError(ReasonDuplicateBoxes, "%s", box.Name)
		}
		seen[box.Name] = struct{}{}
	}
	return nil
}
