package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/parcel-planner/internal/packing"
)

const (
	maxCatalogBoxes  = 200
	defaultSQLiteDSN = "boxes.db"
)

var (
	// ErrInvalidCatalog indicates the provided box catalog violates validation rules.
	ErrInvalidCatalog = errors.New("catalog must contain between 1 and 200 uniquely named boxes with non-negative measurements")
)

var defaultBoxes = []packing.Box{
	{Name: "small", Length: 22, Width: 14, Height: 9, Weight: 90},
	{Name: "medium", Length: 30, Width: 23, Height: 15, Weight: 180},
	{Name: "large", Length: 45, Width: 35, Height: 25, Weight: 410},
	{Name: "extra-large", Length: 60, Width: 45, Height: 40, Weight: 780},
}

// Storage provides access to the box catalog used by the planner.
type Storage interface {
	ListBoxes(ctx context.Context) ([]packing.Box, error)
	ReplaceBoxes(ctx context.Context, boxes []packing.Box) error
}

// MemoryStorage keeps the catalog in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	boxes []packing.Box
}

// NewMemoryStorage initialises storage with a copy of the default catalog.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		boxes: cloneBoxes(defaultBoxes),
	}
}

// DefaultBoxes returns a copy of the default catalog.
func DefaultBoxes() []packing.Box {
	return cloneBoxes(defaultBoxes)
}

// ListBoxes returns a defensive copy of the catalog in insertion order.
func (s *MemoryStorage) ListBoxes(_ context.Context) ([]packing.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneBoxes(s.boxes), nil
}

// ReplaceBoxes validates and stores the provided catalog.
func (s *MemoryStorage) ReplaceBoxes(_ context.Context, boxes []packing.Box) error {
	if err := ValidateCatalog(boxes); err != nil {
		return err
	}

	s.mu.Lock()
	s.boxes = cloneBoxes(boxes)
	s.mu.Unlock()

	return nil
}

// ValidateCatalog checks the catalog size, box names and measurements.
func ValidateCatalog(boxes []packing.Box) error {
	if len(boxes) == 0 || len(boxes) > maxCatalogBoxes {
		return ErrInvalidCatalog
	}

	seen := make(map[string]struct{}, len(boxes))
	for _, box := range boxes {
		if box.Name == "" {
			return fmt.Errorf("%w: box name is required", ErrInvalidCatalog)
		}
		if _, ok := seen[box.Name]; ok {
			return fmt.Errorf("%w: duplicate box %q", ErrInvalidCatalog, box.Name)
		}
		seen[box.Name] = struct{}{}
		if _, err := packing.NewBox(box.Name, box.Length, box.Width, box.Height, box.Weight); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	}
	return nil
}

func cloneBoxes(src []packing.Box) []packing.Box {
	if len(src) == 0 {
		return []packing.Box{}
	}

	out := make([]packing.Box, len(src))
	copy(out, src)
	return out
}

// Open returns the storage driver selected by name together with a function
// releasing its resources.
func Open(ctx context.Context, driver, dsn string) (Storage, func() error, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStorage(), func() error { return nil }, nil
	case "sqlite", "sqlite3":
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
