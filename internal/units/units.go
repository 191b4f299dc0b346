// Package units converts caller-supplied measurements into the centimeters
// and grams the packing engine works in.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit is returned for a unit name that is not recognised.
var ErrUnknownUnit = errors.New("unknown unit")

const (
	Centimeters = "centimeters"
	Millimeters = "millimeters"
	Meters      = "meters"
	Inches      = "inches"
	Feet        = "feet"

	Grams     = "grams"
	Kilograms = "kilograms"
	Pounds    = "pounds"
	Ounces    = "ounces"
)

var lengthToCentimeters = map[string]float64{
	Centimeters: 1,
	"cm":        1,
	Millimeters: 0.1,
	"mm":        0.1,
	Meters:      100,
	"m":         100,
	Inches:      2.54,
	"in":        2.54,
	Feet:        30.48,
	"ft":        30.48,
}

var massToGrams = map[string]float64{
	Grams:     1,
	"g":       1,
	Kilograms: 1000,
	"kg":      1000,
	Pounds:    453.59237,
	"lb":      453.59237,
	"lbs":     453.59237,
	Ounces:    28.349523125,
	"oz":      28.349523125,
}

// ToCentimeters converts a length expressed in unit to centimeters. An empty
// unit means centimeters.
func ToCentimeters(value float64, unit string) (float64, error) {
	factor, err := lookup(lengthToCentimeters, unit, Centimeters)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}

// ToGrams converts a mass expressed in unit to grams. An empty unit means
// grams.
func ToGrams(value float64, unit string) (float64, error) {
	factor, err := lookup(massToGrams, unit, Grams)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}

func lookup(table map[string]float64, unit, fallback string) (float64, error) {
	key := strings.ToLower(strings.TrimSpace(unit))
	if key == "" {
		key = fallback
	}
	factor, ok := table[key]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownUnit, unit)
	}
	return factor, nil
}
