// Package packing decides how a set of items is split across shipping boxes.
// Boxes are chosen from a catalog, smallest first, so that every unit fits
// inside its box and no parcel exceeds the weight ceiling. The functions in
// this package are pure and safe for concurrent use.
package packing
