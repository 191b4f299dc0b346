package packing

// IsSingleBoxSufficient reports whether every unit in quantities fits into
// box as one parcel under DefaultMaxWeight. Packing failures yield false.
func IsSingleBoxSufficient(quantities QuantityMap, box Box) bool {
	return isSingleBoxSufficient(quantities, box, DefaultMaxWeight)
}

func isSingleBoxSufficient(quantities QuantityMap, box Box, maxWeight float64) bool {
	items := Flatten(quantities)
	if len(items) == 0 {
		return true
	}
	usable := SelectUsableBoxes([]Box{box}, Envelope(items))
	if len(usable) == 0 {
		return false
	}
	packing, err := Pack(items, usable, maxWeight)
	if err != nil {
		return false
	}
	return len(packing.Parcels) == 1
}
