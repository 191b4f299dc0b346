package packing

import "sort"

// SelectUsableBoxes keeps the boxes that can hold envelope and orders them by
// ascending volume. Boxes of equal volume keep their catalog order.
func SelectUsableBoxes(boxes []Box, envelope Dimensions) []UsableBox {
	usable := make([]UsableBox, 0, len(boxes))
	for _, box := range boxes {
		dims := box.Dimensions()
		if Fits(envelope, dims) {
			usable = append(usable, UsableBox{Box: box, Dimensions: dims})
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Box.Volume() < usable[j].Box.Volume()
	})
	return usable
}
