package i18n

import "github.com/eugenenazirov/parcel-planner/internal/packing"

// Error message translation keys.
const (
	ErrKeyInvalidRequest    = "error.invalid_request"
	ErrKeyInvalidCatalog    = "error.invalid_catalog"
	ErrKeyInternalError     = "error.internal_error"
	ErrKeyRateLimitExceeded = "error.rate_limit_exceeded"
	// ErrKeyCannotPack heads every response caused by a packing failure.
	ErrKeyCannotPack = "error.cannot_pack"

	ErrKeyBoxesTooSmall  = "error.packing.boxes_too_small"
	ErrKeyItemUnpackable = "error.packing.item_unpackable"
	ErrKeyItemTooBig     = "error.packing.item_too_big"
	ErrKeyDuplicateBoxes = "error.packing.duplicate_boxes"
)

// Suggestion translation keys.
const (
	SuggestionKeyLargerBoxes    = "suggestion.larger_boxes"
	SuggestionKeyRaiseMaxWeight = "suggestion.raise_max_weight"
)

// Success message translation keys.
const (
	SuccessKeyCatalogUpdated = "success.catalog_updated"
)

var reasonKeys = map[packing.Reason]string{
	packing.ReasonBoxesTooSmall:  ErrKeyBoxesTooSmall,
	packing.ReasonItemUnpackable: ErrKeyItemUnpackable,
	packing.ReasonItemTooBig:     ErrKeyItemTooBig,
	packing.ReasonDuplicateBoxes: ErrKeyDuplicateBoxes,
}

// KeyForReason maps a packing failure reason to its message key.
func KeyForReason(reason packing.Reason) string {
	if key, ok := reasonKeys[reason]; ok {
		return key
	}
	return ErrKeyCannotPack
}
