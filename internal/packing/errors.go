package packing

import (
	"errors"
	"fmt"
)

// Reason classifies a BoxError so callers can pick their own wording.
type Reason string

const (
	// ReasonBoxesTooSmall means no catalog box can hold the largest item.
	ReasonBoxesTooSmall Reason = "boxes_too_small"
	// ReasonItemUnpackable means an item could not be placed in any parcel,
	// either because of its size or its weight.
	ReasonItemUnpackable Reason = "item_unpackable"
	// ReasonItemTooBig means an item does not fit in the selected box.
	ReasonItemTooBig Reason = "item_too_big"
	// ReasonDuplicateBoxes means a catalog reused a box name.
	ReasonDuplicateBoxes Reason = "duplicate_boxes"
)

var defaultMessages = map[Reason]string{
	ReasonBoxesTooSmall:  "Some of your products are too big for your boxes. Please provide larger boxes.",
	ReasonItemUnpackable: "An item cannot be shipped in any of the available boxes.",
	ReasonItemTooBig:     "Some of your items are too big for the box you've selected.",
	ReasonDuplicateBoxes: "Please use unique boxes with unique names.",
}

// BoxError is the domain failure raised when a job cannot be packed as
// specified.
type BoxError struct {
	Reason  Reason
	Message string
}

func (e *BoxError) Error() string {
	return e.Message
}

func newBoxError(reason Reason, format string, args ...any) *BoxError {
	msg := defaultMessages[reason]
	if format != "" {
		msg = fmt.Sprintf("%s (%s)", msg, fmt.Sprintf(format, args...))
	}
	return &BoxError{Reason: reason, Message: msg}
}

// IsBoxError reports whether err wraps a *BoxError.
func IsBoxError(err error) bool {
	var boxErr *BoxError
	return errors.As(err, &boxErr)
}

// AsBoxError extracts the *BoxError wrapped by err.
func AsBoxError(err error) (*BoxError, bool) {
	var boxErr *BoxError
	if errors.As(err, &boxErr) {
		return boxErr, true
	}
	return nil, false
}
