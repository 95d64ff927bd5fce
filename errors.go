package optcache

import (
	"errors"
	"fmt"
)

// ErrCommitted is returned by UndoContext.Restore once the undo window has
// committed (timer fired or the write succeeded). The item is gone for good.
var ErrCommitted = errors.New("optcache: delete already committed, undo window closed")

// InvalidItemError reports that an item's identity could not be resolved by
// the default convention. It is a configuration bug on the caller's side:
// either expose an id field or supply a Resolver.
type InvalidItemError struct {
	// Field is the conventional field that was looked up ("id").
	Field string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("optcache: item has no usable %q field; supply a Resolver to extract the identity", e.Field)
}

func errInvalidItem() error { return &InvalidItemError{Field: "id"} }
