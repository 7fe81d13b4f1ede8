package models

import (
	"errors"
	"fmt"
)

// ErrAuthFailed is deliberately opaque: callers must not learn whether the
// email, the secret, or the account's active flag was at fault.
var ErrAuthFailed = errors.New("authentication failed")

// ValidationError reports rejected input. The state tree is never partially
// updated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CartError reports a bad cart line. Line is zero-based.
type CartError struct {
	Line      int
	ProductID string
	Message   string
}

func (e *CartError) Error() string {
	return fmt.Sprintf("cart line %d (product %s): %s", e.Line, e.ProductID, e.Message)
}

// StockError rejects a whole sale commit because a line asks for more units
// than are on hand.
type StockError struct {
	Line      int
	ProductID string
	Product   string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

// SnapshotError wraps a persistence failure. These are recovered locally and
// never fatal to the running session.
type SnapshotError struct {
	Op  string
	Err error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s failed: %v", e.Op, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
