package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or out-of-range input. It is permanent:
// the caller must correct the request before resubmitting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErrf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that does not exist (or is inactive).
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ReconciliationError reports a receiving submission that does not match the
// procurement order's lines. It names the offending item and both quantities
// so the caller can correct the submission without another round trip.
type ReconciliationError struct {
	OrderID  int64
	ItemID   int64
	ItemName string
	Expected decimal.Decimal
	Received decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("order %d: item %d (%s) expected quantity %s, received %s",
		e.OrderID, e.ItemID, e.ItemName, e.Expected.String(), e.Received.String())
}

// StorageError wraps an infrastructural failure inside an atomic unit.
// Nothing committed, so the whole call is safe to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
