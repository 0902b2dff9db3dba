/*
errors.go - Centralized error types for the stock ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is against the sentinels; the structured
  errors carry the offending id or value and unwrap to their sentinel.

ERROR CATEGORIES:
  1. Reference errors - a product or history id that does not resolve
  2. Validation errors - quantities, product fields, transaction types
  3. Import errors - nothing importable in a CSV payload

PROPAGATION:
  - Record against a missing product is a hard no-op and returns
    ProductNotFoundError.
  - Edit and DeleteTransaction skip a missing product side and succeed.
  - Per-row CSV failures are counted by csvio, never returned.
  - ErrEmptyImport is returned when no row could be merged.

SEE ALSO:
  - ledger.go: Returns these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")

	// ErrHistoryNotFound is returned when a history id does not resolve.
	ErrHistoryNotFound = errors.New("history record not found")

	// ErrInvalidQuantity is returned for zero or negative movement quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidProduct is returned when a product is missing its code or name.
	ErrInvalidProduct = errors.New("invalid product: code and name are required")

	// ErrInvalidTxType is returned for a transaction type other than in/out.
	ErrInvalidTxType = errors.New("invalid transaction type")

	// ErrEmptyImport is returned when an import has no acceptable rows.
	ErrEmptyImport = errors.New("nothing to import")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type ProductNotFoundError struct {
	ID ProductID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %d", e.ID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

type HistoryNotFoundError struct {
	ID HistoryID
}

func (e *HistoryNotFoundError) Error() string {
	return fmt.Sprintf("history record not found: %d", e.ID)
}

func (e *HistoryNotFoundError) Unwrap() error { return ErrHistoryNotFound }

type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity: %d (must be a positive integer)", e.Quantity)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing product or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrHistoryNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrInvalidTxType)
}
