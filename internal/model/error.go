package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeTransient         = "TRY_AGAIN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// ValidationError indicates a malformed request. It is rejected before any
// transaction starts, so it never leaves partial state behind.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is the expected business condition of a reservation
// exceeding the remaining deal stock. The whole operation rolls back.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}

// StateError indicates an action that is not allowed from the order's current state.
type StateError struct {
	Current OrderStatus
	Action  string
	Reason  string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s order in state %q: %s", e.Action, e.Current, e.Reason)
}

// NotFoundError indicates a missing or soft-deleted resource.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// TransientError wraps a store failure (lock timeout, deadlock, dropped
// connection) that is safe to retry after the transaction rolled back.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
