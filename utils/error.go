package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError is a 400: malformed or out-of-range input.
// Never retried; surfaced verbatim.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func NewFieldValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "validation failed", Fields: fields}
}

// NotFoundError is a 404: the referenced resource does not exist.
type NotFoundError struct {
	Resource string
	Id       int
}

func (e *NotFoundError) Error() string {
	if e.Id > 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.Id)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string, id int) *NotFoundError {
	return &NotFoundError{Resource: resource, Id: id}
}

// ConflictError is a 409: an optimistic concurrency check failed because a
// concurrent writer changed the row between the snapshot read and the
// conditional write. The engine never retries; the caller must resubmit.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

// InsufficientStockError is a 400: the snapshot already shows less stock
// than the operation asks for, so the conditional write is never attempted.
type InsufficientStockError struct {
	StockItemId int
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock on item %d: available %s kg, requested %s kg",
		e.StockItemId, e.Available.String(), e.Requested.String())
}

// ForbiddenError is a 403: the caller's role is not allowed to perform the
// operation. The role-permission policy itself lives outside this service.
type ForbiddenError struct {
	Role string
}

func (e *ForbiddenError) Error() string {
	if e.Role == "" {
		return "not authorized"
	}
	return fmt.Sprintf("role %q is not allowed to perform this operation", e.Role)
}

// HTTPStatus maps an engine error to its transport status. Anything
// unrecognized is a 500.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		is *InsufficientStockError
		fe *ForbiddenError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.As(err, &is):
		return http.StatusBadRequest
	case errors.As(err, &fe):
		return http.StatusForbidden
	case errors.As(err, &nf), errors.Is(err, ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
