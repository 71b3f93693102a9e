// Package apperr holds the error kinds surfaced by the inventory engines.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// InsufficientQuantityError reports a withdrawal larger than stock on hand.
type InsufficientQuantityError struct {
	ProductNumber string
	Available     int64
	Requested     int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for product %s: available %d, requested %d", e.ProductNumber, e.Available, e.Requested)
}

// OccupiedError reports a target cell that already hosts another product.
type OccupiedError struct {
	Location      string
	ProductNumber string
}

func (e *OccupiedError) Error() string {
	if e.ProductNumber == "" {
		return fmt.Sprintf("location %s is occupied by another product", e.Location)
	}
	return fmt.Sprintf("location %s is occupied by product %s", e.Location, e.ProductNumber)
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInsufficientQuantity(err error) bool {
	var target *InsufficientQuantityError
	return errors.As(err, &target)
}

func IsOccupied(err error) bool {
	var target *OccupiedError
	return errors.As(err, &target)
}

// HTTPStatus maps an engine error to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInsufficientQuantity(err), IsOccupied(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to users. Unknown errors are
// replaced by fallback.
func PublicMessage(err error, fallback string) string {
	var (
		v *ValidationError
		n *NotFoundError
		q *InsufficientQuantityError
		o *OccupiedError
	)
	switch {
	case errors.As(err, &v):
		return v.Error()
	case errors.As(err, &n):
		return n.Error()
	case errors.As(err, &q):
		return q.Error()
	case errors.As(err, &o):
		return o.Error()
	default:
		return fallback
	}
}
