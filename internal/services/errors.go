package services

import (
	"fmt"

	"github.com/rmedina/go-tienda/internal/validation"
)

// InsufficientStockError aborts the enclosing transaction when a stock
// decrement would drive a product's quantity below zero. The message is the
// user-facing one, naming the product and what is actually available.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente para %s. Disponible: %d", e.ProductName, e.Available)
}

// ValidationError reports invalid header or line input before any persistence
// happens.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", map[string]string(e.Violations))
}

func newValidationError(field, code string) *ValidationError {
	return &ValidationError{Violations: validation.Violations{field: code}}
}

// ReferentialIntegrityError blocks deletion of a record that protected rows
// still reference (e.g. a product with sale or movement history).
type ReferentialIntegrityError struct {
	Entity string
	ID     uint
	Reason string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %d cannot be deleted: %s", e.Entity, e.ID, e.Reason)
}
