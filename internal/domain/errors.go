package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStatusChanged      = errors.New("rental status changed concurrently")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError rejects input before any state is touched.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ReferenceError names the entity that could not be found.
type ReferenceError struct {
	Entity string
	ID     int32
}

func NewReferenceError(entity string, id int32) *ReferenceError {
	return &ReferenceError{Entity: entity, ID: id}
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrNotFound
}

// StockError carries the item that could not cover a stock change.
type StockError struct {
	ItemID    int32
	Requested int32
}

func (e *StockError) Error() string {
	return fmt.Sprintf("item %d cannot cover a change of %d units", e.ItemID, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
