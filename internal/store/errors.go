package store

import (
	"errors"
	"fmt"

	"bloodflow/m/domain"
)

var (
	// ErrNotReady is returned by every mutator until Load has completed.
	ErrNotReady = errors.New("blood data store is not initialized")
	// ErrInsufficientStock matches any *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus is returned for a status outside pending/fulfilled.
	ErrInvalidStatus = errors.New("invalid request status")
	// ErrFulfilledIsTerminal is returned when a fulfilled request is moved back to pending.
	ErrFulfilledIsTerminal = errors.New("fulfilled request cannot change status")
)

// InsufficientStockError rejects a fulfillment; the request stays pending and inventory is untouched.
type InsufficientStockError struct {
	Group     domain.BloodGroup
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for blood group %s: requested %d units, %d available",
		e.Group, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
