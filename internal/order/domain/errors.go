package domain

import (
	"errors"
	"fmt"
)

var (
	ErrShopClosed         = errors.New("shop is closed")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidLine        = errors.New("invalid cart line")
	ErrIncompleteDelivery = errors.New("delivery requires name, phone, address and time")
	ErrDeliveryDisabled   = errors.New("delivery is not available")
	ErrInconsistentOrder  = errors.New("inconsistent order")
	ErrNotFound           = errors.New("order not found")
)

type BelowMinimumError struct {
	Min      Money
	Subtotal Money
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("delivery subtotal %d below minimum %d", e.Subtotal, e.Min)
}

type OutOfRangeError struct {
	DistanceKm float64
	LimitKm    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("address %.2f km away, limit %.2f km", e.DistanceKm, e.LimitKm)
}
