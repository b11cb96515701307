// internal/service/cart/domain/errors.go
package domain

import "errors"

var (
	ErrInvalidLineItem     = errors.New("cart line requires cart id and sku")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrReservationInFlight = errors.New("a reservation is already in flight for this item")
)
