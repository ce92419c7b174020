package lob

import "errors"

var (
	// ErrInvalidOrder rejects non-positive sizes and malformed side/type/price
	// before anything touches the book.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrDuplicateOrderID rejects a submit whose id is already registered.
	ErrDuplicateOrderID = errors.New("order id already registered")

	// ErrUnknownOrderID means no order with that id exists.
	ErrUnknownOrderID = errors.New("order id not found")

	// ErrInvalidState means the operation is a no-op on a terminal order.
	ErrInvalidState = errors.New("order is in a terminal state")
)
