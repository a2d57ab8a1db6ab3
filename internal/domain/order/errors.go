package order

import "errors"

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderCancelled          = errors.New("sorry, your order has been cancelled")
	ErrAccountNotRegistered    = errors.New("sorry, your account number is not registered")
	ErrCheckoutTimeout         = errors.New("checkout timed out")
	ErrDuplicateOrderNumber    = errors.New("order number already exists")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrIdempotencyKeyReused    = errors.New("idempotency key belongs to another request")
	ErrUnknownNumberPolicy     = errors.New("unknown order number policy")
)
