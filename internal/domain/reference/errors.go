package reference

import "errors"

var (
	ErrStatusNotFound        = errors.New("status not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)
