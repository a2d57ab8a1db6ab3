package cart

import "errors"

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrDuplicateItem    = errors.New("program already in cart")
)
