package account

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountInvalid    = errors.New("account is not valid")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrAccountBlocked    = errors.New("account is blocked")
	ErrInsufficientFunds = errors.New("sorry, your saldo is not enough")
)
