// Package apperr classifies domain sentinel errors into the failure kinds
// callers act on. Anything it does not recognise is an infrastructure
// failure and must not be shown to users verbatim.
package apperr

import (
	"context"
	"errors"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidState      Kind = "invalid_state"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInvalidInput      Kind = "invalid_input"
	KindTimeout           Kind = "timeout"
	KindUnauthorized      Kind = "unauthorized"
	KindInfrastructure    Kind = "infrastructure"
)

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindInsufficientFunds, []error{domaccount.ErrInsufficientFunds}},
	{KindTimeout, []error{domorder.ErrCheckoutTimeout, context.DeadlineExceeded}},
	{KindNotFound, []error{
		domaccount.ErrAccountNotFound,
		domaccount.ErrAccountInvalid,
		domorder.ErrAccountNotRegistered,
		domorder.ErrOrderNotFound,
		domcart.ErrCartItemNotFound,
		domref.ErrPaymentMethodNotFound,
		domref.ErrStatusNotFound,
		domprogram.ErrProgramNotFound,
		domuser.ErrUserNotFound,
	}},
	{KindInvalidState, []error{
		domaccount.ErrAccountInactive,
		domaccount.ErrAccountBlocked,
		domorder.ErrOrderCancelled,
	}},
	{KindInvalidInput, []error{
		money.ErrInvalidAmount,
		domcart.ErrInvalidQuantity,
		domorder.ErrIdempotencyKeyReused,
	}},
	{KindUnauthorized, []error{domuser.ErrUnauthorized, domuser.ErrForbidden}},
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInfrastructure
}

// IsBusiness reports whether err is an expected business outcome rather
// than a storage or programming failure.
func IsBusiness(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindInfrastructure
}
