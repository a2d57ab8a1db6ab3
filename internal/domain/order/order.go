package order

import (
	"strings"
	"time"

	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
)

const cancelledLabel = "cancelled"

// Order is a sales order header. AccountNumber is a copy taken at charge
// time, not a live reference to the account.
type Order struct {
	ID              int64
	Number          string
	UserID          int64
	UserName        string
	OrderDate       time.Time
	Subtotal        int64
	AccountNumber   string
	PaymentCode     string
	Status          domref.Status
	IdempotencyKey  string
	ReferenceNumber string
}

func (o *Order) IsCancelled() bool {
	return strings.EqualFold(strings.TrimSpace(o.Status.Name), cancelledLabel)
}

// Summary is the redacted view returned by order lookups.
type Summary struct {
	AccountNumber     string
	AccountName       string
	Credit            int64
	TransactionNumber string
}

func (o *Order) Summary() Summary {
	return Summary{
		AccountNumber:     o.AccountNumber,
		AccountName:       o.UserName,
		Credit:            o.Subtotal,
		TransactionNumber: o.PaymentCode,
	}
}
