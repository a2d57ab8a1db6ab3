package order

import "time"

type EventType string

const (
	EventCreated   EventType = "order.created"
	EventCancelled EventType = "order.cancelled"
)

type Event struct {
	Type            EventType `json:"type"`
	OrderNumber     string    `json:"order_number"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	UserID          int64     `json:"user_id"`
	Subtotal        int64     `json:"subtotal"`
	AccountNumber   string    `json:"account_number"`
	PaymentCode     string    `json:"payment_code"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, o *Order, at time.Time) Event {
	return Event{
		Type:            t,
		OrderNumber:     o.Number,
		ReferenceNumber: o.ReferenceNumber,
		UserID:          o.UserID,
		Subtotal:        o.Subtotal,
		AccountNumber:   o.AccountNumber,
		PaymentCode:     o.PaymentCode,
		Status:          o.Status.Name,
		OccurredAt:      at.UTC(),
	}
}
