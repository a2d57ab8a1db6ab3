package order

import "context"

type Repository interface {
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)
}

// SettlementTx groups the writes that must commit or roll back together.
type SettlementTx interface {
	Debit(ctx context.Context, accountNumber string, amount int64) (int64, error)
	Insert(ctx context.Context, o *Order) (*Order, error)
	UpdateStatus(ctx context.Context, orderID, statusID int64) error
}

// Settler runs fn inside one storage transaction. Any error returned by
// fn rolls back every write made through tx.
type Settler interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx SettlementTx) error) error
}
