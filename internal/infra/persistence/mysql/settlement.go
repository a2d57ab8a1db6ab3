package mysql

import (
	"context"
	"database/sql"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
)

type Settler struct {
	db *sql.DB
}

func NewSettler(db *sql.DB) *Settler {
	return &Settler{db: db}
}

func (s *Settler) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domorder.SettlementTx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &settlementTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type settlementTx struct {
	tx *sql.Tx
}

func (t *settlementTx) Debit(ctx context.Context, accountNumber string, amount int64) (int64, error) {
	return debit(ctx, t.tx, accountNumber, amount)
}

func (t *settlementTx) Insert(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	return insertOrder(ctx, t.tx, o)
}

func (t *settlementTx) UpdateStatus(ctx context.Context, orderID, statusID int64) error {
	return updateOrderStatus(ctx, t.tx, orderID, statusID)
}
