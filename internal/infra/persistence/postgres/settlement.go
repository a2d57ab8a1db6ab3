package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
)

type Settler struct {
	pool *pgxpool.Pool
}

func NewSettler(pool *pgxpool.Pool) *Settler {
	return &Settler{pool: pool}
}

func (s *Settler) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domorder.SettlementTx) error) (retErr error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(ctx, &settlementTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type settlementTx struct {
	tx pgx.Tx
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
