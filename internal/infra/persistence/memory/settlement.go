package memory

import (
	"context"
	"errors"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
)

var errTxClosed = errors.New("memory: transaction already finished")

type Settler struct{ s *Store }

func NewSettler(s *Store) *Settler { return &Settler{s: s} }

// WithinTx serializes transactions on the store lock. Writes are undone
// in reverse order when fn returns an error or panics.
func (st *Settler) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domorder.SettlementTx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	tx := &settlementTx{s: st.s}
	defer func() {
		tx.done = true
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
		if err != nil {
			tx.rollback()
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	// a deadline that passed while fn ran still aborts the commit
	return ctx.Err()
}

type settlementTx struct {
	s    *Store
	undo []func()
	done bool
}

func (tx *settlementTx) Debit(ctx context.Context, accountNumber string, amount int64) (int64, error) {
	if err := tx.check(ctx); err != nil {
		return 0, err
	}
	balance, undo, err := tx.s.debitLocked(accountNumber, amount)
	if err != nil {
		return 0, err
	}
	tx.undo = append(tx.undo, undo)
	return balance, nil
}

func (tx *settlementTx) Insert(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	if err := tx.check(ctx); err != nil {
		return nil, err
	}
	stored, undo, err := tx.s.insertOrderLocked(o)
	if err != nil {
		return nil, err
	}
	tx.undo = append(tx.undo, undo)
	return stored, nil
}

func (tx *settlementTx) UpdateStatus(ctx context.Context, orderID, statusID int64) error {
	if err := tx.check(ctx); err != nil {
		return err
	}
	undo, err := tx.s.updateOrderStatusLocked(orderID, statusID)
	if err != nil {
		return err
	}
	tx.undo = append(tx.undo, undo)
	return nil
}

func (tx *settlementTx) check(ctx context.Context) error {
	if tx.done {
		return errTxClosed
	}
	return ctx.Err()
}

func (tx *settlementTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}
