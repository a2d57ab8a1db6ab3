package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
)

func seededStore() *Store {
	s := NewStore()
	SeedDemo(s)
	return s
}

func TestAccountRepository_Debit(t *testing.T) {
	s := seededStore()
	repo := NewAccountRepository(s)
	ctx := context.Background()

	balance, err := repo.Debit(ctx, "1234567890", 400000)
	require.NoError(t, err)
	require.Equal(t, int64(100000), balance)

	_, err = repo.Debit(ctx, "1234567890", 100001)
	require.ErrorIs(t, err, domaccount.ErrInsufficientFunds)
	require.Equal(t, int64(100000), s.Balance("1234567890"))

	_, err = repo.Debit(ctx, "0000", 1)
	require.ErrorIs(t, err, domaccount.ErrAccountInvalid)
}

func TestAccountRepository_DebitRejectsBlocked(t *testing.T) {
	s := NewStore()
	s.AddAccount(domaccount.Account{Number: "9", Status: domaccount.StatusBlocked, Balance: 10})

	_, err := NewAccountRepository(s).Debit(context.Background(), "9", 1)

	require.ErrorIs(t, err, domaccount.ErrAccountBlocked)
	require.Equal(t, int64(10), s.Balance("9"))
}

func TestSettler_RollsBackOnError(t *testing.T) {
	s := seededStore()
	settler := NewSettler(s)
	boom := errors.New("boom")

	err := settler.WithinTx(context.Background(), func(ctx context.Context, tx domorder.SettlementTx) error {
		if _, err := tx.Debit(ctx, "1234567890", 400000); err != nil {
			return err
		}
		if _, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0001", UserID: 1}); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, int64(500000), s.Balance("1234567890"))
	require.Zero(t, s.OrderCount())
}

func TestSettler_CommitsAndEnforcesUniqueness(t *testing.T) {
	s := seededStore()
	settler := NewSettler(s)
	ctx := context.Background()

	err := settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		_, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0001", IdempotencyKey: "k1"})
		return err
	})
	require.NoError(t, err)

	err = settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		_, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0001"})
		return err
	})
	require.ErrorIs(t, err, domorder.ErrDuplicateOrderNumber)

	err = settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		_, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0002", IdempotencyKey: "k1"})
		return err
	})
	require.ErrorIs(t, err, domorder.ErrDuplicateIdempotencyKey)

	o, err := NewOrderRepository(s).GetByIdempotencyKey(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "PO-20240309-0001", o.Number)
	require.Equal(t, 1, s.OrderCount())
}

func TestSettler_UpdateStatusRollsBack(t *testing.T) {
	s := seededStore()
	settler := NewSettler(s)
	refs := NewReferenceRepository(s)
	ctx := context.Background()

	closed, err := refs.GetStatus(ctx, "sales", "closed")
	require.NoError(t, err)
	cancelled, err := refs.GetStatus(ctx, "Sales", "Cancelled")
	require.NoError(t, err)

	var id int64
	require.NoError(t, settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		o, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0001", Status: *closed})
		if err != nil {
			return err
		}
		id = o.ID
		return nil
	}))

	err = settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		if err := tx.UpdateStatus(ctx, id, cancelled.ID); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, &domorder.Order{Number: "PO-20240309-0001"})
		return err
	})
	require.ErrorIs(t, err, domorder.ErrDuplicateOrderNumber)

	o, err := NewOrderRepository(s).GetByNumber(ctx, "PO-20240309-0001")
	require.NoError(t, err)
	require.Equal(t, "Closed", o.Status.Name)
}

func TestSettler_ExpiredContext(t *testing.T) {
	s := seededStore()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	err := NewSettler(s).WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReferenceRepository(t *testing.T) {
	s := seededStore()
	refs := NewReferenceRepository(s)
	ctx := context.Background()

	pm, err := refs.GetPaymentMethod(ctx, "TRPA-0001")
	require.NoError(t, err)
	require.Equal(t, "Saldo", pm.Name)

	_, err = refs.GetPaymentMethod(ctx, "nope")
	require.ErrorIs(t, err, domref.ErrPaymentMethodNotFound)

	_, err = refs.GetStatus(ctx, "Billing", "Closed")
	require.ErrorIs(t, err, domref.ErrStatusNotFound)
}

func TestCartRepository_UniquePairAndOrdering(t *testing.T) {
	s := seededStore()
	repo := NewCartRepository(s)
	ctx := context.Background()

	first, err := repo.Create(ctx, &domcart.Item{UserID: 1, ProgramID: 2, Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domcart.Item{UserID: 1, ProgramID: 1, Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domcart.Item{UserID: 1, ProgramID: 2, Quantity: 1, UnitPrice: 10})
	require.ErrorIs(t, err, domcart.ErrDuplicateItem)

	items, err := repo.ListItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first.ID, items[0].ID)

	detailed, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), detailed[0].ProgramID)
	require.Equal(t, "Golang Bootcamp", detailed[0].ProgramTitle)
	require.Equal(t, "demo", detailed[0].UserName)

	require.NoError(t, repo.Delete(ctx, first.ID))
	require.ErrorIs(t, repo.Delete(ctx, first.ID), domcart.ErrCartItemNotFound)
}
