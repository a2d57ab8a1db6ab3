package mysql

import (
	"context"
	"database/sql"
	"errors"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
)

const selectOrder = `
        SELECT o.id, o.order_number, o.user_id, COALESCE(u.name, ''), o.order_date, o.subtotal,
               o.account_number, o.payment_code, s.id, s.name, s.module,
               COALESCE(o.idempotency_key, ''), COALESCE(o.reference_number, '')
        FROM orders o
        JOIN statuses s ON s.id = o.status_id
        LEFT JOIN users u ON u.id = o.user_id
`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	return getOrder(ctx, r.db, `WHERE o.order_number = ?`, number)
}

func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domorder.Order, error) {
	if key == "" {
		return nil, domorder.ErrOrderNotFound
	}
	return getOrder(ctx, r.db, `WHERE o.idempotency_key = ?`, key)
}

func getOrder(ctx context.Context, q querier, where string, args ...any) (*domorder.Order, error) {
	var o domorder.Order
	err := q.QueryRowContext(ctx, selectOrder+where, args...).Scan(
		&o.ID, &o.Number, &o.UserID, &o.UserName, &o.OrderDate, &o.Subtotal,
		&o.AccountNumber, &o.PaymentCode, &o.Status.ID, &o.Status.Name, &o.Status.Module,
		&o.IdempotencyKey, &o.ReferenceNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func insertOrder(ctx context.Context, q querier, o *domorder.Order) (*domorder.Order, error) {
	res, err := q.ExecContext(ctx, `
        INSERT INTO orders (order_number, user_id, order_date, subtotal, account_number,
                            payment_code, status_id, idempotency_key, reference_number)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, o.Number, o.UserID, o.OrderDate.UTC(), o.Subtotal, o.AccountNumber,
		o.PaymentCode, o.Status.ID, nullString(o.IdempotencyKey), nullString(o.ReferenceNumber))
	if err != nil {
		switch {
		case duplicateKey(err, "idempotency_key"):
			return nil, domorder.ErrDuplicateIdempotencyKey
		case duplicateKey(err, ""):
			return nil, domorder.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *o
	out.ID = id
	return &out, nil
}

func updateOrderStatus(ctx context.Context, q querier, orderID, statusID int64) error {
	res, err := q.ExecContext(ctx, `UPDATE orders SET status_id = ? WHERE id = ?`, statusID, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domorder.ErrOrderNotFound
	}
	return nil
}
