package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type UserRepository struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) *UserRepository { return &UserRepository{pool: pool} }

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	var u domuser.User
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domuser.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type ProgramRepository struct{ pool *pgxpool.Pool }

func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{pool: pool}
}

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*domprogram.Program, error) {
	var p domprogram.Program
	err := r.pool.QueryRow(ctx, `SELECT id, title, price FROM programs WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domprogram.ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ReferenceRepository struct{ pool *pgxpool.Pool }

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

func (r *ReferenceRepository) GetStatus(ctx context.Context, module, name string) (*domref.Status, error) {
	var st domref.Status
	err := r.pool.QueryRow(ctx, `
        SELECT id, name, module
        FROM statuses
        WHERE lower(module) = lower(trim($1)) AND lower(name) = lower(trim($2))
        ORDER BY id
        LIMIT 1
    `, module, name).Scan(&st.ID, &st.Name, &st.Module)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("status %s/%s: %w", module, name, domref.ErrStatusNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *ReferenceRepository) GetPaymentMethod(ctx context.Context, code string) (*domref.PaymentMethod, error) {
	var pm domref.PaymentMethod
	err := r.pool.QueryRow(ctx, `SELECT code, name FROM payment_methods WHERE code = $1`, code).
		Scan(&pm.Code, &pm.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment code %q: %w", code, domref.ErrPaymentMethodNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

const selectAccount = `
        SELECT a.account_number, a.user_id, COALESCE(u.name, ''), a.status, a.balance, a.modified_at
        FROM accounts a
        LEFT JOIN users u ON u.id = a.user_id
`

type AccountRepository struct{ pool *pgxpool.Pool }

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindActiveByUser(ctx context.Context, userID int64) (*domaccount.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+`
        WHERE a.user_id = $1 AND a.status = $2
        ORDER BY a.account_number
        LIMIT 1
    `, userID, string(domaccount.StatusActive)))
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domaccount.Account, error) {
	return getAccount(ctx, r.pool, number)
}

// Debit runs outside any settlement, so the single statement is its own
// transaction.
func (r *AccountRepository) Debit(ctx context.Context, number string, amount int64) (int64, error) {
	return debit(ctx, r.pool, number, amount)
}

func debit(ctx context.Context, q querier, number string, amount int64) (int64, error) {
	var balance int64
	err := q.QueryRow(ctx, `
        UPDATE accounts
        SET balance = balance - $1, modified_at = now()
        WHERE account_number = $2 AND status = $3 AND balance >= $1
        RETURNING balance
    `, amount, number, string(domaccount.StatusActive)).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	acct, err := getAccount(ctx, q, number)
	if err != nil {
		if errors.Is(err, domaccount.ErrAccountNotFound) {
			return 0, domaccount.ErrAccountInvalid
		}
		return 0, err
	}
	switch {
	case acct.Status == domaccount.StatusBlocked:
		return 0, domaccount.ErrAccountBlocked
	case !acct.Status.IsActive():
		return 0, domaccount.ErrAccountInactive
	default:
		return 0, domaccount.ErrInsufficientFunds
	}
}

func getAccount(ctx context.Context, q querier, number string) (*domaccount.Account, error) {
	return scanAccount(q.QueryRow(ctx, selectAccount+`WHERE a.account_number = $1`, number))
}

func scanAccount(row pgx.Row) (*domaccount.Account, error) {
	var a domaccount.Account
	var status string
	err := row.Scan(&a.Number, &a.Holder.UserID, &a.Holder.Name, &status, &a.Balance, &a.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domaccount.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = domaccount.Status(status)
	return &a, nil
}

const selectCartItem = `
        SELECT c.id, c.user_id, c.program_id, c.quantity, c.unit_price, c.modified_at
        FROM cart_items c
`

type CartRepository struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) *CartRepository { return &CartRepository{pool: pool} }

func (r *CartRepository) Find(ctx context.Context, userID, programID int64) (*domcart.Item, error) {
	return scanCartItem(r.pool.QueryRow(ctx, selectCartItem+`WHERE c.user_id = $1 AND c.program_id = $2`, userID, programID))
}

func (r *CartRepository) GetByID(ctx context.Context, id int64) (*domcart.Item, error) {
	return scanCartItem(r.pool.QueryRow(ctx, selectCartItem+`WHERE c.id = $1`, id))
}

func (r *CartRepository) Create(ctx context.Context, item *domcart.Item) (*domcart.Item, error) {
	out := *item
	err := r.pool.QueryRow(ctx, `
        INSERT INTO cart_items (user_id, program_id, quantity, unit_price, modified_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, item.UserID, item.ProgramID, item.Quantity, money.Format(item.UnitPrice), item.ModifiedAt.UTC()).Scan(&out.ID)
	if err != nil {
		if duplicateKey(err, "") {
			return nil, domcart.ErrDuplicateItem
		}
		return nil, err
	}
	return &out, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id, quantity, unitPrice int64, modifiedAt time.Time) (*domcart.Item, error) {
	return scanCartItem(r.pool.QueryRow(ctx, `
        UPDATE cart_items SET quantity = $1, unit_price = $2, modified_at = $3
        WHERE id = $4
        RETURNING id, user_id, program_id, quantity, unit_price, modified_at
    `, quantity, money.Format(unitPrice), modifiedAt.UTC(), id))
}

func (r *CartRepository) ListItems(ctx context.Context, userID int64) ([]domcart.Item, error) {
	rows, err := r.pool.Query(ctx, selectCartItem+`WHERE c.user_id = $1 ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domcart.Item{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *CartRepository) List(ctx context.Context, userID *int64) ([]domcart.DetailedItem, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT c.id, c.user_id, c.program_id, c.quantity, c.unit_price, c.modified_at,
               COALESCE(p.title, ''), COALESCE(u.name, '')
        FROM cart_items c
        LEFT JOIN programs p ON p.id = c.program_id
        LEFT JOIN users u ON u.id = c.user_id
        WHERE $1::BIGINT IS NULL OR c.user_id = $1
        ORDER BY c.program_id, c.id
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domcart.DetailedItem{}
	for rows.Next() {
		var d domcart.DetailedItem
		var price string
		if err := rows.Scan(&d.ID, &d.UserID, &d.ProgramID, &d.Quantity, &price, &d.ModifiedAt, &d.ProgramTitle, &d.UserName); err != nil {
			return nil, err
		}
		if d.UnitPrice, err = money.Parse(price); err != nil {
			return nil, fmt.Errorf("cart item %d: %w", d.ID, err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domcart.ErrCartItemNotFound
	}
	return nil
}

func scanCartItem(row pgx.Row) (*domcart.Item, error) {
	var item domcart.Item
	var price string
	err := row.Scan(&item.ID, &item.UserID, &item.ProgramID, &item.Quantity, &price, &item.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domcart.ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if item.UnitPrice, err = money.Parse(price); err != nil {
		return nil, fmt.Errorf("cart item %d: %w", item.ID, err)
	}
	return &item, nil
}

const selectOrder = `
        SELECT o.id, o.order_number, o.user_id, COALESCE(u.name, ''), o.order_date, o.subtotal,
               o.account_number, o.payment_code, s.id, s.name, s.module,
               COALESCE(o.idempotency_key, ''), COALESCE(o.reference_number, '')
        FROM orders o
        JOIN statuses s ON s.id = o.status_id
        LEFT JOIN users u ON u.id = o.user_id
`

type OrderRepository struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, selectOrder+`WHERE o.order_number = $1`, number))
}

func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domorder.Order, error) {
	if key == "" {
		return nil, domorder.ErrOrderNotFound
	}
	return scanOrder(r.pool.QueryRow(ctx, selectOrder+`WHERE o.idempotency_key = $1`, key))
}

func scanOrder(row pgx.Row) (*domorder.Order, error) {
	var o domorder.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.UserName, &o.OrderDate, &o.Subtotal,
		&o.AccountNumber, &o.PaymentCode, &o.Status.ID, &o.Status.Name, &o.Status.Module,
		&o.IdempotencyKey, &o.ReferenceNumber,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domorder.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func insertOrder(ctx context.Context, q querier, o *domorder.Order) (*domorder.Order, error) {
	out := *o
	err := q.QueryRow(ctx, `
        INSERT INTO orders (order_number, user_id, order_date, subtotal, account_number,
                            payment_code, status_id, idempotency_key, reference_number)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `, o.Number, o.UserID, o.OrderDate.UTC(), o.Subtotal, o.AccountNumber,
		o.PaymentCode, o.Status.ID, nullable(o.IdempotencyKey), nullable(o.ReferenceNumber)).Scan(&out.ID)
	if err != nil {
		switch {
		case duplicateKey(err, "idempotency_key"):
			return nil, domorder.ErrDuplicateIdempotencyKey
		case duplicateKey(err, ""):
			return nil, domorder.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return &out, nil
}

func updateOrderStatus(ctx context.Context, q querier, orderID, statusID int64) error {
	tag, err := q.Exec(ctx, `UPDATE orders SET status_id = $1 WHERE id = $2`, statusID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domorder.ErrOrderNotFound
	}
	return nil
}
