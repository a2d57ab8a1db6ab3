package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
)

const selectCartItem = `
        SELECT c.id, c.user_id, c.program_id, c.quantity, c.unit_price, c.modified_at
        FROM cart_items c
`

// CartRepository keeps unit_price in the legacy formatted column
// ("Rp400.000"); it is converted with the money codec on every read and
// write.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Find(ctx context.Context, userID, programID int64) (*domcart.Item, error) {
	return r.getOne(ctx, selectCartItem+`WHERE c.user_id = ? AND c.program_id = ?`, userID, programID)
}

func (r *CartRepository) GetByID(ctx context.Context, id int64) (*domcart.Item, error) {
	return r.getOne(ctx, selectCartItem+`WHERE c.id = ?`, id)
}

func (r *CartRepository) Create(ctx context.Context, item *domcart.Item) (*domcart.Item, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO cart_items (user_id, program_id, quantity, unit_price, modified_at)
        VALUES (?, ?, ?, ?, ?)
    `, item.UserID, item.ProgramID, item.Quantity, money.Format(item.UnitPrice), item.ModifiedAt.UTC())
	if err != nil {
		if duplicateKey(err, "") {
			return nil, domcart.ErrDuplicateItem
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *item
	out.ID = id
	return &out, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id, quantity, unitPrice int64, modifiedAt time.Time) (*domcart.Item, error) {
	_, err := r.db.ExecContext(ctx, `
        UPDATE cart_items SET quantity = ?, unit_price = ?, modified_at = ?
        WHERE id = ?
    `, quantity, money.Format(unitPrice), modifiedAt.UTC(), id)
	if err != nil {
		return nil, err
	}
	// re-read to return the stored line
	return r.GetByID(ctx, id)
}

func (r *CartRepository) ListItems(ctx context.Context, userID int64) ([]domcart.Item, error) {
	rows, err := r.db.QueryContext(ctx, selectCartItem+`WHERE c.user_id = ? ORDER BY c.id`, userID)
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
	query := `
        SELECT c.id, c.user_id, c.program_id, c.quantity, c.unit_price, c.modified_at,
               COALESCE(p.title, ''), COALESCE(u.name, '')
        FROM cart_items c
        LEFT JOIN programs p ON p.id = c.program_id
        LEFT JOIN users u ON u.id = c.user_id
    `
	var args []any
	if userID != nil {
		query += `WHERE c.user_id = ? `
		args = append(args, *userID)
	}
	query += `ORDER BY c.program_id, c.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domcart.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) getOne(ctx context.Context, query string, args ...any) (*domcart.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domcart.ErrCartItemNotFound
	}
	return scanCartItem(rows)
}

func scanCartItem(rows *sql.Rows) (*domcart.Item, error) {
	var item domcart.Item
	var price string
	if err := rows.Scan(&item.ID, &item.UserID, &item.ProgramID, &item.Quantity, &price, &item.ModifiedAt); err != nil {
		return nil, err
	}
	amount, err := money.Parse(price)
	if err != nil {
		return nil, fmt.Errorf("cart item %d: %w", item.ID, err)
	}
	item.UnitPrice = amount
	return &item, nil
}
