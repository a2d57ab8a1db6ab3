package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
)

type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// GetStatus matches module and name case-insensitively under the default
// collation.
func (r *ReferenceRepository) GetStatus(ctx context.Context, module, name string) (*domref.Status, error) {
	var st domref.Status
	err := r.db.QueryRowContext(ctx, `
        SELECT id, name, module
        FROM statuses
        WHERE module = TRIM(?) AND name = TRIM(?)
        ORDER BY id
        LIMIT 1
    `, module, name).Scan(&st.ID, &st.Name, &st.Module)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("status %s/%s: %w", module, name, domref.ErrStatusNotFound)
		}
		return nil, err
	}
	return &st, nil
}

func (r *ReferenceRepository) GetPaymentMethod(ctx context.Context, code string) (*domref.PaymentMethod, error) {
	var pm domref.PaymentMethod
	err := r.db.QueryRowContext(ctx, `
        SELECT code, name FROM payment_methods WHERE code = ?
    `, code).Scan(&pm.Code, &pm.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment code %q: %w", code, domref.ErrPaymentMethodNotFound)
		}
		return nil, err
	}
	return &pm, nil
}
