package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
)

const selectAccount = `
        SELECT a.account_number, a.user_id, COALESCE(u.name, ''), a.status, a.balance, a.modified_at
        FROM accounts a
        LEFT JOIN users u ON u.id = a.user_id
`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindActiveByUser(ctx context.Context, userID int64) (*domaccount.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, selectAccount+`
        WHERE a.user_id = ? AND a.status = ?
        ORDER BY a.account_number
        LIMIT 1
    `, userID, string(domaccount.StatusActive)))
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domaccount.Account, error) {
	return getAccount(ctx, r.db, number)
}

func (r *AccountRepository) Debit(ctx context.Context, number string, amount int64) (_ int64, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	balance, err := debit(ctx, tx, number, amount)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// debit is one conditional UPDATE; the follow-up read only explains a
// zero-row result or reports the new balance.
func debit(ctx context.Context, q querier, number string, amount int64) (int64, error) {
	res, err := q.ExecContext(ctx, `
        UPDATE accounts
        SET balance = balance - ?, modified_at = ?
        WHERE account_number = ? AND status = ? AND balance >= ?
    `, amount, time.Now().UTC(), number, string(domaccount.StatusActive), amount)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	acct, err := getAccount(ctx, q, number)
	if err != nil {
		if errors.Is(err, domaccount.ErrAccountNotFound) {
			return 0, domaccount.ErrAccountInvalid
		}
		return 0, err
	}
	if rows == 1 {
		return acct.Balance, nil
	}

	// Open sets ClientFoundRows, so zero rows means the WHERE did not match.
	// A balance read here may already include a later top-up; it never
	// turns a failed UPDATE into a success.
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
	return scanAccount(q.QueryRowContext(ctx, selectAccount+`
        WHERE a.account_number = ?
    `, number))
}

func scanAccount(row *sql.Row) (*domaccount.Account, error) {
	var a domaccount.Account
	var status string
	if err := row.Scan(&a.Number, &a.Holder.UserID, &a.Holder.Name, &status, &a.Balance, &a.ModifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domaccount.ErrAccountNotFound
		}
		return nil, err
	}
	a.Status = domaccount.Status(status)
	return &a, nil
}
