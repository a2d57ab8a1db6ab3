package account

import "context"

type Repository interface {
	FindActiveByUser(ctx context.Context, userID int64) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	// Debit subtracts amount only when the account is active and holds at
	// least amount, in a single statement. It returns the new balance.
	Debit(ctx context.Context, number string, amount int64) (int64, error)
}
