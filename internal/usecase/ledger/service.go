package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
)

type Service struct {
	repo domaccount.Repository
}

func NewService(repo domaccount.Repository) *Service {
	return &Service{repo: repo}
}

type Verification struct {
	Valid   bool
	Message string
	Holder  domaccount.Holder
}

func (s *Service) FindActiveAccount(ctx context.Context, userID int64) (*domaccount.Account, error) {
	acct, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !acct.Status.IsActive() {
		return nil, domaccount.ErrAccountNotFound
	}
	return acct, nil
}

func (s *Service) Verify(ctx context.Context, number string) (*Verification, error) {
	acct, err := s.lookup(ctx, number)
	if err != nil {
		return nil, err
	}
	return &Verification{
		Valid:   true,
		Message: fmt.Sprintf("account number: %s is valid", acct.Number),
		Holder:  acct.Holder,
	}, nil
}

// Inquire returns the balance view of an account that passes verification.
func (s *Service) Inquire(ctx context.Context, number string) (*domaccount.Account, error) {
	return s.lookup(ctx, number)
}

func (s *Service) Debit(ctx context.Context, number string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit %d: %w", amount, money.ErrInvalidAmount)
	}
	balance, err := s.repo.Debit(ctx, number, amount)
	if err != nil {
		return 0, fmt.Errorf("account number: %s: %w", number, err)
	}
	return balance, nil
}

func (s *Service) lookup(ctx context.Context, number string) (*domaccount.Account, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("account number: %q: %w", number, domaccount.ErrAccountInvalid)
	}

	acct, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domaccount.ErrAccountNotFound) {
			return nil, fmt.Errorf("account number: %s: %w", number, domaccount.ErrAccountInvalid)
		}
		return nil, err
	}

	switch acct.Status {
	case domaccount.StatusActive:
		return acct, nil
	case domaccount.StatusBlocked:
		return nil, fmt.Errorf("account number: %s: %w", number, domaccount.ErrAccountBlocked)
	default:
		return nil, fmt.Errorf("account number: %s: %w", number, domaccount.ErrAccountInactive)
	}
}
