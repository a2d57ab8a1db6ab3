package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
)

type mockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domaccount.Account
	getErr   error
}

func newMockAccountRepository(accounts ...domaccount.Account) *mockAccountRepository {
	m := &mockAccountRepository{accounts: make(map[string]*domaccount.Account)}
	for i := range accounts {
		a := accounts[i]
		m.accounts[a.Number] = &a
	}
	return m
}

func (m *mockAccountRepository) FindActiveByUser(ctx context.Context, userID int64) (*domaccount.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Holder.UserID == userID && a.Status == domaccount.StatusActive {
			cloned := *a
			return &cloned, nil
		}
	}
	return nil, domaccount.ErrAccountNotFound
}

func (m *mockAccountRepository) GetByNumber(ctx context.Context, number string) (*domaccount.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[number]
	if !ok {
		return nil, domaccount.ErrAccountNotFound
	}
	cloned := *a
	return &cloned, nil
}

func (m *mockAccountRepository) Debit(ctx context.Context, number string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[number]
	if !ok {
		return 0, domaccount.ErrAccountInvalid
	}
	if a.Balance < amount {
		return 0, domaccount.ErrInsufficientFunds
	}
	a.Balance -= amount
	return a.Balance, nil
}

func (m *mockAccountRepository) balance(number string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[number].Balance
}

func activeAccount(number string, balance int64) domaccount.Account {
	return domaccount.Account{
		Number:  number,
		Holder:  domaccount.Holder{UserID: 7, Name: "budi"},
		Status:  domaccount.StatusActive,
		Balance: balance,
	}
}

func TestVerify_ActiveAccount_ReturnsMaskedHolder(t *testing.T) {
	repo := newMockAccountRepository(activeAccount("1234567890", 500000))
	svc := NewService(repo)

	res, err := svc.Verify(context.Background(), "1234567890")

	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "account number: 1234567890 is valid", res.Message)
	require.Equal(t, domaccount.Holder{UserID: 7, Name: "budi"}, res.Holder)
}

func TestVerify_AccountStates(t *testing.T) {
	tests := []struct {
		name    string
		status  domaccount.Status
		wantErr error
	}{
		{name: "inactive", status: domaccount.StatusInactive, wantErr: domaccount.ErrAccountInactive},
		{name: "blocked", status: domaccount.StatusBlocked, wantErr: domaccount.ErrAccountBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := activeAccount("1234567890", 500000)
			acct.Status = tt.status
			repo := newMockAccountRepository(acct)
			svc := NewService(repo)

			res, err := svc.Verify(context.Background(), "1234567890")

			require.ErrorIs(t, err, tt.wantErr)
			require.Contains(t, err.Error(), "1234567890")
			require.Nil(t, res)
			require.Equal(t, int64(500000), repo.balance("1234567890"), "balance must be untouched")
		})
	}
}

func TestVerify_UnknownAccount_ReturnsInvalid(t *testing.T) {
	svc := NewService(newMockAccountRepository())

	_, err := svc.Verify(context.Background(), "999")
	require.ErrorIs(t, err, domaccount.ErrAccountInvalid)
	require.Contains(t, err.Error(), "account number: 999")

	_, err = svc.Verify(context.Background(), "   ")
	require.ErrorIs(t, err, domaccount.ErrAccountInvalid)
}

func TestVerify_RepositoryFailure_IsPropagated(t *testing.T) {
	repo := newMockAccountRepository()
	repo.getErr = errors.New("connection refused")
	svc := NewService(repo)

	_, err := svc.Verify(context.Background(), "1234567890")
	require.EqualError(t, err, "connection refused")
}

func TestInquire_ReturnsBalance(t *testing.T) {
	svc := NewService(newMockAccountRepository(activeAccount("1234567890", 750000)))

	acct, err := svc.Inquire(context.Background(), "1234567890")

	require.NoError(t, err)
	require.Equal(t, int64(750000), acct.Balance)
	require.Equal(t, "budi", acct.Holder.Name)
}

func TestFindActiveAccount(t *testing.T) {
	inactive := activeAccount("111", 10)
	inactive.Status = domaccount.StatusInactive
	inactive.Holder.UserID = 8
	svc := NewService(newMockAccountRepository(activeAccount("222", 10), inactive))

	acct, err := svc.FindActiveAccount(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "222", acct.Number)
	require.True(t, acct.Status.IsActive())

	_, err = svc.FindActiveAccount(context.Background(), 8)
	require.ErrorIs(t, err, domaccount.ErrAccountNotFound)
}

func TestDebit_SufficientBalance(t *testing.T) {
	cases := []struct{ balance, amount int64 }{
		{500000, 400000},
		{500000, 500000},
		{500000, 0},
		{1, 1},
	}
	for _, c := range cases {
		repo := newMockAccountRepository(activeAccount("1234567890", c.balance))
		svc := NewService(repo)

		got, err := svc.Debit(context.Background(), "1234567890", c.amount)

		require.NoError(t, err)
		require.Equal(t, c.balance-c.amount, got)
		require.Equal(t, c.balance-c.amount, repo.balance("1234567890"))
	}
}

func TestDebit_InsufficientBalance_LeavesBalanceUnchanged(t *testing.T) {
	cases := []struct{ balance, amount int64 }{
		{500000, 500001},
		{0, 1},
		{100000, 400000},
	}
	for _, c := range cases {
		repo := newMockAccountRepository(activeAccount("1234567890", c.balance))
		svc := NewService(repo)

		_, err := svc.Debit(context.Background(), "1234567890", c.amount)

		require.ErrorIs(t, err, domaccount.ErrInsufficientFunds)
		require.Equal(t, c.balance, repo.balance("1234567890"))
	}
}

func TestDebit_NegativeAmount_Rejected(t *testing.T) {
	repo := newMockAccountRepository(activeAccount("1234567890", 100))
	svc := NewService(repo)

	_, err := svc.Debit(context.Background(), "1234567890", -5)

	require.ErrorIs(t, err, money.ErrInvalidAmount)
	require.Equal(t, int64(100), repo.balance("1234567890"))
}
