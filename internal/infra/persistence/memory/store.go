// Package memory is an in-process implementation of every storage port.
// It backs DB_DRIVER=memory and the orchestrator tests. Transactions hold
// the store lock for their whole duration and undo their writes on error.
package memory

import (
	"strings"
	"sync"
	"time"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type Store struct {
	mu       sync.Mutex
	users    map[int64]domuser.User
	programs map[int64]domprogram.Program
	accounts map[string]*domaccount.Account
	cart     map[int64]*domcart.Item
	orders   map[int64]*domorder.Order
	statuses []domref.Status
	payments map[string]domref.PaymentMethod

	nextCartID   int64
	nextOrderID  int64
	nextStatusID int64
	now          func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domuser.User),
		programs: make(map[int64]domprogram.Program),
		accounts: make(map[string]*domaccount.Account),
		cart:     make(map[int64]*domcart.Item),
		orders:   make(map[int64]*domorder.Order),
		payments: make(map[string]domref.PaymentMethod),
		now:      time.Now,
	}
}

func (s *Store) AddUser(u domuser.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) AddProgram(p domprogram.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[p.ID] = p
}

func (s *Store) AddAccount(a domaccount.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Number] = &a
}

// AddStatus registers a status label and returns it with its assigned id.
func (s *Store) AddStatus(module, name string) domref.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStatusID++
	st := domref.Status{ID: s.nextStatusID, Name: name, Module: module}
	s.statuses = append(s.statuses, st)
	return st
}

func (s *Store) AddPaymentMethod(pm domref.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[pm.Code] = pm
}

// Balance reports the stored balance of an account, or -1 when absent.
func (s *Store) Balance(number string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return -1
	}
	return a.Balance
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// SeedDemo loads a small dataset so a memory-backed server is usable
// without a database.
func SeedDemo(s *Store) {
	s.AddStatus("Sales", "Closed")
	s.AddStatus("Sales", "Cancelled")
	s.AddPaymentMethod(domref.PaymentMethod{Code: "TRPA-0001", Name: "Saldo"})
	s.AddUser(domuser.User{ID: 1, Name: "demo"})
	s.AddProgram(domprogram.Program{ID: 1, Title: "Golang Bootcamp", Price: 400000})
	s.AddAccount(domaccount.Account{
		Number:  "1234567890",
		Holder:  domaccount.Holder{UserID: 1, Name: "demo"},
		Status:  domaccount.StatusActive,
		Balance: 500000,
	})
}

func (s *Store) debitLocked(number string, amount int64) (int64, func(), error) {
	a, ok := s.accounts[number]
	if !ok {
		return 0, nil, domaccount.ErrAccountInvalid
	}
	switch a.Status {
	case domaccount.StatusActive:
	case domaccount.StatusBlocked:
		return 0, nil, domaccount.ErrAccountBlocked
	default:
		return 0, nil, domaccount.ErrAccountInactive
	}
	if a.Balance < amount {
		return 0, nil, domaccount.ErrInsufficientFunds
	}

	prevBalance, prevModified := a.Balance, a.ModifiedAt
	a.Balance -= amount
	a.ModifiedAt = s.now()
	undo := func() {
		a.Balance = prevBalance
		a.ModifiedAt = prevModified
	}
	return a.Balance, undo, nil
}

func (s *Store) insertOrderLocked(o *domorder.Order) (*domorder.Order, func(), error) {
	for _, existing := range s.orders {
		if existing.Number == o.Number {
			return nil, nil, domorder.ErrDuplicateOrderNumber
		}
		if o.IdempotencyKey != "" && existing.IdempotencyKey == o.IdempotencyKey {
			return nil, nil, domorder.ErrDuplicateIdempotencyKey
		}
	}

	s.nextOrderID++
	stored := *o
	stored.ID = s.nextOrderID
	s.orders[stored.ID] = &stored
	undo := func() { delete(s.orders, stored.ID) }

	out := stored
	return &out, undo, nil
}

func (s *Store) updateOrderStatusLocked(orderID, statusID int64) (func(), error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	st, ok := s.statusByIDLocked(statusID)
	if !ok {
		return nil, domref.ErrStatusNotFound
	}
	prev := o.Status
	o.Status = st
	return func() { o.Status = prev }, nil
}

func (s *Store) statusByIDLocked(id int64) (domref.Status, bool) {
	for _, st := range s.statuses {
		if st.ID == id {
			return st, true
		}
	}
	return domref.Status{}, false
}

func (s *Store) findOrderLocked(match func(*domorder.Order) bool) (*domorder.Order, error) {
	for _, o := range s.orders {
		if match(o) {
			out := *o
			return &out, nil
		}
	}
	return nil, domorder.ErrOrderNotFound
}

func equalLabel(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
