package memory

import (
	"context"
	"sort"
	"time"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type UserRepository struct{ s *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domuser.ErrUserNotFound
	}
	return &u, nil
}

type ProgramRepository struct{ s *Store }

func NewProgramRepository(s *Store) *ProgramRepository { return &ProgramRepository{s: s} }

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*domprogram.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, domprogram.ErrProgramNotFound
	}
	return &p, nil
}

type ReferenceRepository struct{ s *Store }

func NewReferenceRepository(s *Store) *ReferenceRepository { return &ReferenceRepository{s: s} }

func (r *ReferenceRepository) GetStatus(ctx context.Context, module, name string) (*domref.Status, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.statuses {
		if equalLabel(st.Module, module) && equalLabel(st.Name, name) {
			out := st
			return &out, nil
		}
	}
	return nil, domref.ErrStatusNotFound
}

func (r *ReferenceRepository) GetPaymentMethod(ctx context.Context, code string) (*domref.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pm, ok := r.s.payments[code]
	if !ok {
		return nil, domref.ErrPaymentMethodNotFound
	}
	return &pm, nil
}

type AccountRepository struct{ s *Store }

func NewAccountRepository(s *Store) *AccountRepository { return &AccountRepository{s: s} }

func (r *AccountRepository) FindActiveByUser(ctx context.Context, userID int64) (*domaccount.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *domaccount.Account
	for _, a := range r.s.accounts {
		if a.Holder.UserID != userID || !a.Status.IsActive() {
			continue
		}
		if found == nil || a.Number < found.Number {
			found = a
		}
	}
	if found == nil {
		return nil, domaccount.ErrAccountNotFound
	}
	out := *found
	return &out, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domaccount.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[number]
	if !ok {
		return nil, domaccount.ErrAccountNotFound
	}
	out := *a
	return &out, nil
}

func (r *AccountRepository) Debit(ctx context.Context, number string, amount int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, _, err := r.s.debitLocked(number, amount)
	return balance, err
}

type CartRepository struct{ s *Store }

func NewCartRepository(s *Store) *CartRepository { return &CartRepository{s: s} }

func (r *CartRepository) Find(ctx context.Context, userID, programID int64) (*domcart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.cart {
		if item.UserID == userID && item.ProgramID == programID {
			out := *item
			return &out, nil
		}
	}
	return nil, domcart.ErrCartItemNotFound
}

func (r *CartRepository) GetByID(ctx context.Context, id int64) (*domcart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[id]
	if !ok {
		return nil, domcart.ErrCartItemNotFound
	}
	out := *item
	return &out, nil
}

func (r *CartRepository) Create(ctx context.Context, item *domcart.Item) (*domcart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.cart {
		if existing.UserID == item.UserID && existing.ProgramID == item.ProgramID {
			return nil, domcart.ErrDuplicateItem
		}
	}
	r.s.nextCartID++
	stored := *item
	stored.ID = r.s.nextCartID
	r.s.cart[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, id, quantity, unitPrice int64, modifiedAt time.Time) (*domcart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.cart[id]
	if !ok {
		return nil, domcart.ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.UnitPrice = unitPrice
	item.ModifiedAt = modifiedAt
	out := *item
	return &out, nil
}

func (r *CartRepository) ListItems(ctx context.Context, userID int64) ([]domcart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := []domcart.Item{}
	for _, item := range r.s.cart {
		if item.UserID == userID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *CartRepository) List(ctx context.Context, userID *int64) ([]domcart.DetailedItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := []domcart.DetailedItem{}
	for _, item := range r.s.cart {
		if userID != nil && item.UserID != *userID {
			continue
		}
		items = append(items, domcart.DetailedItem{
			Item:         *item,
			ProgramTitle: r.s.programs[item.ProgramID].Title,
			UserName:     r.s.users[item.UserID].Name,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ProgramID != items[j].ProgramID {
			return items[i].ProgramID < items[j].ProgramID
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *CartRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cart[id]; !ok {
		return domcart.ErrCartItemNotFound
	}
	delete(r.s.cart, id)
	return nil
}

type OrderRepository struct{ s *Store }

func NewOrderRepository(s *Store) *OrderRepository { return &OrderRepository{s: s} }

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findOrderLocked(func(o *domorder.Order) bool { return o.Number == number })
}

func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domorder.Order, error) {
	if key == "" {
		return nil, domorder.ErrOrderNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findOrderLocked(func(o *domorder.Order) bool { return o.IdempotencyKey == key })
}
