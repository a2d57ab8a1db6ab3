package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
	domprogram "github.com/arimulian/Revamp-Codeid-sales/internal/domain/program"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type CartRepository interface {
	domcart.Repository
}

type ProgramRepository interface {
	GetByID(ctx context.Context, id int64) (*domprogram.Program, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domuser.User, error)
}

// Cache holds per-user cart listings. Any Get error is treated as a miss.
type Cache interface {
	Get(ctx context.Context, userID int64) ([]domcart.DetailedItem, error)
	Set(ctx context.Context, userID int64, items []domcart.DetailedItem) error
	Delete(ctx context.Context, userID int64) error
}

type Service struct {
	cartRepo    CartRepository
	programRepo ProgramRepository
	userRepo    UserRepository
	cache       Cache
	loads       singleflight.Group
	now         func() time.Time

	// gens counts invalidations per user so a load that raced a mutation
	// does not write its stale result back into the cache.
	genMu sync.Mutex
	gens  map[int64]uint64
}

// NewService wires the cart store. cache may be nil.
func NewService(cartRepo CartRepository, programRepo ProgramRepository, userRepo UserRepository, cache Cache) *Service {
	return &Service{
		cartRepo:    cartRepo,
		programRepo: programRepo,
		userRepo:    userRepo,
		cache:       cache,
		now:         time.Now,
		gens:        make(map[int64]uint64),
	}
}

func (s *Service) AddOrMerge(ctx context.Context, userID, programID, quantity int64) (*domcart.Item, error) {
	if quantity <= 0 {
		return nil, domcart.ErrInvalidQuantity
	}

	p, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.addOrMerge(ctx, userID, p, quantity)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return item, nil
}

func (s *Service) addOrMerge(ctx context.Context, userID int64, p *domprogram.Program, quantity int64) (*domcart.Item, error) {
	existing, err := s.cartRepo.Find(ctx, userID, p.ID)
	if err == nil {
		return s.merge(ctx, existing, quantity)
	}
	if !errors.Is(err, domcart.ErrCartItemNotFound) {
		return nil, err
	}

	price, err := money.Multiply(p.Price, quantity)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.Create(ctx, &domcart.Item{
		UserID:     userID,
		ProgramID:  p.ID,
		Quantity:   quantity,
		UnitPrice:  price,
		ModifiedAt: s.now(),
	})
	if errors.Is(err, domcart.ErrDuplicateItem) {
		// another request created the line first
		existing, err = s.cartRepo.Find(ctx, userID, p.ID)
		if err != nil {
			return nil, err
		}
		return s.merge(ctx, existing, quantity)
	}
	return item, err
}

func (s *Service) merge(ctx context.Context, existing *domcart.Item, quantity int64) (*domcart.Item, error) {
	newQuantity, err := money.Add(existing.Quantity, quantity)
	if err != nil {
		return nil, err
	}
	price, err := money.Multiply(existing.Rate(), newQuantity)
	if err != nil {
		return nil, err
	}
	return s.cartRepo.UpdateQuantity(ctx, existing.ID, newQuantity, price, s.now())
}

// List returns the cart of userID, or every cart line when userID is nil.
func (s *Service) List(ctx context.Context, userID *int64) ([]domcart.DetailedItem, error) {
	if userID == nil || s.cache == nil {
		return s.cartRepo.List(ctx, userID)
	}

	if items, err := s.cache.Get(ctx, *userID); err == nil {
		return items, nil
	}

	v, err, _ := s.loads.Do(strconv.FormatInt(*userID, 10), func() (any, error) {
		gen := s.generation(*userID)
		items, err := s.cartRepo.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.genMu.Lock()
		defer s.genMu.Unlock()
		if s.gens[*userID] == gen {
			_ = s.cache.Set(ctx, *userID, items)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domcart.DetailedItem), nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.remove(ctx, id, nil)
}

// RemoveOwned deletes the line only when it belongs to userID.
func (s *Service) RemoveOwned(ctx context.Context, id, userID int64) error {
	return s.remove(ctx, id, &userID)
}

func (s *Service) remove(ctx context.Context, id int64, owner *int64) error {
	item, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if owner != nil && item.UserID != *owner {
		return fmt.Errorf("cart item %d: %w", id, domuser.ErrForbidden)
	}
	if err := s.cartRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, item.UserID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	s.gens[userID]++
	s.genMu.Unlock()
	_ = s.cache.Delete(ctx, userID)
}

func (s *Service) generation(userID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[userID]
}
