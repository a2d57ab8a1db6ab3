package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domaccount "github.com/arimulian/Revamp-Codeid-sales/internal/domain/account"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/apperr"
	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
	"github.com/arimulian/Revamp-Codeid-sales/internal/domain/money"
	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
)

type State string

const (
	StateValidating State = "validating"
	StatePricing    State = "pricing"
	StateDebiting   State = "debiting"
	StatePersisting State = "persisting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

type Pricing string

const (
	PricingFirst Pricing = "first"
	PricingSum   Pricing = "sum"
)

type AccountFinder interface {
	FindActiveAccount(ctx context.Context, userID int64) (*domaccount.Account, error)
}

type CartReader interface {
	ListItems(ctx context.Context, userID int64) ([]domcart.Item, error)
}

type ReferenceRepository interface {
	GetStatus(ctx context.Context, module, name string) (*domref.Status, error)
	GetPaymentMethod(ctx context.Context, code string) (*domref.PaymentMethod, error)
}

type OrderRepository interface {
	GetByIdempotencyKey(ctx context.Context, key string) (*domorder.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e domorder.Event) error
}

type MetricsRecorder interface {
	ObserveCheckout(outcome, reason string, elapsed time.Duration)
}

type Config struct {
	SalesModule string
	OpenStatus  string
	Pricing     Pricing
	// Timeout bounds one checkout call; zero disables the bound.
	Timeout time.Duration
}

type Dependencies struct {
	Accounts   AccountFinder
	Cart       CartReader
	References ReferenceRepository
	Orders     OrderRepository
	Settler    domorder.Settler
	Numbers    domorder.NumberGenerator
	Events     EventPublisher
	Metrics    MetricsRecorder
	Logger     *zap.Logger
	Config     Config
}

type Input struct {
	UserID         int64
	PaymentCode    string
	IdempotencyKey string
}

type Result struct {
	Order      *domorder.Order
	NewBalance int64
	// Replayed is set when the idempotency key matched an earlier order.
	Replayed bool
}

type Service struct {
	deps Dependencies
	now  func() time.Time
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.SalesModule == "" {
		deps.Config.SalesModule = "Sales"
	}
	if deps.Config.OpenStatus == "" {
		deps.Config.OpenStatus = "Closed"
	}
	if deps.Config.Pricing == "" {
		deps.Config.Pricing = PricingFirst
	}
	return &Service{deps: deps, now: time.Now}
}

type attempt struct {
	id      string
	input   Input
	state   State
	started time.Time
}

func (s *Service) Checkout(ctx context.Context, in Input) (*Result, error) {
	in.PaymentCode = strings.TrimSpace(in.PaymentCode)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if s.deps.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.Config.Timeout)
		defer cancel()
	}

	a := &attempt{id: uuid.NewString(), input: in, state: StateValidating, started: s.now()}
	res, err := s.run(ctx, a)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: in state %s", domorder.ErrCheckoutTimeout, a.state)
		}
		s.fail(a, err)
		return nil, err
	}

	a.state = StateCommitted
	s.observe(a, string(StateCommitted), "")
	if !res.Replayed {
		s.publish(ctx, domorder.EventCreated, res.Order)
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, a *attempt) (*Result, error) {
	if replay, err := s.replay(ctx, a.input); replay != nil || err != nil {
		return replay, err
	}

	acct, err := s.deps.Accounts.FindActiveAccount(ctx, a.input.UserID)
	if err != nil {
		if errors.Is(err, domaccount.ErrAccountNotFound) {
			return nil, fmt.Errorf("user %d: %w", a.input.UserID, domorder.ErrAccountNotRegistered)
		}
		return nil, err
	}
	items, err := s.deps.Cart.ListItems(ctx, a.input.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("user %d has an empty cart: %w", a.input.UserID, domorder.ErrAccountNotRegistered)
	}
	payment, err := s.deps.References.GetPaymentMethod(ctx, a.input.PaymentCode)
	if err != nil {
		return nil, err
	}
	status, err := s.deps.References.GetStatus(ctx, s.deps.Config.SalesModule, s.deps.Config.OpenStatus)
	if err != nil {
		return nil, err
	}

	a.state = StatePricing
	subtotal, err := s.price(items)
	if err != nil {
		return nil, err
	}

	draft := &domorder.Order{
		UserID:         a.input.UserID,
		UserName:       acct.Holder.Name,
		Subtotal:       subtotal,
		AccountNumber:  acct.Number,
		PaymentCode:    payment.Code,
		Status:         *status,
		IdempotencyKey: a.input.IdempotencyKey,
	}

	res, err := s.settle(ctx, a, draft)
	if errors.Is(err, domorder.ErrDuplicateOrderNumber) {
		s.deps.Logger.Warn("order number collision, retrying with a fresh number",
			zap.String("attempt_id", a.id))
		a.state = StateDebiting
		res, err = s.settle(ctx, a, draft)
	}
	if errors.Is(err, domorder.ErrDuplicateIdempotencyKey) {
		// a concurrent request with the same key committed first
		winner, rerr := s.replay(ctx, a.input)
		if winner == nil && rerr == nil {
			return nil, err
		}
		return winner, rerr
	}
	return res, err
}

// settle debits the account and writes the order in one transaction.
func (s *Service) settle(ctx context.Context, a *attempt, draft *domorder.Order) (*Result, error) {
	var res Result
	err := s.deps.Settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		a.state = StateDebiting
		balance, err := tx.Debit(ctx, draft.AccountNumber, draft.Subtotal)
		if err != nil {
			return fmt.Errorf("account number: %s: %w", draft.AccountNumber, err)
		}

		a.state = StatePersisting
		o := *draft
		o.Number = s.deps.Numbers.Next()
		o.OrderDate = s.now().UTC()
		stored, err := tx.Insert(ctx, &o)
		if err != nil {
			return err
		}

		res = Result{Order: stored, NewBalance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) replay(ctx context.Context, in Input) (*Result, error) {
	if in.IdempotencyKey == "" || s.deps.Orders == nil {
		return nil, nil
	}
	o, err := s.deps.Orders.GetByIdempotencyKey(ctx, in.IdempotencyKey)
	if errors.Is(err, domorder.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != in.UserID || o.PaymentCode != in.PaymentCode {
		return nil, fmt.Errorf("key %q: %w", in.IdempotencyKey, domorder.ErrIdempotencyKeyReused)
	}
	return &Result{Order: o, Replayed: true}, nil
}

func (s *Service) price(items []domcart.Item) (int64, error) {
	if s.deps.Config.Pricing != PricingSum {
		return items[0].UnitPrice, nil
	}
	var total int64
	for _, item := range items {
		var err error
		if total, err = money.Add(total, item.UnitPrice); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (s *Service) fail(a *attempt, err error) {
	kind := apperr.KindOf(err)
	fields := []zap.Field{
		zap.String("attempt_id", a.id),
		zap.Int64("user_id", a.input.UserID),
		zap.String("state", string(a.state)),
		zap.String("reason", string(kind)),
		zap.Error(err),
	}
	if kind == apperr.KindInfrastructure {
		s.deps.Logger.Error("checkout failed", fields...)
	} else {
		s.deps.Logger.Info("checkout rejected", fields...)
	}
	s.observe(a, string(StateFailed), string(kind))
}

func (s *Service) observe(a *attempt, outcome, reason string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveCheckout(outcome, reason, s.now().Sub(a.started))
	}
}

func (s *Service) publish(ctx context.Context, t domorder.EventType, o *domorder.Order) {
	if s.deps.Events == nil {
		return
	}
	// the order is committed; a lost event must not fail the request
	if err := s.deps.Events.Publish(context.WithoutCancel(ctx), domorder.NewEvent(t, o, s.now())); err != nil {
		s.deps.Logger.Warn("publish order event",
			zap.String("type", string(t)),
			zap.String("order_number", o.Number),
			zap.Error(err))
	}
}
