package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domorder "github.com/arimulian/Revamp-Codeid-sales/internal/domain/order"
	domref "github.com/arimulian/Revamp-Codeid-sales/internal/domain/reference"
	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

type StatusRepository interface {
	GetStatus(ctx context.Context, module, name string) (*domref.Status, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e domorder.Event) error
}

type Service struct {
	repo            domorder.Repository
	statuses        StatusRepository
	settler         domorder.Settler
	numbers         domorder.NumberGenerator
	events          EventPublisher
	logger          *zap.Logger
	cancelledStatus string
	now             func() time.Time
}

// NewService builds the order lookup and cancellation service. events and
// logger may be nil.
func NewService(repo domorder.Repository, statuses StatusRepository, settler domorder.Settler, numbers domorder.NumberGenerator, events EventPublisher, logger *zap.Logger, cancelledStatus string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cancelledStatus == "" {
		cancelledStatus = "Cancelled"
	}
	return &Service{
		repo:            repo,
		statuses:        statuses,
		settler:         settler,
		numbers:         numbers,
		events:          events,
		logger:          logger,
		cancelledStatus: cancelledStatus,
		now:             time.Now,
	}
}

func (s *Service) FindOrder(ctx context.Context, number string) (*domorder.Summary, error) {
	return s.findOrder(ctx, number, nil)
}

// FindOrderOwned is FindOrder restricted to orders placed by userID.
func (s *Service) FindOrderOwned(ctx context.Context, number string, userID int64) (*domorder.Summary, error) {
	return s.findOrder(ctx, number, &userID)
}

func (s *Service) findOrder(ctx context.Context, number string, owner *int64) (*domorder.Summary, error) {
	o, err := s.getOwned(ctx, number, owner)
	if err != nil {
		return nil, err
	}
	if o.IsCancelled() {
		return nil, fmt.Errorf("order %s: %w", o.Number, domorder.ErrOrderCancelled)
	}
	summary := o.Summary()
	return &summary, nil
}

// Cancel marks the order cancelled and records a cancellation order that
// references it. The original debit is not credited back.
func (s *Service) Cancel(ctx context.Context, number string) (*domorder.Order, error) {
	return s.cancelOrder(ctx, number, nil)
}

// CancelOwned is Cancel restricted to orders placed by userID.
func (s *Service) CancelOwned(ctx context.Context, number string, userID int64) (*domorder.Order, error) {
	return s.cancelOrder(ctx, number, &userID)
}

func (s *Service) cancelOrder(ctx context.Context, number string, owner *int64) (*domorder.Order, error) {
	original, err := s.getOwned(ctx, number, owner)
	if err != nil {
		return nil, err
	}
	if original.IsCancelled() {
		return nil, fmt.Errorf("order %s: %w", original.Number, domorder.ErrOrderCancelled)
	}

	cancelled, err := s.statuses.GetStatus(ctx, original.Status.Module, s.cancelledStatus)
	if err != nil {
		return nil, err
	}

	record, err := s.cancel(ctx, original, cancelled)
	if errors.Is(err, domorder.ErrDuplicateOrderNumber) {
		s.logger.Warn("order number collision on cancel, retrying", zap.String("order_number", original.Number))
		record, err = s.cancel(ctx, original, cancelled)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, record)
	return record, nil
}

func (s *Service) cancel(ctx context.Context, original *domorder.Order, cancelled *domref.Status) (*domorder.Order, error) {
	var record *domorder.Order
	err := s.settler.WithinTx(ctx, func(ctx context.Context, tx domorder.SettlementTx) error {
		if err := tx.UpdateStatus(ctx, original.ID, cancelled.ID); err != nil {
			return err
		}
		stored, err := tx.Insert(ctx, &domorder.Order{
			Number:          s.numbers.Next(),
			UserID:          original.UserID,
			UserName:        original.UserName,
			OrderDate:       s.now().UTC(),
			Subtotal:        original.Subtotal,
			AccountNumber:   original.AccountNumber,
			PaymentCode:     original.PaymentCode,
			Status:          *cancelled,
			ReferenceNumber: original.Number,
		})
		if err != nil {
			return err
		}
		record = stored
		return nil
	})
	return record, err
}

func (s *Service) NextOrderNumber() string {
	return s.numbers.Next()
}

func (s *Service) getOwned(ctx context.Context, number string, owner *int64) (*domorder.Order, error) {
	number = strings.TrimSpace(number)
	if !domorder.ValidNumber(number) {
		return nil, fmt.Errorf("order %q: %w", number, domorder.ErrOrderNotFound)
	}
	o, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if owner != nil && o.UserID != *owner {
		return nil, fmt.Errorf("order %s: %w", o.Number, domuser.ErrForbidden)
	}
	return o, nil
}

func (s *Service) publish(ctx context.Context, o *domorder.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), domorder.NewEvent(domorder.EventCancelled, o, s.now())); err != nil {
		s.logger.Warn("publish order event", zap.String("order_number", o.Number), zap.Error(err))
	}
}
