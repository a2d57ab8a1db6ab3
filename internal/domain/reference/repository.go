package reference

import "context"

type Repository interface {
	GetStatus(ctx context.Context, module, name string) (*Status, error)
	GetPaymentMethod(ctx context.Context, code string) (*PaymentMethod, error)
}
