package cart

import (
	"context"
	"time"
)

type Repository interface {
	Find(ctx context.Context, userID, programID int64) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) (*Item, error)
	UpdateQuantity(ctx context.Context, id, quantity, unitPrice int64, modifiedAt time.Time) (*Item, error)
	// ListItems returns a user's lines in insertion order.
	ListItems(ctx context.Context, userID int64) ([]Item, error)
	// List returns lines joined with program and user, ordered by program.
	// A nil userID lists every cart.
	List(ctx context.Context, userID *int64) ([]DetailedItem, error)
	Delete(ctx context.Context, id int64) error
}
