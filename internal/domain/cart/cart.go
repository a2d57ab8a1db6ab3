package cart

import "time"

// Item is one cart line. UnitPrice is the price snapshot for the whole
// line (rate x quantity) taken when the program was added or merged.
type Item struct {
	ID         int64
	UserID     int64
	ProgramID  int64
	Quantity   int64
	UnitPrice  int64
	ModifiedAt time.Time
}

// Rate re-derives the per-unit price from the snapshot.
func (i Item) Rate() int64 {
	if i.Quantity <= 0 {
		return i.UnitPrice
	}
	return i.UnitPrice / i.Quantity
}

type DetailedItem struct {
	Item
	ProgramTitle string
	UserName     string
}
