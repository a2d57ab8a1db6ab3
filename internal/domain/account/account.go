package account

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	default:
		return false
	}
}

func (s Status) IsActive() bool {
	return s == StatusActive
}

// Holder is the masked identity of an account owner. It never carries
// more than the id and the display name.
type Holder struct {
	UserID int64
	Name   string
}

type Account struct {
	Number     string
	Holder     Holder
	Status     Status
	Balance    int64
	ModifiedAt time.Time
}
