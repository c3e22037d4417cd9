package notification

import (
	"time"

	"github.com/gabayhq/gabay/core"
)

// Notification is one delivered-or-pending message for a user. Records
// are created, never mutated, and eventually purged.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Data      Data
	Sent      bool
	CreatedAt time.Time
}

type (
	QueryFilter struct {
		UserID        string `query:"user_id"`
		Sent          *bool  `query:"sent"`
		CreatedBefore time.Time
		Limit         int
	}

	GetFilter struct {
		ID string
	}
)

func (f *QueryFilter) IsEmpty() bool {
	return f == nil || (f.UserID == "" && f.Sent == nil && f.CreatedBefore.IsZero() && f.Limit == 0)
}

func (f *QueryFilter) Clean() {
	f.UserID = core.CleanString(f.UserID)
}
