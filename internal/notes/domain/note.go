package domain

import "time"

// Note content limits, enforced at validation time.
const (
	NoteTitleMaxLen   = 200
	NoteContentMaxLen = 10000
)

// Note is scoped to a single tenant. TenantID is fixed at creation; every
// read, update and delete must filter by the requester's tenant.
type Note struct {
	ID        string
	Title     string
	Content   string
	UserID    string
	TenantID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
