package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrCapExceeded is returned by the conditional note insert when the
	// tenant's note count has already reached the supplied cap.
	ErrCapExceeded = errors.New("store: note cap exceeded")

	// ErrTokenCollision is returned when an invitation token fingerprint is
	// already on file. With 256 bits of token entropy this should never
	// happen; callers may regenerate and retry.
	ErrTokenCollision = errors.New("store: token fingerprint collision")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
//
// All cross-request invariants (uniqueness, the free-plan note cap, the
// pending->accepted transition) live here as constraints or conditional
// writes. Application code must never rely on read-then-write sequencing
// for any of them.
type Store interface {
	Tenants() Tenants
	Users() Users
	Notes() Notes
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error, the
	// transaction is rolled back; otherwise it is committed. This is the
	// recommended way to handle multi-step operations that must be atomic
	// (e.g. invitation acceptance).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tenants interface {
	// GetTenantByID returns a tenant by id.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantBySlug returns a tenant by its unique slug.
	GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error)

	// CreateTenant inserts a new tenant (id is provided by app via ULID).
	// Returns ErrAlreadyExists if the slug is taken.
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// UpdatePlan sets the subscription plan and bumps updated_at.
	UpdatePlan(ctx context.Context, tenantID string, plan domain.Plan) error

	// DeleteAll removes every tenant. Only the admin wipe uses this.
	DeleteAll(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up a user by email across all tenants. Emails
	// are unique system-wide, so this returns at most one record.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetTenantUserByEmail looks up a user by email within a single tenant.
	GetTenantUserByEmail(ctx context.Context, tenantID, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists if the email
	// is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ReassignUser moves a user to a tenant with a role and bumps
	// updated_at. Invitation acceptance is the only caller; (tenant, role)
	// must never be mutated through any other path.
	ReassignUser(ctx context.Context, userID, tenantID string, role domain.Role) error

	// DeleteAll removes every user. Only the admin wipe uses this.
	DeleteAll(ctx context.Context) error
}

// NoteFilter narrows note listings. Search matches title or content,
// case-insensitively.
type NoteFilter struct {
	Search string
	Offset int
	Limit  int
}

type Notes interface {
	// GetNote returns a note only if it belongs to the given tenant.
	GetNote(ctx context.Context, tenantID, noteID string) (domain.Note, error)

	// ListNotes returns the tenant's notes, newest first.
	ListNotes(ctx context.Context, tenantID string, f NoteFilter) ([]domain.Note, error)

	// CountNotes counts the tenant's notes matching the filter's search
	// term (offset/limit are ignored).
	CountNotes(ctx context.Context, tenantID string, f NoteFilter) (int, error)

	// CreateNote inserts a note. When maxNotes > 0 the insert is
	// conditional on the tenant's current note count being below the cap,
	// evaluated in the same statement so concurrent creates cannot
	// overshoot; the loser gets ErrCapExceeded. maxNotes <= 0 means
	// unlimited.
	CreateNote(ctx context.Context, n domain.Note, maxNotes int) error

	// UpdateNote applies the non-nil fields to a note within the tenant
	// and bumps updated_at. Returns ErrNotFound for missing or
	// foreign-tenant notes alike.
	UpdateNote(ctx context.Context, tenantID, noteID string, title, content *string) error

	// DeleteNote removes a note within the tenant. Returns ErrNotFound for
	// missing or foreign-tenant notes alike.
	DeleteNote(ctx context.Context, tenantID, noteID string) error

	// DeleteAll removes every note. Only the admin wipe uses this.
	DeleteAll(ctx context.Context) error
}

// InvitationDetail is an invitation joined with the display fields callers
// need: the inviting tenant's name/slug and the inviter's email.
type InvitationDetail struct {
	domain.Invitation

	TenantName   string
	TenantSlug   string
	InviterEmail string
}

type Invitations interface {
	// CreateInvitation writes a new invitation (token_hash is the SHA-256
	// fingerprint of the opaque token). A partial unique index over
	// (email, tenant_id) for pending rows makes concurrent duplicate
	// issues lose with ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetPendingByTokenHash returns a pending, unexpired invitation by
	// token fingerprint.
	GetPendingByTokenHash(ctx context.Context, hash string, now time.Time) (InvitationDetail, error)

	// HasPendingInvitation reports whether a pending, unexpired invitation
	// exists for (email, tenant).
	HasPendingInvitation(ctx context.Context, tenantID, email string, now time.Time) (bool, error)

	// ListPendingByTenant returns the tenant's pending, unexpired
	// invitations, newest first.
	ListPendingByTenant(ctx context.Context, tenantID string, now time.Time) ([]InvitationDetail, error)

	// ListPendingByEmail returns pending, unexpired invitations addressed
	// to an email across all tenants, newest first. This is the only
	// cross-tenant read in the system.
	ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]InvitationDetail, error)

	// MarkAccepted flips a pending, unexpired invitation to accepted. The
	// status transition is a single conditional update; a lost race
	// surfaces as ErrNotFound.
	MarkAccepted(ctx context.Context, invitationID string, now time.Time) error

	// DeletePending removes a pending invitation within the tenant.
	// Returns ErrNotFound for missing, foreign-tenant and already-accepted
	// invitations alike.
	DeletePending(ctx context.Context, tenantID, invitationID string) error

	// DeleteExpired removes pending invitations whose expiry has passed.
	// Housekeeping calls this on a timer; Issue calls it before inserting
	// so a stale expired row never blocks a fresh invitation.
	DeleteExpired(ctx context.Context, now time.Time) error

	// DeleteAll removes every invitation. Only the admin wipe uses this.
	DeleteAll(ctx context.Context) error
}
