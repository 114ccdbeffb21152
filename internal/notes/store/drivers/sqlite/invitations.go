package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
)

type invitationsRepo struct {
	db dbtx
}

// invitationDetailColumns joins the display fields every caller wants
// alongside the invitation itself.
const invitationDetailColumns = `
	i.id, i.email, i.tenant_id, i.invited_by, i.role, i.status,
	i.token_hash, i.expires_at, i.created_at, i.updated_at,
	t.name, t.slug, u.email`

const invitationDetailFrom = `
	FROM invitations i
	JOIN tenants t ON t.id = i.tenant_id
	JOIN users u ON u.id = i.invited_by`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations
		 (id, email, tenant_id, invited_by, role, status, token_hash, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TenantID, inv.InvitedBy, string(inv.Role),
		string(inv.Status), inv.TokenHash, inv.ExpiresAt.UTC().Unix(), now, now)
	switch {
	case isUniqueViolation(err, "invitations.token_hash"):
		// Practically unreachable with 256-bit tokens; the caller should
		// regenerate rather than report a conflict.
		return fmt.Errorf("%w: %v", store.ErrTokenCollision, err)
	case isUniqueViolation(err, "invitations.email"):
		return store.ErrAlreadyExists
	}
	return err
}

func (r *invitationsRepo) GetPendingByTokenHash(ctx context.Context, hash string, now time.Time) (store.InvitationDetail, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationDetailColumns+invitationDetailFrom+`
		 WHERE i.token_hash = ? AND i.status = 'pending' AND i.expires_at > ?`,
		hash, now.UTC().Unix())
	return scanInvitationDetail(row)
}

func (r *invitationsRepo) HasPendingInvitation(ctx context.Context, tenantID, email string, now time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations
		 WHERE tenant_id = ? AND email = ? AND status = 'pending' AND expires_at > ?`,
		tenantID, email, now.UTC().Unix()).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationsRepo) ListPendingByTenant(ctx context.Context, tenantID string, now time.Time) ([]store.InvitationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationDetailColumns+invitationDetailFrom+`
		 WHERE i.tenant_id = ? AND i.status = 'pending' AND i.expires_at > ?
		 ORDER BY i.created_at DESC, i.id DESC`,
		tenantID, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvitationDetails(rows)
}

func (r *invitationsRepo) ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]store.InvitationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationDetailColumns+invitationDetailFrom+`
		 WHERE i.email = ? AND i.status = 'pending' AND i.expires_at > ?
		 ORDER BY i.created_at DESC, i.id DESC`,
		email, now.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvitationDetails(rows)
}

// MarkAccepted is the pending->accepted compare-and-swap. Exactly one of
// two concurrent accepts can win; the loser sees ErrNotFound.
func (r *invitationsRepo) MarkAccepted(ctx context.Context, invitationID string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'accepted', updated_at = ?
		 WHERE id = ? AND status = 'pending' AND expires_at > ?`,
		now.UTC().Unix(), invitationID, now.UTC().Unix())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeletePending(ctx context.Context, tenantID, invitationID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE id = ? AND tenant_id = ? AND status = 'pending'`,
		invitationID, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *invitationsRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE status = 'pending' AND expires_at <= ?`,
		now.UTC().Unix())
	return err
}

func (r *invitationsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invitations`)
	return err
}

func scanInvitationDetail(row rowScanner) (store.InvitationDetail, error) {
	var (
		d                               store.InvitationDetail
		role, status                    string
		expiresAt, createdAt, updatedAt int64
	)
	err := row.Scan(
		&d.ID, &d.Email, &d.TenantID, &d.InvitedBy, &role, &status,
		&d.TokenHash, &expiresAt, &createdAt, &updatedAt,
		&d.TenantName, &d.TenantSlug, &d.InviterEmail,
	)
	if err != nil {
		return store.InvitationDetail{}, mapNotFound(err)
	}
	d.Role = domain.Role(role)
	d.Status = domain.InvitationStatus(status)
	d.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	d.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return d, nil
}

func collectInvitationDetails(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]store.InvitationDetail, error) {
	var out []store.InvitationDetail
	for rows.Next() {
		d, err := scanInvitationDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
