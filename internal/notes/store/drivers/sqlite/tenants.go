package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, name, slug, plan, created_at, updated_at`

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = ?`, slug)
	return scanTenant(row)
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, slug, plan, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Slug, string(t.Plan), now, now)
	if isUniqueViolation(err, "tenants.slug") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *tenantsRepo) UpdatePlan(ctx context.Context, tenantID string, plan domain.Plan) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET plan = ?, updated_at = ? WHERE id = ?`,
		string(plan), time.Now().UTC().Unix(), tenantID)
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

func (r *tenantsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tenants`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (domain.Tenant, error) {
	var (
		t                    domain.Tenant
		plan                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &plan, &createdAt, &updatedAt); err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	t.Plan = domain.Plan(plan)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return t, nil
}
