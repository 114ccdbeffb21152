package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrForbidden marks an attempt to operate on a tenant other than the
	// caller's own.
	ErrForbidden = errors.New("operation not permitted for this tenant")
)

// TenantService covers plan changes and usage reporting for a tenant.
type TenantService struct {
	Store store.Store
	Plans PlanGate
}

// TenantStats is a tenant's plan plus its current note usage.
type TenantStats struct {
	Tenant        domain.Tenant
	NoteCount     int
	NoteLimit     int // 0 means unlimited
	CanCreateMore bool
}

// Upgrade moves the tenant identified by slug onto the pro plan. Only the
// caller's own tenant can be upgraded; anything else is ErrForbidden.
// Upgrading an already-pro tenant is a no-op.
func (s *TenantService) Upgrade(ctx context.Context, p Principal, slug string) (domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	tenant, err := s.Store.Tenants().GetTenantBySlug(ctx, normalizeSlug(slug))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return domain.Tenant{}, err
	}

	if tenant.ID != p.TenantID {
		log.Warn("cross-tenant upgrade attempt",
			"user_id", p.UserID,
			"caller_tenant", p.TenantID,
			"target_tenant", tenant.ID,
		)
		return domain.Tenant{}, ErrForbidden
	}

	if tenant.Plan == domain.PlanPro {
		return tenant, nil
	}

	if err := s.Store.Tenants().UpdatePlan(ctx, tenant.ID, domain.PlanPro); err != nil {
		log.Error("failed to upgrade tenant", "tenant_id", tenant.ID, "error", err)
		return domain.Tenant{}, err
	}

	log.Info("tenant upgraded", "tenant_id", tenant.ID, "slug", tenant.Slug)
	return s.Store.Tenants().GetTenantByID(ctx, tenant.ID)
}

// Stats reports the caller's tenant plan and note usage.
func (s *TenantService) Stats(ctx context.Context, p Principal) (TenantStats, error) {
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, p.TenantID)
	if errors.Is(err, store.ErrNotFound) {
		return TenantStats{}, ErrTenantNotFound
	}
	if err != nil {
		return TenantStats{}, err
	}

	count, err := s.Store.Notes().CountNotes(ctx, p.TenantID, store.NoteFilter{})
	if err != nil {
		return TenantStats{}, err
	}

	limit, err := s.Plans.NoteCap(tenant.Plan)
	if err != nil {
		return TenantStats{}, err
	}

	return TenantStats{
		Tenant:        tenant,
		NoteCount:     count,
		NoteLimit:     limit,
		CanCreateMore: limit <= 0 || count < limit,
	}, nil
}
