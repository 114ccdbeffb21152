package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/stretchr/testify/require"
)

func TestTenantUpgrade(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TenantService{Store: st, Plans: NewPlanGate(3)}
	notes := &NoteService{Store: st, Plans: NewPlanGate(3)}

	acme := seedTenant(t, st, "acme", domain.PlanFree)
	seedTenant(t, st, "beta", domain.PlanFree)

	t.Run("own tenant upgrades to pro", func(t *testing.T) {
		tenant, err := svc.Upgrade(ctx, acme, "acme")
		require.NoError(t, err)
		require.Equal(t, domain.PlanPro, tenant.Plan)
	})

	t.Run("upgrade is idempotent", func(t *testing.T) {
		tenant, err := svc.Upgrade(ctx, acme, "acme")
		require.NoError(t, err)
		require.Equal(t, domain.PlanPro, tenant.Plan)
	})

	t.Run("cannot upgrade someone else's tenant", func(t *testing.T) {
		_, err := svc.Upgrade(ctx, acme, "beta")
		require.ErrorIs(t, err, ErrForbidden)

		// Beta is untouched.
		tenant, err := st.Tenants().GetTenantBySlug(ctx, "beta")
		require.NoError(t, err)
		require.Equal(t, domain.PlanFree, tenant.Plan)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.Upgrade(ctx, acme, "missing")
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("upgrade lifts the note cap immediately", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := notes.Create(ctx, acme, "note", "body")
			require.NoError(t, err)
		}
	})
}

func TestTenantStats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TenantService{Store: st, Plans: NewPlanGate(3)}
	notes := &NoteService{Store: st, Plans: NewPlanGate(3)}

	p := seedTenant(t, st, "acme", domain.PlanFree)

	t.Run("empty free tenant", func(t *testing.T) {
		stats, err := svc.Stats(ctx, p)
		require.NoError(t, err)
		require.Equal(t, 0, stats.NoteCount)
		require.Equal(t, 3, stats.NoteLimit)
		require.True(t, stats.CanCreateMore)
	})

	t.Run("at the cap", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := notes.Create(ctx, p, "note", "body")
			require.NoError(t, err)
		}

		stats, err := svc.Stats(ctx, p)
		require.NoError(t, err)
		require.Equal(t, 3, stats.NoteCount)
		require.False(t, stats.CanCreateMore)
	})

	t.Run("pro plan reports unlimited", func(t *testing.T) {
		_, err := svc.Upgrade(ctx, p, "acme")
		require.NoError(t, err)

		stats, err := svc.Stats(ctx, p)
		require.NoError(t, err)
		require.Zero(t, stats.NoteLimit)
		require.True(t, stats.CanCreateMore)
	})
}

func TestAdminWipeAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	notes := &NoteService{Store: st, Plans: NewPlanGate(3)}
	invites := newInviteService(t, st)
	admin := &AdminService{Store: st}

	p := seedTenant(t, st, "acme", domain.PlanFree)
	_, err := notes.Create(ctx, p, "note", "body")
	require.NoError(t, err)
	_, _, err = invites.Issue(ctx, p, "hire@example.com", domain.RoleMember)
	require.NoError(t, err)

	require.NoError(t, admin.WipeAll(ctx))

	_, err = st.Tenants().GetTenantBySlug(ctx, "acme")
	require.Error(t, err)
	_, err = st.Users().GetUserByEmail(ctx, p.Email)
	require.Error(t, err)

	// A fresh signup works on the wiped database.
	signup := &SignupService{Store: st}
	_, _, err = signup.Register(ctx, "Acme", "acme", p.Email, "secret99")
	require.NoError(t, err)
}
