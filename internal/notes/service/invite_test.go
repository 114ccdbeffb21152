package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/cryptox"
	"github.com/aussiebroadwan/tabnotes/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newInviteService(t *testing.T, st store.Store) *InviteService {
	t.Helper()
	return &InviteService{
		Store:    st,
		Sessions: newTestSessions(t, st),
		TTL:      time.Hour,
	}
}

func TestInviteIssue(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)
	admin := seedTenant(t, st, "acme", domain.PlanFree)

	t.Run("issues a pending invitation with a usable token", func(t *testing.T) {
		detail, token, err := svc.Issue(ctx, admin, "New.Hire@Example.com", domain.RoleMember)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, "new.hire@example.com", detail.Email)
		require.Equal(t, domain.InvitationPending, detail.Status)
		require.Equal(t, "acme", detail.TenantSlug)
		require.Equal(t, admin.Email, detail.InviterEmail)
		require.True(t, detail.ExpiresAt.After(time.Now()))

		// Only the fingerprint is stored.
		require.NotEqual(t, token, detail.TokenHash)
		require.Equal(t, cryptox.FingerprintToken(token), detail.TokenHash)
	})

	t.Run("member cannot invite", func(t *testing.T) {
		member := Principal{
			UserID:   idx.New().String(),
			TenantID: admin.TenantID,
			Role:     domain.RoleMember,
			Email:    "member@acme.com",
		}
		_, _, err := svc.Issue(ctx, member, "someone@example.com", domain.RoleMember)
		require.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("bad email rejected", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, admin, "not-an-email", domain.RoleMember)
		require.ErrorIs(t, err, ErrInvalidInvite)
	})

	t.Run("existing tenant member rejected", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, admin, admin.Email, domain.RoleMember)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("duplicate pending invitation rejected", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, admin, "new.hire@example.com", domain.RoleMember)
		require.ErrorIs(t, err, ErrInvitePending)
	})

	t.Run("same email may hold invites from two tenants", func(t *testing.T) {
		other := seedTenant(t, st, "beta", domain.PlanFree)
		_, _, err := svc.Issue(ctx, other, "new.hire@example.com", domain.RoleMember)
		require.NoError(t, err)
	})
}

func TestInviteCancelThenReissue(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)
	admin := seedTenant(t, st, "acme", domain.PlanFree)

	detail, _, err := svc.Issue(ctx, admin, "hire@example.com", domain.RoleMember)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, admin, detail.ID))

	t.Run("cancelled invitation is gone", func(t *testing.T) {
		require.ErrorIs(t, svc.Cancel(ctx, admin, detail.ID), ErrInviteNotFound)

		list, err := svc.ListForTenant(ctx, admin)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("email can be re-invited after cancel", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, admin, "hire@example.com", domain.RoleMember)
		require.NoError(t, err)
	})

	t.Run("foreign tenant cannot cancel", func(t *testing.T) {
		other := seedTenant(t, st, "beta", domain.PlanFree)
		fresh, _, err := svc.Issue(ctx, admin, "second@example.com", domain.RoleMember)
		require.NoError(t, err)

		require.ErrorIs(t, svc.Cancel(ctx, other, fresh.ID), ErrInviteNotFound)
	})
}

func TestInviteListings(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)

	acme := seedTenant(t, st, "acme", domain.PlanFree)
	beta := seedTenant(t, st, "beta", domain.PlanFree)

	_, _, err := svc.Issue(ctx, acme, "shared@example.com", domain.RoleMember)
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, beta, "shared@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, acme, "only-acme@example.com", domain.RoleMember)
	require.NoError(t, err)

	t.Run("tenant listing is scoped", func(t *testing.T) {
		list, err := svc.ListForTenant(ctx, acme)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, inv := range list {
			require.Equal(t, acme.TenantID, inv.TenantID)
		}
	})

	t.Run("member cannot list tenant invitations", func(t *testing.T) {
		member := Principal{UserID: idx.New().String(), TenantID: acme.TenantID, Role: domain.RoleMember}
		_, err := svc.ListForTenant(ctx, member)
		require.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("email listing crosses tenants", func(t *testing.T) {
		caller := Principal{
			UserID:   idx.New().String(),
			TenantID: acme.TenantID,
			Role:     domain.RoleMember,
			Email:    "shared@example.com",
		}
		list, err := svc.ListForEmail(ctx, caller)
		require.NoError(t, err)
		require.Len(t, list, 2)
	})
}

func TestInviteAcceptNewUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)
	admin := seedTenant(t, st, "acme", domain.PlanFree)

	_, token, err := svc.Issue(ctx, admin, "hire@example.com", domain.RoleMember)
	require.NoError(t, err)

	session, user, tenant, err := svc.Accept(ctx, token, "welcome1", "welcome1")
	require.NoError(t, err)
	require.NotEmpty(t, session)
	require.Equal(t, "hire@example.com", user.Email)
	require.Equal(t, domain.RoleMember, user.Role)
	require.Equal(t, admin.TenantID, user.TenantID)
	require.Equal(t, "acme", tenant.Slug)

	t.Run("token is single use", func(t *testing.T) {
		_, _, _, err := svc.Accept(ctx, token, "welcome1", "welcome1")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("accepted invitation leaves the pending listings", func(t *testing.T) {
		list, err := svc.ListForTenant(ctx, admin)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("new user can log in with the chosen password", func(t *testing.T) {
		_, logged, _, err := svc.Sessions.Login(ctx, "hire@example.com", "welcome1")
		require.NoError(t, err)
		require.Equal(t, user.ID, logged.ID)
	})
}

func TestInviteAcceptExistingUserMovesTenants(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)

	acme := seedTenant(t, st, "acme", domain.PlanFree)
	beta := seedTenant(t, st, "beta", domain.PlanFree)

	// The acme admin gets invited to beta as a member.
	_, token, err := svc.Issue(ctx, beta, acme.Email, domain.RoleMember)
	require.NoError(t, err)

	_, user, tenant, err := svc.Accept(ctx, token, "ignored99", "ignored99")
	require.NoError(t, err)
	require.Equal(t, acme.UserID, user.ID)
	require.Equal(t, beta.TenantID, user.TenantID)
	require.Equal(t, domain.RoleMember, user.Role)
	require.Equal(t, "beta", tenant.Slug)

	t.Run("existing password still works after the move", func(t *testing.T) {
		_, logged, loggedTenant, err := svc.Sessions.Login(ctx, acme.Email, "password123")
		require.NoError(t, err)
		require.Equal(t, acme.UserID, logged.ID)
		require.Equal(t, beta.TenantID, loggedTenant.ID)
	})
}

func TestInviteAcceptValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)
	admin := seedTenant(t, st, "acme", domain.PlanFree)

	_, token, err := svc.Issue(ctx, admin, "hire@example.com", domain.RoleMember)
	require.NoError(t, err)

	t.Run("short password", func(t *testing.T) {
		_, _, _, err := svc.Accept(ctx, token, "123", "123")
		require.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		_, _, _, err := svc.Accept(ctx, token, "welcome1", "welcome2")
		require.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, _, _, err := svc.Accept(ctx, "no-such-token", "welcome1", "welcome1")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("validation failures leave the invitation pending", func(t *testing.T) {
		_, err := svc.Inspect(ctx, token)
		require.NoError(t, err)
	})
}

func TestInviteExpiry(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newInviteService(t, st)
	admin := seedTenant(t, st, "acme", domain.PlanFree)

	// Insert an already-expired invitation directly.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	expired := domain.Invitation{
		ID:        idx.New().String(),
		Email:     "late@example.com",
		TenantID:  admin.TenantID,
		InvitedBy: admin.UserID,
		Role:      domain.RoleMember,
		Status:    domain.InvitationPending,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, st.Invitations().CreateInvitation(ctx, expired))

	t.Run("expired invitation cannot be inspected", func(t *testing.T) {
		_, err := svc.Inspect(ctx, token)
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invitation cannot be accepted", func(t *testing.T) {
		_, _, _, err := svc.Accept(ctx, token, "welcome1", "welcome1")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invitation is hidden from listings", func(t *testing.T) {
		list, err := svc.ListForTenant(ctx, admin)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("expired row does not block a fresh invitation", func(t *testing.T) {
		_, _, err := svc.Issue(ctx, admin, "late@example.com", domain.RoleMember)
		require.NoError(t, err)
	})

	t.Run("sweep removes expired rows", func(t *testing.T) {
		require.NoError(t, st.Invitations().DeleteExpired(ctx, time.Now().UTC()))
		_, err := st.Invitations().GetPendingByTokenHash(ctx, expired.TokenHash, time.Now().UTC().Add(-time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
