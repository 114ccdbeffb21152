package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesTenantAndAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SignupService{Store: st}

	user, tenant, err := svc.Register(ctx, "Acme Corp", "acme", "Boss@Example.com", "secret99")
	require.NoError(t, err)

	require.Equal(t, "acme", tenant.Slug)
	require.Equal(t, domain.PlanFree, tenant.Plan)
	require.Equal(t, domain.RoleAdmin, user.Role)
	require.Equal(t, tenant.ID, user.TenantID)
	// Email is normalized before storage.
	require.Equal(t, "boss@example.com", user.Email)

	stored, err := st.Users().GetUserByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SignupService{Store: st}

	cases := []struct {
		name       string
		tenantName string
		slug       string
		email      string
		password   string
	}{
		{"empty tenant name", "", "acme", "a@b.co", "secret99"},
		{"bad slug", "Acme", "Acme Corp!", "a@b.co", "secret99"},
		{"bad email", "Acme", "acme", "not-an-email", "secret99"},
		{"short password", "Acme", "acme", "a@b.co", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.tenantName, tc.slug, tc.email, tc.password)
			require.ErrorIs(t, err, ErrInvalidSignup)
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SignupService{Store: st}

	_, _, err := svc.Register(ctx, "Acme", "acme", "boss@acme.com", "secret99")
	require.NoError(t, err)

	t.Run("slug taken", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "Other Acme", "acme", "other@acme.com", "secret99")
		require.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("email taken even across tenants", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "Beta", "beta", "boss@acme.com", "secret99")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("failed signup leaves no partial tenant behind", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "Gamma", "gamma", "boss@acme.com", "secret99")
		require.ErrorIs(t, err, ErrEmailTaken)

		_, err = st.Tenants().GetTenantBySlug(ctx, "gamma")
		require.Error(t, err)
	})
}

func TestLoginAfterRegister(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	signup := &SignupService{Store: st}
	sessions := newTestSessions(t, st)

	registered, _, err := signup.Register(ctx, "Acme", "acme", "boss@acme.com", "secret99")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, user, tenant, err := sessions.Login(ctx, "BOSS@acme.com", "secret99")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, registered.ID, user.ID)
		require.Equal(t, "acme", tenant.Slug)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := sessions.Login(ctx, "boss@acme.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := sessions.Login(ctx, "ghost@acme.com", "secret99")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
