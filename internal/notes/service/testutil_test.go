package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabnotes/pkg/cryptox"
	"github.com/aussiebroadwan/tabnotes/pkg/idx"
	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestSessions(t *testing.T, st store.Store) *SessionService {
	t.Helper()

	keys, err := jwtx.NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	return &SessionService{
		Store:  st,
		Signer: keys,
		Issuer: "test-issuer",
		TTL:    time.Hour,
	}
}

// seedTenant creates a tenant with an admin user and returns the admin's
// principal.
func seedTenant(t *testing.T, st store.Store, slug string, plan domain.Plan) Principal {
	t.Helper()
	ctx := context.Background()

	hash, err := cryptox.HashPassword("password123")
	require.NoError(t, err)

	tenant := domain.Tenant{
		ID:   idx.New().String(),
		Name: slug,
		Slug: slug,
		Plan: plan,
	}
	require.NoError(t, st.Tenants().CreateTenant(ctx, tenant))

	admin := domain.User{
		ID:           idx.New().String(),
		Email:        slug + "-admin@example.com",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		TenantID:     tenant.ID,
	}
	require.NoError(t, st.Users().CreateUser(ctx, admin))

	return Principal{
		UserID:   admin.ID,
		TenantID: tenant.ID,
		Role:     domain.RoleAdmin,
		Email:    admin.Email,
	}
}
