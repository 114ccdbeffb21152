package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/cryptox"
	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionService authenticates users and issues session tokens bound to
// (userId, tenantId, role).
type SessionService struct {
	Store  store.Store
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

// Login verifies email+password and returns a session token with the user
// and tenant. Bad email and bad password both surface as
// ErrInvalidCredentials.
func (s *SessionService) Login(
	ctx context.Context,
	email, password string,
) (string, domain.User, domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", domain.User{}, domain.Tenant{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, domain.Tenant{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", "error", err)
		return "", domain.User{}, domain.Tenant{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login attempt with wrong password", "user_id", user.ID)
		return "", domain.User{}, domain.Tenant{}, ErrInvalidCredentials
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, user.TenantID)
	if err != nil {
		log.Error("failed to fetch tenant for login", "tenant_id", user.TenantID, "error", err)
		return "", domain.User{}, domain.Tenant{}, err
	}

	token, err := s.IssueFor(user)
	if err != nil {
		log.Error("failed to sign session token", "error", err)
		return "", domain.User{}, domain.Tenant{}, err
	}

	log.Info("user logged in", "user_id", user.ID, "tenant_id", tenant.ID)
	return token, user, tenant, nil
}

// IssueFor signs a session token carrying the user's current tenant and
// role. Signup and invitation acceptance use this after provisioning.
func (s *SessionService) IssueFor(user domain.User) (string, error) {
	claims := jwtx.NewSessionClaims(
		user.ID,
		user.TenantID,
		string(user.Role),
		user.Email,
		s.Issuer,
		s.TTL,
		time.Now().UTC(),
	)
	return s.Signer.Sign(claims)
}
