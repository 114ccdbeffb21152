package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/cryptox"
	"github.com/aussiebroadwan/tabnotes/pkg/idx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// DefaultInviteTTL matches the original product's 7-day invitation window.
const DefaultInviteTTL = 7 * 24 * time.Hour

var (
	ErrInvalidInvite    = errors.New("invalid invitation request")
	ErrAdminOnly        = errors.New("only admins can manage invitations")
	ErrAlreadyMember    = errors.New("user is already a member of this tenant")
	ErrInvitePending    = errors.New("a pending invitation already exists for this email")
	ErrInviteNotFound   = errors.New("invitation not found or expired")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// tokenIssueAttempts bounds regeneration on token fingerprint collision.
const tokenIssueAttempts = 3

// InviteService manages the invitation lifecycle: issue, list, cancel,
// inspect and accept.
type InviteService struct {
	Store    store.Store
	Sessions *SessionService
	TTL      time.Duration
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInviteTTL
	}
	return s.TTL
}

// Issue creates a pending invitation for an email to join the admin's
// tenant. The returned token is the only copy; the store keeps a
// fingerprint.
func (s *InviteService) Issue(
	ctx context.Context,
	p Principal,
	email string,
	role domain.Role,
) (store.InvitationDetail, string, error) {
	log := slogx.FromContext(ctx)

	if !p.IsAdmin() {
		return store.InvitationDetail{}, "", ErrAdminOnly
	}
	email = normalizeEmail(email)
	if !validEmail(email) || !role.Valid() {
		return store.InvitationDetail{}, "", ErrInvalidInvite
	}

	// Someone already in the tenant cannot be invited again.
	_, err := s.Store.Users().GetTenantUserByEmail(ctx, p.TenantID, email)
	switch {
	case err == nil:
		return store.InvitationDetail{}, "", ErrAlreadyMember
	case !errors.Is(err, store.ErrNotFound):
		return store.InvitationDetail{}, "", err
	}

	now := time.Now().UTC()

	// Friendly pre-check; the partial unique index still decides races.
	pending, err := s.Store.Invitations().HasPendingInvitation(ctx, p.TenantID, email, now)
	if err != nil {
		return store.InvitationDetail{}, "", err
	}
	if pending {
		return store.InvitationDetail{}, "", ErrInvitePending
	}
	var (
		created domain.Invitation
		token   string
	)
	for attempt := 0; attempt < tokenIssueAttempts; attempt++ {
		token, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return store.InvitationDetail{}, "", err
		}

		inv := domain.Invitation{
			ID:        idx.New().String(),
			Email:     email,
			TenantID:  p.TenantID,
			InvitedBy: p.UserID,
			Role:      role,
			Status:    domain.InvitationPending,
			TokenHash: cryptox.FingerprintToken(token),
			ExpiresAt: now.Add(s.ttl()),
		}

		// Sweep expired pending rows first so a stale invitation never
		// blocks re-inviting the same email. The partial unique index on
		// (email, tenant_id) decides concurrent duplicate issues.
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Invitations().DeleteExpired(ctx, now); err != nil {
				return err
			}
			return tx.Invitations().CreateInvitation(ctx, inv)
		})
		if errors.Is(err, store.ErrTokenCollision) {
			continue
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			return store.InvitationDetail{}, "", ErrInvitePending
		}
		if err != nil {
			log.Error("failed to create invitation",
				"tenant_id", p.TenantID, "error", err)
			return store.InvitationDetail{}, "", err
		}
		created = inv
		break
	}
	if created.ID == "" {
		return store.InvitationDetail{}, "", err
	}

	detail, err := s.Store.Invitations().GetPendingByTokenHash(ctx, created.TokenHash, now)
	if err != nil {
		return store.InvitationDetail{}, "", err
	}

	log.Info("invitation issued",
		"invitation_id", created.ID,
		"tenant_id", p.TenantID,
		"role", string(role),
	)
	return detail, token, nil
}

// ListForTenant returns the admin's tenant's pending, unexpired
// invitations. Token fingerprints never leave the store layer's callers.
func (s *InviteService) ListForTenant(ctx context.Context, p Principal) ([]store.InvitationDetail, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.Store.Invitations().ListPendingByTenant(ctx, p.TenantID, time.Now().UTC())
}

// ListForEmail returns pending, unexpired invitations addressed to the
// caller's own email, across all tenants.
func (s *InviteService) ListForEmail(ctx context.Context, p Principal) ([]store.InvitationDetail, error) {
	return s.Store.Invitations().ListPendingByEmail(ctx, normalizeEmail(p.Email), time.Now().UTC())
}

// Cancel removes a pending invitation belonging to the admin's tenant.
// Accepted, expired-and-swept, foreign-tenant and unknown invitations all
// surface as ErrInviteNotFound.
func (s *InviteService) Cancel(ctx context.Context, p Principal, invitationID string) error {
	if !p.IsAdmin() {
		return ErrAdminOnly
	}
	err := s.Store.Invitations().DeletePending(ctx, p.TenantID, invitationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInviteNotFound
	}
	return err
}

// Inspect resolves a raw invitation token to its pending invitation, for
// the accept page. No authentication is required; the token is the
// capability.
func (s *InviteService) Inspect(ctx context.Context, token string) (store.InvitationDetail, error) {
	if token == "" {
		return store.InvitationDetail{}, ErrInviteNotFound
	}
	detail, err := s.Store.Invitations().GetPendingByTokenHash(
		ctx, cryptox.FingerprintToken(token), time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return store.InvitationDetail{}, ErrInviteNotFound
	}
	return detail, err
}

// Accept redeems an invitation token. A brand-new user is created with the
// supplied password; an existing user (matched by email, system-wide) is
// moved into the inviting tenant with the invited role. Either way the
// invitation flips to accepted exactly once and a fresh session token is
// returned.
func (s *InviteService) Accept(
	ctx context.Context,
	token, password, confirmPassword string,
) (string, domain.User, domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return "", domain.User{}, domain.Tenant{}, ErrInviteNotFound
	}
	if len(password) < MinPasswordLength {
		return "", domain.User{}, domain.Tenant{}, ErrPasswordTooShort
	}
	if password != confirmPassword {
		return "", domain.User{}, domain.Tenant{}, ErrPasswordMismatch
	}

	// Hash outside the transaction; argon2 takes tens of milliseconds.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", domain.User{}, domain.Tenant{}, err
	}

	now := time.Now().UTC()
	hash := cryptox.FingerprintToken(token)

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		detail, err := tx.Invitations().GetPendingByTokenHash(ctx, hash, now)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return err
		}

		// The conditional update is the commit point: if two accepts race,
		// exactly one sees the row still pending.
		if err := tx.Invitations().MarkAccepted(ctx, detail.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		existing, err := tx.Users().GetUserByEmail(ctx, detail.Email)
		switch {
		case err == nil:
			// The email already has an account somewhere; move it into the
			// inviting tenant with the invited role. The password supplied
			// here is ignored for existing accounts.
			if err := tx.Users().ReassignUser(ctx, existing.ID, detail.TenantID, detail.Role); err != nil {
				return err
			}
			user, err = tx.Users().GetUserByID(ctx, existing.ID)
			return err
		case errors.Is(err, store.ErrNotFound):
			user = domain.User{
				ID:           idx.New().String(),
				Email:        detail.Email,
				PasswordHash: passwordHash,
				Role:         detail.Role,
				TenantID:     detail.TenantID,
			}
			return tx.Users().CreateUser(ctx, user)
		default:
			return err
		}
	})
	if err != nil {
		if errors.Is(err, ErrInviteNotFound) {
			return "", domain.User{}, domain.Tenant{}, ErrInviteNotFound
		}
		log.Error("failed to accept invitation", "error", err)
		return "", domain.User{}, domain.Tenant{}, err
	}

	user, err = s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return "", domain.User{}, domain.Tenant{}, err
	}
	tenant, err := s.Store.Tenants().GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return "", domain.User{}, domain.Tenant{}, err
	}

	session, err := s.Sessions.IssueFor(user)
	if err != nil {
		log.Error("failed to sign session after accept", "error", err)
		return "", domain.User{}, domain.Tenant{}, err
	}

	log.Info("invitation accepted", "user_id", user.ID, "tenant_id", tenant.ID)
	return session, user, tenant, nil
}
