package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/cryptox"
	"github.com/aussiebroadwan/tabnotes/pkg/idx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// MinPasswordLength matches the original product's validation.
const MinPasswordLength = 6

var (
	ErrInvalidSignup = errors.New("invalid signup request")
	ErrSlugTaken     = errors.New("tenant slug already taken")
	ErrEmailTaken    = errors.New("email already registered")
)

// SignupService provisions a new tenant together with its first admin
// user.
type SignupService struct {
	Store store.Store
}

// Register creates the tenant (free plan) and its admin atomically. Slug
// and email collisions surface as ErrSlugTaken / ErrEmailTaken.
func (s *SignupService) Register(
	ctx context.Context,
	tenantName, slug, email, password string,
) (domain.User, domain.Tenant, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate and normalize input.
	slug = normalizeSlug(slug)
	email = normalizeEmail(email)
	if tenantName == "" || !validSlug(slug) || !validEmail(email) ||
		len(password) < MinPasswordLength {
		return domain.User{}, domain.Tenant{}, ErrInvalidSignup
	}

	// 2. Hash the password before opening the transaction; argon2 is slow.
	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return domain.User{}, domain.Tenant{}, err
	}

	tenant := domain.Tenant{
		ID:   idx.New().String(),
		Name: tenantName,
		Slug: slug,
		Plan: domain.PlanFree,
	}
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleAdmin,
		TenantID:     tenant.ID,
	}

	// 3. Create both records atomically; the unique constraints decide
	// collisions.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrSlugTaken
			}
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) || errors.Is(err, ErrEmailTaken) {
			return domain.User{}, domain.Tenant{}, err
		}
		log.Error("failed to register tenant", "slug", slug, "error", err)
		return domain.User{}, domain.Tenant{}, err
	}

	log.Info("tenant registered",
		"tenant_id", tenant.ID,
		"slug", tenant.Slug,
		"admin_id", user.ID,
	)
	return user, tenant, nil
}
