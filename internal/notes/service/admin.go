package service

import (
	"context"

	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// AdminService holds out-of-band maintenance operations guarded by the
// shared admin key rather than a user session.
type AdminService struct {
	Store store.Store
}

// WipeAll deletes every record in the system: notes, invitations, users,
// then tenants, ordered so foreign keys never dangle mid-transaction.
// Demo-reset tooling is the only intended caller.
func (s *AdminService) WipeAll(ctx context.Context) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Notes().DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Invitations().DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Users().DeleteAll(ctx); err != nil {
			return err
		}
		return tx.Tenants().DeleteAll(ctx)
	})
	if err != nil {
		log.Error("failed to wipe data", "error", err)
		return err
	}

	log.Warn("all data wiped")
	return nil
}
