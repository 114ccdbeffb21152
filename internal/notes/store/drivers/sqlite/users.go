package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, role, tenant_id, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetTenantUserByEmail(ctx context.Context, tenantID, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? AND email = ?`,
		tenantID, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, tenant_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.TenantID, now, now)
	if isUniqueViolation(err, "users.email") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) ReassignUser(ctx context.Context, userID, tenantID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET tenant_id = ?, role = ?, updated_at = ? WHERE id = ?`,
		tenantID, string(role), time.Now().UTC().Unix(), userID)
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

func (r *usersRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users`)
	return err
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                    domain.User
		role                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.TenantID, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return u, nil
}
