package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
)

type notesRepo struct {
	db dbtx
}

const noteColumns = `id, title, content, user_id, tenant_id, created_at, updated_at`

func (r *notesRepo) GetNote(ctx context.Context, tenantID, noteID string) (domain.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND tenant_id = ?`,
		noteID, tenantID)
	return scanNote(row)
}

func (r *notesRepo) ListNotes(ctx context.Context, tenantID string, f store.NoteFilter) ([]domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.Search != "" {
		query += ` AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`
		pattern := likePattern(f.Search)
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notesRepo) CountNotes(ctx context.Context, tenantID string, f store.NoteFilter) (int, error) {
	query := `SELECT COUNT(*) FROM notes WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.Search != "" {
		query += ` AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`
		pattern := likePattern(f.Search)
		args = append(args, pattern, pattern)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateNote inserts a note, optionally capped. The count check and the
// insert are a single statement so SQLite's writer serialization makes the
// cap hold under concurrent creates.
func (r *notesRepo) CreateNote(ctx context.Context, n domain.Note, maxNotes int) error {
	now := time.Now().UTC().Unix()

	if maxNotes <= 0 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO notes (id, title, content, user_id, tenant_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Content, n.UserID, n.TenantID, now, now)
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, user_id, tenant_id, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM notes WHERE tenant_id = ?) < ?`,
		n.ID, n.Title, n.Content, n.UserID, n.TenantID, now, now,
		n.TenantID, maxNotes)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrCapExceeded
	}
	return nil
}

func (r *notesRepo) UpdateNote(ctx context.Context, tenantID, noteID string, title, content *string) error {
	query := `UPDATE notes SET updated_at = ?`
	args := []any{time.Now().UTC().Unix()}
	if title != nil {
		query += `, title = ?`
		args = append(args, *title)
	}
	if content != nil {
		query += `, content = ?`
		args = append(args, *content)
	}
	query += ` WHERE id = ? AND tenant_id = ?`
	args = append(args, noteID, tenantID)

	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *notesRepo) DeleteNote(ctx context.Context, tenantID, noteID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND tenant_id = ?`, noteID, tenantID)
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

func (r *notesRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes`)
	return err
}

func scanNote(row rowScanner) (domain.Note, error) {
	var (
		n                    domain.Note
		createdAt, updatedAt int64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.TenantID, &createdAt, &updatedAt); err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	n.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return n, nil
}

// likePattern wraps a search term for a contains match, escaping LIKE
// metacharacters in the user input first.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
