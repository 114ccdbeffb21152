package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tabnotes/internal/notes/domain"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/pkg/idx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

var (
	ErrInvalidNote  = errors.New("invalid note")
	ErrNoteNotFound = errors.New("note not found")
)

// Listing defaults. Callers can ask for up to MaxPageSize per page.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NoteService implements the note CRUD surface. Every operation is scoped
// to the caller's tenant; a note in another tenant is indistinguishable
// from a missing one.
type NoteService struct {
	Store store.Store
	Plans PlanGate
}

// NotesPage is a page of notes plus the pagination bookkeeping the API
// surfaces.
type NotesPage struct {
	Notes []domain.Note
	Page  int
	Limit int
	Total int
	Pages int
}

// Create inserts a note for the principal's tenant, enforcing the plan's
// note cap atomically. Returns ErrNoteLimitReached when the cap is hit.
func (s *NoteService) Create(ctx context.Context, p Principal, title, content string) (domain.Note, error) {
	log := slogx.FromContext(ctx)

	if title == "" || len(title) > domain.NoteTitleMaxLen ||
		len(content) > domain.NoteContentMaxLen {
		return domain.Note{}, ErrInvalidNote
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, p.TenantID)
	if err != nil {
		log.Error("failed to load tenant for note create",
			"tenant_id", p.TenantID, "error", err)
		return domain.Note{}, err
	}

	maxNotes, err := s.Plans.NoteCap(tenant.Plan)
	if err != nil {
		return domain.Note{}, err
	}

	note := domain.Note{
		ID:       idx.New().String(),
		TenantID: p.TenantID,
		UserID:   p.UserID,
		Title:    title,
		Content:  content,
	}

	// The cap check and the insert are one conditional statement in the
	// store, so two concurrent creates at the limit cannot both win.
	if err := s.Store.Notes().CreateNote(ctx, note, maxNotes); err != nil {
		if errors.Is(err, store.ErrCapExceeded) {
			return domain.Note{}, ErrNoteLimitReached
		}
		log.Error("failed to create note", "tenant_id", p.TenantID, "error", err)
		return domain.Note{}, err
	}

	return s.Store.Notes().GetNote(ctx, p.TenantID, note.ID)
}

// List returns a page of the tenant's notes, newest first, optionally
// filtered by a case-insensitive title/content search.
func (s *NoteService) List(ctx context.Context, p Principal, search string, page, limit int) (NotesPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := store.NoteFilter{
		Search: search,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	total, err := s.Store.Notes().CountNotes(ctx, p.TenantID, filter)
	if err != nil {
		return NotesPage{}, err
	}
	notes, err := s.Store.Notes().ListNotes(ctx, p.TenantID, filter)
	if err != nil {
		return NotesPage{}, err
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return NotesPage{
		Notes: notes,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

// Get returns a single note within the principal's tenant.
func (s *NoteService) Get(ctx context.Context, p Principal, noteID string) (domain.Note, error) {
	note, err := s.Store.Notes().GetNote(ctx, p.TenantID, noteID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Note{}, ErrNoteNotFound
	}
	return note, err
}

// Update applies the provided fields to a note within the principal's
// tenant. Nil fields are left untouched.
func (s *NoteService) Update(ctx context.Context, p Principal, noteID string, title, content *string) (domain.Note, error) {
	if title == nil && content == nil {
		return domain.Note{}, ErrInvalidNote
	}
	if title != nil && (*title == "" || len(*title) > domain.NoteTitleMaxLen) {
		return domain.Note{}, ErrInvalidNote
	}
	if content != nil && len(*content) > domain.NoteContentMaxLen {
		return domain.Note{}, ErrInvalidNote
	}

	err := s.Store.Notes().UpdateNote(ctx, p.TenantID, noteID, title, content)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Note{}, ErrNoteNotFound
	}
	if err != nil {
		return domain.Note{}, err
	}
	return s.Store.Notes().GetNote(ctx, p.TenantID, noteID)
}

// Delete removes a note within the principal's tenant.
func (s *NoteService) Delete(ctx context.Context, p Principal, noteID string) error {
	err := s.Store.Notes().DeleteNote(ctx, p.TenantID, noteID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}
