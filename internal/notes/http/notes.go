package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/pkg/httpx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

// NoteLimitCode is the machine-readable code clients key upgrade prompts
// off.
const NoteLimitCode = "LIMIT_REACHED"

type NotesHandler struct {
	NoteService *service.NoteService
}

func (h *NotesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req notesdk.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	note, err := h.NoteService.Create(ctx, p, req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidNote):
			httpx.WriteError(w, http.StatusBadRequest,
				"A title is required; title and content have length limits")
		case errors.Is(err, service.ErrNoteLimitReached):
			httpx.WriteErrorCode(w, http.StatusForbidden,
				"Note limit reached. Upgrade to Pro for unlimited notes.", NoteLimitCode)
		default:
			log.Error("failed to create note", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to create note")
		}
		return
	}

	httpx.WriteData(w, http.StatusCreated, map[string]any{"note": toNote(note)})
}

func (h *NotesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.NoteService.List(ctx, p, q.Get("search"), page, limit)
	if err != nil {
		log.Error("failed to list notes", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list notes")
		return
	}

	notes := make([]notesdk.Note, 0, len(result.Notes))
	for _, n := range result.Notes {
		notes = append(notes, toNote(n))
	}

	httpx.WriteData(w, http.StatusOK, notesdk.NotesPage{
		Notes: notes,
		Pagination: notesdk.Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages,
		},
	})
}

func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	note, err := h.NoteService.Get(ctx, p, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Note not found")
			return
		}
		log.Error("failed to fetch note", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to fetch note")
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"note": toNote(note)})
}

func (h *NotesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req notesdk.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	note, err := h.NoteService.Update(ctx, p, r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidNote):
			httpx.WriteError(w, http.StatusBadRequest,
				"Provide a non-empty title and/or content within length limits")
		case errors.Is(err, service.ErrNoteNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Note not found")
		default:
			log.Error("failed to update note", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to update note")
		}
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]any{"note": toNote(note)})
}

func (h *NotesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.NoteService.Delete(ctx, p, r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Note not found")
			return
		}
		log.Error("failed to delete note", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "Note deleted", nil)
}
