// Package notesdk holds the wire types for the notes service API and a
// small HTTP client for programmatic access. Handlers and the client share
// these structs so the two cannot drift apart.
//
// Field names are camelCase to stay compatible with the original API
// consumers.
package notesdk

import "time"

type RegisterRequest struct {
	TenantName string `json:"tenantName"`
	Slug       string `json:"slug"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TenantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Plan string `json:"plan"`
}

type UserSummary struct {
	ID     string        `json:"id"`
	Email  string        `json:"email"`
	Role   string        `json:"role"`
	Tenant TenantSummary `json:"tenant"`
}

// SessionResponse is returned by login, register and invitation acceptance.
type SessionResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest carries a partial update; nil fields are left untouched.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type NotesPage struct {
	Notes      []Note     `json:"notes"`
	Pagination Pagination `json:"pagination"`
}

// TenantStats reports plan usage. NoteLimit is null on the pro plan.
type TenantStats struct {
	Tenant        TenantSummary `json:"tenant"`
	NoteCount     int           `json:"noteCount"`
	NoteLimit     *int          `json:"noteLimit"`
	CanCreateMore bool          `json:"canCreateMore"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Invitation is the invitation summary. Tenant and InvitationLink are only
// populated where the caller is entitled to them: the link (which embeds
// the raw token) appears once, in the issue response.
type Invitation struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Role           string         `json:"role"`
	Status         string         `json:"status"`
	Tenant         *TenantSummary `json:"tenant,omitempty"`
	InvitedBy      string         `json:"invitedBy,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	ExpiresAt      time.Time      `json:"expiresAt"`
	InvitationLink string         `json:"invitationLink,omitempty"`
}

type AcceptInvitationRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
