package notesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the notes service. It is what the
// diagnostic scripts use instead of raw curl.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Token is the bearer session token. Empty for public endpoints.
	Token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notesdk: %d %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("notesdk: %d %s", e.Status, e.Message)
}

// envelope mirrors the service's response shape with the data left raw so
// each call can decode its own payload type.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("notesdk: decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Code: env.Code}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("notesdk: decode data: %w", err)
		}
	}
	return nil
}

// Register creates a tenant with its first admin and stores the session
// token on the client.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return SessionResponse{}, err
	}
	c.Token = out.Token
	return out, nil
}

// Login authenticates and stores the session token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return SessionResponse{}, err
	}
	c.Token = out.Token
	return out, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := c.do(ctx, http.MethodPost, "/notes", CreateNoteRequest{Title: title, Content: content}, &out)
	return out.Note, err
}

func (c *Client) ListNotes(ctx context.Context, page, limit int, search string) (NotesPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/notes"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out NotesPage
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetNote(ctx context.Context, id string) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &out)
	return out.Note, err
}

func (c *Client) UpdateNote(ctx context.Context, id string, req UpdateNoteRequest) (Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), req, &out)
	return out.Note, err
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpgradeTenant(ctx context.Context, slug string) (TenantSummary, error) {
	var out struct {
		Tenant TenantSummary `json:"tenant"`
	}
	err := c.do(ctx, http.MethodPost, "/tenants/"+url.PathEscape(slug)+"/upgrade", nil, &out)
	return out.Tenant, err
}

func (c *Client) TenantStats(ctx context.Context) (TenantStats, error) {
	var out TenantStats
	err := c.do(ctx, http.MethodGet, "/tenants/stats", nil, &out)
	return out, err
}

func (c *Client) InviteUser(ctx context.Context, email, role string) (Invitation, error) {
	var out struct {
		Invitation Invitation `json:"invitation"`
	}
	err := c.do(ctx, http.MethodPost, "/users/invite", InviteRequest{Email: email, Role: role}, &out)
	return out.Invitation, err
}

func (c *Client) MyInvitations(ctx context.Context) ([]Invitation, error) {
	var out struct {
		Invitations []Invitation `json:"invitations"`
	}
	err := c.do(ctx, http.MethodGet, "/users/my-invitations", nil, &out)
	return out.Invitations, err
}

func (c *Client) TenantInvitations(ctx context.Context) ([]Invitation, error) {
	var out struct {
		Invitations []Invitation `json:"invitations"`
	}
	err := c.do(ctx, http.MethodGet, "/users/invitations", nil, &out)
	return out.Invitations, err
}

func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/invitations/"+url.PathEscape(id), nil, nil)
}

func (c *Client) InspectInvitation(ctx context.Context, token string) (Invitation, error) {
	var out struct {
		Invitation Invitation `json:"invitation"`
	}
	err := c.do(ctx, http.MethodGet, "/users/accept-invitation/"+url.PathEscape(token), nil, &out)
	return out.Invitation, err
}

// AcceptInvitation consumes an invitation token and stores the resulting
// session token on the client.
func (c *Client) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/users/accept-invitation", req, &out); err != nil {
		return SessionResponse{}, err
	}
	c.Token = out.Token
	return out, nil
}
