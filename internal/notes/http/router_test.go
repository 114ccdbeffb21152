package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/aussiebroadwan/tabnotes/pkg/notesdk"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	keys, err := jwtx.NewEphemeralKeypair("test-issuer")
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "notes-test", Level: "error", Format: "text"})

	sessions := &service.SessionService{
		Store:  st,
		Signer: keys,
		Issuer: "test-issuer",
		TTL:    time.Hour,
	}
	plans := service.NewPlanGate(3)

	router := NewRouter(keys, st, logger)
	router.FrontendURL = "http://localhost:3000"
	router.AdminKey = "test-admin-key"
	router.SignupService = &service.SignupService{Store: st}
	router.SessionService = sessions
	router.NoteService = &service.NoteService{Store: st, Plans: plans}
	router.TenantService = &service.TenantService{Store: st, Plans: plans}
	router.InviteService = &service.InviteService{Store: st, Sessions: sessions, TTL: time.Hour}
	router.AdminService = &service.AdminService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *notesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Status
}

func TestNotesFlowOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	client := notesdk.NewClient(srv.URL)

	session, err := client.Register(ctx, notesdk.RegisterRequest{
		TenantName: "Acme Corp",
		Slug:       "acme",
		Email:      "boss@acme.com",
		Password:   "secret99",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "admin", session.User.Role)
	require.Equal(t, "free", session.User.Tenant.Plan)

	t.Run("note CRUD", func(t *testing.T) {
		note, err := client.CreateNote(ctx, "first note", "hello")
		require.NoError(t, err)
		require.NotEmpty(t, note.ID)

		got, err := client.GetNote(ctx, note.ID)
		require.NoError(t, err)
		require.Equal(t, "first note", got.Title)

		title := "renamed"
		updated, err := client.UpdateNote(ctx, note.ID, notesdk.UpdateNoteRequest{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Title)
		require.Equal(t, "hello", updated.Content)

		require.NoError(t, client.DeleteNote(ctx, note.ID))
		_, err = client.GetNote(ctx, note.ID)
		require.Equal(t, http.StatusNotFound, apiStatus(t, err))
	})

	t.Run("free cap surfaces 403 with code", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := client.CreateNote(ctx, "note", "body")
			require.NoError(t, err)
		}

		_, err := client.CreateNote(ctx, "overflow", "body")
		var apiErr *notesdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.Status)
		require.Equal(t, NoteLimitCode, apiErr.Code)

		stats, err := client.TenantStats(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, stats.NoteCount)
		require.NotNil(t, stats.NoteLimit)
		require.False(t, stats.CanCreateMore)
	})

	t.Run("upgrade lifts the cap", func(t *testing.T) {
		tenant, err := client.UpgradeTenant(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, "pro", tenant.Plan)

		_, err = client.CreateNote(ctx, "now it fits", "body")
		require.NoError(t, err)

		stats, err := client.TenantStats(ctx)
		require.NoError(t, err)
		require.Nil(t, stats.NoteLimit)
		require.True(t, stats.CanCreateMore)
	})

	t.Run("list with search and pagination", func(t *testing.T) {
		page, err := client.ListNotes(ctx, 1, 2, "")
		require.NoError(t, err)
		require.Len(t, page.Notes, 2)
		require.Equal(t, 4, page.Pagination.Total)
		require.Equal(t, 2, page.Pagination.Pages)

		found, err := client.ListNotes(ctx, 1, 10, "fits")
		require.NoError(t, err)
		require.Len(t, found.Notes, 1)
	})
}

func TestInvitationFlowOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	admin := notesdk.NewClient(srv.URL)

	_, err := admin.Register(ctx, notesdk.RegisterRequest{
		TenantName: "Acme Corp",
		Slug:       "acme",
		Email:      "boss@acme.com",
		Password:   "secret99",
	})
	require.NoError(t, err)

	invitation, err := admin.InviteUser(ctx, "hire@example.com", "member")
	require.NoError(t, err)
	require.Equal(t, "pending", invitation.Status)
	require.Contains(t, invitation.InvitationLink, "http://localhost:3000/accept-invitation?token=")

	token := invitation.InvitationLink[len("http://localhost:3000/accept-invitation?token="):]

	t.Run("tenant listing shows it without a link", func(t *testing.T) {
		list, err := admin.TenantInvitations(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Empty(t, list[0].InvitationLink)
	})

	t.Run("inspect resolves the token", func(t *testing.T) {
		inspected, err := admin.InspectInvitation(ctx, token)
		require.NoError(t, err)
		require.Equal(t, invitation.ID, inspected.ID)
		require.Equal(t, "acme", inspected.Tenant.Slug)
	})

	t.Run("accept creates the member and a session", func(t *testing.T) {
		joiner := notesdk.NewClient(srv.URL)
		session, err := joiner.AcceptInvitation(ctx, notesdk.AcceptInvitationRequest{
			Token:           token,
			Password:        "welcome1",
			ConfirmPassword: "welcome1",
		})
		require.NoError(t, err)
		require.Equal(t, "member", session.User.Role)
		require.Equal(t, "acme", session.User.Tenant.Slug)

		// The member shares the tenant's notes.
		_, err = joiner.CreateNote(ctx, "member note", "body")
		require.NoError(t, err)
	})

	t.Run("token cannot be reused", func(t *testing.T) {
		other := notesdk.NewClient(srv.URL)
		_, err := other.AcceptInvitation(ctx, notesdk.AcceptInvitationRequest{
			Token:           token,
			Password:        "welcome1",
			ConfirmPassword: "welcome1",
		})
		require.Equal(t, http.StatusNotFound, apiStatus(t, err))
	})

	t.Run("member is rejected from the admin surface", func(t *testing.T) {
		member := notesdk.NewClient(srv.URL)
		_, err := member.Login(ctx, "hire@example.com", "welcome1")
		require.NoError(t, err)

		_, err = member.InviteUser(ctx, "another@example.com", "member")
		require.Equal(t, http.StatusForbidden, apiStatus(t, err))

		_, err = member.TenantInvitations(ctx)
		require.Equal(t, http.StatusForbidden, apiStatus(t, err))
	})

	t.Run("cancel removes a pending invitation", func(t *testing.T) {
		fresh, err := admin.InviteUser(ctx, "cancel-me@example.com", "member")
		require.NoError(t, err)

		require.NoError(t, admin.CancelInvitation(ctx, fresh.ID))
		require.Equal(t, http.StatusNotFound, apiStatus(t, admin.CancelInvitation(ctx, fresh.ID)))
	})
}

func TestAuthBoundariesOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	t.Run("missing token is 401", func(t *testing.T) {
		anon := notesdk.NewClient(srv.URL)
		_, err := anon.ListNotes(ctx, 1, 10, "")
		require.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		anon := notesdk.NewClient(srv.URL)
		anon.Token = "not-a-real-token"
		_, err := anon.ListNotes(ctx, 1, 10, "")
		require.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
	})

	t.Run("cross-tenant upgrade is 403", func(t *testing.T) {
		a := notesdk.NewClient(srv.URL)
		_, err := a.Register(ctx, notesdk.RegisterRequest{
			TenantName: "Acme", Slug: "acme", Email: "boss@acme.com", Password: "secret99",
		})
		require.NoError(t, err)

		b := notesdk.NewClient(srv.URL)
		_, err = b.Register(ctx, notesdk.RegisterRequest{
			TenantName: "Beta", Slug: "beta", Email: "boss@beta.com", Password: "secret99",
		})
		require.NoError(t, err)

		_, err = a.UpgradeTenant(ctx, "beta")
		require.Equal(t, http.StatusForbidden, apiStatus(t, err))
	})
}

func TestHealthAndAdminOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	t.Run("health is public", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("admin wipe requires the shared key", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/clear-all-data", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		req.Header.Set("X-Admin-Key", "test-admin-key")
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
