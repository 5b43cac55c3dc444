package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/immoflow/accessgate/gate"
	"github.com/immoflow/accessgate/internal/config"
	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/provision"
	"github.com/immoflow/accessgate/provision/repofakes"
	"github.com/immoflow/accessgate/rolecache"
	"github.com/immoflow/accessgate/roles"
	rolefakes "github.com/immoflow/accessgate/roles/repofakes"
	"github.com/immoflow/accessgate/server"
	"github.com/immoflow/accessgate/session"
)

const (
	testSecret    = "test-signing-secret"
	staffEmail    = "alice@immoflow.example"
	residentEmail = "bob@other.example"
)

type stubResolver struct {
	role roles.Role
}

func (s *stubResolver) Resolve(ctx context.Context, userID, email string) roles.Role {
	return s.role
}

type fakeIdentity struct {
	email    string
	password string
	current  *session.Session
	events   chan session.Event
}

func newFakeIdentity(email, password string) *fakeIdentity {
	return &fakeIdentity{email: email, password: password, events: make(chan session.Event, 4)}
}

func (f *fakeIdentity) Current(ctx context.Context) (*session.Session, error) {
	return f.current, nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	if email != f.email || password != f.password {
		return nil, apperrors.ErrInvalidCredentials
	}
	f.current = &session.Session{UserID: "user-1", Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	return f.current, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.current = nil
	return nil
}

func (f *fakeIdentity) Refresh(ctx context.Context) (*session.Session, error) {
	if f.current == nil {
		return nil, apperrors.ErrSessionNotFound
	}
	f.current.ExpiresAt = f.current.ExpiresAt.Add(time.Hour)
	return f.current, nil
}

func (f *fakeIdentity) Events() <-chan session.Event { return f.events }

type dropMailer struct{}

func (dropMailer) Send(ctx context.Context, to, subject, body string) error { return nil }

type testFixture struct {
	server   *server.Server
	identity *fakeIdentity
}

func newFixture(t *testing.T, role roles.Role) *testFixture {
	t.Helper()

	cfg := config.New()
	cache := rolecache.NewMemory(time.Minute)
	g, err := gate.New(&stubResolver{role: role}, cache, cfg.GetTrustedDomain())
	require.NoError(t, err)

	provisioner, err := provision.New(provision.Repos{
		Accounts: repofakes.NewFakeAccountRepo(),
		Resets:   repofakes.NewFakeResetTokenRepo(),
		Roles:    rolefakes.NewFakeRoleRepo(),
	}, dropMailer{}, "https://app.immoflow.example")
	require.NoError(t, err)

	identity := newFakeIdentity(residentEmail, "Sup3rSecret")
	srv, err := server.New(cfg, server.Deps{
		Gate:        g,
		Resolver:    &stubResolver{role: role},
		Verifier:    session.NewJWTVerifier(testSecret),
		Identity:    identity,
		Provisioner: provisioner,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	return &testFixture{server: srv, identity: identity}
}

func bearerFor(t *testing.T, userID, email string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + raw
}

func get(f *testFixture, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, roles.RoleNone)

	rec := get(f, server.RouteHealth, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRouteWithoutTokenRedirectsToLogin(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	rec := get(f, server.RouteAdminDashboard, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
}

func TestAdminRouteWithAdminRole(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	rec := get(f, server.RouteAdminDashboard, bearerFor(t, "user-1", residentEmail))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "admin/dashboard")
}

func TestAdminRouteWithUserRoleIsDenied(t *testing.T) {
	f := newFixture(t, roles.RoleUser)

	rec := get(f, server.RouteAdminDashboard, bearerFor(t, "user-1", residentEmail))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteAccessDenied, rec.Header().Get("Location"))
}

func TestResidentRouteAcceptsManagerRole(t *testing.T) {
	f := newFixture(t, roles.RoleManager)

	rec := get(f, server.RouteDeclarations, bearerFor(t, "user-1", residentEmail))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsRouteRequiresStaffDomain(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	rec := get(f, server.RouteAdminSettings, bearerFor(t, "user-1", staffEmail))
	require.Equal(t, http.StatusOK, rec.Code)

	// An admin role row is not enough; the address must be on the staff
	// domain.
	denied := get(f, server.RouteAdminSettings, bearerFor(t, "user-2", residentEmail))
	require.Equal(t, http.StatusSeeOther, denied.Code)
	require.Equal(t, server.RouteAccessDenied, denied.Header().Get("Location"))
}

func TestExpiredTokenIsTreatedAsSignedOut(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := get(f, server.RouteAdminDashboard, "Bearer "+raw)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
}

func TestLoginRedirectsToRoleLanding(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	form := strings.NewReader("email=" + residentEmail + "&password=Sup3rSecret")
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteAdminDashboard, rec.Header().Get("Location"))
}

func TestRefreshRenewsActiveSession(t *testing.T) {
	f := newFixture(t, roles.RoleUser)

	// Without a session, refresh is rejected.
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := f.identity.SignIn(context.Background(), residentEmail, "Sup3rSecret")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil)
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "user-1")
	require.Contains(t, rec.Body.String(), "expires_at")
}

func TestLoginFailureRedirectsBackToLogin(t *testing.T) {
	f := newFixture(t, roles.RoleAdmin)

	form := strings.NewReader("email=" + residentEmail + "&password=wrong")
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), server.RouteLogin))
}

func TestSignupProvisionsAccount(t *testing.T) {
	f := newFixture(t, roles.RoleNone)

	body := strings.NewReader(`{"email":"new@other.example","password":"Sup3rSecret"}`)
	req := httptest.NewRequest(http.MethodPost, server.RouteSignup, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "new@other.example")
	require.NotContains(t, rec.Body.String(), "password", "the hash must never serialize")
}

func TestForgotPasswordAlwaysAccepted(t *testing.T) {
	f := newFixture(t, roles.RoleNone)

	form := strings.NewReader("email=nobody@other.example")
	req := httptest.NewRequest(http.MethodPost, server.RouteForgotPassword, form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
}
