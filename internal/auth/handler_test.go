// AngelaMos | 2026
// handler_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-international/exportsite/internal/middleware"
)

type memoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, exp time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = exp
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.revoked[jti]
	return ok, nil
}

type authFixture struct {
	router *chi.Mux
	clock  *fakeClock
}

func newAuthFixture() *authFixture {
	clock := &fakeClock{t: time.Now()}
	svc := NewService(
		newTestJWT(clock),
		NewStaticCredentialAuth("admin", "s3cret-pass"),
		&memoryBlacklist{revoked: map[string]time.Time{}},
		nil,
	)

	pass := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandler(svc).RegisterRoutes(r, middleware.Authenticator(svc), pass, pass)
		r.With(middleware.Authenticator(svc), middleware.RequireAdmin).
			Get("/admin/ping", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
	})

	return &authFixture{router: r, clock: clock}
}

func (f *authFixture) do(method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (f *authFixture) login(t *testing.T) string {
	t.Helper()
	rec, body := f.do(http.MethodPost, "/api/auth/login",
		`{"username":"admin","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLoginResponses(t *testing.T) {
	f := newAuthFixture()

	rec, body := f.do(http.MethodPost, "/api/auth/login",
		`{"username":"admin","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["message"])

	rec, body = f.do(http.MethodPost, "/api/auth/login", `{"username":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username and password required", body["message"])

	rec, body = f.do(http.MethodPost, "/api/auth/login",
		`{"username":" admin ","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, StaticAdminID, user["id"])
	assert.Equal(t, "admin", user["role"])
}

func TestProtectedRouteErrors(t *testing.T) {
	f := newAuthFixture()

	rec, body := f.do(http.MethodGet, "/api/admin/ping", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", body["message"])

	rec, body = f.do(http.MethodGet, "/api/admin/ping", "", "not-a-jwt")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	token := f.login(t)
	rec, _ = f.do(http.MethodGet, "/api/admin/ping", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	f.clock.Advance(25 * time.Hour)
	rec, body = f.do(http.MethodGet, "/api/admin/ping", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
}

func TestVerifyRefreshAndLogout(t *testing.T) {
	f := newAuthFixture()
	token := f.login(t)

	rec, body := f.do(http.MethodGet, "/api/auth/verify", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", user["username"])

	rec, body = f.do(http.MethodPost, "/api/auth/refresh", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh, _ := body["token"].(string)
	require.NotEmpty(t, fresh)

	rec, body = f.do(http.MethodGet, "/api/auth/verify", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", body["code"])

	rec, _ = f.do(http.MethodPost, "/api/auth/logout", "", fresh)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(http.MethodGet, "/api/auth/verify", "", fresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
