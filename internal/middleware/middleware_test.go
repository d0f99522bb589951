// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterFallsBackToLocalBucket(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:   PerWindow(2, 15*time.Minute),
		Scope:   "contact",
		Message: "Too many submissions",
	})
	h := rl.Handler(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many submissions", body["message"])
	assert.Equal(t, "RATE_LIMITED", body["code"])

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimiterBypass(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit: PerWindow(1, time.Minute),
		Skip:  func(*http.Request) bool { return true },
	})
	h := rl.Handler(okHandler())

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.3")
	assert.Equal(t, "198.51.100.3", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 203.0.113.9")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecovererWritesEnvelope(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireRoleRejectsNonAdmin(t *testing.T) {
	h := RequireAdmin(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{
		UserID: "u1",
		Role:   "user",
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestRequireRoleListsAcceptedRoles(t *testing.T) {
	h := RequireRole(RoleAdmin, "editor")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &AccessTokenClaims{Role: RoleUser}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Required roles: admin, editor")
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAdmin(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer  abc.def ")
	assert.Equal(t, "abc.def", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(req))
}

func TestRateLimiterSetsPolicyHeaders(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerWindow(5, time.Hour)})
	rec := httptest.NewRecorder()
	rl.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5;w=3600", rec.Header().Get("RateLimit-Policy"))
	assert.Equal(t, "4", rec.Header().Get("RateLimit-Remaining"))
}

func TestRateLimiterZeroAllowanceFailsOpen(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Limit: PerWindow(0, time.Minute), FailOpen: true})
	rec := httptest.NewRecorder()
	rl.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
