// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api", h.RegisterAPIRoutes)
	return r
}

func serve(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadiness(t *testing.T) {
	h := NewHandler(HandlerConfig{DB: pinger{}, Redis: pinger{}})
	router := newTestRouter(h)

	rec := serve(t, router, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, "redis", body.Checks[1].Name)
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(HandlerConfig{DB: pinger{}, Redis: pinger{err: errors.New("refused")}})

	rec := serve(t, newTestRouter(h), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler(HandlerConfig{DB: pinger{}, Redis: pinger{}})
	router := newTestRouter(h)
	h.SetShutdown(true)

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, router, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, router, "/readyz").Code)
}

func TestBannerAndSummary(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name:    "Shyam International Contact API",
		Version: "1.0.0",
		Started: time.Now().Add(-time.Minute),
	})
	router := newTestRouter(h)

	rec := serve(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	var banner BannerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &banner))
	assert.Equal(t, BannerResponse{
		Message: "Shyam International Contact API",
		Version: "1.0.0",
		Status:  "Active",
	}, banner)

	rec = serve(t, router, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "OK", summary.Status)
	assert.GreaterOrEqual(t, summary.Uptime, int64(60))
}
