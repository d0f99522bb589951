// AngelaMos | 2026
// admin_test.go

package admin

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

	"github.com/shyam-international/exportsite/internal/contact"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/feedback"
	"github.com/shyam-international/exportsite/internal/user"
)

type fakeUsers struct{ err error }

func (f fakeUsers) Counts(context.Context) (*user.Counts, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &user.Counts{Total: 3, Active: 2, ByRole: map[string]int{"admin": 2, "user": 1}}, nil
}

type fakeContacts struct{}

func (fakeContacts) Count(context.Context) (int, int, error) { return 12, 4, nil }

func (fakeContacts) Stats(context.Context) (*contact.Stats, error) {
	return &contact.Stats{ByStatus: map[string]int{"new": 4, "closed": 8}}, nil
}

type fakeProducts struct{}

func (fakeProducts) Count(context.Context) (int, error) { return 30, nil }

type fakeFeedback struct{}

func (fakeFeedback) Overview(context.Context) (*feedback.Overview, error) {
	return &feedback.Overview{Total: 7}, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(users UserCounter, redisInfo func(context.Context) (*core.RedisServerInfo, error)) http.Handler {
	h := NewHandler(HandlerConfig{
		Users:     users,
		Contacts:  fakeContacts{},
		Products:  fakeProducts{},
		Feedback:  fakeFeedback{},
		RedisInfo: redisInfo,
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		Started:   time.Now().Add(-90 * time.Second),
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough, passthrough)
	return r
}

func TestDashboard(t *testing.T) {
	router := newTestRouter(fakeUsers{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    DashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, UserTotals{Total: 3, Active: 2}, body.Data.Users)
	assert.Equal(t, ContactTotals{Total: 12, New: 4}, body.Data.Contacts)
	assert.Equal(t, 30, body.Data.Products.Total)
	assert.Equal(t, 7, body.Data.Feedback.Total)
	assert.GreaterOrEqual(t, body.Data.SystemInfo.Uptime, int64(90))
}

func TestDashboardFailsWhenACountFails(t *testing.T) {
	router := newTestRouter(fakeUsers{err: errors.New("db gone")}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSystemStats(t *testing.T) {
	router := newTestRouter(fakeUsers{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Users["admin"])
	assert.Equal(t, 8, body.Data.Contacts["closed"])
	assert.True(t, body.Data.Database.Healthy)
	assert.False(t, body.Data.Redis.Healthy)
	assert.NotEmpty(t, body.Data.Runtime.GoVersion)
}

func TestRedisStatsToleratesInfoFailure(t *testing.T) {
	router := newTestRouter(fakeUsers{}, func(context.Context) (*core.RedisServerInfo, error) {
		return nil, errors.New("NOPERM")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/redis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"server"`)

	router = newTestRouter(fakeUsers{}, func(context.Context) (*core.RedisServerInfo, error) {
		return &core.RedisServerInfo{Version: "7.2.4", RevokedTokens: 2}, nil
	})

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/redis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"7.2.4"`)
}
