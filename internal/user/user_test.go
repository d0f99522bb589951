// AngelaMos | 2026
// user_test.go

package user

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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-international/exportsite/internal/auth"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User)}
}

func (m *memoryRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return core.ErrDuplicateKey
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memoryRepo) List(_ context.Context, params ListParams) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Search != "" && !strings.Contains(u.Username, params.Search) {
			continue
		}
		out = append(out, *u)
	}
	total := len(out)
	if params.Offset >= total {
		return []User{}, total, nil
	}
	return out[params.Offset:min(params.Offset+params.Limit, total)], total, nil
}

func (m *memoryRepo) SetActive(_ context.Context, id string, active bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u.IsActive = active
	if active {
		u.LoginAttempts = 0
		u.LockUntil = nil
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return m.mutate(id, func(u *User) { u.PasswordHash = hash })
}

func (m *memoryRepo) RecordFailedLogin(_ context.Context, id string, lockUntil *time.Time) error {
	return m.mutate(id, func(u *User) {
		if lockUntil != nil {
			u.LoginAttempts = 0
		} else {
			u.LoginAttempts++
		}
		u.LockUntil = lockUntil
	})
}

func (m *memoryRepo) RecordSuccessfulLogin(_ context.Context, id string, at time.Time) error {
	return m.mutate(id, func(u *User) {
		u.LoginAttempts = 0
		u.LockUntil = nil
		u.LastLogin = &at
	})
}

func (m *memoryRepo) Delete(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	delete(m.users, id)
	return u, nil
}

func (m *memoryRepo) Counts(_ context.Context) (*Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &Counts{ByRole: map[string]int{}}
	for _, u := range m.users {
		c.Total++
		c.ByRole[u.Role]++
		if u.IsActive {
			c.Active++
		}
	}
	return c, nil
}

func (m *memoryRepo) mutate(id string, fn func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	fn(u)
	return nil
}

type recordingCache struct {
	auth.NoopIdentityCache
	removed []string
}

func (c *recordingCache) Remove(id string) { c.removed = append(c.removed, id) }

func newTestService(t *testing.T) (*Service, *recordingCache) {
	t.Helper()
	cache := &recordingCache{}
	return NewService(newMemoryRepo(), cache), cache
}

func mustCreate(t *testing.T, svc *Service, username, role string) *User {
	t.Helper()
	u, err := svc.Create(context.Background(), CreateUserRequest{
		Username: username,
		Password: "correct horse battery",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestCreateHashesAndLowercases(t *testing.T) {
	svc, _ := newTestService(t)

	u := mustCreate(t, svc, "  Ravi ", "")
	assert.Equal(t, "ravi", u.Username)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	assert.True(t, u.IsActive)
	assert.NotContains(t, u.PasswordHash, "correct horse")

	ok, _, err := core.VerifyPassword("correct horse battery", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Username: "RAVI",
		Password: "another password",
	})
	require.Error(t, err)
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
}

func TestServiceBacksStoredUserAuth(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "ravi", "")

	provider := auth.NewStoredUserAuth(svc, nil, auth.DefaultLockoutPolicy, nil)

	identity, err := provider.Authenticate(context.Background(), "Ravi", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "ravi", identity.Username)

	_, err = provider.Authenticate(context.Background(), "ravi", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestDeactivateEvictsIdentity(t *testing.T) {
	svc, cache := newTestService(t)
	admin := mustCreate(t, svc, "owner", "")
	other := mustCreate(t, svc, "staff", auth.RoleUser)

	u, err := svc.Deactivate(context.Background(), admin.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, []string{other.ID}, cache.removed)

	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Active)
	assert.Equal(t, 1, counts.ByRole[auth.RoleUser])
}

func TestSelfActionsForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	admin := mustCreate(t, svc, "owner", "")

	_, err := svc.Deactivate(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Delete(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func asAdmin(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: id,
				Role:   auth.RoleAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func passthrough(next http.Handler) http.Handler { return next }

func TestAdminHandlers(t *testing.T) {
	svc, _ := newTestService(t)
	admin := mustCreate(t, svc, "owner", "")
	staff := mustCreate(t, svc, "staff", auth.RoleUser)

	r := chi.NewRouter()
	NewHandler(svc).RegisterAdminRoutes(r, asAdmin(admin.ID), passthrough, passthrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users/?role=user", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data struct {
			Users []map[string]any `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.Users, 1)
	assert.Equal(t, "staff", list.Data.Users[0]["username"])
	assert.NotContains(t, list.Data.Users[0], "passwordHash")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/users/"+staff.ID+"/deactivate", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isActive":false`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/users/"+admin.ID, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/users/"+staff.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"staff"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
