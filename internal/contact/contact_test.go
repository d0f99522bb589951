// AngelaMos | 2026
// contact_test.go

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/mail"
)

type memoryRepo struct {
	mu       sync.Mutex
	contacts map[string]*Contact
	now      func() time.Time
}

func newMemoryRepo(now func() time.Time) *memoryRepo {
	return &memoryRepo{contacts: make(map[string]*Contact), now: now}
}

func (m *memoryRepo) Create(_ context.Context, c *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.contacts[c.ID] = &cp
	return nil
}

func (m *memoryRepo) FindRecentByEmail(
	_ context.Context,
	email string,
	since time.Time,
) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *Contact
	for _, c := range m.contacts {
		if c.Email == email && !c.CreatedAt.Before(since) {
			if found == nil || c.CreatedAt.After(found.CreatedAt) {
				found = c
			}
		}
	}
	if found == nil {
		return nil, core.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, p ListParams) ([]Summary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Summary
	for _, c := range m.contacts {
		if p.Status != "" && c.Status != p.Status {
			continue
		}
		out = append(out, Summary{ID: c.ID, Name: c.Name, Email: c.Email, Status: c.Status, CreatedAt: c.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id, status string) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

func (m *memoryRepo) MarkEmailSent(_ context.Context, id string, meta EmailMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.contacts[id]
	c.EmailSent = true
	c.EmailMetadata = &meta
	return nil
}

func (m *memoryRepo) MarkEmailFailed(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[id].EmailError = &reason
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	delete(m.contacts, id)
	return c, nil
}

func (m *memoryRepo) Stats(context.Context, StatsWindow) (*Stats, error) {
	return &Stats{ByStatus: map[string]int{}}, nil
}

func (m *memoryRepo) Count(context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contacts), len(m.contacts), nil
}

// scriptedSender fails for any recipient listed in failFor.
type scriptedSender struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []string
}

func (s *scriptedSender) Send(_ context.Context, msg *mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[msg.To] {
		return errors.New("connection refused")
	}
	s.sent = append(s.sent, msg.To)
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var admins = []string{"a1@example.com", "a2@example.com", "a3@example.com"}

func newTestService(sender mail.Sender) (*Service, *memoryRepo, *clock) {
	clk := &clock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	repo := newMemoryRepo(clk.Now)
	notifier := NewNotifier(sender, mail.NewComposer("Shyam International"), admins, nil)
	svc := NewService(ServiceConfig{
		Repo:          repo,
		Notifier:      notifier,
		SenderAddress: "site@example.com",
		Now:           clk.Now,
	})
	return svc, repo, clk
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		Name:    "Jane",
		Email:   "jane@x.com",
		Phone:   "+15551234567",
		Message: "Hello there, need a quote",
	}
}

func TestDuplicateWindow(t *testing.T) {
	svc, _, clk := newTestService(&scriptedSender{})
	ctx := context.Background()

	first, err := svc.Submit(ctx, validRequest(), ClientMeta{})
	require.NoError(t, err)

	clk.Advance(4 * time.Minute)
	req := validRequest()
	req.Email = "  JANE@X.COM "
	_, err = svc.Submit(ctx, req, ClientMeta{})

	var dup *DuplicateSubmissionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.SubmittedAt, dup.LastSubmission)

	clk.Advance(time.Minute + time.Second)
	_, err = svc.Submit(ctx, validRequest(), ClientMeta{})
	assert.NoError(t, err)
}

func TestPartialAdminFailureStillMarksSent(t *testing.T) {
	sender := &scriptedSender{failFor: map[string]bool{
		"a1@example.com": true,
		"a3@example.com": true,
	}}
	svc, repo, _ := newTestService(sender)

	receipt, err := svc.Submit(context.Background(), validRequest(), ClientMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.True(t, receipt.EmailSent)

	stored, err := repo.GetByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailSent)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
	require.NotNil(t, stored.EmailMetadata)
	assert.Equal(t, 1, stored.EmailMetadata.AdminEmailsSent)
	assert.Equal(t, 2, stored.EmailMetadata.AdminEmailsFailed)
	assert.True(t, stored.EmailMetadata.CustomerEmailSent)
	assert.Equal(t, 4, stored.EmailMetadata.TotalEmailsAttempted)
	assert.Equal(t, 2, stored.EmailMetadata.TotalEmailsSuccessful)
	assert.NotNil(t, stored.EmailMetadata.SentAt)
	assert.Nil(t, stored.EmailMetadata.ResentAt)
}

func TestAllEmailsFailingRecordsError(t *testing.T) {
	sender := &scriptedSender{failFor: map[string]bool{
		"a1@example.com": true,
		"a2@example.com": true,
		"a3@example.com": true,
		"jane@x.com":     true,
	}}
	svc, repo, _ := newTestService(sender)

	receipt, err := svc.Submit(context.Background(), validRequest(), ClientMeta{})
	require.NoError(t, err)
	assert.False(t, receipt.EmailSent)

	stored, _ := repo.GetByID(context.Background(), receipt.ID)
	require.NotNil(t, stored.EmailError)
	assert.Equal(t,
		"a1@example.com: connection refused; a2@example.com: connection refused; "+
			"a3@example.com: connection refused; Customer email failed: connection refused",
		*stored.EmailError,
	)
}

func TestResendSetsResentAt(t *testing.T) {
	svc, repo, _ := newTestService(&scriptedSender{})

	receipt, err := svc.Submit(context.Background(), validRequest(), ClientMeta{})
	require.NoError(t, err)

	report, err := svc.Resend(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, report.Success())

	stored, _ := repo.GetByID(context.Background(), receipt.ID)
	assert.NotNil(t, stored.EmailMetadata.ResentAt)

	_, err = svc.Resend(context.Background(), "0b6f3f4e-7d0c-4d8f-9a52-8d1a1b2c3d4e")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSendTestTargetsSenderMailbox(t *testing.T) {
	sender := &scriptedSender{}
	svc, _, _ := newTestService(sender)

	report := svc.SendTest(context.Background())

	assert.True(t, report.Success())
	assert.Equal(t, 4, report.Successful)
	assert.Contains(t, sender.sent, "site@example.com")
}

func TestNotifierWithNoAdmins(t *testing.T) {
	sender := &scriptedSender{}
	n := NewNotifier(sender, mail.NewComposer("Shyam International"), nil, nil)

	report := n.Dispatch(context.Background(), mail.Contact{Email: "buyer@example.com"})

	assert.Equal(t, 1, report.Attempted)
	assert.True(t, report.CustomerSent)
	assert.Equal(t, []string{"buyer@example.com"}, sender.sent)
}

func TestWindowAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	w := WindowAt(now)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), w.Today)
	assert.Equal(t, time.Date(2026, 3, 3, 15, 30, 0, 0, time.UTC), w.Week)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.Month)
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, passthrough, passthrough, passthrough, passthrough, passthrough)
	return r
}

func TestSubmitHandler(t *testing.T) {
	svc, _, _ := newTestService(&scriptedSender{})
	router := newTestRouter(svc)

	body := `{"name":"Jane","email":"jane@x.com","phone":"+15551234567","message":"Hello there, need a quote"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact/submit", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Success bool    `json:"success"`
		Message string  `json:"message"`
		Data    Receipt `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "Thank you for your message!", created.Message)
	assert.NotEmpty(t, created.Data.ID)
	assert.True(t, created.Data.EmailSent)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact/submit", strings.NewReader(body)))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var dup map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dup))
	assert.Equal(t, false, dup["success"])
	assert.Equal(t, "Please wait before submitting another form.", dup["message"])
	assert.NotEmpty(t, dup["lastSubmission"])
}

func TestSubmitHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService(&scriptedSender{})
	router := newTestRouter(svc)

	body := `{"name":"J","email":"not-an-email","phone":"12","message":"short"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact/submit", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email must be a valid email address")
}

func TestAdminRoutesIDHandling(t *testing.T) {
	svc, _, _ := newTestService(&scriptedSender{})
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid contact ID format")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/contact/0b6f3f4e-7d0c-4d8f-9a52-8d1a1b2c3d4e/resend-emails", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contact not found")
}

func TestStatusUpdateAndList(t *testing.T) {
	svc, _, _ := newTestService(&scriptedSender{})
	router := newTestRouter(svc)

	receipt, err := svc.Submit(context.Background(), validRequest(), ClientMeta{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/contact/"+receipt.ID+"/status", strings.NewReader(`{"status":"archived"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch,
		"/contact/"+receipt.ID+"/status", strings.NewReader(`{"status":"read"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"read"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact/submissions?status=bogus", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data struct {
			Contacts   []Summary       `json:"contacts"`
			Pagination core.Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data.Contacts, 1)
	assert.Equal(t, 10, list.Data.Pagination.Limit)
	assert.NotContains(t, rec.Body.String(), "ipAddress")
}
