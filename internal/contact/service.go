// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/mail"
	"github.com/shyam-international/exportsite/internal/metrics"
	"github.com/shyam-international/exportsite/internal/outbox"
)

const DefaultDuplicateWindow = 5 * time.Minute

// DuplicateSubmissionError is returned when the same email is submitted again
// within the duplicate window.
type DuplicateSubmissionError struct {
	LastSubmission time.Time
}

func (e *DuplicateSubmissionError) Error() string {
	return "duplicate submission"
}

type Service struct {
	repo     Repository
	notifier *Notifier
	runner   *outbox.Runner
	window   time.Duration
	sender   string
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceConfig struct {
	Repo            Repository
	Notifier        *Notifier
	Runner          *outbox.Runner
	DuplicateWindow time.Duration
	// SenderAddress receives the synthetic test contact.
	SenderAddress string
	Logger        *slog.Logger
	Now           func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = DefaultDuplicateWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Runner == nil {
		cfg.Runner = outbox.NewRunner(false, 0, cfg.Logger)
	}
	return &Service{
		repo:     cfg.Repo,
		notifier: cfg.Notifier,
		runner:   cfg.Runner,
		window:   cfg.DuplicateWindow,
		sender:   cfg.SenderAddress,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Submit stores a contact and notifies admins and the submitter. Email
// failures are recorded on the contact and never fail the call. The
// duplicate check is best effort: two concurrent submissions may both pass.
func (s *Service) Submit(
	ctx context.Context,
	req SubmitRequest,
	meta ClientMeta,
) (_ *Receipt, err error) {
	ctx, span := core.StartSpan(ctx, "contact.submit")
	defer func() { core.EndSpan(span, err) }()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	recent, err := s.repo.FindRecentByEmail(ctx, email, s.now().Add(-s.window))
	switch {
	case err == nil:
		metrics.ContactSubmissions.WithLabelValues("duplicate").Inc()
		return nil, &DuplicateSubmissionError{LastSubmission: recent.CreatedAt}
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	var emailSent bool
	c, err := outbox.RecordAndNotify(ctx, s.runner,
		func(ctx context.Context) (*Contact, error) {
			c := &Contact{
				ID:        uuid.New().String(),
				Name:      strings.TrimSpace(req.Name),
				Email:     email,
				Phone:     strings.TrimSpace(req.Phone),
				Company:   strings.TrimSpace(req.Company),
				Message:   strings.TrimSpace(req.Message),
				Status:    StatusNew,
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
			}
			if err := s.repo.Create(ctx, c); err != nil {
				return nil, err
			}
			return c, nil
		},
		func(ctx context.Context, c *Contact) error {
			report := s.notifier.Dispatch(ctx, view(c))
			sent, err := s.writeBack(ctx, c.ID, report, false)
			if !s.runner.Async() {
				emailSent = sent
			}
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	metrics.ContactSubmissions.WithLabelValues("accepted").Inc()

	return &Receipt{
		ID:          c.ID,
		SubmittedAt: c.CreatedAt,
		EmailSent:   emailSent,
	}, nil
}

// Resend re-runs the notification fan-out for an existing contact.
func (s *Service) Resend(ctx context.Context, id string) (*Report, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	report := s.notifier.Dispatch(ctx, view(c))
	if _, err := s.writeBack(ctx, c.ID, report, true); err != nil {
		return nil, err
	}

	return report, nil
}

// SendTest runs the fan-out for a synthetic contact addressed to the
// sender mailbox. Nothing is stored.
func (s *Service) SendTest(ctx context.Context) *Report {
	return s.notifier.Dispatch(ctx, mail.Contact{
		Name:        "Test User",
		Email:       s.sender,
		Phone:       "+1234567890",
		Company:     "Test Company",
		Message:     "Email system test - all services operational",
		IPAddress:   "127.0.0.1",
		SubmittedAt: s.now(),
	})
}

// writeBack records the fan-out outcome and reports whether the contact
// is now marked as sent.
func (s *Service) writeBack(
	ctx context.Context,
	id string,
	report *Report,
	resent bool,
) (bool, error) {
	if !report.Success() {
		reason := strings.Join(report.Errors, "; ")
		if err := s.repo.MarkEmailFailed(ctx, id, reason); err != nil {
			return false, fmt.Errorf("record email failure: %w", err)
		}
		return false, nil
	}

	meta := report.metadata()
	at := s.now()
	if resent {
		meta.ResentAt = &at
	} else {
		meta.SentAt = &at
	}

	if err := s.repo.MarkEmailSent(ctx, id, meta); err != nil {
		return false, fmt.Errorf("record email success: %w", err)
	}

	return true, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	page core.Page,
	status, search string,
) ([]Summary, core.Pagination, error) {
	if !ValidStatus(status) {
		status = ""
	}

	items, total, err := s.repo.List(ctx, ListParams{
		Offset: page.Offset(),
		Limit:  page.Limit,
		Status: status,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, core.Pagination{}, err
	}

	return items, page.Paginate(total), nil
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*StatusResponse, error) {
	c, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{ID: c.ID, Status: c.Status, UpdatedAt: c.UpdatedAt}, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*DeletedResponse, error) {
	c, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeletedResponse{ID: c.ID, Name: c.Name, Email: c.Email}, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, WindowAt(s.now()))
}

// Count returns the total number of contacts and how many are still new.
func (s *Service) Count(ctx context.Context) (total, fresh int, err error) {
	return s.repo.Count(ctx)
}

func view(c *Contact) mail.Contact {
	return mail.Contact{
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		Message:     c.Message,
		IPAddress:   c.IPAddress,
		UserAgent:   c.UserAgent,
		SubmittedAt: c.CreatedAt,
	}
}
