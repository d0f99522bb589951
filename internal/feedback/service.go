// AngelaMos | 2026
// service.go

package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/core"
)

type SubmitRequest struct {
	Message     string     `json:"message"     validate:"max=5000"`
	SubmittedAt *time.Time `json:"submittedAt"`
	UserAgent   string     `json:"userAgent"   validate:"max=1000"`
	Page        string     `json:"page"        validate:"max=500"`
}

type Receipt struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Submit accepts empty messages. Missing fields fall back to the request
// user agent, "unknown" for page and the current time.
func (s *Service) Submit(
	ctx context.Context,
	req SubmitRequest,
	ip, headerUserAgent string,
) (*Receipt, error) {
	f := &Feedback{
		ID:        uuid.New().String(),
		Message:   strings.TrimSpace(req.Message),
		UserAgent: req.UserAgent,
		Page:      req.Page,
		IPAddress: ip,
	}
	if req.SubmittedAt != nil && !req.SubmittedAt.IsZero() {
		f.SubmittedAt = *req.SubmittedAt
	} else {
		f.SubmittedAt = s.now()
	}
	if f.UserAgent == "" {
		f.UserAgent = headerUserAgent
	}
	if f.Page == "" {
		f.Page = UnknownPage
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	return &Receipt{ID: f.ID, SubmittedAt: f.SubmittedAt}, nil
}

func (s *Service) List(
	ctx context.Context,
	page core.Page,
	sortDir string,
) ([]Summary, core.Pagination, error) {
	items, total, err := s.repo.List(ctx, page.Offset(), page.Limit, sortDir)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return items, page.Paginate(total), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Summary, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Overview counts all feedback, the last seven days and today.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	now := s.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return s.repo.Overview(ctx, today, now.Add(-7*24*time.Hour))
}
