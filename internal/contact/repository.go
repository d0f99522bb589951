// AngelaMos | 2026
// repository.go

package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shyam-international/exportsite/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Contact) error
	FindRecentByEmail(ctx context.Context, email string, since time.Time) (*Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, params ListParams) ([]Summary, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*Contact, error)
	MarkEmailSent(ctx context.Context, id string, meta EmailMetadata) error
	MarkEmailFailed(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) (*Contact, error)
	Stats(ctx context.Context, window StatsWindow) (*Stats, error)
	Count(ctx context.Context) (total int, fresh int, err error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const contactColumns = `id, name, email, phone, company, message, status,
	email_sent, email_error, email_metadata, ip_address, user_agent,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts (id, name, email, phone, company, message, status,
		                      ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Company,
		c.Message,
		c.Status,
		c.IPAddress,
		c.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}

	return nil
}

func (r *repository) FindRecentByEmail(
	ctx context.Context,
	email string,
	since time.Time,
) (*Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE email = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	var c Contact
	if err := r.db.GetContext(ctx, &c, query, email, since); err != nil {
		return nil, core.NotFoundOr("find recent contact", err)
	}

	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	var c Contact
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, core.NotFoundOr("get contact", err)
	}

	return &c, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Summary, int, error) {
	var (
		conds []string
		args  []any
	)

	if params.Status != "" {
		args = append(args, params.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n,
		))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contacts"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, email, phone, company, message, status,
		       email_sent, email_error, created_at, updated_at
		FROM contacts%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	items := []Summary{}
	if err := r.db.SelectContext(ctx, &items, query,
		append(args, params.Limit, params.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}

	return items, total, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
) (*Contact, error) {
	query := `
		UPDATE contacts SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contactColumns

	var c Contact
	if err := r.db.GetContext(ctx, &c, query, id, status); err != nil {
		return nil, core.NotFoundOr("update contact status", err)
	}

	return &c, nil
}

func (r *repository) MarkEmailSent(
	ctx context.Context,
	id string,
	meta EmailMetadata,
) error {
	query := `
		UPDATE contacts
		SET email_sent = TRUE, email_metadata = $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, meta); err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}

	return nil
}

func (r *repository) MarkEmailFailed(ctx context.Context, id, reason string) error {
	query := `UPDATE contacts SET email_error = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, reason); err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (*Contact, error) {
	query := `DELETE FROM contacts WHERE id = $1 RETURNING ` + contactColumns

	var c Contact
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, core.NotFoundOr("delete contact", err)
	}

	return &c, nil
}

func (r *repository) Stats(ctx context.Context, window StatsWindow) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[string]int, len(Statuses))}

	overview := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE created_at >= $1) AS today,
		       COUNT(*) FILTER (WHERE created_at >= $2) AS week,
		       COUNT(*) FILTER (WHERE created_at >= $3) AS month
		FROM contacts`
	if err := r.db.GetContext(ctx, &stats.Overview, overview,
		window.Today, window.Week, window.Month); err != nil {
		return nil, fmt.Errorf("contact overview: %w", err)
	}

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	byStatus := `SELECT status, COUNT(*) AS count FROM contacts GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, byStatus); err != nil {
		return nil, fmt.Errorf("contact status counts: %w", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	email := `
		SELECT COUNT(*) FILTER (WHERE email_sent) AS emails_sent,
		       COUNT(*) FILTER (WHERE email_error IS NOT NULL AND email_error <> '')
		           AS emails_failed
		FROM contacts`
	if err := r.db.GetContext(ctx, &stats.EmailStats, email); err != nil {
		return nil, fmt.Errorf("contact email stats: %w", err)
	}

	return stats, nil
}

func (r *repository) Count(ctx context.Context) (int, int, error) {
	var row struct {
		Total int `db:"total"`
		Fresh int `db:"fresh"`
	}
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'new') AS fresh
		FROM contacts`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("count contacts: %w", err)
	}
	return row.Total, row.Fresh, nil
}
