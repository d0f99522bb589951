// AngelaMos | 2026
// repository.go

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/shyam-international/exportsite/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id string) (*Summary, error)
	List(ctx context.Context, offset, limit int, sortDir string) ([]Summary, int, error)
	Delete(ctx context.Context, id string) error
	Overview(ctx context.Context, today, weekAgo time.Time) (*Overview, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedback (id, message, submitted_at, user_agent, page, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, f, query,
		f.ID,
		f.Message,
		f.SubmittedAt,
		f.UserAgent,
		f.Page,
		f.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Summary, error) {
	query := `SELECT id, message, submitted_at, created_at FROM feedback WHERE id = $1`

	var s Summary
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, core.NotFoundOr("get feedback", err)
	}

	return &s, nil
}

func (r *repository) List(
	ctx context.Context,
	offset, limit int,
	sortDir string,
) ([]Summary, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM feedback`); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	dir := "DESC"
	if sortDir == "ASC" {
		dir = "ASC"
	}

	query := `
		SELECT id, message, submitted_at, created_at
		FROM feedback
		ORDER BY submitted_at ` + dir + `
		LIMIT $1 OFFSET $2`

	items := []Summary{}
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}

	return items, total, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete feedback: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Overview(
	ctx context.Context,
	today, weekAgo time.Time,
) (*Overview, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE submitted_at >= $1) AS recent,
		       COUNT(*) FILTER (WHERE submitted_at >= $2) AS today
		FROM feedback`

	var o Overview
	if err := r.db.GetContext(ctx, &o, query, weekAgo, today); err != nil {
		return nil, fmt.Errorf("feedback overview: %w", err)
	}

	return &o, nil
}
