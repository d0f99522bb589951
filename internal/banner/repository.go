// AngelaMos | 2026
// repository.go

package banner

import (
	"context"
	"fmt"

	"github.com/shyam-international/exportsite/internal/core"
)

type Repository interface {
	Create(ctx context.Context, b *Banner) error
	GetByID(ctx context.Context, id string) (*Banner, error)
	List(ctx context.Context, offset, limit int) ([]Banner, int, error)
	UpdateImage(ctx context.Context, b *Banner) error
	Delete(ctx context.Context, id string) (*Banner, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Banner) error {
	query := `
		INSERT INTO banners (id, image_url, image_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	if err := r.db.GetContext(ctx, b, query, b.ID, b.ImageURL, b.ImageID); err != nil {
		return fmt.Errorf("create banner: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Banner, error) {
	query := `
		SELECT id, image_url, image_id, created_at, updated_at
		FROM banners WHERE id = $1`

	var b Banner
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		return nil, core.NotFoundOr("get banner", err)
	}

	return &b, nil
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]Banner, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM banners`); err != nil {
		return nil, 0, fmt.Errorf("count banners: %w", err)
	}

	query := `
		SELECT id, image_url, image_id, created_at, updated_at
		FROM banners
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	items := []Banner{}
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list banners: %w", err)
	}

	return items, total, nil
}

func (r *repository) UpdateImage(ctx context.Context, b *Banner) error {
	query := `
		UPDATE banners SET image_url = $2, image_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	if err := r.db.GetContext(ctx, b, query, b.ID, b.ImageURL, b.ImageID); err != nil {
		return core.NotFoundOr("update banner", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (*Banner, error) {
	query := `
		DELETE FROM banners WHERE id = $1
		RETURNING id, image_url, image_id, created_at, updated_at`

	var b Banner
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		return nil, core.NotFoundOr("delete banner", err)
	}

	return &b, nil
}
