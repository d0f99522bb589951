// AngelaMos | 2026
// service.go

package banner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/imagehost"
)

const imageFolder = "banners"

var ErrImageRequired = errors.New("banner image is required")

type Service struct {
	repo   Repository
	images imagehost.Store
	logger *slog.Logger
}

func NewService(repo Repository, images imagehost.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, images: images, logger: logger}
}

func (s *Service) List(ctx context.Context, page core.Page) ([]Banner, core.Pagination, error) {
	items, total, err := s.repo.List(ctx, page.Offset(), page.Limit)
	if err != nil {
		return nil, core.Pagination{}, err
	}
	return items, page.Paginate(total), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Banner, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the image as uploaded, without resizing.
func (s *Service) Create(ctx context.Context, upload *imagehost.Upload) (*Banner, error) {
	if upload == nil {
		return nil, ErrImageRequired
	}

	asset, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	b := &Banner{
		ID:       uuid.New().String(),
		ImageURL: asset.URL,
		ImageID:  asset.ID,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		s.discard(ctx, asset.ID)
		return nil, err
	}

	return b, nil
}

// Update replaces the image when one is supplied. The old image is
// deleted only after the record points at the new one.
func (s *Service) Update(
	ctx context.Context,
	id string,
	upload *imagehost.Upload,
) (*Banner, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return b, nil
	}

	asset, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	oldImageID := b.ImageID
	b.ImageURL, b.ImageID = asset.URL, asset.ID
	if err := s.repo.UpdateImage(ctx, b); err != nil {
		s.discard(ctx, asset.ID)
		return nil, err
	}

	if oldImageID != "" {
		if err := s.images.Delete(ctx, oldImageID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced banner image",
				"banner_id", b.ID, "image_id", oldImageID, "error", err)
		}
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if b.ImageID != "" {
		if err := s.images.Delete(ctx, b.ImageID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete banner image",
				"banner_id", b.ID, "image_id", b.ImageID, "error", err)
		}
	}

	return nil
}

func (s *Service) upload(ctx context.Context, u *imagehost.Upload) (*imagehost.Asset, error) {
	u.Folder = imageFolder
	asset, err := s.images.Upload(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("banner image: %w", err)
	}
	return asset, nil
}

func (s *Service) discard(ctx context.Context, id string) {
	if err := s.images.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to discard orphaned banner image",
			"image_id", id, "error", err)
	}
}
