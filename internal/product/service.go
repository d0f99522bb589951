// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/imagehost"
)

const (
	imageFolder = "products"
	imageWidth  = 800
	imageHeight = 600
)

// Input carries the writable product fields. Nil means "not supplied".
type Input struct {
	Name        *string `json:"name"        validate:"omitempty,max=200"`
	Code        *string `json:"code"        validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category"    validate:"omitempty,max=100"`
}

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

func (s *Service) List(
	ctx context.Context,
	page core.Page,
	search, category, sortDir string,
) ([]Product, core.Pagination, error) {
	category = strings.TrimSpace(category)
	if category == CategoryAll {
		category = ""
	}

	items, total, err := s.repo.List(ctx, ListParams{
		Offset:   page.Offset(),
		Limit:    page.Limit,
		Search:   strings.TrimSpace(search),
		Category: category,
		Sort:     sortDir,
	})
	if err != nil {
		return nil, core.Pagination{}, err
	}

	return items, page.Paginate(total), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Categories returns the distinct non-empty categories, sorted, led by "All".
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	sort.Strings(out)

	return append([]string{CategoryAll}, out...), nil
}

// Create validates the fields before touching the image host, so a
// rejected product never leaves an orphaned upload behind.
func (s *Service) Create(
	ctx context.Context,
	in Input,
	upload *imagehost.Upload,
) (*Product, error) {
	if in.Name == nil || *in.Name == "" || in.Code == nil || *in.Code == "" {
		return nil, core.BadRequestError("Name and code are required")
	}
	code := strings.ToUpper(strings.TrimSpace(*in.Code))
	if code == "" {
		return nil, core.BadRequestError("Product code cannot be empty or only whitespace")
	}

	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.DuplicateError("Product code already exists")
	}

	p := &Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(*in.Name),
		Code:        code,
		Description: trimmed(in.Description),
		Category:    trimmed(in.Category),
	}

	var asset *imagehost.Asset
	if upload != nil {
		asset, err = s.upload(ctx, upload)
		if err != nil {
			return nil, err
		}
		p.ImageURL, p.ImageID = asset.URL, asset.ID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.discard(ctx, asset)
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("Product code already exists")
		}
		return nil, err
	}

	return p, nil
}

// Update swaps in a new image only after the record is saved. The old
// image is deleted last; if the save fails the new upload is discarded
// and the old image stays in place.
func (s *Service) Update(
	ctx context.Context,
	id string,
	in Input,
	upload *imagehost.Upload,
) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.Code))
		if code == "" {
			return nil, core.BadRequestError("Product code cannot be empty or only whitespace")
		}
		if code != p.Code {
			exists, err := s.repo.ExistsByCode(ctx, code, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, core.DuplicateError("Product code already exists")
			}
		}
		p.Code = code
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			p.Name = name
		}
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}

	oldImageID := p.ImageID
	var asset *imagehost.Asset
	if upload != nil {
		asset, err = s.upload(ctx, upload)
		if err != nil {
			return nil, err
		}
		p.ImageURL, p.ImageID = asset.URL, asset.ID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.discard(ctx, asset)
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("Product code already exists")
		}
		return nil, err
	}

	if asset != nil && oldImageID != "" {
		if err := s.images.Delete(ctx, oldImageID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced product image",
				"product_id", p.ID, "image_id", oldImageID, "error", err)
		}
	}

	return p, nil
}

// Delete removes the record; a failure to delete its image is logged only.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if p.ImageID != "" {
		if err := s.images.Delete(ctx, p.ImageID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete product image",
				"product_id", p.ID, "image_id", p.ImageID, "error", err)
		}
	}

	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) upload(ctx context.Context, u *imagehost.Upload) (*imagehost.Asset, error) {
	u = imagehost.Fit(u, imageWidth, imageHeight)
	u.Folder = imageFolder

	asset, err := s.images.Upload(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("product image: %w", err)
	}
	return asset, nil
}

func (s *Service) discard(ctx context.Context, asset *imagehost.Asset) {
	if asset == nil {
		return
	}
	if err := s.images.Delete(ctx, asset.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to discard orphaned product image",
			"image_id", asset.ID, "error", err)
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
