// AngelaMos | 2026
// store.go

package imagehost

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shyam-international/exportsite/internal/config"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/metrics"
)

// Asset identifies a hosted image. ID is the handle passed back to Delete.
type Asset struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

type Upload struct {
	Filename    string
	ContentType string
	Ext         string
	Data        []byte
	Folder      string
}

type Store interface {
	Upload(ctx context.Context, u *Upload) (*Asset, error)
	Delete(ctx context.Context, id string) error
}

func New(ctx context.Context, cfg config.ImageConfig) (Store, error) {
	switch cfg.Driver {
	case config.ImageDriverS3:
		return NewS3Store(ctx, cfg)
	case config.ImageDriverLocal, "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicPath)
	default:
		return nil, fmt.Errorf("unknown image driver %q", cfg.Driver)
	}
}

func objectKey(folder, ext string) string {
	name := uuid.New().String() + strings.ToLower(ext)
	if folder == "" {
		return name
	}
	return path.Join(strings.Trim(folder, "/"), name)
}

// Instrumented applies the per-operation timeout, records metrics and marks
// failures as upstream errors.
type Instrumented struct {
	store   Store
	timeout time.Duration
	folder  string
	logger  *slog.Logger
}

func NewInstrumented(
	store Store,
	cfg config.ImageConfig,
	logger *slog.Logger,
) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Instrumented{
		store:   store,
		timeout: timeout,
		folder:  cfg.Folder,
		logger:  logger,
	}
}

func (s *Instrumented) Upload(ctx context.Context, u *Upload) (*Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := core.StartSpan(ctx, "imagehost.upload")
	if u.Folder == "" {
		u.Folder = s.folder
	} else if s.folder != "" {
		u.Folder = path.Join(s.folder, u.Folder)
	}

	asset, err := s.store.Upload(ctx, u)
	core.EndSpan(span, err)
	metrics.ImageUploads.WithLabelValues("upload", outcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("upload image: %w: %w", core.ErrUpstream, err)
	}

	s.logger.Debug("image uploaded", "id", asset.ID, "bytes", len(u.Data))
	return asset, nil
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.Delete(ctx, id)
	metrics.ImageUploads.WithLabelValues("delete", outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("delete image %s: %w: %w", id, core.ErrUpstream, err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
