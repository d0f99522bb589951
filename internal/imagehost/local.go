// AngelaMos | 2026
// local.go

package imagehost

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images on disk and serves them under publicPath.
type LocalStore struct {
	root       string
	publicPath string
}

func NewLocalStore(root, publicPath string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("imagehost/local: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("imagehost/local: create root: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	return &LocalStore{
		root:       abs,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, u *Upload) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := objectKey(u.Folder, u.Ext)
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return nil, fmt.Errorf("imagehost/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, u.Data, 0o640); err != nil {
		return nil, fmt.Errorf("imagehost/local: write %s: %w", key, err)
	}

	return &Asset{URL: s.publicPath + "/" + key, ID: key}, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(id)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("imagehost/local: delete %s: %w", id, err)
	}
	return nil
}

// FileServer serves stored images. Mount it at the public path.
func (s *LocalStore) FileServer() http.Handler {
	return http.StripPrefix(s.publicPath, http.FileServer(http.Dir(s.root)))
}

func (s *LocalStore) PublicPath() string {
	return s.publicPath
}

func (s *LocalStore) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("imagehost/local: invalid key %q", key)
	}
	return full, nil
}
