// AngelaMos | 2026
// product_test.go

package product

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/imagehost"
)

type memoryRepo struct {
	mu         sync.Mutex
	products   map[string]*Product
	failUpdate error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]*Product)}
}

func (m *memoryRepo) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepo) ExistsByCode(_ context.Context, code, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Code == code && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) List(_ context.Context, params ListParams) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.products {
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	delete(m.products, id)
	return p, nil
}

func (m *memoryRepo) Categories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range m.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (m *memoryRepo) Count(context.Context) (int, error) {
	return len(m.products), nil
}

type memoryStore struct {
	mu         sync.Mutex
	assets     map[string]bool
	deleted    []string
	next       int
	failUpload bool
	failDelete bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{assets: make(map[string]bool)}
}

func (s *memoryStore) Upload(_ context.Context, u *imagehost.Upload) (*imagehost.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload {
		return nil, fmt.Errorf("upload image: %w", core.ErrUpstream)
	}
	s.next++
	id := fmt.Sprintf("%s/img-%d%s", u.Folder, s.next, u.Ext)
	s.assets[id] = true
	return &imagehost.Asset{URL: "https://cdn.example.com/" + id, ID: id}, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("host unreachable")
	}
	delete(s.assets, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memoryStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets[id]
}

func pngUpload(t *testing.T, w, h int) *imagehost.Upload {
	t.Helper()
	return &imagehost.Upload{Filename: "p.png", ContentType: "image/png", Ext: ".png", Data: pngBytes(t, w, h)}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func str(s string) *string { return &s }

func seeded(t *testing.T) (*Service, *memoryRepo, *memoryStore, *Product) {
	t.Helper()
	repo := newMemoryRepo()
	store := newMemoryStore()
	svc := NewService(repo, store, nil)

	p, err := svc.Create(context.Background(), Input{
		Name:     str("Basmati Rice"),
		Code:     str(" br-1121 "),
		Category: str("Rice"),
	}, pngUpload(t, 40, 30))
	require.NoError(t, err)
	return svc, repo, store, p
}

func TestCreateNormalizesCode(t *testing.T) {
	_, _, store, p := seeded(t)

	assert.Equal(t, "BR-1121", p.Code)
	assert.True(t, store.has(p.ImageID))
	assert.True(t, strings.HasPrefix(p.ImageID, "products/"))
}

func TestCreateValidation(t *testing.T) {
	svc, _, store, _ := seeded(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: str("X")}, pngUpload(t, 4, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name and code are required")

	_, err = svc.Create(ctx, Input{Name: str("X"), Code: str("   ")}, pngUpload(t, 4, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Product code cannot be empty or only whitespace")

	_, err = svc.Create(ctx, Input{Name: str("X"), Code: str("br-1121")}, pngUpload(t, 4, 4))
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)

	assert.Len(t, store.assets, 1, "rejected creates must not upload")
}

func TestUpdateReplacesImageAfterSave(t *testing.T) {
	svc, repo, store, p := seeded(t)
	oldID := p.ImageID

	updated, err := svc.Update(context.Background(), p.ID, Input{}, pngUpload(t, 10, 10))
	require.NoError(t, err)

	assert.NotEqual(t, oldID, updated.ImageID)
	assert.True(t, store.has(updated.ImageID))
	assert.False(t, store.has(oldID))

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, updated.ImageID, stored.ImageID)
}

func TestUpdateFailureKeepsOldImage(t *testing.T) {
	svc, repo, store, p := seeded(t)
	repo.failUpdate = errors.New("db down")

	_, err := svc.Update(context.Background(), p.ID, Input{Name: str("New")}, pngUpload(t, 10, 10))
	require.Error(t, err)

	assert.True(t, store.has(p.ImageID))
	assert.Len(t, store.assets, 1, "new upload discarded")

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "Basmati Rice", stored.Name)
}

func TestUpdateUploadFailureLeavesRecord(t *testing.T) {
	svc, repo, store, p := seeded(t)
	store.failUpload = true

	_, err := svc.Update(context.Background(), p.ID, Input{Name: str("New")}, pngUpload(t, 10, 10))
	require.ErrorIs(t, err, core.ErrUpstream)

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "Basmati Rice", stored.Name)
	assert.Equal(t, p.ImageID, stored.ImageID)
	assert.True(t, store.has(p.ImageID))
}

func TestDeleteToleratesImageHostFailure(t *testing.T) {
	svc, repo, store, p := seeded(t)
	store.failDelete = true

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	_, err := repo.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategories(t *testing.T) {
	svc, _, _, _ := seeded(t)
	ctx := context.Background()

	for _, in := range []Input{
		{Name: str("Turmeric"), Code: str("SP-1"), Category: str("Spices")},
		{Name: str("Sona"), Code: str("R-2"), Category: str("Rice")},
		{Name: str("Misc"), Code: str("M-1"), Category: str("  ")},
	} {
		_, err := svc.Create(ctx, in, nil)
		require.NoError(t, err)
	}

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Rice", "Spices"}, cats)
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, 0).RegisterRoutes(r, passthrough, passthrough, passthrough)
	return r
}

func TestCreateHandlerMultipart(t *testing.T) {
	repo := newMemoryRepo()
	store := newMemoryStore()
	router := newRouter(NewService(repo, store, nil))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Cumin"))
	require.NoError(t, mw.WriteField("code", "sp-9"))
	fw, err := mw.CreateFormFile("image", "cumin.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes(t, 1600, 1000))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SP-9", resp.Data.Code)
	assert.NotEmpty(t, resp.Data.ImageURL)
}

func TestCreateHandlerRejectsNonImage(t *testing.T) {
	store := newMemoryStore()
	router := newRouter(NewService(newMemoryRepo(), store, nil))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Cumin"))
	require.NoError(t, mw.WriteField("code", "sp-9"))
	fw, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text, not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only image files are allowed")
	assert.Empty(t, store.assets)
}

func TestHandlerIDErrors(t *testing.T) {
	router := newRouter(NewService(newMemoryRepo(), newMemoryStore(), nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid product ID format")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/products/0b6f3f4e-7d0c-4d8f-9a52-8d1a1b2c3d4e", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found")
}

func TestCreateHandlerDuplicateJSON(t *testing.T) {
	svc, _, _, _ := seeded(t)
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"name":"Dup","code":"BR-1121"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product code already exists")
}
