// AngelaMos | 2026
// handler.go

package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/imagehost"
)

const defaultListLimit = 12

type Handler struct {
	service   *Service
	validator *validator.Validate
	maxUpload int64
}

func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
		maxUpload: maxUpload,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/{productID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminLimit)
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Post("/", h.Create)
			r.Put("/{productID}", h.Update)
			r.Delete("/{productID}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, pagination, err := h.service.List(
		r.Context(),
		core.PageFromRequest(r, defaultListLimit),
		q.Get("search"),
		q.Get("category"),
		core.SortDirection(r),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "products", items, pagination)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"categories": cats})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if !core.CheckID(w, id, "product") {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, upload, ok := h.readInput(w, r)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), in, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, "Product created successfully", p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if !core.CheckID(w, id, "product") {
		return
	}

	in, upload, ok := h.readInput(w, r)
	if !ok {
		return
	}

	p, err := h.service.Update(r.Context(), id, in, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "Product updated successfully", p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	if !core.CheckID(w, id, "product") {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "Product deleted successfully", nil)
}

// readInput accepts multipart/form-data (with an optional "image" part) or
// a JSON body.
func (h *Handler) readInput(
	w http.ResponseWriter,
	r *http.Request,
) (Input, *imagehost.Upload, bool) {
	var in Input

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := imagehost.ParseForm(w, r, h.maxUpload); err != nil {
			core.JSONError(w, imagehost.UploadError(err))
			return in, nil, false
		}
		in = Input{
			Name:        formValue(r, "name"),
			Code:        formValue(r, "code"),
			Description: formValue(r, "description"),
			Category:    formValue(r, "category"),
		}
	} else if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			core.BadRequest(w, "Invalid request body")
			return in, nil, false
		}
	}

	if err := h.validator.Struct(in); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return in, nil, false
	}

	upload, err := imagehost.FromRequest(r, imagehost.FieldImage, h.maxUpload)
	if err != nil {
		core.JSONError(w, imagehost.UploadError(err))
		return in, nil, false
	}

	return in, upload, true
}

func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "product")
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrUpstream):
		core.JSONError(w, core.UpstreamError("Image upload failed", err))
	default:
		core.InternalServerError(w, err)
	}
}
