// AngelaMos | 2026
// handler.go

package banner

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/imagehost"
)

const defaultListLimit = 50

type Handler struct {
	service   *Service
	maxUpload int64
}

func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{service: service, maxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/banners", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{bannerID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminLimit)
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Post("/", h.Create)
			r.Put("/{bannerID}", h.Update)
			r.Delete("/{bannerID}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := h.service.List(r.Context(), core.PageFromRequest(r, defaultListLimit))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "banners", items, pagination)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bannerID")
	if !core.CheckID(w, id, "banner") {
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, b)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readImage(w, r)
	if !ok {
		return
	}

	b, err := h.service.Create(r.Context(), upload)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, "Banner created successfully", b)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bannerID")
	if !core.CheckID(w, id, "banner") {
		return
	}

	upload, ok := h.readImage(w, r)
	if !ok {
		return
	}

	b, err := h.service.Update(r.Context(), id, upload)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "Banner updated successfully", b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bannerID")
	if !core.CheckID(w, id, "banner") {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "Banner deleted successfully", nil)
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (*imagehost.Upload, bool) {
	if err := imagehost.ParseForm(w, r, h.maxUpload); err != nil {
		core.JSONError(w, imagehost.UploadError(err))
		return nil, false
	}

	upload, err := imagehost.FromRequest(r, imagehost.FieldImage, h.maxUpload)
	if err != nil {
		core.JSONError(w, imagehost.UploadError(err))
		return nil, false
	}

	return upload, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrImageRequired):
		core.JSONError(w, core.BadRequestError(
			`Banner image is required. Make sure to send the file with field name "image"`,
		))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "banner")
	case errors.Is(err, core.ErrUpstream):
		core.JSONError(w, core.UpstreamError("Image upload failed", err))
	default:
		core.InternalServerError(w, err)
	}
}
