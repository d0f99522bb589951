// AngelaMos | 2026
// handler.go

package feedback

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

const defaultListLimit = 10

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly, submitLimit, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/feedback", func(r chi.Router) {
		r.With(submitLimit).Post("/", h.Submit)
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(adminLimit)
			r.Use(authenticator)
			r.Use(adminOnly)

			r.Get("/", h.List)
			r.Get("/stats", h.Stats)
			r.Get("/{feedbackID}", h.Get)
			r.Delete("/{feedbackID}", h.Delete)
		})
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	receipt, err := h.service.Submit(r.Context(), req, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, "Feedback submitted successfully", receipt)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, pagination, err := h.service.List(
		r.Context(),
		core.PageFromRequest(r, defaultListLimit),
		core.SortDirection(r),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "feedback", items, pagination)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "feedbackID")
	if !core.CheckID(w, id, "feedback") {
		return
	}

	f, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "feedback")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, f)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "feedbackID")
	if !core.CheckID(w, id, "feedback") {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "feedback")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "Feedback deleted successfully", map[string]any{
		"id":        id,
		"deletedAt": time.Now().UTC(),
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"overview":  overview,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	core.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "OK",
		"service":   "Feedback API",
		"timestamp": time.Now().UTC(),
	})
}
