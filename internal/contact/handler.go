// AngelaMos | 2026
// handler.go

package contact

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/metrics"
	"github.com/shyam-international/exportsite/internal/middleware"
)

const defaultListLimit = 10

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly, submitLimit, testLimit, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/contact", func(r chi.Router) {
		r.With(submitLimit).Post("/submit", h.Submit)

		r.Group(func(r chi.Router) {
			r.Use(adminLimit)
			r.Use(authenticator)
			r.Use(adminOnly)

			r.With(testLimit).Post("/test-email", h.SendTest)
			r.Get("/submissions", h.List)
			r.Get("/admin/stats", h.Stats)
			r.Get("/{contactID}", h.Get)
			r.Patch("/{contactID}/status", h.UpdateStatus)
			r.Delete("/{contactID}", h.Delete)
			r.Post("/{contactID}/resend-emails", h.Resend)
		})
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !core.Bind(w, r, h.validator, &req) {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return
	}

	receipt, err := h.service.Submit(r.Context(), req, ClientMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		var dup *DuplicateSubmissionError
		if errors.As(err, &dup) {
			core.JSONError(w, core.NewAppError(
				err,
				"Please wait before submitting another form.",
				http.StatusTooManyRequests,
				"",
			).With("lastSubmission", dup.LastSubmission))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, "Thank you for your message!", receipt)
}

func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	report := h.service.SendTest(r.Context())

	message := "Test emails sent!"
	if !report.Success() {
		message = "Some emails failed"
	}

	core.JSON(w, http.StatusOK, ReportResponse{
		Success: report.Success(),
		Message: message,
		Details: report,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, pagination, err := h.service.List(
		r.Context(),
		core.PageFromRequest(r, defaultListLimit),
		q.Get("status"),
		q.Get("search"),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "contacts", items, pagination)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")
	if !core.CheckID(w, id, "contact") {
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")
	if !core.CheckID(w, id, "contact") {
		return
	}

	var req UpdateStatusRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "Status updated successfully", resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")
	if !core.CheckID(w, id, "contact") {
		return
	}

	resp, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "Contact deleted successfully", resp)
}

func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "contactID")
	if !core.CheckID(w, id, "contact") {
		return
	}

	report, err := h.service.Resend(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "contact")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	message := "Emails resent successfully!"
	if !report.Success() {
		message = "Failed to resend emails"
	}

	core.JSON(w, http.StatusOK, ReportResponse{
		Success: report.Success(),
		Message: message,
		Data:    report,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}
