// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

const defaultListLimit = 20

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

// RegisterAdminRoutes registers admin-only user management endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(adminLimit)
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{userID}", h.GetUser)
		r.Patch("/{userID}/activate", h.ActivateUser)
		r.Patch("/{userID}/deactivate", h.DeactivateUser)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, pagination, err := h.service.List(
		r.Context(),
		core.PageFromRequest(r, defaultListLimit),
		q.Get("search"),
		q.Get("role"),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, "users", ToUserResponseList(users, time.Now()), pagination)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !core.Bind(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, "User created successfully", ToUserResponse(u, time.Now()))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !core.CheckID(w, id, "user") {
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u, time.Now()))
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !core.CheckID(w, id, "user") {
		return
	}

	u, err := h.service.Activate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "User activated successfully", ToUserResponse(u, time.Now()))
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !core.CheckID(w, id, "user") {
		return
	}

	u, err := h.service.Deactivate(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "User deactivated successfully", ToUserResponse(u, time.Now()))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if !core.CheckID(w, id, "user") {
		return
	}

	u, err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OKMessage(w, "User deleted successfully", map[string]any{
		"id":       u.ID,
		"username": u.Username,
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case core.IsAppError(err):
		core.JSONError(w, err)
	default:
		core.InternalServerError(w, err)
	}
}
