// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, loginLimit, verifyLimit func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(verifyLimit)
			r.Use(authenticator)
			r.Get("/verify", h.Verify)
			r.Post("/refresh", h.Refresh)
		})

		r.Get("/health", h.Health)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	core.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "Authentication required")
		return
	}

	active := true
	core.JSON(w, http.StatusOK, VerifyResponse{
		Success: true,
		User: UserResponse{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
			IsActive: &active,
		},
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.Refresh(r.Context(), claims)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.JSONError(w, core.ForbiddenError("Account deactivated"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.JSON(w, http.StatusOK, resp)
}

// Logout always succeeds. A valid bearer token is revoked until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.ExtractToken(r); token != "" {
		claims, err := h.service.VerifyAccessToken(r.Context(), token)
		if err == nil {
			if err := h.service.Logout(r.Context(), claims); err != nil {
				h.service.logger.Warn("logout revoke failed", "error", err)
			}
		}
	}

	core.OKMessage(w, "Logged out successfully", nil)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	core.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Auth service healthy",
		"timestamp": time.Now().UTC(),
	})
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		core.BadRequest(w, "Username and password required")
	case errors.Is(err, ErrInvalidCredentials):
		core.Unauthorized(w, "Invalid credentials")
	case errors.Is(err, ErrAccountLocked):
		core.JSONError(w, core.NewAppError(
			err,
			"Account temporarily locked. Please try again later.",
			http.StatusLocked,
			"ACCOUNT_LOCKED",
		))
	case errors.Is(err, ErrAccountInactive):
		core.JSONError(w, core.NewAppError(
			err,
			"Account deactivated",
			http.StatusForbidden,
			"ACCOUNT_INACTIVE",
		))
	case errors.Is(err, core.ErrServerMisconfigured):
		core.JSONError(w, core.ServerMisconfiguredError())
	default:
		core.InternalServerError(w, err)
	}
}
