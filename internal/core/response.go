// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"
)

var exposeErrorDetail atomic.Bool

// SetErrorDetail controls whether 500 responses carry the error text and a
// stack trace. Enabled outside production only.
func SetErrorDetail(enabled bool) {
	exposeErrorDetail.Store(enabled)
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Paginated(
	w http.ResponseWriter,
	key string,
	items any,
	pagination Pagination,
) {
	OK(w, map[string]any{
		key:          items,
		"pagination": pagination,
	})
}

func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		InternalServerError(w, err)
		return
	}

	body := make(map[string]any, len(appErr.Fields)+3)
	for k, v := range appErr.Fields {
		body[k] = v
	}
	body["success"] = false
	body["message"] = appErr.Message
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}

	JSON(w, appErr.StatusCode, body)
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, BadRequestError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)

	body := map[string]any{
		"success": false,
		"message": "Internal server error",
	}
	if exposeErrorDetail.Load() && err != nil {
		body["error"] = err.Error()
		body["stack"] = string(debug.Stack())
	}

	JSON(w, http.StatusInternalServerError, body)
}
