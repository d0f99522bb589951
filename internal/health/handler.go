// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shyam-international/exportsite/internal/core"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	checks   []namedChecker
	name     string
	version  string
	started  time.Time
	now      func() time.Time
	ready    atomic.Bool
	shutdown atomic.Bool
}

type namedChecker struct {
	name    string
	checker Checker
}

type HandlerConfig struct {
	DB      Checker
	Redis   Checker
	Name    string
	Version string
	Started time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Started.IsZero() {
		cfg.Started = time.Now()
	}
	h := &Handler{
		checks: []namedChecker{
			{name: "database", checker: cfg.DB},
			{name: "redis", checker: cfg.Redis},
		},
		name:    cfg.Name,
		version: cfg.Version,
		started: cfg.Started,
		now:     time.Now,
	}
	h.ready.Store(true)
	return h
}

// RegisterRoutes mounts the probes at the root of r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Banner)
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// RegisterAPIRoutes mounts the public health summary under the API prefix.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/health", h.Summary)
}

func (h *Handler) Banner(w http.ResponseWriter, _ *http.Request) {
	core.JSON(w, http.StatusOK, BannerResponse{
		Message: h.name,
		Version: h.version,
		Status:  "Active",
	})
}

func (h *Handler) Summary(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	h.writeStatus(w, http.StatusOK, SummaryResponse{
		Status:    "OK",
		Timestamp: now.UTC(),
		Uptime:    int64(now.Sub(h.started).Seconds()),
	})
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	h.writeStatus(w, http.StatusOK, StatusResponse{
		Status: "ok",
	})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.runHealthChecks(ctx)

	status := "ok"
	statusCode := http.StatusOK
	for _, check := range checks {
		if !check.Healthy {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	h.writeStatus(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *Handler) runHealthChecks(ctx context.Context) []HealthCheck {
	var wg sync.WaitGroup
	checks := make([]HealthCheck, len(h.checks))

	for i, nc := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checks[i] = check(ctx, nc)
		}()
	}

	wg.Wait()
	return checks
}

func check(ctx context.Context, nc namedChecker) HealthCheck {
	result := HealthCheck{
		Name:    nc.name,
		Healthy: true,
	}

	if nc.checker == nil {
		result.Healthy = false
		result.Message = nc.name + " checker not configured"
		return result
	}

	start := time.Now()
	err := nc.checker.Ping(ctx)
	result.Latency = time.Since(start).String()

	if err != nil {
		result.Healthy = false
		result.Message = "ping failed"
	}

	return result
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, status, data)
}

type BannerResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type SummaryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int64     `json:"uptime"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
