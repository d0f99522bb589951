// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/shyam-international/exportsite/internal/contact"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/feedback"
	"github.com/shyam-international/exportsite/internal/middleware"
	"github.com/shyam-international/exportsite/internal/user"
)

type UserCounter interface {
	Counts(ctx context.Context) (*user.Counts, error)
}

type ContactCounter interface {
	Count(ctx context.Context) (total, fresh int, err error)
	Stats(ctx context.Context) (*contact.Stats, error)
}

type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

type FeedbackCounter interface {
	Overview(ctx context.Context) (*feedback.Overview, error)
}

type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisInfo  func(ctx context.Context) (*core.RedisServerInfo, error)
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	users      UserCounter
	contacts   ContactCounter
	products   ProductCounter
	feedback   FeedbackCounter
	started    time.Time
	now        func() time.Time
	logger     *slog.Logger
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisInfo  func(ctx context.Context) (*core.RedisServerInfo, error)
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	Users      UserCounter
	Contacts   ContactCounter
	Products   ProductCounter
	Feedback   FeedbackCounter
	Started    time.Time
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Started.IsZero() {
		cfg.Started = time.Now()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisInfo:  cfg.RedisInfo,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		users:      cfg.Users,
		contacts:   cfg.Contacts,
		products:   cfg.Products,
		feedback:   cfg.Feedback,
		started:    cfg.Started,
		now:        time.Now,
		logger:     cfg.Logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly, adminLimit func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminLimit)
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/health", h.GetHealth)
		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
	})
}

// GetDashboard gathers the headline counts concurrently; any failing
// count fails the whole response.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		resp   DashboardResponse
		g, ctx = errgroup.WithContext(r.Context())
	)

	g.Go(func() error {
		c, err := h.users.Counts(ctx)
		if err != nil {
			return err
		}
		resp.Users = UserTotals{Total: c.Total, Active: c.Active}
		return nil
	})
	g.Go(func() error {
		total, fresh, err := h.contacts.Count(ctx)
		if err != nil {
			return err
		}
		resp.Contacts = ContactTotals{Total: total, New: fresh}
		return nil
	})
	g.Go(func() error {
		total, err := h.products.Count(ctx)
		if err != nil {
			return err
		}
		resp.Products = Total{Total: total}
		return nil
	})
	g.Go(func() error {
		o, err := h.feedback.Overview(ctx)
		if err != nil {
			return err
		}
		resp.Feedback = Total{Total: o.Total}
		return nil
	})

	if err := g.Wait(); err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp.SystemInfo = h.systemInfo()
	core.OK(w, resp)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Admin service healthy",
		"timestamp": h.now().UTC(),
		"user": map[string]string{
			"id":   middleware.GetUserID(r.Context()),
			"role": middleware.GetUserRole(r.Context()),
		},
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		resp    SystemStatsResponse
		g, gctx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		c, err := h.users.Counts(gctx)
		if err != nil {
			return err
		}
		resp.Users = c.ByRole
		return nil
	})
	g.Go(func() error {
		s, err := h.contacts.Stats(gctx)
		if err != nil {
			return err
		}
		resp.Contacts = s.ByStatus
		return nil
	})

	if err := g.Wait(); err != nil {
		core.InternalServerError(w, err)
		return
	}

	resp.System = h.systemInfo()
	resp.Database = DatabaseStatus{
		Healthy: ping(ctx, h.dbPing),
		Stats:   h.getDBStats(),
	}
	resp.Redis = RedisStatus{
		Healthy: ping(ctx, h.redisPing),
		Stats:   h.getRedisStats(),
	}
	resp.Runtime = runtimeStats()

	core.OK(w, resp)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	resp := RedisStatsResponse{Pool: h.getRedisStats()}

	if h.redisInfo != nil {
		info, err := h.redisInfo(r.Context())
		if err != nil {
			h.logger.WarnContext(r.Context(), "redis server info unavailable", "error", err)
		} else {
			resp.Server = info
		}
	}

	core.OK(w, resp)
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, runtimeStats())
}

func (h *Handler) systemInfo() SystemInfo {
	return SystemInfo{
		Uptime:    int64(h.now().Sub(h.started).Seconds()),
		Timestamp: h.now().UTC(),
	}
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func ping(ctx context.Context, fn func(context.Context) error) bool {
	if fn == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return fn(ctx) == nil
}

func runtimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		HeapInuse:    memStats.HeapInuse,
		NumGC:        memStats.NumGC,
	}
}
