// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/shyam-international/exportsite/internal/core"
)

const (
	defaultLimitMessage = "Too many requests, please try again later."

	localBucketCapacity = 10_000
	localBucketTTL      = 30 * time.Minute
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	Scope   string
	Message string
	KeyFunc func(*http.Request) string
	// FailOpen lets requests through when neither Redis nor the local
	// bucket can decide.
	FailOpen bool
	Skip     func(*http.Request) bool
	Logger   *slog.Logger
}

// RateLimiter enforces a per-key allowance shared through Redis. When Redis
// is absent or erroring, each process falls back to its own token buckets.
type RateLimiter struct {
	redis  *redis_rate.Limiter
	local  *localBuckets
	cfg    RateLimitConfig
	prefix string
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Message == "" {
		cfg.Message = defaultLimitMessage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	prefix := "ratelimit:"
	if cfg.Scope != "" {
		prefix += cfg.Scope + ":"
	}

	rl := &RateLimiter{
		local:  newLocalBuckets(cfg.Limit),
		cfg:    cfg,
		prefix: prefix,
	}
	if rdb != nil {
		rl.redis = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.cfg.Skip != nil && rl.cfg.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.prefix + rl.cfg.KeyFunc(r)
		res, err := rl.decide(r.Context(), key)
		if err != nil {
			if !rl.cfg.FailOpen {
				core.JSON(w, http.StatusServiceUnavailable, core.Response{
					Message: "Service unavailable",
				})
				return
			}
			rl.cfg.Logger.WarnContext(r.Context(), "rate limiter undecided, allowing request",
				"scope", rl.cfg.Scope, "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		writeLimitHeaders(w.Header(), res)
		if res.Allowed == 0 {
			rejectLimited(w, res, rl.cfg.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) decide(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.redis != nil {
		res, err := rl.redis.Allow(ctx, key, rl.cfg.Limit)
		if err == nil {
			return res, nil
		}
		rl.cfg.Logger.DebugContext(ctx, "redis rate limit failed, using local bucket",
			"scope", rl.cfg.Scope, "error", err)
	}
	return rl.local.allow(key)
}

func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

func writeLimitHeaders(h http.Header, res *redis_rate.Result) {
	limit := res.Limit
	resetSecs := int(res.ResetAfter.Seconds())

	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("RateLimit-Reset", strconv.Itoa(resetSecs))
}

func rejectLimited(w http.ResponseWriter, res *redis_rate.Result, message string) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	core.JSONError(w, core.NewAppError(
		nil,
		message,
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	).With("retryAfter", retryAfter))
}

// localBuckets holds one token bucket per key. Idle keys expire out of
// the LRU, so memory stays bounded without a sweeper goroutine.
type localBuckets struct {
	mu      sync.Mutex
	limit   redis_rate.Limit
	every   time.Duration
	buckets *expirable.LRU[string, *rate.Limiter]
}

func newLocalBuckets(limit redis_rate.Limit) *localBuckets {
	every := time.Second
	if limit.Rate > 0 {
		every = limit.Period / time.Duration(limit.Rate)
	}
	return &localBuckets{
		limit:   limit,
		every:   every,
		buckets: expirable.NewLRU[string, *rate.Limiter](localBucketCapacity, nil, localBucketTTL),
	}
}

func (l *localBuckets) allow(key string) (*redis_rate.Result, error) {
	if l.limit.Rate <= 0 {
		return nil, fmt.Errorf("rate limit for %q has no allowance", key)
	}

	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(rate.Every(l.every), l.limit.Burst)
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	now := time.Now()
	res := &redis_rate.Result{Limit: l.limit, RetryAfter: -1}

	if bucket.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = l.every
	}

	tokens := bucket.TokensAt(now)
	res.Remaining = max(int(tokens), 0)
	res.ResetAfter = time.Duration((float64(l.limit.Burst) - tokens) * float64(l.every))

	return res, nil
}

// PerWindow allows rate requests per window with the whole allowance
// available as burst, the shape of a fixed-window limit.
func PerWindow(rate int, window time.Duration) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: rate, Period: window}
}

// PerWindowBurst spreads rate requests across window while allowing up to
// burst at once.
func PerWindowBurst(rate, burst int, window time.Duration) redis_rate.Limit {
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: window}
}
