// AngelaMos | 2026
// redis.go

package core

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shyam-international/exportsite/internal/config"
)

// Redis backs the token blacklist and the rate limiter.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

type RedisServerInfo struct {
	Version          string `json:"version"`
	UsedMemoryHuman  string `json:"usedMemoryHuman"`
	ConnectedClients string `json:"connectedClients"`
	Keys             int64  `json:"keys"`
	RevokedTokens    int64  `json:"revokedTokens"`
}

// ServerInfo reads the server section of INFO plus key counts. Revoked
// tokens are counted with SCAN so the call stays non-blocking.
func (r *Redis) ServerInfo(ctx context.Context) (*RedisServerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := r.Client.Info(ctx, "server", "memory", "clients").Result()
	if err != nil {
		return nil, fmt.Errorf("redis info: %w", err)
	}
	fields := parseInfo(raw)

	keys, err := r.Client.DBSize(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("redis dbsize: %w", err)
	}

	var revoked int64
	iter := r.Client.Scan(ctx, 0, "blacklist:*", 200).Iterator()
	for iter.Next(ctx) {
		revoked++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	return &RedisServerInfo{
		Version:          fields["redis_version"],
		UsedMemoryHuman:  fields["used_memory_human"],
		ConnectedClients: fields["connected_clients"],
		Keys:             keys,
		RevokedTokens:    revoked,
	}, nil
}

func parseInfo(raw string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			out[k] = v
		}
	}
	return out
}
