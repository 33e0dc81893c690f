// Package cache holds the process-wide Redis client plus cache-aside helpers and key inventory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"studyhub/internal/middleware"
	"studyhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds failed commands into the redis error metric. redis.Nil is a miss, not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			observability.RedisErrors.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func countFailure(op string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(op).Inc()
	}
}

func parseOptions(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return opts, nil
}

// InitRedis connects to addr (a redis:// URL or host:port) and installs the client globally.
// When Redis is unreachable it returns nil and the cache, revocation and notification fan-out
// all degrade to no-ops.
func InitRedis(addr string) *redis.Client {
	opts, err := parseOptions(addr)
	if err == nil {
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			middleware.Logger.Info("Redis connected", slog.String("addr", opts.Addr))
			SetClient(rdb)
			return rdb
		}
		_ = rdb.Close()
	}

	middleware.Logger.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
	SetClient(nil)
	return nil
}

// SetClient installs rdb as the cache client. Passing nil disables caching.
func SetClient(rdb *redis.Client) {
	if rdb != nil {
		rdb.AddHook(errorCounter{})
	}
	client = rdb
}

// GetClient returns the installed client, or nil when running without Redis.
func GetClient() *redis.Client {
	return client
}
