package config

// Redis backs the public page cache and the rate limiter on the account
// endpoints.  Both degrade to pass-through middleware when no client is
// available, so a failed connection at startup is not fatal.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from the environment:
//   - REDIS_ADDR – host:port (default localhost:6379)
//   - REDIS_HOST and REDIS_PORT – take precedence over REDIS_ADDR when both set
//   - REDIS_PASSWORD – optional password
//   - REDIS_DB – database number (default 0)
//   - REDIS_TLS – enable TLS when "true" or "1"
func RedisOptions() *redis.Options {
	addr := getenv("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	dbNum := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		dbNum = n
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	}
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient connects with RedisOptions and pings the server with a
// short timeout.  It returns nil when the server cannot be reached.
func NewRedisClient(ctx context.Context) *redis.Client {
	client := redis.NewClient(RedisOptions())
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
