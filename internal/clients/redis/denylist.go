package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

// TokenDenylist revokes access tokens ahead of their JWT expiry.
// Logout writes the token here; the auth middleware checks membership
// before trusting an otherwise valid signature.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Close() error
}

type tokenDenylist struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewTokenDenylist(log *logger.Logger) (TokenDenylist, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_DENYLIST_PREFIX"))
	if prefix == "" {
		prefix = "denylist"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &tokenDenylist{
		log:    log.With("service", "RedisTokenDenylist"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (d *tokenDenylist) key(token string) string {
	return d.prefix + ":" + token
}

func (d *tokenDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if d == nil || d.rdb == nil {
		return fmt.Errorf("token denylist not initialized")
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if ttl <= 0 {
		// Already expired, nothing to deny.
		return nil
	}
	return d.rdb.Set(ctx, d.key(token), "1", ttl).Err()
}

func (d *tokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if d == nil || d.rdb == nil {
		return false, fmt.Errorf("token denylist not initialized")
	}
	n, err := d.rdb.Exists(ctx, d.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *tokenDenylist) Close() error {
	if d == nil || d.rdb == nil {
		return nil
	}
	return d.rdb.Close()
}
