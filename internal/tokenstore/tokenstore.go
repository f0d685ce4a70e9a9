// Package tokenstore keeps the ids of tokens revoked at logout until
// they would have expired anyway.
package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Noop is used when no Redis address is configured. Logout then only
// clears the cookie.
type Noop struct{}

func (Noop) Revoke(context.Context, string, time.Time) error { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func key(tokenID string) string {
	return fmt.Sprintf("auth:revoked:%s", tokenID)
}

func (r *Redis) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}

// Open returns a Redis revoker when addr is set and Noop otherwise.
func Open(ctx context.Context, addr, password string, db int) (Revoker, func() error, error) {
	if addr == "" {
		return Noop{}, func() error { return nil }, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(rdb), rdb.Close, nil
}

var (
	_ Revoker = Noop{}
	_ Revoker = (*Redis)(nil)
)
