// Package idempotency serializes issuance attempts per proposal so two
// concurrent requests cannot both enter the issuance transaction.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis takes short-lived locks via SET NX. The lock guards the window
// before the database transaction; the Converted check and the unique
// proposal constraint remain the durable guarantees.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "issuance:"}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire issuance lock: %w", err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("release issuance lock: %w", err)
	}
	return nil
}
