package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/AppFriend/DrGolly-sub001/pkg/redisclient"
)

// Lock is a best-effort run lease on redis (SET NX with TTL). The TTL bounds
// how long a crashed holder can block the next run.
type Lock struct {
	*redisclient.RedisClient
	token string
}

func New(rc *redisclient.RedisClient, token string) *Lock {
	return &Lock{rc, token}
}

func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.Client.SetNX(ctx, key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("Lock - Acquire - l.Client.SetNX: %w", err)
	}

	return ok, nil
}

// Release deletes the key only if this instance still holds it.
func (l *Lock) Release(ctx context.Context, key string) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

	err := l.Client.Eval(ctx, script, []string{key}, l.token).Err()
	if err != nil {
		return fmt.Errorf("Lock - Release - l.Client.Eval: %w", err)
	}

	return nil
}
