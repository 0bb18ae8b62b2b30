package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLeaseBusy = errors.New("assignment lease is held by another request")

// Lease serialises doctor assignment per branch.
type Lease interface {
	Acquire(ctx context.Context, branchID int64) (release func(), err error)
}

// NoLease is used when no Redis is configured; assignment stays best-effort.
type NoLease struct{}

func (NoLease) Acquire(context.Context, int64) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func NewRedisLease(client *redis.Client, ttl, wait time.Duration) *RedisLease {
	return &RedisLease{
		client: client,
		ttl:    ttl,
		wait:   wait,
		poll:   50 * time.Millisecond,
	}
}

// Acquire polls SETNX until the lease is taken, wait elapses or ctx is done.
func (l *RedisLease) Acquire(ctx context.Context, branchID int64) (func(), error) {
	key := leaseKey(branchID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func() {
				// The request context may already be cancelled.
				_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
			}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, ErrLeaseBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func leaseKey(branchID int64) string {
	return fmt.Sprintf("lock:assignment:branch:%d", branchID)
}
