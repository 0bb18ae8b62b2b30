package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseKey(t *testing.T) {
	assert.Equal(t, "lock:assignment:branch:12", leaseKey(12))
}

func TestNoLease(t *testing.T) {
	release, err := NoLease{}.Acquire(context.Background(), 1)
	require.NoError(t, err)
	release()
}

func TestRedisLease_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, err := NewRedisLease(client, time.Second, 0).Acquire(context.Background(), 1)
	assert.Error(t, err)
}
