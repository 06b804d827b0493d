package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work across processes.
// The runner takes it around each dispatch so replicas sharing one event
// queue still process events one at a time.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx ends.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
