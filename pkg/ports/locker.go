package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken with DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes read-reduce-save cycles on a selection
// when several viewer replicas share one SelectionStore.
type DistributedLocker interface {
	// Lock acquires the lock for key, usually a session ID. It blocks until
	// the lock is held, ctx is done, or the implementation gives up.
	// The lock expires after ttl if the holder never calls the UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
