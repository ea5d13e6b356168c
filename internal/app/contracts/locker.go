package contracts

import (
	"context"
	"time"
)

type LockerService interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
	// Refresh extends the TTL of a lock if owned by lockValue
	Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error
}

// LeaderElector answers the only question the scheduled jobs ask: may this
// instance run the job body right now. It is consulted immediately before
// every tick's work; non-leaders no-op.
type LeaderElector interface {
	IsLeader(ctx context.Context) bool
}
