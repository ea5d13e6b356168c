package leader

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"sync"
	"time"

	"go.uber.org/zap"
)

const leaderLockKey = "oppdrag:scheduler:leader"

type leaderService struct {
	locker contracts.LockerService
	log    *zap.Logger
	ttl    time.Duration

	mu        sync.Mutex
	lockValue string
}

// NewLeaderService elects at most one leader per fleet through the shared
// lock. The holder keeps leadership by refreshing the lock TTL on every
// IsLeader call; when the refresh fails the instance demotes itself and
// competes again on the next call.
func NewLeaderService(locker contracts.LockerService, logger *zap.Logger, ttl time.Duration) contracts.LeaderElector {
	return &leaderService{
		locker: locker,
		log:    logger,
		ttl:    ttl,
	}
}

func (s *leaderService) IsLeader(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lockValue != "" {
		if err := s.locker.Refresh(ctx, leaderLockKey, s.lockValue, s.ttl); err == nil {
			return true
		}
		s.log.Warn("leaderService.IsLeader lost leadership, rejoining election")
		s.lockValue = ""
	}

	acquired, lockValue, err := s.locker.TryLock(ctx, leaderLockKey, s.ttl)
	if err != nil {
		s.log.Error("leaderService.IsLeader lock attempt failed", zap.Error(err))
		return false
	}
	if !acquired {
		return false
	}

	s.log.Info("leaderService.IsLeader acquired leadership")
	s.lockValue = lockValue
	return true
}
