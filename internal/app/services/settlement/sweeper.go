package settlement

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// Sweeper re-dispatches instructions that fell into the gap between persist
// and publish: persisted with status SENT but never confirmed on the
// outbound queue, or dispatched long ago without any kvittering arriving.
// The external system deduplicates on vedtakId, so a re-dispatch of an
// oppdrag that did arrive is harmless.
type Sweeper struct {
	log              *zap.Logger
	leader           contracts.LeaderElector
	instructionRepo  contracts.InstructionRepository
	dispatcher       contracts.DispatcherService
	interval         time.Duration
	dispatchRetryAge time.Duration
	unconfirmedAge   time.Duration
	stop             chan struct{}
}

func NewSweeper(
	logger *zap.Logger,
	leader contracts.LeaderElector,
	instructionRepo contracts.InstructionRepository,
	dispatcher contracts.DispatcherService,
	interval, dispatchRetryAge, unconfirmedAge time.Duration,
) *Sweeper {
	return &Sweeper{
		log:              logger,
		leader:           leader,
		instructionRepo:  instructionRepo,
		dispatcher:       dispatcher,
		interval:         interval,
		dispatchRetryAge: dispatchRetryAge,
		unconfirmedAge:   unconfirmedAge,
		stop:             make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (s *Sweeper) Start(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-s.stop:
				ticker.Stop()
				return
			case now := <-ticker.C:
				s.runOnce(ctx, now)
			}
		}
	}()

	return func() {
		close(s.stop)
	}
}

func (s *Sweeper) runOnce(ctx context.Context, now time.Time) {
	if !s.leader.IsLeader(ctx) {
		return
	}

	stuck, err := s.instructionRepo.FindStuckInstructions(ctx,
		now.Add(-s.dispatchRetryAge),
		now.Add(-s.unconfirmedAge),
	)
	if err != nil {
		s.log.Error("sweeper.runOnce failed to query stuck instructions", zap.Error(err))
		return
	}
	if len(stuck) == 0 {
		return
	}

	s.log.Info("sweeper.runOnce re-dispatching stuck instructions",
		zap.Int(constvars.LoggingRecordCountKey, len(stuck)),
	)

	for i := range stuck {
		instruction := &stuck[i]
		if err := s.dispatcher.Dispatch(ctx, instruction); err != nil {
			s.log.Error("sweeper.runOnce re-dispatch failed",
				zap.String(constvars.LoggingVedtakIDKey, instruction.VedtakID),
				zap.Error(err),
			)
			continue
		}
		if err := s.instructionRepo.MarkDispatched(ctx, instruction.VedtakID, now); err != nil {
			s.log.Warn("sweeper.runOnce failed to record dispatch time",
				zap.String(constvars.LoggingVedtakIDKey, instruction.VedtakID),
				zap.Error(err),
			)
		}
	}
}
