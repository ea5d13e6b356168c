package reconciliation

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"time"

	"go.uber.org/zap"
)

// Worker drives both scheduled reconciliation jobs. Every tick first asks
// the leader elector whether this instance may run; non-leaders no-op so a
// fleet executes each run exactly once.
type Worker struct {
	log                 *zap.Logger
	leader              contracts.LeaderElector
	usecase             contracts.ReconciliationUsecase
	interfaceInterval   time.Duration
	consistencyInterval time.Duration
	stop                chan struct{}
}

func NewWorker(
	logger *zap.Logger,
	leader contracts.LeaderElector,
	usecase contracts.ReconciliationUsecase,
	interfaceInterval, consistencyInterval time.Duration,
) *Worker {
	return &Worker{
		log:                 logger,
		leader:              leader,
		usecase:             usecase,
		interfaceInterval:   interfaceInterval,
		consistencyInterval: consistencyInterval,
		stop:                make(chan struct{}),
	}
}

// Start begins both ticker loops. It returns a stop function to halt
// execution.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interfaceTicker := time.NewTicker(w.interfaceInterval)
	consistencyTicker := time.NewTicker(w.consistencyInterval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				interfaceTicker.Stop()
				consistencyTicker.Stop()
				return
			case <-w.stop:
				interfaceTicker.Stop()
				consistencyTicker.Stop()
				return
			case <-interfaceTicker.C:
				w.runInterface(ctx)
			case <-consistencyTicker.C:
				w.runConsistency(ctx)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *Worker) runInterface(ctx context.Context) {
	if !w.leader.IsLeader(ctx) {
		return
	}
	if _, err := w.usecase.RunInterfaceReconciliation(ctx); err != nil {
		// No run record was written; the next tick recomputes the window.
		w.log.Error("reconciliation.Worker interface run failed", zap.Error(err))
	}
}

func (w *Worker) runConsistency(ctx context.Context) {
	if !w.leader.IsLeader(ctx) {
		return
	}
	if _, err := w.usecase.RunConsistencyReconciliation(ctx); err != nil {
		w.log.Error("reconciliation.Worker consistency run failed", zap.Error(err))
	}
}
