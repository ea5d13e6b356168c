package contracts

import (
	"context"

	"oppdrag-service/internal/app/models"
)

type ReconciliationRepository interface {
	// CreateRun appends a run record. Runs are never mutated afterward.
	CreateRun(ctx context.Context, run *models.ReconciliationRun) error

	// FindLatestRun returns nil, nil when no run of the kind exists yet.
	FindLatestRun(ctx context.Context, kind models.ReconciliationKind) (*models.ReconciliationRun, error)

	FindRecentRuns(ctx context.Context, limit int64) ([]models.ReconciliationRun, error)
}

type ReconciliationUsecase interface {
	// RunInterfaceReconciliation proves the delta window since the last
	// interface run. The window starts exactly where the previous one
	// ended.
	RunInterfaceReconciliation(ctx context.Context) (*models.ReconciliationRun, error)

	// RunConsistencyReconciliation proves all still-active instructions as
	// of now, catching drift that correct deltas can still accumulate.
	RunConsistencyReconciliation(ctx context.Context) (*models.ReconciliationRun, error)
}
