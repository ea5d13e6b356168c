package contracts

import (
	"context"

	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/oppdragwire"
)

type UtbetalingUsecase interface {
	// Settle turns one decision into at most one payment instruction.
	// Redelivered decisions yield SettleOutcomeAlreadyExists without any
	// write or dispatch. The returned error is reserved for infrastructure
	// failures before anything was persisted.
	Settle(ctx context.Context, decision *events.DecisionEvent) (*models.SettleOutcome, error)
}

type DispatcherService interface {
	// Dispatch serializes the instruction and publishes it to the external
	// payment system's queue within a bounded timeout. A timeout is a
	// dispatch failure, never a success.
	Dispatch(ctx context.Context, instruction *models.PaymentInstruction) error
}

type KvitteringUsecase interface {
	// ApplyKvittering runs the confirmation state machine and returns the
	// status event to emit. Guard rejections (unknown vedtakId, instruction
	// not in SENT) are reported in the event, not as errors.
	ApplyKvittering(ctx context.Context, kvittering *oppdragwire.Kvittering) (*events.StatusEvent, error)
}
