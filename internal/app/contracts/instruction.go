package contracts

import (
	"context"
	"time"

	"oppdrag-service/internal/app/models"
)

type InstructionRepository interface {
	// CreateInstruction inserts a new instruction. A concurrent insert for
	// the same vedtakId fails with a conflict error (exceptions.IsConflict).
	CreateInstruction(ctx context.Context, instruction *models.PaymentInstruction) error

	// FindByVedtakID returns nil, nil when no instruction exists.
	FindByVedtakID(ctx context.Context, vedtakID string) (*models.PaymentInstruction, error)

	// FindExistingLineIDs returns the subset of lineIDs already stored.
	FindExistingLineIDs(ctx context.Context, lineIDs []string) ([]string, error)

	// MarkDispatched records the moment the outbound publish was confirmed.
	MarkDispatched(ctx context.Context, vedtakID string, dispatchedAt time.Time) error

	// ApplyConfirmation transitions the instruction out of SENT in one
	// conditional write. It reports false when the instruction was no
	// longer in SENT, leaving the record untouched.
	ApplyConfirmation(ctx context.Context, vedtakID string, newStatus models.InstructionStatus, confirmation *models.Confirmation) (bool, error)

	// FindStuckInstructions returns SENT instructions whose dispatch never
	// completed before createdBefore, or whose dispatch was confirmed
	// before unconfirmedBefore without a kvittering arriving since.
	FindStuckInstructions(ctx context.Context, createdBefore, unconfirmedBefore time.Time) ([]models.PaymentInstruction, error)

	// FindDispatchedBetween returns instructions dispatched in [fraOgMed, tilOgMed).
	FindDispatchedBetween(ctx context.Context, fraOgMed, tilOgMed time.Time) ([]models.PaymentInstruction, error)

	// FindActive returns instructions whose lines may still move money.
	FindActive(ctx context.Context) ([]models.PaymentInstruction, error)
}
