package settlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeInstructionRepo struct {
	instructions map[string]*models.PaymentInstruction
	storedLines  map[string]bool

	createErr     error
	conflictOnce  bool
	markErr       error
	markedVedtak  []string
	createdVedtak []string
}

func newFakeInstructionRepo() *fakeInstructionRepo {
	return &fakeInstructionRepo{
		instructions: make(map[string]*models.PaymentInstruction),
		storedLines:  make(map[string]bool),
	}
}

func (f *fakeInstructionRepo) CreateInstruction(ctx context.Context, instruction *models.PaymentInstruction) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.conflictOnce {
		f.conflictOnce = false
		f.instructions[instruction.VedtakID] = &models.PaymentInstruction{
			VedtakID:     instruction.VedtakID,
			BehandlingID: "racing-behandling",
			Status:       models.InstructionStatusSent,
		}
		return exceptions.ErrMongoDBDuplicateKey(errors.New("E11000 duplicate key"))
	}
	if _, exists := f.instructions[instruction.VedtakID]; exists {
		return exceptions.ErrMongoDBDuplicateKey(errors.New("E11000 duplicate key"))
	}
	f.instructions[instruction.VedtakID] = instruction
	f.createdVedtak = append(f.createdVedtak, instruction.VedtakID)
	for _, line := range instruction.Lines {
		f.storedLines[line.LineID] = true
	}
	return nil
}

func (f *fakeInstructionRepo) FindByVedtakID(ctx context.Context, vedtakID string) (*models.PaymentInstruction, error) {
	return f.instructions[vedtakID], nil
}

func (f *fakeInstructionRepo) FindExistingLineIDs(ctx context.Context, lineIDs []string) ([]string, error) {
	var existing []string
	for _, id := range lineIDs {
		if f.storedLines[id] {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

func (f *fakeInstructionRepo) MarkDispatched(ctx context.Context, vedtakID string, dispatchedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedVedtak = append(f.markedVedtak, vedtakID)
	if instruction, ok := f.instructions[vedtakID]; ok {
		instruction.DispatchedAt = &dispatchedAt
	}
	return nil
}

func (f *fakeInstructionRepo) ApplyConfirmation(ctx context.Context, vedtakID string, newStatus models.InstructionStatus, confirmation *models.Confirmation) (bool, error) {
	instruction, ok := f.instructions[vedtakID]
	if !ok || instruction.Status != models.InstructionStatusSent {
		return false, nil
	}
	instruction.Status = newStatus
	instruction.Confirmation = confirmation
	return true, nil
}

func (f *fakeInstructionRepo) FindStuckInstructions(ctx context.Context, createdBefore, unconfirmedBefore time.Time) ([]models.PaymentInstruction, error) {
	var stuck []models.PaymentInstruction
	for _, instruction := range f.instructions {
		if instruction.Status != models.InstructionStatusSent {
			continue
		}
		if instruction.DispatchedAt == nil && instruction.CreatedAt.Before(createdBefore) {
			stuck = append(stuck, *instruction)
		}
	}
	return stuck, nil
}

func (f *fakeInstructionRepo) FindDispatchedBetween(ctx context.Context, fraOgMed, tilOgMed time.Time) ([]models.PaymentInstruction, error) {
	var found []models.PaymentInstruction
	for _, instruction := range f.instructions {
		if instruction.DispatchedAt == nil {
			continue
		}
		at := *instruction.DispatchedAt
		if !at.Before(fraOgMed) && at.Before(tilOgMed) {
			found = append(found, *instruction)
		}
	}
	return found, nil
}

func (f *fakeInstructionRepo) FindActive(ctx context.Context) ([]models.PaymentInstruction, error) {
	var active []models.PaymentInstruction
	for _, instruction := range f.instructions {
		switch instruction.Status {
		case models.InstructionStatusSent, models.InstructionStatusApproved, models.InstructionStatusApprovedWithWarning:
			active = append(active, *instruction)
		}
	}
	return active, nil
}

type fakeDispatcher struct {
	err        error
	dispatched []string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, instruction *models.PaymentInstruction) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, instruction.VedtakID)
	return nil
}

func decisionEvent(vedtakID string) *events.DecisionEvent {
	return &events.DecisionEvent{
		VedtakID:     vedtakID,
		SakID:        "sak-1",
		BehandlingID: fmt.Sprintf("behandling-%s", vedtakID),
		DecisionType: "GRANT",
		Lines: []events.DecisionLine{
			{
				LineID:              fmt.Sprintf("%s-L1", vedtakID),
				FraOgMed:            "2026-01",
				TilOgMed:            "2026-06",
				Beloep:              15000,
				Attestanter:         []string{"Z999999"},
				UtbetalingsFrekvens: "MND",
			},
		},
	}
}

func TestUtbetalingUsecaseSettle(t *testing.T) {
	ctx := context.Background()

	t.Run("First Decision Dispatches", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		dispatcher := &fakeDispatcher{}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		outcome, err := uc.Settle(ctx, decisionEvent("42"))

		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeDispatched, outcome.Kind)
		assert.False(t, outcome.DispatchFailed)
		assert.Equal(t, models.InstructionStatusSent, outcome.Instruction.Status)
		assert.NotNil(t, outcome.Instruction.DispatchedAt)
		assert.Equal(t, []string{"42"}, dispatcher.dispatched)
		assert.Equal(t, []string{"42"}, repo.markedVedtak)
	})

	t.Run("Redelivered Decision Is Idempotent", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		dispatcher := &fakeDispatcher{}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		first, err := uc.Settle(ctx, decisionEvent("42"))
		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeDispatched, first.Kind)

		second, err := uc.Settle(ctx, decisionEvent("42"))
		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeAlreadyExists, second.Kind)
		assert.Equal(t, first.Instruction.VedtakID, second.Instruction.VedtakID)
		assert.Len(t, dispatcher.dispatched, 1, "a duplicate must not dispatch again")
		assert.Len(t, repo.createdVedtak, 1, "a duplicate must not write again")
	})

	t.Run("Reused Line ID Is Rejected", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		dispatcher := &fakeDispatcher{}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		_, err := uc.Settle(ctx, decisionEvent("42"))
		assert.NoError(t, err)

		conflicting := decisionEvent("43")
		conflicting.Lines[0].LineID = "42-L1"
		outcome, err := uc.Settle(ctx, conflicting)

		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeLinesAlreadyExist, outcome.Kind)
		assert.Equal(t, []string{"42-L1"}, outcome.ConflictingLineIDs)
		assert.Len(t, dispatcher.dispatched, 1, "conflicting lines must not dispatch")
	})

	t.Run("Lost Insert Race Resolves To Already Exists", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		repo.conflictOnce = true
		dispatcher := &fakeDispatcher{}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		outcome, err := uc.Settle(ctx, decisionEvent("42"))

		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeAlreadyExists, outcome.Kind)
		assert.Equal(t, "racing-behandling", outcome.Instruction.BehandlingID, "the winner's instruction is returned")
		assert.Empty(t, dispatcher.dispatched)
	})

	t.Run("Dispatch Failure Keeps The Write", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		dispatcher := &fakeDispatcher{err: errors.New("queue unavailable")}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		outcome, err := uc.Settle(ctx, decisionEvent("42"))

		assert.NoError(t, err)
		assert.Equal(t, models.SettleOutcomeDispatched, outcome.Kind)
		assert.True(t, outcome.DispatchFailed)
		stored, _ := repo.FindByVedtakID(ctx, "42")
		assert.NotNil(t, stored, "the instruction stays persisted for the sweep to retry")
		assert.Nil(t, stored.DispatchedAt)
	})

	t.Run("Infrastructure Failure Before Write Returns Error", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		repo.createErr = exceptions.ErrMongoDBInsertDocument(errors.New("connection reset"))
		dispatcher := &fakeDispatcher{}
		uc := NewUtbetalingUsecase(repo, dispatcher, zap.NewNop())

		outcome, err := uc.Settle(ctx, decisionEvent("42"))

		assert.Error(t, err)
		assert.Nil(t, outcome)
		assert.Empty(t, dispatcher.dispatched)
	})
}
