package confirmation

import (
	"context"
	"testing"
	"time"

	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/oppdragwire"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeInstructionRepo struct {
	instructions map[string]*models.PaymentInstruction

	// failApply simulates a racing kvittering winning the conditional write
	// while flipping the stored status, so the re-fetch sees the new state.
	failApply bool
}

func newFakeInstructionRepo() *fakeInstructionRepo {
	return &fakeInstructionRepo{instructions: make(map[string]*models.PaymentInstruction)}
}

func (f *fakeInstructionRepo) CreateInstruction(ctx context.Context, instruction *models.PaymentInstruction) error {
	f.instructions[instruction.VedtakID] = instruction
	return nil
}

func (f *fakeInstructionRepo) FindByVedtakID(ctx context.Context, vedtakID string) (*models.PaymentInstruction, error) {
	return f.instructions[vedtakID], nil
}

func (f *fakeInstructionRepo) FindExistingLineIDs(ctx context.Context, lineIDs []string) ([]string, error) {
	return nil, nil
}

func (f *fakeInstructionRepo) MarkDispatched(ctx context.Context, vedtakID string, dispatchedAt time.Time) error {
	return nil
}

func (f *fakeInstructionRepo) ApplyConfirmation(ctx context.Context, vedtakID string, newStatus models.InstructionStatus, confirmation *models.Confirmation) (bool, error) {
	instruction, ok := f.instructions[vedtakID]
	if !ok || instruction.Status != models.InstructionStatusSent {
		return false, nil
	}
	if f.failApply {
		instruction.Status = models.InstructionStatusApproved
		return false, nil
	}
	instruction.Status = newStatus
	instruction.Confirmation = confirmation
	return true, nil
}

func (f *fakeInstructionRepo) FindStuckInstructions(ctx context.Context, createdBefore, unconfirmedBefore time.Time) ([]models.PaymentInstruction, error) {
	return nil, nil
}

func (f *fakeInstructionRepo) FindDispatchedBetween(ctx context.Context, fraOgMed, tilOgMed time.Time) ([]models.PaymentInstruction, error) {
	return nil, nil
}

func (f *fakeInstructionRepo) FindActive(ctx context.Context) ([]models.PaymentInstruction, error) {
	return nil, nil
}

func sentInstruction(vedtakID string) *models.PaymentInstruction {
	return &models.PaymentInstruction{
		VedtakID:     vedtakID,
		BehandlingID: "behandling-" + vedtakID,
		Status:       models.InstructionStatusSent,
	}
}

func TestKvitteringUsecaseApplyKvittering(t *testing.T) {
	ctx := context.Background()

	t.Run("Severity Codes Map To Terminal Statuses", func(t *testing.T) {
		cases := []struct {
			alvorlighetsgrad string
			wantStatus       string
		}{
			{"00", events.StatusEventApproved},
			{"04", events.StatusEventApprovedWithWarning},
			{"08", events.StatusEventRejected},
			{"12", events.StatusEventFailed},
			{"77", events.StatusEventFailed},
		}
		for _, tc := range cases {
			repo := newFakeInstructionRepo()
			repo.instructions["42"] = sentInstruction("42")
			uc := NewKvitteringUsecase(repo, zap.NewNop())

			event, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
				VedtakID:         "42",
				Alvorlighetsgrad: tc.alvorlighetsgrad,
			})

			assert.NoError(t, err)
			assert.Equal(t, tc.wantStatus, event.Status, "severity %s", tc.alvorlighetsgrad)
			assert.Equal(t, "42", event.VedtakID)
			assert.Equal(t, "behandling-42", event.BehandlingID)
			assert.Equal(t, models.InstructionStatus(tc.wantStatus), repo.instructions["42"].Status)
		}
	})

	t.Run("Confirmation Details Are Recorded", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		repo.instructions["42"] = sentInstruction("42")
		uc := NewKvitteringUsecase(repo, zap.NewNop())

		_, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
			VedtakID:         "42",
			Alvorlighetsgrad: "08",
			Feilkode:         "B110012F",
			Beskrivelse:      "UTBETALES-TIL-ID er ikke utfylt",
		})

		assert.NoError(t, err)
		confirmation := repo.instructions["42"].Confirmation
		assert.NotNil(t, confirmation)
		assert.Equal(t, "B110012F", confirmation.Feilkode)
		assert.Equal(t, "UTBETALES-TIL-ID er ikke utfylt", confirmation.Beskrivelse)
		assert.False(t, confirmation.ReceivedAt.IsZero())
	})

	t.Run("Unknown VedtakID Reports Failed Without Write", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		uc := NewKvitteringUsecase(repo, zap.NewNop())

		event, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
			VedtakID:         "missing",
			Alvorlighetsgrad: "00",
		})

		assert.NoError(t, err)
		assert.Equal(t, events.StatusEventFailed, event.Status)
		assert.Equal(t, "missing", event.VedtakID)
		assert.Equal(t, "no matching instruction", event.Reason)
	})

	t.Run("Second Kvittering Is Rejected By The Guard", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		repo.instructions["42"] = sentInstruction("42")
		uc := NewKvitteringUsecase(repo, zap.NewNop())

		first, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
			VedtakID:         "42",
			Alvorlighetsgrad: "00",
		})
		assert.NoError(t, err)
		assert.Equal(t, events.StatusEventApproved, first.Status)

		second, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
			VedtakID:         "42",
			Alvorlighetsgrad: "08",
		})
		assert.NoError(t, err)
		assert.Equal(t, events.StatusEventFailed, second.Status)
		assert.Equal(t, "instruction in unexpected state APPROVED", second.Reason)
		assert.Equal(t, models.InstructionStatusApproved, repo.instructions["42"].Status, "the terminal status must not change")
	})

	t.Run("Lost Conditional Write Race Reports Current State", func(t *testing.T) {
		repo := newFakeInstructionRepo()
		repo.instructions["42"] = sentInstruction("42")
		repo.failApply = true
		uc := NewKvitteringUsecase(repo, zap.NewNop())

		event, err := uc.ApplyKvittering(ctx, &oppdragwire.Kvittering{
			VedtakID:         "42",
			Alvorlighetsgrad: "08",
		})

		assert.NoError(t, err)
		assert.Equal(t, events.StatusEventFailed, event.Status)
		assert.Equal(t, "instruction in unexpected state APPROVED", event.Reason)
	})
}
