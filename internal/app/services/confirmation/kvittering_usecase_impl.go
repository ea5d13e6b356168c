package confirmation

import (
	"context"
	"fmt"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/oppdragwire"
	"time"

	"go.uber.org/zap"
)

type kvitteringUsecase struct {
	instructionRepo contracts.InstructionRepository
	log             *zap.Logger
}

func NewKvitteringUsecase(instructionRepo contracts.InstructionRepository, logger *zap.Logger) contracts.KvitteringUsecase {
	return &kvitteringUsecase{
		instructionRepo: instructionRepo,
		log:             logger,
	}
}

// ApplyKvittering runs the confirmation state machine. SENT is the only
// state that accepts a kvittering; everything else is a guard rejection
// reported as a FAILED event without touching the instruction, which keeps
// duplicate and late confirmations from corrupting a terminal record.
func (uc *kvitteringUsecase) ApplyKvittering(ctx context.Context, kvittering *oppdragwire.Kvittering) (*events.StatusEvent, error) {
	instruction, err := uc.instructionRepo.FindByVedtakID(ctx, kvittering.VedtakID)
	if err != nil {
		return nil, err
	}
	if instruction == nil {
		uc.log.Warn("kvitteringUsecase.ApplyKvittering no matching instruction",
			zap.String(constvars.LoggingVedtakIDKey, kvittering.VedtakID),
		)
		return &events.StatusEvent{
			Status:   events.StatusEventFailed,
			VedtakID: kvittering.VedtakID,
			Reason:   "no matching instruction",
		}, nil
	}

	if instruction.Status != models.InstructionStatusSent {
		uc.log.Warn("kvitteringUsecase.ApplyKvittering instruction not awaiting confirmation",
			zap.String(constvars.LoggingVedtakIDKey, kvittering.VedtakID),
			zap.String(constvars.LoggingStatusKey, string(instruction.Status)),
		)
		return uc.unexpectedStateEvent(instruction), nil
	}

	newStatus := models.StatusForAlvorlighetsgrad(kvittering.Alvorlighetsgrad)
	applied, err := uc.instructionRepo.ApplyConfirmation(ctx, kvittering.VedtakID, newStatus, &models.Confirmation{
		Alvorlighetsgrad: kvittering.Alvorlighetsgrad,
		Feilkode:         kvittering.Feilkode,
		Beskrivelse:      kvittering.Beskrivelse,
		ReceivedAt:       time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		// A racing kvittering won the conditional write first.
		current, err := uc.instructionRepo.FindByVedtakID(ctx, kvittering.VedtakID)
		if err != nil {
			return nil, err
		}
		return uc.unexpectedStateEvent(current), nil
	}

	uc.log.Info("kvitteringUsecase.ApplyKvittering instruction confirmed",
		zap.String(constvars.LoggingVedtakIDKey, kvittering.VedtakID),
		zap.String(constvars.LoggingSeverityKey, kvittering.Alvorlighetsgrad),
		zap.String(constvars.LoggingStatusKey, string(newStatus)),
	)
	return &events.StatusEvent{
		Status:       string(newStatus),
		VedtakID:     instruction.VedtakID,
		BehandlingID: instruction.BehandlingID,
	}, nil
}

func (uc *kvitteringUsecase) unexpectedStateEvent(instruction *models.PaymentInstruction) *events.StatusEvent {
	return &events.StatusEvent{
		Status:       events.StatusEventFailed,
		VedtakID:     instruction.VedtakID,
		BehandlingID: instruction.BehandlingID,
		Reason:       fmt.Sprintf("instruction in unexpected state %s", instruction.Status),
	}
}
