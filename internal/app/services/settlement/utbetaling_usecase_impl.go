package settlement

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

type utbetalingUsecase struct {
	instructionRepo contracts.InstructionRepository
	dispatcher      contracts.DispatcherService
	log             *zap.Logger
}

func NewUtbetalingUsecase(
	instructionRepo contracts.InstructionRepository,
	dispatcher contracts.DispatcherService,
	logger *zap.Logger,
) contracts.UtbetalingUsecase {
	return &utbetalingUsecase{
		instructionRepo: instructionRepo,
		dispatcher:      dispatcher,
		log:             logger,
	}
}

// Settle decides whether the decision needs a new payment instruction,
// persists it and hands it to the dispatcher. Exactly one of {no write,
// write+dispatch} happens; a persisted instruction whose dispatch failed is
// picked up by the sweep, never silently lost.
func (uc *utbetalingUsecase) Settle(ctx context.Context, decision *events.DecisionEvent) (*models.SettleOutcome, error) {
	existing, err := uc.instructionRepo.FindByVedtakID(ctx, decision.VedtakID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		uc.log.Info("utbetalingUsecase.Settle instruction already exists",
			zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
			zap.String(constvars.LoggingBehandlingIDKey, existing.BehandlingID),
		)
		return &models.SettleOutcome{
			Kind:        models.SettleOutcomeAlreadyExists,
			Instruction: existing,
		}, nil
	}

	lineIDs := make([]string, 0, len(decision.Lines))
	for _, line := range decision.Lines {
		lineIDs = append(lineIDs, line.LineID)
	}
	conflicting, err := uc.instructionRepo.FindExistingLineIDs(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	if len(conflicting) > 0 {
		uc.log.Info("utbetalingUsecase.Settle proposed lines already stored",
			zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
			zap.Strings("conflicting_line_ids", conflicting),
		)
		return &models.SettleOutcome{
			Kind:               models.SettleOutcomeLinesAlreadyExist,
			ConflictingLineIDs: conflicting,
		}, nil
	}

	instruction := buildInstruction(decision)
	if err := uc.instructionRepo.CreateInstruction(ctx, instruction); err != nil {
		if exceptions.IsConflict(err) {
			// Lost the race against a concurrent redelivery; the winner's
			// instruction is the one that counts.
			winner, findErr := uc.instructionRepo.FindByVedtakID(ctx, decision.VedtakID)
			if findErr != nil {
				return nil, findErr
			}
			return &models.SettleOutcome{
				Kind:        models.SettleOutcomeAlreadyExists,
				Instruction: winner,
			}, nil
		}
		return nil, err
	}

	if err := uc.dispatcher.Dispatch(ctx, instruction); err != nil {
		uc.log.Error("utbetalingUsecase.Settle instruction persisted but dispatch failed, sweep will retry",
			zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
			zap.Error(err),
		)
		return &models.SettleOutcome{
			Kind:           models.SettleOutcomeDispatched,
			Instruction:    instruction,
			DispatchFailed: true,
		}, nil
	}

	now := time.Now()
	if err := uc.instructionRepo.MarkDispatched(ctx, decision.VedtakID, now); err != nil {
		// The oppdrag is on the queue; losing the timestamp only means the
		// sweep may re-dispatch once, which the external side deduplicates.
		uc.log.Warn("utbetalingUsecase.Settle failed to record dispatch time",
			zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
			zap.Error(err),
		)
	} else {
		instruction.DispatchedAt = &now
	}

	uc.log.Info("utbetalingUsecase.Settle instruction dispatched",
		zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
		zap.String(constvars.LoggingBehandlingIDKey, decision.BehandlingID),
	)
	return &models.SettleOutcome{
		Kind:        models.SettleOutcomeDispatched,
		Instruction: instruction,
	}, nil
}

func buildInstruction(decision *events.DecisionEvent) *models.PaymentInstruction {
	lines := make([]models.InstructionLine, 0, len(decision.Lines))
	for _, line := range decision.Lines {
		lines = append(lines, models.InstructionLine{
			LineID:              line.LineID,
			FraOgMed:            line.FraOgMed,
			TilOgMed:            line.TilOgMed,
			Beloep:              line.Beloep,
			Attestanter:         line.Attestanter,
			UtbetalingsFrekvens: line.UtbetalingsFrekvens,
			PreviousLineID:      line.PreviousLineID,
		})
	}
	return &models.PaymentInstruction{
		VedtakID:     decision.VedtakID,
		SakID:        decision.SakID,
		BehandlingID: decision.BehandlingID,
		DecisionType: models.DecisionType(decision.DecisionType),
		Status:       models.InstructionStatusSent,
		Lines:        lines,
		CreatedAt:    time.Now(),
	}
}
