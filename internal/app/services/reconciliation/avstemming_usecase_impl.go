package reconciliation

import (
	"bytes"
	"context"
	"fmt"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/oppdragwire"
	"oppdrag-service/internal/pkg/utils"
	"strings"
	"time"

	"go.uber.org/zap"
)

type avstemmingUsecase struct {
	instructionRepo contracts.InstructionRepository
	runRepo         contracts.ReconciliationRepository
	publisher       contracts.AvstemmingPublisher
	archive         contracts.SnapshotArchiveService
	log             *zap.Logger
	kategori        string
	now             func() time.Time
}

func NewAvstemmingUsecase(
	instructionRepo contracts.InstructionRepository,
	runRepo contracts.ReconciliationRepository,
	publisher contracts.AvstemmingPublisher,
	archive contracts.SnapshotArchiveService,
	logger *zap.Logger,
	kategori string,
) contracts.ReconciliationUsecase {
	return &avstemmingUsecase{
		instructionRepo: instructionRepo,
		runRepo:         runRepo,
		publisher:       publisher,
		archive:         archive,
		log:             logger,
		kategori:        kategori,
		now:             time.Now,
	}
}

// RunInterfaceReconciliation proves the window since the last interface
// run. The window start is exactly the previous run's end, so consecutive
// runs tile the timeline with no gap and no overlap.
func (uc *avstemmingUsecase) RunInterfaceReconciliation(ctx context.Context) (*models.ReconciliationRun, error) {
	last, err := uc.runRepo.FindLatestRun(ctx, models.ReconciliationKindInterface)
	if err != nil {
		return nil, err
	}

	var fraOgMed time.Time
	if last != nil {
		fraOgMed = last.TilOgMed
	}
	tilOgMed := uc.now()

	instructions, err := uc.instructionRepo.FindDispatchedBetween(ctx, fraOgMed, tilOgMed)
	if err != nil {
		return nil, err
	}

	return uc.executeRun(ctx, models.ReconciliationKindInterface, fraOgMed, tilOgMed, instructions)
}

// RunConsistencyReconciliation proves every still-active instruction as of
// now. A sequence of correct deltas can still accumulate drift, e.g. lines
// ended externally but never reflected internally; this run catches it.
func (uc *avstemmingUsecase) RunConsistencyReconciliation(ctx context.Context) (*models.ReconciliationRun, error) {
	asOf := uc.now()
	instructions, err := uc.instructionRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return uc.executeRun(ctx, models.ReconciliationKindConsistency, asOf, asOf, instructions)
}

// executeRun encodes and transmits the full START/DATA/AVSL sequence, then
// persists the run record. The record is written only after every send
// succeeded: a partial transmit leaves no record, so the next tick
// recomputes the same window from scratch, which is what makes the
// sequence safe to retry.
func (uc *avstemmingUsecase) executeRun(ctx context.Context, kind models.ReconciliationKind, fraOgMed, tilOgMed time.Time, instructions []models.PaymentInstruction) (*models.ReconciliationRun, error) {
	runID := utils.GenerateAvstemmingID()

	detaljer := make([]oppdragwire.AvstemmingDetalj, 0, len(instructions))
	for i := range instructions {
		detaljer = append(detaljer, oppdragwire.AvstemmingDetalj{
			VedtakID: instructions[i].VedtakID,
			Status:   string(instructions[i].Status),
			Beloep:   instructions[i].TotalBeloep(),
		})
	}

	meldinger := oppdragwire.BuildAvstemmingMeldinger(runID, string(kind), uc.kategori, fraOgMed, tilOgMed, detaljer)

	var payload bytes.Buffer
	for _, melding := range meldinger {
		body, err := oppdragwire.EncodeAvstemmingsdata(melding)
		if err != nil {
			return nil, err
		}
		if err := uc.publisher.PublishAvstemmingsmelding(ctx, body); err != nil {
			uc.log.Error("avstemmingUsecase.executeRun transmit failed, run not recorded",
				zap.String(constvars.LoggingRunIDKey, runID),
				zap.String(constvars.LoggingRunKindKey, string(kind)),
				zap.Error(err),
			)
			return nil, err
		}
		payload.Write(body)
		payload.WriteByte('\n')
	}

	run := &models.ReconciliationRun{
		RunID:       runID,
		Kind:        kind,
		FraOgMed:    fraOgMed,
		TilOgMed:    tilOgMed,
		Payload:     payload.String(),
		RecordCount: len(detaljer),
		Category:    uc.kategori,
		CreatedAt:   uc.now(),
	}
	if err := uc.runRepo.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/%s.xml", strings.ToLower(string(kind)), runID)
	if err := uc.archive.ArchiveSnapshot(ctx, objectName, payload.Bytes()); err != nil {
		// The run record is the source of truth; a missed archive upload
		// only costs the audit copy.
		uc.log.Warn("avstemmingUsecase.executeRun snapshot archive failed",
			zap.String(constvars.LoggingRunIDKey, runID),
			zap.Error(err),
		)
	}

	uc.log.Info("avstemmingUsecase.executeRun run completed",
		zap.String(constvars.LoggingRunIDKey, runID),
		zap.String(constvars.LoggingRunKindKey, string(kind)),
		zap.Int(constvars.LoggingRecordCountKey, len(detaljer)),
		zap.Time(constvars.LoggingWindowFromKey, fraOgMed),
		zap.Time(constvars.LoggingWindowToKey, tilOgMed),
	)
	return run, nil
}
