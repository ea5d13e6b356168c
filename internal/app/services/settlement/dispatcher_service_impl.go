package settlement

import (
	"context"
	"errors"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/exceptions"
	"oppdrag-service/internal/pkg/oppdragwire"
	"time"

	"go.uber.org/zap"
)

type dispatcherService struct {
	publisher contracts.OppdragPublisher
	log       *zap.Logger
	timeout   time.Duration
}

func NewDispatcherService(publisher contracts.OppdragPublisher, logger *zap.Logger, timeout time.Duration) contracts.DispatcherService {
	return &dispatcherService{
		publisher: publisher,
		log:       logger,
		timeout:   timeout,
	}
}

func (s *dispatcherService) Dispatch(ctx context.Context, instruction *models.PaymentInstruction) error {
	body, err := oppdragwire.EncodeOppdrag(instruction)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.publisher.PublishOppdrag(publishCtx, body); err != nil {
		if errors.Is(publishCtx.Err(), context.DeadlineExceeded) {
			return exceptions.ErrServerDeadlineExceeded(err)
		}
		return err
	}

	s.log.Debug("dispatcherService.Dispatch oppdrag published",
		zap.String(constvars.LoggingVedtakIDKey, instruction.VedtakID),
	)
	return nil
}
