package intake

import (
	"context"
	"fmt"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/utils"
	"strings"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// VedtakConsumer handles inbound decision events one message at a time.
// Every path ends in an outbound status event plus an ack; nothing thrown
// at this consumer can take the process down.
type VedtakConsumer struct {
	log        *zap.Logger
	settler    contracts.UtbetalingUsecase
	publisher  contracts.StatusEventPublisher
	deadLetter contracts.DeadLetterPublisher
	deliveries <-chan amqp.Delivery
}

func NewVedtakConsumer(
	logger *zap.Logger,
	settler contracts.UtbetalingUsecase,
	publisher contracts.StatusEventPublisher,
	deadLetter contracts.DeadLetterPublisher,
	deliveries <-chan amqp.Delivery,
) *VedtakConsumer {
	return &VedtakConsumer{
		log:        logger,
		settler:    settler,
		publisher:  publisher,
		deadLetter: deadLetter,
		deliveries: deliveries,
	}
}

// Start consumes deliveries until the channel closes or ctx is done.
func (c *VedtakConsumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-c.deliveries:
				if !ok {
					c.log.Warn("vedtakConsumer.Start delivery channel closed")
					return
				}
				c.HandleDelivery(ctx, delivery)
			}
		}
	}()
}

// HandleDelivery processes a single decision event.
func (c *VedtakConsumer) HandleDelivery(ctx context.Context, delivery amqp.Delivery) {
	decision, err := c.decode(delivery.Body)
	if err != nil {
		// A malformed message never becomes well-formed on redelivery, so
		// it is reported and parked rather than retried.
		c.log.Error("vedtakConsumer.HandleDelivery undecodable decision event",
			zap.ByteString(constvars.LoggingRawPayloadKey, delivery.Body),
			zap.Error(err),
		)
		c.publishStatus(ctx, &events.StatusEvent{
			Status: events.StatusEventFailed,
			Reason: "malformed decision event",
		})
		if dlqErr := c.deadLetter.PublishVedtakDeadLetter(ctx, delivery.Body); dlqErr != nil {
			c.log.Error("vedtakConsumer.HandleDelivery dead letter publish failed", zap.Error(dlqErr))
		}
		c.ack(delivery)
		return
	}

	outcome, err := c.settler.Settle(ctx, decision)
	if err != nil {
		// Store failure before anything was written: redelivery is the
		// retry mechanism.
		c.log.Error("vedtakConsumer.HandleDelivery settle failed, requeueing",
			zap.String(constvars.LoggingVedtakIDKey, decision.VedtakID),
			zap.Error(err),
		)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.log.Error("vedtakConsumer.HandleDelivery nack failed", zap.Error(nackErr))
		}
		return
	}

	c.publishStatus(ctx, statusEventForOutcome(decision, outcome))
	c.ack(delivery)
}

func (c *VedtakConsumer) decode(body []byte) (*events.DecisionEvent, error) {
	var decision events.DecisionEvent
	if err := json.Unmarshal(body, &decision); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(&decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

func (c *VedtakConsumer) publishStatus(ctx context.Context, event *events.StatusEvent) {
	if err := c.publisher.PublishStatusEvent(ctx, event); err != nil {
		c.log.Error("vedtakConsumer.publishStatus failed",
			zap.String(constvars.LoggingVedtakIDKey, event.VedtakID),
			zap.String(constvars.LoggingStatusKey, event.Status),
			zap.Error(err),
		)
	}
}

func (c *VedtakConsumer) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error("vedtakConsumer.ack failed", zap.Error(err))
	}
}

// statusEventForOutcome maps every settle outcome to the event reported
// downstream. Duplicates are reported as FAILED rather than dropped: a
// redelivered decision is normal, but a duplicate with a different
// behandling signals an upstream duplication bug someone should see.
func statusEventForOutcome(decision *events.DecisionEvent, outcome *models.SettleOutcome) *events.StatusEvent {
	switch outcome.Kind {
	case models.SettleOutcomeDispatched:
		if outcome.DispatchFailed {
			return &events.StatusEvent{
				Status:       events.StatusEventFailed,
				VedtakID:     decision.VedtakID,
				BehandlingID: decision.BehandlingID,
				Reason:       "oppdrag dispatch failed, retry scheduled",
			}
		}
		return &events.StatusEvent{
			Status:       events.StatusEventSent,
			VedtakID:     decision.VedtakID,
			BehandlingID: decision.BehandlingID,
		}
	case models.SettleOutcomeAlreadyExists:
		return &events.StatusEvent{
			Status:       events.StatusEventFailed,
			VedtakID:     decision.VedtakID,
			BehandlingID: decision.BehandlingID,
			Reason:       fmt.Sprintf("duplicate instruction, earlier behandling=%s", outcome.Instruction.BehandlingID),
		}
	case models.SettleOutcomeLinesAlreadyExist:
		return &events.StatusEvent{
			Status:       events.StatusEventFailed,
			VedtakID:     decision.VedtakID,
			BehandlingID: decision.BehandlingID,
			Reason:       fmt.Sprintf("lines already exist: %s", strings.Join(outcome.ConflictingLineIDs, ", ")),
		}
	default:
		return &events.StatusEvent{
			Status:       events.StatusEventFailed,
			VedtakID:     decision.VedtakID,
			BehandlingID: decision.BehandlingID,
			Reason:       fmt.Sprintf("unhandled settle outcome %s", outcome.Kind),
		}
	}
}
