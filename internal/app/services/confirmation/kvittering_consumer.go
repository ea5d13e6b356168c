package confirmation

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/oppdragwire"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// KvitteringConsumer handles asynchronous confirmations one message at a
// time. Confirmations arrive out of order relative to other vedtak and may
// be redelivered; the usecase guards keep both harmless.
type KvitteringConsumer struct {
	log        *zap.Logger
	usecase    contracts.KvitteringUsecase
	publisher  contracts.StatusEventPublisher
	deadLetter contracts.DeadLetterPublisher
	deliveries <-chan amqp.Delivery
}

func NewKvitteringConsumer(
	logger *zap.Logger,
	usecase contracts.KvitteringUsecase,
	publisher contracts.StatusEventPublisher,
	deadLetter contracts.DeadLetterPublisher,
	deliveries <-chan amqp.Delivery,
) *KvitteringConsumer {
	return &KvitteringConsumer{
		log:        logger,
		usecase:    usecase,
		publisher:  publisher,
		deadLetter: deadLetter,
		deliveries: deliveries,
	}
}

// Start consumes deliveries until the channel closes or ctx is done.
func (c *KvitteringConsumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-c.deliveries:
				if !ok {
					c.log.Warn("kvitteringConsumer.Start delivery channel closed")
					return
				}
				c.HandleDelivery(ctx, delivery)
			}
		}
	}()
}

// HandleDelivery processes a single kvittering. Decode failures of any kind
// are reported as a FAILED event without a vedtakId (best effort) and the
// raw payload is logged and parked; the listener itself never dies.
func (c *KvitteringConsumer) HandleDelivery(ctx context.Context, delivery amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("kvitteringConsumer.HandleDelivery panic while processing kvittering",
				zap.ByteString(constvars.LoggingRawPayloadKey, delivery.Body),
				zap.Any("panic", r),
			)
			c.publishStatus(ctx, &events.StatusEvent{
				Status: events.StatusEventFailed,
				Reason: "malformed kvittering",
			})
			c.park(ctx, delivery)
		}
	}()

	kvittering, err := oppdragwire.DecodeKvittering(delivery.Body)
	if err != nil {
		c.log.Error("kvitteringConsumer.HandleDelivery undecodable kvittering",
			zap.ByteString(constvars.LoggingRawPayloadKey, delivery.Body),
			zap.Error(err),
		)
		c.publishStatus(ctx, &events.StatusEvent{
			Status: events.StatusEventFailed,
			Reason: "malformed kvittering",
		})
		c.park(ctx, delivery)
		return
	}

	event, err := c.usecase.ApplyKvittering(ctx, kvittering)
	if err != nil {
		// Store failure: nothing changed, redelivery retries.
		c.log.Error("kvitteringConsumer.HandleDelivery apply failed, requeueing",
			zap.String(constvars.LoggingVedtakIDKey, kvittering.VedtakID),
			zap.Error(err),
		)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.log.Error("kvitteringConsumer.HandleDelivery nack failed", zap.Error(nackErr))
		}
		return
	}

	c.publishStatus(ctx, event)
	if err := delivery.Ack(false); err != nil {
		c.log.Error("kvitteringConsumer.HandleDelivery ack failed", zap.Error(err))
	}
}

func (c *KvitteringConsumer) park(ctx context.Context, delivery amqp.Delivery) {
	if err := c.deadLetter.PublishKvitteringDeadLetter(ctx, delivery.Body); err != nil {
		c.log.Error("kvitteringConsumer.park dead letter publish failed", zap.Error(err))
	}
	if err := delivery.Ack(false); err != nil {
		c.log.Error("kvitteringConsumer.park ack failed", zap.Error(err))
	}
}

func (c *KvitteringConsumer) publishStatus(ctx context.Context, event *events.StatusEvent) {
	if err := c.publisher.PublishStatusEvent(ctx, event); err != nil {
		c.log.Error("kvitteringConsumer.publishStatus failed",
			zap.String(constvars.LoggingVedtakIDKey, event.VedtakID),
			zap.String(constvars.LoggingStatusKey, event.Status),
			zap.Error(err),
		)
	}
}
