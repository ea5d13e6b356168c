package contracts

import (
	"context"

	"oppdrag-service/internal/pkg/dto/events"
)

type OppdragPublisher interface {
	PublishOppdrag(ctx context.Context, body []byte) error
}

type StatusEventPublisher interface {
	PublishStatusEvent(ctx context.Context, event *events.StatusEvent) error
}

type AvstemmingPublisher interface {
	PublishAvstemmingsmelding(ctx context.Context, body []byte) error
}

// DeadLetterPublisher parks poison messages after their FAILED event has
// been emitted, so redelivery never loops on an undecodable payload.
type DeadLetterPublisher interface {
	PublishVedtakDeadLetter(ctx context.Context, body []byte) error
	PublishKvitteringDeadLetter(ctx context.Context, body []byte) error
}
