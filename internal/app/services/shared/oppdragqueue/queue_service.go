package oppdragqueue

import (
	"context"
	"fmt"
	"oppdrag-service/internal/app/config"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/dto/events"
	"oppdrag-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const deadLetterSuffix = "_dlq"

// Service owns every queue this system touches: the inbound vedtak and
// kvittering queues (with their DLQs), and the outbound oppdrag, status and
// avstemming queues. All publishes are persistent and wait for a broker
// confirm; an unconfirmed publish is a failure, never a success.
type Service struct {
	ch       *amqp.Channel
	log      *zap.Logger
	cfg      config.Oppdrag
	limiter  *rate.Limiter
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

// NewService opens a channel, declares all durable queues, enables
// publisher confirms and sets QoS so consumers handle one message at a
// time. The limiter paces publishes toward the mainframe gateway.
func NewService(conn *amqp.Connection, log *zap.Logger, cfg config.Oppdrag) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	queues := []string{
		cfg.VedtakQueue,
		cfg.VedtakQueue + deadLetterSuffix,
		cfg.KvitteringQueue,
		cfg.KvitteringQueue + deadLetterSuffix,
		cfg.OppdragQueue,
		cfg.StatusQueue,
		cfg.AvstemmingQueue,
	}
	for _, queue := range queues {
		_, err = ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	// One unacked message in flight per consumer: messages of the same
	// logical stream are handled strictly one at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	ratePerSecond := cfg.PublishRatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}

	svc := &Service{
		ch:       ch,
		log:      log,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

// PublishOppdrag sends one serialized payment instruction to the external
// payment system.
func (s *Service) PublishOppdrag(ctx context.Context, body []byte) error {
	return s.publishPaced(ctx, s.cfg.OppdragQueue, constvars.MIMEApplicationXML, body)
}

// PublishAvstemmingsmelding sends one message of a reconciliation sequence.
func (s *Service) PublishAvstemmingsmelding(ctx context.Context, body []byte) error {
	return s.publishPaced(ctx, s.cfg.AvstemmingQueue, constvars.MIMEApplicationXML, body)
}

// PublishStatusEvent reports a settlement outcome to downstream consumers.
func (s *Service) PublishStatusEvent(ctx context.Context, event *events.StatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publish(ctx, s.cfg.StatusQueue, constvars.MIMEApplicationJSON, body)
}

// PublishVedtakDeadLetter parks an undecodable decision payload.
func (s *Service) PublishVedtakDeadLetter(ctx context.Context, body []byte) error {
	return s.publish(ctx, s.cfg.VedtakQueue+deadLetterSuffix, constvars.MIMEApplicationJSON, body)
}

// PublishKvitteringDeadLetter parks an undecodable kvittering payload.
func (s *Service) PublishKvitteringDeadLetter(ctx context.Context, body []byte) error {
	return s.publish(ctx, s.cfg.KvitteringQueue+deadLetterSuffix, constvars.MIMEApplicationXML, body)
}

// ConsumeVedtak returns the delivery stream of inbound decision events.
func (s *Service) ConsumeVedtak() (<-chan amqp.Delivery, error) {
	deliveries, err := s.ch.Consume(s.cfg.VedtakQueue, "", false, false, false, false, nil)
	if err != nil {
		return nil, exceptions.ErrRabbitMQConsumeQueue(err, s.cfg.VedtakQueue)
	}
	return deliveries, nil
}

// ConsumeKvittering returns the delivery stream of inbound confirmations.
func (s *Service) ConsumeKvittering() (<-chan amqp.Delivery, error) {
	deliveries, err := s.ch.Consume(s.cfg.KvitteringQueue, "", false, false, false, false, nil)
	if err != nil {
		return nil, exceptions.ErrRabbitMQConsumeQueue(err, s.cfg.KvitteringQueue)
	}
	return deliveries, nil
}

// publishPaced applies the outbound rate limit before publishing. The
// mainframe gateway cannot absorb bursts, so a large avstemming sequence is
// drip fed.
func (s *Service) publishPaced(ctx context.Context, queue, contentType string, body []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}
	return s.publish(ctx, queue, contentType, body)
}

func (s *Service) publish(ctx context.Context, queue, contentType string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  contentType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
