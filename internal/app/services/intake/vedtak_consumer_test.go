package intake

import (
	"context"
	"errors"
	"testing"

	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/dto/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

type fakeSettler struct {
	outcome *models.SettleOutcome
	err     error
	calls   int
}

func (f *fakeSettler) Settle(ctx context.Context, decision *events.DecisionEvent) (*models.SettleOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeStatusPublisher struct {
	events []*events.StatusEvent
}

func (f *fakeStatusPublisher) PublishStatusEvent(ctx context.Context, event *events.StatusEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeDeadLetterPublisher struct {
	vedtak     [][]byte
	kvittering [][]byte
}

func (f *fakeDeadLetterPublisher) PublishVedtakDeadLetter(ctx context.Context, body []byte) error {
	f.vedtak = append(f.vedtak, body)
	return nil
}

func (f *fakeDeadLetterPublisher) PublishKvitteringDeadLetter(ctx context.Context, body []byte) error {
	f.kvittering = append(f.kvittering, body)
	return nil
}

func delivery(body string) (amqp.Delivery, *fakeAcknowledger) {
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}, ack
}

const validDecisionBody = `{
	"vedtakId": "42",
	"sakId": "sak-1",
	"behandlingId": "behandling-1",
	"vedtakType": "GRANT",
	"linjer": [
		{
			"linjeId": "L1",
			"fraOgMed": "2026-01",
			"tilOgMed": "2026-06",
			"beloep": 15000,
			"attestanter": ["Z999999"],
			"utbetalingsfrekvens": "MND"
		}
	]
}`

func TestVedtakConsumerHandleDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Settled Decision Reports Sent And Acks", func(t *testing.T) {
		settler := &fakeSettler{outcome: &models.SettleOutcome{
			Kind:        models.SettleOutcomeDispatched,
			Instruction: &models.PaymentInstruction{VedtakID: "42"},
		}}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(validDecisionBody)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		assert.Len(t, publisher.events, 1)
		assert.Equal(t, events.StatusEventSent, publisher.events[0].Status)
		assert.Equal(t, "42", publisher.events[0].VedtakID)
		assert.Empty(t, deadLetter.vedtak)
	})

	t.Run("Malformed JSON Is Reported Parked And Acked", func(t *testing.T) {
		settler := &fakeSettler{}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(`{"vedtakId": `)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked, "a poison message must leave the queue")
		assert.Equal(t, 0, settler.calls, "nothing reaches the settlement logic")
		assert.Len(t, publisher.events, 1)
		assert.Equal(t, events.StatusEventFailed, publisher.events[0].Status)
		assert.Equal(t, "malformed decision event", publisher.events[0].Reason)
		assert.Len(t, deadLetter.vedtak, 1, "the raw payload is parked for inspection")
	})

	t.Run("Missing Required Field Is Treated As Malformed", func(t *testing.T) {
		settler := &fakeSettler{}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(`{"vedtakId": "42", "sakId": "sak-1", "behandlingId": "b-1", "vedtakType": "GRANT", "linjer": []}`)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked)
		assert.Equal(t, 0, settler.calls)
		assert.Len(t, deadLetter.vedtak, 1)
	})

	t.Run("Settle Failure Requeues Without Status Event", func(t *testing.T) {
		settler := &fakeSettler{err: errors.New("mongo unavailable")}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(validDecisionBody)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue, "redelivery is the retry mechanism for store failures")
		assert.False(t, ack.acked)
		assert.Empty(t, publisher.events)
		assert.Empty(t, deadLetter.vedtak)
	})

	t.Run("Duplicate Decision Reports Failed With Earlier Behandling", func(t *testing.T) {
		settler := &fakeSettler{outcome: &models.SettleOutcome{
			Kind:        models.SettleOutcomeAlreadyExists,
			Instruction: &models.PaymentInstruction{VedtakID: "42", BehandlingID: "behandling-0"},
		}}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(validDecisionBody)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked)
		assert.Len(t, publisher.events, 1)
		assert.Equal(t, events.StatusEventFailed, publisher.events[0].Status)
		assert.Equal(t, "duplicate instruction, earlier behandling=behandling-0", publisher.events[0].Reason)
	})

	t.Run("Persisted But Undispatched Reports Retry Scheduled", func(t *testing.T) {
		settler := &fakeSettler{outcome: &models.SettleOutcome{
			Kind:           models.SettleOutcomeDispatched,
			Instruction:    &models.PaymentInstruction{VedtakID: "42"},
			DispatchFailed: true,
		}}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(validDecisionBody)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked, "the write happened, redelivery must not settle twice")
		assert.Len(t, publisher.events, 1)
		assert.Equal(t, events.StatusEventFailed, publisher.events[0].Status)
		assert.Equal(t, "oppdrag dispatch failed, retry scheduled", publisher.events[0].Reason)
	})

	t.Run("Conflicting Lines Report The Line IDs", func(t *testing.T) {
		settler := &fakeSettler{outcome: &models.SettleOutcome{
			Kind:               models.SettleOutcomeLinesAlreadyExist,
			ConflictingLineIDs: []string{"L1", "L2"},
		}}
		publisher := &fakeStatusPublisher{}
		deadLetter := &fakeDeadLetterPublisher{}
		consumer := NewVedtakConsumer(zap.NewNop(), settler, publisher, deadLetter, nil)

		msg, ack := delivery(validDecisionBody)
		consumer.HandleDelivery(ctx, msg)

		assert.True(t, ack.acked)
		assert.Len(t, publisher.events, 1)
		assert.Equal(t, "lines already exist: L1, L2", publisher.events[0].Reason)
	})
}
