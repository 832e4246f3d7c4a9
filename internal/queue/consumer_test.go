package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

type fakeAssigner struct {
	failures int
	calls    int
	failed   []string
}

func (a *fakeAssigner) AssignOrder(_ context.Context, orderID string) error {
	a.calls++
	if a.calls <= a.failures {
		return errors.New("transient failure")
	}
	return nil
}

func (a *fakeAssigner) MarkAssignmentFailed(_ context.Context, orderID string) {
	a.failed = append(a.failed, orderID)
}

func delivery(t *testing.T, ack amqp.Acknowledger, orderID string) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(OrderCreatedMessage{OrderID: orderID, VenueID: "venue-1", TotalAmount: 500, CreatedAt: time.Now()})
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func newConsumer(assigner Assigner) *AssignmentConsumer {
	return NewAssignmentConsumer(nil, assigner, zap.NewNop(), 1, 3, time.Millisecond)
}

func TestHandleAcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	assigner := &fakeAssigner{}
	consumer := newConsumer(assigner)

	consumer.handle(context.Background(), delivery(t, ack, "order-1"))

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	assert.Equal(t, 1, assigner.calls)
	assert.Empty(t, assigner.failed)
}

func TestHandleRetriesTransientFailures(t *testing.T) {
	ack := &fakeAcknowledger{}
	assigner := &fakeAssigner{failures: 2}
	consumer := newConsumer(assigner)

	consumer.handle(context.Background(), delivery(t, ack, "order-1"))

	assert.Equal(t, 1, ack.acks, "succeeds within the retry budget")
	assert.Equal(t, 3, assigner.calls)
	assert.Empty(t, assigner.failed)
}

func TestHandleExhaustedRetriesDeadLetters(t *testing.T) {
	ack := &fakeAcknowledger{}
	assigner := &fakeAssigner{failures: 10}
	consumer := newConsumer(assigner)

	consumer.handle(context.Background(), delivery(t, ack, "order-9"))

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue, "exhausted deliveries go to the dead-letter queue")
	assert.Equal(t, 3, assigner.calls)
	assert.Equal(t, []string{"order-9"}, assigner.failed, "failure status is stamped before dead-lettering")
}

func TestHandleMalformedMessage(t *testing.T) {
	ack := &fakeAcknowledger{}
	assigner := &fakeAssigner{}
	consumer := newConsumer(assigner)

	consumer.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("not json")})

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue)
	assert.Zero(t, assigner.calls)
}
