package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Assigner drives the assignment engine for one order.
type Assigner interface {
	AssignOrder(ctx context.Context, orderID string) error
	// MarkAssignmentFailed stamps the explicit error status once retries
	// are exhausted.
	MarkAssignmentFailed(ctx context.Context, orderID string)
}

// AssignmentConsumer pulls order-created messages off the queue and
// feeds them to the assignment engine with a bounded retry budget per
// delivery. Exhausted deliveries are dead-lettered, never redelivered
// forever.
type AssignmentConsumer struct {
	client      *Client
	assigner    Assigner
	logger      *zap.Logger
	prefetch    int
	maxAttempts int
	retryDelay  time.Duration
}

// NewAssignmentConsumer builds the consumer.
func NewAssignmentConsumer(client *Client, assigner Assigner, logger *zap.Logger, prefetch, maxAttempts int, retryDelay time.Duration) *AssignmentConsumer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &AssignmentConsumer{
		client:      client,
		assigner:    assigner,
		logger:      logger,
		prefetch:    prefetch,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Run consumes until the context is cancelled or the channel closes.
func (c *AssignmentConsumer) Run(ctx context.Context) error {
	deliveries, err := c.client.Consume(AssignmentQueue, "assignment-engine", c.prefetch)
	if err != nil {
		return err
	}
	c.logger.Info("assignment consumer started", zap.String("queue", AssignmentQueue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *AssignmentConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var msg OrderCreatedMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.logger.Error("malformed order-created message", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err = c.assigner.AssignOrder(ctx, msg.OrderID); err == nil {
			_ = delivery.Ack(false)
			return
		}
		c.logger.Warn("assignment attempt failed",
			zap.String("order_id", msg.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			_ = delivery.Nack(false, true)
			return
		case <-time.After(c.retryDelay):
		}
	}

	c.logger.Error("assignment retries exhausted",
		zap.String("order_id", msg.OrderID),
		zap.Error(err),
	)
	c.assigner.MarkAssignmentFailed(ctx, msg.OrderID)
	_ = delivery.Nack(false, false)
}
