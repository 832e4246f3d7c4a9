package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ordersExchange     = "orders.topic"
	deadLetterExchange = "orders.dlx"
	deadLetterQueue    = "orders.dlq"

	// AssignmentQueue feeds the assignment engine.
	AssignmentQueue = "assignment.q"
	// OrderCreatedKey is the routing key for new-order notifications.
	OrderCreatedKey = "order.created"
)

// OrderCreatedMessage notifies consumers that a paid order was created.
// Delivery is at-least-once; consumers must tolerate duplicates.
type OrderCreatedMessage struct {
	OrderID     string    `json:"order_id"`
	VenueID     string    `json:"venue_id"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client wraps an AMQP connection and channel.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

// Close releases channel and connection.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareTopology declares the exchanges and queues used by the service.
// Rejected deliveries land on the dead-letter queue for reconciliation.
func (c *Client) DeclareTopology() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	if err := c.ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.ExchangeDeclare(deadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(AssignmentQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    deadLetterExchange,
		"x-dead-letter-routing-key": deadLetterQueue,
	}); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.QueueBind(deadLetterQueue, deadLetterQueue, deadLetterExchange, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(AssignmentQueue, OrderCreatedKey, ordersExchange, false, nil)
}

// PublishOrderCreated emits a persistent order-created notification.
func (c *Client) PublishOrderCreated(ctx context.Context, orderID, venueID string, totalAmount int64) error {
	body, err := json.Marshal(OrderCreatedMessage{
		OrderID:     orderID,
		VenueID:     venueID,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, ordersExchange, OrderCreatedKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

// Consume starts delivering messages with manual acknowledgements.
func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := c.ch.Qos(prefetch, 0, false); err != nil {
			return nil, err
		}
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}
