package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishTimeout bounds a single publish.
const publishTimeout = 5 * time.Second

// Ensure AMQP implements Publisher
var _ Publisher = (*AMQP)(nil)

// AMQP publishes persistent JSON messages to a durable RabbitMQ queue through
// the default exchange.
type AMQP struct {
	conn  *amqp.Connection
	queue string
	open  func() (channel, error)

	// Channels are not safe for concurrent publishing.
	mu sync.Mutex
	ch channel
}

// channel is the part of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// NewAMQP connects to url and declares queue.
func NewAMQP(url, queue string) (*AMQP, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	a := &AMQP{conn: conn, ch: ch, queue: q.Name}
	a.open = func() (channel, error) { return conn.Channel() }
	return a, nil
}

// encode renders the message body and properties for an event.
func encode(event PhotosUploaded) (amqp.Publishing, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         DefaultQueue,
		Timestamp:    event.UploadedAt,
		Body:         data,
	}, nil
}

func (a *AMQP) PublishPhotosUploaded(ctx context.Context, event PhotosUploaded) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	// The broker closes the channel on errors; reopen it once per publish.
	if a.ch.IsClosed() {
		ch, err := a.open()
		if err != nil {
			return fmt.Errorf("failed to reopen channel: %w", err)
		}
		a.ch = ch
	}
	if err := a.ch.PublishWithContext(ctx, "", a.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.ch.Close(); err != nil {
		a.conn.Close()
		return err
	}
	return a.conn.Close()
}
