package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// dialTimeout bounds the TCP connect and AMQP handshake.
	dialTimeout = 2 * time.Second
	// redialAfter is how long publishes fail fast after a dial error.
	redialAfter = 5 * time.Second
)

// ErrBrokerUnavailable is returned while the publisher waits to redial.
var ErrBrokerUnavailable = errors.New("rabbitmq unavailable")

// dial opens a broker connection whose connect and handshake are bounded
// by timeout instead of the library's 30s default.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(timeout)})
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Publisher sends events to a durable queue. The broker connection is
// dialed lazily and reused; a channel is opened per publish since amqp
// channels are not safe for concurrent use.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	retryAt time.Time
	now     func() time.Time
}

// NewPublisher returns a publisher for queue on the broker at url. Nothing
// is dialed until the first Publish.
func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, queue: queue, log: log, now: time.Now}
}

// connection returns the shared connection, dialing if needed. The dial is
// capped at dialTimeout or the remaining ctx deadline, whichever is
// shorter; after a failure callers get ErrBrokerUnavailable until
// redialAfter passes so writes do not queue up behind a dead broker.
func (p *Publisher) connection(ctx context.Context) (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}

	timeout := dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	conn, err := dial(p.url, timeout)
	if err != nil {
		p.retryAt = p.now().Add(redialAfter)
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	p.conn = conn
	return conn, nil
}

// Publish marshals ev and sends it as a persistent message. Errors are
// returned so callers can log and move on.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.connection(ctx)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.log.DebugContext(ctx, "event published", "type", ev.Type, "queue", p.queue)
	return nil
}

// Close releases the broker connection if one was opened.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
