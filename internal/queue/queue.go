// Package queue wraps the NATS JetStream client used as the telemetry
// message transport.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"telemetry-pipeline/internal/observability"
)

// defaultFetchWait bounds how long a single pull waits for the first
// undelivered message before returning an empty batch.
const defaultFetchWait = 5 * time.Second

// Client wraps a NATS connection with a JetStream context for
// dependency injection.
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect establishes a NATS connection and JetStream context.
func Connect(url string) (*Client, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Client{conn: conn, js: js}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.conn.Close()
}

// EnsureStream creates the file-backed stream holding subject if it
// does not already exist.
func (c *Client) EnsureStream(stream, subject string) error {
	_, err := c.js.StreamInfo(stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("look up stream %s: %w", stream, err)
	}

	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", stream, err)
	}
	return nil
}

// Publish publishes one message to subject.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := c.js.Publish(subject, data, nats.Context(ctx))
	observability.RecordPublish(err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Publisher returns a publisher bound to a fixed subject.
func (c *Client) Publisher(subject string) *BoundPublisher {
	return &BoundPublisher{client: c, subject: subject}
}

// BoundPublisher publishes to a fixed subject.
type BoundPublisher struct {
	client  *Client
	subject string
}

// Publish publishes one message to the bound subject.
func (b *BoundPublisher) Publish(ctx context.Context, data []byte) error {
	return b.client.Publish(ctx, b.subject, data)
}

// Message is one undelivered queue message awaiting acknowledgment.
type Message interface {
	Data() []byte
	Ack() error
}

type natsMessage struct {
	msg *nats.Msg
}

func (m natsMessage) Data() []byte { return m.msg.Data }
func (m natsMessage) Ack() error   { return m.msg.Ack() }

// PullConsumer fetches bounded batches from a durable pull
// subscription. It is safe to reuse across polls within one poller
// instance; it is not safe to share across poller instances.
type PullConsumer struct {
	sub     *nats.Subscription
	maxWait time.Duration
}

// PullSubscribe binds a durable pull consumer to subject. The durable
// name plays the role of the subscription: redeliveries resume from
// unacknowledged messages across restarts.
func (c *Client) PullSubscribe(subject, durable string) (*PullConsumer, error) {
	sub, err := c.js.PullSubscribe(subject, durable)
	if err != nil {
		return nil, fmt.Errorf("pull subscribe %s: %w", subject, err)
	}
	return &PullConsumer{sub: sub, maxWait: defaultFetchWait}, nil
}

// Fetch requests up to max undelivered messages. An empty batch means
// nothing was pending within the wait window; that is not an error.
func (p *PullConsumer) Fetch(ctx context.Context, max int) ([]Message, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.maxWait)
	defer cancel()

	msgs, err := p.sub.Fetch(max, nats.Context(fetchCtx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, natsMessage{msg: m})
	}
	return out, nil
}
