package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging is a broker-agnostic publish/consume client. The concrete broker
// behind it (Kafka, NATS, NSQ, Google Pub/Sub) is chosen by configuration.
type Messaging interface {
	io.Closer

	// Publish sends a message to a destination (topic or subject).
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)

	// Consume blocks processing messages from source until ctx is done or the
	// underlying consumer stops.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one received message. With auto-ack enabled the driver
// acks on a nil return and nacks (requeues where the broker supports it) on
// an error.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key drives partitioning on Kafka; other brokers ignore it.
	Key []byte

	// Headers carry binary metadata such as correlation IDs.
	Headers []Header

	// Attributes map to string attributes on brokers that have them (Pub/Sub).
	Attributes map[string]string
}

// Header is one message header entry. Duplicate keys are allowed.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult reports what the broker assigned to the published message.
// Fields not meaningful for a given broker are zero.
type PublishResult struct {
	MessageID string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	Attributes() map[string]string

	ID() string
	Topic() string
	Timestamp() time.Time

	// Ack marks the message processed. Acking twice is a no-op.
	Ack(ctx context.Context) error
	// Nack asks for redelivery where the broker supports it.
	Nack(ctx context.Context) error
}
