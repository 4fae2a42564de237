package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired is returned when neither a client nor a project
// ID is configured.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub driver.
type PubSubConfig struct {
	ProjectID     string
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub implements Messaging on top of Google Pub/Sub. Publishers are
// created lazily per topic and reused.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
	closed     bool
}

// NewPubSub builds the Pub/Sub client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	client := cfg.Client
	if client == nil {
		if cfg.ProjectID == "" {
			return nil, ErrPubSubProjectIDRequired
		}
		c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
		if err != nil {
			return nil, fmt.Errorf("messaging: pubsub client: %w", err)
		}
		client = c
	}

	return &PubSub{client: client, publishers: map[string]*pubsub.Publisher{}}, nil
}

func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	pub, err := p.publisher(destination)
	if err != nil {
		return PublishResult{}, err
	}

	// Pub/Sub has no binary headers; fold them into the string attributes so
	// correlation IDs survive the trip.
	attrs := make(map[string]string, len(msg.Attributes)+len(msg.Headers))
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	for _, h := range msg.Headers {
		if h.Key != "" {
			attrs[h.Key] = string(h.Value)
		}
	}

	res := pub.Publish(ctx, &pubsub.Message{Data: msg.Body, Attributes: attrs})
	id, err := res.Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination}, nil
}

// Consume receives from the subscription named by WithSubscription, or from
// source itself when the option is absent.
func (p *PubSub) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	co := buildConsumeOptions(opts)
	subscription := co.subscription
	if subscription == "" {
		subscription = source
	}

	sub := p.client.Subscriber(subscription)
	sub.ReceiveSettings.NumGoroutines = co.concurrency
	if co.maxInFlight > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight
	}

	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		wrapped := &pubsubMessage{topic: source, msg: m}
		herr := runHandler(ctx, "pubsub", handler, wrapped)
		if !co.autoAck || wrapped.done.Load() {
			return
		}
		if herr != nil {
			_ = wrapped.Nack(ctx)
			return
		}
		_ = wrapped.Ack(ctx)
	})
}

// Close stops the publishers and the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := make([]*pubsub.Publisher, 0, len(p.publishers))
	for _, pub := range p.publishers {
		pubs = append(pubs, pub)
	}
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}

	return p.client.Close()
}

func (p *PubSub) publisher(topic string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("messaging: pubsub client closed")
	}
	if pub, ok := p.publishers[topic]; ok {
		return pub, nil
	}

	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub

	return pub, nil
}

type pubsubMessage struct {
	topic string
	msg   *pubsub.Message
	done  atomic.Bool
}

func (m *pubsubMessage) Body() []byte { return m.msg.Data }
func (m *pubsubMessage) Key() []byte  { return nil }

func (m *pubsubMessage) Headers() []Header {
	if len(m.msg.Attributes) == 0 {
		return nil
	}
	headers := make([]Header, 0, len(m.msg.Attributes))
	for k, v := range m.msg.Attributes {
		headers = append(headers, Header{Key: k, Value: []byte(v)})
	}
	return headers
}

func (m *pubsubMessage) Attributes() map[string]string { return m.msg.Attributes }

func (m *pubsubMessage) ID() string           { return m.msg.ID }
func (m *pubsubMessage) Topic() string        { return m.topic }
func (m *pubsubMessage) Timestamp() time.Time { return m.msg.PublishTime }

func (m *pubsubMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.done.Swap(true) {
		m.msg.Ack()
	}
	return nil
}

func (m *pubsubMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.done.Swap(true) {
		m.msg.Nack()
	}
	return nil
}
