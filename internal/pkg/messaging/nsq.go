package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQChannelRequired is returned when Consume is called without a channel.
	ErrNSQChannelRequired = errors.New("messaging: nsq channel is required")
	// ErrNSQProducerAddrRequired is returned when publishing without a producer address.
	ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")
	// ErrNSQConsumerAddrsRequired is returned when no nsqd or lookupd address is configured.
	ErrNSQConsumerAddrsRequired = errors.New("messaging: nsq consumer addresses are required")
)

// NSQConfig configures the NSQ driver. ProducerAddr may be empty for a
// consume-only client.
type NSQConfig struct {
	ProducerAddr         string
	ConsumerNSQDAddrs    []string
	ConsumerLookupdAddrs []string
	ProducerConfig       *nsq.Config
	ConsumerConfig       *nsq.Config
}

// NSQ implements Messaging on top of go-nsq.
type NSQ struct {
	producer      *nsq.Producer
	nsqdAddrs     []string
	lookupdAddrs  []string
	consumerConf  *nsq.Config
	mu            sync.Mutex
	liveConsumers []*nsq.Consumer
	closed        bool
}

// NewNSQ builds the NSQ client.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	var producer *nsq.Producer
	if cfg.ProducerAddr != "" {
		conf := cfg.ProducerConfig
		if conf == nil {
			conf = nsq.NewConfig()
		}
		p, err := nsq.NewProducer(cfg.ProducerAddr, conf)
		if err != nil {
			return nil, fmt.Errorf("messaging: nsq producer: %w", err)
		}
		p.SetLoggerLevel(nsq.LogLevelError)
		producer = p
	}

	conf := cfg.ConsumerConfig
	if conf == nil {
		conf = nsq.NewConfig()
	}

	return &NSQ{
		producer:     producer,
		nsqdAddrs:    append([]string(nil), cfg.ConsumerNSQDAddrs...),
		lookupdAddrs: append([]string(nil), cfg.ConsumerLookupdAddrs...),
		consumerConf: conf,
	}, nil
}

func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if n.producer == nil {
		return PublishResult{}, ErrNSQProducerAddrRequired
	}

	if err := n.producer.Publish(destination, msg.Body); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(n.nsqdAddrs) == 0 && len(n.lookupdAddrs) == 0 {
		return ErrNSQConsumerAddrsRequired
	}

	co := buildConsumeOptions(opts)
	if co.channel == "" {
		return ErrNSQChannelRequired
	}

	conf := *n.consumerConf
	if co.maxInFlight > 0 {
		conf.MaxInFlight = co.maxInFlight
	} else if conf.MaxInFlight < co.concurrency {
		conf.MaxInFlight = co.concurrency
	}

	consumer, err := nsq.NewConsumer(source, co.channel, &conf)
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		wrapped := &nsqMessage{topic: source, msg: m}
		herr := runHandler(ctx, "nsq", handler, wrapped)
		if !co.autoAck || wrapped.done.Load() {
			return herr
		}
		if herr != nil {
			return wrapped.Nack(ctx)
		}
		return wrapped.Ack(ctx)
	}), co.concurrency)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		consumer.Stop()
		<-consumer.StopChan
		return errors.New("messaging: nsq client closed")
	}
	n.liveConsumers = append(n.liveConsumers, consumer)
	n.mu.Unlock()

	if len(n.lookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.lookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.nsqdAddrs)
	}
	if err != nil {
		consumer.Stop()
		<-consumer.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

// Close stops every consumer, then the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := append([]*nsq.Consumer(nil), n.liveConsumers...)
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	if n.producer != nil {
		n.producer.Stop()
	}

	return nil
}

type nsqMessage struct {
	topic string
	msg   *nsq.Message
	done  atomic.Bool
}

func (m *nsqMessage) Body() []byte                   { return m.msg.Body }
func (m *nsqMessage) Key() []byte                    { return nil }
func (m *nsqMessage) Headers() []Header              { return nil }
func (m *nsqMessage) Attributes() map[string]string  { return nil }
func (m *nsqMessage) ID() string                     { return fmt.Sprintf("%x", m.msg.ID) }
func (m *nsqMessage) Topic() string                  { return m.topic }
func (m *nsqMessage) Timestamp() time.Time           { return time.Unix(0, m.msg.Timestamp) }

func (m *nsqMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.done.Swap(true) {
		m.msg.Finish()
	}
	return nil
}

func (m *nsqMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.done.Swap(true) {
		m.msg.Requeue(0)
	}
	return nil
}
