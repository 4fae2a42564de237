package messaging

type consumeOptions struct {
	concurrency  int
	maxInFlight  int
	autoAck      bool
	group        string // Kafka consumer group
	channel      string // NSQ channel
	queueGroup   string // NATS queue group
	subscription string // Pub/Sub subscription
}

// ConsumeOption tunes a Consume call. Broker-specific names (group, channel,
// queue group, subscription) can all be set; each driver reads only its own.
type ConsumeOption func(*consumeOptions)

func buildConsumeOptions(opts []ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	if co.concurrency < 1 {
		co.concurrency = 1
	}

	return co
}

// WithConcurrency sets how many handler goroutines run in parallel.
func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

// WithMaxInFlight caps unacknowledged messages outstanding at once.
func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

// WithAutoAck makes the driver ack or nack based on the handler's return.
func WithAutoAck(autoAck bool) ConsumeOption {
	return func(o *consumeOptions) { o.autoAck = autoAck }
}

// WithGroup sets the Kafka consumer group.
func WithGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.group = group }
}

// WithChannel sets the NSQ channel.
func WithChannel(channel string) ConsumeOption {
	return func(o *consumeOptions) { o.channel = channel }
}

// WithQueueGroup sets the NATS queue group.
func WithQueueGroup(queueGroup string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = queueGroup }
}

// WithSubscription sets the Pub/Sub subscription name.
func WithSubscription(subscription string) ConsumeOption {
	return func(o *consumeOptions) { o.subscription = subscription }
}
