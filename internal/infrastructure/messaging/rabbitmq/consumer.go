package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/fumble-dev/hire-me/internal/event"
	"github.com/fumble-dev/hire-me/internal/metrics"
)

// Handler is the app-layer contract the consumer calls per message.
type Handler interface {
	HandleMail(ctx context.Context, evt event.Envelope) error
}

type ConsumerConfig struct {
	RabbitURL string
	Exchange  string
	Queue     string
	Prefetch  int
	Tag       string

	// MaxReconnects bounds the supervisor's reconnect attempts. Zero means
	// the default; a misconfigured broker should eventually surface as a
	// dead process, not an silent infinite loop.
	MaxReconnects int

	// DispatchTimeout bounds a single message's handling so one stuck SMTP
	// call cannot stall the whole loop.
	DispatchTimeout time.Duration
}

const (
	defaultMaxReconnects   = 20
	defaultDispatchTimeout = 30 * time.Second
)

// Consumer is the long-lived subscriber feeding the mail dispatcher. All
// instances consume the same named queue, so partitioned work is shared
// competing-consumer style and no message is handled by two instances.
type Consumer struct {
	url             string
	exchange        string
	queue           string
	prefetch        int
	tag             string
	maxReconnects   int
	dispatchTimeout time.Duration

	lg      zerolog.Logger
	handler Handler

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}

	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

func NewConsumer(cfg ConsumerConfig, h Handler, lg zerolog.Logger) *Consumer {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = MailQueue
	}
	if cfg.MaxReconnects <= 0 {
		cfg.MaxReconnects = defaultMaxReconnects
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = defaultDispatchTimeout
	}
	return &Consumer{
		url:             cfg.RabbitURL,
		exchange:        cfg.Exchange,
		queue:           cfg.Queue,
		prefetch:        cfg.Prefetch,
		tag:             cfg.Tag,
		maxReconnects:   cfg.MaxReconnects,
		dispatchTimeout: cfg.DispatchTimeout,
		handler:         h,
		lg:              lg.With().Str("component", "rabbitmq_consumer").Logger(),
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.handler == nil {
		return fmt.Errorf("nil handler")
	}

	c.doneCh = make(chan struct{})
	c.running = true
	go c.run(ctx)
	return nil
}

func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	doneCh := c.doneCh
	c.running = false
	c.mu.Unlock()

	c.closeConn()

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run supervises connect/consume cycles with bounded exponential backoff.
func (c *Consumer) run(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		doneCh := c.doneCh
		c.doneCh = nil
		c.running = false
		c.mu.Unlock()

		if doneCh != nil {
			close(doneCh)
		}
	}()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second
	attempts := 0

	for {
		select {
		case <-ctx.Done():
			c.lg.Info().Msg("consumer supervisor exiting (ctx cancelled)")
			return
		default:
		}
		if !c.isRunning() {
			c.lg.Info().Msg("consumer supervisor exiting (stopped)")
			return
		}

		if err := c.connectAndDeclare(); err != nil {
			attempts++
			if attempts >= c.maxReconnects {
				c.lg.Error().Err(err).Int("attempts", attempts).Msg("reconnect budget exhausted; giving up")
				return
			}
			c.lg.Error().Err(err).Dur("backoff", backoff).Int("attempt", attempts).Msg("connect failed; retrying")
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = minDur(backoff*2, maxBackoff)
			continue
		}

		attempts = 0
		backoff = 1 * time.Second
		c.consumeLoop(ctx)

		select {
		case <-ctx.Done():
			return
		default:
		}

		c.lg.Warn().Dur("backoff", backoff).Msg("deliveries closed; reconnecting")
		c.closeConn()

		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = minDur(backoff*2, maxBackoff)
	}
}

func (c *Consumer) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Consumer) connectAndDeclare() error {
	c.closeConn()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("consume channel: %w", err)
	}

	if err := declareMailTopology(ch, c.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if c.prefetch > 0 {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("qos: %w", err)
		}
	}

	dlv, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("consume: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.ch = ch
	c.deliveries = dlv
	c.mu.Unlock()

	c.lg.Info().
		Str("exchange", c.exchange).
		Str("queue", c.queue).
		Int("prefetch", c.prefetch).
		Msg("rabbitmq consumer ready")
	return nil
}

// consumeLoop acks or nacks every delivery only after handling completes,
// so at-least-once semantics are explicit. A failing message is logged and
// skipped; the next delivery is always attempted.
func (c *Consumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.lg.Info().Msg("consume loop context cancelled")
			return

		case d, ok := <-c.deliveries:
			if !ok {
				c.lg.Warn().Msg("deliveries channel closed")
				return
			}

			start := time.Now()
			err := c.handleDelivery(ctx, d)

			if err == nil {
				_ = d.Ack(false)
				c.lg.Info().Str("routing_key", d.RoutingKey).Dur("took", time.Since(start)).Msg("message processed")
				continue
			}

			// per-message isolation: drop the failed delivery and move on
			_ = d.Nack(false, false)
			c.lg.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("handle failed; message skipped")
		}
	}
}

// handleDelivery returns nil when the delivery should be acked, including
// malformed payloads and unknown kinds: those are logged and dropped so a
// single bad message can never wedge the queue.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	evt, err := event.Decode(d.Body)
	if err != nil {
		metrics.EventSkipped("unknown", "bad_json")
		c.lg.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("undecodable message; skipping")
		return nil
	}

	switch evt.Kind {
	case event.KindPasswordReset, event.KindApplicationStatus:
	default:
		metrics.EventSkipped(string(evt.Kind), "unknown_kind")
		c.lg.Warn().Str("kind", string(evt.Kind)).Str("event_id", evt.ID).Msg("unknown event kind; skipping")
		return nil
	}

	hctx, cancel := context.WithTimeout(ctx, c.dispatchTimeout)
	defer cancel()

	if err := c.handler.HandleMail(hctx, evt); err != nil {
		return fmt.Errorf("handle %s: %w", evt.Kind, err)
	}

	metrics.EventConsumed(string(evt.Kind))
	return nil
}

func (c *Consumer) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.deliveries = nil
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
