package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/event"
	"github.com/fumble-dev/hire-me/internal/metrics"
)

// Publisher owns the long-lived producer connection. It is constructed once
// at bootstrap and injected into whichever component needs to emit events;
// there is no ambient global.
//
// Connect failures never crash the owning process: the publisher stays
// degraded, Publish fails fast with a typed broker_unavailable error, and
// every later Publish re-attempts the connection.
type Publisher struct {
	url      string
	exchange string
	timeout  time.Duration
	lg       zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange string, timeout time.Duration, lg zerolog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		url:      url,
		exchange: exchange,
		timeout:  timeout,
		lg:       lg.With().Str("component", "rabbitmq_publisher").Logger(),
	}
}

// Connect dials the broker and declares the mail topology. Callers treat a
// returned error as degradation, not a fatal condition.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked(context.Background())
}

// Degraded reports whether the producer connection is currently down. Health
// checks read this instead of scraping logs.
func (p *Publisher) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn == nil || p.conn.IsClosed() || p.ch == nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

// Publish serializes the envelope and emits it on the mail exchange. It
// waits only for broker-level write acknowledgment (bounded by the publish
// timeout); callers must treat the call as fire-and-forget and never fail
// their own request on a publish error.
func (p *Publisher) Publish(ctx context.Context, evt event.Envelope) error {
	body, err := evt.Marshal()
	if err != nil {
		metrics.EventPublishFailed(string(evt.Kind))
		return domain.ErrInternal(fmt.Errorf("marshal envelope: %w", err))
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnectedLocked(ctx); err != nil {
		metrics.EventPublishFailed(string(evt.Kind))
		return domain.ErrBrokerUnavailable(err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		evt.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		// channel or connection level failure; drop state so the next
		// publish redials
		p.resetLocked()
		metrics.EventPublishFailed(string(evt.Kind))
		return domain.ErrBrokerUnavailable(fmt.Errorf("publish %s: %w", evt.RoutingKey(), err))
	}

	metrics.EventPublished(string(evt.Kind))
	p.lg.Debug().Str("routing_key", evt.RoutingKey()).Str("event_id", evt.ID).Msg("event published")
	return nil
}

func (p *Publisher) ensureConnectedLocked(ctx context.Context) error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connectLocked(ctx)
}

// connectLocked redials under the same budget as the publish itself: the
// configured timeout, shrunk further by the caller's deadline. A stalling
// broker must not pin the mutex for amqp's default 30s while requests queue
// behind it.
func (p *Publisher) connectLocked(ctx context.Context) error {
	p.resetLocked()

	budget := p.timeout
	if d, ok := ctx.Deadline(); ok {
		if remain := time.Until(d); remain < budget {
			budget = remain
		}
	}
	if budget <= 0 {
		return fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(budget),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := declareMailTopology(ch, p.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	p.lg.Info().Str("exchange", p.exchange).Msg("rabbitmq producer connected")
	return nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
