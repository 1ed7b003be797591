package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultBrokerTimeout = 2 * time.Second
	defaultBacklog       = 256
)

var (
	ErrBacklogFull     = errors.New("event backlog is full")
	ErrPublisherClosed = errors.New("event publisher is closed")
)

// AMQPPublisher writes events as persistent JSON messages to a durable queue
// on the default exchange. Publish only enqueues; a background worker owns the
// broker connection, so a slow or dead broker never blocks the caller. The
// connection is opened lazily and reopened after a failure.
type AMQPPublisher struct {
	url     string
	queue   string
	logger  *zap.Logger
	timeout time.Duration

	backlog   chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	// owned by the worker goroutine
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string, logger *zap.Logger) *AMQPPublisher {
	return newAMQPPublisher(url, queue, logger, defaultBrokerTimeout, defaultBacklog)
}

func newAMQPPublisher(url, queue string, logger *zap.Logger, timeout time.Duration, backlog int) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AMQPPublisher{
		url:     url,
		queue:   queue,
		logger:  logger,
		timeout: timeout,
		backlog: make(chan Event, backlog),
		done:    make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish enqueues ev for delivery. It fails only when ctx is done, the
// publisher is closed or the backlog is full.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.backlog <- ev:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrBacklogFull, ev.Type)
	}
}

// Close stops the worker and releases the broker connection. Events still in
// the backlog are dropped.
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()
	return nil
}

func (p *AMQPPublisher) run() {
	defer p.wg.Done()
	defer p.reset()

	for {
		select {
		case <-p.done:
			return
		case ev := <-p.backlog:
			if err := p.send(ev); err != nil {
				p.logger.Warn("event not delivered to broker",
					zap.String("type", string(ev.Type)),
					zap.String("id", ev.Reservation.ID),
					zap.Error(err),
				)
			}
		}
	}
}

func (p *AMQPPublisher) send(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.ensureChannel(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		MessageId:    ev.Reservation.ID,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) ensureChannel() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.reset()

	// DefaultDial bounds both the TCP connect and the AMQP handshake.
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(p.timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.logger.Info("connected to message broker", zap.String("queue", p.queue))
	return nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
