package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MikeMC777/mavunohub/internal/events"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

// Publisher writes envelopes to one topic, partitioned by correlation id so
// every event of an order stays in order.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (p *Publisher) Publish(ctx context.Context, ev events.Envelope) error {
	msg, err := Message(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error { return p.w.Close() }

// Message encodes ev as a kafka message.
func Message(ev events.Envelope) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.CorrelationID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.EventType)},
			{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}, nil
}

// Handler processes one decoded envelope.
type Handler func(ctx context.Context, ev events.Envelope) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	retryBackoff    = 200 * time.Millisecond
	maxRetryBackoff = 10 * time.Second
)

type Consumer struct {
	r       reader
	backoff time.Duration
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{r: kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	}), backoff: retryBackoff}
}

// Run fetches messages until ctx is cancelled. A message is committed only
// once the handler succeeds; a failing handler is retried with backoff on the
// same message so later offsets never overtake it. Undecodable messages are
// logged and committed.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}
		var ev events.Envelope
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			slog.ErrorContext(ctx, "kafka: undecodable message", "topic", m.Topic, "offset", m.Offset, "err", err)
		} else if !c.handle(ctx, h, m, ev) {
			return nil
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle retries h until it succeeds. It reports false when ctx ends first.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message, ev events.Envelope) bool {
	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, ev)
		if err == nil {
			return true
		}
		slog.ErrorContext(ctx, "kafka: handler failed", "event_type", ev.EventType, "event_id", ev.EventID,
			"offset", m.Offset, "attempt", attempt, "retry_in", wait, "err", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait *= 2; wait > maxRetryBackoff {
			wait = maxRetryBackoff
		}
	}
}

func (c *Consumer) Close() error { return c.r.Close() }
