package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	"migratio/pkg/platform/sentinel"
)

var _ ports.EventEmitter = (*KafkaPublisher)(nil)

// KafkaPublisher writes events as JSON records keyed by user id, so one
// user's events stay ordered within a partition.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *Metrics
}

type PublisherOption func(*KafkaPublisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPublisherMetrics(m *Metrics) PublisherOption {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func NewKafkaPublisher(client *kgo.Client, topic string, opts ...PublisherOption) *KafkaPublisher {
	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit buffers the record without waiting for the broker. A full producer
// buffer rejects the event with sentinel.ErrUnavailable.
func (p *KafkaPublisher) Emit(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}
	kind := string(event.Kind)
	var rejected error
	p.client.TryProduce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err == nil {
			return
		}
		if errors.Is(err, kgo.ErrMaxBuffered) {
			rejected = err
		}
		p.metrics.IncrementTask(kind, OutcomeDropped)
		p.logger.ErrorContext(ctx, "failed to publish enrichment event",
			"task", kind,
			"event_id", event.ID,
			"error", err,
		)
	})
	if rejected != nil {
		return fmt.Errorf("publish event: %w", errors.Join(rejected, sentinel.ErrUnavailable))
	}
	p.metrics.IncrementEmitted(kind)
	return nil
}

// Close flushes buffered records.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Consumer reads events from a consumer group and hands them to a Processor.
// Transient failures (sentinel.ErrUnavailable) are retried with backoff; a
// record is committed once it succeeded or ran out of attempts.
type Consumer struct {
	client    *kgo.Client
	processor Processor
	logger    *slog.Logger
	metrics   *Metrics
	attempts  int
	backoff   time.Duration
}

type ConsumerOption func(*Consumer)

func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithConsumerMetrics(m *Metrics) ConsumerOption {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// WithRetry sets how often a transiently failing record is attempted and the
// initial backoff, which doubles per attempt.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

func NewConsumer(client *kgo.Client, processor Processor, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:    client,
		processor: processor,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		attempts:  3,
		backoff:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		var done []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			if ctx.Err() != nil {
				return
			}
			c.handleRecord(ctx, record)
			done = append(done, record)
		})
		if len(done) == 0 {
			continue
		}
		if err := c.client.CommitRecords(context.WithoutCancel(ctx), done...); err != nil {
			c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
		}
	}
}

func (c *Consumer) handleRecord(ctx context.Context, record *kgo.Record) {
	var event models.Event
	if err := json.Unmarshal(record.Value, &event); err != nil || !event.Kind.IsValid() {
		c.metrics.IncrementTask(string(event.Kind), OutcomeInvalid)
		c.logger.ErrorContext(ctx, "discarding malformed enrichment event",
			"partition", record.Partition,
			"offset", record.Offset,
			"error", err,
		)
		return
	}

	kind := string(event.Kind)
	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := c.processor.Handle(ctx, event)
		c.metrics.ObserveTask(kind, time.Since(start))
		if err == nil {
			c.metrics.IncrementTask(kind, OutcomeOK)
			return
		}
		retryable := errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
		if !retryable || attempt >= c.attempts || ctx.Err() != nil {
			c.metrics.IncrementTask(kind, OutcomeFailed)
			c.logger.ErrorContext(ctx, "background task failed",
				"task", kind,
				"event_id", event.ID,
				"user_id", event.UserID.String(),
				"attempts", attempt,
				"error", err,
			)
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
