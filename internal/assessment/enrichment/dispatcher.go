package enrichment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	"migratio/pkg/platform/circuit"
	"migratio/pkg/platform/sentinel"
)

var _ ports.EventEmitter = (*Dispatcher)(nil)

// Dispatcher processes events on a bounded in-process worker pool. Emit never
// waits for a free slot: a full queue drops the event. A circuit breaker per
// event kind sheds work while a collaborator keeps failing.
type Dispatcher struct {
	processor Processor
	logger    *slog.Logger
	metrics   *Metrics
	workers   int
	buffer    int
	breakerOp []circuit.Option

	queue    chan models.Event
	breakers map[models.EventKind]*circuit.Breaker
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithBuffer(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.buffer = n
		}
	}
}

// WithBreakerOptions configures the per-kind circuit breakers.
func WithBreakerOptions(opts ...circuit.Option) DispatcherOption {
	return func(d *Dispatcher) {
		d.breakerOp = append(d.breakerOp, opts...)
	}
}

// NewDispatcher starts the worker pool. Close must be called to stop it.
func NewDispatcher(processor Processor, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		processor: processor,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:   4,
		buffer:    256,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.queue = make(chan models.Event, d.buffer)
	d.breakers = make(map[models.EventKind]*circuit.Breaker)
	for _, kind := range []models.EventKind{
		models.EventAnswerRecorded,
		models.EventNlpAnalysisRequested,
		models.EventPreliminaryScoresComputed,
	} {
		d.breakers[kind] = circuit.New(string(kind), d.breakerOp...)
	}

	for range d.workers {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Emit queues event for processing. It returns sentinel.ErrUnavailable when
// the queue is full or the dispatcher is closed; the event is then lost.
func (d *Dispatcher) Emit(ctx context.Context, event models.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("dispatcher closed: %w", sentinel.ErrUnavailable)
	}
	select {
	case d.queue <- event:
		d.metrics.IncrementEmitted(string(event.Kind))
		return nil
	default:
		d.metrics.IncrementTask(string(event.Kind), OutcomeDropped)
		d.logger.WarnContext(ctx, "enrichment queue full, event dropped",
			"task", string(event.Kind),
			"event_id", event.ID,
			"user_id", event.UserID.String(),
		)
		return fmt.Errorf("enrichment queue full: %w", sentinel.ErrUnavailable)
	}
}

// Close stops accepting events and waits for queued ones to finish or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.process(context.Background(), event)
	}
}

func (d *Dispatcher) process(ctx context.Context, event models.Event) {
	kind := string(event.Kind)
	breaker, ok := d.breakers[event.Kind]
	if !ok {
		d.metrics.IncrementTask(kind, OutcomeInvalid)
		d.logger.ErrorContext(ctx, "background task failed",
			"task", kind,
			"event_id", event.ID,
			"error", "unknown event kind",
		)
		return
	}
	if !breaker.Allow() {
		d.metrics.IncrementTask(kind, OutcomeCircuitOpen)
		d.logger.WarnContext(ctx, "background task skipped, circuit open",
			"task", kind,
			"event_id", event.ID,
			"user_id", event.UserID.String(),
		)
		return
	}

	start := time.Now()
	err := d.processor.Handle(ctx, event)
	d.metrics.ObserveTask(kind, time.Since(start))
	if err != nil {
		_, change := breaker.RecordFailure()
		if change.Opened {
			d.metrics.SetBreakerOpen(kind, true)
			d.logger.WarnContext(ctx, "enrichment circuit opened", "task", kind)
		}
		d.metrics.IncrementTask(kind, OutcomeFailed)
		d.logger.ErrorContext(ctx, "background task failed",
			"task", kind,
			"event_id", event.ID,
			"user_id", event.UserID.String(),
			"session_id", event.SessionID.String(),
			"question_id", string(event.QuestionID),
			"error", err,
		)
		return
	}
	if _, change := breaker.RecordSuccess(); change.Closed {
		d.metrics.SetBreakerOpen(kind, false)
		d.logger.InfoContext(ctx, "enrichment circuit closed", "task", kind)
	}
	d.metrics.IncrementTask(kind, OutcomeOK)
}
