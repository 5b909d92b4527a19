package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"migratio/internal/assessment/models"
	"migratio/pkg/platform/circuit"
	"migratio/pkg/platform/sentinel"
)

// recordingProcessor collects handled events and fails while err is set.
type recordingProcessor struct {
	mu      sync.Mutex
	handled []models.Event
	err     error
	block   chan struct{}
}

func (p *recordingProcessor) Handle(_ context.Context, event models.Event) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handled = append(p.handled, event)
	return p.err
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handled)
}

type DispatcherSuite struct {
	suite.Suite
	metrics *Metrics
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.metrics = NewMetrics(prometheus.NewRegistry())
}

func (s *DispatcherSuite) TestProcessesEventsAndDrainsOnClose() {
	proc := &recordingProcessor{}
	d := NewDispatcher(proc, WithWorkers(2), WithMetrics(s.metrics))

	for range 5 {
		s.Require().NoError(d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)))
	}
	s.Require().NoError(d.Close(context.Background()))

	s.Equal(5, proc.count())
	s.Equal(5.0, testutil.ToFloat64(s.metrics.Tasks.WithLabelValues(string(models.EventAnswerRecorded), OutcomeOK)))

	err := d.Emit(context.Background(), newEvent(models.EventAnswerRecorded))
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func (s *DispatcherSuite) TestFullQueueDropsWithoutBlocking() {
	proc := &recordingProcessor{block: make(chan struct{})}
	d := NewDispatcher(proc, WithWorkers(1), WithBuffer(1), WithMetrics(s.metrics))

	// One event occupies the worker, one fills the buffer.
	s.Require().NoError(d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)))
	s.Eventually(func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	s.Require().NoError(d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)))

	done := make(chan error, 1)
	go func() { done <- d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)) }()
	select {
	case err := <-done:
		s.ErrorIs(err, sentinel.ErrUnavailable)
	case <-time.After(time.Second):
		s.FailNow("Emit blocked on a full queue")
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Tasks.WithLabelValues(string(models.EventAnswerRecorded), OutcomeDropped)))

	close(proc.block)
	s.Require().NoError(d.Close(context.Background()))
	s.Equal(2, proc.count())
}

func (s *DispatcherSuite) TestBreakerShedsFailingKind() {
	proc := &recordingProcessor{err: errors.New("profile service down")}
	d := NewDispatcher(proc,
		WithWorkers(1),
		WithMetrics(s.metrics),
		WithBreakerOptions(circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)),
	)

	for range 4 {
		s.Require().NoError(d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)))
	}
	s.Require().NoError(d.Emit(context.Background(), newEvent(models.EventPreliminaryScoresComputed)))
	s.Require().NoError(d.Close(context.Background()))

	kind := string(models.EventAnswerRecorded)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Tasks.WithLabelValues(kind, OutcomeFailed)))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Tasks.WithLabelValues(kind, OutcomeCircuitOpen)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BreakerOpen.WithLabelValues(kind)))
	s.Equal(3, proc.count(), "other kinds keep their own breaker")
}

func TestDispatcherCloseHonoursContext(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	d := NewDispatcher(proc, WithWorkers(1))
	require.NoError(t, d.Emit(context.Background(), newEvent(models.EventAnswerRecorded)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(proc.block)
	require.NoError(t, d.Close(context.Background()))
}
