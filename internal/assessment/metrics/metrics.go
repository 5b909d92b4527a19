package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Warning kinds counted by RuleWarnings.
const (
	WarningUnparsableCondition = "unparsable_condition"
	WarningMissingQuestion     = "missing_question"
	WarningUnsupportedAction   = "unsupported_action"
)

// Metrics provides observability for the assessment module.
type Metrics struct {
	// Sessions started, by whether an in-progress session was resumed
	SessionsStarted *prometheus.CounterVec

	SessionsCompleted prometheus.Counter

	// Answers submitted, by outcome: ok, conflict, not_found, invalid, error
	AnswersSubmitted *prometheus.CounterVec

	RuleWarnings *prometheus.CounterVec

	// Rule actions applied, by action
	RuleActions *prometheus.CounterVec

	OperationLatency *prometheus.HistogramVec

	ReprioritizeLatency prometheus.Histogram

	// Best-effort lookups (profile, preliminary scores) that failed
	CollaboratorFailures *prometheus.CounterVec
}

// New creates a new Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_assessment_sessions_started_total",
			Help: "Total sessions started, labelled by whether an existing session was resumed",
		}, []string{"resumed"}),

		SessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "migratio_assessment_sessions_completed_total",
			Help: "Total sessions that reached the completed state",
		}),

		AnswersSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_assessment_answers_submitted_total",
			Help: "Total answer submissions by outcome",
		}, []string{"outcome"}),

		RuleWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_assessment_rule_warnings_total",
			Help: "Rule evaluation and catalog reference warnings by kind",
		}, []string{"kind"}),

		RuleActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_assessment_rule_actions_total",
			Help: "Matched rule actions applied to sessions",
		}, []string{"action"}),

		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "migratio_assessment_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		ReprioritizeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "migratio_assessment_reprioritize_duration_seconds",
			Help:    "Duration of scoring and sorting a remaining list",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		CollaboratorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "migratio_assessment_collaborator_failures_total",
			Help: "Failed synchronous collaborator lookups that were tolerated",
		}, []string{"collaborator"}),
	}
}

func (m *Metrics) IncrementSessionStarted(resumed bool) {
	if m != nil {
		label := "false"
		if resumed {
			label = "true"
		}
		m.SessionsStarted.WithLabelValues(label).Inc()
	}
}

func (m *Metrics) IncrementSessionCompleted() {
	if m != nil {
		m.SessionsCompleted.Inc()
	}
}

func (m *Metrics) IncrementAnswer(outcome string) {
	if m != nil {
		m.AnswersSubmitted.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementRuleWarning(kind string) {
	if m != nil {
		m.RuleWarnings.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementRuleAction(action string) {
	if m != nil {
		m.RuleActions.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveReprioritize(d time.Duration) {
	if m != nil {
		m.ReprioritizeLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCollaboratorFailure(collaborator string) {
	if m != nil {
		m.CollaboratorFailures.WithLabelValues(collaborator).Inc()
	}
}
