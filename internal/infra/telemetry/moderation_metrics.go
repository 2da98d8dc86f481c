package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexaid/moderation-service/internal/core/domain"
)

// ModerationMetrics counts applied, rejected, and conflicting moderation actions.
type ModerationMetrics struct {
	actions   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	conflicts prometheus.Counter
}

// NewModerationMetrics registers the moderation action collectors.
func NewModerationMetrics(namespace string, reg prometheus.Registerer) (*ModerationMetrics, error) {
	if namespace == "" {
		namespace = "moderation"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "actions_total",
		Help:      "Total number of applied moderation actions partitioned by action and outcome.",
	}, []string{"action", "outcome"})

	if err := reg.Register(actions); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				actions = existing
			} else {
				return nil, fmt.Errorf("existing actions collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register actions collector: %w", err)
		}
	}

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "rejected_total",
		Help:      "Total number of moderation actions rejected by the policy.",
	}, []string{"action"})

	if err := reg.Register(rejected); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				rejected = existing
			} else {
				return nil, fmt.Errorf("existing rejected collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register rejected collector: %w", err)
		}
	}

	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "version_conflicts_total",
		Help:      "Total number of optimistic concurrency conflicts while applying actions.",
	})

	if err := reg.Register(conflicts); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				conflicts = existing
			} else {
				return nil, fmt.Errorf("existing conflicts collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register conflicts collector: %w", err)
		}
	}

	return &ModerationMetrics{
		actions:   actions,
		rejected:  rejected,
		conflicts: conflicts,
	}, nil
}

// IncAction records an applied action with its policy outcome.
func (m *ModerationMetrics) IncAction(kind domain.ActionKind, outcome domain.Outcome) {
	m.actions.WithLabelValues(string(kind), string(outcome)).Inc()
}

// IncRejected records an action the policy refused.
func (m *ModerationMetrics) IncRejected(kind domain.ActionKind) {
	m.rejected.WithLabelValues(string(kind)).Inc()
}

// IncVersionConflict records a lost optimistic concurrency race.
func (m *ModerationMetrics) IncVersionConflict() {
	m.conflicts.Inc()
}
