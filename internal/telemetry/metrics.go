// Package telemetry exposes Prometheus counters for the decision loop.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Garsondee/Mine-Sense/internal/decision"
)

const namespace = "minesense"

// Metrics holds every collector. Build one per registry.
type Metrics struct {
	Ticks          *prometheus.CounterVec
	TickDuration   prometheus.Histogram
	Proposals      *prometheus.CounterVec
	Approvals      *prometheus.CounterVec
	Stale          *prometheus.CounterVec
	LockedFlags    prometheus.Gauge
	ManualPresses  *prometheus.CounterVec
	GamesCompleted *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ticks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Decision ticks by outcome",
		}, []string{"outcome"}),
		TickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent reading, solving and validating per tick",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		Proposals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_total",
			Help:      "Moves surfaced for approval by solver tier and action",
		}, []string{"tier", "action"}),
		Approvals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approvals_total",
			Help:      "Approved and executed moves by action",
		}, []string{"action"}),
		Stale: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discarded_total",
			Help:      "Proposals discarded without execution by reason",
		}, []string{"reason"}),
		LockedFlags: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locked_flags",
			Help:      "Coordinates currently locked against clicks",
		}),
		ManualPresses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_presses_total",
			Help:      "Pointer presses made by hand on the surface",
		}, []string{"button"}),
		GamesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Finished games by result",
		}, []string{"result"}),
	}
}

// RecordTick counts one tick and its duration.
func (m *Metrics) RecordTick(o decision.Outcome, d time.Duration) {
	m.Ticks.WithLabelValues(o.String()).Inc()
	if o != decision.OutcomePaused && o != decision.OutcomeThrottled {
		m.TickDuration.Observe(d.Seconds())
	}
}

// Observe is a decision.Controller event observer.
func (m *Metrics) Observe(ev decision.Event) {
	if ev.Proposal == nil {
		return
	}
	mv := ev.Proposal.Move
	switch {
	case ev.To == decision.StateAwaitingApproval:
		m.Proposals.WithLabelValues(mv.Tier.String(), mv.Action.String()).Inc()
	case ev.To == decision.StateExecuted:
		m.Approvals.WithLabelValues(mv.Action.String()).Inc()
	case ev.To == decision.StateStale && ev.Reason == decision.ReasonLocked:
		m.Stale.WithLabelValues("locked").Inc()
	case ev.To == decision.StateStale:
		m.Stale.WithLabelValues("stale").Inc()
	case ev.From == decision.StateAwaitingApproval && ev.To == decision.StateIdle:
		m.Stale.WithLabelValues(ev.Reason).Inc()
	}
}

// SetLocked records the locked-set size.
func (m *Metrics) SetLocked(n int) {
	m.LockedFlags.Set(float64(n))
}

// RecordManualPress counts a hand-made press.
func (m *Metrics) RecordManualPress(button string) {
	m.ManualPresses.WithLabelValues(button).Inc()
}

// RecordGame counts a finished game.
func (m *Metrics) RecordGame(result string) {
	m.GamesCompleted.WithLabelValues(result).Inc()
}
