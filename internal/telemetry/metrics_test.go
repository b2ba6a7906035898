package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/solver"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func proposal(a solver.Action, tier solver.Tier) *decision.Proposal {
	return &decision.Proposal{Move: solver.Move{Row: 1, Col: 2, Action: a, Tier: tier}}
}

func TestObserveCountsLifecycle(t *testing.T) {
	m := newTestMetrics(t)
	p := proposal(solver.Flag, solver.TierConstraint)

	m.Observe(decision.Event{From: decision.StateIdle, To: decision.StateProposalPending, Proposal: p})
	m.Observe(decision.Event{From: decision.StateProposalPending, To: decision.StateAwaitingApproval, Proposal: p})
	m.Observe(decision.Event{From: decision.StateAwaitingApproval, To: decision.StateExecuted, Proposal: p})
	m.Observe(decision.Event{From: decision.StateExecuted, To: decision.StateIdle, Proposal: p})

	if v := testutil.ToFloat64(m.Proposals.WithLabelValues("constraint", "flag")); v != 1 {
		t.Errorf("proposals[constraint,flag] = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.Approvals.WithLabelValues("flag")); v != 1 {
		t.Errorf("approvals[flag] = %v, want 1", v)
	}
	if n := testutil.CollectAndCount(m.Stale); n != 0 {
		t.Errorf("discarded series = %d, want 0", n)
	}
}

func TestObserveCountsDiscards(t *testing.T) {
	m := newTestMetrics(t)
	p := proposal(solver.Click, solver.TierZero)

	m.Observe(decision.Event{From: decision.StateAwaitingApproval, To: decision.StateStale, Proposal: p})
	m.Observe(decision.Event{From: decision.StateStale, To: decision.StateIdle, Proposal: p})
	m.Observe(decision.Event{From: decision.StateAwaitingApproval, To: decision.StateIdle, Proposal: p, Reason: "stopped"})
	m.Observe(decision.Event{From: decision.StateAwaitingApproval, To: decision.StateStale, Proposal: p, Reason: decision.ReasonLocked})

	if v := testutil.ToFloat64(m.Stale.WithLabelValues("stale")); v != 1 {
		t.Errorf("discarded[stale] = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.Stale.WithLabelValues("stopped")); v != 1 {
		t.Errorf("discarded[stopped] = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.Stale.WithLabelValues("locked")); v != 1 {
		t.Errorf("discarded[locked] = %v, want 1", v)
	}
}

func TestRecordTick(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordTick(decision.OutcomeProposed, 3*time.Millisecond)
	m.RecordTick(decision.OutcomeThrottled, 0)
	m.RecordTick(decision.OutcomeThrottled, 0)

	if v := testutil.ToFloat64(m.Ticks.WithLabelValues("throttled")); v != 2 {
		t.Errorf("ticks[throttled] = %v, want 2", v)
	}
	want := `
# HELP minesense_locked_flags Coordinates currently locked against clicks
# TYPE minesense_locked_flags gauge
minesense_locked_flags 3
`
	m.SetLocked(3)
	if err := testutil.CollectAndCompare(m.LockedFlags, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestSeparateRegistries(t *testing.T) {
	a := newTestMetrics(t)
	b := newTestMetrics(t)
	a.RecordManualPress("primary")
	if v := testutil.ToFloat64(b.ManualPresses.WithLabelValues("primary")); v != 0 {
		t.Errorf("registries share state: %v", v)
	}
	a.RecordGame("won")
	if v := testutil.ToFloat64(a.GamesCompleted.WithLabelValues("won")); v != 1 {
		t.Errorf("games[won] = %v, want 1", v)
	}
}
