package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/remote"
	"github.com/Garsondee/Mine-Sense/internal/telemetry"
)

// wall is a full column of mines at col 5 of the 14x18 medium board.
func wall() []grid.Coord {
	out := make([]grid.Coord, 0, 14)
	for r := 0; r < 14; r++ {
		out = append(out, grid.Coord{Row: r, Col: 5})
	}
	return out
}

func newSim(t *testing.T, opts ...SimOption) *Sim {
	t.Helper()
	s, err := NewSim(opts...)
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	return s
}

func TestSim_SingleMineWinsOnFirstCorner(t *testing.T) {
	s := newSim(t, WithLayout(grid.Coord{Row: 7, Col: 9}))
	r := s.RunGame(100)

	if r.Outcome != "won" {
		t.Fatalf("expected won, got %s\n%s", r.Outcome, s.Session.Log.Format())
	}
	if r.Ticks != 1 || r.Proposals != 1 || r.Guesses != 1 {
		t.Fatalf("expected one corner guess in one tick, got ticks=%d proposals=%d guesses=%d", r.Ticks, r.Proposals, r.Guesses)
	}
	if r.ByTier["corner"] != 1 {
		t.Fatalf("expected corner tier, got %v", r.ByTier)
	}
	if !s.Session.Log.HasEntry("game", "won", "") {
		t.Fatal("expected a game/won log entry")
	}
}

func TestSim_WallIsFlaggedThenCleared(t *testing.T) {
	s := newSim(t, WithLayout(wall()...))
	m := telemetry.New(prometheus.NewRegistry())
	s.Session.UseMetrics(m)

	r := s.RunGame(200)

	if r.Outcome != "won" {
		t.Fatalf("expected won, got %s\n%s", r.Outcome, s.Session.Log.Format())
	}
	if r.Ticks != 16 {
		t.Fatalf("expected 16 ticks (corner, 14 flags, corner), got %d", r.Ticks)
	}
	if r.ByTier["constraint"] != 14 || r.ByTier["corner"] != 2 {
		t.Fatalf("unexpected tier mix %v", r.ByTier)
	}
	if r.Locked != 14 {
		t.Fatalf("expected every wall cell locked, got %d", r.Locked)
	}
	for _, c := range wall() {
		if !s.Session.Reader.Locked().Has(c) {
			t.Fatalf("wall cell %s not locked", c)
		}
	}
	if r.Misreads != 0 {
		t.Fatalf("expected no misreads, got %d\n%s", r.Misreads, s.Session.Log.Format())
	}
	if r.Revealed != r.Safe {
		t.Fatalf("expected every safe cell revealed, got %d/%d", r.Revealed, r.Safe)
	}

	if got := testutil.ToFloat64(m.Approvals.WithLabelValues("flag")); got != 14 {
		t.Fatalf("expected 14 flag approvals, got %v", got)
	}
	if got := testutil.ToFloat64(m.Proposals.WithLabelValues("constraint", "flag")); got != 14 {
		t.Fatalf("expected 14 constraint flag proposals, got %v", got)
	}
	if got := testutil.ToFloat64(m.GamesCompleted.WithLabelValues("won")); got != 1 {
		t.Fatalf("expected one won game, got %v", got)
	}
	if got := testutil.ToFloat64(m.LockedFlags); got != 14 {
		t.Fatalf("expected locked gauge 14, got %v", got)
	}
}

func TestSim_CornerMineLoses(t *testing.T) {
	s := newSim(t, WithLayout(grid.Coord{Row: 0, Col: 0}))
	r := s.RunGame(10)

	if r.Outcome != "lost" {
		t.Fatalf("expected lost, got %s", r.Outcome)
	}
	e, ok := s.Session.Log.LastOf("game", "lost")
	if !ok || e.Cell != "0,0" {
		t.Fatalf("expected game/lost entry at 0,0, got %+v ok=%v", e, ok)
	}
	if s.Session.Controller.Running() {
		t.Fatal("controller should stop when the game ends")
	}
	if out := s.Step(); out != decision.OutcomePaused {
		t.Fatalf("ticks after game end should be paused, got %s", out)
	}
}

func TestSim_ManualPressMakesProposalStale(t *testing.T) {
	s := newSim(t, WithLayout(wall()...), WithInterference(1))
	r := s.RunGame(200)

	if r.Outcome != "won" {
		t.Fatalf("expected won, got %s\n%s", r.Outcome, s.Session.Log.Format())
	}
	if r.Stale != 1 {
		t.Fatalf("expected exactly one stale proposal, got %d\n%s", r.Stale, s.Session.Log.Format())
	}
	if !s.Session.Log.HasEntry("decision", "stale", "target now") {
		t.Fatalf("expected stale entry naming the new target state\n%s", s.Session.Log.Format())
	}
	if n := s.Session.Log.Count("press", "manual"); n != 2 {
		t.Fatalf("expected two manual presses, got %d", n)
	}
	if r.Approvals != 14 {
		t.Fatalf("expected only the flags approved, got %d", r.Approvals)
	}
}

func TestSim_ProposalsWaitWithoutApproval(t *testing.T) {
	s := newSim(t, WithLayout(wall()...), WithAutoApprove(false))

	if out := s.Step(); out != decision.OutcomeProposed {
		t.Fatalf("expected proposed, got %s", out)
	}
	s.RunTicks(3)
	if s.Proposals() != 1 {
		t.Fatalf("expected the single proposal to stay pending, got %d", s.Proposals())
	}
	if got := s.Session.Controller.LastOutcome(); got != decision.OutcomeWaiting {
		t.Fatalf("expected waiting, got %s", got)
	}
	if s.Session.Host.Field().Revealed() != 0 {
		t.Fatal("nothing should be revealed without approval")
	}
}

func TestSession_ApplyRemoteCommands(t *testing.T) {
	s := newSim(t, WithLayout(wall()...), WithAutoApprove(false))
	s.Step()

	st := s.Session.Status(s.Now)
	if st.Pending == nil {
		t.Fatal("expected a pending proposal in status")
	}
	if st.Pending.Action != "click" || st.Pending.Row != 0 || st.Pending.Col != 0 || st.Pending.Tier != "corner" {
		t.Fatalf("unexpected pending view %+v", st.Pending)
	}
	if !st.Running || st.State != "awaiting-approval" || st.Unrevealed != 14*18 {
		t.Fatalf("unexpected status %+v", st)
	}

	err := s.Session.Apply(remote.Command{Kind: remote.CommandApprove, ProposalID: uuid.New(), Source: "http"}, s.Now)
	if !errors.Is(err, decision.ErrProposalMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	id := uuid.MustParse(st.Pending.ID)
	if err := s.Session.Apply(remote.Command{Kind: remote.CommandApprove, ProposalID: id, Source: "ws"}, s.Now); err != nil {
		t.Fatalf("approve by id: %v", err)
	}
	if s.Session.Host.Field().Revealed() == 0 {
		t.Fatal("expected the approved click to open cells")
	}
	if err := s.Session.Apply(remote.Command{Kind: remote.CommandApprove, Source: "http"}, s.Now); !errors.Is(err, decision.ErrNoProposal) {
		t.Fatalf("expected no proposal, got %v", err)
	}

	if err := s.Session.Apply(remote.Command{Kind: remote.CommandToggle}, s.Now); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.Session.Controller.Running() {
		t.Fatal("toggle should stop a running controller")
	}
}

func TestSession_StopDiscardsPending(t *testing.T) {
	s := newSim(t, WithLayout(wall()...), WithAutoApprove(false))
	s.Step()
	s.Session.Controller.Stop(s.Now)

	if _, ok := s.Session.Controller.Pending(); ok {
		t.Fatal("pending proposal should be discarded on stop")
	}
	if !s.Session.Log.HasEntry("decision", "discarded", "stopped") {
		t.Fatalf("expected discarded entry\n%s", s.Session.Log.Format())
	}
}

func TestSim_RandomFieldsNeverClickLocked(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s := newSim(t, WithSeed(seed))
		s.Session.OnEvent(func(ev decision.Event) {
			if ev.To != decision.StateExecuted {
				return
			}
			mv := ev.Proposal.Move
			if mv.Action.String() == "click" && s.Session.Reader.Locked().Has(mv.Coord()) {
				t.Fatalf("seed %d: executed click on locked %s", seed, mv.Coord())
			}
		})
		r := s.RunGame(1000)
		if r.Outcome == "playing" {
			t.Fatalf("seed %d: game should finish within 1000 ticks, got %+v", seed, r)
		}
		if r.Misreads != 0 {
			t.Fatalf("seed %d: %d misreads", seed, r.Misreads)
		}
	}
}

func TestNewSim_UnknownProfile(t *testing.T) {
	if _, err := NewSim(WithProfile("huge")); err == nil {
		t.Fatal("expected an error for an unknown profile")
	}
}

func TestNew_SurfaceOutsideProfileTable(t *testing.T) {
	odd := board.Geometry{
		Name: "odd", Width: 300, Height: 200,
		CellWidth: 30, CellHeight: 30, Rows: 5, Cols: 8,
	}
	_, err := New(Options{Geometry: odd, Mines: 1, Seed: 1})
	if !errors.Is(err, board.ErrUnsupportedGeometry) {
		t.Fatalf("expected ErrUnsupportedGeometry, got %v", err)
	}
}

func TestSim_HalfProfile(t *testing.T) {
	s := newSim(t, WithProfile("medium-half"), WithLayout(grid.Coord{Row: 7, Col: 9}))
	r := s.RunGame(10)
	if r.Outcome != "won" {
		t.Fatalf("expected won on the half-size surface, got %s", r.Outcome)
	}
}
