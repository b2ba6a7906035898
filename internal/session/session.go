// Package session wires one play session: host surface, board reader,
// solver and decision controller, plus its event log.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/host"
	"github.com/Garsondee/Mine-Sense/internal/remote"
	"github.com/Garsondee/Mine-Sense/internal/solver"
	"github.com/Garsondee/Mine-Sense/internal/telemetry"
)

// Options configures a Session.
type Options struct {
	Geometry      board.Geometry
	Mines         int
	Seed          int64
	Layout        []grid.Coord // fixed mine positions; overrides Mines
	ClickCooldown time.Duration
	FlagCooldown  time.Duration
	Logger        *slog.Logger
	Verbose       bool
}

// Session is one game from first read to win or loss. Locked flags live
// exactly as long as the session.
type Session struct {
	ID         uuid.UUID
	Seed       int64
	Host       *host.Host
	Reader     *board.Reader
	Controller *decision.Controller
	Log        *Log

	log      *slog.Logger
	metrics  *telemetry.Metrics
	tick     int
	finished bool
	misreads int
	observer []func(decision.Event)
}

// New builds a stopped session.
func New(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := opts.Geometry
	if g.Rows == 0 {
		var err error
		if g, err = board.ProfileByName("medium"); err != nil {
			return nil, err
		}
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	var field *host.Minefield
	if opts.Layout != nil {
		field = host.NewMinefieldWithLayout(g.Rows, g.Cols, opts.Layout)
	} else {
		var err error
		field, err = host.NewMinefield(g.Rows, g.Cols, opts.Mines, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
	}

	s := &Session{
		ID:   uuid.New(),
		Seed: opts.Seed,
		Log:  NewLog(opts.Verbose),
	}
	s.log = opts.Logger.With("session", s.ID.String()[:8])
	s.Host = host.New(field, g, s.log)
	// The reader takes its layout from the rendered surface, not from opts.
	_, read, err := host.Locate(s.Host.Image())
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.Reader = board.NewReader(read,
		board.WithLogger(s.log),
		board.WithLockObserver(s.onLock),
	)
	s.Controller = decision.New(decision.Config{
		Source:        s.Host,
		Reader:        s.Reader,
		Solver:        solver.New(rand.New(rand.NewSource(rng.Int63()))),
		Executor:      host.NewPointerExecutor(s.Host),
		Logger:        s.log,
		ClickCooldown: opts.ClickCooldown,
		FlagCooldown:  opts.FlagCooldown,
	})
	s.Controller.OnEvent(s.onEvent)
	s.Host.OnPress(s.onPress)
	return s, nil
}

// UseMetrics attaches a metrics set. Call before the first tick.
func (s *Session) UseMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

// OnEvent forwards controller events to fn after the session has logged
// them.
func (s *Session) OnEvent(fn func(decision.Event)) {
	s.observer = append(s.observer, fn)
}

// CurrentTick returns the number of ticks run.
func (s *Session) CurrentTick() int { return s.tick }

// Finished reports whether the game has ended.
func (s *Session) Finished() bool { return s.finished }

// Misreads returns the number of cells read differently from what the
// surface actually shows, summed over all reads.
func (s *Session) Misreads() int { return s.misreads }

// Tick runs one controller cycle and checks for game end.
func (s *Session) Tick(now time.Time) decision.Outcome {
	if s.checkFinished(now) {
		return decision.OutcomePaused
	}
	s.tick++
	start := time.Now()
	out := s.Controller.Tick(now)
	if s.metrics != nil {
		s.metrics.RecordTick(out, time.Since(start))
		s.metrics.SetLocked(s.Reader.Locked().Len())
	}
	s.Log.AddVerbose(s.tick, "--", "tick", "outcome", out.String(), 0)
	if out != decision.OutcomePaused && out != decision.OutcomeThrottled {
		s.countMisreads()
	}
	return out
}

// Approve approves whatever is pending.
func (s *Session) Approve(now time.Time) error {
	err := s.Controller.Approve(now)
	s.checkFinished(now)
	return err
}

// Apply executes a remote command.
func (s *Session) Apply(cmd remote.Command, now time.Time) error {
	switch cmd.Kind {
	case remote.CommandToggle:
		if s.finished {
			return nil
		}
		s.Controller.Toggle(now)
		return nil
	case remote.CommandApprove:
		var err error
		if cmd.ProposalID == uuid.Nil {
			err = s.Controller.Approve(now)
		} else {
			err = s.Controller.ApproveID(now, cmd.ProposalID)
		}
		s.checkFinished(now)
		if err != nil {
			s.log.Info("remote approval refused", "source", cmd.Source, "err", err)
		}
		return err
	default:
		return fmt.Errorf("unknown command %d", cmd.Kind)
	}
}

// Press delivers a manual pointer press on the surface.
func (s *Session) Press(x, y float64, btn host.Button, now time.Time) host.Press {
	p := s.Host.Press(x, y, btn, true)
	s.checkFinished(now)
	return p
}

// Status snapshots the session for the remote surface.
func (s *Session) Status(now time.Time) remote.Status {
	st := remote.Status{
		Running:   s.Controller.Running(),
		State:     s.Controller.State().String(),
		Outcome:   s.Controller.LastOutcome().String(),
		Game:      s.Host.Field().Status().String(),
		Locked:    s.Reader.Locked().Len(),
		UpdatedAt: now,
	}
	if b := s.Controller.Board(); b != nil {
		st.Unrevealed = b.Count(grid.Unrevealed)
		st.Revealed = b.Count(grid.Revealed)
		st.Flagged = b.Count(grid.Flagged)
		st.Unknown = b.Count(grid.Unknown)
	}
	if p, ok := s.Controller.Pending(); ok {
		st.Pending = &remote.PendingView{
			ID:       p.ID.String(),
			Action:   p.Move.Action.String(),
			Row:      p.Move.Row,
			Col:      p.Move.Col,
			Tier:     p.Move.Tier.String(),
			Detected: p.Detected.Tag(),
			Summary:  p.Summary(),
		}
	}
	return st
}

func (s *Session) checkFinished(now time.Time) bool {
	if s.finished {
		return true
	}
	st := s.Host.Field().Status()
	if st == host.Playing {
		return false
	}
	s.finished = true
	s.Controller.Stop(now)
	cell := "--"
	if c, lost := s.Host.Field().Exploded(); lost {
		cell = c.String()
	}
	s.Log.Add(s.tick, cell, "game", st.String(), fmt.Sprintf("revealed=%d locked=%d", s.Host.Field().Revealed(), s.Reader.Locked().Len()), float64(s.Host.Field().Revealed()))
	s.log.Info("game over", "result", st.String(), "ticks", s.tick)
	if s.metrics != nil {
		s.metrics.RecordGame(st.String())
	}
	return true
}

func (s *Session) countMisreads() {
	b := s.Controller.Board()
	if b == nil {
		return
	}
	field := s.Host.Field()
	b.Each(func(c grid.Coord, got grid.CellState) {
		if want := field.Visible(c); want != got {
			s.misreads++
			s.Log.Add(s.tick, c.String(), "vision", "misread",
				fmt.Sprintf("want %s got %s", want.Tag(), got.Tag()), 0)
		}
	})
}

func (s *Session) onLock(c grid.Coord) {
	s.Log.Add(s.tick, c.String(), "lock", "flag_seen", "locked from board read", 0)
}

func (s *Session) onEvent(ev decision.Event) {
	if s.metrics != nil {
		s.metrics.Observe(ev)
	}
	if p := ev.Proposal; p != nil {
		cell := p.Move.Coord().String()
		switch ev.To {
		case decision.StateAwaitingApproval:
			s.Log.Add(s.tick, cell, "decision", "proposed", fmt.Sprintf("%s (%s)", p.Move.Action, p.Move.Tier), float64(p.Move.Tier))
			if p.Move.Action == solver.Flag {
				s.Log.Add(s.tick, cell, "lock", "deduced", "locked by constraint", 0)
			}
		case decision.StateExecuted:
			s.Log.Add(s.tick, cell, "decision", "executed", p.Move.Action.String(), 0)
		case decision.StateStale:
			s.Log.Add(s.tick, cell, "decision", "stale", ev.Reason, 0)
		case decision.StateIdle:
			if ev.From == decision.StateAwaitingApproval {
				s.Log.Add(s.tick, cell, "decision", "discarded", ev.Reason, 0)
			}
		}
	}
	for _, fn := range s.observer {
		fn(ev)
	}
}

func (s *Session) onPress(p host.Press) {
	if !p.Manual {
		return
	}
	cell := "--"
	if p.OnCell {
		cell = p.Cell.String()
	}
	s.Log.Add(s.tick, cell, "press", "manual", fmt.Sprintf("%s at (%.0f,%.0f)", p.Button, p.X, p.Y), 0)
	if s.metrics != nil {
		s.metrics.RecordManualPress(p.Button.String())
	}
}
