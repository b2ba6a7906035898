package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/host"
	"github.com/Garsondee/Mine-Sense/internal/solver"
)

// epoch is the simulated clock's start. Any fixed instant works.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Sim drives a Session headlessly on a simulated clock. It stands in for
// the ebiten loop and for the person at the keyboard: it can approve every
// proposal, and it can occasionally act on a proposed cell by hand so the
// stale path gets exercised.
type Sim struct {
	Session  *Session
	Now      time.Time
	Interval time.Duration

	opts        Options
	autoApprove bool
	interfere   int // press every nth click proposal by hand; 0 disables

	proposals int
	approvals int
	stale     int
	guesses   int
	byTier    map[solver.Tier]int
	err       error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptSession simOptionKind = iota // options consumed by session.New
	simOptDriver                       // options applied to the built Sim
)

// SimOption is a builder function applied to a Sim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*Sim)
}

// WithSeed sets the seed for mine placement and random guesses.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptSession, func(s *Sim) { s.opts.Seed = seed }}
}

// WithProfile picks a geometry profile by name.
func WithProfile(name string) SimOption {
	return SimOption{simOptSession, func(s *Sim) {
		g, err := board.ProfileByName(name)
		if err != nil {
			s.err = err
			return
		}
		s.opts.Geometry = g
	}}
}

// WithMines sets the number of mines placed after the first open.
func WithMines(n int) SimOption {
	return SimOption{simOptSession, func(s *Sim) { s.opts.Mines = n }}
}

// WithLayout fixes the mine positions instead of placing them randomly.
func WithLayout(mines ...grid.Coord) SimOption {
	return SimOption{simOptSession, func(s *Sim) {
		s.opts.Layout = append([]grid.Coord{}, mines...)
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptSession, func(s *Sim) { s.opts.Verbose = v }}
}

// WithLogger routes the session's slog output.
func WithLogger(l *slog.Logger) SimOption {
	return SimOption{simOptSession, func(s *Sim) { s.opts.Logger = l }}
}

// WithCooldowns overrides the post-action cooldowns.
func WithCooldowns(click, flag time.Duration) SimOption {
	return SimOption{simOptSession, func(s *Sim) {
		s.opts.ClickCooldown = click
		s.opts.FlagCooldown = flag
	}}
}

// WithInterval sets the simulated time between ticks.
func WithInterval(d time.Duration) SimOption {
	return SimOption{simOptDriver, func(s *Sim) { s.Interval = d }}
}

// WithAutoApprove approves every proposal on the tick it appears.
func WithAutoApprove(v bool) SimOption {
	return SimOption{simOptDriver, func(s *Sim) { s.autoApprove = v }}
}

// WithInterference opens every nth proposed click target by hand instead
// of approving it.
func WithInterference(n int) SimOption {
	return SimOption{simOptDriver, func(s *Sim) { s.interfere = n }}
}

// NewSim builds a Sim in two passes: session options first, then driver
// options on the built session. The controller is started.
func NewSim(opts ...SimOption) (*Sim, error) {
	s := &Sim{
		Now:         epoch,
		Interval:    decision.DefaultTickInterval,
		autoApprove: true,
		byTier:      make(map[solver.Tier]int),
		opts:        Options{Seed: 1, Mines: 40},
	}
	for _, o := range opts {
		if o.kind == simOptSession {
			o.fn(s)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	sess, err := New(s.opts)
	if err != nil {
		return nil, err
	}
	s.Session = sess
	for _, o := range opts {
		if o.kind == simOptDriver {
			o.fn(s)
		}
	}
	sess.OnEvent(s.observe)
	sess.Controller.Start()
	return s, nil
}

func (s *Sim) observe(ev decision.Event) {
	switch ev.To {
	case decision.StateAwaitingApproval:
		s.proposals++
		s.byTier[ev.Proposal.Move.Tier]++
		if ev.Proposal.Move.Tier.Guess() {
			s.guesses++
		}
	case decision.StateExecuted:
		s.approvals++
	case decision.StateStale:
		s.stale++
	}
}

// Step advances the clock one interval and runs one tick, approving or
// interfering as configured.
func (s *Sim) Step() decision.Outcome {
	s.Now = s.Now.Add(s.Interval)
	out := s.Session.Tick(s.Now)
	if out != decision.OutcomeProposed {
		return out
	}
	p, ok := s.Session.Controller.Pending()
	if !ok {
		return out
	}
	if s.interfere > 0 && p.Move.Action == solver.Click {
		if s.proposals%s.interfere == 0 {
			x, y := s.Session.Host.Geometry().CellCenter(p.Move.Coord())
			s.Session.Press(x, y, host.Primary, s.Now)
			return out
		}
	}
	if s.autoApprove {
		_ = s.Session.Approve(s.Now)
	}
	return out
}

// RunTicks advances the simulation n ticks.
func (s *Sim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// RunUntil advances up to maxTicks, stopping early when predicate returns
// true. Returns the tick at which it was satisfied, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Step()
		if predicate(s) {
			return s.Session.CurrentTick()
		}
	}
	return -1
}

// RunGame plays until the game ends, the controller runs out of moves, or
// maxTicks pass, and returns the run's summary.
func (s *Sim) RunGame(maxTicks int) RunResult {
	idle := 0
	for i := 0; i < maxTicks && !s.Session.Finished(); i++ {
		if s.Step() == decision.OutcomeNoMove {
			idle++
			if idle > 2 {
				break
			}
		} else {
			idle = 0
		}
	}
	return s.Result()
}

// Result summarises the run so far.
func (s *Sim) Result() RunResult {
	field := s.Session.Host.Field()
	r := RunResult{
		Seed:      s.Session.Seed,
		Outcome:   field.Status().String(),
		Ticks:     s.Session.CurrentTick(),
		Revealed:  field.Revealed(),
		Safe:      field.Rows*field.Cols - field.Mines,
		Locked:    s.Session.Reader.Locked().Len(),
		Proposals: s.proposals,
		Approvals: s.approvals,
		Stale:     s.stale,
		Guesses:   s.guesses,
		Misreads:  s.Session.Misreads(),
		ByTier:    make(map[string]int, len(s.byTier)),
		Elapsed:   s.Now.Sub(epoch),
	}
	for t, n := range s.byTier {
		r.ByTier[t.String()] = n
	}
	return r
}

// Proposals returns the number of proposals seen.
func (s *Sim) Proposals() int { return s.proposals }

// StaleCount returns the number of proposals discarded as stale.
func (s *Sim) StaleCount() int { return s.stale }

func (s *Sim) String() string {
	return fmt.Sprintf("sim seed=%d tick=%d %s", s.Session.Seed, s.Session.CurrentTick(), s.Session.Host.Field().Status())
}
