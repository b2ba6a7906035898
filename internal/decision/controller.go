package decision

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/solver"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

// Default cooldowns after an executed action. Flag toggles need longer to
// settle on the host surface than opens.
const (
	DefaultClickCooldown = 120 * time.Millisecond
	DefaultFlagCooldown  = 250 * time.Millisecond
)

var (
	// ErrNoProposal is returned by Approve when nothing is pending.
	ErrNoProposal = errors.New("no proposal awaiting approval")
	// ErrProposalMismatch is returned when an approval names a proposal
	// other than the pending one.
	ErrProposalMismatch = errors.New("approval does not match pending proposal")
	// ErrLockedTarget is returned when a pending Click targets a cell that
	// was locked after it was proposed. The proposal is discarded.
	ErrLockedTarget = errors.New("click target is locked")
)

// ReasonLocked is the Stale event reason for a refused approval whose
// Click target was locked after it was proposed.
const ReasonLocked = "target locked"

// Reader rebuilds a board from a surface and exposes the session's locked
// set.
type Reader interface {
	Read(s vision.Surface) *grid.Board
	Locked() *grid.LockedFlags
}

// Solver picks at most one move.
type Solver interface {
	Solve(b *grid.Board, locked *grid.LockedFlags) (solver.Move, bool)
}

// Source yields the surface to read on each tick.
type Source interface {
	Surface() vision.Surface
}

// Executor delivers an approved move to the host. Nothing is reported back.
type Executor interface {
	Execute(m solver.Move)
}

// Config wires a Controller.
type Config struct {
	Source        Source
	Reader        Reader
	Solver        Solver
	Executor      Executor
	Logger        *slog.Logger
	ClickCooldown time.Duration
	FlagCooldown  time.Duration
}

// Controller is the approval state machine. It is not safe for concurrent
// use; every method is called from the tick goroutine.
type Controller struct {
	src    Source
	reader Reader
	solver Solver
	exec   Executor
	log    *slog.Logger

	clickCooldown time.Duration
	flagCooldown  time.Duration

	running  bool
	state    State
	pending  *Proposal
	deadline time.Time
	board    *grid.Board
	last     Outcome

	observers []func(Event)
}

// New returns a stopped controller.
func New(cfg Config) *Controller {
	c := &Controller{
		src:           cfg.Source,
		reader:        cfg.Reader,
		solver:        cfg.Solver,
		exec:          cfg.Executor,
		log:           cfg.Logger,
		clickCooldown: cfg.ClickCooldown,
		flagCooldown:  cfg.FlagCooldown,
		state:         StateIdle,
		last:          OutcomePaused,
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.clickCooldown <= 0 {
		c.clickCooldown = DefaultClickCooldown
	}
	if c.flagCooldown <= 0 {
		c.flagCooldown = DefaultFlagCooldown
	}
	return c
}

// OnEvent registers fn to receive every state transition.
func (c *Controller) OnEvent(fn func(Event)) {
	c.observers = append(c.observers, fn)
}

// SetCooldowns replaces the per-action cooldowns. Non-positive values keep
// the current setting.
func (c *Controller) SetCooldowns(click, flag time.Duration) {
	if click > 0 {
		c.clickCooldown = click
	}
	if flag > 0 {
		c.flagCooldown = flag
	}
}

// Cooldowns returns the click and flag cooldowns.
func (c *Controller) Cooldowns() (click, flag time.Duration) {
	return c.clickCooldown, c.flagCooldown
}

// State returns the resting state.
func (c *Controller) State() State { return c.state }

// Running reports whether ticks are being processed.
func (c *Controller) Running() bool { return c.running }

// LastOutcome returns the result of the most recent Tick.
func (c *Controller) LastOutcome() Outcome { return c.last }

// Deadline returns the cooldown deadline. Zero when none has been set.
func (c *Controller) Deadline() time.Time { return c.deadline }

// Board returns the most recent snapshot, or nil before the first read.
func (c *Controller) Board() *grid.Board { return c.board }

// Locked returns the session's locked-flag set.
func (c *Controller) Locked() *grid.LockedFlags { return c.reader.Locked() }

// Pending returns a copy of the pending proposal.
func (c *Controller) Pending() (Proposal, bool) {
	if c.pending == nil {
		return Proposal{}, false
	}
	return *c.pending, true
}

// Start resumes ticking.
func (c *Controller) Start() {
	if c.running {
		return
	}
	c.running = true
	c.log.Info("auto-play enabled")
}

// Stop halts ticking and discards any pending proposal.
func (c *Controller) Stop(now time.Time) {
	if !c.running {
		return
	}
	c.running = false
	if p := c.pending; p != nil {
		c.pending = nil
		c.transition(now, StateAwaitingApproval, StateIdle, p, "stopped")
	}
	c.state = StateIdle
	c.last = OutcomePaused
	c.log.Info("auto-play paused")
}

// Toggle flips between running and stopped and returns the new setting.
func (c *Controller) Toggle(now time.Time) bool {
	if c.running {
		c.Stop(now)
	} else {
		c.Start()
	}
	return c.running
}

// Tick runs one cycle: re-validate the pending proposal, or read, solve
// and propose. Ticks before the cooldown deadline do nothing.
func (c *Controller) Tick(now time.Time) Outcome {
	c.last = c.tick(now)
	return c.last
}

func (c *Controller) tick(now time.Time) Outcome {
	if !c.running {
		return OutcomePaused
	}
	if now.Before(c.deadline) {
		return OutcomeThrottled
	}

	b := c.reader.Read(c.src.Surface())
	c.board = b

	if p := c.pending; p != nil {
		cur := b.At(p.Move.Coord())
		if cur.Kind == grid.Unrevealed || cur.Kind == grid.Unknown {
			return OutcomeWaiting
		}
		c.pending = nil
		c.state = StateIdle
		reason := "target now " + cur.String()
		c.log.Info("pending move is stale, discarding", "move", p.Move.String(), "reason", reason)
		c.transition(now, StateAwaitingApproval, StateStale, p, reason)
		c.transition(now, StateStale, StateIdle, p, "")
		return OutcomeStale
	}

	m, ok := c.solver.Solve(b, c.reader.Locked())
	if !ok {
		c.log.Debug("no safe move found")
		return OutcomeNoMove
	}
	p := &Proposal{
		ID:         uuid.New(),
		Move:       m,
		Detected:   b.At(m.Coord()),
		ProposedAt: now,
	}
	for _, n := range b.Neighbors(m.Coord()) {
		p.Neighbors = append(p.Neighbors, NeighborState{Coord: n, State: b.At(n)})
	}
	c.transition(now, StateIdle, StateProposalPending, p, m.Tier.String())
	c.pending = p
	c.state = StateAwaitingApproval
	c.transition(now, StateProposalPending, StateAwaitingApproval, p, "")
	c.log.Info("move awaiting approval",
		"id", p.ID.String(),
		"action", m.Action.String(),
		"cell", m.Coord().String(),
		"tier", m.Tier.String(),
		"detected", p.Detected.Tag())
	return OutcomeProposed
}

// Approve executes the pending proposal and sets the cooldown deadline.
func (c *Controller) Approve(now time.Time) error {
	p := c.pending
	if p == nil {
		return ErrNoProposal
	}
	c.pending = nil
	c.state = StateIdle

	if p.Move.Action == solver.Click && c.reader.Locked().Has(p.Move.Coord()) {
		c.log.Warn("prevented click on locked cell", "cell", p.Move.Coord().String())
		c.transition(now, StateAwaitingApproval, StateStale, p, ReasonLocked)
		c.transition(now, StateStale, StateIdle, p, "")
		return fmt.Errorf("approve %s: %w", p.Move.Coord(), ErrLockedTarget)
	}

	c.transition(now, StateAwaitingApproval, StateExecuted, p, "approved")
	c.exec.Execute(p.Move)
	cd := c.clickCooldown
	if p.Move.Action == solver.Flag {
		cd = c.flagCooldown
	}
	c.deadline = now.Add(cd)
	c.log.Info("move executed", "action", p.Move.Action.String(), "cell", p.Move.Coord().String(), "cooldown", cd)
	c.transition(now, StateExecuted, StateIdle, p, "")
	return nil
}

// ApproveID approves the pending proposal only if its ID is id.
func (c *Controller) ApproveID(now time.Time, id uuid.UUID) error {
	if c.pending == nil {
		return ErrNoProposal
	}
	if c.pending.ID != id {
		return fmt.Errorf("approve %s, pending %s: %w", id, c.pending.ID, ErrProposalMismatch)
	}
	return c.Approve(now)
}

func (c *Controller) transition(now time.Time, from, to State, p *Proposal, reason string) {
	if len(c.observers) == 0 {
		return
	}
	var cp *Proposal
	if p != nil {
		v := *p
		cp = &v
	}
	ev := Event{At: now, From: from, To: to, Proposal: cp, Reason: reason}
	for _, fn := range c.observers {
		fn(ev)
	}
}
