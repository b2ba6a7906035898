// Package decision gates solver output behind an explicit approval step.
// One proposal at most is ever pending; a tick re-validates it against a
// fresh board read and discards it if the target has changed.
package decision

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/solver"
)

// State is the controller's position in the approval cycle. Idle and
// AwaitingApproval are the resting states; the others are passed through
// within a single call and are only visible in Events.
type State uint8

const (
	StateIdle             State = iota // waiting for a tick to read and solve
	StateProposalPending               // solver produced a move this tick
	StateAwaitingApproval              // move surfaced, waiting for approve
	StateExecuted                      // move handed to the executor
	StateStale                         // target changed before approval
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProposalPending:
		return "proposal-pending"
	case StateAwaitingApproval:
		return "awaiting-approval"
	case StateExecuted:
		return "executed"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Outcome summarises what one Tick did.
type Outcome uint8

const (
	OutcomePaused    Outcome = iota // controller stopped
	OutcomeThrottled                // before the cooldown deadline
	OutcomeNoMove                   // read and solved, nothing to propose
	OutcomeProposed                 // new proposal now awaiting approval
	OutcomeWaiting                  // pending proposal still valid
	OutcomeStale                    // pending proposal discarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomePaused:
		return "paused"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeNoMove:
		return "no-move"
	case OutcomeProposed:
		return "proposed"
	case OutcomeWaiting:
		return "waiting"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// NeighborState is one entry of a proposal's neighbourhood snapshot.
type NeighborState struct {
	Coord grid.Coord
	State grid.CellState
}

// Proposal is a move surfaced for manual confirmation.
type Proposal struct {
	ID         uuid.UUID
	Move       solver.Move
	Detected   grid.CellState
	Neighbors  []NeighborState
	ProposedAt time.Time
}

// Summary renders the decision panel line:
// "Action | Target | Detected | Adjacent r,c:TAG ...".
func (p Proposal) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s | %d,%d | %s | Adjacent", strings.ToUpper(p.Move.Action.String()), p.Move.Row, p.Move.Col, p.Detected.Tag())
	for _, n := range p.Neighbors {
		fmt.Fprintf(&sb, " %s:%s", n.Coord, n.State.Tag())
	}
	return sb.String()
}

// Event is one state transition.
type Event struct {
	At       time.Time
	From     State
	To       State
	Proposal *Proposal
	Reason   string
}

func (e Event) String() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("%s -> %s (%s)", e.From, e.To, e.Reason)
}
