// Package solver picks at most one move per board snapshot using local,
// single-cell deduction with corner and random fallbacks.
package solver

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/Mine-Sense/internal/grid"
)

// Action is what the pointer does to the target cell.
type Action uint8

const (
	Click Action = iota // primary press, opens the cell
	Flag                // secondary press, toggles a flag
)

func (a Action) String() string {
	if a == Flag {
		return "flag"
	}
	return "click"
}

// Tier records which strategy produced a move.
type Tier uint8

const (
	TierZero       Tier = iota + 1 // neighbour of a revealed empty cell
	TierConstraint                 // deduced from one numbered cell
	TierCorner                     // board corner probe
	TierRandom                     // uniform guess
)

func (t Tier) String() string {
	switch t {
	case TierZero:
		return "zero"
	case TierConstraint:
		return "constraint"
	case TierCorner:
		return "corner"
	case TierRandom:
		return "random"
	default:
		return "none"
	}
}

// Guess reports whether the tier carries mine risk.
func (t Tier) Guess() bool {
	return t == TierCorner || t == TierRandom
}

// Move is a single proposed action. It is a value; nothing in it refers
// back into the board it was derived from.
type Move struct {
	Row    int
	Col    int
	Action Action
	Tier   Tier
}

// Coord returns the target as a grid coordinate.
func (m Move) Coord() grid.Coord {
	return grid.Coord{Row: m.Row, Col: m.Col}
}

func (m Move) String() string {
	return fmt.Sprintf("%s %d,%d (%s)", m.Action, m.Row, m.Col, m.Tier)
}

// Solver holds the random source for the fallback tier.
type Solver struct {
	rng *rand.Rand
}

// New returns a solver. A nil rng is seeded from 1 so runs stay
// reproducible unless the caller provides a source.
func New(rng *rand.Rand) *Solver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Solver{rng: rng}
}

// Solve returns the highest-priority move for b, or false when no
// unrevealed, unlocked cell remains. A Flag from the constraint tier locks
// its target in locked before returning. Solve never returns a Click on a
// locked coordinate.
func (s *Solver) Solve(b *grid.Board, locked *grid.LockedFlags) (Move, bool) {
	if locked == nil {
		locked = grid.NewLockedFlags()
	}
	if m, ok := zeroExpansion(b, locked); ok {
		return m, true
	}
	if m, ok := constraint(b, locked); ok {
		return m, true
	}
	if m, ok := corners(b, locked); ok {
		return m, true
	}
	return s.random(b, locked)
}

func clickable(b *grid.Board, locked *grid.LockedFlags, c grid.Coord) bool {
	return b.At(c).Kind == grid.Unrevealed && !locked.Has(c)
}

func zeroExpansion(b *grid.Board, locked *grid.LockedFlags) (Move, bool) {
	var out Move
	found := false
	b.Each(func(c grid.Coord, st grid.CellState) {
		if found || !st.IsZero() {
			return
		}
		for _, n := range b.Neighbors(c) {
			if clickable(b, locked, n) {
				out = Move{Row: n.Row, Col: n.Col, Action: Click, Tier: TierZero}
				found = true
				return
			}
		}
	})
	return out, found
}

func constraint(b *grid.Board, locked *grid.LockedFlags) (Move, bool) {
	var out Move
	found := false
	b.Each(func(c grid.Coord, st grid.CellState) {
		if found || st.Kind != grid.Revealed || st.Number == 0 {
			return
		}
		var open []grid.Coord
		mines, unread := 0, 0
		for _, n := range b.Neighbors(c) {
			ns := b.At(n)
			switch {
			case ns.Kind == grid.Flagged || locked.Has(n):
				mines++
			case ns.Kind == grid.Unrevealed:
				open = append(open, n)
			case ns.Kind == grid.Unknown:
				unread++
			}
		}
		if len(open) == 0 {
			return
		}
		target := open[0]
		switch {
		// An unread neighbour may itself be the missing mine.
		case mines+len(open) == st.Number && unread == 0:
			locked.Lock(target)
			out = Move{Row: target.Row, Col: target.Col, Action: Flag, Tier: TierConstraint}
			found = true
		case mines == st.Number:
			out = Move{Row: target.Row, Col: target.Col, Action: Click, Tier: TierConstraint}
			found = true
		}
	})
	return out, found
}

func corners(b *grid.Board, locked *grid.LockedFlags) (Move, bool) {
	for _, c := range []grid.Coord{
		{Row: 0, Col: 0},
		{Row: 0, Col: b.Cols - 1},
		{Row: b.Rows - 1, Col: 0},
		{Row: b.Rows - 1, Col: b.Cols - 1},
	} {
		if clickable(b, locked, c) {
			return Move{Row: c.Row, Col: c.Col, Action: Click, Tier: TierCorner}, true
		}
	}
	return Move{}, false
}

func (s *Solver) random(b *grid.Board, locked *grid.LockedFlags) (Move, bool) {
	var pool []grid.Coord
	b.Each(func(c grid.Coord, _ grid.CellState) {
		if clickable(b, locked, c) {
			pool = append(pool, c)
		}
	})
	if len(pool) == 0 {
		return Move{}, false
	}
	c := pool[s.rng.Intn(len(pool))]
	return Move{Row: c.Row, Col: c.Col, Action: Click, Tier: TierRandom}, true
}
