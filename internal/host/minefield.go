// Package host is the in-process game surface the bot reads and acts on:
// a minefield model, a renderer producing the pixels the classifier
// samples, and a pointer executor that presses cells by pixel position.
package host

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/Mine-Sense/internal/grid"
)

// Status is the game outcome so far.
type Status uint8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "playing"
	}
}

// Cell is the true state of one minefield position.
type Cell struct {
	Mine     bool
	Revealed bool
	Flagged  bool
	Adjacent int // mines in the 8 neighbours
}

// Minefield is the game model. Mines are placed on the first Open so the
// first press is always safe, unless a fixed layout was supplied.
type Minefield struct {
	Rows  int
	Cols  int
	Mines int

	cells    []Cell
	rng      *rand.Rand
	placed   bool
	status   Status
	revealed int
	exploded grid.Coord
}

// NewMinefield returns a covered field that will place mines at random on
// the first Open.
func NewMinefield(rows, cols, mines int, rng *rand.Rand) (*Minefield, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("minefield %dx%d: non-positive size", rows, cols)
	}
	if mines < 0 || (mines > 0 && mines > rows*cols-9) {
		return nil, fmt.Errorf("minefield %dx%d: %d mines leaves no safe opening", rows, cols, mines)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Minefield{
		Rows:  rows,
		Cols:  cols,
		Mines: mines,
		cells: make([]Cell, rows*cols),
		rng:   rng,
	}, nil
}

// NewMinefieldWithLayout returns a field with mines at exactly the given
// coordinates.
func NewMinefieldWithLayout(rows, cols int, mines []grid.Coord) *Minefield {
	m := &Minefield{Rows: rows, Cols: cols, cells: make([]Cell, rows*cols), placed: true}
	for _, c := range mines {
		if m.inBounds(c) && !m.cells[m.idx(c)].Mine {
			m.cells[m.idx(c)].Mine = true
			m.Mines++
		}
	}
	m.calculateAdjacent()
	return m
}

func (m *Minefield) idx(c grid.Coord) int { return c.Row*m.Cols + c.Col }

func (m *Minefield) inBounds(c grid.Coord) bool {
	return c.Row >= 0 && c.Row < m.Rows && c.Col >= 0 && c.Col < m.Cols
}

func (m *Minefield) neighbors(c grid.Coord) []grid.Coord {
	out := make([]grid.Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := grid.Coord{Row: c.Row + dr, Col: c.Col + dc}
			if m.inBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// placeMines scatters the mines, keeping the 3×3 block around safe clear.
func (m *Minefield) placeMines(safe grid.Coord) {
	keepClear := func(c grid.Coord) bool {
		dr, dc := c.Row-safe.Row, c.Col-safe.Col
		return dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
	}
	placed := 0
	for placed < m.Mines {
		c := grid.Coord{Row: m.rng.Intn(m.Rows), Col: m.rng.Intn(m.Cols)}
		cell := &m.cells[m.idx(c)]
		if cell.Mine || keepClear(c) {
			continue
		}
		cell.Mine = true
		placed++
	}
	m.placed = true
	m.calculateAdjacent()
}

func (m *Minefield) calculateAdjacent() {
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			c := grid.Coord{Row: row, Col: col}
			n := 0
			for _, nb := range m.neighbors(c) {
				if m.cells[m.idx(nb)].Mine {
					n++
				}
			}
			m.cells[m.idx(c)].Adjacent = n
		}
	}
}

// Open reveals c, flood-filling through empty cells. It returns false when
// c held a mine. Flagged and already revealed cells are left alone.
func (m *Minefield) Open(c grid.Coord) bool {
	if !m.inBounds(c) || m.status != Playing {
		return true
	}
	if !m.placed {
		m.placeMines(c)
	}
	cell := &m.cells[m.idx(c)]
	if cell.Revealed || cell.Flagged {
		return true
	}
	cell.Revealed = true
	if cell.Mine {
		m.status = Lost
		m.exploded = c
		return false
	}
	m.revealed++
	if cell.Adjacent == 0 {
		for _, n := range m.neighbors(c) {
			m.Open(n)
		}
	}
	if m.revealed == m.Rows*m.Cols-m.Mines {
		m.status = Won
	}
	return true
}

// ToggleFlag flips the flag on a covered cell.
func (m *Minefield) ToggleFlag(c grid.Coord) {
	if !m.inBounds(c) || m.status != Playing {
		return
	}
	cell := &m.cells[m.idx(c)]
	if cell.Revealed {
		return
	}
	cell.Flagged = !cell.Flagged
}

// Cell returns the true state at c.
func (m *Minefield) Cell(c grid.Coord) Cell {
	if !m.inBounds(c) {
		return Cell{}
	}
	return m.cells[m.idx(c)]
}

// Status returns the game outcome so far.
func (m *Minefield) Status() Status { return m.status }

// Exploded returns the mine that ended the game, if it was lost.
func (m *Minefield) Exploded() (grid.Coord, bool) {
	return m.exploded, m.status == Lost
}

// Revealed returns the number of opened safe cells.
func (m *Minefield) Revealed() int { return m.revealed }

// Visible returns what a perfect reader would classify c as.
func (m *Minefield) Visible(c grid.Coord) grid.CellState {
	cell := m.Cell(c)
	switch {
	case !m.inBounds(c):
		return grid.CellState{}
	case cell.Revealed && cell.Mine:
		return grid.CellState{Kind: grid.Unknown}
	case cell.Revealed:
		return grid.RevealedN(cell.Adjacent)
	case cell.Flagged:
		return grid.CellState{Kind: grid.Flagged}
	default:
		return grid.CellState{Kind: grid.Unrevealed}
	}
}

// VisibleBoard is Visible for every cell.
func (m *Minefield) VisibleBoard() *grid.Board {
	b := grid.NewBoard(m.Rows, m.Cols)
	b.Each(func(c grid.Coord, _ grid.CellState) {
		b.Set(c, m.Visible(c))
	})
	return b
}
