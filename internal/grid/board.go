package grid

import "strings"

// Board is a rows×cols snapshot of classified cells in row-major order.
// A reader builds a fresh Board on every pass; nothing mutates it after.
type Board struct {
	Rows  int
	Cols  int
	cells []CellState
}

// NewBoard returns a board with every cell set to Unknown.
func NewBoard(rows, cols int) *Board {
	return &Board{
		Rows:  rows,
		Cols:  cols,
		cells: make([]CellState, rows*cols),
	}
}

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Rows && c.Col >= 0 && c.Col < b.Cols
}

// At returns the state at c. Out-of-bounds coordinates read as Unknown.
func (b *Board) At(c Coord) CellState {
	if !b.InBounds(c) {
		return CellState{}
	}
	return b.cells[c.Row*b.Cols+c.Col]
}

// Set stores s at c. Out-of-bounds writes are ignored.
func (b *Board) Set(c Coord, s CellState) {
	if !b.InBounds(c) {
		return
	}
	b.cells[c.Row*b.Cols+c.Col] = s
}

// Neighbors returns the up-to-8 in-bounds neighbours of c in fixed
// enumeration order: Δrow -1..1 outer, Δcol -1..1 inner, skipping c.
func (b *Board) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if b.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// Count returns how many cells currently have kind k.
func (b *Board) Count(k Kind) int {
	n := 0
	for _, c := range b.cells {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// Each calls fn for every cell in row-major order.
func (b *Board) Each(fn func(Coord, CellState)) {
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			c := Coord{Row: row, Col: col}
			fn(c, b.cells[row*b.Cols+col])
		}
	}
}

// Clone returns an independent copy of b.
func (b *Board) Clone() *Board {
	out := &Board{Rows: b.Rows, Cols: b.Cols, cells: make([]CellState, len(b.cells))}
	copy(out.cells, b.cells)
	return out
}

// String renders the board as text, one row per line. Glyphs: '-' for
// unrevealed, 'F' flagged, '?' unknown, '.' empty, '1'-'8' numbers.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(glyph(b.cells[row*b.Cols+col]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func glyph(c CellState) byte {
	switch c.Kind {
	case Unrevealed:
		return '-'
	case Flagged:
		return 'F'
	case Revealed:
		if c.Number == 0 {
			return '.'
		}
		return byte('0' + c.Number)
	default:
		return '?'
	}
}

// Parse builds a board from the String format. Blank lines are skipped and
// cells may be separated by spaces or not at all. It is intended for tests
// and fixtures.
func Parse(s string) *Board {
	var rows [][]CellState
	for _, line := range strings.Split(s, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line == "" {
			continue
		}
		row := make([]CellState, 0, len(line))
		for i := 0; i < len(line); i++ {
			row = append(row, parseGlyph(line[i]))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return NewBoard(0, 0)
	}
	b := NewBoard(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, cell := range row {
			b.Set(Coord{Row: r, Col: c}, cell)
		}
	}
	return b
}

func parseGlyph(ch byte) CellState {
	switch {
	case ch == '-':
		return CellState{Kind: Unrevealed}
	case ch == 'F':
		return CellState{Kind: Flagged}
	case ch == '.':
		return RevealedN(0)
	case ch >= '0' && ch <= '8':
		return RevealedN(int(ch - '0'))
	default:
		return CellState{Kind: Unknown}
	}
}
