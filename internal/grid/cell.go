package grid

import "fmt"

// Kind identifies what the classifier believes a cell is showing.
type Kind uint8

const (
	Unknown    Kind = iota // classifier refused to commit
	Unrevealed             // covered cell, safe to consider for a click
	Revealed               // opened cell; Number holds the adjacent mine count
	Flagged                // covered cell carrying a flag glyph
)

// String returns the lower-case kind name used in logs.
func (k Kind) String() string {
	switch k {
	case Unrevealed:
		return "unrevealed"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// CellState is one classified board position. Number is only meaningful
// when Kind is Revealed.
type CellState struct {
	Kind   Kind
	Number int
}

// RevealedN is shorthand for a revealed cell showing n.
func RevealedN(n int) CellState {
	return CellState{Kind: Revealed, Number: n}
}

// Tag returns the compact overlay tag: U, F, ?, or R<n>.
func (c CellState) Tag() string {
	switch c.Kind {
	case Unrevealed:
		return "U"
	case Flagged:
		return "F"
	case Revealed:
		return fmt.Sprintf("R%d", c.Number)
	default:
		return "?"
	}
}

func (c CellState) String() string {
	if c.Kind == Revealed {
		return fmt.Sprintf("revealed #%d", c.Number)
	}
	return c.Kind.String()
}

// IsZero reports whether the cell is a revealed empty (0) cell.
func (c CellState) IsZero() bool {
	return c.Kind == Revealed && c.Number == 0
}

// Coord is a zero-based (row, col) board position.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}
