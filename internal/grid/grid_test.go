package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_NeighborsOrder(t *testing.T) {
	b := NewBoard(3, 3)
	got := b.Neighbors(Coord{Row: 1, Col: 1})
	want := []Coord{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 2},
		{2, 0}, {2, 1}, {2, 2},
	}
	assert.Equal(t, want, got)
}

func TestBoard_NeighborsCorner(t *testing.T) {
	b := NewBoard(14, 18)
	got := b.Neighbors(Coord{Row: 13, Col: 17})
	assert.Equal(t, []Coord{{12, 16}, {12, 17}, {13, 16}}, got)
}

func TestBoard_OutOfBoundsReadsUnknown(t *testing.T) {
	b := NewBoard(2, 2)
	b.Set(Coord{Row: 5, Col: 5}, RevealedN(3))
	assert.Equal(t, Unknown, b.At(Coord{Row: 5, Col: 5}).Kind)
	assert.Equal(t, Unknown, b.At(Coord{Row: -1, Col: 0}).Kind)
}

func TestParse_RoundTrip(t *testing.T) {
	src := `
	- - F
	. 1 ?
	8 2 -
	`
	b := Parse(src)
	require.Equal(t, 3, b.Rows)
	require.Equal(t, 3, b.Cols)
	assert.Equal(t, CellState{Kind: Flagged}, b.At(Coord{0, 2}))
	assert.True(t, b.At(Coord{1, 0}).IsZero())
	assert.Equal(t, RevealedN(8), b.At(Coord{2, 0}))
	assert.Equal(t, Unknown, b.At(Coord{1, 2}).Kind)
	assert.Equal(t, 3, b.Count(Unrevealed))

	again := Parse(b.String())
	assert.Equal(t, b.String(), again.String())
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := Parse("--\n--")
	c := b.Clone()
	c.Set(Coord{0, 0}, RevealedN(1))
	assert.Equal(t, Unrevealed, b.At(Coord{0, 0}).Kind)
}

func TestCellState_Tag(t *testing.T) {
	cases := map[string]CellState{
		"U":  {Kind: Unrevealed},
		"F":  {Kind: Flagged},
		"?":  {Kind: Unknown},
		"R0": RevealedN(0),
		"R5": RevealedN(5),
	}
	for want, c := range cases {
		assert.Equal(t, want, c.Tag())
	}
}

func TestLockedFlags_IdempotentAndOrdered(t *testing.T) {
	l := NewLockedFlags()
	assert.True(t, l.Lock(Coord{2, 3}))
	assert.False(t, l.Lock(Coord{2, 3}))
	assert.True(t, l.Lock(Coord{0, 1}))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []Coord{{2, 3}, {0, 1}}, l.Coords())
	assert.True(t, l.Has(Coord{0, 1}))
	assert.False(t, l.Has(Coord{1, 1}))
}

func TestLockedFlags_NilIsEmpty(t *testing.T) {
	var l *LockedFlags
	assert.False(t, l.Has(Coord{0, 0}))
	assert.Zero(t, l.Len())
	assert.Nil(t, l.Coords())
}
