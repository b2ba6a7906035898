package board

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

var (
	testTan  = vision.RGB{R: 229, G: 194, B: 159}
	testFlag = vision.RGB{R: 242, G: 54, B: 7}
)

// paint renders a coarse picture of want on a g-sized image: flat cell
// backgrounds, a red center dot for flags and a 9×9 block for 1–3.
func paint(g Geometry, want *grid.Board) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	want.Each(func(c grid.Coord, st grid.CellState) {
		x0, y0, x1, y1 := g.CellRect(c)
		bg := vision.UnrevealedLight
		if st.Kind == grid.Revealed {
			bg = testTan
		}
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, bg.RGBA())
			}
		}
		cx, cy := g.SamplePoint(c)
		switch {
		case st.Kind == grid.Flagged:
			img.SetRGBA(cx, cy, testFlag.RGBA())
		case st.Kind == grid.Revealed && st.Number > 0:
			col := []vision.RGB{vision.Number1, vision.Number2, vision.Number3}[st.Number-1]
			for y := cy - 4; y <= cy+4; y++ {
				for x := cx - 4; x <= cx+4; x++ {
					img.SetRGBA(x, y, col.RGBA())
				}
			}
		}
	})
	return img
}

func TestLookupProfile(t *testing.T) {
	g, err := LookupProfile(1080, 840)
	require.NoError(t, err)
	assert.Equal(t, "medium", g.Name)
	assert.Equal(t, 14, g.Rows)
	assert.Equal(t, 18, g.Cols)

	g, err = LookupProfile(540, 420)
	require.NoError(t, err)
	assert.Equal(t, "medium-half", g.Name)

	_, err = LookupProfile(800, 600)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	assert.Contains(t, err.Error(), "800x600")
}

func TestProfileByName(t *testing.T) {
	g, err := ProfileByName("medium-half")
	require.NoError(t, err)
	assert.Equal(t, 540, g.Width)

	_, err = ProfileByName("expert")
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	assert.Equal(t, []string{"medium", "medium-half"}, ProfileNames())
}

func TestCellCenter(t *testing.T) {
	g, _ := ProfileByName("medium")
	x, y := g.CellCenter(grid.Coord{Row: 0, Col: 0})
	assert.InDelta(t, 33.75, x, 1e-9)
	assert.InDelta(t, 35.5, y, 1e-9)

	x, y = g.CellCenter(grid.Coord{Row: 13, Col: 17})
	assert.InDelta(t, 1045.25, x, 1e-9)
	assert.InDelta(t, 802.5, y, 1e-9)

	px, py := g.SamplePoint(grid.Coord{Row: 13, Col: 17})
	assert.Equal(t, 1045, px)
	assert.Equal(t, 802, py)
}

func TestCellAtInvertsCellCenter(t *testing.T) {
	for _, g := range Profiles {
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				c := grid.Coord{Row: row, Col: col}
				x, y := g.CellCenter(c)
				got, ok := g.CellAt(x, y)
				require.True(t, ok, "%s %v", g.Name, c)
				require.Equal(t, c, got, g.Name)
			}
		}
		_, ok := g.CellAt(0, 0)
		assert.False(t, ok, g.Name)
		_, ok = g.CellAt(float64(g.Width)-0.5, float64(g.Height)-0.5)
		assert.False(t, ok, g.Name)
	}
}

func TestReaderRoundTrip(t *testing.T) {
	g, _ := ProfileByName("medium")
	want := grid.Parse(`
		- - - - - - - - - - - - - - - - - -
		- 1 1 1 - - - - - - - - - - - - - -
		- 1 . 1 - - - - - - - - - F - - - -
		- 1 1 1 - - - - - - - - - - - - - -
		- - - - - - 2 3 - - - - - - - - - -
		- - - - - - - - - - - - - - - - - -
		. . . . . . . . . . . . . . . . . .
		. . . . . . . . . . . . . . . . . .
		- - - - - - - - - - - - - - - - - -
		- - - - - - - - - - - - - - - - - -
		- - - - - - - - - - - - - - - - - -
		- - - - - - - - - - - - - - - - - -
		- - - - - - - - - - - - - - - - - -
		F - - - - - - - - - - - - - - - - F
	`)
	require.Equal(t, g.Rows, want.Rows)
	require.Equal(t, g.Cols, want.Cols)

	r := NewReader(g)
	got := r.Read(vision.NewImageSurface(paint(g, want)))
	if diff := cmp.Diff(want.String(), got.String()); diff != "" {
		t.Fatalf("board mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []grid.Coord{{Row: 2, Col: 13}, {Row: 13, Col: 0}, {Row: 13, Col: 17}}, r.Locked().Coords())
}

func TestReaderLocksFlagOnce(t *testing.T) {
	g, _ := ProfileByName("medium-half")
	want := grid.NewBoard(g.Rows, g.Cols)
	want.Each(func(c grid.Coord, _ grid.CellState) {
		want.Set(c, grid.CellState{Kind: grid.Unrevealed})
	})
	want.Set(grid.Coord{Row: 5, Col: 5}, grid.CellState{Kind: grid.Flagged})
	s := vision.NewImageSurface(paint(g, want))

	var notices []grid.Coord
	r := NewReader(g, WithLockObserver(func(c grid.Coord) { notices = append(notices, c) }))
	for i := 0; i < 3; i++ {
		b := r.Read(s)
		require.Equal(t, grid.Flagged, b.At(grid.Coord{Row: 5, Col: 5}).Kind)
	}
	assert.Equal(t, []grid.Coord{{Row: 5, Col: 5}}, notices)
	assert.Equal(t, 1, r.Locked().Len())
}

func TestReaderNeverUnlocks(t *testing.T) {
	g, _ := ProfileByName("medium")
	flagged := grid.NewBoard(g.Rows, g.Cols)
	flagged.Set(grid.Coord{Row: 1, Col: 1}, grid.CellState{Kind: grid.Flagged})
	r := NewReader(g)
	r.Read(vision.NewImageSurface(paint(g, flagged)))
	require.True(t, r.Locked().Has(grid.Coord{Row: 1, Col: 1}))

	// Same cell now reads as unrevealed (flag toggled off by hand).
	r.Read(vision.NewImageSurface(paint(g, grid.NewBoard(g.Rows, g.Cols))))
	assert.True(t, r.Locked().Has(grid.Coord{Row: 1, Col: 1}))
}

func TestReaderInspect(t *testing.T) {
	g, _ := ProfileByName("medium")
	b := grid.NewBoard(g.Rows, g.Cols)
	b.Set(grid.Coord{Row: 3, Col: 4}, grid.RevealedN(2))
	r := NewReader(g)
	in := r.Inspect(vision.NewImageSurface(paint(g, b)), grid.Coord{Row: 3, Col: 4})
	assert.Equal(t, grid.RevealedN(2), in.State)
	assert.Len(t, in.Samples, len(vision.Constellation))
}
