package board

import (
	"errors"
	"fmt"
	"math"

	"github.com/Garsondee/Mine-Sense/internal/grid"
)

// ErrUnsupportedGeometry is returned for surface dimensions that have no
// entry in the profile table.
var ErrUnsupportedGeometry = errors.New("unsupported surface geometry")

// Geometry maps board coordinates to surface pixels. Cell sizes are
// fractional; centers are truncated to whole pixels only when sampled.
type Geometry struct {
	Name       string
	Width      int
	Height     int
	OriginX    float64
	OriginY    float64
	CellWidth  float64
	CellHeight float64
	Rows       int
	Cols       int
}

// Profiles is the fixed table of supported surfaces.
var Profiles = []Geometry{
	{
		Name: "medium", Width: 1080, Height: 840,
		OriginX: 4, OriginY: 6, CellWidth: 59.5, CellHeight: 59,
		Rows: 14, Cols: 18,
	},
	{
		Name: "medium-half", Width: 540, Height: 420,
		OriginX: 2, OriginY: 3, CellWidth: 29.75, CellHeight: 29.5,
		Rows: 14, Cols: 18,
	},
}

// LookupProfile selects the profile for a w×h surface. There is no
// fallback: anything not in the table is ErrUnsupportedGeometry.
func LookupProfile(w, h int) (Geometry, error) {
	for _, g := range Profiles {
		if g.Width == w && g.Height == h {
			return g, nil
		}
	}
	return Geometry{}, fmt.Errorf("%dx%d: %w", w, h, ErrUnsupportedGeometry)
}

// ProfileByName looks a profile up by its config name.
func ProfileByName(name string) (Geometry, error) {
	for _, g := range Profiles {
		if g.Name == name {
			return g, nil
		}
	}
	return Geometry{}, fmt.Errorf("profile %q: %w", name, ErrUnsupportedGeometry)
}

// ProfileNames lists the known profile names in table order.
func ProfileNames() []string {
	names := make([]string, len(Profiles))
	for i, g := range Profiles {
		names[i] = g.Name
	}
	return names
}

// Cells returns rows*cols.
func (g Geometry) Cells() int {
	return g.Rows * g.Cols
}

// CellCenter returns the pixel-space center of c.
func (g Geometry) CellCenter(c grid.Coord) (x, y float64) {
	x = g.OriginX + float64(c.Col)*g.CellWidth + g.CellWidth/2
	y = g.OriginY + float64(c.Row)*g.CellHeight + g.CellHeight/2
	return x, y
}

// SamplePoint is CellCenter truncated to the pixel the classifier reads.
func (g Geometry) SamplePoint(c grid.Coord) (x, y int) {
	fx, fy := g.CellCenter(c)
	return int(math.Floor(fx)), int(math.Floor(fy))
}

// CellAt is the inverse hit test: the cell containing pixel-space (x, y).
func (g Geometry) CellAt(x, y float64) (grid.Coord, bool) {
	if x < g.OriginX || y < g.OriginY {
		return grid.Coord{}, false
	}
	col := int(math.Floor((x - g.OriginX) / g.CellWidth))
	row := int(math.Floor((y - g.OriginY) / g.CellHeight))
	if row >= g.Rows || col >= g.Cols {
		return grid.Coord{}, false
	}
	return grid.Coord{Row: row, Col: col}, true
}

// CellRect returns the whole-pixel rectangle covered by c as
// [x0, x1) × [y0, y1).
func (g Geometry) CellRect(c grid.Coord) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(g.OriginX + float64(c.Col)*g.CellWidth))
	x1 = int(math.Floor(g.OriginX + float64(c.Col+1)*g.CellWidth))
	y0 = int(math.Floor(g.OriginY + float64(c.Row)*g.CellHeight))
	y1 = int(math.Floor(g.OriginY + float64(c.Row+1)*g.CellHeight))
	return x0, y0, x1, y1
}

func (g Geometry) String() string {
	return fmt.Sprintf("%s %dx%d: %dx%d cells of %.2fx%.2f at (%.0f,%.0f)",
		g.Name, g.Width, g.Height, g.Cols, g.Rows, g.CellWidth, g.CellHeight, g.OriginX, g.OriginY)
}
