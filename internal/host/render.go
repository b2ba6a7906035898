package host

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/grid"
)

// Palette of the rendered board.
var (
	BorderColor  = color.RGBA{R: 74, G: 117, B: 44, A: 255}
	CoveredLight = color.RGBA{R: 169, G: 214, B: 79, A: 255}
	CoveredDark  = color.RGBA{R: 161, G: 209, B: 71, A: 255}
	OpenLight    = color.RGBA{R: 229, G: 194, B: 159, A: 255}
	OpenDark     = color.RGBA{R: 215, G: 184, B: 153, A: 255}
	FlagColor    = color.RGBA{R: 242, G: 54, B: 7, A: 255}
	PoleColor    = color.RGBA{R: 100, G: 60, B: 30, A: 255}
	MineColor    = color.RGBA{R: 219, G: 50, B: 54, A: 255}
	GlyphColor   = color.RGBA{R: 250, G: 245, B: 235, A: 255}
	DigitColors  = [9]color.RGBA{
		{},
		{R: 23, G: 116, B: 209, A: 255},
		{R: 56, G: 143, B: 60, A: 255},
		{R: 212, G: 47, B: 47, A: 255},
		{R: 110, G: 29, B: 145, A: 255},
		{R: 150, G: 35, B: 35, A: 255},
		{R: 0, G: 140, B: 150, A: 255},
		{R: 30, G: 30, B: 30, A: 255},
		{R: 128, G: 128, B: 128, A: 255},
	}
)

// digitRadius is the radius of the coloured badge behind each number.
const digitRadius = 8

// Renderer paints a Minefield onto an RGBA raster laid out by a Geometry.
type Renderer struct {
	geom board.Geometry
	face font.Face
}

// NewRenderer returns a renderer for geom.
func NewRenderer(geom board.Geometry) *Renderer {
	return &Renderer{geom: geom, face: basicfont.Face7x13}
}

// Geometry returns the layout the renderer paints.
func (r *Renderer) Geometry() board.Geometry { return r.geom }

// NewCanvas allocates a raster of the geometry's surface size.
func (r *Renderer) NewCanvas() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, r.geom.Width, r.geom.Height))
}

// Render repaints the whole of dst from m.
func (r *Renderer) Render(m *Minefield, dst *image.RGBA) {
	fill(dst, dst.Bounds(), BorderColor)
	for row := 0; row < r.geom.Rows && row < m.Rows; row++ {
		for col := 0; col < r.geom.Cols && col < m.Cols; col++ {
			c := grid.Coord{Row: row, Col: col}
			r.renderCell(dst, c, m.Cell(c))
		}
	}
}

func (r *Renderer) renderCell(dst *image.RGBA, c grid.Coord, cell Cell) {
	x0, y0, x1, y1 := r.geom.CellRect(c)
	rect := image.Rect(x0, y0, x1, y1)
	light := (c.Row+c.Col)%2 == 0
	cx, cy := r.geom.SamplePoint(c)

	switch {
	case cell.Revealed && cell.Mine:
		fill(dst, rect, MineColor)
	case cell.Revealed:
		bg := OpenDark
		if light {
			bg = OpenLight
		}
		fill(dst, rect, bg)
		if cell.Adjacent > 0 {
			r.drawDigit(dst, cx, cy, cell.Adjacent)
		}
	default:
		bg := CoveredDark
		if light {
			bg = CoveredLight
		}
		fill(dst, rect, bg)
		if cell.Flagged {
			drawFlag(dst, cx, cy)
		}
	}
}

// drawDigit paints a filled badge in the digit's colour and the numeral on
// top of it.
func (r *Renderer) drawDigit(dst *image.RGBA, cx, cy, n int) {
	col := DigitColors[n]
	for dy := -digitRadius; dy <= digitRadius; dy++ {
		for dx := -digitRadius; dx <= digitRadius; dx++ {
			if dx*dx+dy*dy <= digitRadius*digitRadius {
				dst.SetRGBA(cx+dx, cy+dy, col)
			}
		}
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(GlyphColor),
		Face: r.face,
		Dot:  fixed.P(cx-3, cy+5),
	}
	d.DrawString(strconv.Itoa(n))
}

// drawFlag paints a pole with a right-pointing pennant whose widest row
// crosses the center. The cell corners stay covered-green.
func drawFlag(dst *image.RGBA, cx, cy int) {
	for y := cy - 7; y <= cy+6; y++ {
		dst.SetRGBA(cx-3, y, PoleColor)
	}
	for x := cx - 5; x <= cx-1; x++ {
		dst.SetRGBA(x, cy+7, PoleColor)
	}
	for dy := -3; dy <= 3; dy++ {
		w := 8 - 2*abs(dy)
		y := cy - 2 + dy
		for x := cx - 2; x < cx-2+w; x++ {
			dst.SetRGBA(x, y, FlagColor)
		}
	}
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
