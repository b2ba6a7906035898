package game

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	xdraw "golang.org/x/image/draw"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

// Inspector panel geometry, in screen pixels.
const (
	inspMaxSide = 180 // longest side of the magnified capture
	inspPad     = 6
	inspLineH   = 13
	inspTextH   = 6 * inspLineH
)

var (
	markReadable   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	markUnreadable = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	markCenter     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Inspector shows a magnified capture of the cells around a target with
// the classifier's sampling points marked.
type Inspector struct {
	visible bool
	target  grid.Coord
	hasCell bool
	stamp   int // session tick the capture was taken at
	capture *ebiten.Image
	working vision.Inspection
}

// captureRect is the 3×3-cell block centred on c, clipped to the surface.
func captureRect(g board.Geometry, c grid.Coord) image.Rectangle {
	x0, y0, _, _ := g.CellRect(grid.Coord{Row: c.Row - 1, Col: c.Col - 1})
	_, _, x1, y1 := g.CellRect(grid.Coord{Row: c.Row + 1, Col: c.Col + 1})
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, g.Width, g.Height))
}

// magnifyScale picks the largest whole factor that keeps r within maxSide.
func magnifyScale(r image.Rectangle, maxSide int) int {
	side := r.Dx()
	if r.Dy() > side {
		side = r.Dy()
	}
	if side <= 0 {
		return 1
	}
	if s := maxSide / side; s > 1 {
		return s
	}
	return 1
}

// Magnify copies r out of src scaled by a whole factor with
// nearest-neighbour sampling, so every source pixel stays a solid block.
func Magnify(src image.Image, r image.Rectangle, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx()*scale, r.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, r, xdraw.Src, nil)
	return dst
}

// markSamples paints one magnified pixel block at every sampling point of
// in, relative to the capture origin.
func markSamples(dst *image.RGBA, in vision.Inspection, origin image.Point, scale int) {
	for _, s := range in.Samples {
		col := markReadable
		switch {
		case s.DX == 0 && s.DY == 0:
			col = markCenter
		case !s.OK:
			col = markUnreadable
		}
		x := (in.X + s.DX - origin.X) * scale
		y := (in.Y + s.DY - origin.Y) * scale
		block := image.Rect(x, y, x+scale, y+scale).Intersect(dst.Bounds())
		for py := block.Min.Y; py < block.Max.Y; py++ {
			for px := block.Min.X; px < block.Max.X; px++ {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

// inspectionLines is the text under the capture.
func inspectionLines(c grid.Coord, in vision.Inspection) []string {
	center := "unreadable"
	for _, s := range in.Samples {
		if s.DX == 0 && s.DY == 0 && s.OK {
			center = fmt.Sprintf("(%d,%d,%d)", s.Color.R, s.Color.G, s.Color.B)
		}
	}
	v := in.Votes
	flagNote := ""
	if in.Verdict.AmbiguousFlag {
		flagNote = " ambiguous-flag"
	}
	return []string{
		fmt.Sprintf("cell %s -> %s%s", c, in.State.Tag(), flagNote),
		fmt.Sprintf("sample (%d,%d) center %s", in.X, in.Y, center),
		fmt.Sprintf("unrev %d+%d  flag %d  tan %d", v.UnrevealedLight, v.UnrevealedDark, v.Flag, v.RevealedTan),
		fmt.Sprintf("n1 %d  n2 %d  n3 %d  other %d", v.Number1, v.Number2, v.Number3, v.OtherNumber),
	}
}

// refreshInspector re-captures when the target or the tick changed.
func (g *Game) refreshInspector() {
	in := &g.inspector
	target, ok := g.inspectTarget()
	if !ok {
		in.hasCell = false
		return
	}
	if in.hasCell && in.target == target && in.stamp == g.sess.CurrentTick() && in.capture != nil {
		return
	}
	geom := g.sess.Host.Geometry()
	src := g.sess.Host.Image()
	r := captureRect(geom, target)
	scale := magnifyScale(r, inspMaxSide)
	work := g.sess.Reader.Inspect(g.sess.Host.Surface(), target)
	mag := Magnify(src, r, scale)
	markSamples(mag, work, r.Min, scale)

	if in.capture != nil {
		in.capture.Deallocate()
	}
	in.capture = ebiten.NewImageFromImage(mag)
	in.working = work
	in.target = target
	in.hasCell = true
	in.stamp = g.sess.CurrentTick()
}

// inspectTarget is the pending proposal's cell, else the hovered cell.
func (g *Game) inspectTarget() (grid.Coord, bool) {
	if p, ok := g.sess.Controller.Pending(); ok {
		return p.Move.Coord(), true
	}
	mx, my := ebiten.CursorPosition()
	return g.sess.Host.Geometry().CellAt(float64(mx-g.offX), float64(my-g.offY))
}

// drawInspector renders the capture and its working at the bottom of the
// log panel.
func (g *Game) drawInspector(screen *ebiten.Image) {
	in := &g.inspector
	if !in.visible || !in.hasCell || in.capture == nil {
		return
	}
	w, h := in.capture.Bounds().Dx(), in.capture.Bounds().Dy()
	px := g.logX() + (logPanelWidth-w)/2
	py := g.height - h - inspTextH - inspPad*2

	panelBg := color.RGBA{R: 14, G: 16, B: 14, A: 235}
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, float32(g.logX()), float32(py-inspPad), float32(logPanelWidth), float32(g.height-py+inspPad), panelBg, false)
	vector.StrokeLine(screen, float32(g.logX()), float32(py-inspPad), float32(g.logX()+logPanelWidth), float32(py-inspPad), 1.0, panelBorder, false)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(in.capture, opts)
	vector.StrokeRect(screen, float32(px), float32(py), float32(w), float32(h), 1.0, panelBorder, false)

	ly := py + h + inspPad
	for _, line := range inspectionLines(in.target, in.working) {
		ebitenutil.DebugPrintAt(screen, line, g.logX()+inspPad, ly)
		ly += inspLineH
	}
}
