package host

import (
	"image"
	"io"
	"log/slog"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/solver"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

// Button is the pointer button of a press.
type Button uint8

const (
	Primary   Button = iota // opens
	Secondary               // toggles a flag
)

func (b Button) String() string {
	if b == Secondary {
		return "secondary"
	}
	return "primary"
}

// Press is one pointer press delivered to the surface, by the executor or
// by a person.
type Press struct {
	X, Y   float64
	Button Button
	Cell   grid.Coord
	OnCell bool
	Manual bool
}

// Host owns a minefield and the raster it is rendered to. Presses mutate
// the field and mark the raster for repaint on the next Surface call.
type Host struct {
	field    *Minefield
	renderer *Renderer
	canvas   *image.RGBA
	surface  *vision.ImageSurface
	dirty    bool
	log      *slog.Logger
	onPress  []func(Press)
}

// New returns a host rendering field with geom.
func New(field *Minefield, geom board.Geometry, log *slog.Logger) *Host {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := NewRenderer(geom)
	canvas := r.NewCanvas()
	return &Host{
		field:    field,
		renderer: r,
		canvas:   canvas,
		surface:  vision.NewImageSurface(canvas),
		dirty:    true,
		log:      log,
	}
}

// Field returns the game model.
func (h *Host) Field() *Minefield { return h.field }

// Geometry returns the surface layout.
func (h *Host) Geometry() board.Geometry { return h.renderer.Geometry() }

// OnPress registers fn to observe every press.
func (h *Host) OnPress(fn func(Press)) {
	h.onPress = append(h.onPress, fn)
}

// Surface repaints if needed and returns the readable raster.
func (h *Host) Surface() vision.Surface {
	h.refresh()
	return h.surface
}

// Image repaints if needed and returns the raster.
func (h *Host) Image() *image.RGBA {
	h.refresh()
	return h.canvas
}

func (h *Host) refresh() {
	if !h.dirty {
		return
	}
	h.renderer.Render(h.field, h.canvas)
	h.dirty = false
}

// Press delivers a pointer press at pixel (x, y). The target cell is found
// by hit test, as a real pointer would.
func (h *Host) Press(x, y float64, btn Button, manual bool) Press {
	p := Press{X: x, Y: y, Button: btn, Manual: manual}
	p.Cell, p.OnCell = h.Geometry().CellAt(x, y)
	if p.OnCell && p.Cell.Row < h.field.Rows && p.Cell.Col < h.field.Cols {
		switch btn {
		case Primary:
			if !h.field.Open(p.Cell) {
				h.log.Warn("mine hit", "cell", p.Cell.String(), "manual", manual)
			}
		case Secondary:
			h.field.ToggleFlag(p.Cell)
		}
		h.dirty = true
	}
	if manual {
		h.log.Info("manual press", "x", x, "y", y, "button", btn.String(), "cell", p.Cell.String(), "on_cell", p.OnCell)
	}
	for _, fn := range h.onPress {
		fn(p)
	}
	return p
}

// PointerExecutor turns approved moves into presses at the target cell's
// pixel center.
type PointerExecutor struct {
	host *Host
}

// NewPointerExecutor returns an executor pressing on h.
func NewPointerExecutor(h *Host) *PointerExecutor {
	return &PointerExecutor{host: h}
}

// Execute presses primary for Click and secondary for Flag.
func (e *PointerExecutor) Execute(m solver.Move) {
	x, y := e.host.Geometry().CellCenter(m.Coord())
	btn := Primary
	if m.Action == solver.Flag {
		btn = Secondary
	}
	e.host.Press(x, y, btn, false)
}

// Locate selects the geometry for a captured raster. Unknown sizes are
// board.ErrUnsupportedGeometry.
func Locate(img image.Image) (vision.Surface, board.Geometry, error) {
	b := img.Bounds()
	g, err := board.LookupProfile(b.Dx(), b.Dy())
	if err != nil {
		return nil, board.Geometry{}, err
	}
	return vision.NewImageSurface(img), g, nil
}
