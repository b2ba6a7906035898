package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/session"
	"github.com/Garsondee/Mine-Sense/internal/solver"
)

// hudScale is the integer upscale factor applied to the status panel text.
const hudScale = 2

var (
	clickHighlight  = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	flagHighlight   = color.RGBA{R: 255, G: 60, B: 40, A: 255}
	lockedHighlight = color.RGBA{R: 120, G: 20, B: 160, A: 200}
)

// statusLines is the panel text: controller state, counts from the last
// read, the pending decision and, optionally, the key legend.
func statusLines(s *session.Session, showKeys bool) []string {
	run := "PAUSED"
	if s.Controller.Running() {
		run = "RUNNING"
	}
	field := s.Host.Field()
	lines := []string{
		fmt.Sprintf("BOT: %s  state=%s  last=%s", run, s.Controller.State(), s.Controller.LastOutcome()),
	}
	if st := field.Status().String(); st != "playing" {
		lines = append(lines, fmt.Sprintf("GAME %s  [N] new game", st))
	}
	if b := s.Controller.Board(); b != nil {
		lines = append(lines, fmt.Sprintf("U:%d R:%d F:%d ?:%d  locked:%d",
			b.Count(grid.Unrevealed), b.Count(grid.Revealed), b.Count(grid.Flagged), b.Count(grid.Unknown),
			s.Reader.Locked().Len()))
	} else {
		lines = append(lines, fmt.Sprintf("no read yet  locked:%d", s.Reader.Locked().Len()))
	}
	if p, ok := s.Controller.Pending(); ok {
		lines = append(lines, p.Summary(), "[Enter] approve")
	} else {
		lines = append(lines, "no pending move")
	}
	if showKeys {
		lines = append(lines,
			"Ctrl+Shift+M start/stop  [H] toggle HUD",
			"[I] inspector  [C] copy report  [N] new game",
			"click=open  right-click=flag (manual)",
		)
	}
	return lines
}

// drawHUD renders the status panel into hudBuf at 1x, then blits it at
// hudScale below the surface.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := statusLines(g.sess, g.showHUD)

	const lineH = 12 // debug font line height at 1x
	const charW = 6  // debug font char width at 1x
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, 0, 0, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(g.hudBuf, 0, 0, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	vector.StrokeLine(g.hudBuf, 1, 1, boxW-1, 1, 1.0, color.RGBA{R: 80, G: 140, B: 80, A: 80}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, padX, padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	opts.GeoM.Translate(float64(g.offX), float64(g.offY+g.surfaceH+borderWidth/2))
	screen.DrawImage(g.hudBuf, opts)
}

// drawHighlights outlines the pending target and marks locked cells on the
// surface, in screen coordinates.
func (g *Game) drawHighlights(screen *ebiten.Image) {
	geom := g.sess.Host.Geometry()
	ox, oy := float32(g.offX), float32(g.offY)

	for _, c := range g.sess.Reader.Locked().Coords() {
		x0, y0, x1, y1 := geom.CellRect(c)
		vector.StrokeRect(screen, ox+float32(x0)+2, oy+float32(y0)+2, float32(x1-x0)-4, float32(y1-y0)-4, 2, lockedHighlight, false)
	}

	p, ok := g.sess.Controller.Pending()
	if !ok {
		return
	}
	col := clickHighlight
	if p.Move.Action == solver.Flag {
		col = flagHighlight
	}
	x0, y0, x1, y1 := geom.CellRect(p.Move.Coord())
	vector.StrokeRect(screen, ox+float32(x0), oy+float32(y0), float32(x1-x0), float32(y1-y0), 3, col, false)
	sx, sy := geom.SamplePoint(p.Move.Coord())
	vector.FillRect(screen, ox+float32(sx)-1, oy+float32(sy)-1, 3, 3, col, false)
}
