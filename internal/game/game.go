// Package game is the ebiten front end: it shows the host surface, runs the
// decision loop at a fixed cadence, and takes approvals from the keyboard or
// the remote surface.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/config"
	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/host"
	"github.com/Garsondee/Mine-Sense/internal/remote"
	"github.com/Garsondee/Mine-Sense/internal/session"
	"github.com/Garsondee/Mine-Sense/internal/telemetry"
)

// borderWidth is the pixel gap between the window edge and the surface.
const borderWidth = 24

// hudAreaHeight is the space reserved under the surface for the status panel.
const hudAreaHeight = 9*12*hudScale + 16

// reportTicks is how much session history the clipboard report carries.
const reportTicks = 60

// Options wires the window to its collaborators. Commands, Reloads and
// Publish may be nil.
type Options struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Commands <-chan remote.Command
	Reloads  <-chan config.Config
	Publish  func(remote.Status)
}

type Game struct {
	cfg     config.Config
	geom    board.Geometry
	log     *slog.Logger
	metrics *telemetry.Metrics

	sess   *session.Session
	games  int
	pacer  *decision.Pacer
	botLog *BotLog

	commands <-chan remote.Command
	reloads  <-chan config.Config
	publish  func(remote.Status)

	width    int
	height   int
	offX     int
	offY     int
	surfaceW int
	surfaceH int

	// Offscreen copy of the host raster, refreshed when the field changes.
	surfaceImg   *ebiten.Image
	surfaceDirty bool
	// Offscreen buffer for HUD text, rendered at 1x then blitted at hudScale.
	hudBuf *ebiten.Image

	inspector Inspector
	showHUD   bool
	prevKeys  map[ebiten.Key]bool
	prevMouse map[ebiten.MouseButton]bool
}

// New builds the window state and the first session.
func New(opts Options) (*Game, error) {
	geom, err := opts.Config.Geometry()
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Game{
		cfg:       opts.Config,
		geom:      geom,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		pacer:     decision.NewPacer(opts.Config.TickInterval),
		botLog:    NewBotLog(),
		commands:  opts.Commands,
		reloads:   opts.Reloads,
		publish:   opts.Publish,
		surfaceW:  geom.Width,
		surfaceH:  geom.Height,
		offX:      borderWidth,
		offY:      borderWidth,
		showHUD:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		prevMouse: make(map[ebiten.MouseButton]bool),
	}
	g.inspector.visible = true
	g.width = borderWidth + geom.Width + borderWidth + logPanelWidth
	g.height = borderWidth + geom.Height + hudAreaHeight + borderWidth
	if err := g.newSession(); err != nil {
		return nil, err
	}
	g.surfaceImg = ebiten.NewImage(geom.Width, geom.Height)
	g.hudBuf = ebiten.NewImage((geom.Width+borderWidth)/hudScale, hudAreaHeight/hudScale)
	return g, nil
}

// WindowSize is the layout size, for the launcher.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}

// newSession starts the next game with the next seed. Locked flags do not
// carry over.
func (g *Game) newSession() error {
	sess, err := session.New(session.Options{
		Geometry:      g.geom,
		Mines:         g.cfg.Mines,
		Seed:          g.cfg.Seed + int64(g.games),
		ClickCooldown: g.cfg.ClickCooldown,
		FlagCooldown:  g.cfg.FlagCooldown,
		Logger:        g.log,
	})
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	if g.metrics != nil {
		sess.UseMetrics(g.metrics)
	}
	sess.OnEvent(g.onEvent)
	if g.cfg.AutoStart {
		sess.Controller.Start()
	}
	g.games++
	g.sess = sess
	g.surfaceDirty = true
	g.inspector.hasCell = false
	g.botLog.Add(0, "--", entryGame, fmt.Sprintf("game %d seed=%d mines=%d", g.games, sess.Seed, sess.Host.Field().Mines))
	return nil
}

func (g *Game) onEvent(ev decision.Event) {
	kind, cell, msg, ok := describeEvent(ev)
	if !ok {
		return
	}
	g.botLog.Add(g.sess.CurrentTick(), cell, kind, msg)
}

func (g *Game) Update() error {
	now := time.Now()
	g.handleInput(now)
	g.drainCommands(now)
	g.drainReloads()

	if g.pacer.Due(now) {
		wasFinished := g.sess.Finished()
		g.sess.Tick(now)
		g.surfaceDirty = true
		if !wasFinished && g.sess.Finished() {
			g.noteGameOver()
		}
		if g.publish != nil {
			g.publish(g.sess.Status(now))
		}
	}
	g.refreshInspector()
	return nil
}

// drainCommands applies every queued remote command without blocking.
func (g *Game) drainCommands(now time.Time) {
	if g.commands == nil {
		return
	}
	for {
		select {
		case cmd := <-g.commands:
			g.applyCommand(cmd, now)
		default:
			return
		}
	}
}

func (g *Game) applyCommand(cmd remote.Command, now time.Time) {
	wasFinished := g.sess.Finished()
	err := g.sess.Apply(cmd, now)
	g.surfaceDirty = true
	switch {
	case err == nil && cmd.Kind == remote.CommandToggle:
		g.botLog.Add(g.sess.CurrentTick(), "--", entryInfo, fmt.Sprintf("%s toggle: running=%t", cmd.Source, g.sess.Controller.Running()))
	case err != nil:
		g.botLog.Add(g.sess.CurrentTick(), "--", entryStale, fmt.Sprintf("%s approve refused: %v", cmd.Source, err))
	}
	if !wasFinished && g.sess.Finished() {
		g.noteGameOver()
	}
}

// drainReloads applies config edits picked up by the file watcher. Only
// the cadence and cooldowns apply to a running session.
func (g *Game) drainReloads() {
	if g.reloads == nil {
		return
	}
	for {
		select {
		case c := <-g.reloads:
			g.cfg.TickInterval = c.TickInterval
			g.cfg.ClickCooldown = c.ClickCooldown
			g.cfg.FlagCooldown = c.FlagCooldown
			g.pacer.SetInterval(c.TickInterval)
			g.sess.Controller.SetCooldowns(c.ClickCooldown, c.FlagCooldown)
			g.log.Info("config reloaded", "tick_interval", c.TickInterval, "click_cooldown", c.ClickCooldown, "flag_cooldown", c.FlagCooldown)
			g.botLog.Add(g.sess.CurrentTick(), "--", entryInfo, "config reloaded")
		default:
			return
		}
	}
}

func (g *Game) noteGameOver() {
	st := g.sess.Host.Field().Status()
	g.botLog.Add(g.sess.CurrentTick(), "--", entryGame, fmt.Sprintf("game %s, revealed %d", st, g.sess.Host.Field().Revealed()))
}

// pressed reports a key edge and records the key's state for next frame.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes approval, toggle and view keys (edge-triggered)
// and manual presses on the surface.
func (g *Game) handleInput(now time.Time) {
	currentKeys := map[ebiten.Key]bool{}

	// Enter: approve the pending move.
	if g.pressed(currentKeys, ebiten.KeyEnter) {
		g.approve(now)
	}

	// Ctrl+Shift+M: start/stop.
	mods := ebiten.IsKeyPressed(ebiten.KeyControl) && ebiten.IsKeyPressed(ebiten.KeyShift)
	if g.pressed(currentKeys, ebiten.KeyM) && mods {
		if !g.sess.Finished() {
			on := g.sess.Controller.Toggle(now)
			g.botLog.Add(g.sess.CurrentTick(), "--", entryInfo, fmt.Sprintf("auto-play running=%t", on))
		}
	}

	if g.pressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(currentKeys, ebiten.KeyI) {
		g.inspector.visible = !g.inspector.visible
	}
	if g.pressed(currentKeys, ebiten.KeyC) && !mods {
		g.copyReport()
	}
	if g.pressed(currentKeys, ebiten.KeyN) {
		g.sess.Controller.Stop(now)
		if err := g.newSession(); err != nil {
			g.log.Error("new game failed", "err", err)
		}
	}
	g.prevKeys = currentKeys

	// Mouse: manual play on the surface.
	for _, b := range []ebiten.MouseButton{ebiten.MouseButtonLeft, ebiten.MouseButtonRight} {
		down := ebiten.IsMouseButtonPressed(b)
		if down && !g.prevMouse[b] {
			mx, my := ebiten.CursorPosition()
			g.manualPress(mx, my, b, now)
		}
		g.prevMouse[b] = down
	}
}

func (g *Game) approve(now time.Time) {
	wasFinished := g.sess.Finished()
	err := g.sess.Approve(now)
	switch {
	case errors.Is(err, decision.ErrNoProposal):
		g.botLog.Add(g.sess.CurrentTick(), "--", entryInfo, "nothing to approve")
	case err != nil:
		g.botLog.Add(g.sess.CurrentTick(), "--", entryStale, err.Error())
	}
	g.surfaceDirty = true
	if !wasFinished && g.sess.Finished() {
		g.noteGameOver()
	}
}

// manualPress forwards a mouse press inside the surface to the host.
func (g *Game) manualPress(mx, my int, b ebiten.MouseButton, now time.Time) {
	x, y := mx-g.offX, my-g.offY
	if x < 0 || y < 0 || x >= g.surfaceW || y >= g.surfaceH {
		return
	}
	btn := host.Primary
	if b == ebiten.MouseButtonRight {
		btn = host.Secondary
	}
	wasFinished := g.sess.Finished()
	p := g.sess.Press(float64(x)+0.5, float64(y)+0.5, btn, now)
	cell, msg := describePress(p)
	g.botLog.Add(g.sess.CurrentTick(), cell, entryManual, msg)
	g.surfaceDirty = true
	if !wasFinished && g.sess.Finished() {
		g.noteGameOver()
	}
}

func (g *Game) logX() int {
	return g.offX + g.surfaceW + g.offX
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	if g.surfaceDirty {
		g.surfaceImg.WritePixels(g.sess.Host.Image().Pix)
		g.surfaceDirty = false
	}
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.surfaceImg, opts)

	// Surface border frame.
	ox := float32(g.offX)
	oy := float32(g.offY)
	sw := float32(g.surfaceW)
	sh := float32(g.surfaceH)
	vector.StrokeRect(screen, ox-1, oy-1, sw+2, sh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	g.drawHighlights(screen)
	g.botLog.Draw(screen, g.logX(), g.height)
	g.drawHUD(screen)
	g.drawInspector(screen)

	if !g.sess.Controller.Running() && !g.sess.Finished() {
		ebitenutil.DebugPrintAt(screen, "PAUSED  Ctrl+Shift+M to start", g.offX+6, 4)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
