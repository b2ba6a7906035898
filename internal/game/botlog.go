package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/host"
)

const (
	logPanelWidth = 340
	logMaxEntries = 60
	logLineHeight = 11
)

// entryKind picks the indicator colour of a bot log line.
type entryKind uint8

const (
	entryInfo entryKind = iota
	entryProposal
	entryExecuted
	entryStale
	entryManual
	entryGame
)

var entryColors = [...]color.RGBA{
	entryInfo:     {R: 150, G: 150, B: 150, A: 255},
	entryProposal: {R: 230, G: 190, B: 60, A: 255},
	entryExecuted: {R: 90, G: 200, B: 90, A: 255},
	entryStale:    {R: 210, G: 90, B: 60, A: 255},
	entryManual:   {R: 90, G: 150, B: 230, A: 255},
	entryGame:     {R: 240, G: 240, B: 240, A: 255},
}

// BotEntry is a single line in the bot log.
type BotEntry struct {
	Tick    int
	Cell    string // "r,c" or "--"
	Kind    entryKind
	Message string
}

// BotLog is a ring buffer of decision and press lines rendered on-screen.
type BotLog struct {
	entries []BotEntry
	head    int
	count   int
}

// NewBotLog creates a bot log with a fixed capacity.
func NewBotLog() *BotLog {
	return &BotLog{
		entries: make([]BotEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (bl *BotLog) Add(tick int, cell string, kind entryKind, msg string) {
	bl.entries[bl.head] = BotEntry{
		Tick:    tick,
		Cell:    cell,
		Kind:    kind,
		Message: msg,
	}
	bl.head = (bl.head + 1) % logMaxEntries
	if bl.count < logMaxEntries {
		bl.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (bl *BotLog) Recent() []BotEntry {
	result := make([]BotEntry, bl.count)
	for i := 0; i < bl.count; i++ {
		idx := (bl.head - bl.count + i + logMaxEntries) % logMaxEntries
		result[i] = bl.entries[idx]
	}
	return result
}

// describeEvent turns a controller transition into a log line. Transient
// hops that carry nothing new for a person watching return ok=false.
func describeEvent(ev decision.Event) (kind entryKind, cell, msg string, ok bool) {
	if ev.Proposal == nil {
		return 0, "", "", false
	}
	p := ev.Proposal
	cell = p.Move.Coord().String()
	switch {
	case ev.To == decision.StateAwaitingApproval:
		return entryProposal, cell, fmt.Sprintf("propose %s (%s) saw %s", p.Move.Action, p.Move.Tier, p.Detected.Tag()), true
	case ev.To == decision.StateExecuted:
		return entryExecuted, cell, fmt.Sprintf("%s approved", p.Move.Action), true
	case ev.To == decision.StateStale:
		return entryStale, cell, "dropped: " + ev.Reason, true
	case ev.From == decision.StateAwaitingApproval && ev.To == decision.StateIdle:
		return entryStale, cell, "discarded: " + ev.Reason, true
	}
	return 0, "", "", false
}

// describePress turns a manual press into a log line.
func describePress(p host.Press) (cell, msg string) {
	cell = "--"
	if p.OnCell {
		cell = p.Cell.String()
	}
	verb := "open"
	if p.Button == host.Secondary {
		verb = "flag"
	}
	return cell, fmt.Sprintf("manual %s at (%.0f,%.0f)", verb, p.X, p.Y)
}

// Draw renders the bot log panel on the right side of the screen.
func (bl *BotLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	// Panel background.
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	// Left separator line.
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	// Title bar.
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "BOT LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := bl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3 // how many latest entries to highlight

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, entryColors[e.Kind], false)

		line := fmt.Sprintf("%4d [%s] %s", e.Tick, e.Cell, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += logLineHeight
	}
}
