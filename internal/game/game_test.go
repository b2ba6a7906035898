package game

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/decision"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/host"
	"github.com/Garsondee/Mine-Sense/internal/session"
	"github.com/Garsondee/Mine-Sense/internal/solver"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

func wallLayout() []grid.Coord {
	out := make([]grid.Coord, 0, 14)
	for r := 0; r < 14; r++ {
		out = append(out, grid.Coord{Row: r, Col: 5})
	}
	return out
}

func pendingSim(t *testing.T) *session.Sim {
	t.Helper()
	s, err := session.NewSim(session.WithLayout(wallLayout()...), session.WithAutoApprove(false))
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	if out := s.Step(); out != decision.OutcomeProposed {
		t.Fatalf("expected a proposal, got %s", out)
	}
	return s
}

// --- Bot log ---

func TestBotLog_RingKeepsNewest(t *testing.T) {
	bl := NewBotLog()
	for i := 0; i < logMaxEntries+10; i++ {
		bl.Add(i, "--", entryInfo, "line")
	}
	got := bl.Recent()
	if len(got) != logMaxEntries {
		t.Fatalf("expected %d entries, got %d", logMaxEntries, len(got))
	}
	if got[0].Tick != 10 || got[len(got)-1].Tick != logMaxEntries+9 {
		t.Fatalf("expected ticks 10..%d, got %d..%d", logMaxEntries+9, got[0].Tick, got[len(got)-1].Tick)
	}
}

func TestBotLog_RecentBeforeWrap(t *testing.T) {
	bl := NewBotLog()
	bl.Add(1, "0,0", entryProposal, "a")
	bl.Add(2, "0,0", entryExecuted, "b")
	got := bl.Recent()
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestDescribeEvent(t *testing.T) {
	p := &decision.Proposal{
		Move:     solver.Move{Row: 2, Col: 3, Action: solver.Flag, Tier: solver.TierConstraint},
		Detected: grid.CellState{Kind: grid.Unrevealed},
	}
	cases := []struct {
		name string
		ev   decision.Event
		kind entryKind
		msg  string
		ok   bool
	}{
		{"proposed", decision.Event{From: decision.StateProposalPending, To: decision.StateAwaitingApproval, Proposal: p}, entryProposal, "propose flag (constraint) saw U", true},
		{"executed", decision.Event{From: decision.StateAwaitingApproval, To: decision.StateExecuted, Proposal: p, Reason: "approved"}, entryExecuted, "flag approved", true},
		{"stale", decision.Event{From: decision.StateAwaitingApproval, To: decision.StateStale, Proposal: p, Reason: "target now revealed"}, entryStale, "dropped: target now revealed", true},
		{"stopped", decision.Event{From: decision.StateAwaitingApproval, To: decision.StateIdle, Proposal: p, Reason: "stopped"}, entryStale, "discarded: stopped", true},
		{"transient", decision.Event{From: decision.StateIdle, To: decision.StateProposalPending, Proposal: p}, 0, "", false},
		{"after execute", decision.Event{From: decision.StateExecuted, To: decision.StateIdle, Proposal: p}, 0, "", false},
		{"no proposal", decision.Event{From: decision.StateIdle, To: decision.StateIdle}, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, cell, msg, ok := describeEvent(tc.ev)
			if ok != tc.ok {
				t.Fatalf("ok: expected %v, got %v", tc.ok, ok)
			}
			if !ok {
				return
			}
			if kind != tc.kind || msg != tc.msg || cell != "2,3" {
				t.Fatalf("got kind=%d cell=%q msg=%q", kind, cell, msg)
			}
		})
	}
}

func TestDescribePress(t *testing.T) {
	cell, msg := describePress(host.Press{X: 40, Y: 30, Button: host.Secondary, Cell: grid.Coord{Row: 0, Col: 0}, OnCell: true, Manual: true})
	if cell != "0,0" || msg != "manual flag at (40,30)" {
		t.Fatalf("got cell=%q msg=%q", cell, msg)
	}
	cell, msg = describePress(host.Press{X: 1, Y: 1, Button: host.Primary, Manual: true})
	if cell != "--" || msg != "manual open at (1,1)" {
		t.Fatalf("got cell=%q msg=%q", cell, msg)
	}
}

// --- Inspector ---

func TestMagnify_NearestNeighbourBlocks(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src.SetRGBA(1, 1, red)
	src.SetRGBA(2, 1, blue)

	dst := Magnify(src, image.Rect(1, 1, 3, 2), 3)
	if dst.Bounds() != image.Rect(0, 0, 6, 3) {
		t.Fatalf("unexpected bounds %v", dst.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			want := red
			if x >= 3 {
				want = blue
			}
			if got := dst.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestCaptureRect(t *testing.T) {
	g, err := board.ProfileByName("medium")
	if err != nil {
		t.Fatal(err)
	}
	corner := captureRect(g, grid.Coord{Row: 0, Col: 0})
	if corner.Min != (image.Point{}) {
		t.Fatalf("corner capture should be clipped at the surface edge, got %v", corner)
	}
	_, _, x1, y1 := g.CellRect(grid.Coord{Row: 1, Col: 1})
	if corner.Max != (image.Point{X: x1, Y: y1}) {
		t.Fatalf("corner capture should end at cell 1,1 (%d,%d), got %v", x1, y1, corner)
	}

	mid := captureRect(g, grid.Coord{Row: 5, Col: 5})
	if mid.Dx() < 177 || mid.Dx() > 180 || mid.Dy() < 176 || mid.Dy() > 178 {
		t.Fatalf("interior capture should span three cells, got %v", mid)
	}

	last := captureRect(g, grid.Coord{Row: 13, Col: 17})
	if last.Max.X > g.Width || last.Max.Y > g.Height {
		t.Fatalf("capture should be clipped to the surface, got %v", last)
	}
}

func TestMagnifyScale(t *testing.T) {
	if s := magnifyScale(image.Rect(0, 0, 60, 30), 180); s != 3 {
		t.Fatalf("expected 3, got %d", s)
	}
	if s := magnifyScale(image.Rect(0, 0, 400, 30), 180); s != 1 {
		t.Fatalf("expected 1 for oversize captures, got %d", s)
	}
	if s := magnifyScale(image.Rectangle{}, 180); s != 1 {
		t.Fatalf("expected 1 for empty captures, got %d", s)
	}
}

func TestMarkSamples(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	in := vision.Inspection{
		X: 10, Y: 10,
		Samples: []vision.Sample{
			{Offset: vision.Offset{DX: 0, DY: 0}, OK: true},
			{Offset: vision.Offset{DX: 2, DY: 0}, OK: true},
			{Offset: vision.Offset{DX: 0, DY: 2}, OK: false},
		},
	}
	markSamples(dst, in, image.Point{X: 6, Y: 6}, 2)

	if got := dst.RGBAAt(8, 8); got != markCenter {
		t.Fatalf("center block: got %v", got)
	}
	if got := dst.RGBAAt(13, 9); got != markReadable {
		t.Fatalf("readable block: got %v", got)
	}
	if got := dst.RGBAAt(8, 12); got != markUnreadable {
		t.Fatalf("unreadable block: got %v", got)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Fatalf("unmarked pixel changed: %v", got)
	}
}

func TestInspectionLines(t *testing.T) {
	s := pendingSim(t)
	in := s.Session.Reader.Inspect(s.Session.Host.Surface(), grid.Coord{Row: 0, Col: 0})
	lines := inspectionLines(grid.Coord{Row: 0, Col: 0}, in)
	if !strings.HasPrefix(lines[0], "cell 0,0 -> U") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "center (") {
		t.Fatalf("expected center colour, got %q", lines[1])
	}
}

// --- Panel and report ---

func TestStatusLines(t *testing.T) {
	s := pendingSim(t)

	lines := statusLines(s.Session, false)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "BOT: RUNNING") {
		t.Fatalf("expected running header, got\n%s", joined)
	}
	if !strings.Contains(joined, "CLICK | 0,0 | U | Adjacent") || !strings.Contains(joined, "[Enter] approve") {
		t.Fatalf("expected pending decision line, got\n%s", joined)
	}
	if strings.Contains(joined, "Ctrl+Shift+M") {
		t.Fatal("key legend should be hidden")
	}
	if withKeys := statusLines(s.Session, true); len(withKeys) != len(lines)+3 {
		t.Fatalf("legend should add three lines, got %d vs %d", len(withKeys), len(lines))
	}
}

func TestDebugReport(t *testing.T) {
	s := pendingSim(t)
	r := debugReport(s.Session, 10)

	for _, want := range []string{
		"--- MineSense debug report ---",
		"== PENDING ==",
		"CLICK | 0,0 | U",
		"unrevealed=252 revealed=0 flagged=0 unknown=0",
		"== LOCKED (0) ==",
		"decision  proposed",
	} {
		if !strings.Contains(r, want) {
			t.Fatalf("report missing %q\n%s", want, r)
		}
	}
	if debugReport(nil, 10) != "" {
		t.Fatal("nil session should give an empty report")
	}
}

func TestCopyReport(t *testing.T) {
	s := pendingSim(t)
	g := &Game{sess: s.Session, botLog: NewBotLog(), log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	var copied string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	g.copyReport()
	if !strings.Contains(copied, "== PENDING ==") {
		t.Fatalf("expected the report on the clipboard, got %q", copied)
	}
	if last := g.botLog.Recent(); len(last) != 1 || !strings.HasPrefix(last[0].Message, "report copied") {
		t.Fatalf("expected a copy note, got %+v", last)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	g.copyReport()
	last := g.botLog.Recent()
	if last[len(last)-1].Kind != entryStale || !strings.Contains(last[len(last)-1].Message, "no clipboard") {
		t.Fatalf("expected a failure note, got %+v", last[len(last)-1])
	}
}
