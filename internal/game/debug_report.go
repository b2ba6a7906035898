package game

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/session"
)

// debugReport is the text copied to the clipboard with C: session header,
// the last board read, the locked set, the pending proposal and the
// session log for the most recent ticks.
func debugReport(s *session.Session, lastTicks int) string {
	if s == nil {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = 40
	}

	toTick := s.CurrentTick()
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	field := s.Host.Field()
	var b strings.Builder
	fmt.Fprintf(&b, "--- MineSense debug report ---\n")
	fmt.Fprintf(&b, "session=%s seed=%d tick_range=[%d..%d]\n", s.ID, s.Seed, fromTick, toTick)
	fmt.Fprintf(&b, "geometry=%s\n", s.Host.Geometry())
	fmt.Fprintf(&b, "game=%s revealed=%d mines=%d misreads=%d\n",
		field.Status(), field.Revealed(), field.Mines, s.Misreads())
	fmt.Fprintf(&b, "controller: running=%t state=%s last=%s\n\n",
		s.Controller.Running(), s.Controller.State(), s.Controller.LastOutcome())

	b.WriteString("== PENDING ==\n")
	if p, ok := s.Controller.Pending(); ok {
		fmt.Fprintf(&b, "%s  id=%s tier=%s\n\n", p.Summary(), p.ID, p.Move.Tier)
	} else {
		b.WriteString("(none)\n\n")
	}

	b.WriteString("== LAST READ ==\n")
	if bd := s.Controller.Board(); bd != nil {
		fmt.Fprintf(&b, "unrevealed=%d revealed=%d flagged=%d unknown=%d\n",
			bd.Count(grid.Unrevealed), bd.Count(grid.Revealed), bd.Count(grid.Flagged), bd.Count(grid.Unknown))
		b.WriteString(bd.String())
		if !strings.HasSuffix(bd.String(), "\n") {
			b.WriteByte('\n')
		}
	} else {
		b.WriteString("(no read yet)\n")
	}
	b.WriteByte('\n')

	locked := s.Reader.Locked().Coords()
	fmt.Fprintf(&b, "== LOCKED (%d) ==\n", len(locked))
	if len(locked) == 0 {
		b.WriteString("(none)\n")
	} else {
		parts := make([]string, len(locked))
		for i, c := range locked {
			parts[i] = c.String()
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("== EVENTS ==\n")
	if events := s.Log.FormatRange(fromTick, toTick); events != "" {
		b.WriteString(events)
	} else {
		b.WriteString("(no events in range)\n")
	}
	return b.String()
}
