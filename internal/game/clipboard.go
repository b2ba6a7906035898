package game

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// copyReport puts the debug report on the system clipboard and notes the
// result in the bot log.
func (g *Game) copyReport() {
	report := debugReport(g.sess, reportTicks)
	if err := writeClipboard(report); err != nil {
		g.log.Warn("clipboard copy failed", "err", err)
		g.botLog.Add(g.sess.CurrentTick(), "--", entryStale, "copy failed: "+err.Error())
		return
	}
	g.botLog.Add(g.sess.CurrentTick(), "--", entryInfo, fmt.Sprintf("report copied (%d bytes)", len(report)))
}
