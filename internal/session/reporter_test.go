package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	runs := []RunResult{
		{Seed: 1, Outcome: "won", Ticks: 100, Revealed: 212, Safe: 212, Guesses: 2, ByTier: map[string]int{"zero": 10, "corner": 2}},
		{Seed: 2, Outcome: "lost", Ticks: 50, Revealed: 106, Safe: 212, Guesses: 4, Stale: 1, ByTier: map[string]int{"constraint": 5, "random": 2}},
		{Seed: 3, Outcome: "playing", Ticks: 150, Revealed: 0, Safe: 212, Misreads: 3},
	}
	a := Summarize(runs)

	assert.Equal(t, 3, a.Runs)
	assert.Equal(t, 1, a.Won)
	assert.Equal(t, 1, a.Lost)
	assert.Equal(t, 1, a.Unfinished)
	assert.InDelta(t, 0.5, a.MeanCoverage, 1e-9)
	assert.InDelta(t, 100.0, a.MeanTicks, 1e-9)
	assert.InDelta(t, 50.0, a.StdTicks, 1e-9)
	assert.InDelta(t, 2.0, a.MeanGuesses, 1e-9)
	assert.Equal(t, 1, a.TotalStale)
	assert.Equal(t, 3, a.Misreads)
	assert.Equal(t, map[string]int{"zero": 10, "corner": 2, "constraint": 5, "random": 2}, a.ByTier)
	assert.InDelta(t, 1.0/3, a.WinRate(), 1e-9)
}

func TestSummarize_SingleAndEmpty(t *testing.T) {
	a := Summarize(nil)
	assert.Equal(t, 0, a.Runs)
	assert.Zero(t, a.WinRate())

	a = Summarize([]RunResult{{Outcome: "won", Ticks: 7, Revealed: 10, Safe: 10}})
	assert.InDelta(t, 7.0, a.MeanTicks, 1e-9)
	assert.Zero(t, a.StdTicks)
	assert.InDelta(t, 1.0, a.MeanCoverage, 1e-9)
}

func TestFormatRun(t *testing.T) {
	out := FormatRun(2, RunResult{
		Seed: 43, Outcome: "lost", Ticks: 12, Revealed: 50, Safe: 200,
		Proposals: 12, Approvals: 11, Stale: 1, Guesses: 3,
		ByTier: map[string]int{"random": 1, "zero": 8, "corner": 2, "constraint": 1},
	})
	assert.Contains(t, out, "--- Run 2 (seed=43) ---")
	assert.Contains(t, out, "outcome=lost ticks=12")
	assert.Contains(t, out, "revealed=50/200 (25.0%)")
	assert.Contains(t, out, "tiers: zero=8 constraint=1 corner=2 random=1")
	assert.NotContains(t, out, "misreads")
}

func TestFormatAggregate(t *testing.T) {
	out := FormatAggregate(Aggregate{Runs: 4, Won: 3, Lost: 1})
	assert.Contains(t, out, "runs=4 won=3 lost=1 unfinished=0 win_rate=75.0%")
	assert.Contains(t, out, "tiers: none")
}

func TestFirstTick(t *testing.T) {
	l := NewLog(false)
	l.Add(1, "0,0", "decision", "proposed", "click (corner)", 3)
	l.Add(4, "2,3", "decision", "stale", "target now revealed", 0)
	l.Add(9, "--", "game", "won", "revealed=212 locked=40", 212)

	require.Len(t, l.Entries(), 3)
	assert.Equal(t, 4, FirstTick(l.Entries(), "decision", "stale", ""))
	assert.Equal(t, 1, FirstTick(l.Entries(), "decision", "proposed", "corner"))
	assert.Equal(t, -1, FirstTick(l.Entries(), "game", "lost", ""))
}
