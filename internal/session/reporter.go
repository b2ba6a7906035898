package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RunResult summarises one headless game.
type RunResult struct {
	Seed      int64
	Outcome   string // won, lost, or playing when the run was cut short
	Ticks     int
	Revealed  int
	Safe      int
	Locked    int
	Proposals int
	Approvals int
	Stale     int
	Guesses   int
	Misreads  int
	ByTier    map[string]int
	Elapsed   time.Duration
}

// Coverage is the fraction of safe cells revealed.
func (r RunResult) Coverage() float64 {
	if r.Safe <= 0 {
		return 0
	}
	return float64(r.Revealed) / float64(r.Safe)
}

// Aggregate is the cross-run summary of a batch.
type Aggregate struct {
	Runs         int
	Won          int
	Lost         int
	Unfinished   int
	MeanCoverage float64
	StdCoverage  float64
	MeanTicks    float64
	StdTicks     float64
	MeanGuesses  float64
	TotalStale   int
	Misreads     int
	ByTier       map[string]int
}

// WinRate is won / runs.
func (a Aggregate) WinRate() float64 {
	if a.Runs == 0 {
		return 0
	}
	return float64(a.Won) / float64(a.Runs)
}

// Summarize aggregates a batch of runs.
func Summarize(runs []RunResult) Aggregate {
	a := Aggregate{Runs: len(runs), ByTier: map[string]int{}}
	if len(runs) == 0 {
		return a
	}
	coverage := make([]float64, len(runs))
	ticks := make([]float64, len(runs))
	guesses := make([]float64, len(runs))
	for i, r := range runs {
		switch r.Outcome {
		case "won":
			a.Won++
		case "lost":
			a.Lost++
		default:
			a.Unfinished++
		}
		coverage[i] = r.Coverage()
		ticks[i] = float64(r.Ticks)
		guesses[i] = float64(r.Guesses)
		a.TotalStale += r.Stale
		a.Misreads += r.Misreads
		for k, v := range r.ByTier {
			a.ByTier[k] += v
		}
	}
	a.MeanCoverage, a.StdCoverage = meanStd(coverage)
	a.MeanTicks, a.StdTicks = meanStd(ticks)
	a.MeanGuesses = stat.Mean(guesses, nil)
	return a
}

// meanStd is stat.MeanStdDev with a zero deviation for a single sample.
func meanStd(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// FormatRun renders one run as report lines.
func FormatRun(index int, r RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Run %d (seed=%d) ---\n", index, r.Seed)
	fmt.Fprintf(&b, "outcome=%s ticks=%d elapsed=%s\n", r.Outcome, r.Ticks, r.Elapsed)
	fmt.Fprintf(&b, "coverage: revealed=%d/%d (%.1f%%) locked=%d\n", r.Revealed, r.Safe, r.Coverage()*100, r.Locked)
	fmt.Fprintf(&b, "decisions: proposals=%d approvals=%d stale=%d guesses=%d\n", r.Proposals, r.Approvals, r.Stale, r.Guesses)
	fmt.Fprintf(&b, "tiers: %s\n", formatTiers(r.ByTier))
	if r.Misreads > 0 {
		fmt.Fprintf(&b, "vision: misreads=%d\n", r.Misreads)
	}
	return b.String()
}

// FormatAggregate renders the cross-run block.
func FormatAggregate(a Aggregate) string {
	var b strings.Builder
	b.WriteString("=== Aggregate ===\n")
	fmt.Fprintf(&b, "runs=%d won=%d lost=%d unfinished=%d win_rate=%.1f%%\n",
		a.Runs, a.Won, a.Lost, a.Unfinished, a.WinRate()*100)
	fmt.Fprintf(&b, "coverage: mean=%.1f%% std=%.1f%%\n", a.MeanCoverage*100, a.StdCoverage*100)
	fmt.Fprintf(&b, "ticks: mean=%.1f std=%.1f\n", a.MeanTicks, a.StdTicks)
	fmt.Fprintf(&b, "guesses_per_run=%.2f stale_total=%d misreads=%d\n", a.MeanGuesses, a.TotalStale, a.Misreads)
	fmt.Fprintf(&b, "tiers: %s\n", formatTiers(a.ByTier))
	return b.String()
}

// formatTiers lists tier counts in tier order.
func formatTiers(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	order := map[string]int{"zero": 0, "constraint": 1, "corner": 2, "random": 3}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

// FirstTick returns the tick of the first entry matching category and key
// whose value contains the given text, or -1.
func FirstTick(entries []LogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}
