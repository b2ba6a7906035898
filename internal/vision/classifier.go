package vision

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Garsondee/Mine-Sense/internal/grid"
)

// Offset is a sample position relative to a cell center.
type Offset struct {
	DX, DY int
}

// Constellation is the fixed set of sample offsets taken around every cell
// center. Over-sampling absorbs anti-aliasing and sub-pixel grid drift.
var Constellation = []Offset{
	{0, 0},
	{-2, -2}, {0, -2}, {2, -2},
	{-2, 0}, {2, 0},
	{-2, 2}, {0, 2}, {2, 2},
	{-4, 0}, {4, 0}, {0, -4}, {0, 4},
	{-3, -3}, {3, -3}, {-3, 3}, {3, 3},
	{-6, 0}, {6, 0}, {0, -6}, {0, 6},
	{-6, -6}, {6, -6}, {-6, 6}, {6, 6},
}

// Vote thresholds.
const (
	flagMinVotes           = 1 // flag glyph pixels needed
	flagMinBaseVotes       = 2 // unrevealed base pixels needed under a flag
	unrevealedMinVotes     = 5
	exactNumberMinVotes    = 3
	revealedTanMinVotes    = 5
	otherNumberMinVotes    = 3
	ambiguousFlagLogPeriod = time.Second
)

// Votes is the per-bucket tally for one cell.
type Votes struct {
	UnrevealedLight int
	UnrevealedDark  int
	Number1         int
	Number2         int
	Number3         int
	Flag            int
	RevealedTan     int
	OtherNumber     int
}

// Unrevealed returns the combined unrevealed-shade votes.
func (v Votes) Unrevealed() int {
	return v.UnrevealedLight + v.UnrevealedDark
}

// Tally casts one vote per sample into the first matching bucket.
func Tally(samples []RGB) Votes {
	var v Votes
	for _, c := range samples {
		switch {
		case Near(c, UnrevealedLight, backgroundTolerance):
			v.UnrevealedLight++
		case Near(c, UnrevealedDark, backgroundTolerance):
			v.UnrevealedDark++
		case Near(c, Number1, numberTolerance):
			v.Number1++
		case Near(c, Number2, numberTolerance):
			v.Number2++
		case Near(c, Number3, numberTolerance):
			v.Number3++
		case isFlagRed(c):
			v.Flag++
		case isRevealedTan(c):
			v.RevealedTan++
		case isOtherNumber(c):
			v.OtherNumber++
		}
	}
	return v
}

// Verdict is the outcome of resolving a tally.
type Verdict struct {
	State grid.CellState
	// NeedsDigit is set when the cell is revealed but its digit must be
	// read by the secondary pass.
	NeedsDigit bool
	// AmbiguousFlag is set when flag-red was seen without enough unrevealed
	// base under it. The verdict still reflects the remaining checks.
	AmbiguousFlag bool
}

// Resolve applies the priority rules to a tally. It never commits on weak
// evidence: anything below every threshold is Unknown.
func Resolve(v Votes) Verdict {
	var out Verdict
	if v.Flag >= flagMinVotes {
		if v.Unrevealed() >= flagMinBaseVotes {
			out.State = grid.CellState{Kind: grid.Flagged}
			return out
		}
		out.AmbiguousFlag = true
	}
	switch {
	case v.Unrevealed() >= unrevealedMinVotes:
		out.State = grid.CellState{Kind: grid.Unrevealed}
	case v.Number1 >= exactNumberMinVotes:
		out.State = grid.RevealedN(1)
	case v.Number2 >= exactNumberMinVotes:
		out.State = grid.RevealedN(2)
	case v.Number3 >= exactNumberMinVotes:
		out.State = grid.RevealedN(3)
	case v.RevealedTan >= revealedTanMinVotes || v.OtherNumber >= otherNumberMinVotes:
		out.State = grid.CellState{Kind: grid.Revealed}
		out.NeedsDigit = true
	default:
		out.State = grid.CellState{Kind: grid.Unknown}
	}
	return out
}

// Sample is one constellation read.
type Sample struct {
	Offset
	Color RGB
	OK    bool
}

// Inspection is the full working of one classification, used by overlays
// and debug reports.
type Inspection struct {
	X, Y    int
	Samples []Sample
	Votes   Votes
	Verdict Verdict
	State   grid.CellState
}

// Classifier turns a cell center on a Surface into a CellState.
type Classifier struct {
	log       *slog.Logger
	ambiguous rate.Sometimes
}

// NewClassifier returns a classifier. A nil logger discards output.
func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{
		log:       log,
		ambiguous: rate.Sometimes{Interval: ambiguousFlagLogPeriod},
	}
}

// Classify samples the constellation around (x, y) and resolves it.
func (c *Classifier) Classify(s Surface, x, y int) grid.CellState {
	return c.Inspect(s, x, y).State
}

// Inspect is Classify with the intermediate samples and votes retained.
func (c *Classifier) Inspect(s Surface, x, y int) Inspection {
	in := Inspection{X: x, Y: y, Samples: make([]Sample, 0, len(Constellation))}
	colours := make([]RGB, 0, len(Constellation))
	for _, off := range Constellation {
		px, err := s.ReadPixel(x+off.DX, y+off.DY)
		if err != nil {
			// Unreadable samples simply do not vote.
			in.Samples = append(in.Samples, Sample{Offset: off})
			continue
		}
		rgb := FromColor(px)
		in.Samples = append(in.Samples, Sample{Offset: off, Color: rgb, OK: true})
		colours = append(colours, rgb)
	}
	in.Votes = Tally(colours)
	in.Verdict = Resolve(in.Votes)
	in.State = in.Verdict.State

	if in.Verdict.AmbiguousFlag {
		c.ambiguous.Do(func() {
			c.log.Warn("flag-like pixels without unrevealed base",
				"x", x, "y", y,
				"flag_votes", in.Votes.Flag,
				"unrevealed_votes", in.Votes.Unrevealed(),
				"resolved", in.State.String())
		})
	}

	if in.Verdict.NeedsDigit {
		n, ok := readDigitAt(s, x, y)
		if !ok {
			in.State = grid.CellState{Kind: grid.Unknown}
		} else {
			in.State = grid.RevealedN(n)
		}
	}
	return in
}
