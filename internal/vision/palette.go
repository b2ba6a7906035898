package vision

import "image/color"

// RGB is an opaque colour sample.
type RGB struct {
	R, G, B uint8
}

// FromColor drops alpha from c.
func FromColor(c color.RGBA) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// RGBA returns the opaque color.RGBA for c.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Reference colours of the supported host rendering.
var (
	UnrevealedLight = RGB{169, 214, 79}
	UnrevealedDark  = RGB{161, 209, 71}
	Number1         = RGB{23, 116, 209}
	Number2         = RGB{56, 143, 60}
	Number3         = RGB{212, 47, 47}
	Number4Purple   = RGB{110, 29, 145}
)

// Match tolerances, per channel. Exact-number targets are tighter than the
// background buckets so a blue or green digit never bleeds into them.
const (
	backgroundTolerance = 25
	numberTolerance     = 20
	purpleTolerance     = 25
)

// Near reports whether every channel of c is within tol of target.
func Near(c, target RGB, tol int) bool {
	return absDiff(c.R, target.R) <= tol &&
		absDiff(c.G, target.G) <= tol &&
		absDiff(c.B, target.B) <= tol
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// isFlagRed matches the pennant red. A saturated red with very little green
// or blue; the second clause catches darker anti-aliased edges.
func isFlagRed(c RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return (r >= 200 && g <= 90 && b <= 60 && r > g+80 && r > b+80) ||
		(r >= 170 && g <= 70 && b <= 50 && r > g+70 && r > b+70)
}

// isRevealedTan matches the opened-cell background family.
func isRevealedTan(c RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return r > 180 && g > 140 && b > 90 && r > g && g > b
}

// isOtherNumber matches any of the broader 4–8 digit colour relationships.
func isOtherNumber(c RGB) bool {
	return isNavy(c) || isPurple(c) || isMaroon(c) || isCyan(c) || isBlack(c) || isGray(c)
}

// The digit predicates below are loose on their own; the voting and
// priority order around them supply the precision.

func isNavy(c RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return b > 100 && b > r+30 && b > g+30
}

// isDeepNavy is the stricter navy test used once a cell is known to be
// revealed: it excludes the brighter blue of a 1.
func isDeepNavy(c RGB) bool {
	return isNavy(c) && c.R < 100 && c.G < 100
}

func isPurple(c RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return r > 90 && r < 130 && g < 60 && b > 120
}

func isMaroon(c RGB) bool {
	r, g := int(c.R), int(c.G)
	return r > 120 && r < 180 && r > g+40
}

// isDeepMaroon adds the blue and green ceilings for the digit pass.
func isDeepMaroon(c RGB) bool {
	return isMaroon(c) && int(c.R) > int(c.B)+40 && c.G < 100 && c.B < 100
}

func isCyan(c RGB) bool {
	return c.G > 120 && c.B > 120 && c.R < 100
}

func isBlack(c RGB) bool {
	return c.R < 60 && c.G < 60 && c.B < 60
}

func isGray(c RGB) bool {
	r, g, b := int(c.R), int(c.G), int(c.B)
	return r > 100 && r < 160 && abs(r-g) < 20 && abs(r-b) < 20
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
