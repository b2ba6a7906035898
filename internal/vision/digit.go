package vision

// digitProbe is the spacing of the near-point reads taken around the center
// when the center pixel alone does not identify a 4–8.
const digitProbe = 5

// ReadDigit identifies the digit on a revealed cell from its center pixel
// and up to four near points. It returns 0 when nothing matches, which is
// the reading for an empty revealed cell.
func ReadDigit(center RGB, nearby []RGB) int {
	switch {
	case Near(center, Number1, numberTolerance):
		return 1
	case Near(center, Number2, numberTolerance):
		return 2
	case Near(center, Number3, numberTolerance):
		return 3
	case Near(center, Number4Purple, purpleTolerance):
		return 4
	}

	all := make([]RGB, 0, len(nearby)+1)
	all = append(all, center)
	all = append(all, nearby...)
	for _, c := range all {
		switch {
		case isDeepNavy(c):
			return 4
		case Near(c, Number4Purple, purpleTolerance):
			return 4
		case isDeepMaroon(c):
			return 5
		case isCyan(c):
			return 6
		case isBlack(c):
			return 7
		case isGray(c):
			return 8
		}
	}
	return 0
}

// readDigitAt performs the secondary pass on a surface. The center pixel is
// required; near points that cannot be read are skipped.
func readDigitAt(s Surface, x, y int) (int, bool) {
	px, err := s.ReadPixel(x, y)
	if err != nil {
		return 0, false
	}
	probes := []Offset{{-digitProbe, 0}, {digitProbe, 0}, {0, -digitProbe}, {0, digitProbe}}
	nearby := make([]RGB, 0, len(probes))
	for _, off := range probes {
		p, err := s.ReadPixel(x+off.DX, y+off.DY)
		if err != nil {
			continue
		}
		nearby = append(nearby, FromColor(p))
	}
	return ReadDigit(FromColor(px), nearby), true
}
