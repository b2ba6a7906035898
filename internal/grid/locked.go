package grid

// LockedFlags is the session-wide set of coordinates that must never be
// clicked. Membership only grows. There is no removal method,
// and a new play session starts from a new set.
type LockedFlags struct {
	set   map[Coord]struct{}
	order []Coord
}

// NewLockedFlags returns an empty set.
func NewLockedFlags() *LockedFlags {
	return &LockedFlags{set: make(map[Coord]struct{})}
}

// Lock adds c and reports whether it was newly added.
func (l *LockedFlags) Lock(c Coord) bool {
	if _, ok := l.set[c]; ok {
		return false
	}
	l.set[c] = struct{}{}
	l.order = append(l.order, c)
	return true
}

// Has reports whether c is locked. A nil set locks nothing.
func (l *LockedFlags) Has(c Coord) bool {
	if l == nil {
		return false
	}
	_, ok := l.set[c]
	return ok
}

// Len returns the number of locked coordinates.
func (l *LockedFlags) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Coords returns the locked coordinates in the order they were added.
func (l *LockedFlags) Coords() []Coord {
	if l == nil {
		return nil
	}
	out := make([]Coord, len(l.order))
	copy(out, l.order)
	return out
}
