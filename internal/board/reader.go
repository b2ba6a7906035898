package board

import (
	"io"
	"log/slog"

	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/vision"
)

// Reader rebuilds a full board snapshot from a surface on every call and
// owns the session's locked-flag set.
type Reader struct {
	geom       Geometry
	classifier *vision.Classifier
	locked     *grid.LockedFlags
	log        *slog.Logger
	onLock     func(grid.Coord)
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for lock notices.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *vision.Classifier) Option {
	return func(r *Reader) { r.classifier = c }
}

// WithLockObserver registers fn to be called once per newly locked flag.
func WithLockObserver(fn func(grid.Coord)) Option {
	return func(r *Reader) { r.onLock = fn }
}

// NewReader returns a reader for geom with a fresh locked-flag set.
func NewReader(geom Geometry, opts ...Option) *Reader {
	r := &Reader{
		geom:   geom,
		locked: grid.NewLockedFlags(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.classifier == nil {
		r.classifier = vision.NewClassifier(r.log)
	}
	return r
}

// Geometry returns the profile the reader samples against.
func (r *Reader) Geometry() Geometry {
	return r.geom
}

// Locked returns the session's locked-flag set. The solver shares it.
func (r *Reader) Locked() *grid.LockedFlags {
	return r.locked
}

// Read classifies every cell of s. Cells seen as Flagged are added to the
// locked set; nothing is ever removed from it here.
func (r *Reader) Read(s vision.Surface) *grid.Board {
	b := grid.NewBoard(r.geom.Rows, r.geom.Cols)
	for row := 0; row < r.geom.Rows; row++ {
		for col := 0; col < r.geom.Cols; col++ {
			c := grid.Coord{Row: row, Col: col}
			x, y := r.geom.SamplePoint(c)
			st := r.classifier.Classify(s, x, y)
			b.Set(c, st)
			if st.Kind == grid.Flagged && r.locked.Lock(c) {
				r.log.Info("flag detected, locking cell", "cell", c.String())
				if r.onLock != nil {
					r.onLock(c)
				}
			}
		}
	}
	return b
}

// Inspect returns the classifier's full working for one cell.
func (r *Reader) Inspect(s vision.Surface, c grid.Coord) vision.Inspection {
	x, y := r.geom.SamplePoint(c)
	return r.classifier.Inspect(s, x, y)
}
