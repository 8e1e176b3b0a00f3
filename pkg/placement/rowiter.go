package placement

import (
	"iter"
	"math"
)

// RowIterator enumerates row indices in [0, max] by increasing distance from a
// fractional start row.
//
// The start is rounded half away from zero and clamped to [0, max], with NaN
// mapped to 0; that row comes first. The next row is on the side of the
// fractional remainder (upward when round(start) < start, downward
// otherwise), after which the iterator alternates outward. Once one side runs out of rows the remaining
// side is walked to its end.
//
//	NewRowIterator(3.2, 9): 3, 4, 2, 5, 1, 6, 0, 7, 8, 9
//	NewRowIterator(7.8, 9): 8, 7, 9, 6, 5, 4, 3, 2, 1, 0
//	NewRowIterator(3.5, 9): 4, 3, 5, 2, 6, 1, 7, 0, 8, 9
type RowIterator struct {
	n, dn, max int
	up         bool
}

// NewRowIterator returns an iterator positioned at the row nearest start.
func NewRowIterator(start float64, max int) *RowIterator {
	r := math.Round(start)
	it := &RowIterator{max: max, up: r < start}
	switch {
	case r >= float64(max):
		it.n = max
	case r > 0:
		it.n = int(r)
	}
	return it
}

// Row returns the current row index.
func (it *RowIterator) Row() int { return it.n + it.dn }

// Done reports whether the iterator has left [0, max].
func (it *RowIterator) Done() bool {
	r := it.Row()
	return r < 0 || r > it.max
}

// Next advances to the next row.
func (it *RowIterator) Next() {
	var ndn int
	if it.up {
		if it.dn > 0 {
			ndn = -it.dn
		} else {
			ndn = -it.dn + 1
		}
	} else {
		if it.dn < 0 {
			ndn = -it.dn
		} else {
			ndn = -it.dn - 1
		}
	}

	switch {
	case it.n+ndn < 0:
		it.dn++
	case it.n+ndn > it.max:
		it.dn--
	default:
		it.dn = ndn
	}
}

// Reset rewinds the iterator to its first row.
func (it *RowIterator) Reset() { it.dn = 0 }

// All returns the full sequence from the first row. It does not move it.
func (it *RowIterator) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		c := *it
		c.Reset()
		for ; !c.Done(); c.Next() {
			if !yield(c.Row()) {
				return
			}
		}
	}
}
