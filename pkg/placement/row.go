package placement

import (
	"math"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// track is the legalization state of one row: its geometry and the clusters
// placed on it so far, sorted by x and pairwise disjoint.
type track struct {
	index    int // position in the y-sorted track list
	row      *layout.Row
	grid     grid
	clusters []cluster
}

func newTrack(index int, row *layout.Row, cellWidth float64) *track {
	return &track{
		index: index,
		row:   row,
		grid: grid{
			left:      row.X,
			right:     row.Right(),
			pitch:     row.StepX,
			cellWidth: cellWidth,
		},
	}
}

// fork returns a copy of t whose cluster list can be modified without
// affecting t.
func (t *track) fork() *track {
	n := *t
	n.clusters = make([]cluster, len(t.clusters), len(t.clusters)+1)
	copy(n.clusters, t.clusters)
	return &n
}

func (t *track) tail() (cluster, bool) {
	if len(t.clusters) == 0 {
		return cluster{}, false
	}
	return t.clusters[len(t.clusters)-1], true
}

// fits reports whether one more cell can possibly go to the row: the cell
// must fit the row and, together with the tail cluster, still fit the row.
func (t *track) fits() bool {
	w := t.grid.cellWidth
	if w > t.grid.width() {
		return false
	}
	if last, ok := t.tail(); ok && last.width()+w > t.grid.width() {
		return false
	}
	return true
}

// directlyPlace appends c and reports whether it is clear of the previous
// tail cluster.
func (t *track) directlyPlace(c cluster) bool {
	last, ok := t.tail()
	t.clusters = append(t.clusters, c)
	return !ok || last.x2 <= c.x1
}

// resolveOverlap merges the two rightmost clusters while they overlap and
// returns the cost of the last cell's final slot, or +Inf if a merge would
// not fit the row.
func (t *track) resolveOverlap() float64 {
	for n := len(t.clusters); n >= 2; n = len(t.clusters) {
		last, prev := t.clusters[n-1], t.clusters[n-2]
		if last.x1 >= prev.x2 {
			break
		}
		if prev.width()+last.width() > t.grid.width() {
			return math.Inf(1)
		}
		t.clusters[n-2] = prev.combine(last, t.grid)
		t.clusters = t.clusters[:n-1]
	}

	last, _ := t.tail()
	c := last.last()
	return Cost(c.x, c.y, last.x2-t.grid.cellWidth, t.row.Y)
}

// trial is the outcome of placing one cell on a private copy of a row.
type trial struct {
	track    *track
	estimate float64 // cost of the cell's own slot before any merge
	cost     float64
	direct   bool // placed without merging
	pruned   bool // the row cannot take the cell
	cut      bool // estimate exceeded the bound, nothing else was computed
}

// propose tries c on a copy of t. t itself is never modified, so proposals
// for different rows can run concurrently. If the cell's own slot already
// costs more than bound the merge work is skipped.
func (t *track) propose(c cellRef, bound float64) trial {
	if !t.fits() {
		return trial{pruned: true}
	}

	cl := newCluster(c, t.grid)
	est := Cost(c.x, c.y, cl.x1, t.row.Y)
	if est > bound {
		return trial{estimate: est, cut: true}
	}

	next := t.fork()
	if next.directlyPlace(cl) {
		return trial{track: next, estimate: est, cost: est, direct: true}
	}
	return trial{track: next, estimate: est, cost: next.resolveOverlap()}
}

// used returns the summed width of all clusters in the row.
func (t *track) used() float64 {
	var w float64
	for _, c := range t.clusters {
		w += c.width()
	}
	return w
}
