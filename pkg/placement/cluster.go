package placement

// cellRef is a cell's original position, snapshotted before legalization.
type cellRef struct {
	index int // position in layout.Cells
	name  string
	x, y  float64
}

// grid is the legal x range of one row for a fixed cell width.
type grid struct {
	left, right float64
	pitch       float64
	cellWidth   float64
}

func (g grid) width() float64 { return g.right - g.left }

// place positions n abutting cells whose ideal start is x1 and returns the
// clamped interval.
func (g grid) place(x1 float64, n int) (float64, float64) {
	w := g.cellWidth * float64(n)
	start := Clamp(x1, x1+w, g.left, g.pitch, g.right)
	return start, start + w
}

// cluster is a run of abutting cells in one row, left to right. Clusters are
// values: every operation returns a new cluster and never touches the cell
// slice of its receiver, so trial rows can share clusters with committed ones.
type cluster struct {
	cells  []cellRef
	sumX   float64
	x1, x2 float64
}

func newCluster(c cellRef, g grid) cluster {
	x1, x2 := g.place(c.x, 1)
	return cluster{cells: []cellRef{c}, sumX: c.x, x1: x1, x2: x2}
}

func (c cluster) width() float64 { return c.x2 - c.x1 }

func (c cluster) last() cellRef { return c.cells[len(c.cells)-1] }

// addCell appends a cell to the right end of c.
func (c cluster) addCell(r cellRef, g grid) cluster {
	return c.absorb([]cellRef{r}, r.x, g)
}

// combine merges o, which lies to the right of c, into c.
func (c cluster) combine(o cluster, g grid) cluster {
	return c.absorb(o.cells, o.sumX, g)
}

// absorb appends cells and re-solves the cluster position: the mean of the
// original x coordinates minus half the extra width is the start that
// minimizes total displacement for equal-width abutting cells.
func (c cluster) absorb(cells []cellRef, sumX float64, g grid) cluster {
	merged := make([]cellRef, 0, len(c.cells)+len(cells))
	merged = append(merged, c.cells...)
	merged = append(merged, cells...)

	n := len(merged)
	total := c.sumX + sumX
	start := total/float64(n) - g.cellWidth*float64(n-1)/2
	x1, x2 := g.place(start, n)
	return cluster{cells: merged, sumX: total, x1: x1, x2: x2}
}
