package placement

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// ViolationKind classifies a legality violation.
type ViolationKind string

const (
	ViolationOffRow      ViolationKind = "off_row"
	ViolationOffGrid     ViolationKind = "off_grid"
	ViolationOutOfRow    ViolationKind = "out_of_row"
	ViolationOverlap     ViolationKind = "overlap"
	ViolationOrientation ViolationKind = "orientation"
)

// Violation is one legality problem found by [Verify].
type Violation struct {
	Kind  ViolationKind `json:"kind"`
	Cell  string        `json:"cell"`
	Other string        `json:"other,omitempty"` // second cell of an overlap
	Row   string        `json:"row,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationOverlap:
		return fmt.Sprintf("%s: %s overlaps %s in row %s", v.Kind, v.Cell, v.Other, v.Row)
	case ViolationOffRow:
		return fmt.Sprintf("%s: %s is not on any row", v.Kind, v.Cell)
	default:
		return fmt.Sprintf("%s: %s in row %s", v.Kind, v.Cell, v.Row)
	}
}

// Verify checks that every cell of l, taken as cellWidth wide, sits on a row
// at a site-aligned x inside the row, carries the row's orientation, and does
// not overlap another cell. It returns all violations, sorted by cell name.
func Verify(l *layout.Layout, cellWidth float64) []Violation {
	var out []Violation
	byRow := make(map[int][]int)

	for i, c := range l.Cells {
		ri := rowAt(l, c.X, c.Y, cellWidth)
		if ri < 0 {
			out = append(out, Violation{Kind: ViolationOffRow, Cell: c.Name})
			continue
		}
		r := l.Rows[ri]
		if c.X < r.X-gridEpsilon || c.X+cellWidth > r.Right()+gridEpsilon {
			out = append(out, Violation{Kind: ViolationOutOfRow, Cell: c.Name, Row: r.Name})
		}
		if !isMultiple(c.X-r.X, r.StepX) {
			out = append(out, Violation{Kind: ViolationOffGrid, Cell: c.Name, Row: r.Name})
		}
		if c.Orient != r.Orient {
			out = append(out, Violation{Kind: ViolationOrientation, Cell: c.Name, Row: r.Name})
		}
		byRow[ri] = append(byRow[ri], i)
	}

	for ri, idx := range byRow {
		slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(l.Cells[a].X, l.Cells[b].X) })
		for k := 1; k < len(idx); k++ {
			a, b := l.Cells[idx[k-1]], l.Cells[idx[k]]
			if a.X+cellWidth > b.X+gridEpsilon {
				out = append(out, Violation{Kind: ViolationOverlap, Cell: a.Name, Other: b.Name, Row: l.Rows[ri].Name})
			}
		}
	}

	slices.SortFunc(out, func(a, b Violation) int {
		if c := cmp.Compare(a.Cell, b.Cell); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}

// rowAt returns the index of the row at height y. When several rows share y
// (split rows), the one whose span contains x is preferred.
func rowAt(l *layout.Layout, x, y, cellWidth float64) int {
	found := -1
	for i, r := range l.Rows {
		if math.Abs(r.Y-y) > gridEpsilon {
			continue
		}
		if x >= r.X-gridEpsilon && x+cellWidth <= r.Right()+gridEpsilon {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

// Measure compares cell positions of before and after, matched by name, and
// returns the displacement statistics. Cells missing from after are ignored.
func Measure(before, after *layout.Layout) (Displacement, int) {
	idx := after.CellIndex()
	var d Displacement
	var moved, n int
	for _, c := range before.Cells {
		j, ok := idx[c.Name]
		if !ok {
			continue
		}
		a := after.Cells[j]
		dist := Cost(c.X, c.Y, a.X, a.Y)
		d.Total += dist
		d.Max = math.Max(d.Max, dist)
		if dist > 0 {
			moved++
		}
		n++
	}
	if n > 0 {
		d.Mean = d.Total / float64(n)
	}
	return d, moved
}
