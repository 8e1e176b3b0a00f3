package placement

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// Result summarizes a legalization run.
type Result struct {
	CellWidth    float64      `json:"cell_width"`
	RowPitch     float64      `json:"row_pitch"`
	Cells        int          `json:"cells"`
	Moved        int          `json:"moved"`
	Trials       int          `json:"trials"` // candidate rows examined by the search
	Displacement Displacement `json:"displacement"`
	Rows         []RowUsage   `json:"rows"`
}

// Displacement aggregates per-cell L1 displacement.
type Displacement struct {
	Total float64 `json:"total"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// RowUsage describes how much of a row legalization filled.
type RowUsage struct {
	Name     string  `json:"name"`
	Cells    int     `json:"cells"`
	Clusters int     `json:"clusters"`
	Used     float64 `json:"used"`
	Width    float64 `json:"width"`
}

// Utilization returns Used/Width, or 0 for an empty row.
func (u RowUsage) Utilization() float64 {
	if u.Width == 0 {
		return 0
	}
	return u.Used / u.Width
}

// Legalize moves every cell of l onto a row at a site-aligned x so that no
// two cells overlap, minimizing displacement from the cells' current
// positions. All cells are treated as cellWidth wide; cellWidth must be a
// positive multiple of every row's StepX (see [QuantizeWidth]).
//
// Legalize writes cell positions only after every cell has been placed. On
// error the layout is unchanged. The error wraps [ErrInvalidConfiguration]
// for unusable input, or is a [*CapacityError] when some cell fits nowhere.
func Legalize(l *layout.Layout, cellWidth float64, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	tracks, pitch, err := buildTracks(l, cellWidth)
	if err != nil {
		return nil, err
	}

	lg := &legalizer{
		opts:   o,
		tracks: tracks,
		pitch:  pitch,
		base:   tracks[0].row.Y,
	}

	cells := snapshot(l)
	o.logger.Debug("legalizing", "cells", len(cells), "rows", len(tracks), "cell_width", cellWidth, "row_pitch", pitch)

	for _, c := range cells {
		t, cost, err := lg.place(c)
		if err != nil {
			return nil, err
		}
		lg.tracks[t.index] = t
		o.logger.Debug("placed cell", "cell", c.name, "row", t.row.Name, "cost", cost)
	}

	lg.writeBack(l)
	return lg.result(l, cells), nil
}

type legalizer struct {
	opts   options
	tracks []*track // sorted by y
	pitch  float64
	base   float64
	trials int
}

// buildTracks validates the configuration and returns one track per row,
// ordered by y, along with the row pitch.
func buildTracks(l *layout.Layout, cellWidth float64) ([]*track, float64, error) {
	if len(l.Rows) < 2 {
		return nil, 0, invalidf("need at least two rows to infer the row pitch, got %d", len(l.Rows))
	}
	if !(cellWidth > 0) || math.IsInf(cellWidth, 0) {
		return nil, 0, invalidf("cell width %g must be positive", cellWidth)
	}

	order := make([]int, len(l.Rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(l.Rows[a].Y, l.Rows[b].Y)
	})

	tracks := make([]*track, len(order))
	for i, ri := range order {
		r := &l.Rows[ri]
		if !(r.StepX > 0) {
			return nil, 0, invalidf("row %s has non-positive site pitch %g", r.Name, r.StepX)
		}
		if !isMultiple(cellWidth, r.StepX) {
			return nil, 0, invalidf("cell width %g is not a multiple of row %s pitch %g", cellWidth, r.Name, r.StepX)
		}
		tracks[i] = newTrack(i, r, cellWidth)
	}

	pitch := tracks[1].row.Y - tracks[0].row.Y
	if !(pitch > 0) {
		return nil, 0, invalidf("rows %s and %s share y=%g", tracks[0].row.Name, tracks[1].row.Name, tracks[0].row.Y)
	}
	return tracks, pitch, nil
}

// snapshot records the original positions of all cells, sorted by x.
// The sort is stable so cells with equal x keep their input order.
func snapshot(l *layout.Layout) []cellRef {
	cells := make([]cellRef, len(l.Cells))
	for i, c := range l.Cells {
		cells[i] = cellRef{index: i, name: c.Name, x: c.X, y: c.Y}
	}
	slices.SortStableFunc(cells, func(a, b cellRef) int {
		return cmp.Compare(a.x, b.x)
	})
	return cells
}

// place searches the rows for c and returns the winning proposed track.
func (lg *legalizer) place(c cellRef) (*track, float64, error) {
	start := (c.y - lg.base) / lg.pitch
	it := NewRowIterator(start, len(lg.tracks)-1)

	best := math.Inf(1)
	var winner *track

	for rows := lg.batch(it); len(rows) > 0; rows = lg.batch(it) {
		for _, tr := range lg.evaluate(rows, c, best) {
			if tr.pruned {
				continue
			}
			lg.trials++
			switch {
			case tr.cut || tr.estimate > best:
				// Every remaining row is at least as far away.
				return lg.finish(c, winner, best)
			case tr.direct:
				return tr.track, tr.cost, nil
			case tr.cost < best:
				best, winner = tr.cost, tr.track
			}
		}
	}
	return lg.finish(c, winner, best)
}

func (lg *legalizer) finish(c cellRef, winner *track, cost float64) (*track, float64, error) {
	if winner == nil || math.IsInf(cost, 1) {
		return nil, 0, &CapacityError{Cell: c.name, X: c.x, Y: c.y}
	}
	return winner, cost, nil
}

// batch pulls the next candidate rows from it, one per worker.
func (lg *legalizer) batch(it *RowIterator) []int {
	var rows []int
	for ; len(rows) < lg.opts.workers && !it.Done(); it.Next() {
		rows = append(rows, it.Row())
	}
	return rows
}

// evaluate proposes c on every row in rows. The proposals only read the
// committed tracks, so they are computed concurrently when there is more
// than one.
func (lg *legalizer) evaluate(rows []int, c cellRef, bound float64) []trial {
	trials := make([]trial, len(rows))
	if len(rows) == 1 {
		trials[0] = lg.tracks[rows[0]].propose(c, bound)
		return trials
	}

	var g errgroup.Group
	g.SetLimit(lg.opts.workers)
	for i, r := range rows {
		g.Go(func() error {
			trials[i] = lg.tracks[r].propose(c, bound)
			return nil
		})
	}
	_ = g.Wait()
	return trials
}

// writeBack assigns every cell its slot: clusters are walked left to right
// and cells laid out abutting from the cluster start.
func (lg *legalizer) writeBack(l *layout.Layout) {
	for _, t := range lg.tracks {
		for _, cl := range t.clusters {
			x := cl.x1
			for _, c := range cl.cells {
				cell := &l.Cells[c.index]
				cell.X = x
				cell.Y = t.row.Y
				cell.Orient = t.row.Orient
				x += t.grid.cellWidth
			}
		}
	}
}

func (lg *legalizer) result(l *layout.Layout, cells []cellRef) *Result {
	res := &Result{
		CellWidth: lg.tracks[0].grid.cellWidth,
		RowPitch:  lg.pitch,
		Cells:     len(cells),
		Trials:    lg.trials,
		Rows:      make([]RowUsage, len(lg.tracks)),
	}

	for _, c := range cells {
		now := l.Cells[c.index]
		d := Cost(c.x, c.y, now.X, now.Y)
		res.Displacement.Total += d
		res.Displacement.Max = math.Max(res.Displacement.Max, d)
		if d > 0 {
			res.Moved++
		}
	}
	if len(cells) > 0 {
		res.Displacement.Mean = res.Displacement.Total / float64(len(cells))
	}

	for i, t := range lg.tracks {
		u := RowUsage{Name: t.row.Name, Clusters: len(t.clusters), Used: t.used(), Width: t.grid.width()}
		for _, cl := range t.clusters {
			u.Cells += len(cl.cells)
		}
		res.Rows[i] = u
	}
	return res
}
