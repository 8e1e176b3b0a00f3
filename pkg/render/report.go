package render

import (
	"encoding/json"

	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
)

// Report is the JSON summary of a legalization run.
type Report struct {
	Design       string                 `json:"design"`
	CellWidth    float64                `json:"cell_width"`
	RowPitch     float64                `json:"row_pitch"`
	Cells        int                    `json:"cells"`
	Moved        int                    `json:"moved"`
	Displacement placement.Displacement `json:"displacement"`
	Rows         []RowReport            `json:"rows,omitempty"`
	Moves        []Move                 `json:"moves"`
}

// RowReport is a row's fill after legalization.
type RowReport struct {
	placement.RowUsage
	Utilization float64 `json:"utilization"`
}

// Move records where one cell started and ended.
type Move struct {
	Cell     string  `json:"cell"`
	FromX    float64 `json:"from_x"`
	FromY    float64 `json:"from_y"`
	ToX      float64 `json:"to_x"`
	ToY      float64 `json:"to_y"`
	Distance float64 `json:"distance"`
}

// NewReport compares before and after, matched by cell name. res may be nil
// when only the two layouts are known; row usage is then omitted.
func NewReport(before, after *layout.Layout, cellWidth float64, res *placement.Result) Report {
	disp, moved := placement.Measure(before, after)
	rep := Report{
		Design:       after.Name,
		CellWidth:    cellWidth,
		RowPitch:     after.RowPitch(),
		Moved:        moved,
		Displacement: disp,
		Moves:        make([]Move, 0, len(before.Cells)),
	}

	idx := after.CellIndex()
	for _, b := range before.Cells {
		j, ok := idx[b.Name]
		if !ok {
			continue
		}
		a := after.Cells[j]
		rep.Moves = append(rep.Moves, Move{
			Cell:     b.Name,
			FromX:    b.X,
			FromY:    b.Y,
			ToX:      a.X,
			ToY:      a.Y,
			Distance: placement.Cost(b.X, b.Y, a.X, a.Y),
		})
	}
	rep.Cells = len(rep.Moves)

	if res != nil {
		for _, u := range res.Rows {
			rep.Rows = append(rep.Rows, RowReport{RowUsage: u, Utilization: u.Utilization()})
		}
	}
	return rep
}

// RenderJSON encodes r as indented JSON.
func RenderJSON(r Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
