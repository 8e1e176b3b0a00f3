package placement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
)

func TestCost(t *testing.T) {
	assert.Equal(t, 5.0, placement.Cost(505, 0, 500, 0))
	assert.Equal(t, 130.0, placement.Cost(10, 20, 40, 120))
	assert.Equal(t, placement.Cost(1, 2, 3, 4), placement.Cost(3, 4, 1, 2))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name                  string
		ax1, ax2, bx1, p, bx2 float64
		want                  float64
	}{
		{"floors to grid", 505, 525, 0, 10, 1000, 500},
		{"on grid", 500, 520, 0, 10, 1000, 500},
		{"before row", -5, 15, 0, 10, 1000, 0},
		{"past row end", 990, 1010, 0, 10, 1000, 980},
		{"offset row", 37, 57, 5, 10, 105, 35},
		{"exactly fills row", 0, 100, 0, 10, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, placement.Clamp(tt.ax1, tt.ax2, tt.bx1, tt.p, tt.bx2))
		})
	}
}

func TestQuantizeWidth(t *testing.T) {
	assert.Equal(t, 20.0, placement.QuantizeWidth(15, 10))
	assert.Equal(t, 20.0, placement.QuantizeWidth(20, 10))
	assert.Equal(t, 7.5, placement.QuantizeWidth(7, 2.5))
	assert.Equal(t, 3.0, placement.QuantizeWidth(3, 0))
}

func legalFixture() *layout.Layout {
	l := newLayout(2, 10, 10, 100)
	l.Rows[1].Orient = layout.FS
	l.Cells = []layout.Cell{
		{Name: "a", X: 0, Y: 0},
		{Name: "b", X: 20, Y: 0},
		{Name: "c", X: 80, Y: 100, Orient: layout.FS},
	}
	return l
}

func TestVerifyLegal(t *testing.T) {
	assert.Empty(t, placement.Verify(legalFixture(), 20))
}

func TestVerifyViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*layout.Layout)
		want   []placement.Violation
	}{
		{
			name:   "overlap",
			mutate: func(l *layout.Layout) { l.Cells[1].X = 10 },
			want:   []placement.Violation{{Kind: placement.ViolationOverlap, Cell: "a", Other: "b", Row: "r0"}},
		},
		{
			name:   "off grid",
			mutate: func(l *layout.Layout) { l.Cells[1].X = 25 },
			want:   []placement.Violation{{Kind: placement.ViolationOffGrid, Cell: "b", Row: "r0"}},
		},
		{
			name:   "past row end",
			mutate: func(l *layout.Layout) { l.Cells[2].X = 90 },
			want:   []placement.Violation{{Kind: placement.ViolationOutOfRow, Cell: "c", Row: "r1"}},
		},
		{
			name:   "between rows",
			mutate: func(l *layout.Layout) { l.Cells[2].Y = 50 },
			want:   []placement.Violation{{Kind: placement.ViolationOffRow, Cell: "c"}},
		},
		{
			name:   "wrong orientation",
			mutate: func(l *layout.Layout) { l.Cells[2].Orient = layout.N },
			want:   []placement.Violation{{Kind: placement.ViolationOrientation, Cell: "c", Row: "r1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := legalFixture()
			tt.mutate(l)
			assert.Equal(t, tt.want, placement.Verify(l, 20))
		})
	}
}

func TestViolationString(t *testing.T) {
	v := placement.Violation{Kind: placement.ViolationOverlap, Cell: "a", Other: "b", Row: "r0"}
	assert.Equal(t, "overlap: a overlaps b in row r0", v.String())
}

func TestMeasure(t *testing.T) {
	before := legalFixture()
	after := before.Clone()
	after.Cells[0].X = 30
	after.Cells[2].Y = 0
	after.Cells = append(after.Cells, layout.Cell{Name: "extra"})

	d, moved := placement.Measure(before, after)
	require.Equal(t, 2, moved)
	assert.Equal(t, 130.0, d.Total)
	assert.Equal(t, 100.0, d.Max)
	assert.InDelta(t, 130.0/3, d.Mean, 1e-9)
}
