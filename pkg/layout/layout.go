package layout

import (
	"fmt"
	"slices"
	"strings"
)

// Orientation is a DEF placement orientation.
type Orientation int

const (
	N Orientation = iota
	S
	W
	E
	FN
	FS
	FW
	FE
)

var orientationNames = [...]string{"N", "S", "W", "E", "FN", "FS", "FW", "FE"}

// String returns the DEF keyword for o.
func (o Orientation) String() string {
	if o < 0 || int(o) >= len(orientationNames) {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// ParseOrientation converts a DEF keyword (N, S, W, E, FN, FS, FW, FE) to an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	for i, name := range orientationNames {
		if name == s {
			return Orientation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Rect is an axis-aligned rectangle given by two corners.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal span of r.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical span of r.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Cell is a placeable standard cell. X, Y and Orient are the only fields
// legalization writes.
type Cell struct {
	Name   string      `json:"name"`
	Model  string      `json:"model"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Orient Orientation `json:"orient"`
}

// Row is a placement track with CountX legal sites spaced StepX apart.
type Row struct {
	Name   string      `json:"name"`
	Site   string      `json:"site"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Orient Orientation `json:"orient"`
	CountX int         `json:"count_x"`
	CountY int         `json:"count_y"`
	StepX  float64     `json:"step_x"`
	StepY  float64     `json:"step_y"`
}

// Width returns the usable length of the row (CountX * StepX).
func (r Row) Width() float64 { return float64(r.CountX) * r.StepX }

// Right returns the x coordinate of the row's end.
func (r Row) Right() float64 { return r.X + r.Width() }

// SpecialNet is a routed power/ground segment. It is carried through
// legalization untouched and only used for plotting.
type SpecialNet struct {
	Label string  `json:"label"`
	Layer string  `json:"layer"`
	Width float64 `json:"width"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
}

// Vertical reports whether the segment runs along the y axis.
func (n SpecialNet) Vertical() bool { return n.X1 == n.X2 }

// Layout is the placement geometry of one design.
type Layout struct {
	Name        string       `json:"name"`
	Units       int          `json:"units"`
	DieArea     Rect         `json:"die_area"`
	Rows        []Row        `json:"rows"`
	Cells       []Cell       `json:"cells"`
	SpecialNets []SpecialNet `json:"special_nets,omitempty"`
}

// Clone returns a deep copy of l.
func (l *Layout) Clone() *Layout {
	c := *l
	c.Rows = slices.Clone(l.Rows)
	c.Cells = slices.Clone(l.Cells)
	c.SpecialNets = slices.Clone(l.SpecialNets)
	return &c
}

// RowPitch returns the vertical distance between the two lowest rows.
// It returns 0 if the layout has fewer than two rows.
func (l *Layout) RowPitch() float64 {
	if len(l.Rows) < 2 {
		return 0
	}
	ys := make([]float64, len(l.Rows))
	for i, r := range l.Rows {
		ys[i] = r.Y
	}
	slices.Sort(ys)
	return ys[1] - ys[0]
}

// Capacity returns the summed width of all rows.
func (l *Layout) Capacity() float64 {
	var total float64
	for _, r := range l.Rows {
		total += r.Width()
	}
	return total
}

// CellIndex maps cell names to their positions in l.Cells.
func (l *Layout) CellIndex() map[string]int {
	idx := make(map[string]int, len(l.Cells))
	for i, c := range l.Cells {
		idx[c.Name] = i
	}
	return idx
}
