package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
)

func fixture() *layout.Layout {
	return &layout.Layout{
		Name:    "adder",
		DieArea: layout.Rect{X1: 0, Y1: 0, X2: 1000, Y2: 40},
		Rows: []layout.Row{
			{Name: "r0", X: 0, Y: 0, CountX: 100, CountY: 1, StepX: 10},
			{Name: "r1", X: 0, Y: 20, CountX: 100, CountY: 1, StepX: 10},
		},
		Cells: []layout.Cell{
			{Name: "u_1", Model: "INV", X: 100, Y: 0},
			{Name: "u2", Model: "INV", X: 200, Y: 20},
		},
		SpecialNets: []layout.SpecialNet{
			{Label: "VDD", Layer: "ME3", Width: 10, X1: 500, Y1: 0, X2: 500, Y2: 40},
			{Label: "GND", Layer: "ME1", Width: 4, X1: 0, Y1: 20, X2: 1000, Y2: 20},
		},
	}
}

func TestRenderGnuplot(t *testing.T) {
	script := string(RenderGnuplot(fixture(), 20))

	for _, want := range []string{
		"reset\n",
		"set title \"result\"\n",
		"set xtics 1000\n",
		"set xrange [-1200:2200]\n",
		"set yrange [-1200:1240]\n",
		"set terminal png size 328,210\n",
		"set output \"output.png\"\n",
		"set object 1 rect from 0,0 to 1000,20 lw 2 fs empty\n",
		"set object 2 rect from 0,20 to 1000,40 lw 2 fs empty\n",
		"set style rect fs solid fc rgb \"#ff66ff\"\n",
		"set object 3 rect from 100,0 to 120,20\n",
		"set label \"u\\\\\\_1\" at 110,10 center\n",
		"set object 4 rect from 200,20 to 220,40\n",
		"set object 5 rect from 495,0 to 505,40 fs solid fc rgb \"#9966ff\" noborder\n",
		"set label \"VDD\" at 500,20 center rotate by 270\n",
		"set object 6 rect from 0,18 to 1000,22 fs solid fc rgb \"#66ffff\" noborder\n",
		"set label \"GND\" at 500,20 center\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
	if !strings.HasSuffix(script, "plot NaN notitle\nreplot\n") {
		t.Error("script should end by plotting")
	}
}

func TestRenderGnuplotOptions(t *testing.T) {
	script := string(RenderGnuplot(fixture(), 20,
		WithTitle("legal"), WithOutputName("adder.png"), WithCellHeight(10)))

	for _, want := range []string{
		"set title \"legal\"\n",
		"set output \"adder.png\"\n",
		"set object 3 rect from 100,0 to 120,10\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestEscapeUnderscores(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"a_b", `a\\\_b`},
		{"_x_", `\\\_x\\\_`},
	}
	for _, tt := range tests {
		if got := escapeUnderscores(tt.in); got != tt.want {
			t.Errorf("escapeUnderscores(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(fixture(), 20))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1240.0 88.0" width="1240" height="88">`) {
		t.Errorf("unexpected root element: %s", strings.SplitN(svg, "\n", 2)[0])
	}
	if !strings.Contains(svg, `<rect id="cell-u_1" x="140.00" y="44.00" width="24.00" height="24.00"/>`) {
		t.Error("cell u_1 missing or misplaced")
	}
	if !strings.Contains(svg, `id="row-r1"`) {
		t.Error("row r1 missing")
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels should be off by default")
	}
	if strings.Contains(svg, `class="nets"`) {
		t.Error("nets should be off by default")
	}
	if strings.Contains(svg, `class="moves"`) {
		t.Error("moves need a before layout")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	after := fixture()
	before := after.Clone()
	before.Cells[1].X = 230

	svg := string(RenderSVG(after, 20, WithLabels(), WithNets(), WithMoves(before), WithWidth(500)))

	if !strings.Contains(svg, `width="540"`) {
		t.Error("WithWidth should size the drawing")
	}
	if !strings.Contains(svg, ">u_1</text>") {
		t.Error("labels missing")
	}
	if !strings.Contains(svg, `fill="#9966ff"`) {
		t.Error("ME3 net should use its layer color")
	}
	if got := strings.Count(svg, "<line"); got != 1 {
		t.Errorf("want one move line for the moved cell, got %d", got)
	}
}

func TestRenderSVGEscapesNames(t *testing.T) {
	l := fixture()
	l.Cells[0].Name = `a<b>&"c"`
	svg := string(RenderSVG(l, 20, WithLabels()))
	if strings.Contains(svg, "a<b>") {
		t.Error("cell names must be escaped")
	}
	if !strings.Contains(svg, "a&lt;b&gt;&amp;") {
		t.Error("escaped name missing")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(fixture(), 20, DOTOptions{})

	if !strings.HasPrefix(dot, `graph "adder" {`) {
		t.Error("ToDOT() output missing graph declaration")
	}
	if !strings.Contains(dot, "layout=neato;") {
		t.Error("ToDOT() should select neato")
	}
	if !strings.Contains(dot, `"cell:u_1" [pos="79.20,7.20!", width=0.2000, height=0.2000, label=""`) {
		t.Errorf("cell u_1 not pinned at its position:\n%s", dot)
	}
	if !strings.Contains(dot, `"row:r0"`) {
		t.Error("ToDOT() output missing row")
	}
	if strings.Contains(dot, `"net:`) {
		t.Error("nets should be off by default")
	}

	dot = ToDOT(fixture(), 20, DOTOptions{Labels: true, Nets: true})
	if !strings.Contains(dot, `label="u_1"`) {
		t.Error("labels missing")
	}
	if !strings.Contains(dot, `"net:0:VDD"`) {
		t.Error("nets missing")
	}
}

func TestRenderNeato(t *testing.T) {
	svg, err := RenderNeato(ToDOT(fixture(), 20, DOTOptions{Labels: true}))
	if err != nil {
		t.Fatalf("RenderNeato() error: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg width="1200" height=`)) {
		t.Error("RenderNeato() should size the drawing like RenderSVG")
	}
	if !bytes.Contains(svg, []byte("u_1")) {
		t.Error("RenderNeato() output missing label")
	}
}

func TestRenderNeatoInvalid(t *testing.T) {
	if _, err := RenderNeato("graph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}

func TestFitWidth(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="10pt" height="5pt" viewBox="0.00 0.00 10.00 5.00" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">` +
		"\n<g><rect width=\"3\" height=\"4\"/></g>\n</svg>\n")
	got := string(fitWidth(in, 1200))

	want := `<svg width="1200" height="600" viewBox="0.00 0.00 10.00 5.00" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`
	if !strings.Contains(got, want) {
		t.Errorf("fitWidth() = %s, want root %s", got, want)
	}
	if !strings.Contains(got, `<rect width="3" height="4"/>`) {
		t.Error("fitWidth() should only touch the root element")
	}

	plain := []byte("<svg></svg>")
	if !bytes.Equal(fitWidth(plain, 1200), plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestReport(t *testing.T) {
	after := fixture()
	before := after.Clone()
	before.Cells[0].X = 103

	res := &placement.Result{Rows: []placement.RowUsage{{Name: "r0", Cells: 1, Clusters: 1, Used: 20, Width: 1000}}}
	rep := NewReport(before, after, 20, res)

	if rep.Design != "adder" || rep.Cells != 2 || rep.Moved != 1 {
		t.Errorf("report header = %+v", rep)
	}
	if rep.Displacement.Total != 3 || rep.Displacement.Max != 3 {
		t.Errorf("displacement = %+v, want total 3 max 3", rep.Displacement)
	}
	if rep.Moves[0].Distance != 3 || rep.Moves[1].Distance != 0 {
		t.Errorf("moves = %+v", rep.Moves)
	}
	if len(rep.Rows) != 1 || rep.Rows[0].Utilization != 0.02 {
		t.Errorf("rows = %+v", rep.Rows)
	}

	data, err := RenderJSON(rep)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	rows := decoded["rows"].([]any)
	row := rows[0].(map[string]any)
	if row["name"] != "r0" || row["utilization"] != 0.02 {
		t.Errorf("row usage should be flattened into the row entry: %v", row)
	}
}

func TestReportWithoutResult(t *testing.T) {
	l := fixture()
	rep := NewReport(l, l, 20, nil)
	if rep.Rows != nil {
		t.Error("rows should be omitted without a result")
	}
	if rep.Moved != 0 {
		t.Errorf("Moved = %d, want 0", rep.Moved)
	}
}

func TestFormats(t *testing.T) {
	for _, f := range Formats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) error: %v", f, err)
		}
	}
	if err := ValidateFormat("tiff"); err == nil {
		t.Error("ValidateFormat(tiff) should fail")
	}

	tests := []struct {
		format, ext string
	}{
		{FormatGnuplot, ".gp"},
		{FormatNeato, ".neato.svg"},
		{FormatPNG, ".png"},
		{FormatJSON, ".report.json"},
		{"other", ".other"},
	}
	for _, tt := range tests {
		if got := Extension(tt.format); got != tt.ext {
			t.Errorf("Extension(%q) = %q, want %q", tt.format, got, tt.ext)
		}
	}

	if !NeedsConverter(FormatPDF) || NeedsConverter(FormatSVG) {
		t.Error("only png and pdf need rsvg-convert")
	}
}

func TestToPNGRejectsScale(t *testing.T) {
	if _, err := ToPNG([]byte("<svg/>"), 0); err == nil {
		t.Error("expected error for zero scale")
	}
}
