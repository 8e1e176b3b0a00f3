package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/legalizer/pkg/cache"
	"github.com/matzehuels/legalizer/pkg/errors"
	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/observability"
	"github.com/matzehuels/legalizer/pkg/placement"
	"github.com/matzehuels/legalizer/pkg/render"
)

const sampleDEF = `VERSION 5.8 ;
DIVIDERCHAR "/" ;
BUSBITCHARS "[]" ;
DESIGN adder ;
UNITS DISTANCE MICRONS 1000 ;
DIEAREA ( 0 0 ) ( 1000 40 ) ;
ROW r0 core 0 0 N DO 100 BY 1 STEP 10 0 ;
ROW r1 core 0 20 FS DO 100 BY 1 STEP 10 0 ;
COMPONENTS 3 ;
- u1 INV + PLACED ( 103 4 ) N ;
- u2 INV + PLACED ( 110 2 ) N ;
- u3 NAND2 + PLACED ( 400 18 ) N ;
END COMPONENTS
SPECIALNETS 1 ;
- VDD + ROUTED ME3 4 ( 500 0 ) ( * 40 ) ;
END SPECIALNETS
END DESIGN
`

const sampleJSON = `{
  "name": "adder",
  "units": 1000,
  "die_area": {"x1": 0, "y1": 0, "x2": 1000, "y2": 40},
  "rows": [
    {"name": "r0", "site": "core", "x": 0, "y": 0, "orient": "N", "count_x": 100, "count_y": 1, "step_x": 10, "step_y": 0},
    {"name": "r1", "site": "core", "x": 0, "y": 20, "orient": "FS", "count_x": 100, "count_y": 1, "step_x": 10, "step_y": 0}
  ],
  "cells": [
    {"name": "u1", "model": "INV", "x": 103, "y": 4, "orient": "N"}
  ]
}`

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func fileCache(t *testing.T) *cache.FileCache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return c
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	result, err := r.Execute(ctx, []byte(sampleDEF), Options{Sites: 2})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.RunID) != 36 {
		t.Errorf("RunID = %q, want a UUID", result.RunID)
	}
	if result.InputHash != cache.Hash([]byte(sampleDEF)) {
		t.Error("InputHash should hash the raw input")
	}
	if result.CellWidth != 20 {
		t.Errorf("CellWidth = %g, want 20 (2 sites of 10)", result.CellWidth)
	}
	if result.Stats.Cells != 3 || result.Stats.Rows != 2 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.Legalization.Cells != 3 || result.Legalization.Moved == 0 {
		t.Errorf("Legalization = %+v", result.Legalization)
	}
	if result.Before.Cells[0].X != 103 {
		t.Error("Before should keep the parsed positions")
	}
	if result.File.Version != "5.8" || result.File.Design.Name != "adder" {
		t.Errorf("File header = %+v", result.File)
	}
	if len(result.Artifacts) != 0 {
		t.Error("no formats requested, no artifacts expected")
	}
	if len(result.File.Design.SpecialNets) != 1 {
		t.Error("special nets should be carried through")
	}

	out, err := Encode(result.File, InputDEF)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	check, err := r.Check(ctx, out, Options{Sites: 2})
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !check.Legal() {
		t.Errorf("legalized output has violations: %v", check.Violations)
	}
}

func TestExecuteJSONInput(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	result, err := r.Execute(ctx, []byte(sampleJSON), Options{Sites: 2})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	c := result.File.Design.Cells[0]
	if c.X != 100 || c.Y != 0 {
		t.Errorf("u1 at (%g, %g), want (100, 0)", c.X, c.Y)
	}

	out, err := Encode(result.File, InputJSON)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !strings.Contains(string(out), `"x": 100`) {
		t.Errorf("JSON output missing legalized position:\n%s", out)
	}
}

func TestExecuteCachesLegalization(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))

	first, err := r.Execute(ctx, []byte(sampleDEF), Options{Sites: 2})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LegalizeHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, []byte(sampleDEF), Options{Sites: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LegalizeHit {
		t.Error("second run should hit the cache")
	}
	for i, c := range first.File.Design.Cells {
		got := second.File.Design.Cells[i]
		if got.X != c.X || got.Y != c.Y || got.Orient != c.Orient {
			t.Errorf("cached cell %s = %+v, want %+v", c.Name, got, c)
		}
	}
	if second.Legalization.Displacement != first.Legalization.Displacement {
		t.Error("cached result should carry the same displacement")
	}

	// Different cell width is a different entry
	other, err := r.Execute(ctx, []byte(sampleDEF), Options{Sites: 1})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.LegalizeHit {
		t.Error("different cell width should miss the cache")
	}

	refreshed, err := r.Execute(ctx, []byte(sampleDEF), Options{Sites: 2, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LegalizeHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteRenders(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	opts := Options{
		Sites:   2,
		Formats: []string{render.FormatGnuplot, render.FormatSVG, render.FormatDOT, render.FormatJSON},
		Labels:  true,
		Moves:   true,
	}

	result, err := r.Execute(ctx, []byte(sampleDEF), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, f := range opts.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("artifact %s missing", f)
		}
	}
	if !bytes.Contains(result.Artifacts[render.FormatGnuplot], []byte(`set title "adder"`)) {
		t.Error("gnuplot script should be titled with the design name")
	}
	if !bytes.Contains(result.Artifacts[render.FormatSVG], []byte(`class="moves"`)) {
		t.Error("svg should show moves")
	}
	if !bytes.Contains(result.Artifacts[render.FormatJSON], []byte(`"from_x": 103`)) {
		t.Error("report should carry the starting position")
	}
	if result.CacheInfo.RenderHit {
		t.Error("first render should miss the cache")
	}

	again, err := r.Execute(ctx, []byte(sampleDEF), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second render should hit the cache")
	}
	if !bytes.Equal(again.Artifacts[render.FormatSVG], result.Artifacts[render.FormatSVG]) {
		t.Error("cached svg differs")
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	oneRow := strings.Replace(sampleDEF, "ROW r1 core 0 20 FS DO 100 BY 1 STEP 10 0 ;\n", "", 1)
	tiny := strings.NewReplacer("DO 100", "DO 1").Replace(sampleDEF)
	mixedPitch := strings.Replace(sampleDEF, "ROW r1 core 0 20 FS DO 100 BY 1 STEP 10 0", "ROW r1 core 0 20 FS DO 100 BY 1 STEP 15 0", 1)

	tests := []struct {
		name  string
		input string
		opts  Options
		code  errors.Code
	}{
		{"syntax", "DESIGN adder ; ROW", Options{Sites: 2}, errors.ErrCodeParse},
		{"no width", sampleDEF, Options{}, errors.ErrCodeInvalidConfiguration},
		{"negative workers", sampleDEF, Options{Sites: 2, Workers: -1}, errors.ErrCodeInvalidConfiguration},
		{"one row", oneRow, Options{Sites: 2}, errors.ErrCodeInvalidConfiguration},
		{"mixed pitch", mixedPitch, Options{CellWidth: 20}, errors.ErrCodeInvalidConfiguration},
		{"full", tiny, Options{Sites: 1}, errors.ErrCodeCapacityExhausted},
		{"bad output format", sampleDEF, Options{Sites: 2, Formats: []string{"tiff"}}, errors.ErrCodeInvalidFormat},
		{"bad input format", sampleDEF, Options{Sites: 2, InputFormat: "lef"}, errors.ErrCodeInvalidFormat},
		{"duplicate cells", `{"name": "x", "cells": [{"name": "a"}, {"name": "a"}]}`, Options{Sites: 2}, errors.ErrCodeInvalidInput},
		{"bad json", `{"name": `, Options{Sites: 2}, errors.ErrCodeParse},
		{"unnamed design", `{"rows": []}`, Options{Sites: 2}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, []byte(tt.input), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(nil)

	check, err := r.Check(ctx, []byte(sampleDEF), Options{Sites: 2})
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if check.Legal() {
		t.Error("unlegalized sample should have violations")
	}
	if check.Design != "adder" || check.Cells != 3 || check.CellWidth != 20 {
		t.Errorf("CheckResult = %+v", check)
	}
	if check.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestParseWarnings(t *testing.T) {
	input := strings.Replace(sampleDEF, "DIEAREA", "PROPERTYDEFINITIONS DIEAREA", 1)
	_, warnings, err := Parse([]byte(input), Options{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(warnings) == 0 || warnings[0].Word != "PROPERTYDEFINITIONS" {
		t.Errorf("warnings = %v, want the skipped word first", warnings)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{sampleDEF, InputDEF},
		{sampleJSON, InputJSON},
		{"  \n {}", InputJSON},
		{"", InputDEF},
	}
	for _, tt := range tests {
		if got := DetectFormat([]byte(tt.input)); got != tt.want {
			t.Errorf("DetectFormat(%.10q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if FormatFromPath("a/b.DEF") != InputDEF || FormatFromPath("x.json") != InputJSON || FormatFromPath("x.txt") != "" {
		t.Error("FormatFromPath should map extensions")
	}
}

func TestReadInput(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "missing.def"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("want FILE_NOT_FOUND, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "adder.def")
	if err := os.WriteFile(path, []byte(sampleDEF), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := ReadInput(path)
	if err != nil || string(data) != sampleDEF {
		t.Errorf("ReadInput() = %d bytes, %v", len(data), err)
	}
}

func TestCellWidth(t *testing.T) {
	f, _, err := Parse([]byte(sampleDEF), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
		want float64
	}{
		{"sites", Options{Sites: 2}, 20},
		{"fractional sites", Options{Sites: 1.5}, 20},
		{"explicit width wins", Options{Sites: 5, CellWidth: 30}, 30},
		{"width rounded up", Options{CellWidth: 15}, 20},
		{"width on grid", Options{CellWidth: 40}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CellWidth(f.Design, tt.opts)
			if err != nil {
				t.Fatalf("CellWidth() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CellWidth() = %g, want %g", got, tt.want)
			}
		})
	}

	if _, err := CellWidth(&layout.Layout{}, Options{CellWidth: 20}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("CellWidth() without rows = %v, want INVALID_CONFIGURATION", err)
	}
}

func TestExecuteRoundsCellWidth(t *testing.T) {
	result, err := quietRunner(nil).Execute(context.Background(), []byte(sampleDEF), Options{CellWidth: 15})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.CellWidth != 20 {
		t.Errorf("CellWidth = %g, want 20", result.CellWidth)
	}
	if v := placement.Verify(result.File.Design, 20); len(v) != 0 {
		t.Errorf("legalized layout has violations: %v", v)
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "gnuplot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateInputFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"def", false},
		{"json", false},
		{"", false}, // detect
		{"DEF", true},
		{"lef", true},
	}

	for _, tt := range tests {
		err := ValidateInputFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateInputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var o Options
	o.SetRenderDefaults()
	if len(o.Formats) != 1 || o.Formats[0] != render.FormatSVG {
		t.Errorf("Formats = %v, want [svg]", o.Formats)
	}
	if o.Scale != DefaultScale {
		t.Errorf("Scale = %g, want %g", o.Scale, DefaultScale)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if !(&Options{Formats: []string{"pdf"}}).NeedsConverter() {
		t.Error("pdf needs rsvg-convert")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Labels: true, Scale: 3}
	if k := o.ArtifactKeyOpts(render.FormatSVG, 20); k.Scale != 0 || !k.Labels || k.CellWidth != 20 {
		t.Errorf("svg key opts = %+v, scale only matters for png", k)
	}
	if k := o.ArtifactKeyOpts(render.FormatPNG, 20); k.Scale != 3 {
		t.Errorf("png key opts = %+v", k)
	}
}

func TestDecodeOptions(t *testing.T) {
	o, err := DecodeOptions(strings.NewReader(`
sites = 2
workers = 8
formats = ["gnuplot", "svg"]
labels = true
`))
	if err != nil {
		t.Fatalf("DecodeOptions() error: %v", err)
	}
	if o.Sites != 2 || o.Workers != 8 || !o.Labels || len(o.Formats) != 2 {
		t.Errorf("decoded %+v", o)
	}

	_, err = DecodeOptions(strings.NewReader("site = 2\n"))
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("unknown key should be rejected, got %v", err)
	}

	_, err = DecodeOptions(strings.NewReader("sites = \n"))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("malformed TOML should be a parse error, got %v", err)
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("cell_width = 40\nnets = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error: %v", err)
	}
	if o.CellWidth != 40 || !o.Nets {
		t.Errorf("loaded %+v", o)
	}

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("want FILE_NOT_FOUND, got %v", err)
	}
}

func TestOverlay(t *testing.T) {
	base := Options{Sites: 2, Workers: 8, Formats: []string{"svg"}, Labels: true}
	flags := Options{Sites: 3, Moves: true}

	got := Overlay(flags, base)
	if got.Sites != 3 {
		t.Errorf("flag value should win: Sites = %g", got.Sites)
	}
	if got.Workers != 8 || len(got.Formats) != 1 {
		t.Errorf("unset flags should fall back to base: %+v", got)
	}
	if !got.Labels || !got.Moves {
		t.Errorf("booleans should combine: %+v", got)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *countingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *countingHooks) OnParseStart(context.Context, int) { h.record("parse") }
func (h *countingHooks) OnLegalizeComplete(_ context.Context, _ string, _ float64, _ time.Duration, err error) {
	if err == nil {
		h.record("legalize")
	}
}
func (h *countingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render")
}

func TestExecuteFiresHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	r := quietRunner(nil)
	if _, err := r.Execute(context.Background(), []byte(sampleDEF), Options{Sites: 2, Formats: []string{"dot"}}); err != nil {
		t.Fatal(err)
	}

	want := []string{"parse", "legalize", "render"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietRunner(nil).Execute(ctx, []byte(sampleDEF), Options{Sites: 2})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
