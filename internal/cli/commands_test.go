package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const adderDEF = `VERSION 5.8 ;
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
END DESIGN
`

// testEnv points the cache and config directories at temp dirs and
// writes the sample layout.
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "adder.def")
	if err := os.WriteFile(path, []byte(adderDEF), 0o644); err != nil {
		t.Fatal(err)
	}

	prev := uiOut
	uiOut = io.Discard
	t.Cleanup(func() { uiOut = prev })
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLegalizeCommand(t *testing.T) {
	input := testEnv(t)

	if _, err := execute(t, "legalize", input, "--sites", "2"); err != nil {
		t.Fatalf("legalize: %v", err)
	}

	output := filepath.Join(filepath.Dir(input), "adder.legal.def")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "DESIGN adder") {
		t.Error("output should keep the design name")
	}
	if strings.Contains(string(data), "( 103 4 )") {
		t.Error("u1 should have moved onto the site grid")
	}

	if _, err := execute(t, "check", output, "--sites", "2"); err != nil {
		t.Errorf("check of legalized output: %v", err)
	}
}

func TestLegalizeCommandPlotAndJSON(t *testing.T) {
	input := testEnv(t)
	output := filepath.Join(filepath.Dir(input), "out", "adder.json")

	_, err := execute(t, "legalize", input, "--cell-width", "20", "-o", output, "--plot", "gnuplot,svg", "--moves")
	if err != nil {
		t.Fatalf("legalize: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("output format should follow the .json extension, got %q", data)
	}
	for _, ext := range []string{".gp", ".svg"} {
		if _, err := os.Stat(basePath(output) + ext); err != nil {
			t.Errorf("missing artifact %s: %v", ext, err)
		}
	}
}

func TestLegalizeCommandRoundsWidth(t *testing.T) {
	input := testEnv(t)
	output := filepath.Join(filepath.Dir(input), "half.def")

	if _, err := execute(t, "legalize", input, "--sites", "1.5", "-o", output); err != nil {
		t.Fatalf("legalize with fractional sites: %v", err)
	}
	if _, err := execute(t, "check", output, "--cell-width", "15"); err != nil {
		t.Errorf("check with the same rounded width: %v", err)
	}
}

func TestCheckCommandIllegal(t *testing.T) {
	input := testEnv(t)

	_, err := execute(t, "check", input, "--sites", "2")
	var illegal *IllegalError
	if !errors.As(err, &illegal) {
		t.Fatalf("check error = %v, want *IllegalError", err)
	}
	if illegal.Violations == 0 {
		t.Error("IllegalError should count violations")
	}
}

func TestCheckCommandNeedsWidth(t *testing.T) {
	input := testEnv(t)
	if _, err := execute(t, "check", input); err == nil {
		t.Error("check without a cell width should fail")
	}
}

func TestPlotCommand(t *testing.T) {
	input := testEnv(t)
	base := filepath.Join(t.TempDir(), "before")

	if _, err := execute(t, "plot", input, "--sites", "2", "-o", base); err != nil {
		t.Fatalf("plot: %v", err)
	}
	data, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("plot should default to svg")
	}
}

func TestConfigFlag(t *testing.T) {
	input := testEnv(t)
	cfg := filepath.Join(t.TempDir(), "legalizer.toml")
	if err := os.WriteFile(cfg, []byte("sites = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", cfg, "legalize", input); err != nil {
		t.Fatalf("legalize with config sites: %v", err)
	}
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path"); err == nil {
		t.Error("a missing --config file should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	testEnv(t)
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	testEnv(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "adder")
	artifacts := map[string][]byte{
		"svg":     []byte("<svg/>"),
		"gnuplot": []byte("plot"),
	}

	paths, err := writeArtifacts(artifacts, []string{"gnuplot", "png", "svg"}, base)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{base + ".gp", base + ".svg"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if data, _ := os.ReadFile(base + ".svg"); string(data) != "<svg/>" {
		t.Errorf("svg content = %q", data)
	}
}
