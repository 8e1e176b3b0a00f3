// Package pipeline provides the parse → legalize → render pipeline.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// server. By centralizing this logic, we ensure both entry points read the
// same inputs, derive the same cell width, cache under the same keys and map
// failures to the same error codes.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a DEF or JSON layout
//  2. Legalize: Move every cell to a legal, non-overlapping site
//  3. Render: Generate plots and reports (gnuplot, SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Sites:   2,
//	    Formats: []string{"gnuplot"},
//	}
//	result, err := runner.Execute(ctx, defBytes, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := pipeline.Encode(result.File, pipeline.InputDEF)
//
// Errors returned by this package are [errors.Error] values whose code tells
// a parse failure from an unusable configuration or a full layout.
//
// [errors.Error]: github.com/matzehuels/legalizer/pkg/errors.Error
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/legalizer/pkg/cache"
	"github.com/matzehuels/legalizer/pkg/def"
	"github.com/matzehuels/legalizer/pkg/errors"
	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
	"github.com/matzehuels/legalizer/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWorkers is the number of candidate rows evaluated concurrently.
	// Results do not depend on it.
	DefaultWorkers = 4

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Input formats.
const (
	InputDEF  = "def"
	InputJSON = "json"
)

// ValidInputFormats is the set of supported input formats.
var ValidInputFormats = map[string]bool{
	InputDEF:  true,
	InputJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests and TOML for the
// CLI config file.
type Options struct {
	// Parse options
	InputFormat string `json:"input_format,omitempty" toml:"input_format"` // "def" or "json"; detected when empty

	// Legalize options
	Sites     float64 `json:"sites,omitempty" toml:"sites"`           // cell width in sites of the first row, rounded up to whole sites
	CellWidth float64 `json:"cell_width,omitempty" toml:"cell_width"` // cell width in layout units; overrides Sites
	Workers   int     `json:"workers,omitempty" toml:"workers"`
	Refresh   bool    `json:"refresh,omitempty" toml:"-"`

	// Render options
	Formats []string `json:"formats,omitempty" toml:"formats"`
	Labels  bool     `json:"labels,omitempty" toml:"labels"`
	Nets    bool     `json:"nets,omitempty" toml:"nets"`
	Moves   bool     `json:"moves,omitempty" toml:"moves"`
	Scale   float64  `json:"scale,omitempty" toml:"scale"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Before is the layout as parsed.
	Before *layout.Layout

	// File holds the legalized layout with the input's DEF header.
	File *def.File

	// CellWidth is the uniform cell width used for legalization.
	CellWidth float64

	// Legalization summarizes the run.
	Legalization *placement.Result

	// Warnings lists words the DEF reader skipped.
	Warnings []def.Warning

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells        int
	Rows         int
	ParseTime    time.Duration
	LegalizeTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LegalizeHit bool // Whether the legalized layout came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateInputFormat checks that an input format is valid. Empty means
// detect from content.
func ValidateInputFormat(format string) error {
	if format != "" && !ValidInputFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid input format: %q (must be one of: def, json)", format)
	}
	return nil
}

// ValidateFormats checks that all output formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "output format")
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateInputFormat(o.InputFormat); err != nil {
		return err
	}
	if err := o.ValidateForLegalize(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.setScale()
	o.validated = true
	return nil
}

// SetLegalizeDefaults sets default values for legalization.
func (o *Options) SetLegalizeDefaults() {
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLegalize validates and sets defaults for legalization.
func (o *Options) ValidateForLegalize() error {
	o.SetLegalizeDefaults()
	if o.Sites <= 0 && o.CellWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "sites or cell_width must be positive")
	}
	if o.Sites < 0 || o.CellWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "sites and cell_width cannot be negative")
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "workers cannot be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	o.setScale()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) setScale() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "scale cannot be negative")
	}
	return ValidateFormats(o.Formats)
}

// NeedsConverter reports whether any requested format needs rsvg-convert.
func (o *Options) NeedsConverter() bool {
	return slices.ContainsFunc(o.Formats, render.NeedsConverter)
}

// LegalizeKeyOpts returns cache key options for legalization.
func (o *Options) LegalizeKeyOpts(cellWidth float64) cache.LegalizeKeyOpts {
	return cache.LegalizeKeyOpts{CellWidth: cellWidth}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, cellWidth float64) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:    format,
		CellWidth: cellWidth,
		Labels:    o.Labels,
		Nets:      o.Nets,
		Moves:     o.Moves,
	}
	if format == render.FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
