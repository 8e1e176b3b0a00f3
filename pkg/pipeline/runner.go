package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/legalizer/pkg/cache"
	"github.com/matzehuels/legalizer/pkg/def"
	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/observability"
	"github.com/matzehuels/legalizer/pkg/placement"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// legalized is the cached form of a legalization.
type legalized struct {
	Layout *layout.Layout    `json:"layout"`
	Result *placement.Result `json:"result"`
}

// Execute runs the complete parse → legalize → render pipeline with caching.
// Rendering is skipped when opts.Formats is empty.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(input),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	// Stage 1: Parse
	f, err := r.parse(ctx, input, opts, result)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed layout",
		"design", f.Design.Name,
		"cells", result.Stats.Cells,
		"rows", result.Stats.Rows,
		"duration", result.Stats.ParseTime)

	// Stage 2: Legalize
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cellWidth, err := CellWidth(f.Design, opts)
	if err != nil {
		return nil, err
	}
	result.CellWidth = cellWidth
	result.Before = f.Design.Clone()

	legalizeStart := time.Now()
	after, res, hit, err := r.LegalizeWithCacheInfo(ctx, f.Design, result.InputHash, cellWidth, opts)
	if err != nil {
		return nil, err
	}
	result.File = &def.File{Version: f.Version, DividerChar: f.DividerChar, BusBitChars: f.BusBitChars, Design: after}
	result.Legalization = res
	result.Stats.LegalizeTime = time.Since(legalizeStart)
	result.CacheInfo.LegalizeHit = hit

	logger.Info("legalized",
		"cell_width", cellWidth,
		"moved", res.Moved,
		"displacement", res.Displacement.Total,
		"cached", hit,
		"duration", result.Stats.LegalizeTime)

	// Stage 3: Render
	if len(opts.Formats) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Before, after, res, cellWidth, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) parse(ctx context.Context, input []byte, opts Options, result *Result) (*def.File, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnParseStart(ctx, len(input))

	f, warnings, err := Parse(input, opts)
	result.Stats.ParseTime = time.Since(start)
	if err != nil {
		hooks.OnParseComplete(ctx, "", 0, result.Stats.ParseTime, err)
		return nil, err
	}
	result.Warnings = warnings
	result.Stats.Cells = len(f.Design.Cells)
	result.Stats.Rows = len(f.Design.Rows)
	hooks.OnParseComplete(ctx, f.Design.Name, result.Stats.Cells, result.Stats.ParseTime, nil)
	return f, nil
}

// LegalizeWithCacheInfo legalizes a copy of l with caching and returns
// cache hit info. inputHash identifies the input the layout was parsed
// from; together with the cell width it keys the cache entry. l itself is
// not modified.
func (r *Runner) LegalizeWithCacheInfo(ctx context.Context, l *layout.Layout, inputHash string, cellWidth float64, opts Options) (*layout.Layout, *placement.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLegalize(); err != nil {
		return nil, nil, false, err
	}

	hooks := observability.Pipeline()
	cacheKey := r.Keyer.LegalizeKey(inputHash, opts.LegalizeKeyOpts(cellWidth))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached legalized
			if err := json.Unmarshal(data, &cached); err == nil && cached.Layout != nil && cached.Result != nil {
				observability.Cache().OnCacheHit(ctx, "legalize")
				return cached.Layout, cached.Result, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "legalize")
	}

	work := l.Clone()
	start := time.Now()
	hooks.OnLegalizeStart(ctx, l.Name, len(l.Cells), len(l.Rows))
	res, err := Legalize(work, cellWidth, opts)
	if err != nil {
		hooks.OnLegalizeComplete(ctx, l.Name, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	hooks.OnLegalizeComplete(ctx, l.Name, res.Displacement.Total, time.Since(start), nil)

	// Cache the result
	if data, err := json.Marshal(legalized{Layout: work, Result: res}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLegalize); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "legalize", len(data))
		}
	}

	return work, res, false, nil // Cache miss
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, before, after *layout.Layout, res *placement.Result, cellWidth float64, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Key artifacts by both layouts: moves and reports depend on the start.
	layoutData, err := json.Marshal([]*layout.Layout{before, after})
	if err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, cellWidth))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(before, after, res, cellWidth, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, cellWidth))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// CheckResult reports the legality of a placement.
type CheckResult struct {
	RunID      string                `json:"run_id"`
	Design     string                `json:"design"`
	CellWidth  float64               `json:"cell_width"`
	Cells      int                   `json:"cells"`
	Violations []placement.Violation `json:"violations"`
}

// Legal reports whether no violations were found.
func (c *CheckResult) Legal() bool { return len(c.Violations) == 0 }

// Check parses input and verifies its placement without moving any cell.
func (r *Runner) Check(ctx context.Context, input []byte, opts Options) (*CheckResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLegalize(); err != nil {
		return nil, err
	}
	if err := ValidateInputFormat(opts.InputFormat); err != nil {
		return nil, err
	}

	result := &Result{}
	f, err := r.parse(ctx, input, opts, result)
	if err != nil {
		return nil, err
	}
	cellWidth, err := CellWidth(f.Design, opts)
	if err != nil {
		return nil, err
	}

	violations := Check(f.Design, cellWidth)
	if violations == nil {
		violations = []placement.Violation{}
	}
	opts.Logger.Debug("checked placement", "design", f.Design.Name, "violations", len(violations))
	return &CheckResult{
		RunID:      uuid.NewString(),
		Design:     f.Design.Name,
		CellWidth:  cellWidth,
		Cells:      len(f.Design.Cells),
		Violations: violations,
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
