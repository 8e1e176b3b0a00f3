// Package pkg provides the libraries behind the legalizer CLI and HTTP API.
//
// # Overview
//
// A global placer spreads standard cells over the die without regard for
// rows or sites. Legalization moves every cell onto a site of a placement
// row so that no two cells overlap, while keeping the total displacement
// small. The pkg directory is organized into these areas:
//
//  1. [layout] - Geometry: rows, cells, special nets, orientations
//  2. [placement] - The legalizer, verifier and displacement metrics
//  3. [def] and [io] - DEF and JSON readers and writers
//  4. [render] - Gnuplot, SVG, PNG, PDF, DOT and JSON report output
//  5. [pipeline] - Orchestration (parse → legalize → render) with caching
//  6. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The typical data flow:
//
//	DEF / JSON layout
//	       ↓
//	  [def] package (parse, collect warnings for skipped words)
//	       ↓
//	  [placement] package (legalize row by row, cluster by cluster)
//	       ↓
//	  [def] / [io] write back, [render] draws before/after
//
// # Quick Start
//
//	f, err := def.Import("adder.def")
//	if err != nil {
//	    return err
//	}
//	res, err := placement.Legalize(f.Design, 20, placement.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//	fmt.Println("displacement:", res.Displacement.Total)
//	return def.Export("adder.legal.def", f)
//
// # Supporting Packages
//
// [cache] - File, Redis and in-memory caches for legalized layouts and
// rendered artifacts, keyed by a hash of the input and the options.
//
// [errors] - Error codes shared by the CLI and the API, with HTTP status
// and user message mapping.
//
// [observability] - Hooks for pipeline, cache and server events.
//
// [buildinfo] - Version information set at build time.
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/layout
// [placement]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/placement
// [def]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/def
// [io]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/legalizer/pkg/buildinfo
package pkg
