// Package layout defines the placement geometry shared by the DEF reader,
// the legalizer and the renderers.
//
// A [Layout] holds rows, cells, special nets and the die area of a single
// design. All coordinates are in database units as written in the DEF file.
// Cells are the only mutable part: legalization rewrites their X, Y and
// Orient fields and leaves everything else alone.
package layout
