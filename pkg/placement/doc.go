// Package placement legalizes standard-cell placements.
//
// # Overview
//
// [Legalize] takes a [layout.Layout] whose cells may overlap, sit off-grid or
// outside the rows, and moves every cell onto a row at a site-aligned x so that
// no two cells overlap, while keeping the total L1 displacement from the
// original coordinates small.
//
// # Algorithm
//
// The legalizer is a greedy, cluster-based heuristic in the style of Abacus:
//
//  1. Cells are processed in ascending order of their original x.
//  2. For each cell a [RowIterator] enumerates candidate rows in
//     non-decreasing distance from the cell's ideal (fractional) row.
//  3. On each candidate the cell is appended as a one-cell cluster to a
//     private copy of the row. If it does not overlap the row's tail the
//     placement is optimal and the search stops. Otherwise the two rightmost
//     clusters are merged until no overlap remains; each merged cluster is
//     placed at the mean of its cells' original x minus half its width,
//     clamped to the row's site grid.
//  4. The cheapest candidate is committed. Rows whose lower-bound cost
//     already exceeds the best found so far end the search.
//
// After every cell has been placed, cluster positions are written back to the
// layout. If any cell cannot be placed, [Legalize] returns a [*CapacityError]
// and the layout is left untouched.
//
// # Cost of merges
//
// The cost of a candidate that required merging is the displacement of the
// newly placed cell only, not the change in displacement of the whole merged
// cluster. This keeps the search cheap and is what the placements produced by
// this package are calibrated against.
//
// # Concurrency
//
// Cells are placed strictly one after another. Candidate rows for a single
// cell can be evaluated concurrently with [WithWorkers]; the decision is
// replayed in iterator order, so the result does not depend on the number of
// workers.
package placement
