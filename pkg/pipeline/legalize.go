package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/legalizer/pkg/errors"
	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
)

// CellWidth returns the uniform cell width for l: opts.CellWidth when set,
// otherwise opts.Sites times the site pitch of the first row. Either way the
// width is rounded up to a whole number of first-row sites.
func CellWidth(l *layout.Layout, opts Options) (float64, error) {
	if len(l.Rows) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfiguration, "layout has no rows")
	}
	pitch := l.Rows[0].StepX
	width := opts.CellWidth
	if width <= 0 {
		width = opts.Sites * pitch
	}
	return placement.QuantizeWidth(width, pitch), nil
}

// Legalize legalizes l in place with the given cell width.
func Legalize(l *layout.Layout, cellWidth float64, opts Options) (*placement.Result, error) {
	opts.SetLegalizeDefaults()
	res, err := placement.Legalize(l, cellWidth,
		placement.WithLogger(opts.Logger),
		placement.WithWorkers(opts.Workers))
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// Check returns every legality violation in l for the given cell width.
func Check(l *layout.Layout, cellWidth float64) []placement.Violation {
	return placement.Verify(l, cellWidth)
}

// classify attaches an error code to failures from the placement package.
func classify(err error) error {
	switch {
	case stderrors.Is(err, placement.ErrCapacityExhausted):
		return errors.Wrap(errors.ErrCodeCapacityExhausted, err, "legalize")
	case stderrors.Is(err, placement.ErrInvalidConfiguration):
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "legalize")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "legalize")
	}
}
