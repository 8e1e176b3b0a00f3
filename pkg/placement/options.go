package placement

import (
	"io"

	"github.com/charmbracelet/log"
)

// Option configures [Legalize].
type Option func(*options)

type options struct {
	logger  *log.Logger
	workers int
}

// WithLogger sets the logger used for per-cell debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers evaluates up to n candidate rows of a cell concurrently.
// Values below 2 keep the search sequential.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) options {
	o := options{
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		workers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}
