package pipeline

import (
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/legalizer/pkg/errors"
)

// DecodeOptions reads TOML options from r:
//
//	sites = 2
//	workers = 8
//	formats = ["gnuplot", "svg"]
//	labels = true
//
// Unknown keys are an error.
func DecodeOptions(r io.Reader) (Options, error) {
	var o Options
	md, err := toml.NewDecoder(r).Decode(&o)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeParse, err, "config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidConfiguration, "config: unknown keys: %s", strings.Join(keys, ", "))
	}
	return o, nil
}

// LoadOptions reads TOML options from the file at path.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config")
		}
		return Options{}, errors.Wrap(errors.ErrCodeInternal, err, "config")
	}
	defer f.Close()
	return DecodeOptions(f)
}

// Overlay returns o with every field that is unset in o taken from base.
// Booleans are or-ed. The CLI uses it to layer flags over the config file.
func Overlay(o, base Options) Options {
	if o.InputFormat == "" {
		o.InputFormat = base.InputFormat
	}
	if o.Sites == 0 {
		o.Sites = base.Sites
	}
	if o.CellWidth == 0 {
		o.CellWidth = base.CellWidth
	}
	if o.Workers == 0 {
		o.Workers = base.Workers
	}
	if len(o.Formats) == 0 {
		o.Formats = base.Formats
	}
	if o.Scale == 0 {
		o.Scale = base.Scale
	}
	if o.Logger == nil {
		o.Logger = base.Logger
	}
	o.Labels = o.Labels || base.Labels
	o.Nets = o.Nets || base.Nets
	o.Moves = o.Moves || base.Moves
	o.Refresh = o.Refresh || base.Refresh
	return o
}
