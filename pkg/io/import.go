package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// ErrInvalidLayout indicates JSON that decodes but does not describe a
// usable layout.
var ErrInvalidLayout = errors.New("invalid layout")

// ReadJSON decodes a JSON layout from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or has unknown fields
//   - A cell has no name, or two cells share a name
//   - A row has a negative count or step
//
// Structural errors wrap [ErrInvalidLayout]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*layout.Layout, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var l layout.Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ImportJSON reads a JSON file at path and returns the decoded layout.
// It returns the same validation errors as [ReadJSON], wrapped with the path.
func ImportJSON(path string) (*layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func validate(l *layout.Layout) error {
	for i, r := range l.Rows {
		if r.CountX < 0 || r.CountY < 0 {
			return fmt.Errorf("%w: row %d (%s): negative count", ErrInvalidLayout, i, r.Name)
		}
		if r.StepX < 0 || r.StepY < 0 {
			return fmt.Errorf("%w: row %d (%s): negative step", ErrInvalidLayout, i, r.Name)
		}
	}

	seen := make(map[string]bool, len(l.Cells))
	for i, c := range l.Cells {
		if c.Name == "" {
			return fmt.Errorf("%w: cell %d: missing name", ErrInvalidLayout, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: cell %s: duplicate name", ErrInvalidLayout, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
