package pipeline

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/legalizer/pkg/def"
	"github.com/matzehuels/legalizer/pkg/errors"
	lio "github.com/matzehuels/legalizer/pkg/io"
)

// DetectFormat guesses the input format: JSON when the first non-blank byte
// is '{', DEF otherwise.
func DetectFormat(data []byte) string {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return InputJSON
	}
	return InputDEF
}

// FormatFromPath returns the input format implied by a file extension, or
// "" when the extension says nothing.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".def":
		return InputDEF
	case ".json":
		return InputJSON
	}
	return ""
}

// ReadInput reads the file at path. A missing file yields FILE_NOT_FOUND.
func ReadInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read input")
	}
	return data, nil
}

// Parse reads a DEF or JSON layout. JSON layouts get a default DEF header.
// Skipped DEF words are returned as warnings and logged at warn level.
func Parse(data []byte, opts Options) (*def.File, []def.Warning, error) {
	opts.SetLegalizeDefaults()

	format := opts.InputFormat
	if format == "" {
		format = DetectFormat(data)
	}

	var f *def.File
	var warnings []def.Warning
	switch format {
	case InputJSON:
		l, err := lio.ReadJSON(bytes.NewReader(data))
		if err != nil {
			if stderrors.Is(err, lio.ErrInvalidLayout) {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "json layout")
			}
			return nil, nil, errors.Wrap(errors.ErrCodeParse, err, "json layout")
		}
		f = def.NewFile(l)
	case InputDEF:
		var err error
		f, err = def.Parse(data, def.WithWarnings(func(w def.Warning) {
			warnings = append(warnings, w)
			opts.Logger.Warn("skipped unsupported DEF word", "word", w.Word, "offset", w.Offset)
		}))
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeParse, err, "def")
		}
	default:
		return nil, nil, ValidateInputFormat(format)
	}

	if err := errors.ValidateDesignName(f.Design.Name); err != nil {
		return nil, nil, err
	}
	return f, warnings, nil
}

// Encode writes f in the given format ("def" or "json").
func Encode(f *def.File, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case InputDEF, "":
		if err := def.Write(&buf, f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode def")
		}
	case InputJSON:
		if err := lio.WriteJSON(f.Design, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
	default:
		return nil, ValidateInputFormat(format)
	}
	return buf.Bytes(), nil
}
