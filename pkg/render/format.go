package render

import (
	"fmt"
	"slices"
	"strings"
)

// Output formats.
const (
	FormatGnuplot = "gnuplot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatNeato   = "neato"
	FormatJSON    = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatGnuplot, FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatNeato, FormatJSON}

var extensions = map[string]string{
	FormatGnuplot: ".gp",
	FormatSVG:     ".svg",
	FormatPNG:     ".png",
	FormatPDF:     ".pdf",
	FormatDOT:     ".dot",
	FormatNeato:   ".neato.svg",
	FormatJSON:    ".report.json",
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return "." + format
}

// NeedsConverter reports whether format requires rsvg-convert.
func NeedsConverter(format string) bool {
	return format == FormatPNG || format == FormatPDF
}
