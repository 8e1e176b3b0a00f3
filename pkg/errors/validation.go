package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds design names and file names.
const maxNameLength = 256

// ValidateDesignName checks that name can be written back as a DEF
// identifier and used as part of an output file name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No whitespace or control characters
//   - None of the DEF delimiters ; ( ) " #
//   - No path separators or traversal sequences
func ValidateDesignName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "design name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "design name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "design name contains whitespace or control characters")
		}
	}

	if i := strings.IndexAny(name, `;()"#`); i >= 0 {
		return New(ErrCodeInvalidInput, "design name contains DEF delimiter %q", name[i])
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "design name cannot contain path components")
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
