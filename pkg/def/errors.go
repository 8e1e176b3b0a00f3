package def

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every [*SyntaxError].
var ErrSyntax = errors.New("def syntax error")

// SyntaxError reports malformed DEF input at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("def: offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Warning is a word the reader did not understand and skipped.
type Warning struct {
	Offset int
	Word   string
}

func (w Warning) String() string {
	return fmt.Sprintf("offset %d: skipped %q", w.Offset, w.Word)
}
