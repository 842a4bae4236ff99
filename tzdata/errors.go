package tzdata

import (
	"errors"
	"fmt"
)

// ErrMalformedLine reports a line that could not be tokenized,
// for example because of an unterminated double quote.
var ErrMalformedLine = errors.New("malformed line")

// ErrInvalidData reports a token that was present but did not
// match the grammar of its column.
var ErrInvalidData = errors.New("invalid data")

// MissingTokenError reports a required column that was absent
// from the input line.
type MissingTokenError struct {
	Field string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("missing %s field", e.Field)
}

// LineError wraps an error with the number and text of the input
// line where it occurred.
type LineError struct {
	Number int
	Text   string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Number, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// invalidf returns an error that wraps ErrInvalidData with a detail message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}
