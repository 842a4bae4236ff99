package tzdata

import (
	"fmt"
	"strings"
)

// Tokens is a cursor over the fields of a single input line.
// Fields are consumed left to right.
type Tokens struct {
	fields []string
	pos    int
}

// SplitLine splits a line into fields and returns a cursor over them.
//
// Fields are separated by runs of white space. An unquoted sharp
// character introduces a comment which extends to the end of the line.
// White space and sharp characters may be enclosed in double quotes to
// be used as part of a field; the quotes themselves are stripped. A
// line that is blank after comment stripping yields zero tokens.
//
// SplitLine returns ErrMalformedLine if a double quote is left
// unterminated.
func SplitLine(line string) (*Tokens, error) {
	var (
		fields []string
		field  strings.Builder
		open   bool // inside a quoted segment
		some   bool // current field has content (possibly empty quotes)
	)
	flush := func() {
		if some {
			fields = append(fields, field.String())
			field.Reset()
			some = false
		}
	}
scan:
	for _, c := range line {
		switch {
		case c == '"':
			open = !open
			some = true
		case open:
			field.WriteRune(c)
		case c == '#':
			break scan
		case c == ' ' || c == '\t' || c == '\f' || c == '\v' || c == '\r' || c == '\n':
			flush()
		default:
			field.WriteRune(c)
			some = true
		}
	}
	if open {
		return nil, fmt.Errorf("%w: unterminated quote", ErrMalformedLine)
	}
	flush()
	return &Tokens{fields: fields}, nil
}

// Len returns the number of fields left to consume.
func (t *Tokens) Len() int {
	return len(t.fields) - t.pos
}

// Peek returns the next field without consuming it.
func (t *Tokens) Peek() (string, bool) {
	if t.pos >= len(t.fields) {
		return "", false
	}
	return t.fields[t.pos], true
}

// Next consumes and returns the next field.
func (t *Tokens) Next() (string, bool) {
	s, ok := t.Peek()
	if ok {
		t.pos++
	}
	return s, ok
}

// Require consumes the next field or fails with a MissingTokenError
// naming the expected column.
func (t *Tokens) Require(field string) (string, error) {
	s, ok := t.Next()
	if !ok {
		return "", &MissingTokenError{Field: field}
	}
	return s, nil
}

// Rest consumes and returns all remaining fields.
func (t *Tokens) Rest() []string {
	r := t.fields[t.pos:]
	t.pos = len(t.fields)
	return r
}
