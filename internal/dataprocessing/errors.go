package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel reasons carried by FormatError.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumns    = errors.New("required columns missing")
	ErrNoRows            = errors.New("no data rows")
	ErrUnreadable        = errors.New("file could not be read as a table")
)

// FormatError reports that an upload could not be shaped into a table:
// unknown extension, unreadable content, no rows or missing columns.
type FormatError struct {
	Filename string
	Reason   error
	Missing  []string
	Cause    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason.Error())
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Missing, ", "))
	}
	if e.Filename != "" {
		fmt.Fprintf(&b, " (%s)", e.Filename)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Is lets errors.Is match the sentinel reason.
func (e *FormatError) Is(target error) bool {
	return target == e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// ParseError reports a cell whose value could not be coerced and which makes
// the whole load fail. Row is the 1-based physical row in the source file.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
