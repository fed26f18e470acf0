package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal parse outcomes. A parse that ends in one of
// these produces no container at all.
var (
	// ErrMissingCurrencyDate reports that the input ended before a currency
	// date header established the publication cycle.
	ErrMissingCurrencyDate = &FormatError{Kind: FormatMissingCurrencyDate}

	// ErrNoObstacles reports that the input carried a valid header but no
	// decodable obstacle records.
	ErrNoObstacles = errors.New("no obstacle records in input")
)

// FormatErrorKind discriminates the structural failures of header and
// coordinate parsing.
type FormatErrorKind int

const (
	// FormatMissingCurrencyDate: end of input reached with no header line.
	FormatMissingCurrencyDate FormatErrorKind = iota
	// FormatMarkerNotFound: the header line lacks the literal marker text.
	FormatMarkerNotFound
	// FormatMalformedDate: the header date is not slash-separated MM/DD/YY.
	FormatMalformedDate
	// FormatNonNumericDate: a header date component has no digits.
	FormatNonNumericDate
	// FormatInvalidDirection: a coordinate's trailing direction byte is not
	// one of the two letters valid for its axis.
	FormatInvalidDirection
)

// FormatError is a structural failure: header kinds are fatal to the whole
// parse, the direction kind only fails its line.
type FormatError struct {
	Kind FormatErrorKind
	Byte byte // offending byte, set for FormatInvalidDirection
	Line int  // 1-based, 0 when no line applies
}

func (e *FormatError) Error() string {
	var msg string
	switch e.Kind {
	case FormatMissingCurrencyDate:
		msg = "currency date header not found before end of input"
	case FormatMarkerNotFound:
		msg = "currency date marker not found"
	case FormatMalformedDate:
		msg = "malformed currency date, expected MM/DD/YY"
	case FormatNonNumericDate:
		msg = "non-numeric currency date component"
	case FormatInvalidDirection:
		msg = fmt.Sprintf("invalid direction character %q", e.Byte)
	default:
		msg = "format error"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Is matches format errors by kind, so callers can test against the
// sentinels with errors.Is regardless of line number or offending byte.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

// EncodingError reports bytes that are not valid UTF-8 in a field where
// text is required. Fails its line only.
type EncodingError struct {
	Field string
	Line  int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("line %d: field %s: invalid UTF-8", e.Line, e.Field)
}

// FieldParseError reports a field whose raw bytes do not decode to the
// field's type. Fails its line only.
type FieldParseError struct {
	Field string
	Value string
	Line  int
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("line %d: field %s: cannot parse %q", e.Line, e.Field, e.Value)
}

// LineTooShortError reports a record line below the fixed minimum length.
// Raised before any field slicing; fails its line only.
type LineTooShortError struct {
	Expected int
	Actual   int
	Line     int
}

func (e *LineTooShortError) Error() string {
	return fmt.Sprintf("line %d: record line too short: expected at least %d bytes, got %d", e.Line, e.Expected, e.Actual)
}

// StreamError reports an I/O failure while acquiring input bytes. Always
// fatal: the parse aborts and no container is produced.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("read line stream: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// InvalidDayOfYearError reports a stored last-updated date whose day
// component cannot be resolved within its year. Raised at resolution time,
// not at parse time.
type InvalidDayOfYearError struct {
	Year int
	Day  int
}

func (e *InvalidDayOfYearError) Error() string {
	return fmt.Sprintf("day of year %d out of range for year %d", e.Day, e.Year)
}
