package domain

import (
	"bytes"
	"time"
)

// currencyMarker is the literal text preceding the publication date on the
// first line of a DOF file. The amount of leading whitespace varies between
// publications, so the marker is located by scan, not by fixed offset.
var currencyMarker = []byte("CURRENCY DATE = ")

// ParseCurrencyDate extracts the publication cycle from a DOF header line.
// The marker is followed by MM/DD/YY; two-digit years are expanded by
// adding 2000. Each structural failure gets its own format-error kind so
// callers can tell a missing marker from a garbled date.
func ParseCurrencyDate(line []byte, lineNumber int) (Cycle, error) {
	i := bytes.Index(line, currencyMarker)
	if i < 0 {
		return Cycle{}, &FormatError{Kind: FormatMarkerNotFound, Line: lineNumber}
	}
	rest := line[i+len(currencyMarker):]

	firstSlash := bytes.IndexByte(rest, '/')
	if firstSlash < 0 {
		return Cycle{}, &FormatError{Kind: FormatMalformedDate, Line: lineNumber}
	}
	secondSlash := bytes.IndexByte(rest[firstSlash+1:], '/')
	if secondSlash < 0 {
		return Cycle{}, &FormatError{Kind: FormatMalformedDate, Line: lineNumber}
	}
	secondSlash += firstSlash + 1

	month, okM := scanUint(rest[:firstSlash])
	day, okD := scanUint(rest[firstSlash+1 : secondSlash])
	year, okY := scanUint(rest[secondSlash+1:])
	if !okM || !okD || !okY {
		return Cycle{}, &FormatError{Kind: FormatNonNumericDate, Line: lineNumber}
	}

	if year < 100 {
		year += 2000
	}
	return Cycle{Year: int(year), Month: time.Month(month), Day: int(day)}, nil
}
