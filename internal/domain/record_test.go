package domain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleLine builds a 127-byte record line by writing each field at its
// documented offset over a blank canvas. Tests patch individual spans to
// exercise failure paths.
func sampleLine() []byte {
	line := bytes.Repeat([]byte(" "), MinRecordLength)
	set := func(s span, v string) { copy(line[s.start:s.end], v) }

	set(spanIdentifier, "01-001307")
	set(spanVerification, "O")
	set(spanCountry, "US")
	set(spanState, "AL")
	set(spanCity, "MOBILE")
	set(spanLatDegrees, "30")
	set(spanLatMinutes, "10")
	set(spanLatSeconds, "45.00N")
	set(spanLonDegrees, "088")
	set(spanLonMinutes, "04")
	set(spanLonSeconds, "39.00W")
	set(spanType, "TOWER")
	set(spanQuantity, "1")
	set(spanHeightAGL, "  562")
	set(spanHeightMSL, "  731")
	set(spanLighting, "R")
	set(spanAccuracy, "4")
	set(spanMarking, "P")
	set(spanStudyNumber, "2025ASO001307")
	set(spanAction, "A")
	set(spanJulianDate, "2025157")
	return line
}

func patch(line []byte, s span, v string) []byte {
	out := bytes.Clone(line)
	for i := s.start; i < s.end; i++ {
		out[i] = ' '
	}
	copy(out[s.start:s.end], v)
	return out
}

func TestParseRecordAllFields(t *testing.T) {
	line := sampleLine()

	o, err := ParseRecord(line, 5)
	require.NoError(t, err)

	assert.Equal(t, "01-001307", o.Identifier)
	assert.Equal(t, VerificationOperational, o.Verification)
	assert.Equal(t, "US", o.Country)
	require.NotNil(t, o.State)
	assert.Equal(t, "AL", *o.State)
	assert.Equal(t, "MOBILE", o.City)
	assert.InDelta(t, 30.179167, o.Latitude, 1e-6)
	assert.InDelta(t, -88.0775, o.Longitude, 1e-6)
	assert.Equal(t, "TOWER", o.Type)
	assert.Equal(t, uint8(1), o.Quantity)
	assert.Equal(t, 562, o.HeightAGL)
	assert.Equal(t, 731, o.HeightMSL)
	assert.Equal(t, LightingRed, o.Lighting)
	assert.Equal(t, AccuracyCategory(4), o.Accuracy)
	assert.Equal(t, MarkingOrangeWhitePaint, o.Marking)
	assert.Equal(t, "2025ASO001307", o.StudyNumber)
	assert.Equal(t, ActionActive, o.Action)
	assert.Equal(t, JulianDate{Year: 2025, Day: 157}, o.LastUpdated)
}

// TestParseRecordMatchesManualSlicing pins the offset table: every text
// field must equal a trim of the raw bytes sliced at the documented
// positions.
func TestParseRecordMatchesManualSlicing(t *testing.T) {
	line := sampleLine()

	o, err := ParseRecord(line, 1)
	require.NoError(t, err)

	slice := func(start, end int) string {
		return strings.TrimSpace(string(line[start:end]))
	}
	assert.Equal(t, slice(0, 9), o.Identifier)
	assert.Equal(t, slice(12, 14), o.Country)
	require.NotNil(t, o.State)
	assert.Equal(t, slice(15, 17), *o.State)
	assert.Equal(t, slice(18, 35), o.City)
	assert.Equal(t, slice(62, 81), o.Type)
	assert.Equal(t, slice(103, 117), o.StudyNumber)
	assert.Equal(t, byte('O'), line[10])
	assert.Equal(t, slice(120, 127), o.LastUpdated.String())
}

func TestParseRecordTooShort(t *testing.T) {
	line := sampleLine()[:126]

	_, err := ParseRecord(line, 42)

	var tooShort *LineTooShortError
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, MinRecordLength, tooShort.Expected)
	assert.Equal(t, 126, tooShort.Actual)
	assert.Equal(t, 42, tooShort.Line)
}

func TestParseRecordBlankState(t *testing.T) {
	line := patch(sampleLine(), spanState, "  ")

	o, err := ParseRecord(line, 1)
	require.NoError(t, err)
	assert.Nil(t, o.State)
}

// A blank accuracy byte decodes to category 9 (unknown). This is the
// documented normalization, not a fallback for arbitrary bad bytes.
func TestParseRecordBlankAccuracyIsUnknown(t *testing.T) {
	line := patch(sampleLine(), spanAccuracy, " ")

	o, err := ParseRecord(line, 1)
	require.NoError(t, err)
	assert.Equal(t, AccuracyUnknown, o.Accuracy)
}

func TestParseRecordMarkingAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Marking
	}{
		{name: "explicit none", raw: "A", want: MarkingNone},
		{name: "N aliases to none", raw: "N", want: MarkingNone},
		{name: "blank aliases to none", raw: " ", want: MarkingNone},
		{name: "spherical", raw: "S", want: MarkingSpherical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := patch(sampleLine(), spanMarking, tt.raw)

			o, err := ParseRecord(line, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.Marking)
		})
	}
}

func TestParseRecordInvalidDirection(t *testing.T) {
	tests := []struct {
		name string
		span span
		raw  string
		want byte
	}{
		{name: "latitude with bad letter", span: spanLatSeconds, raw: "45.00Q", want: 'Q'},
		{name: "latitude with longitude letter", span: spanLatSeconds, raw: "45.00E", want: 'E'},
		{name: "longitude with latitude letter", span: spanLonSeconds, raw: "39.00S", want: 'S'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := patch(sampleLine(), tt.span, tt.raw)

			_, err := ParseRecord(line, 7)

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, FormatInvalidDirection, formatErr.Kind)
			assert.Equal(t, tt.want, formatErr.Byte)
			assert.Equal(t, 7, formatErr.Line)
		})
	}
}

func TestParseRecordFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		span  span
		raw   string
		field string
	}{
		{name: "unknown verification code", span: spanVerification, raw: "X", field: "verification"},
		{name: "blank quantity", span: spanQuantity, raw: " ", field: "quantity"},
		{name: "non-numeric agl", span: spanHeightAGL, raw: "     ", field: "agl height"},
		{name: "unknown lighting code", span: spanLighting, raw: "5", field: "lighting"},
		{name: "accuracy zero", span: spanAccuracy, raw: "0", field: "accuracy"},
		{name: "unknown marking code", span: spanMarking, raw: "Q", field: "marking"},
		{name: "unknown action code", span: spanAction, raw: "D", field: "action"},
		{name: "non-numeric latitude degrees", span: spanLatDegrees, raw: "xx", field: "latitude degrees"},
		{name: "non-numeric julian day", span: spanJulianDate, raw: "2025xyz", field: "julian day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := patch(sampleLine(), tt.span, tt.raw)

			_, err := ParseRecord(line, 9)

			var fieldErr *FieldParseError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, 9, fieldErr.Line)
		})
	}
}

func TestParseRecordNegativeMSL(t *testing.T) {
	line := patch(sampleLine(), spanHeightMSL, " -112")

	o, err := ParseRecord(line, 1)
	require.NoError(t, err)
	assert.Equal(t, -112, o.HeightMSL)
}

func TestParseRecordInvalidUTF8(t *testing.T) {
	line := sampleLine()
	line[spanCity.start] = 0xff

	_, err := ParseRecord(line, 3)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "city", encErr.Field)
	assert.Equal(t, 3, encErr.Line)
}

// Interior spaces are significant until the final trim: only surrounding
// padding goes.
func TestParseRecordKeepsInteriorSpaces(t *testing.T) {
	line := patch(sampleLine(), spanCity, " NEW ORLEANS ")

	o, err := ParseRecord(line, 1)
	require.NoError(t, err)
	assert.Equal(t, "NEW ORLEANS", o.City)
}

func TestScanUint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint64
		ok   bool
	}{
		{name: "plain digits", in: "123", want: 123, ok: true},
		{name: "leading spaces", in: "  45", want: 45, ok: true},
		{name: "stops at space", in: "12 9", want: 12, ok: true},
		{name: "stops at non-digit", in: "7a", want: 7, ok: true},
		{name: "no digits", in: "   ", ok: false},
		{name: "minus is not unsigned", in: "-3", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanUint([]byte(tt.in))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScanInt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{name: "positive", in: "  562", want: 562, ok: true},
		{name: "negative", in: " -112", want: -112, ok: true},
		{name: "bare minus", in: "-", ok: false},
		{name: "blank", in: "     ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanInt([]byte(tt.in))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScanDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{name: "integer", in: "088", want: 88, ok: true},
		{name: "fraction", in: "45.25", want: 45.25, ok: true},
		{name: "leading spaces", in: "  4.5", want: 4.5, ok: true},
		{name: "negative", in: "-0.5", want: -0.5, ok: true},
		{name: "second point stops scan", in: "1.2.3", want: 1.2, ok: true},
		{name: "stops at letter", in: "39.00W", want: 39, ok: true},
		{name: "point only", in: ".", ok: false},
		{name: "blank", in: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanDecimal([]byte(tt.in))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestFieldErrorMessage(t *testing.T) {
	err := &FieldParseError{Field: "quantity", Value: " ", Line: 12}
	assert.Equal(t, `line 12: field quantity: cannot parse " "`, err.Error())
	assert.False(t, errors.Is(err, ErrMissingCurrencyDate))
}
