package domain

import (
	"strings"
	"unicode/utf8"
)

// MinRecordLength is the shortest line that can hold every field of the
// published layout. Checked before any slicing so no field access can run
// out of range.
const MinRecordLength = 127

// span is a half-open byte range [start, end) within a record line.
type span struct {
	start, end int
}

func (s span) of(line []byte) []byte {
	return line[s.start:s.end]
}

// Byte offsets of each field per the published DOF layout, 0-indexed and
// end-exclusive. Positions are exact: fields are sliced, never split on
// whitespace, because name fields contain significant interior spaces.
var (
	spanIdentifier   = span{0, 9}
	spanVerification = span{10, 11}
	spanCountry      = span{12, 14}
	spanState        = span{15, 17}
	spanCity         = span{18, 35}
	spanLatDegrees   = span{35, 37}
	spanLatMinutes   = span{38, 40}
	spanLatSeconds   = span{41, 47} // numeric seconds plus trailing N/S
	spanLonDegrees   = span{48, 51}
	spanLonMinutes   = span{52, 54}
	spanLonSeconds   = span{55, 61} // numeric seconds plus trailing E/W
	spanType         = span{62, 81}
	spanQuantity     = span{81, 82}
	spanHeightAGL    = span{83, 88}
	spanHeightMSL    = span{89, 94}
	spanLighting     = span{95, 96}
	spanAccuracy     = span{97, 98}
	spanMarking      = span{99, 100}
	spanStudyNumber  = span{103, 117}
	spanAction       = span{118, 119}
	spanJulianDate   = span{120, 127}
)

// ParseRecord decodes one record line into an Obstacle. The line number is
// 1-based and only used for diagnostics. Pure function: no I/O, no shared
// state, so concurrent parses of independent lines are safe.
func ParseRecord(line []byte, lineNumber int) (Obstacle, error) {
	if len(line) < MinRecordLength {
		return Obstacle{}, &LineTooShortError{Expected: MinRecordLength, Actual: len(line), Line: lineNumber}
	}

	identifier, err := textField(line, spanIdentifier, "identifier", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	country, err := textField(line, spanCountry, "country", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	state, err := stateField(line, lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	city, err := textField(line, spanCity, "city", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	obstacleType, err := textField(line, spanType, "obstacle type", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	studyNumber, err := textField(line, spanStudyNumber, "study number", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}

	latitude, err := parseAngle(line, spanLatDegrees, spanLatMinutes, spanLatSeconds, "latitude", 'N', 'S', lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	longitude, err := parseAngle(line, spanLonDegrees, spanLonMinutes, spanLonSeconds, "longitude", 'E', 'W', lineNumber)
	if err != nil {
		return Obstacle{}, err
	}

	quantity, ok := scanUint(spanQuantity.of(line))
	if !ok {
		return Obstacle{}, fieldErr("quantity", spanQuantity.of(line), lineNumber)
	}
	heightAGL, ok := scanInt(spanHeightAGL.of(line))
	if !ok {
		return Obstacle{}, fieldErr("agl height", spanHeightAGL.of(line), lineNumber)
	}
	heightMSL, ok := scanInt(spanHeightMSL.of(line))
	if !ok {
		return Obstacle{}, fieldErr("msl height", spanHeightMSL.of(line), lineNumber)
	}

	verification, err := enumField(verificationCodes, line, spanVerification, "verification", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	lighting, err := enumField(lightingCodes, line, spanLighting, "lighting", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	accuracy, err := parseAccuracy(line, lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	marking, err := parseMarking(line, lineNumber)
	if err != nil {
		return Obstacle{}, err
	}
	action, err := enumField(actionCodes, line, spanAction, "action", lineNumber)
	if err != nil {
		return Obstacle{}, err
	}

	lastUpdated, err := parseJulianDate(line, lineNumber)
	if err != nil {
		return Obstacle{}, err
	}

	return Obstacle{
		Identifier:   identifier,
		Verification: verification,
		Country:      country,
		State:        state,
		City:         city,
		Latitude:     latitude,
		Longitude:    longitude,
		Type:         obstacleType,
		Quantity:     uint8(quantity),
		HeightAGL:    heightAGL,
		HeightMSL:    heightMSL,
		Lighting:     lighting,
		Accuracy:     accuracy,
		Marking:      marking,
		StudyNumber:  studyNumber,
		Action:       action,
		LastUpdated:  lastUpdated,
	}, nil
}

// textField decodes a byte range as trimmed UTF-8 text. Interior whitespace
// survives; only the surrounding padding is trimmed.
func textField(line []byte, s span, field string, lineNumber int) (string, error) {
	raw := s.of(line)
	if !utf8.Valid(raw) {
		return "", &EncodingError{Field: field, Line: lineNumber}
	}
	return strings.TrimSpace(string(raw)), nil
}

// stateField decodes the state code, which unlike the other text fields is
// optional: an all-blank field means absent, not empty.
func stateField(line []byte, lineNumber int) (*string, error) {
	state, err := textField(line, spanState, "state", lineNumber)
	if err != nil {
		return nil, err
	}
	if state == "" {
		return nil, nil
	}
	return &state, nil
}

// enumField decodes a single-byte code against a fixed table.
func enumField[T any](codes map[byte]T, line []byte, s span, field string, lineNumber int) (T, error) {
	b := s.of(line)[0]
	v, ok := codes[b]
	if !ok {
		var zero T
		return zero, fieldErr(field, s.of(line), lineNumber)
	}
	return v, nil
}

// parseAccuracy decodes the accuracy category byte. A blank byte means
// category 9 (unknown) and is rewritten before the digit check; that is the
// only normalization, anything outside '1'..'9' stays an error.
func parseAccuracy(line []byte, lineNumber int) (AccuracyCategory, error) {
	b := spanAccuracy.of(line)[0]
	if b == ' ' {
		b = '9'
	}
	if b < '1' || b > '9' {
		return 0, fieldErr("accuracy", spanAccuracy.of(line), lineNumber)
	}
	return AccuracyCategory(b - '0'), nil
}

// parseMarking decodes the marking byte. 'N' and blank both alias to 'A'
// (no marking) before lookup.
func parseMarking(line []byte, lineNumber int) (Marking, error) {
	b := spanMarking.of(line)[0]
	if b == 'N' || b == ' ' {
		b = 'A'
	}
	m, ok := markingCodes[b]
	if !ok {
		return "", fieldErr("marking", spanMarking.of(line), lineNumber)
	}
	return m, nil
}

// parseAngle assembles decimal degrees from the degrees, minutes, and
// seconds fields. The seconds field carries the direction letter as its
// last byte; the letter is excluded from the numeric scan and must be one
// of exactly two characters for the axis. Positive directions are north and
// east.
func parseAngle(line []byte, degrees, minutes, seconds span, axis string, positive, negative byte, lineNumber int) (float64, error) {
	deg, ok := scanDecimal(degrees.of(line))
	if !ok {
		return 0, fieldErr(axis+" degrees", degrees.of(line), lineNumber)
	}
	min, ok := scanDecimal(minutes.of(line))
	if !ok {
		return 0, fieldErr(axis+" minutes", minutes.of(line), lineNumber)
	}

	secField := seconds.of(line)
	direction := secField[len(secField)-1]
	sec, ok := scanDecimal(secField[:len(secField)-1])
	if !ok {
		return 0, fieldErr(axis+" seconds", secField[:len(secField)-1], lineNumber)
	}

	value := deg + min/60 + sec/3600
	switch direction {
	case positive:
		return value, nil
	case negative:
		return -value, nil
	default:
		return 0, &FormatError{Kind: FormatInvalidDirection, Byte: direction, Line: lineNumber}
	}
}

// parseJulianDate splits the YYYYDDD field into its components. The
// components stay unresolved; JulianDate.Date performs the calendar
// resolution on demand.
func parseJulianDate(line []byte, lineNumber int) (JulianDate, error) {
	raw := spanJulianDate.of(line)
	year, ok := scanUint(raw[:4])
	if !ok {
		return JulianDate{}, fieldErr("julian year", raw[:4], lineNumber)
	}
	day, ok := scanUint(raw[4:])
	if !ok {
		return JulianDate{}, fieldErr("julian day", raw[4:], lineNumber)
	}
	return JulianDate{Year: int(year), Day: int(day)}, nil
}

func fieldErr(field string, raw []byte, lineNumber int) error {
	return &FieldParseError{Field: field, Value: string(raw), Line: lineNumber}
}

// scanUint reads an unsigned integer from ASCII digits: leading spaces are
// skipped, the first non-digit ends the scan, and at least one digit is
// required. No intermediate string is allocated.
func scanUint(b []byte) (uint64, bool) {
	i := 0
	for i < len(b) && b[i] == ' ' {
		i++
	}
	start := i
	var v uint64
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		v = v*10 + uint64(b[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	return v, true
}

// scanInt is scanUint with an optional leading minus sign.
func scanInt(b []byte) (int, bool) {
	i := 0
	for i < len(b) && b[i] == ' ' {
		i++
	}
	negative := false
	if i < len(b) && b[i] == '-' {
		negative = true
		i++
	}
	v, ok := scanUint(b[i:])
	if !ok {
		return 0, false
	}
	if negative {
		return -int(v), true
	}
	return int(v), true
}

// scanDecimal reads a decimal number: optional leading minus, ASCII digits
// with at most one decimal point, first invalid byte ends the scan, at
// least one digit required.
func scanDecimal(b []byte) (float64, bool) {
	i := 0
	for i < len(b) && b[i] == ' ' {
		i++
	}
	negative := false
	if i < len(b) && b[i] == '-' {
		negative = true
		i++
	}

	var v float64
	var divisor float64
	digits := 0
scan:
	for i < len(b) {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			if divisor == 0 {
				v = v*10 + float64(c-'0')
			} else {
				v += float64(c-'0') / divisor
				divisor *= 10
			}
			digits++
		case c == '.' && divisor == 0:
			divisor = 10
		default:
			break scan
		}
		i++
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		return -v, true
	}
	return v, true
}
