package domain

import (
	"fmt"
	"time"
)

// The FAA publishes the DOF on a fixed 56-day cycle. Every cycle boundary
// is reachable from the datum by a whole number of periods, in both
// directions.
const cycleDays = 56

var cycleDatum = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

// Cycle identifies a publication by its effective start date. Construction
// does not require the date to be a cycle boundary: any (year, month, day)
// is a Cycle, and IsBoundary answers whether it actually starts a
// publication period. Ordering is lexicographic on (year, month, day).
type Cycle struct {
	Year  int
	Month time.Month
	Day   int
}

// CycleContaining returns the cycle whose effective start is the latest
// boundary on or before t. The day offset from the datum is floored to a
// whole number of periods: floor, not truncation, because Go's integer
// division truncates toward zero and a date one day before the datum must
// land in the previous cycle, not the datum cycle.
func CycleContaining(t time.Time) Cycle {
	d := daysFromDatum(t)
	periods := d / cycleDays
	if d%cycleDays != 0 && d < 0 {
		periods--
	}
	start := cycleDatum.AddDate(0, 0, periods*cycleDays)
	return Cycle{Year: start.Year(), Month: start.Month(), Day: start.Day()}
}

// CurrentCycle returns the cycle covering the present moment, per the
// package clock.
func CurrentCycle() Cycle {
	return CycleContaining(clock.Now().UTC())
}

// ParseCycleID parses an 8-digit YYYYMMDD identifier. Validation is exactly
// eight ASCII digits, month in 1..12, day in 1..31: the day is not checked
// against the month's actual length, matching the published identifiers'
// own leniency.
func ParseCycleID(id string) (Cycle, error) {
	if len(id) != 8 {
		return Cycle{}, fmt.Errorf("cycle id %q: expected 8 digits, got %d bytes", id, len(id))
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return Cycle{}, fmt.Errorf("cycle id %q: non-digit at position %d", id, i)
		}
	}
	year := atoi(id[0:4])
	month := atoi(id[4:6])
	day := atoi(id[6:8])
	if month < 1 || month > 12 {
		return Cycle{}, fmt.Errorf("cycle id %q: month %d out of range", id, month)
	}
	if day < 1 || day > 31 {
		return Cycle{}, fmt.Errorf("cycle id %q: day %d out of range", id, day)
	}
	return Cycle{Year: year, Month: time.Month(month), Day: day}, nil
}

// atoi converts a digit-only substring; callers have already validated the
// bytes.
func atoi(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return v
}

// ID renders the canonical zero-padded YYYYMMDD identifier. ID and
// ParseCycleID round-trip losslessly.
func (c Cycle) ID() string {
	return fmt.Sprintf("%04d%02d%02d", c.Year, int(c.Month), c.Day)
}

func (c Cycle) String() string {
	return c.ID()
}

// Time returns the effective start as a UTC midnight instant.
func (c Cycle) Time() time.Time {
	return time.Date(c.Year, c.Month, c.Day, 0, 0, 0, 0, time.UTC)
}

// IsBoundary reports whether the cycle's date is an exact whole number of
// periods from the datum, in either direction.
func (c Cycle) IsBoundary() bool {
	return daysFromDatum(c.Time())%cycleDays == 0
}

// Next returns the following cycle, 56 days later by calendar arithmetic.
// ok is false when the shifted date falls outside the years an 8-digit
// identifier can express.
func (c Cycle) Next() (Cycle, bool) {
	return c.shift(cycleDays)
}

// Previous returns the preceding cycle, 56 days earlier.
func (c Cycle) Previous() (Cycle, bool) {
	return c.shift(-cycleDays)
}

func (c Cycle) shift(days int) (Cycle, bool) {
	t := c.Time().AddDate(0, 0, days)
	if t.Year() < 1 || t.Year() > 9999 {
		return Cycle{}, false
	}
	return Cycle{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

// CutoffDate returns the last day of data coverage: always exactly one
// calendar day before the effective start. Computed through calendar
// arithmetic so month and year boundaries roll back correctly; never an
// integer day-minus-one.
func (c Cycle) CutoffDate() time.Time {
	return c.Time().AddDate(0, 0, -1)
}

// Compare orders cycles lexicographically on (year, month, day). The result
// is negative, zero, or positive in the manner of strings.Compare.
func (c Cycle) Compare(other Cycle) int {
	switch {
	case c.Year != other.Year:
		return sign(c.Year - other.Year)
	case c.Month != other.Month:
		return sign(int(c.Month) - int(other.Month))
	default:
		return sign(c.Day - other.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// MarshalJSON encodes the cycle as its identifier string.
func (c Cycle) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.ID() + `"`), nil
}

// UnmarshalJSON decodes a quoted identifier string.
func (c *Cycle) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("cycle: expected quoted identifier, got %s", data)
	}
	parsed, err := ParseCycleID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// daysFromDatum is the signed whole-day offset from the datum to t's
// calendar date. Computed from Unix seconds of the two UTC midnights: exact
// in Go's leap-second-free calendar, and safe across the full year range an
// identifier can express, where time.Duration subtraction would overflow.
func daysFromDatum(t time.Time) int {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int((midnight.Unix() - cycleDatum.Unix()) / 86400)
}
