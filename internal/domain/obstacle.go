package domain

import (
	"fmt"
	"time"
)

// VerificationStatus reports whether the FAA has verified an obstacle record.
type VerificationStatus string

const (
	VerificationOperational VerificationStatus = "operational"  // 'O'
	VerificationUnderReview VerificationStatus = "under_review" // 'U'
)

var verificationCodes = map[byte]VerificationStatus{
	'O': VerificationOperational,
	'U': VerificationUnderReview,
}

// Lighting is the obstruction lighting configuration code.
type Lighting string

const (
	LightingRed                Lighting = "red"                  // 'R'
	LightingDualMediumWhite    Lighting = "dual_red_medium"      // 'D'
	LightingDualHighWhite      Lighting = "dual_red_high"        // 'H'
	LightingMediumWhiteStrobe  Lighting = "medium_white_strobe"  // 'M'
	LightingHighWhiteStrobe    Lighting = "high_white_strobe"    // 'S'
	LightingFlood              Lighting = "flood"                // 'F'
	LightingDualMediumCatenary Lighting = "dual_medium_catenary" // 'C'
	LightingSynchronizedRed    Lighting = "synchronized_red"     // 'W'
	LightingLighted            Lighting = "lighted"              // 'L', type unknown
	LightingNone               Lighting = "none"                 // 'N'
	LightingUnknown            Lighting = "unknown"              // 'U'
)

var lightingCodes = map[byte]Lighting{
	'R': LightingRed,
	'D': LightingDualMediumWhite,
	'H': LightingDualHighWhite,
	'M': LightingMediumWhiteStrobe,
	'S': LightingHighWhiteStrobe,
	'F': LightingFlood,
	'C': LightingDualMediumCatenary,
	'W': LightingSynchronizedRed,
	'L': LightingLighted,
	'N': LightingNone,
	'U': LightingUnknown,
}

// AccuracyCategory is the horizontal accuracy category code, 1 through 9.
// Category 9 means accuracy unknown; a blank byte in the source decodes to
// 9 before lookup. Tolerances per category are documented in the package
// doc.
type AccuracyCategory uint8

// AccuracyUnknown is category 9, the decode target for a blank byte.
const AccuracyUnknown AccuracyCategory = 9

func (a AccuracyCategory) String() string {
	return fmt.Sprintf("%d", uint8(a))
}

// Marking is the physical marking configuration code.
type Marking string

const (
	MarkingOrangeWhitePaint Marking = "orange_white_paint" // 'P'
	MarkingWhitePaint       Marking = "white_paint"        // 'W'
	MarkingMarked           Marking = "marked"             // 'M'
	MarkingFlag             Marking = "flag"               // 'F'
	MarkingSpherical        Marking = "spherical"          // 'S'
	MarkingNone             Marking = "none"               // 'A'; 'N' and blank alias here
	MarkingUnknown          Marking = "unknown"            // 'U'
)

var markingCodes = map[byte]Marking{
	'P': MarkingOrangeWhitePaint,
	'W': MarkingWhitePaint,
	'M': MarkingMarked,
	'F': MarkingFlag,
	'S': MarkingSpherical,
	'A': MarkingNone,
	'U': MarkingUnknown,
}

// ActionCode records the change state of an obstacle in the current
// publication.
type ActionCode string

const (
	ActionActive  ActionCode = "active"  // 'A'
	ActionChanged ActionCode = "changed" // 'C'
)

var actionCodes = map[byte]ActionCode{
	'A': ActionActive,
	'C': ActionChanged,
}

// JulianDate is a last-updated date as published: a year and a 1-based
// day-of-year. It stays unresolved at parse time; Date performs the
// resolution and is where an out-of-range day surfaces.
type JulianDate struct {
	Year int `json:"year"`
	Day  int `json:"day"`
}

// Date resolves the components to a UTC calendar date. An invalid
// day-of-year returns an InvalidDayOfYearError, distinct from the parse
// errors: the record decoded fine, the published value itself is bad.
func (j JulianDate) Date() (time.Time, error) {
	if j.Day < 1 || j.Day > daysInYear(j.Year) {
		return time.Time{}, &InvalidDayOfYearError{Year: j.Year, Day: j.Day}
	}
	return time.Date(j.Year, time.January, j.Day, 0, 0, 0, 0, time.UTC), nil
}

// String renders the published YYYYDDD form.
func (j JulianDate) String() string {
	return fmt.Sprintf("%04d%03d", j.Year, j.Day)
}

func daysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Obstacle is one parsed DOF record. Identity is the identifier alone; all
// other fields are descriptive.
type Obstacle struct {
	Identifier   string             `json:"identifier"`
	Verification VerificationStatus `json:"verification"`
	Country      string             `json:"country"`
	State        *string            `json:"state,omitempty"` // nil when blank in the source
	City         string             `json:"city"`
	Latitude     float64            `json:"latitude"`
	Longitude    float64            `json:"longitude"`
	Type         string             `json:"obstacle_type"`
	Quantity     uint8              `json:"quantity"`
	HeightAGL    int                `json:"height_agl_ft"`
	HeightMSL    int                `json:"height_msl_ft"` // may be negative below sea level
	Lighting     Lighting           `json:"lighting"`
	Accuracy     AccuracyCategory   `json:"accuracy"`
	Marking      Marking            `json:"marking"`
	StudyNumber  string             `json:"study_number"`
	Action       ActionCode         `json:"action"`
	LastUpdated  JulianDate         `json:"last_updated"`
}

// Same reports whether two records describe the same obstacle. Two records
// sharing an identifier are the same obstacle regardless of their other
// fields.
func (o Obstacle) Same(other Obstacle) bool {
	return o.Identifier == other.Identifier
}
