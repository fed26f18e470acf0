// Package domain models FAA Digital Obstacle File (DOF) data.
//
// # Data Source
//
// Obstacle records originate from the FAA's Digital Obstacle File, a
// fixed-width text file published at https://aeronav.faa.gov/Obst_Data/ on
// a 56-day cycle. Each data line describes one aviation obstacle (tower,
// stack, building, wind turbine, ...) verified or collected by the FAA's
// obstacle evaluation program.
//
// # File Layout
//
// The file is line-oriented and positional:
//
//	line 1     currency header: "CURRENCY DATE = MM/DD/YY" after variable
//	           leading whitespace; locates the publication cycle
//	lines 2-4  column headers, always skipped
//	later      one obstacle record per line, or blank/'-'-ruled separators
//
// Record fields live at fixed byte offsets (see ParseRecord); a record line
// is at least 127 bytes. Fields are sliced by position, never split on
// whitespace: city and obstacle-type fields contain significant interior
// spaces, padded with blanks to their column width.
//
// # Coordinates
//
// Latitude and longitude are published as degrees, minutes, and decimal
// seconds with a trailing direction letter (N/S, E/W):
//
//	"30 10 45.00N 088 04 39.00W"  →  30.179167, -88.0775
//
// Decoded to signed decimal degrees, north and east positive.
//
// # Codes
//
// Single-byte code tables, decoded to closed enums:
//
//	Verification:  O operational | U under review
//	Lighting:      R red | D dual red/medium white | H dual red/high white |
//	               M medium white strobe | S high white strobe | F flood |
//	               C dual medium catenary | W synchronized red |
//	               L lighted (type unknown) | N none | U unknown
//	Accuracy:      horizontal category 1-9; tolerances 1=±20ft 2=±50ft
//	               3=±100ft 4=±250ft 5=±500ft 6=±1000ft 7=±½NM 8=±1NM,
//	               9=unknown; a blank byte decodes as 9
//	Marking:       P orange/white paint | W white paint | M marked | F flag |
//	               S spherical | A none | U unknown; 'N' and blank alias to A
//	Action:        A active | C changed
//
// # Dates
//
// The last-updated field is a Julian date, YYYYDDD: a year and a 1-based
// day-of-year. Records keep the raw components ([JulianDate]); resolving to
// a calendar date can fail for an out-of-range day and is deferred to the
// consumer.
//
// # Publication Cycles
//
// DOF publications follow the FAA's 56-day charting cycle. [Cycle] models
// one publication's effective start date; [CycleContaining] maps an
// arbitrary date to its covering cycle by flooring the signed day offset
// from the datum (2025-09-01) to a whole number of periods. The data in a
// publication is current through the day before its effective start
// ([Cycle.CutoffDate]), which is also the date stamped into the published
// archive's filename.
package domain
