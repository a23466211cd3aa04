// Package hazard implements the ranging and threat-classification engine:
// noise suppression over raw rangefinder samples, distance-to-hazard
// classification, and aggregation of the three detection zones into a single
// status record.
package hazard

import "fmt"

// Zone identifies one of the three fixed forward-facing detection directions.
// The labels are stable for the lifetime of the system and appear verbatim in
// the API.
type Zone string

const (
	ZoneLeft   Zone = "left"
	ZoneCenter Zone = "center"
	ZoneRight  Zone = "right"
)

// Zones lists the zones in reporting priority order. When two zones tie on
// the minimum distance the earlier zone wins, so Left beats Center beats
// Right.
var Zones = [3]Zone{ZoneLeft, ZoneCenter, ZoneRight}

// ParseZone validates a zone label.
func ParseZone(s string) (Zone, error) {
	switch Zone(s) {
	case ZoneLeft, ZoneCenter, ZoneRight:
		return Zone(s), nil
	}
	return "", fmt.Errorf("unknown zone %q (valid: left, center, right)", s)
}
