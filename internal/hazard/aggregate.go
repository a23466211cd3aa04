package hazard

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// StatusRecord is one publish cycle's full result: the three zone readings,
// the derived overall level, and the most threatening zone. It is immutable
// once constructed and is always replaced wholesale, never patched
// field-by-field, so a concurrent reader can never observe a half-updated
// cycle.
type StatusRecord struct {
	CycleID    string    `json:"cycle_id"`
	CapturedAt time.Time `json:"captured_at"`

	// Zones is always in Left, Center, Right order.
	Zones [3]ZoneReading `json:"zones"`

	OverallLevel Level `json:"overall_level"`
	ThreatZone   Zone  `json:"threat_zone"`
}

// Aggregate combines the three zone readings (in Left, Center, Right order)
// into a StatusRecord. The overall level is the classification of the
// minimum distance across the zones, which by monotonicity equals the
// maximum per-zone level. On a distance tie the earlier zone is reported as
// the threat, giving the fixed Left > Center > Right priority.
func Aggregate(readings [3]ZoneReading, thresholds Thresholds) StatusRecord {
	distances := []float64{
		readings[0].DistanceCM,
		readings[1].DistanceCM,
		readings[2].DistanceCM,
	}
	// MinIdx keeps the first index on ties, which is exactly the zone
	// priority order of the readings array.
	nearest := floats.MinIdx(distances)

	return StatusRecord{
		Zones:        readings,
		OverallLevel: thresholds.Classify(distances[nearest]),
		ThreatZone:   readings[nearest].Zone,
	}
}
