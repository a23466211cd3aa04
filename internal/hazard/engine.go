package hazard

import "context"

// ZoneReading is the denoised result for one zone within one publish cycle.
// A fresh reading fully replaces the previous cycle's; no history is kept.
// DistanceCM is canonical: the engine always works in centimetres. The API
// edge may convert to other units for display.
type ZoneReading struct {
	Zone       Zone    `json:"zone"`
	DistanceCM float64 `json:"distance"`
	Level      Level   `json:"level"`
}

// NoObject reports whether the reading carries the no-object sentinel.
func (r ZoneReading) NoObject() bool {
	return r.DistanceCM >= NoObjectCM
}

// ZoneEngine composes sampling, denoising and classification for one
// physical zone. It holds no state of its own and inherits the total,
// error-free behaviour of its parts.
//
// The three engines share acoustic space: a pulse from one sensor can
// trigger a neighbour's echo detector. Callers must therefore never run two
// engines' Read calls concurrently; Publisher drives them strictly one after
// another.
type ZoneEngine struct {
	zone       Zone
	denoiser   *Denoiser
	thresholds Thresholds
}

// NewZoneEngine creates the engine for one zone.
func NewZoneEngine(zone Zone, denoiser *Denoiser, thresholds Thresholds) *ZoneEngine {
	return &ZoneEngine{
		zone:       zone,
		denoiser:   denoiser,
		thresholds: thresholds,
	}
}

// Zone returns the zone this engine samples.
func (e *ZoneEngine) Zone() Zone {
	return e.zone
}

// Read produces the zone's stable distance estimate enriched with its hazard
// level.
func (e *ZoneEngine) Read(ctx context.Context) ZoneReading {
	distance := e.denoiser.Stabilize(ctx, e.zone)
	return ZoneReading{
		Zone:       e.zone,
		DistanceCM: distance,
		Level:      e.thresholds.Classify(distance),
	}
}
