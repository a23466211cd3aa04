package hazard

import (
	"encoding/json"
	"fmt"
)

// Level is the ordered hazard classification. Higher values are more
// dangerous: Clear < Safe < Careful < Unsafe.
type Level int

const (
	LevelClear Level = iota
	LevelSafe
	LevelCareful
	LevelUnsafe
)

// String returns the wire label for the level.
func (l Level) String() string {
	switch l {
	case LevelClear:
		return "clear"
	case LevelSafe:
		return "safe"
	case LevelCareful:
		return "careful"
	case LevelUnsafe:
		return "unsafe"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalJSON encodes the level as its wire label.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a wire label back into a Level.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "clear":
		*l = LevelClear
	case "safe":
		*l = LevelSafe
	case "careful":
		*l = LevelCareful
	case "unsafe":
		*l = LevelUnsafe
	default:
		return fmt.Errorf("unknown hazard level %q", s)
	}
	return nil
}

// Thresholds holds the three distance cut-offs (in cm) that map a stable
// distance estimate to a Level. They are configuration, not constants, so a
// deployment can tune for its sensor geometry.
type Thresholds struct {
	UnsafeCM  float64
	CarefulCM float64
	SafeCM    float64
}

// DefaultThresholds returns the stock tuning for the ultrasonic sensors.
func DefaultThresholds() Thresholds {
	return Thresholds{UnsafeCM: 10, CarefulCM: 40, SafeCM: 100}
}

// Validate checks the threshold ordering. The safe threshold must stay below
// the no-object sentinel so a missing reading always classifies as Clear.
func (t Thresholds) Validate() error {
	if t.UnsafeCM <= 0 {
		return fmt.Errorf("unsafe threshold must be positive, got %v", t.UnsafeCM)
	}
	if t.UnsafeCM >= t.CarefulCM {
		return fmt.Errorf("unsafe threshold %v must be below careful threshold %v", t.UnsafeCM, t.CarefulCM)
	}
	if t.CarefulCM >= t.SafeCM {
		return fmt.Errorf("careful threshold %v must be below safe threshold %v", t.CarefulCM, t.SafeCM)
	}
	if t.SafeCM >= NoObjectCM {
		return fmt.Errorf("safe threshold %v must be below the no-object sentinel %v", t.SafeCM, NoObjectCM)
	}
	return nil
}

// Classify maps a distance in cm to a hazard level. Total over all float64
// inputs; the sentinel lands in the Clear band because it is larger than the
// safe threshold.
func (t Thresholds) Classify(distanceCM float64) Level {
	switch {
	case distanceCM < t.UnsafeCM:
		return LevelUnsafe
	case distanceCM < t.CarefulCM:
		return LevelCareful
	case distanceCM <= t.SafeCM:
		return LevelSafe
	default:
		return LevelClear
	}
}
