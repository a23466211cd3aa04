// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	CM = "cm"
	MM = "mm"
	M  = "m"
	IN = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{CM, MM, M, IN}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "cm, mm, m, in"
}

// ConvertDistance converts a distance from centimetres to the target units.
// The engine works in cm (the threshold scale of the ultrasonic sensors).
func ConvertDistance(distanceCM float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return distanceCM
	case MM:
		return distanceCM * 10
	case M:
		return distanceCM / 100
	case IN:
		return distanceCM * 0.393700787401575
	default:
		return distanceCM
	}
}
