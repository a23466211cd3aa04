package units

import (
	"math"
	"testing"
)

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name       string
		distanceCM float64
		units      string
		expected   float64
	}{
		{"100 cm to mm", 100.0, MM, 1000.0},
		{"100 cm to m", 100.0, M, 1.0},
		{"100 cm to in", 100.0, IN, 39.3701},
		{"100 cm to cm", 100.0, CM, 100.0},
		{"unknown units default to cm", 100.0, "unknown", 100.0},
		{"0 cm to in", 0.0, IN, 0.0},
		{"sentinel 999 cm to m", 999.0, M, 9.99},
		{"blanking distance 2 cm to mm", 2.0, MM, 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertDistance(tt.distanceCM, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertDistance(%f, %s) = %f, want %f", tt.distanceCM, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid cm", CM, true},
		{"valid mm", MM, true},
		{"valid m", M, true},
		{"valid in", IN, true},
		{"invalid unit", "furlong", false},
		{"empty string", "", false},
		{"case sensitive", "CM", false},
		{"case sensitive", "In", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	expected := "cm, mm, m, in"
	result := GetValidUnitsString()
	if result != expected {
		t.Errorf("GetValidUnitsString() = %s, want %s", result, expected)
	}
}
