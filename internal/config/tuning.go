// Package config loads the JSON tuning file for the ranging engine:
// classification thresholds, sampling parameters, and the publish cadence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/real-ds/IOT-ADAS/internal/hazard"
)

// DefaultConfigPath is the path to the canonical tuning defaults file, the
// single source of truth for all default tuning values.
const DefaultConfigPath = "config/adas.defaults.json"

// TuningConfig is the root tuning schema. Fields are pointers so a partial
// JSON file overrides only what it names; the Get* accessors supply defaults
// for the rest.
type TuningConfig struct {
	// Classification thresholds (cm)
	UnsafeCM  *float64 `json:"unsafe_cm,omitempty"`
	CarefulCM *float64 `json:"careful_cm,omitempty"`
	SafeCM    *float64 `json:"safe_cm,omitempty"`

	// Sampling params
	SamplesPerReading *int    `json:"samples_per_reading,omitempty"`
	SamplePause       *string `json:"sample_pause,omitempty"` // duration string like "10ms"
	EchoTimeout       *string `json:"echo_timeout,omitempty"` // duration string like "60ms"

	// Publish params
	PublishInterval *string `json:"publish_interval,omitempty"` // duration string like "750ms"
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size; omitted fields keep
// their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are coherent.
func (c *TuningConfig) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}

	samples := c.GetSamplesPerReading()
	if samples < 3 || samples%2 == 0 {
		return fmt.Errorf("samples_per_reading must be odd and >= 3, got %d", samples)
	}

	for field, value := range map[string]*string{
		"sample_pause":     c.SamplePause,
		"echo_timeout":     c.EchoTimeout,
		"publish_interval": c.PublishInterval,
	} {
		if value == nil || *value == "" {
			continue
		}
		d, err := time.ParseDuration(*value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", field, *value, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", field, d)
		}
	}

	if c.GetEchoTimeout() <= 0 {
		return fmt.Errorf("echo_timeout must be positive")
	}

	// The cadence cannot undercut the worst-case cost of one full cycle:
	// three zones, N samples each, a bounded echo wait per sample and a
	// pause between samples.
	if interval, floor := c.GetPublishInterval(), c.MinCycleTime(); interval < floor {
		return fmt.Errorf("publish_interval %s undercuts the minimum cycle time %s", interval, floor)
	}

	return nil
}

// Thresholds assembles the classification thresholds from the config.
func (c *TuningConfig) Thresholds() hazard.Thresholds {
	t := hazard.DefaultThresholds()
	if c.UnsafeCM != nil {
		t.UnsafeCM = *c.UnsafeCM
	}
	if c.CarefulCM != nil {
		t.CarefulCM = *c.CarefulCM
	}
	if c.SafeCM != nil {
		t.SafeCM = *c.SafeCM
	}
	return t
}

// MinCycleTime returns the worst-case duration of one publish cycle under
// the current sampling parameters.
func (c *TuningConfig) MinCycleTime() time.Duration {
	samples := time.Duration(c.GetSamplesPerReading())
	perZone := samples*c.GetEchoTimeout() + (samples-1)*c.GetSamplePause()
	return 3 * perZone
}

// GetSamplesPerReading returns the samples_per_reading value or the default.
func (c *TuningConfig) GetSamplesPerReading() int {
	if c.SamplesPerReading == nil {
		return 3
	}
	return *c.SamplesPerReading
}

// GetSamplePause parses and returns the inter-sample pause.
func (c *TuningConfig) GetSamplePause() time.Duration {
	return c.duration(c.SamplePause, 10*time.Millisecond)
}

// GetEchoTimeout parses and returns the bounded echo wait.
func (c *TuningConfig) GetEchoTimeout() time.Duration {
	return c.duration(c.EchoTimeout, 60*time.Millisecond)
}

// GetPublishInterval parses and returns the publish cadence.
func (c *TuningConfig) GetPublishInterval() time.Duration {
	return c.duration(c.PublishInterval, 750*time.Millisecond)
}

func (c *TuningConfig) duration(value *string, fallback time.Duration) time.Duration {
	if value == nil || *value == "" {
		return fallback
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fallback
	}
	return d
}
