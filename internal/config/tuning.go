package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tracker.defaults.json"

// TuningConfig represents the tracker tuning parameters. The schema
// matches the /api/tracker/params endpoint so the same JSON works for
// startup configuration and runtime updates. Nil fields mean "keep the
// current value".
type TuningConfig struct {
	// Lifecycle params
	MaxAge  *int     `json:"max_age,omitempty"`
	MinHits *int     `json:"min_hits,omitempty"`
	MinIoU  *float64 `json:"min_iou,omitempty"`

	// Filter noise params
	MeasurementNoisePos   *float64 `json:"measurement_noise_pos,omitempty"`
	MeasurementNoiseScale *float64 `json:"measurement_noise_scale,omitempty"`
	InitialCovPos         *float64 `json:"initial_cov_pos,omitempty"`
	InitialCovVel         *float64 `json:"initial_cov_vel,omitempty"`
	ProcessNoisePos       *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel       *float64 `json:"process_noise_vel,omitempty"`
	ProcessNoiseScaleVel  *float64 `json:"process_noise_scale_vel,omitempty"`
}

// LoadTuningConfig reads a tuning JSON file. A missing file is not an
// error: it returns an empty config so defaults apply.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &TuningConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tuning config %s: %w", path, err)
	}

	var tc TuningConfig
	if err := json.Unmarshal(data, &tc); err != nil {
		return nil, fmt.Errorf("parse tuning config %s: %w", path, err)
	}
	return &tc, nil
}

// Merge overlays other onto tc: any field set in other wins.
func (tc *TuningConfig) Merge(other *TuningConfig) {
	if other == nil {
		return
	}
	if other.MaxAge != nil {
		tc.MaxAge = other.MaxAge
	}
	if other.MinHits != nil {
		tc.MinHits = other.MinHits
	}
	if other.MinIoU != nil {
		tc.MinIoU = other.MinIoU
	}
	if other.MeasurementNoisePos != nil {
		tc.MeasurementNoisePos = other.MeasurementNoisePos
	}
	if other.MeasurementNoiseScale != nil {
		tc.MeasurementNoiseScale = other.MeasurementNoiseScale
	}
	if other.InitialCovPos != nil {
		tc.InitialCovPos = other.InitialCovPos
	}
	if other.InitialCovVel != nil {
		tc.InitialCovVel = other.InitialCovVel
	}
	if other.ProcessNoisePos != nil {
		tc.ProcessNoisePos = other.ProcessNoisePos
	}
	if other.ProcessNoiseVel != nil {
		tc.ProcessNoiseVel = other.ProcessNoiseVel
	}
	if other.ProcessNoiseScaleVel != nil {
		tc.ProcessNoiseScaleVel = other.ProcessNoiseScaleVel
	}
}
