package track

import "github.com/platewatch/platewatch/internal/config"

// ConfigFromTuning applies a tuning file over the default tracker
// configuration. Nil tuning fields keep the defaults.
func ConfigFromTuning(tc *config.TuningConfig) Config {
	cfg := DefaultConfig()
	applyTuning(&cfg, tc)
	return cfg
}

// ApplyTuning merges a runtime tuning update into the tracker's
// configuration. Filter noise changes only affect tracks created
// afterwards.
func (t *Tracker) ApplyTuning(tc *config.TuningConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	applyTuning(&t.cfg, tc)
}

func applyTuning(cfg *Config, tc *config.TuningConfig) {
	if tc == nil {
		return
	}
	if tc.MaxAge != nil {
		cfg.MaxAge = *tc.MaxAge
	}
	if tc.MinHits != nil {
		cfg.MinHits = *tc.MinHits
	}
	if tc.MinIoU != nil {
		cfg.MinIoU = *tc.MinIoU
	}
	if tc.MeasurementNoisePos != nil {
		cfg.Kalman.MeasurementNoisePos = *tc.MeasurementNoisePos
	}
	if tc.MeasurementNoiseScale != nil {
		cfg.Kalman.MeasurementNoiseScale = *tc.MeasurementNoiseScale
	}
	if tc.InitialCovPos != nil {
		cfg.Kalman.InitialCovPos = *tc.InitialCovPos
	}
	if tc.InitialCovVel != nil {
		cfg.Kalman.InitialCovVel = *tc.InitialCovVel
	}
	if tc.ProcessNoisePos != nil {
		cfg.Kalman.ProcessNoisePos = *tc.ProcessNoisePos
	}
	if tc.ProcessNoiseVel != nil {
		cfg.Kalman.ProcessNoiseVel = *tc.ProcessNoiseVel
	}
	if tc.ProcessNoiseScaleVel != nil {
		cfg.Kalman.ProcessNoiseScaleVel = *tc.ProcessNoiseScaleVel
	}
}
