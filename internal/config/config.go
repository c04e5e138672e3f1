// Package config loads an optional on-disk file of detector tunables.
// CLI flags always take precedence over a loaded file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

// Tunables mirrors the fields of pulse.Config that a user might reasonably
// want to override from a file instead of the command line. Zero values
// mean "use the built-in default" when merged by Apply.
type Tunables struct {
	UseMagEst       *bool    `yaml:"use_mag_est"`
	FixedHighDB     *int     `yaml:"fixed_high_db"`
	MinHighDB       *int     `yaml:"min_high_db"`
	HighLowRatioDB  *int     `yaml:"high_low_ratio_db"`
	UsePeakFollower *bool    `yaml:"use_peak_follower"`
	Verbosity       *int     `yaml:"verbosity"`
	PeakAttack      *float64 `yaml:"peak_attack"`
	PeakRelease     *float64 `yaml:"peak_release"`
	PeakMinDB       *int     `yaml:"peak_min_db"`
	DCBlockerLen    *int     `yaml:"dc_blocker_len"`
	MedianWindow    *int     `yaml:"median_window"`
	MinPulseSamples *int     `yaml:"min_pulse_samples"`
	MaxPulses       *int     `yaml:"max_pulses"`
	MinPulses       *int     `yaml:"min_pulses"`
	MinGapMS        *int     `yaml:"min_gap_ms"`
	MaxGapMS        *int     `yaml:"max_gap_ms"`
	MaxGapRatio     *int     `yaml:"max_gap_ratio"`
}

// Load reads and parses a YAML tunables file from path.
func Load(path string) (Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var t Tunables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return t, nil
}

// Apply overlays t's non-nil fields onto base, returning the merged
// pulse.Config. base is typically pulse.DefaultConfig(sampleRate); fields
// left nil in t fall back to whatever base already had, and fields set in
// t replace base's value.
func (t Tunables) Apply(base pulse.Config) pulse.Config {
	if t.UseMagEst != nil {
		base.UseMagEst = *t.UseMagEst
	}
	if t.FixedHighDB != nil {
		base.FixedHighDB = *t.FixedHighDB
	}
	if t.MinHighDB != nil {
		base.MinHighDB = *t.MinHighDB
	}
	if t.HighLowRatioDB != nil {
		base.HighLowRatioDB = *t.HighLowRatioDB
	}
	if t.UsePeakFollower != nil {
		base.UsePeakFollower = *t.UsePeakFollower
	}
	if t.Verbosity != nil {
		base.Verbosity = *t.Verbosity
	}
	if t.PeakAttack != nil {
		base.PeakAttack = *t.PeakAttack
	}
	if t.PeakRelease != nil {
		base.PeakRelease = *t.PeakRelease
	}
	if t.PeakMinDB != nil {
		base.PeakMinDB = *t.PeakMinDB
	}
	if t.DCBlockerLen != nil {
		base.DCBlockerLen = *t.DCBlockerLen
	}
	if t.MedianWindow != nil {
		base.MedianWindow = *t.MedianWindow
	}
	if t.MinPulseSamples != nil {
		base.MinPulseSamples = *t.MinPulseSamples
	}
	if t.MaxPulses != nil {
		base.MaxPulses = *t.MaxPulses
	}
	if t.MinPulses != nil {
		base.MinPulses = *t.MinPulses
	}
	if t.MinGapMS != nil {
		base.MinGapMS = *t.MinGapMS
	}
	if t.MaxGapMS != nil {
		base.MaxGapMS = *t.MaxGapMS
	}
	if t.MaxGapRatio != nil {
		base.MaxGapRatio = *t.MaxGapRatio
	}
	return base
}
