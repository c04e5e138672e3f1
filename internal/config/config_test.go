package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

func TestApplyOverlaysOnlySetFields(t *testing.T) {
	base := pulse.DefaultConfig(250000)
	minHigh := -30
	t1 := Tunables{MinHighDB: &minHigh}

	merged := t1.Apply(base)
	if merged.MinHighDB != -30 {
		t.Fatalf("MinHighDB = %d, want -30", merged.MinHighDB)
	}
	if merged.HighLowRatioDB != base.HighLowRatioDB {
		t.Fatalf("HighLowRatioDB changed unexpectedly: %d != %d", merged.HighLowRatioDB, base.HighLowRatioDB)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunables.yaml")
	content := "min_high_db: -25\nmax_pulses: 500\nuse_peak_follower: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tun, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tun.MinHighDB == nil || *tun.MinHighDB != -25 {
		t.Fatalf("MinHighDB = %v, want -25", tun.MinHighDB)
	}
	if tun.MaxPulses == nil || *tun.MaxPulses != 500 {
		t.Fatalf("MaxPulses = %v, want 500", tun.MaxPulses)
	}
	if tun.UsePeakFollower == nil || *tun.UsePeakFollower != false {
		t.Fatalf("UsePeakFollower = %v, want false", tun.UsePeakFollower)
	}

	merged := tun.Apply(pulse.DefaultConfig(250000))
	if merged.MinHighDB != -25 || merged.MaxPulses != 500 || merged.UsePeakFollower {
		t.Fatalf("merged config = %+v", merged)
	}
}
