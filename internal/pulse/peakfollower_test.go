package pulse

import (
	"math"
	"testing"
)

func TestPeakFollowerTracksConstantInput(t *testing.T) {
	p := NewPeakFollower(0.5, 0.9, MinDB, KindAmplitude)
	var hi, lo int
	for i := 0; i < 200; i++ {
		hi, lo = p.Process(10000)
	}
	if hi < 9000 {
		t.Fatalf("high peak settled at %d, want close to 10000", hi)
	}
	if lo > 1000 {
		t.Fatalf("low peak = %d, want near 0 for an always-positive input", lo)
	}
}

func TestPeakFollowerSilenceGatesHighToZero(t *testing.T) {
	p := NewPeakFollower(0.3, 0.9, MinDB, KindAmplitude)
	for i := 0; i < 50; i++ {
		p.Process(20000)
	}

	// log(min_val/current_high_peak)/log(release) samples of silence
	// should be enough to decay below the noise floor.
	minVal := float64(dBToLinear(MinDB, KindAmplitude))
	needed := int(math.Log(minVal/p.highPeak)/math.Log(p.release)) + 5

	var hi int
	for i := 0; i < needed; i++ {
		hi, _ = p.Process(0)
	}
	if hi != 0 {
		t.Fatalf("high peak after %d silent samples = %d, want 0", needed, hi)
	}
}

func TestPeakFollowerReset(t *testing.T) {
	p := NewPeakFollower(0.5, 0.9, MinDB, KindAmplitude)
	for i := 0; i < 20; i++ {
		p.Process(15000)
	}
	p.Reset()
	if p.highPeak != 0 || p.lowPeak != 0 {
		t.Fatalf("peaks after reset = (%v,%v), want (0,0)", p.highPeak, p.lowPeak)
	}
}
