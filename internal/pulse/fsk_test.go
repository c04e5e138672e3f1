package pulse

import "testing"

func alternatingFM(n, period, f1, f2 int) []int {
	out := make([]int, n)
	on1 := true
	for i := 0; i < n; i++ {
		if i > 0 && i%period == 0 {
			on1 = !on1
		}
		if on1 {
			out[i] = f1
		} else {
			out[i] = f2
		}
	}
	return out
}

func TestFSKDetectorClassicFindsSubpulses(t *testing.T) {
	pd := NewPulseData(DefaultMaxPulses)
	fsk := newFSKDetector(FSKPulseDetectOld, pd)

	for _, fm := range alternatingFM(4000, 50, 5000, -5000) {
		fsk.process(fm)
	}
	fsk.wrapUp()

	if pd.NumPulses < 3 {
		t.Fatalf("NumPulses = %d, want at least 3", pd.NumPulses)
	}
	f1, f2 := fsk.estimates()
	if f1 < 4000 || f1 > 6000 {
		t.Fatalf("f1 estimate = %d, want near 5000", f1)
	}
	if f2 > -4000 || f2 < -6000 {
		t.Fatalf("f2 estimate = %d, want near -5000", f2)
	}
}

func TestFSKDetectorMinmaxFindsSubpulses(t *testing.T) {
	pd := NewPulseData(DefaultMaxPulses)
	fsk := newFSKDetector(FSKPulseDetectNew, pd)

	for _, fm := range alternatingFM(4000, 50, 5000, -5000) {
		fsk.process(fm)
	}

	if pd.NumPulses < 3 {
		t.Fatalf("NumPulses = %d, want at least 3", pd.NumPulses)
	}
}

func TestFSKDetectorResetClearsState(t *testing.T) {
	pd := NewPulseData(DefaultMaxPulses)
	fsk := newFSKDetector(FSKPulseDetectOld, pd)
	for _, fm := range alternatingFM(500, 50, 5000, -5000) {
		fsk.process(fm)
	}
	fsk.reset()
	if fsk.f1Est != 0 || fsk.f2Est != 0 || fsk.haveSample {
		t.Fatalf("fsk detector not fully cleared by reset")
	}
}
