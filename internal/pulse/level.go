package pulse

import "math"

// attLevels is the highest (weakest) attenuation bucket returned by AmpToAtt
// and MagToAtt, so there are attLevels+1 buckets in all: levels 0-2 sit
// above the full-scale reference (clipping), level
// 3 sits at full scale, and levels climb toward 36 as the signal approaches
// the noise floor.
const attLevels = 36

// AmpToAtt converts a linear amplitude-domain sample into an integer
// attenuation bucket in [0, attLevels], suitable for histogram bucketing.
// Amplitude streams use a 10x exponent divisor.
func AmpToAtt(x int) int {
	return toAtt(x, 10)
}

// MagToAtt converts a linear magnitude/power-domain sample into an integer
// attenuation bucket in [0, attLevels]. Magnitude streams use a 20x exponent
// divisor.
func MagToAtt(x int) int {
	return toAtt(x, 20)
}

// toAtt walks the attenuation ladder from the strongest bucket (level 0,
// 3 dB above full scale) down to the weakest (level attLevels, near the
// noise floor), returning the first bucket whose ceiling threshold the
// sample still clears.
func toAtt(x int, divisor float64) int {
	if x < 0 {
		x = -x
	}
	for k := 0; k <= attLevels; k++ {
		threshold := attThreshold(k, divisor)
		if x >= threshold {
			return k
		}
	}
	return attLevels
}

// attThreshold returns the ceiling of the linear threshold for attenuation
// level k: FullScale * 10^((3-k)/divisor), so level 3 lands exactly on
// FullScale and level 0 sits 3 dB above it.
func attThreshold(k int, divisor float64) int {
	return int(math.Ceil(float64(FullScale) * math.Pow(10, (3-float64(k))/divisor)))
}

// dBToLinear converts a dB value (relative to FullScale) into a linear
// sample value, using the stream kind's exponent divisor (10 for amplitude,
// 20 for magnitude). Used to turn configured dB levels (fixed/min high
// level, high/low ratio) into the integer thresholds the OOK machine
// compares samples against.
func dBToLinear(db int, kind StreamKind) int {
	divisor := 10.0
	if kind == KindMagnitude {
		divisor = 20.0
	}
	return int(float64(FullScale) * math.Pow(10, float64(db)/divisor))
}

// Histogram accumulates attenuation-bucket counts over the AM envelope
// stream, for display on a live monitor.
type Histogram struct {
	kind    StreamKind
	buckets [attLevels + 1]int
	total   int
}

// NewHistogram creates an empty histogram over the given stream kind's
// dB<->linear mapping.
func NewHistogram(kind StreamKind) *Histogram {
	return &Histogram{kind: kind}
}

// Add buckets one sample.
func (h *Histogram) Add(sample int) {
	var bucket int
	if h.kind == KindMagnitude {
		bucket = MagToAtt(sample)
	} else {
		bucket = AmpToAtt(sample)
	}
	h.buckets[bucket]++
	h.total++
}

// Buckets returns a copy of the current per-level counts, indexed by
// attenuation level (0 = strongest, attLevels = weakest).
func (h *Histogram) Buckets() []int {
	out := make([]int, len(h.buckets))
	copy(out, h.buckets[:])
	return out
}

// Total reports how many samples have been added.
func (h *Histogram) Total() int {
	return h.total
}

// Reset clears all bucket counts.
func (h *Histogram) Reset() {
	for i := range h.buckets {
		h.buckets[i] = 0
	}
	h.total = 0
}
