// Package pulse implements the adaptive pulse-detection pipeline that turns
// a pair of aligned AM envelope and FM discriminator sample streams into
// discrete OOK pulse/gap records, detecting FSK subpulses inside the first
// pulse of a burst.
package pulse

// Sample is a signed 16-bit value with a full-scale reference of FullScale
// used throughout the dB<->linear conversions below.
type Sample = int16

// FullScale is the reference amplitude that maps to 3 dB below clipping in
// the level tables (see level.go).
const FullScale = 16384

// StreamKind selects the dB<->linear mapping used for a sample stream.
// Amplitude streams use a 10x exponent divisor, magnitude streams 20x.
type StreamKind int

const (
	// KindAmplitude is a linear-voltage style stream (÷10 in the exponent).
	KindAmplitude StreamKind = iota
	// KindMagnitude is a power/magnitude style stream (÷20 in the exponent).
	KindMagnitude
)
