package pulse

import "math"

// Design constants for the OOK detector. MinDB is the default for
// Config.MinHighDB and Config.PeakMinDB; the others are fixed and are not
// fields of Config.
const (
	OOKMaxHighLevel  = 0   // dB
	OOKMaxLowLevel   = -15 // dB
	OOKEstHighRatio  = 64
	OOKEstLowRatio   = 1024
	MinDB            = -20
)

// ookPhase is the OOK state machine's tagged variant. External callers
// never observe it directly, only the package codes Detect returns.
type ookPhase int

const (
	phaseIdle ookPhase = iota
	phasePulse
	phaseGapStart
	phaseGap
)

func (p ookPhase) String() string {
	switch p {
	case phaseIdle:
		return "IDLE"
	case phasePulse:
		return "PULSE"
	case phaseGapStart:
		return "GAP_START"
	case phaseGap:
		return "GAP"
	default:
		return "UNKNOWN"
	}
}

// Package codes returned by Detect.
const (
	CodeNeedMoreData = 0
	CodePulseDataOOK = 1
	CodePulseDataFSK = 2
)

// Config holds the OOK machine's construction-time configuration (component
// E) plus the protocol-library tunables that bound pulse/gap/package sizes.
type Config struct {
	SampleRate int

	// UseMagEst selects the magnitude dB<->linear mapping for level
	// estimates instead of the amplitude mapping.
	UseMagEst bool

	// FixedHighDB, when negative, activates a manual threshold override;
	// zero or positive disables it and the adaptive estimate is used.
	FixedHighDB    int
	MinHighDB      int
	HighLowRatioDB int

	// UsePeakFollower selects the default peak-follower threshold mode
	// over the classical fixed/adaptive-midpoint mode.
	UsePeakFollower bool
	Verbosity       int

	PeakAttack  float64
	PeakRelease float64
	PeakMinDB   int

	DCBlockerLen int
	MedianWindow int

	MinPulseSamples int
	MaxPulses       int
	MinPulses       int
	MinGapMS        int
	MaxGapMS        int
	MaxGapRatio     int
}

// DefaultConfig returns sensible tunables for a detector running at
// sampleRate, matching the defaults a downstream protocol library supplies.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:      sampleRate,
		UseMagEst:       false,
		FixedHighDB:     0,
		MinHighDB:       MinDB,
		HighLowRatioDB:  12,
		UsePeakFollower: true,
		PeakAttack:      0.1,
		PeakRelease:     0.95,
		PeakMinDB:       MinDB,
		DCBlockerLen:    16,
		MedianWindow:    DefaultMedianWindow,
		MinPulseSamples: 10,
		MaxPulses:       DefaultMaxPulses,
		MinPulses:       3,
		MinGapMS:        10,
		MaxGapMS:        50,
		MaxGapRatio:     10,
	}
}

func (c Config) kind() StreamKind {
	if c.UseMagEst {
		return KindMagnitude
	}
	return KindAmplitude
}

func (c Config) samplesPerMS() int {
	return c.SampleRate / 1000
}

// Detector is the OOK state machine: it consumes conditioned
// AM+FM samples, drives the adaptive threshold, calls into the FSK
// sub-detector during the first pulse of a burst, and emits pulse/gap
// records and package codes. It owns its filters, followers and sinks; it
// borrows the caller's pulse record buffers for the duration of a call.
//
// A Detector is not reentrant and is meant to live for the duration of one
// signal channel's stream; multiple detectors may run concurrently on
// disjoint streams.
type Detector struct {
	cfg Config

	medianAM *MedianFilter
	peakAM   *PeakFollower
	peakFM   *PeakFollower
	dcFM     *DCBlocker

	sinks *DebugSinks

	phase         ookPhase
	pulseLength   int
	maxPulse      int
	leadInCounter int
	lowEst        int
	highEst       int
	eopOnSpurious bool
	dataCounter   int

	fsk *fskDetector

	minHighLevel int
	maxHighLevel int
	maxLowLevel  int
	fixedHigh    int
	fixedActive  bool
	highLowRatio float64
}

// NewDetector builds a Detector from cfg. Invalid window sizes, attack/release
// rates outside (0,1), or a negative sample rate are clamped or corrected
// rather than rejected — construction never fails.
func NewDetector(cfg Config, sinks *DebugSinks) *Detector {
	if cfg.SampleRate < 0 {
		cfg.SampleRate = -cfg.SampleRate
	}
	if cfg.MedianWindow < 1 {
		cfg.MedianWindow = DefaultMedianWindow
	}
	if cfg.DCBlockerLen < 1 {
		cfg.DCBlockerLen = 16
	}
	if cfg.MaxPulses < 1 {
		cfg.MaxPulses = DefaultMaxPulses
	}

	kind := cfg.kind()
	d := &Detector{
		cfg:      cfg,
		medianAM: NewMedianFilter(cfg.MedianWindow),
		peakAM:   NewPeakFollower(cfg.PeakAttack, cfg.PeakRelease, cfg.PeakMinDB, kind),
		peakFM:   NewPeakFollower(cfg.PeakAttack, cfg.PeakRelease, cfg.PeakMinDB, kind),
		dcFM:     NewDCBlocker(cfg.DCBlockerLen),
		sinks:    sinks,
		phase:    phaseIdle,
	}

	d.minHighLevel = dBToLinear(cfg.MinHighDB, kind)
	d.maxHighLevel = dBToLinear(OOKMaxHighLevel, kind)
	d.maxLowLevel = dBToLinear(OOKMaxLowLevel, kind)
	d.highLowRatio = dbRatio(cfg.HighLowRatioDB, kind)
	d.fixedActive = cfg.FixedHighDB < 0
	if d.fixedActive {
		d.fixedHigh = dBToLinear(cfg.FixedHighDB, kind)
	}
	d.lowEst = d.minHighLevel
	d.highEst = d.minHighLevel
	return d
}

// dbRatio converts a dB value into a unitless linear multiplier (no
// FullScale factor), used for the high/low ratio which scales an existing
// linear estimate rather than a raw sample.
func dbRatio(db int, kind StreamKind) float64 {
	divisor := 10.0
	if kind == KindMagnitude {
		divisor = 20.0
	}
	return math.Pow(10, float64(db)/divisor)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Detect is the core entry point. It consumes envelope/fm samples
// starting at the detector's preserved data_counter, driving the state
// machine one sample at a time, and returns as soon as a package boundary
// is reached or the buffer is exhausted. On a non-zero return the caller
// must consume the pulse records before calling again; Detect resumes at
// the preserved data_counter on the next call.
func (d *Detector) Detect(envelope, fm []Sample, sampleOffset int64, pulses, fskPulses *PulseData, fpdm FSKMode) int {
	n := len(envelope)
	if d.fsk == nil || d.fsk.mode != fpdm || d.fsk.pulses != fskPulses {
		d.fsk = newFSKDetector(fpdm, fskPulses)
	}

	if d.dataCounter == 0 {
		pulses.StartAgo += n
		fskPulses.StartAgo += n
	}

	for d.dataCounter < n {
		i := d.dataCounter
		d.dataCounter++
		code := d.step(i, n, envelope[i], fm[i], sampleOffset, pulses, fskPulses)
		if code != CodeNeedMoreData {
			return code
		}
	}
	d.dataCounter = 0
	return CodeNeedMoreData
}

func (d *Detector) step(i, n int, amRaw, fmRaw Sample, sampleOffset int64, pulses, fskPulses *PulseData) int {
	smoothedAM := d.medianAM.Process(int(amRaw))
	hiAM, loAM := d.peakAM.Process(smoothedAM)

	fmCond := d.dcFM.Filter(int(fmRaw))
	hiFM, loFM := d.peakFM.Process(fmCond)

	d.sinks.smoothedAM(smoothedAM)
	d.sinks.rawFM(int(fmRaw))

	var thrHi, thrLo, working int
	if d.cfg.UsePeakFollower {
		amp := (hiAM - loAM) / 2
		center := loAM + amp
		thrHi = center + amp/4
		thrLo = center - amp/4
		working = smoothedAM
		if hiAM == 0 {
			working = 0
		}
	} else {
		thr := (d.lowEst + d.highEst) / 2
		if d.fixedActive {
			thr = d.fixedHigh
		}
		thrHi = thr + thr/8
		thrLo = thr - thr/8
		working = smoothedAM
	}

	ampFM := (hiFM - loFM) / 2
	centerFM := loFM + ampFM
	thrHiFM := centerFM + ampFM/4
	thrLoFM := centerFM - ampFM/4
	d.sinks.fmThresholdHigh(thrHiFM)
	d.sinks.fmThresholdLow(thrLoFM)

	decodedAM := 0
	if d.phase == phasePulse || d.phase == phaseGapStart {
		decodedAM = 1
	}
	d.sinks.decodedAM(decodedAM)
	decodedFM := 0
	if fmCond >= thrLoFM {
		decodedFM = 1
	}
	d.sinks.decodedFM(decodedFM)

	switch d.phase {
	case phaseIdle:
		return d.stepIdle(i, n, working, fmCond, thrHi, sampleOffset, pulses, fskPulses)
	case phasePulse:
		return d.stepPulse(working, fmCond, thrLo, pulses, fskPulses)
	case phaseGapStart:
		return d.stepGapStart(working, fmCond, thrHi, pulses, fskPulses)
	case phaseGap:
		return d.stepGap(working, thrHi, pulses, fskPulses)
	default:
		d.phase = phaseIdle
		return CodeNeedMoreData
	}
}

func (d *Detector) stepIdle(i, n int, working, fmCond, thrHi int, sampleOffset int64, pulses, fskPulses *PulseData) int {
	if working <= thrHi || d.leadInCounter <= OOKEstLowRatio {
		lowDelta := working - d.lowEst
		d.lowEst += lowDelta/OOKEstLowRatio + sign(lowDelta)
		d.highEst = clampInt(int(float64(d.lowEst)*d.highLowRatio), d.minHighLevel, d.maxHighLevel)
		if d.leadInCounter < math.MaxInt32 {
			d.leadInCounter++
		}
	}

	if working > thrHi && d.leadInCounter > OOKEstLowRatio {
		pulses.Clear()
		fskPulses.Clear()
		pulses.SampleRate = d.cfg.SampleRate
		fskPulses.SampleRate = d.cfg.SampleRate
		pulses.Offset = sampleOffset + int64(i)
		fskPulses.Offset = sampleOffset + int64(i)
		pulses.StartAgo = n - i - 1
		fskPulses.StartAgo = n - i - 1

		d.pulseLength = 0
		d.maxPulse = 0
		d.eopOnSpurious = false
		d.fsk.reset()
		d.phase = phasePulse
	}
	return CodeNeedMoreData
}

func (d *Detector) stepPulse(working, fmCond, thrLo int, pulses, fskPulses *PulseData) int {
	d.pulseLength++

	if working < thrLo {
		if d.pulseLength < d.cfg.MinPulseSamples {
			if pulses.NumPulses == 0 {
				d.phase = phaseIdle
				return CodeNeedMoreData
			}
			d.eopOnSpurious = true
			d.phase = phaseGap
			return CodeNeedMoreData
		}
		if !pulses.Full() {
			pulses.Pulse[pulses.NumPulses] = d.pulseLength
		}
		if d.pulseLength > d.maxPulse {
			d.maxPulse = d.pulseLength
		}
		d.pulseLength = 0
		d.phase = phaseGapStart
		return CodeNeedMoreData
	}

	d.highEst += (working - d.highEst) / OOKEstHighRatio
	d.highEst = clampInt(d.highEst, d.minHighLevel, d.maxHighLevel)
	pulses.FSKF1Est += (fmCond - pulses.FSKF1Est) / OOKEstHighRatio

	if pulses.NumPulses == 0 {
		d.fsk.process(fmCond)
	}
	return CodeNeedMoreData
}

func (d *Detector) stepGapStart(working, fmCond, thrHi int, pulses, fskPulses *PulseData) int {
	d.pulseLength++

	if working > thrHi {
		d.pulseLength += pulses.Pulse[pulses.NumPulses]
		d.phase = phasePulse
		return CodeNeedMoreData
	}

	if pulses.NumPulses == 0 {
		d.fsk.process(fmCond)
	}

	if d.pulseLength >= d.cfg.MinPulseSamples {
		if fskPulses.NumPulses > d.cfg.MinPulses {
			return d.finalizeFSK(pulses, fskPulses)
		}
		d.phase = phaseGap
	}
	return CodeNeedMoreData
}

func (d *Detector) stepGap(working, thrHi int, pulses, fskPulses *PulseData) int {
	d.pulseLength++

	if working > thrHi {
		if !pulses.Full() {
			pulses.Gap[pulses.NumPulses] = d.pulseLength
		}
		pulses.NumPulses++
		if pulses.Full() {
			return d.finalizeOOK(pulses)
		}
		d.pulseLength = 0
		d.phase = phasePulse
		return CodeNeedMoreData
	}

	spb := d.cfg.samplesPerMS()
	overGap := d.eopOnSpurious ||
		(d.pulseLength > d.cfg.MaxGapRatio*d.maxPulse && d.pulseLength > d.cfg.MinGapMS*spb) ||
		d.pulseLength > d.cfg.MaxGapMS*spb
	if overGap {
		if !pulses.Full() {
			pulses.Gap[pulses.NumPulses] = d.pulseLength
		}
		pulses.NumPulses++
		return d.finalizeOOK(pulses)
	}
	return CodeNeedMoreData
}

func (d *Detector) finalizeOOK(pulses *PulseData) int {
	pulses.OOKLowEstimate = d.lowEst
	pulses.OOKHighEstimate = d.highEst
	pulses.EndAgo = 0
	d.phase = phaseIdle
	return CodePulseDataOOK
}

func (d *Detector) finalizeFSK(pulses, fskPulses *PulseData) int {
	d.fsk.wrapUp()
	f1, f2 := d.fsk.estimates()
	fskPulses.FSKF1Est = f1
	fskPulses.FSKF2Est = f2
	fskPulses.OOKLowEstimate = d.lowEst
	fskPulses.OOKHighEstimate = d.highEst
	pulses.EndAgo = 0
	fskPulses.EndAgo = 0
	d.phase = phaseIdle
	return CodePulseDataFSK
}

// Reset puts the detector back to its initial IDLE state, discarding any
// in-progress package. Filters and followers are not rewound; callers that
// need a fully cold start should construct a new Detector.
func (d *Detector) Reset() {
	d.phase = phaseIdle
	d.pulseLength = 0
	d.maxPulse = 0
	d.leadInCounter = 0
	d.eopOnSpurious = false
	d.dataCounter = 0
}
