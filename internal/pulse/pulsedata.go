package pulse

// DefaultMaxPulses is the default capacity of a PulseData buffer. Callers
// may size their own buffers differently; the OOK machine reads the
// capacity off the buffer it's given via Cap.
const DefaultMaxPulses = 4000

// PulseData is an ordered, fixed-capacity sequence of (pulse_width,
// gap_width) pairs plus the side fields the OOK machine and FSK
// sub-detector stamp on package boundaries. The same structure backs both
// the OOK record and the FSK subpulse record.
//
// Invariants: NumPulses <= len(Pulse) == len(Gap); Gap[k] is only valid for
// k < NumPulses; every stored width is strictly positive. Once a non-zero
// code is returned from Detect, both records are read-only until the next
// package begins.
type PulseData struct {
	Pulse []int
	Gap   []int

	NumPulses int

	SampleRate int
	Offset     int64
	StartAgo   int
	EndAgo     int

	FSKF1Est int
	FSKF2Est int

	OOKLowEstimate  int
	OOKHighEstimate int
}

// NewPulseData allocates a PulseData with room for capacity pulses.
func NewPulseData(capacity int) *PulseData {
	if capacity < 1 {
		capacity = 1
	}
	return &PulseData{
		Pulse: make([]int, capacity),
		Gap:   make([]int, capacity),
	}
}

// Cap reports the buffer's fixed capacity.
func (p *PulseData) Cap() int {
	return len(p.Pulse)
}

// Full reports whether the buffer has reached capacity; the OOK machine
// treats this as a normal end-of-package condition, not an error.
func (p *PulseData) Full() bool {
	return p.NumPulses >= p.Cap()
}

// Clear resets the buffer to an empty package, ready to seed a new burst.
// It does not touch Pulse/Gap contents beyond NumPulses, which callers must
// treat as undefined.
func (p *PulseData) Clear() {
	p.NumPulses = 0
	p.Offset = 0
	p.StartAgo = 0
	p.EndAgo = 0
	p.FSKF1Est = 0
	p.FSKF2Est = 0
	p.OOKLowEstimate = 0
	p.OOKHighEstimate = 0
}
