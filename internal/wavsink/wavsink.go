// Package wavsink implements the debug sink file format: a 16-bit mono
// PCM WAV file whose header is written once, with placeholder chunk
// sizes, and patched to their final values on close. go-audio/wav's
// Encoder already implements exactly this placeholder-then-patch sequence
// (it tracks the frame count as Write is called and rewrites the RIFF/data
// chunk sizes in Close), so this package is a thin pulse.Sink adapter over
// it rather than a hand-rolled RIFF writer.
package wavsink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

// flushThreshold bounds how many samples accumulate in memory before being
// handed to the encoder, trading a small amount of latency for far fewer
// encoder calls on a hot per-sample debug stream.
const flushThreshold = 4096

// Sink writes one pulse.Sink-compatible debug stream to a 16-bit mono WAV
// file. The zero value is not usable; construct with New.
type Sink struct {
	file *os.File
	enc  *wav.Encoder
	buf  []int
	fmt  *audio.Format
}

// New creates (or truncates) path and opens it as a mono 16-bit PCM WAV
// debug sink at sampleRate. If the file cannot be opened, New returns a
// non-nil error and the caller should treat the sink as disabled rather
// than fail the detector run.
func New(path string, sampleRate int) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open debug sink %s: %w", path, err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	return &Sink{
		file: f,
		enc:  enc,
		fmt:  &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		buf:  make([]int, 0, flushThreshold),
	}, nil
}

// Write implements pulse.Sink: it appends sample to the in-memory buffer
// and flushes to the encoder once flushThreshold samples have accumulated.
func (s *Sink) Write(sample int) {
	s.buf = append(s.buf, sample)
	if len(s.buf) >= flushThreshold {
		s.flush()
	}
}

func (s *Sink) flush() {
	if len(s.buf) == 0 {
		return
	}
	s.enc.Write(&audio.IntBuffer{Format: s.fmt, Data: s.buf})
	s.buf = s.buf[:0]
}

// Close flushes any buffered samples, patches the WAV header's final chunk
// sizes, and closes the underlying file. A crash before Close leaves the
// file readable up to its placeholder size.
func (s *Sink) Close() error {
	s.flush()
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return s.file.Close()
}

var _ pulse.Sink = (*Sink)(nil)

// Set bundles the detector's optional per-sample debug streams into one
// pulse.DebugSinks, each backed by its own WAV file under dir, and tracks
// them for a single Close call.
type Set struct {
	sinks []*Sink
}

// streamNames must stay in the same order as the fields assigned in
// OpenSet below.
var streamNames = []string{
	"smoothed_am.wav",
	"raw_fm.wav",
	"fm_threshold_high.wav",
	"fm_threshold_low.wav",
	"decoded_am.wav",
	"decoded_fm.wav",
}

// OpenSet creates all six debug streams under dir (one WAV file per
// stream, each named per streamNames) at sampleRate, returning a
// pulse.DebugSinks ready to pass to pulse.NewDetector and a Set whose
// Close releases every underlying file. A stream whose file can't be
// opened is left nil in the returned DebugSinks (a no-op sink) and its
// error is discarded, so the other streams still open; the returned error
// reports only a failure to create dir.
func OpenSet(dir string, sampleRate int) (*pulse.DebugSinks, *Set, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create debug sink dir: %w", err)
	}

	set := &Set{}
	open := func(name string) pulse.Sink {
		sink, err := New(filepath.Join(dir, name), sampleRate)
		if err != nil {
			return nil
		}
		set.sinks = append(set.sinks, sink)
		return sink
	}

	sinks := &pulse.DebugSinks{
		SmoothedAM:      open(streamNames[0]),
		RawFM:           open(streamNames[1]),
		FMThresholdHigh: open(streamNames[2]),
		FMThresholdLow:  open(streamNames[3]),
		DecodedAM:       open(streamNames[4]),
		DecodedFM:       open(streamNames[5]),
	}
	return sinks, set, nil
}

// Close closes every sink opened by OpenSet, returning the first error
// encountered (if any) after attempting to close them all.
func (s *Set) Close() error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
