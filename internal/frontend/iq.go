// Package frontend stands in for an SDR front end: it turns an ordinary
// stereo capture into the aligned (envelope, FM) sample pair the detector
// consumes, so the tool is demoable from a plain WAV file without real
// radio hardware.
package frontend

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/go-audio/wav"

	"github.com/n6hs/pulsedetect/internal/pulse"
)

// Stream pairs the conditioned AM envelope and FM discriminator samples the
// detector's Detect entry point expects, plus the sample rate they were
// produced at.
type Stream struct {
	Envelope   []pulse.Sample
	FM         []pulse.Sample
	SampleRate int
}

// LoadIQWAV reads a stereo 16-bit PCM WAV file (left = in-phase, right =
// quadrature) and derives an envelope stream (magnitude of the complex
// baseband) and an FM stream (instantaneous frequency via the
// phase-difference discriminator), matching the derivation
// hz.tools/fm's Demodulator.Read uses for its audio.Reader chain:
// audio[i] = phase(I[i]+jQ[i] * conj(I[i-1]+jQ[i-1])).
func LoadIQWAV(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open iq capture: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm samples: %w", err)
	}
	if buf.Format.NumChannels != 2 {
		return nil, fmt.Errorf("iq capture must be stereo (I/Q), got %d channels", buf.Format.NumChannels)
	}
	var disc discriminator
	envelope, fm := disc.process(buf.Data)

	return &Stream{Envelope: envelope, FM: fm, SampleRate: buf.Format.SampleRate}, nil
}

// discriminator turns interleaved (I,Q) sample pairs into envelope/FM
// sample pairs, carrying the trailing phasor across calls so a live
// capture (internal/frontend/live.go) can feed it one audio block at a
// time and still get a continuous FM phase-difference trace at block
// boundaries.
type discriminator struct {
	lastPhasor complex128
	have       bool
}

func (d *discriminator) process(interleaved []int) (envelope, fm []pulse.Sample) {
	n := len(interleaved) / 2
	envelope = make([]pulse.Sample, n)
	fm = make([]pulse.Sample, n)

	for i := 0; i < n; i++ {
		iv := float64(interleaved[2*i])
		qv := float64(interleaved[2*i+1])
		phasor := complex(iv, qv)

		envelope[i] = scaleToSample(cmplx.Abs(phasor))

		if !d.have {
			fm[i] = 0
			d.lastPhasor = phasor
			d.have = true
			continue
		}
		phase := cmplx.Phase(phasor * cmplx.Conj(d.lastPhasor))
		fm[i] = scaleToSample(phase * (pulse.FullScale / math.Pi))
		d.lastPhasor = phasor
	}
	return envelope, fm
}

// scaleToSample clamps a float sample into the detector's signed 16-bit
// domain.
func scaleToSample(v float64) pulse.Sample {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return pulse.Sample(v)
}
