package frontend

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// LiveCapture wraps PortAudio for reading a stereo I/Q stream straight from
// an SDR's audio-out, a capture-only stream feeding the frontend's
// discriminator.
type LiveCapture struct {
	stream *portaudio.Stream
	buf    []float32

	sampleRate int
	disc       discriminator

	mu          sync.Mutex
	initialized bool
}

// Init initializes the PortAudio library. Must be called once before any
// LiveCapture is opened, and balanced with Terminate.
func Init() error {
	return portaudio.Initialize()
}

// Terminate releases PortAudio resources.
func Terminate() error {
	return portaudio.Terminate()
}

// NewLiveCapture creates a LiveCapture that will read framesPerBuffer stereo
// frames at a time at sampleRate.
func NewLiveCapture(sampleRate, framesPerBuffer int) *LiveCapture {
	return &LiveCapture{
		buf:        make([]float32, framesPerBuffer*2),
		sampleRate: sampleRate,
	}
}

// Open opens the default input device's stereo input stream.
func (c *LiveCapture) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		2, // input channels: I, Q
		0, // output channels
		float64(c.sampleRate),
		len(c.buf)/2,
		c.buf,
	)
	if err != nil {
		return fmt.Errorf("open iq input stream: %w", err)
	}
	c.stream = stream
	c.initialized = true
	return nil
}

// Start begins streaming.
func (c *LiveCapture) Start() error {
	if c.stream == nil {
		return fmt.Errorf("live capture not opened")
	}
	return c.stream.Start()
}

// Stop halts streaming without closing the device.
func (c *LiveCapture) Stop() error {
	if c.stream == nil {
		return nil
	}
	return c.stream.Stop()
}

// Close releases the underlying stream.
func (c *LiveCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	return err
}

// ReadBlock reads one block of interleaved I/Q frames and returns the
// matching envelope/FM sample pair, continuing the phase trace from the
// previous block.
func (c *LiveCapture) ReadBlock() (envelope, fm []int16, err error) {
	if c.stream == nil {
		return nil, nil, fmt.Errorf("live capture not opened")
	}
	if err := c.stream.Read(); err != nil {
		return nil, nil, fmt.Errorf("read iq block: %w", err)
	}

	interleaved := make([]int, len(c.buf))
	for i, v := range c.buf {
		interleaved[i] = int(v * 32767)
	}
	return c.disc.process(interleaved)
}

// SampleRate reports the configured capture sample rate.
func (c *LiveCapture) SampleRate() int { return c.sampleRate }
