package frontend

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// InputDevice describes one candidate capture device, limited to the
// input-only fields a pulse capture cares about.
type InputDevice struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices returns every PortAudio device with at least one input
// channel, suitable for feeding LiveCapture.
func ListInputDevices() ([]InputDevice, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	defaultIn, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("default input device: %w", err)
	}

	var out []InputDevice
	for _, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		out = append(out, InputDevice{
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			IsDefault:         d.Name == defaultIn.Name,
		})
	}
	return out, nil
}

// PrintInputDevices writes a human-readable device list to stdout, for the
// CLI's -list-devices flag.
func PrintInputDevices() error {
	devices, err := ListInputDevices()
	if err != nil {
		return err
	}
	fmt.Println("Capture devices:")
	for i, d := range devices {
		mark := ""
		if d.IsDefault {
			mark = " [DEFAULT]"
		}
		fmt.Printf("  %d: %s (in:%d rate:%.0f)%s\n", i, d.Name, d.MaxInputChannels, d.DefaultSampleRate, mark)
	}
	return nil
}
