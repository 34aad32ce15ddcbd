package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Button is an active-HIGH momentary push button on a GPIO input.
type Button struct {
	pin gpio.PinIn
}

// NewButton claims the input pin with a pull-down.
func NewButton(pinName string) (*Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("button: pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button: pin %s: %w", pinName, err)
	}
	return &Button{pin: pin}, nil
}

// Read samples the current level.
func (b *Button) Read() bool {
	return b.pin.Read() == gpio.High
}
