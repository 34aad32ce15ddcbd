package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/calib"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sweep"
)

const (
	triggerPulse = 10 * time.Microsecond
	echoTimeout  = 30 * time.Millisecond

	// Speed of sound in cm/us, halved later for the round trip.
	cmPerMicrosecond = 0.0343
)

// Rangefinder is an HC-SR04 style trigger/echo ultrasonic sensor. Every
// reading passes through the linear calibration transform. Measure blocks for
// up to the echo timeout; that latency is part of the sampling cost budget.
type Rangefinder struct {
	trigger gpio.PinIO
	echo    gpio.PinIn
	cal     calib.Transform
	clock   sweep.Clock
}

// NewRangefinder claims the trigger and echo pins.
func NewRangefinder(triggerPin, echoPin string, cal calib.Transform, clock sweep.Clock) (*Rangefinder, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("rangefinder: periph host init: %w", err)
	}

	trigger := gpioreg.ByName(triggerPin)
	if trigger == nil {
		return nil, fmt.Errorf("rangefinder: trigger pin %q not found", triggerPin)
	}
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("rangefinder: trigger pin %s: %w", triggerPin, err)
	}

	echo := gpioreg.ByName(echoPin)
	if echo == nil {
		return nil, fmt.Errorf("rangefinder: echo pin %q not found", echoPin)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("rangefinder: echo pin %s: %w", echoPin, err)
	}

	return &Rangefinder{trigger: trigger, echo: echo, cal: cal, clock: clock}, nil
}

// Measure fires one 10 us trigger pulse and times the echo pulse width. An
// echo timeout is a normal, expected outcome and yields an invalid reading,
// not an error. Valid readings are calibrated meters.
func (r *Rangefinder) Measure() scan.Reading {
	if err := r.pulse(); err != nil {
		log.Printf("rangefinder: trigger: %v", err)
		return scan.Reading{}
	}

	deadline := r.clock.Now().Add(echoTimeout)
	if !r.echo.WaitForEdge(echoTimeout) {
		return scan.Reading{} // no echo started
	}
	start := r.clock.Now()
	// A non-positive timeout would make WaitForEdge block forever; an echo
	// that only starts at the deadline has no budget left to finish.
	remaining := deadline.Sub(start)
	if remaining <= 0 {
		return scan.Reading{}
	}
	if !r.echo.WaitForEdge(remaining) {
		return scan.Reading{} // echo never ended
	}
	elapsed := r.clock.Now().Sub(start)

	cm := float64(elapsed.Microseconds()) * cmPerMicrosecond / 2
	meters := r.cal.Apply(cm / 100)
	if meters <= 0 {
		return scan.Reading{}
	}
	return scan.Reading{Meters: meters, Valid: true}
}

func (r *Rangefinder) pulse() error {
	if err := r.trigger.Out(gpio.High); err != nil {
		return err
	}
	r.clock.Sleep(triggerPulse)
	return r.trigger.Out(gpio.Low)
}

// Idle forces the trigger line low.
func (r *Rangefinder) Idle() error {
	if err := r.trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("rangefinder: %w", err)
	}
	return nil
}
