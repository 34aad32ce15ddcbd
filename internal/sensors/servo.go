package sensors

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sweep"
)

const (
	servoMinPulse = 500 * time.Microsecond
	servoMaxPulse = 2500 * time.Microsecond
	servoFrame    = 20 * time.Millisecond // standard 50 Hz hobby-servo frame
	servoMaxAngle = 180
)

// PulseWidth maps a commanded angle to the servo pulse width. Angles outside
// [0, 180] clamp to the nearest boundary before mapping.
func PulseWidth(angleDeg int) time.Duration {
	if angleDeg < 0 {
		angleDeg = 0
	}
	if angleDeg > servoMaxAngle {
		angleDeg = servoMaxAngle
	}
	us := 500 + math.Round(float64(angleDeg)*2000.0/float64(servoMaxAngle))
	return time.Duration(us) * time.Microsecond
}

// Servo bit-bangs single open-loop PWM frames on a GPIO line. Each SetAngle
// emits exactly one frame; callers needing sustained holding torque must call
// it repeatedly, and should allow a settle delay before trusting the position.
type Servo struct {
	pin   gpio.PinIO
	clock sweep.Clock
}

// NewServo claims the control pin and drives it low.
func NewServo(pinName string, clock sweep.Clock) (*Servo, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("servo: periph host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("servo: pin %q not found", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("servo: pin %s: %w", pinName, err)
	}
	return &Servo{pin: pin, clock: clock}, nil
}

// SetAngle emits one actuation frame: a HIGH phase of the mapped pulse width
// followed by a LOW phase completing the 20 ms period.
func (s *Servo) SetAngle(deg int) error {
	width := PulseWidth(deg)
	if err := s.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("servo: %w", err)
	}
	s.clock.Sleep(width)
	if err := s.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("servo: %w", err)
	}
	s.clock.Sleep(servoFrame - width)
	return nil
}

// Idle forces the control line low.
func (s *Servo) Idle() error {
	if err := s.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("servo: %w", err)
	}
	return nil
}
