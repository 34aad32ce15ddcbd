package sensors

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sweep"
)

// StatusDisplay shows the current mode, angle and last mean on a small SSD1306
// OLED, and a STOP banner while the emergency stop is active.
type StatusDisplay struct {
	dev *ssd1306.Dev
	bus i2c.BusCloser
}

// NewStatusDisplay opens the default I2C bus and initializes the panel.
func NewStatusDisplay() (*StatusDisplay, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph host init: %w", err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("display: open I2C bus: %w", err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("display: init: %w", err)
	}
	return &StatusDisplay{dev: dev, bus: bus}, nil
}

// Update redraws the panel from the latest status snapshot.
func (d *StatusDisplay) Update(s sweep.Status) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if s.Stopped {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("EMERGENCY STOP"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("held at %3d deg", s.Angle)))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("Mode:  %s", s.Mode)))
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Angle: %3d deg", s.Angle)))
		drawer.Dot = fixed.P(0, 39)
		if s.MeanValid {
			drawer.DrawBytes([]byte(fmt.Sprintf("Mean:  %.2f m", s.Mean)))
		} else {
			drawer.DrawBytes([]byte("Mean:  ---"))
		}
	}

	return d.dev.Draw(d.dev.Bounds(), img, image.Point{})
}

// Close releases the I2C bus.
func (d *StatusDisplay) Close() error {
	return d.bus.Close()
}
