package app

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/calib"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sensors"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sweep"
)

// pollInterval bounds button latency; buttons are read every poll even when
// an angle step is not due.
const pollInterval = 5 * time.Millisecond

// RunScanner wires the GPIO hardware to the sweep controller and runs the
// scan loop until the context ends.
func RunScanner(ctx context.Context) error {
	log.Println("starting rangefinder sweep scanner")

	cfg := config.Get()
	clock := sweep.SystemClock()

	// ---- 1) Calibration: file first, config coefficients as fallback ----
	transform := calib.Transform{A: cfg.CalSlope, B: cfg.CalOffset}
	if cfg.CalibrationFile != "" {
		if f, err := calib.Load(cfg.CalibrationFile); err != nil {
			log.Printf("no calibration file, using config coefficients (a=%.4f b=%.4f): %v",
				transform.A, transform.B, err)
		} else {
			transform = f.Transform
			log.Printf("loaded calibration from %s: a=%.4f b=%.4f (rmse=%.4f m, confidence=%.2f)",
				cfg.CalibrationFile, transform.A, transform.B, f.Stats.RMSE, f.Stats.Confidence)
		}
	}

	// ---- 2) Hardware ----
	ranger, err := sensors.NewRangefinder(cfg.TriggerPin, cfg.EchoPin, transform, clock)
	if err != nil {
		return err
	}
	servo, err := sensors.NewServo(cfg.ServoPin, clock)
	if err != nil {
		return err
	}
	stopButton, err := sensors.NewButton(cfg.StopButtonPin)
	if err != nil {
		return err
	}
	modeButton, err := sensors.NewButton(cfg.ModeButtonPin)
	if err != nil {
		return err
	}

	var status sweep.StatusSink
	if cfg.DisplayEnabled {
		display, err := sensors.NewStatusDisplay()
		if err != nil {
			log.Printf("status display unavailable, continuing without it: %v", err)
		} else {
			defer display.Close()
			status = display
		}
	}

	// ---- 3) Report channel: serial link or stdout ----
	var out io.Writer = os.Stdout
	if cfg.ReportSerialPort != "" {
		port, err := serial.Open(serial.OpenOptions{
			PortName:        cfg.ReportSerialPort,
			BaudRate:        uint(cfg.ReportBaudRate),
			DataBits:        8,
			StopBits:        1,
			MinimumReadSize: 1,
			ParityMode:      serial.PARITY_NONE,
		})
		if err != nil {
			return err
		}
		defer port.Close()
		out = port
		log.Printf("report port opened on %s at %d baud", cfg.ReportSerialPort, cfg.ReportBaudRate)
	}

	// ---- 4) Controller ----
	ctrl, err := sweep.New(sweep.Config{
		StartAngle:    cfg.SweepStartAngle,
		EndAngle:      cfg.SweepEndAngle,
		StepInterval:  time.Duration(cfg.SweepStepMS) * time.Millisecond,
		SettleDelay:   time.Duration(cfg.ServoSettleMS) * time.Millisecond,
		SampleCount:   cfg.SampleCount,
		SampleSpacing: time.Duration(cfg.SampleSpacingMS) * time.Millisecond,
	}, sweep.Deps{
		Actuator: servo,
		Ranger:   ranger,
		Emitter:  scan.NewEmitter(out),
		Inputs:   sweep.NewInputMonitor(stopButton, modeButton),
		Status:   status,
		Clock:    clock,
	})
	if err != nil {
		return err
	}

	log.Printf("sweep: %d..%d deg, step interval %d ms, %d samples per stop",
		cfg.SweepStartAngle, cfg.SweepEndAngle, cfg.SweepStepMS, cfg.SampleCount)

	return ctrl.Run(ctx, pollInterval)
}
