// ./cmd/calibration/main.go
//
// Guided calibration for the ultrasonic rangefinder.
//
// The operator places a target at a series of known distances; at each stop
// the sensor captures a batch of raw (uncalibrated) readings. A least-squares
// line true = a*measured + b is fit through the (measured, true) pairs and
// written to a JSON file that cmd/scanner loads at startup.
//
// Run:
//
//	go run ./cmd/calibration
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/calib"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/config"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sensors"
	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/sweep"
)

const (
	samplesPerPoint  = 10
	sampleSpacing    = 20 * time.Millisecond
	minValidPerPoint = 3
)

func main() {
	in := bufio.NewReader(os.Stdin)

	configPath := flag.String("config", "rangefinder_config.txt", "Path to configuration file")
	numPoints := flag.Int("points", 5, "Number of ground-truth distances to capture (>= 2)")
	outPath := flag.String("out", "", "Output file (default: CALIBRATION_FILE from config)")
	flag.Parse()

	fmt.Println("=== Guided Rangefinder Calibration ===")
	fmt.Println("You will place a target at several known distances; each stop captures a short sample batch.")
	fmt.Println()

	if *numPoints < 2 {
		fmt.Fprintln(os.Stderr, "ERROR: need at least 2 calibration points.")
		os.Exit(1)
	}

	if err := config.InitGlobal(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	cfg := config.Get()

	path := *outPath
	if path == "" {
		path = cfg.CalibrationFile
	}
	if path == "" {
		path = "rangefinder_calibration.json"
	}

	// Raw readings only: the identity transform keeps the fit input
	// uncalibrated.
	clock := sweep.SystemClock()
	ranger, err := sensors.NewRangefinder(cfg.TriggerPin, cfg.EchoPin, calib.Identity(), clock)
	if err != nil {
		fatal(err)
	}

	var points []calib.Point

	for i := 0; i < *numPoints; i++ {
		fmt.Printf("Point %d/%d\n", i+1, *numPoints)
		trueDist := readFloat(in, "Enter the true target distance in meters (e.g. 0.50): ")
		waitEnter(in, "Press ENTER to capture...")

		measured, valid := capturePoint(ranger, clock)
		if valid < minValidPerPoint {
			fmt.Printf("Only %d/%d valid readings at this stop; skipping it. Check the target and retry.\n\n",
				valid, samplesPerPoint)
			i--
			continue
		}

		fmt.Printf("Measured %.4f m (true %.2f m, %d/%d valid)\n\n", measured, trueDist, valid, samplesPerPoint)
		points = append(points, calib.Point{Measured: measured, True: trueDist})
	}

	transform, stats, err := calib.Fit(points)
	if err != nil {
		fatal(err)
	}

	fmt.Println("---- Fit result ----")
	fmt.Printf("true = %.6f * measured + %.6f\n", transform.A, transform.B)
	fmt.Printf("rmse=%.4f m, max residual=%.4f m, confidence=%.2f\n\n", stats.RMSE, stats.MaxResidual, stats.Confidence)

	fmt.Println("Per-point residuals:")
	for _, p := range points {
		fitted := transform.Apply(p.Measured)
		fmt.Printf("  measured=%.4f  true=%.2f  fitted=%.4f  residual=%+.4f\n",
			p.Measured, p.True, fitted, fitted-p.True)
	}

	out := calib.File{
		SchemaVersion: calib.SchemaVersion,
		CalibratedAt:  time.Now().Format(time.RFC3339),
		Transform:     transform,
		Stats:         stats,
		Points:        points,
	}
	if stats.Confidence < 0.5 {
		out.Notes = append(out.Notes, "low fit confidence, consider re-running with a steadier target")
	}

	if err := calib.Save(path, out); err != nil {
		fatal(err)
	}
	fmt.Printf("\nCalibration written to %s\n", path)
}

// capturePoint takes one fixed-count batch of raw readings and returns the
// mean of the valid ones.
func capturePoint(ranger *sensors.Rangefinder, clock sweep.Clock) (mean float64, valid int) {
	var sum float64
	for i := 0; i < samplesPerPoint; i++ {
		r := ranger.Measure()
		if r.Valid {
			sum += r.Meters
			valid++
		}
		clock.Sleep(sampleSpacing)
	}
	if valid == 0 {
		return 0, 0
	}
	return sum / float64(valid), valid
}

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func readFloat(in *bufio.Reader, prompt string) float64 {
	for {
		fmt.Print(prompt)
		line, err := in.ReadString('\n')
		if err != nil {
			fatal(err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil || v <= 0 {
			fmt.Println("Please enter a positive number.")
			continue
		}
		return v
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
