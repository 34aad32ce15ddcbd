// Package calib holds the linear calibration transform applied to every
// rangefinder reading and the offline least-squares fit that produces it.
package calib

import (
	"errors"
	"math"
)

// Transform is the linear correction true = A*measured + B, fit offline from
// ground-truth vs measured distances. The sensor consumes only the two
// scalars, not the fitting procedure.
type Transform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Identity is the no-op transform used before any calibration exists.
func Identity() Transform { return Transform{A: 1} }

// Apply maps a raw measured distance to a calibrated one.
func (t Transform) Apply(measured float64) float64 {
	return t.A*measured + t.B
}

// Invert recovers the raw measured distance from a calibrated one.
func (t Transform) Invert(calibrated float64) float64 {
	return (calibrated - t.B) / t.A
}

// Point pairs the sensor's measured distance with the ground truth, both in
// meters.
type Point struct {
	Measured float64 `json:"measured_m"`
	True     float64 `json:"true_m"`
}

// FitStats summarizes fit quality.
type FitStats struct {
	Points      int     `json:"points"`
	RMSE        float64 `json:"rmse_m"`
	MaxResidual float64 `json:"max_residual_m"`
	Confidence  float64 `json:"confidence"`
}

// Quality heuristics for the confidence score (meters).
const (
	rmseGood  = 0.01
	rmseBad   = 0.10
	confFloor = 0.05
)

// Fit runs an ordinary least-squares line through the points and reports the
// residual statistics against the fitted transform.
func Fit(points []Point) (Transform, FitStats, error) {
	n := len(points)
	if n < 2 {
		return Transform{}, FitStats{}, errors.New("calib: need at least 2 points")
	}

	var sx, sy, sxx, sxy float64
	for _, p := range points {
		sx += p.Measured
		sy += p.True
		sxx += p.Measured * p.Measured
		sxy += p.Measured * p.True
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return Transform{}, FitStats{}, errors.New("calib: degenerate fit, all measured distances equal")
	}

	t := Transform{
		A: (fn*sxy - sx*sy) / den,
		B: (sy*sxx - sx*sxy) / den,
	}

	stats := FitStats{Points: n}
	var sumSq float64
	for _, p := range points {
		r := t.Apply(p.Measured) - p.True
		sumSq += r * r
		if math.Abs(r) > stats.MaxResidual {
			stats.MaxResidual = math.Abs(r)
		}
	}
	stats.RMSE = math.Sqrt(sumSq / fn)
	stats.Confidence = rmseConfidence(stats.RMSE)
	return t, stats, nil
}

// rmseConfidence ramps from 1 at rmseGood down to the floor at rmseBad.
func rmseConfidence(rmse float64) float64 {
	switch {
	case rmse <= rmseGood:
		return 1
	case rmse >= rmseBad:
		return confFloor
	default:
		frac := (rmse - rmseGood) / (rmseBad - rmseGood)
		return math.Max(confFloor, 1-frac*(1-confFloor))
	}
}
