package sweep

import (
	"time"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
)

// Ranger produces one distance measurement per call. A timeout is a normal
// outcome and comes back as an invalid reading, never an error. Idle forces
// the trigger output inactive.
type Ranger interface {
	Measure() scan.Reading
	Idle() error
}

// Sampler collects a fixed number of readings at one actuator position. The
// inter-sample spacing keeps successive triggers from hearing each other's
// echoes. Failed samples are never retried.
type Sampler struct {
	ranger  Ranger
	clock   Clock
	count   int
	spacing time.Duration
}

// NewSampler builds a sampler. Counts above the buffer capacity are truncated
// at collection time.
func NewSampler(ranger Ranger, clock Clock, count int, spacing time.Duration) *Sampler {
	return &Sampler{ranger: ranger, clock: clock, count: count, spacing: spacing}
}

// Collect runs one full sample sequence and returns the buffer. The sequence
// always runs to completion once started.
func (s *Sampler) Collect() *scan.SampleBuffer {
	buf := scan.NewSampleBuffer(scan.DefaultCapacity)
	n := s.count
	if n > buf.Cap() {
		n = buf.Cap()
	}
	for i := 0; i < n; i++ {
		buf.Add(s.ranger.Measure())
		if i < n-1 {
			s.clock.Sleep(s.spacing)
		}
	}
	return buf
}
