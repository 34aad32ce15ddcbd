package scan

// Reading is a single rangefinder measurement in meters. An echo timeout or a
// non-positive distance yields an invalid reading; Meters is meaningless when
// Valid is false. This replaces the usual NaN sentinel so "no measurement" and
// "measurement of zero" stay distinguishable.
type Reading struct {
	Meters float64
	Valid  bool
}

// Sentinel is the wire value written for invalid readings and undefined means.
const Sentinel = -1.0

// DefaultCapacity is the number of raw slots on a report line.
const DefaultCapacity = 10

// SampleBuffer holds the raw readings collected at one angle stop plus a
// running sum of the valid ones. It is created fresh per stop and discarded
// once the report line is out.
type SampleBuffer struct {
	readings []Reading
	capacity int
	sum      float64
	valid    int
}

// NewSampleBuffer returns an empty buffer. A non-positive capacity falls back
// to DefaultCapacity.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SampleBuffer{
		readings: make([]Reading, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a raw reading. Readings that are valid and strictly positive
// count toward the mean; everything else is stored raw but excluded. Returns
// false once the buffer is full (the reading is dropped, never an error).
func (b *SampleBuffer) Add(r Reading) bool {
	if len(b.readings) >= b.capacity {
		return false
	}
	b.readings = append(b.readings, r)
	if r.Valid && r.Meters > 0 {
		b.sum += r.Meters
		b.valid++
	}
	return true
}

// Len returns the number of readings stored so far.
func (b *SampleBuffer) Len() int { return len(b.readings) }

// Cap returns the buffer capacity.
func (b *SampleBuffer) Cap() int { return b.capacity }

// Readings returns the raw readings in collection order.
func (b *SampleBuffer) Readings() []Reading { return b.readings }

// ValidCount returns how many readings count toward the mean.
func (b *SampleBuffer) ValidCount() int { return b.valid }

// Mean returns the arithmetic mean of the valid readings. ok is false when no
// valid reading was collected; the mean is undefined in that case.
func (b *SampleBuffer) Mean() (float64, bool) {
	if b.valid == 0 {
		return 0, false
	}
	return b.sum / float64(b.valid), true
}
