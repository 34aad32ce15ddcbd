package sweep

import "time"

// Clock abstracts monotonic time and blocking delays so the sweep logic and
// the bit-banged pulse timing can run against simulated time in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the wall-clock implementation used on hardware.
func SystemClock() Clock { return systemClock{} }
