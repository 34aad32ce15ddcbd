package sweep

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
)

// Actuator positions the servo. SetAngle emits one open-loop actuation frame;
// Idle forces the control line inactive.
type Actuator interface {
	SetAngle(deg int) error
	Idle() error
}

// Emitter takes one completed frame per angle stop.
type Emitter interface {
	Emit(f scan.Frame) error
}

// Status is a snapshot for the operator-facing indicators.
type Status struct {
	Mode      scan.Mode
	Angle     int
	Mean      float64
	MeanValid bool
	Stopped   bool
}

// StatusSink receives status snapshots, typically a small OLED panel.
type StatusSink interface {
	Update(s Status) error
}

// State is the sweep position state. It is mutated only by the controller,
// once per completed step, and is untouched while the emergency stop is
// active so the sweep resumes exactly where it left off.
type State struct {
	Angle     int
	Direction int // +1 or -1

	// BoundaryPending means the current boundary angle gets sampled once
	// more before the direction reverses.
	BoundaryPending bool
	// FirstCycle lets the very first boundary hit pass without starting
	// the double-visit turnaround, so it is re-sampled on the way out.
	FirstCycle bool
}

// Config is the sweep geometry and timing.
type Config struct {
	StartAngle    int
	EndAngle      int
	StepInterval  time.Duration // gate between angle steps
	SettleDelay   time.Duration // after the first servo frame, before sampling
	SampleCount   int
	SampleSpacing time.Duration
}

// Deps are the injected collaborators. Status may be nil.
type Deps struct {
	Actuator Actuator
	Ranger   Ranger
	Emitter  Emitter
	Inputs   *InputMonitor
	Status   StatusSink
	Clock    Clock
}

// Controller walks the actuator across the angular range forever, alternating
// direction, sampling at each stop, and reacting to the two buttons. All
// work happens inside Tick; there is no concurrency and no locking.
type Controller struct {
	cfg Config
	d   Deps

	mode     scan.Mode
	stopped  bool
	state    State
	lastStep time.Time
}

// New validates the configuration and returns a controller positioned at the
// start angle, moving up, in full-sweep mode.
func New(cfg Config, d Deps) (*Controller, error) {
	if cfg.StartAngle < 0 || cfg.EndAngle > 180 || cfg.StartAngle >= cfg.EndAngle {
		return nil, errors.New("sweep: need 0 <= start < end <= 180")
	}
	if cfg.StepInterval <= 0 {
		return nil, errors.New("sweep: step interval must be > 0")
	}
	if cfg.SampleCount <= 0 {
		return nil, errors.New("sweep: sample count must be > 0")
	}
	if d.Actuator == nil || d.Ranger == nil || d.Emitter == nil || d.Inputs == nil {
		return nil, errors.New("sweep: actuator, ranger, emitter and inputs are required")
	}
	if d.Clock == nil {
		d.Clock = SystemClock()
	}
	return &Controller{
		cfg:  cfg,
		d:    d,
		mode: scan.FullSweep,
		state: State{
			Angle:      cfg.StartAngle,
			Direction:  1,
			FirstCycle: true,
		},
	}, nil
}

// State returns a copy of the current sweep state.
func (c *Controller) State() State { return c.state }

// Mode returns the current acquisition mode.
func (c *Controller) Mode() scan.Mode { return c.mode }

// Stopped reports whether the emergency stop is active.
func (c *Controller) Stopped() bool { return c.stopped }

// Tick is one pass of the cooperative loop: poll both buttons, then take an
// angle step if one is due and the emergency stop is clear. Buttons are read
// every tick, so their responsiveness is bounded by the tick rate, not the
// step interval.
func (c *Controller) Tick() error {
	stopToggled, modeToggled := c.d.Inputs.Poll()
	if modeToggled {
		c.mode = c.mode.Toggle()
		log.Printf("sweep: mode -> %s (%d deg steps)", c.mode, c.mode.StepDegrees())
	}
	if stopToggled {
		c.stopped = !c.stopped
		if c.stopped {
			c.shutdown()
		} else {
			log.Printf("sweep: emergency stop cleared, resuming at %d deg", c.state.Angle)
		}
	}
	if c.stopped {
		return nil
	}

	now := c.d.Clock.Now()
	if !c.lastStep.IsZero() && now.Sub(c.lastStep) < c.cfg.StepInterval {
		return nil
	}
	err := c.step()
	// The gate restarts after the blocking work, so the actual period is the
	// step interval plus the sampling cost.
	c.lastStep = c.d.Clock.Now()
	return err
}

// step actuates, settles, samples, emits, and advances the sweep state.
func (c *Controller) step() error {
	if err := c.d.Actuator.SetAngle(c.state.Angle); err != nil {
		return err
	}
	c.d.Clock.Sleep(c.cfg.SettleDelay)

	sampler := NewSampler(c.d.Ranger, c.d.Clock, c.cfg.SampleCount, c.cfg.SampleSpacing)
	buf := sampler.Collect()

	frame := scan.NewFrame(c.mode, c.state.Angle, buf)
	if err := c.d.Emitter.Emit(frame); err != nil {
		return err
	}
	c.updateStatus(Status{
		Mode:      c.mode,
		Angle:     c.state.Angle,
		Mean:      frame.Mean,
		MeanValid: frame.MeanValid,
	})

	c.advance(c.mode.StepDegrees())
	return nil
}

// advance applies the boundary policy, then moves the angle one step, clamped
// into [start, end]. Each extreme is sampled twice per turnaround: once
// approaching, once more before the direction reverses.
func (c *Controller) advance(step int) {
	s := &c.state
	if s.Angle == c.cfg.StartAngle || s.Angle == c.cfg.EndAngle {
		switch {
		case s.FirstCycle:
			s.FirstCycle = false
		case !s.BoundaryPending:
			s.BoundaryPending = true
			return // repeat the same boundary angle next step
		default:
			s.BoundaryPending = false
			s.Direction = -s.Direction
		}
	}
	s.Angle += s.Direction * step
	if s.Angle < c.cfg.StartAngle {
		s.Angle = c.cfg.StartAngle
	}
	if s.Angle > c.cfg.EndAngle {
		s.Angle = c.cfg.EndAngle
	}
}

// shutdown forces all outputs inactive. The sweep state is left alone.
func (c *Controller) shutdown() {
	log.Printf("sweep: EMERGENCY STOP at %d deg", c.state.Angle)
	if err := c.d.Actuator.Idle(); err != nil {
		log.Printf("sweep: actuator idle: %v", err)
	}
	if err := c.d.Ranger.Idle(); err != nil {
		log.Printf("sweep: ranger idle: %v", err)
	}
	c.updateStatus(Status{
		Mode:    c.mode,
		Angle:   c.state.Angle,
		Stopped: true,
	})
}

func (c *Controller) updateStatus(s Status) {
	if c.d.Status == nil {
		return
	}
	if err := c.d.Status.Update(s); err != nil {
		log.Printf("sweep: status update: %v", err)
	}
}

// Run ticks until the context ends. Step errors are logged and the sweep
// keeps going; nothing in this system is fatal.
func (c *Controller) Run(ctx context.Context, pollInterval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Tick(); err != nil {
			log.Printf("sweep: step at %d deg: %v", c.state.Angle, err)
		}
		c.d.Clock.Sleep(pollInterval)
	}
}
