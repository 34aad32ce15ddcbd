package sweep

import (
	"testing"
	"time"

	"github.com/Faragafan/Ultrasonic-sensor-Rangefinder/internal/scan"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type fakeActuator struct {
	angles []int
	idled  bool
}

func (a *fakeActuator) SetAngle(deg int) error {
	a.angles = append(a.angles, deg)
	return nil
}

func (a *fakeActuator) Idle() error {
	a.idled = true
	return nil
}

type fakeRanger struct {
	reading scan.Reading
	idled   bool
}

func (r *fakeRanger) Measure() scan.Reading { return r.reading }

func (r *fakeRanger) Idle() error {
	r.idled = true
	return nil
}

type fakeEmitter struct {
	frames []scan.Frame
}

func (e *fakeEmitter) Emit(f scan.Frame) error {
	e.frames = append(e.frames, f)
	return nil
}

type fakeButton struct {
	level bool
}

func (b *fakeButton) Read() bool { return b.level }

type harness struct {
	clk  *fakeClock
	act  *fakeActuator
	rng  *fakeRanger
	emit *fakeEmitter
	stop *fakeButton
	mode *fakeButton
	ctrl *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clk:  newFakeClock(),
		act:  &fakeActuator{},
		rng:  &fakeRanger{reading: scan.Reading{Meters: 0.5, Valid: true}},
		emit: &fakeEmitter{},
		stop: &fakeButton{},
		mode: &fakeButton{},
	}
	ctrl, err := New(Config{
		StartAngle:    30,
		EndAngle:      150,
		StepInterval:  500 * time.Millisecond,
		SettleDelay:   10 * time.Millisecond,
		SampleCount:   10,
		SampleSpacing: 20 * time.Millisecond,
	}, Deps{
		Actuator: h.act,
		Ranger:   h.rng,
		Emitter:  h.emit,
		Inputs:   NewInputMonitor(h.stop, h.mode),
		Clock:    h.clk,
	})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	h.ctrl = ctrl
	return h
}

// runSteps ticks until n frames have been emitted.
func (h *harness) runSteps(t *testing.T, n int) {
	t.Helper()
	for i := 0; len(h.emit.frames) < n; i++ {
		if i > 100000 {
			t.Fatalf("gave up after %d frames, want %d", len(h.emit.frames), n)
		}
		if err := h.ctrl.Tick(); err != nil {
			t.Fatalf("Tick() err=%v", err)
		}
		h.clk.Sleep(50 * time.Millisecond)
	}
}

func emittedAngles(frames []scan.Frame) []int {
	angles := make([]int, len(frames))
	for i, f := range frames {
		angles[i] = f.Angle
	}
	return angles
}

func TestNewValidation(t *testing.T) {
	base := Config{StartAngle: 30, EndAngle: 150, StepInterval: time.Second, SampleCount: 10}
	deps := Deps{
		Actuator: &fakeActuator{},
		Ranger:   &fakeRanger{},
		Emitter:  &fakeEmitter{},
		Inputs:   NewInputMonitor(&fakeButton{}, &fakeButton{}),
		Clock:    newFakeClock(),
	}

	if _, err := New(base, deps); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.StartAngle, bad.EndAngle = 150, 30
	if _, err := New(bad, deps); err == nil {
		t.Fatal("inverted range accepted")
	}

	bad = base
	bad.StepInterval = 0
	if _, err := New(bad, deps); err == nil {
		t.Fatal("zero step interval accepted")
	}

	noDeps := deps
	noDeps.Emitter = nil
	if _, err := New(base, noDeps); err == nil {
		t.Fatal("missing emitter accepted")
	}
}

func TestFirstBoundaryVisitDoesNotReverse(t *testing.T) {
	h := newHarness(t)
	h.runSteps(t, 2)

	angles := emittedAngles(h.emit.frames)
	if angles[0] != 30 || angles[1] != 40 {
		t.Fatalf("first two stops = %v, want [30 40]", angles)
	}
	if st := h.ctrl.State(); st.Direction != 1 || st.FirstCycle {
		t.Fatalf("state after first boundary = %+v", st)
	}
}

func TestBoundaryDoubleVisitTurnaround(t *testing.T) {
	h := newHarness(t)

	// One full up sweep, the 150 repeat, the down sweep, the 30 repeat,
	// and the first stop heading back up.
	h.runSteps(t, 28)
	angles := emittedAngles(h.emit.frames)

	want := []int{
		30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 130, 140, 150, // up
		150,                                                 // repeat before reversing
		140, 130, 120, 110, 100, 90, 80, 70, 60, 50, 40, 30, // down
		30, // repeat before reversing
		40, // heading up again
	}
	if len(angles) != len(want) {
		t.Fatalf("got %d stops, want %d", len(angles), len(want))
	}
	for i := range want {
		if angles[i] != want[i] {
			t.Fatalf("stop %d = %d, want %d (full sequence %v)", i, angles[i], want[i], angles)
		}
	}

	// 13 distinct stops on the way up.
	distinct := make(map[int]bool)
	for _, a := range angles[:13] {
		distinct[a] = true
	}
	if len(distinct) != 13 {
		t.Fatalf("distinct stops in the up sweep = %d, want 13", len(distinct))
	}
}

func TestStepIntervalGate(t *testing.T) {
	h := newHarness(t)

	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	if len(h.emit.frames) != 1 {
		t.Fatalf("first tick emitted %d frames, want 1", len(h.emit.frames))
	}

	// Just under the step interval since the last step finished: not due.
	h.clk.Sleep(499 * time.Millisecond)
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	if len(h.emit.frames) != 1 {
		t.Fatalf("early tick emitted a frame")
	}

	h.clk.Sleep(1 * time.Millisecond)
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	if len(h.emit.frames) != 2 {
		t.Fatalf("due tick did not emit")
	}
}

func TestEmergencyStopGatesSweepAndPreservesState(t *testing.T) {
	h := newHarness(t)
	h.runSteps(t, 3)

	// Press and release the stop button.
	h.stop.level = true
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	h.stop.level = false

	if !h.ctrl.Stopped() {
		t.Fatal("controller not stopped after stop press")
	}
	if !h.act.idled || !h.rng.idled {
		t.Fatal("outputs not forced inactive on emergency stop")
	}

	frames := len(h.emit.frames)
	state := h.ctrl.State()

	// Arbitrarily many elapsed ticks: no frames, no state movement.
	for i := 0; i < 50; i++ {
		if err := h.ctrl.Tick(); err != nil {
			t.Fatalf("Tick() err=%v", err)
		}
		h.clk.Sleep(time.Second)
	}
	if len(h.emit.frames) != frames {
		t.Fatalf("frames emitted while stopped: %d -> %d", frames, len(h.emit.frames))
	}
	if h.ctrl.State() != state {
		t.Fatalf("state changed while stopped: %+v -> %+v", state, h.ctrl.State())
	}

	// Second press clears the stop and the sweep resumes where it left off.
	h.stop.level = true
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	h.stop.level = false

	h.runSteps(t, frames+1)
	if got := h.emit.frames[frames].Angle; got != state.Angle {
		t.Fatalf("resumed at %d, want %d", got, state.Angle)
	}
}

func TestModeToggleChangesStepSize(t *testing.T) {
	h := newHarness(t)
	h.runSteps(t, 2) // stops at 30 and 40

	// Press and release the mode button.
	h.mode.level = true
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	h.mode.level = false

	if got := h.ctrl.Mode(); got != scan.SparseSweep {
		t.Fatalf("mode = %v, want sparse", got)
	}

	h.runSteps(t, 4)
	angles := emittedAngles(h.emit.frames)
	want := []int{30, 40, 50, 70}
	for i := range want {
		if angles[i] != want[i] {
			t.Fatalf("stops = %v, want %v", angles, want)
		}
	}
	if h.emit.frames[2].Mode != scan.SparseSweep {
		t.Fatalf("frame mode = %v, want sparse", h.emit.frames[2].Mode)
	}
}

func TestSparseModeTurnaround(t *testing.T) {
	h := newHarness(t)

	// Switch to sparse before the first step.
	h.mode.level = true
	if err := h.ctrl.Tick(); err != nil {
		t.Fatalf("Tick() err=%v", err)
	}
	h.mode.level = false

	h.runSteps(t, 9)
	angles := emittedAngles(h.emit.frames)
	want := []int{30, 50, 70, 90, 110, 130, 150, 150, 130}
	for i := range want {
		if angles[i] != want[i] {
			t.Fatalf("stops = %v, want %v", angles, want)
		}
	}
}
