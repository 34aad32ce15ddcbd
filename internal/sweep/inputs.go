package sweep

// Input is one active-HIGH digital input, read by polling.
type Input interface {
	Read() bool
}

// edgeLatch fires once per LOW->HIGH transition. The latch blocks repeat
// fires until the input returns LOW; there is no further debounce filtering
// (clean signal or hardware debounce assumed).
type edgeLatch struct {
	in      Input
	latched bool
}

func (l *edgeLatch) fired() bool {
	if !l.in.Read() {
		l.latched = false
		return false
	}
	if l.latched {
		return false
	}
	l.latched = true
	return true
}

// InputMonitor polls the emergency-stop and mode-select buttons. Each
// physical press yields exactly one toggle.
type InputMonitor struct {
	stop edgeLatch
	mode edgeLatch
}

// NewInputMonitor wires the two buttons.
func NewInputMonitor(stopButton, modeButton Input) *InputMonitor {
	return &InputMonitor{
		stop: edgeLatch{in: stopButton},
		mode: edgeLatch{in: modeButton},
	}
}

// Poll samples both buttons once and reports which of them registered a new
// press this tick.
func (m *InputMonitor) Poll() (stopToggled, modeToggled bool) {
	return m.stop.fired(), m.mode.fired()
}
