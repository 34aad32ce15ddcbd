package scan

import "fmt"

// Mode selects the angular step size of the sweep. The numeric values are the
// mode identifiers used on the report line.
type Mode int

const (
	FullSweep   Mode = 1 // 10 degree stops
	SparseSweep Mode = 2 // 20 degree stops
)

// StepDegrees returns the angular step size for the mode.
func (m Mode) StepDegrees() int {
	if m == SparseSweep {
		return 20
	}
	return 10
}

// Toggle returns the other acquisition mode.
func (m Mode) Toggle() Mode {
	if m == FullSweep {
		return SparseSweep
	}
	return FullSweep
}

func (m Mode) String() string {
	switch m {
	case FullSweep:
		return "full"
	case SparseSweep:
		return "sparse"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ModeFromID maps a report-line mode identifier back to a Mode.
func ModeFromID(id int) (Mode, error) {
	switch id {
	case 1:
		return FullSweep, nil
	case 2:
		return SparseSweep, nil
	default:
		return 0, fmt.Errorf("unknown mode id %d", id)
	}
}
