package scan

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Frame is one completed angle stop: mode, angle, the fixed raw slots, and the
// mean over the valid slots. One frame maps to exactly one report line.
type Frame struct {
	Mode  Mode
	Angle int
	Raw   []Reading // always DefaultCapacity slots
	Mean  float64
	// MeanValid is false when no valid reading was collected at this stop;
	// the mean then encodes as Sentinel.
	MeanValid bool
}

// fieldCount is mode + angle + raw slots + mean.
const fieldCount = 2 + DefaultCapacity + 1

// NewFrame builds a frame from a sample buffer. Buffers shorter than the slot
// count leave the trailing slots invalid.
func NewFrame(mode Mode, angle int, buf *SampleBuffer) Frame {
	f := Frame{
		Mode:  mode,
		Angle: angle,
		Raw:   make([]Reading, DefaultCapacity),
	}
	for i, r := range buf.Readings() {
		if i >= DefaultCapacity {
			break
		}
		f.Raw[i] = r
	}
	f.Mean, f.MeanValid = buf.Mean()
	return f
}

// RawValues returns the raw slots as wire values, Sentinel for invalid slots.
func (f Frame) RawValues() []float64 {
	vals := make([]float64, len(f.Raw))
	for i, r := range f.Raw {
		if r.Valid {
			vals[i] = r.Meters
		} else {
			vals[i] = Sentinel
		}
	}
	return vals
}

// MeanValue returns the mean as a wire value, Sentinel when undefined.
func (f Frame) MeanValue() float64 {
	if !f.MeanValid {
		return Sentinel
	}
	return f.Mean
}

// Encode serializes the frame to the report-line format:
//
//	<mode>,<angle>,<r1>..<r10>,<mean>
//
// Distances are meters with fixed 2-decimal formatting. The field count never
// varies.
func (f Frame) Encode() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d,%d", int(f.Mode), f.Angle)
	for _, v := range f.RawValues() {
		fmt.Fprintf(&sb, ",%.2f", v)
	}
	fmt.Fprintf(&sb, ",%.2f", f.MeanValue())
	return sb.String()
}

// ParseFrame decodes one report line. Lines with the wrong field count or
// unparsable fields are rejected; callers on the host side simply discard
// those.
func ParseFrame(line string) (Frame, error) {
	fields := strings.Split(line, ",")
	if len(fields) != fieldCount {
		return Frame{}, fmt.Errorf("frame: want %d fields, got %d", fieldCount, len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Frame{}, fmt.Errorf("frame: bad mode field %q: %w", fields[0], err)
	}
	mode, err := ModeFromID(id)
	if err != nil {
		return Frame{}, fmt.Errorf("frame: %w", err)
	}

	angle, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Frame{}, fmt.Errorf("frame: bad angle field %q: %w", fields[1], err)
	}

	f := Frame{
		Mode:  mode,
		Angle: angle,
		Raw:   make([]Reading, DefaultCapacity),
	}
	for i := 0; i < DefaultCapacity; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[2+i]), 64)
		if err != nil {
			return Frame{}, fmt.Errorf("frame: bad raw field %d %q: %w", i+1, fields[2+i], err)
		}
		if v > 0 {
			f.Raw[i] = Reading{Meters: v, Valid: true}
		}
	}

	mean, err := strconv.ParseFloat(strings.TrimSpace(fields[fieldCount-1]), 64)
	if err != nil {
		return Frame{}, fmt.Errorf("frame: bad mean field %q: %w", fields[fieldCount-1], err)
	}
	if mean > 0 {
		f.Mean = mean
		f.MeanValid = true
	}
	return f, nil
}

// Emitter writes frames to the report channel, one line each, no buffering.
type Emitter struct {
	w io.Writer
}

// NewEmitter wraps the output channel, typically a serial port or stdout.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes one report line.
func (e *Emitter) Emit(f Frame) error {
	if _, err := fmt.Fprintln(e.w, f.Encode()); err != nil {
		return fmt.Errorf("emit report line: %w", err)
	}
	return nil
}
