package scan

import "testing"

func frameAt(mode Mode, angle int) Frame {
	buf := NewSampleBuffer(DefaultCapacity)
	buf.Add(Reading{Meters: 0.5, Valid: true})
	return NewFrame(mode, angle, buf)
}

func TestCoverageFullSweepCompletes(t *testing.T) {
	cov := NewCoverage(30, 150, FullSweep)
	if got := len(cov.Expected()); got != 13 {
		t.Fatalf("expected stops = %d, want 13", got)
	}

	for a := 30; a <= 150; a += 10 {
		done := cov.Observe(frameAt(FullSweep, a))
		if a < 150 && done {
			t.Fatalf("complete at %d deg", a)
		}
		if a == 150 && !done {
			t.Fatal("not complete after all 13 stops")
		}
	}
}

func TestCoverageRepeatVisitsAreIdempotent(t *testing.T) {
	cov := NewCoverage(30, 150, FullSweep)
	for i := 0; i < 5; i++ {
		if cov.Observe(frameAt(FullSweep, 30)) {
			t.Fatal("complete after repeats of one stop")
		}
	}
}

func TestCoverageSparseExpectedStops(t *testing.T) {
	cov := NewCoverage(30, 150, SparseSweep)
	want := []int{30, 50, 70, 90, 110, 130, 150}
	got := cov.Expected()
	if len(got) != len(want) {
		t.Fatalf("Expected() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected() = %v, want %v", got, want)
		}
	}
}

func TestCoverageModeSwitchResets(t *testing.T) {
	cov := NewCoverage(30, 150, FullSweep)
	for a := 30; a <= 140; a += 10 {
		cov.Observe(frameAt(FullSweep, a))
	}

	// A sparse frame switches the tracker and wipes progress.
	cov.Observe(frameAt(SparseSweep, 30))
	if cov.Complete() {
		t.Fatal("complete right after mode switch")
	}

	for a := 50; a <= 150; a += 20 {
		cov.Observe(frameAt(SparseSweep, a))
	}
	if !cov.Complete() {
		t.Fatal("sparse sweep not complete after all stops")
	}
}

func TestCoverageReset(t *testing.T) {
	cov := NewCoverage(30, 150, SparseSweep)
	for a := 30; a <= 150; a += 20 {
		cov.Observe(frameAt(SparseSweep, a))
	}
	if !cov.Complete() {
		t.Fatal("not complete before reset")
	}
	cov.Reset()
	if cov.Complete() {
		t.Fatal("still complete after reset")
	}
}
