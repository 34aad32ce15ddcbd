package sweep

import "testing"

func TestEdgeLatchFiresOncePerPress(t *testing.T) {
	btn := &fakeButton{}
	m := NewInputMonitor(btn, &fakeButton{})

	if stop, _ := m.Poll(); stop {
		t.Fatal("fired while low")
	}

	btn.level = true
	if stop, _ := m.Poll(); !stop {
		t.Fatal("rising edge did not fire")
	}
	// Held down: the latch blocks repeats.
	for i := 0; i < 5; i++ {
		if stop, _ := m.Poll(); stop {
			t.Fatal("fired again while held")
		}
	}

	btn.level = false
	if stop, _ := m.Poll(); stop {
		t.Fatal("fired on release")
	}

	btn.level = true
	if stop, _ := m.Poll(); !stop {
		t.Fatal("second press did not fire")
	}
}

func TestInputMonitorButtonsAreIndependent(t *testing.T) {
	stopBtn := &fakeButton{}
	modeBtn := &fakeButton{}
	m := NewInputMonitor(stopBtn, modeBtn)

	stopBtn.level = true
	modeBtn.level = true
	stop, mode := m.Poll()
	if !stop || !mode {
		t.Fatalf("simultaneous press: stop=%v mode=%v", stop, mode)
	}

	stopBtn.level = false
	stop, mode = m.Poll()
	if stop || mode {
		t.Fatalf("stop released, mode held: stop=%v mode=%v", stop, mode)
	}

	stopBtn.level = true
	stop, mode = m.Poll()
	if !stop || mode {
		t.Fatalf("stop re-pressed: stop=%v mode=%v", stop, mode)
	}
}
