package host

import (
	"testing"
	"time"
)

func TestGroupStopAll(t *testing.T) {
	l := NewManualLoop(60, epoch)
	g := NewGroup(l)

	fired := 0
	g.AfterFunc(time.Second, func() { fired++ })
	g.Every(100*time.Millisecond, func() { fired++ })
	g.RequestFrame(func(time.Time) { fired++ })

	if g.Live() != 3 {
		t.Fatalf("Live() = %d, expected 3", g.Live())
	}

	if n := g.StopAll(); n != 3 {
		t.Errorf("StopAll() = %d, expected 3", n)
	}

	l.Advance(5 * time.Second)
	if fired != 0 {
		t.Errorf("%d callbacks ran after StopAll", fired)
	}
	if l.Pending() != 0 {
		t.Errorf("loop still has %d pending registrations", l.Pending())
	}
}

func TestGroupForgetsFiredOneShots(t *testing.T) {
	l := NewManualLoop(60, epoch)
	g := NewGroup(l)

	g.AfterFunc(10*time.Millisecond, func() {})
	g.Post(func() {})
	g.RequestFrame(func(time.Time) {})

	l.Advance(time.Second)
	if g.Live() != 0 {
		t.Errorf("Live() = %d after one-shots fired, expected 0", g.Live())
	}
}

func TestGroupRefusesAfterStopAll(t *testing.T) {
	l := NewManualLoop(60, epoch)
	g := NewGroup(l)
	g.StopAll()

	fired := false
	h := g.AfterFunc(time.Millisecond, func() { fired = true })
	l.Advance(time.Second)

	if fired {
		t.Error("closed group should not schedule new callbacks")
	}
	if h.Stop() {
		t.Error("handle from a closed group should report not live")
	}
}

func TestGroupHandleStop(t *testing.T) {
	l := NewManualLoop(60, epoch)
	g := NewGroup(l)

	h := g.Every(time.Millisecond, func() {})
	if !h.Stop() {
		t.Error("Stop() on a live handle should return true")
	}
	if g.Live() != 0 {
		t.Errorf("Live() = %d after Stop, expected 0", g.Live())
	}
}

func TestGroupAdoptReleasesListeners(t *testing.T) {
	l := NewManualLoop(60, epoch)
	d := NewDisplay()
	d.Mount(16, 32, 32, "")
	g := NewGroup(l)

	g.Adopt(d.OnPointer(func(PointerEvent) {}))
	h := g.Adopt(d.OnPointer(func(PointerEvent) {}))
	if d.Listeners() != 2 || g.Live() != 2 {
		t.Fatalf("Listeners() = %d, Live() = %d, expected 2 and 2", d.Listeners(), g.Live())
	}

	if !h.Stop() {
		t.Error("Stop() on an adopted listener = false, expected true")
	}
	if g.Live() != 1 {
		t.Errorf("Live() after Stop = %d, expected 1", g.Live())
	}

	if n := g.StopAll(); n != 1 {
		t.Errorf("StopAll() = %d, expected 1", n)
	}
	if d.Listeners() != 0 {
		t.Errorf("Listeners() after StopAll = %d, expected 0", d.Listeners())
	}

	g.Adopt(d.OnPointer(func(PointerEvent) {}))
	if d.Listeners() != 0 {
		t.Errorf("closed group kept an adopted listener, Listeners() = %d", d.Listeners())
	}
}
