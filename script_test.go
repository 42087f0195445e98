package scroll2d

import (
	"testing"
	"time"
)

func runUpdates(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Update(time.Duration(i)*frameDuration, 1)
	}
}

func TestLoadInputScriptErrors(t *testing.T) {
	if _, err := LoadInputScript([]byte(`{`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := LoadInputScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("expected error for a script with no steps")
	}
}

func TestInjectClickOnePerUpdate(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)

	e.InjectClick(85, 125)
	if !e.Injecting() {
		t.Fatal("Injecting should be true with queued events")
	}
	e.Update(0, 1)
	if len(clicks.events) != 0 {
		t.Fatal("click fired before the release was consumed")
	}
	e.Update(frameDuration, 1)
	if len(clicks.events) != 1 {
		t.Fatalf("clicks = %d, want 1", len(clicks.events))
	}
	if clicks.events[0].X != 2 || clicks.events[0].Y != 3 {
		t.Errorf("tile = %d,%d, want 2,3", clicks.events[0].X, clicks.events[0].Y)
	}
	if e.Injecting() {
		t.Error("queue should be empty")
	}
}

func TestInjectDragInterpolates(t *testing.T) {
	e := newTestEngine(t, false)
	e.InjectDrag(0, 0, 30, 60, 4)

	if len(e.inject) != 4 {
		t.Fatalf("events = %d, want 4", len(e.inject))
	}
	if e.inject[0].Action != PointerDown || e.inject[3].Action != PointerUp {
		t.Error("drag should start with a press and end with a release")
	}
	assertNear(t, "move 1 x", e.inject[1].X, 10)
	assertNear(t, "move 2 y", e.inject[2].Y, 40)
	assertNear(t, "release x", e.inject[3].X, 30)
}

func TestInjectDragMinimumFrames(t *testing.T) {
	e := newTestEngine(t, false)
	e.InjectDrag(0, 0, 10, 10, 0)
	if len(e.inject) != 2 {
		t.Errorf("events = %d, want 2", len(e.inject))
	}
}

func TestInputScriptClickAfterWait(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)
	s, err := LoadInputScript([]byte(`{"steps": [
		{"action": "wait", "frames": 2},
		{"action": "click", "x": 85, "y": 125}
	]}`))
	if err != nil {
		t.Fatalf("LoadInputScript: %v", err)
	}
	e.SetInputScript(s)

	runUpdates(e, 3)
	if len(clicks.events) != 0 {
		t.Fatal("click fired during the wait")
	}
	runUpdates(e, 5)
	if len(clicks.events) != 1 {
		t.Errorf("clicks = %d, want 1", len(clicks.events))
	}
	if !s.Done() {
		t.Error("script should be done")
	}
}

func TestInputScriptHold(t *testing.T) {
	e := newTestEngine(t, false)
	var holds tileRecorder
	released := 0
	e.SetHoldListener(&holds)
	e.SetReleaseListener(ReleaseFunc(func(*Engine) { released++ }))
	s, err := LoadInputScript([]byte(`{"steps": [
		{"action": "hold", "x": 50, "y": 50, "frames": 60},
		{"action": "release", "x": 50, "y": 50}
	]}`))
	if err != nil {
		t.Fatalf("LoadInputScript: %v", err)
	}
	e.SetInputScript(s)

	runUpdates(e, 70)
	if len(holds.events) != 1 {
		t.Errorf("holds = %d, want 1", len(holds.events))
	}
	if released != 1 {
		t.Errorf("releases = %d, want 1", released)
	}
	if !s.Done() {
		t.Error("script should be done")
	}
}

func TestInputScriptWheelAndUnknown(t *testing.T) {
	e := newTestEngine(t, false)
	s, err := LoadInputScript([]byte(`{"steps": [
		{"action": "teleport"},
		{"action": "wheel", "delta": -1}
	]}`))
	if err != nil {
		t.Fatalf("LoadInputScript: %v", err)
	}
	e.SetInputScript(s)
	runUpdates(e, 3)

	assertNear(t, "zoom", e.ZoomLevel(), 1.15)
	if !s.Done() {
		t.Error("unknown actions should be skipped")
	}
}
