package scroll2d

import (
	"testing"
	"time"
)

func mouse(action PointerAction, x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y, Type: PointerMouse, Button: MouseButtonLeft, Action: action}
}

func touch(id int, action PointerAction, x, y float64) PointerEvent {
	return PointerEvent{ID: id, X: x, Y: y, Type: PointerTouch, Action: action}
}

type tileRecorder struct {
	events []TileEvent
}

func (r *tileRecorder) OnTile(_ *Engine, ev TileEvent) { r.events = append(r.events, ev) }

type selectionRecorder struct {
	sels []Selection
	done []bool
}

func (r *selectionRecorder) Selection(_ *Engine, sel Selection, done bool) {
	r.sels = append(r.sels, sel)
	r.done = append(r.done, done)
}

func TestClickResolvesTile(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)

	e.HandlePointer(mouse(PointerDown, 85, 125))
	e.HandlePointer(mouse(PointerUp, 85, 125))

	if len(clicks.events) != 1 {
		t.Fatalf("clicks = %d, want 1", len(clicks.events))
	}
	ev := clicks.events[0]
	if ev.X != 2 || ev.Y != 3 {
		t.Errorf("tile = %d,%d, want 2,3", ev.X, ev.Y)
	}
	if ev.ScreenX != 85 || ev.ScreenY != 125 {
		t.Errorf("screen = %v,%v, want 85,125", ev.ScreenX, ev.ScreenY)
	}
	assertNear(t, "PX", ev.PX, 2.125)
}

func TestClickWithinDeadZone(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)

	e.HandlePointer(mouse(PointerDown, 85, 125))
	e.HandlePointer(mouse(PointerMove, 88, 127))
	e.HandlePointer(mouse(PointerUp, 88, 127))

	if len(clicks.events) != 1 {
		t.Errorf("clicks = %d, want 1", len(clicks.events))
	}
	if e.Camera().ViewX != 0 {
		t.Error("a small wobble should not scroll")
	}
}

func TestRightClick(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks, right tileRecorder
	e.SetClickListener(&clicks)

	down := mouse(PointerDown, 10, 10)
	down.Button = MouseButtonRight
	up := mouse(PointerUp, 10, 10)
	up.Button = MouseButtonRight

	e.HandlePointer(down)
	e.HandlePointer(up)
	if len(clicks.events) != 1 {
		t.Fatalf("without a right-click listener clicks = %d, want 1", len(clicks.events))
	}
	if clicks.events[0].Button != MouseButtonRight {
		t.Errorf("button = %v, want right", clicks.events[0].Button)
	}

	e.SetRightClickListener(&right)
	e.HandlePointer(down)
	e.HandlePointer(up)
	if len(right.events) != 1 || len(clicks.events) != 1 {
		t.Errorf("right/click = %d/%d, want 1/1", len(right.events), len(clicks.events))
	}
}

func TestDragScrolls(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)
	manual := false
	e.SetViewportListener(ViewportFunc(func(_ *Engine, m bool) { manual = m }))

	e.HandlePointer(mouse(PointerDown, 100, 100))
	e.HandlePointer(mouse(PointerMove, 110, 100))
	e.HandlePointer(mouse(PointerMove, 130, 90))
	e.HandlePointer(mouse(PointerUp, 130, 90))

	assertNear(t, "ViewX", e.Camera().ViewX, -20)
	assertNear(t, "ViewY", e.Camera().ViewY, 10)
	if len(clicks.events) != 0 {
		t.Error("a drag should not click")
	}
	if !manual {
		t.Error("dragging should report a manual viewport change")
	}
}

func TestTouchDeadZoneIsWider(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)

	e.HandlePointer(touch(1, PointerDown, 100, 100))
	e.HandlePointer(touch(1, PointerMove, 110, 100))
	e.HandlePointer(touch(1, PointerUp, 110, 100))

	if len(clicks.events) != 1 {
		t.Errorf("clicks = %d, want 1", len(clicks.events))
	}
	if !e.UsingTouch() {
		t.Error("UsingTouch should be true after touch input")
	}
}

func TestHoverIgnoresTouch(t *testing.T) {
	e := newTestEngine(t, false)
	var hover tileRecorder
	e.SetHoverListener(&hover)

	e.HandlePointer(mouse(PointerMove, 45, 5))
	e.HandlePointer(touch(1, PointerMove, 45, 5))

	if len(hover.events) != 1 {
		t.Fatalf("hover events = %d, want 1", len(hover.events))
	}
	if hover.events[0].X != 1 || hover.events[0].Y != 0 {
		t.Errorf("hover tile = %d,%d, want 1,0", hover.events[0].X, hover.events[0].Y)
	}
}

func TestHoldAndRelease(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks, holds tileRecorder
	released := 0
	e.SetClickListener(&clicks)
	e.SetHoldListener(&holds)
	e.SetReleaseListener(ReleaseFunc(func(*Engine) { released++ }))

	e.updateGestures(0)
	e.HandlePointer(mouse(PointerDown, 50, 50))
	e.updateGestures(holdDelay - time.Millisecond)
	if len(holds.events) != 0 {
		t.Fatal("hold fired early")
	}
	e.updateGestures(holdDelay)
	if len(holds.events) != 1 {
		t.Fatalf("holds = %d, want 1", len(holds.events))
	}
	if holds.events[0].X != 1 || holds.events[0].Y != 1 {
		t.Errorf("hold tile = %d,%d, want 1,1", holds.events[0].X, holds.events[0].Y)
	}

	e.HandlePointer(mouse(PointerUp, 50, 50))
	if released != 1 {
		t.Errorf("releases = %d, want 1", released)
	}
	if len(clicks.events) != 0 {
		t.Error("a hold should not click")
	}
}

func TestHoldCancelledByDrag(t *testing.T) {
	e := newTestEngine(t, false)
	var holds tileRecorder
	e.SetHoldListener(&holds)

	e.updateGestures(0)
	e.HandlePointer(mouse(PointerDown, 50, 50))
	e.HandlePointer(mouse(PointerMove, 80, 50))
	e.updateGestures(time.Second)
	if len(holds.events) != 0 {
		t.Error("dragging should cancel the hold")
	}
}

func TestPaintStrokes(t *testing.T) {
	e := newTestEngine(t, false)
	var paint tileRecorder
	e.SetPaintListener(&paint)
	e.updateGestures(0)
	e.AlertPainting(nil, 0)
	if !e.Painting() {
		t.Fatal("Painting should be true after AlertPainting")
	}

	e.HandlePointer(mouse(PointerDown, 10, 10))
	e.HandlePointer(mouse(PointerMove, 30, 10))
	e.HandlePointer(mouse(PointerMove, 50, 10))
	e.HandlePointer(mouse(PointerMove, 55, 10))
	e.HandlePointer(mouse(PointerMove, 90, 10))
	e.HandlePointer(mouse(PointerUp, 90, 10))

	if len(paint.events) != 2 {
		t.Fatalf("paint events = %d, want 2", len(paint.events))
	}
	if paint.events[0].X != 1 || paint.events[1].X != 2 {
		t.Errorf("painted cells = %d,%d, want 1,2", paint.events[0].X, paint.events[1].X)
	}
	if e.Camera().ViewX != 0 {
		t.Error("painting should not scroll")
	}
	if e.Painting() {
		t.Error("releasing the pointer should end painting")
	}
}

func TestPaintTimeout(t *testing.T) {
	e := newTestEngine(t, false)
	done := 0
	e.updateGestures(0)
	e.AlertPainting(func() { done++ }, 100*time.Millisecond)

	e.updateGestures(50 * time.Millisecond)
	if !e.Painting() || done != 0 {
		t.Fatal("painting ended early")
	}
	e.updateGestures(100 * time.Millisecond)
	if e.Painting() || done != 1 {
		t.Errorf("painting/done = %v/%d, want false/1", e.Painting(), done)
	}
}

func TestClearPaintingSilent(t *testing.T) {
	e := newTestEngine(t, false)
	done := 0
	e.AlertPainting(func() { done++ }, time.Second)
	e.ClearPainting(true)
	if e.Painting() || done != 0 {
		t.Errorf("painting/done = %v/%d, want false/0", e.Painting(), done)
	}
}

func TestSelectionAfterHold(t *testing.T) {
	e := newTestEngine(t, false)
	var sel selectionRecorder
	e.SetSelectionListener(&sel, Color{})

	e.updateGestures(0)
	e.HandlePointer(mouse(PointerDown, 40, 40))
	e.updateGestures(holdDelay)
	if !e.Selecting() {
		t.Fatal("holding with a selection listener should start a selection")
	}
	e.HandlePointer(mouse(PointerMove, 120, 100))
	e.HandlePointer(mouse(PointerUp, 120, 100))

	if n := len(sel.sels); n != 3 {
		t.Fatalf("selection callbacks = %d, want 3", n)
	}
	if sel.done[0] || sel.done[1] || !sel.done[2] {
		t.Errorf("done flags = %v, want [false false true]", sel.done)
	}
	final := sel.sels[2]
	if final.TopLeft.X != 1 || final.TopLeft.Y != 1 {
		t.Errorf("top left = %d,%d, want 1,1", final.TopLeft.X, final.TopLeft.Y)
	}
	if final.BottomRight.X != 3 || final.BottomRight.Y != 2 {
		t.Errorf("bottom right = %d,%d, want 3,2", final.BottomRight.X, final.BottomRight.Y)
	}
	if final.TopRight.ScreenX != 120 || final.TopRight.ScreenY != 40 {
		t.Errorf("top right = %v,%v, want 120,40", final.TopRight.ScreenX, final.TopRight.ScreenY)
	}
	if e.Selecting() {
		t.Error("selection should end on release")
	}
}

func TestSelectionDraggedUpLeft(t *testing.T) {
	e := newTestEngine(t, false)
	var sel selectionRecorder
	e.SetSelectionListener(&sel, ColorWhite)
	e.SetNextDownSelection(true)

	e.HandlePointer(mouse(PointerDown, 200, 200))
	if !e.Selecting() {
		t.Fatal("SetNextDownSelection should start a selection on down")
	}
	e.HandlePointer(mouse(PointerMove, 100, 150))
	e.HandlePointer(mouse(PointerUp, 100, 150))

	final := sel.sels[len(sel.sels)-1]
	if final.TopLeft.ScreenX != 100 || final.TopLeft.ScreenY != 150 {
		t.Errorf("top left = %v,%v, want 100,150", final.TopLeft.ScreenX, final.TopLeft.ScreenY)
	}
	if final.BottomRight.ScreenX != 200 || final.BottomRight.ScreenY != 200 {
		t.Errorf("bottom right = %v,%v, want 200,200", final.BottomRight.ScreenX, final.BottomRight.ScreenY)
	}
	if e.selectionColor != ColorWhite {
		t.Error("SetSelectionListener should set the rectangle color")
	}
}

func TestPinchZooms(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)

	e.HandlePointer(touch(1, PointerDown, 100, 100))
	e.HandlePointer(touch(2, PointerDown, 200, 100))
	e.HandlePointer(touch(2, PointerMove, 210, 100))
	e.HandlePointer(touch(2, PointerMove, 212, 100))
	if e.ZoomLevel() != 1 {
		t.Fatalf("zoom = %v, want 1 below the pinch threshold", e.ZoomLevel())
	}
	e.HandlePointer(touch(2, PointerMove, 220, 100))
	if e.ZoomLevel() <= 1 {
		t.Errorf("zoom = %v, want > 1 after spreading", e.ZoomLevel())
	}
	e.HandlePointer(touch(2, PointerUp, 220, 100))
	e.HandlePointer(touch(1, PointerUp, 100, 100))
	if len(clicks.events) != 0 {
		t.Error("a pinch should not click")
	}
}

func TestWheelZooms(t *testing.T) {
	e := newTestEngine(t, false)
	e.HandleWheel(-1)
	assertNear(t, "zoom in", e.ZoomLevel(), 1.15)
	e.HandleWheel(0)
	assertNear(t, "no-op", e.ZoomLevel(), 1.15)

	f := newTestEngine(t, false)
	f.HandleWheel(1)
	assertNear(t, "zoom out", f.ZoomLevel(), 0.85)
}

func TestPointerListenerSeesRawEvents(t *testing.T) {
	e := newTestEngine(t, false)
	var seen []PointerAction
	e.SetPointerListener(PointerFunc(func(_ *Engine, ev PointerEvent) {
		seen = append(seen, ev.Action)
	}))
	e.HandlePointer(mouse(PointerDown, 1, 1))
	e.HandlePointer(mouse(PointerMove, 2, 1))
	e.HandlePointer(mouse(PointerUp, 2, 1))

	want := []PointerAction{PointerDown, PointerMove, PointerUp}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestGesturePointerSlots(t *testing.T) {
	var g gestureState
	a := g.pointer(7)
	if g.pointer(7) != a {
		t.Error("pointer should return the same slot for an id")
	}
	b := g.pointer(8)
	if a == b {
		t.Error("different ids should get different slots")
	}
	g.resetPointers()
	if g.pointers[0].used {
		t.Error("resetPointers should free every slot")
	}
}

func TestInputIgnoredAfterDestroy(t *testing.T) {
	e := newTestEngine(t, false)
	var clicks tileRecorder
	e.SetClickListener(&clicks)
	e.Destroy()
	e.HandlePointer(mouse(PointerDown, 1, 1))
	e.HandlePointer(mouse(PointerUp, 1, 1))
	e.HandleWheel(-1)
	if len(clicks.events) != 0 || e.ZoomLevel() != 1 {
		t.Error("destroyed engine should ignore input")
	}
}
