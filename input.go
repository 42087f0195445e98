package scroll2d

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

	holdDelay          = 700 * time.Millisecond
	defaultPaintWindow = 600 * time.Millisecond
	mouseDragDeadZone  = 6.0
	touchDragDeadZone  = 12.0
	pinchThreshold     = 3.0
	selectionWidth     = 4
)

// PointerEvent is a normalized pointer event in logical viewport pixels.
type PointerEvent struct {
	ID     int
	X, Y   float64
	Type   PointerType
	Button MouseButton
	Action PointerAction
}

type pointerState struct {
	id         int
	x, y       float64
	used       bool
	down       bool
	primary    bool
	rightClick bool
}

// gestureState tracks the pointer state machine of one engine.
type gestureState struct {
	pointers [maxPointers]pointerState
	down     int

	isDown     bool
	didMove    bool
	dragged    bool
	isHold     bool
	pinching   bool
	usingMouse bool
	usingTouch bool

	startX, startY   float64
	curX, curY       float64
	hasCur           bool
	actualX, actualY float64

	holdPending bool
	holdAt      time.Duration
	holdX       float64
	holdY       float64

	lastDistance float64
	hasDistance  bool

	selecting         bool
	nextDownSelection bool
	selX, selY        float64
	selTop            Vec2
	selW, selH        float64

	painting   bool
	paintUntil time.Duration
	paintDone  func()
	paintX     int
	paintY     int
	hasPaint   bool

	now time.Duration
}

func (g *gestureState) pointer(id int) *pointerState {
	free := -1
	for i := range g.pointers {
		p := &g.pointers[i]
		if p.used && p.id == id {
			return p
		}
		if !p.used && free < 0 {
			free = i
		}
	}
	if free < 0 {
		free = maxPointers - 1
	}
	p := &g.pointers[free]
	*p = pointerState{id: id, used: true, primary: g.down == 0}
	return p
}

func (g *gestureState) resetPointers() {
	g.pointers = [maxPointers]pointerState{}
	g.down = 0
	g.hasDistance = false
}

// --- listener setters ---

// SetClickListener sets the callback for clicks and taps.
func (e *Engine) SetClickListener(l TileListener) { e.onClick = l }

// SetRightClickListener sets the callback for right clicks. Without one,
// right clicks go to the click listener.
func (e *Engine) SetRightClickListener(l TileListener) { e.onRightClick = l }

// SetHoverListener sets the callback for mouse and pen movement.
func (e *Engine) SetHoverListener(l TileListener) { e.onHover = l }

// SetHoldListener sets the callback for long presses.
func (e *Engine) SetHoldListener(l TileListener) { e.onHold = l }

// SetReleaseListener sets the callback for the end of a hold.
func (e *Engine) SetReleaseListener(l ReleaseListener) { e.onRelease = l }

// SetPaintListener sets the callback for cells dragged over while painting.
func (e *Engine) SetPaintListener(l TileListener) { e.onPaint = l }

// SetSelectionListener enables rectangle selection on long press and sets
// its callback. c is the rectangle color; the zero color keeps the current
// one.
func (e *Engine) SetSelectionListener(l SelectionListener, c Color) {
	e.onSelection = l
	if c != (Color{}) {
		e.selectionColor = c
	}
}

// SetPointerListener sets the callback for raw pointer events.
func (e *Engine) SetPointerListener(l PointerListener) { e.onPointer = l }

// SetNextDownSelection makes the next pointer down start a selection
// immediately.
func (e *Engine) SetNextDownSelection(on bool) { e.gestures.nextDownSelection = on }

// AlertPainting turns drags into paint strokes until the pointer is
// released or timeout passes without a new call. done runs when painting
// times out. A zero timeout means 600ms.
func (e *Engine) AlertPainting(done func(), timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultPaintWindow
	}
	g := &e.gestures
	g.painting = true
	g.paintDone = done
	g.paintUntil = g.now + timeout
}

// ClearPainting ends painting. done, if set by AlertPainting, runs unless
// silent is true.
func (e *Engine) ClearPainting(silent bool) {
	g := &e.gestures
	g.painting = false
	cb := g.paintDone
	g.paintDone = nil
	if !silent && cb != nil {
		cb()
	}
}

// Painting reports whether paint mode is on.
func (e *Engine) Painting() bool { return e.gestures.painting }

// Selecting reports whether a selection rectangle is being dragged.
func (e *Engine) Selecting() bool { return e.gestures.selecting }

// UsingTouch reports whether the last pointer event came from a touch.
func (e *Engine) UsingTouch() bool { return e.gestures.usingTouch }

// --- state machine ---

func (e *Engine) tileEvent(x, y float64, typ PointerType, button MouseButton) TileEvent {
	g := &e.gestures
	pos := e.cam.PositionToCoords(x, y)
	return TileEvent{
		X: pos.X, Y: pos.Y, PX: pos.PX, PY: pos.PY,
		ScreenX: g.actualX, ScreenY: g.actualY,
		Pointer: typ, Button: button,
	}
}

// HandlePointer feeds one pointer event to the gesture recognizer.
func (e *Engine) HandlePointer(ev PointerEvent) {
	if !e.running {
		return
	}
	switch ev.Action {
	case PointerDown:
		e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev)
	case PointerUp:
		e.pointerUp(ev)
	}
}

func (e *Engine) pointerDown(ev PointerEvent) {
	g := &e.gestures
	g.dragged = false
	g.usingTouch = ev.Type == PointerTouch
	g.usingMouse = ev.Type == PointerMouse

	p := g.pointer(ev.ID)
	p.x, p.y = ev.X, ev.Y
	if !p.down {
		p.down = true
		g.down++
	}

	g.selecting = false
	if g.nextDownSelection {
		g.selecting = true
		g.nextDownSelection = false
	}
	g.actualX, g.actualY = ev.X, ev.Y
	p.rightClick = ev.Type == PointerMouse && ev.Button != MouseButtonLeft

	if e.onPointer != nil {
		e.onPointer.Pointer(e, ev)
	}

	g.startX, g.startY = ev.X, ev.Y
	g.didMove = false
	g.isDown = true
	g.isHold = false

	if e.onHold != nil || e.onSelection != nil {
		g.holdX, g.holdY = ev.X, ev.Y
		if !p.rightClick && !g.selecting {
			g.holdPending = true
			g.holdAt = g.now + holdDelay
		} else if e.onSelection != nil && g.selecting {
			e.beginSelection()
		}
	}

	if g.down > 1 {
		g.selecting = false
		g.holdPending = false
	}
}

func (e *Engine) pointerMove(ev PointerEvent) {
	g := &e.gestures
	g.usingTouch = ev.Type == PointerTouch
	g.usingMouse = ev.Type == PointerMouse

	p := g.pointer(ev.ID)
	g.actualX, g.actualY = ev.X, ev.Y

	if e.onPointer != nil {
		e.onPointer.Pointer(e, ev)
	}
	p.x, p.y = ev.X, ev.Y

	if g.down == 2 {
		g.didMove = true
		e.pinch()
		return
	}

	oldX, oldY := g.curX, g.curY
	if !g.hasCur {
		oldX, oldY = 0, 0
	}
	g.curX, g.curY = ev.X, ev.Y
	g.hasCur = true

	pos := e.cam.PositionToCoords(ev.X, ev.Y)
	if ev.Type != PointerTouch && e.onHover != nil {
		e.onHover.OnTile(e, e.tileEvent(ev.X, ev.Y, ev.Type, ev.Button))
	}

	if !g.isDown || g.isHold {
		return
	}

	if g.selecting {
		e.setSelectionPoints(ev.X, ev.Y)
		if e.onSelection != nil {
			e.onSelection.Selection(e, e.currentSelection(), false)
		}
		return
	}

	if g.didMove {
		e.changed = true
		if g.painting && e.onPaint != nil {
			if g.hasPaint && g.paintX == pos.X && g.paintY == pos.Y {
				return
			}
			g.paintX, g.paintY, g.hasPaint = pos.X, pos.Y, true
			e.onPaint.OnTile(e, e.tileEvent(ev.X, ev.Y, ev.Type, ev.Button))
			return
		}
		g.dragged = true
		e.cam.ModifyView(oldX-g.curX, oldY-g.curY)
		e.notifyViewport(true)
		return
	}

	dead := mouseDragDeadZone
	if g.usingTouch {
		dead = touchDragDeadZone
	}
	if math.Hypot(ev.X-g.startX, ev.Y-g.startY) > dead {
		g.didMove = true
		g.holdPending = false
		g.isHold = false
	}
}

func (e *Engine) pointerUp(ev PointerEvent) {
	g := &e.gestures
	g.dragged = false
	g.usingTouch = ev.Type == PointerTouch

	p := g.pointer(ev.ID)
	if p.down {
		g.down--
		p.down = false
	}
	g.holdPending = false
	p.primary = false
	rightClick := p.rightClick

	if g.pinching {
		g.selecting = false
	}
	g.pinching = false

	if !g.isDown {
		return
	}

	if g.isHold {
		g.isDown = false
		if e.onRelease != nil {
			e.onRelease.Released(e)
		}
		return
	}

	g.painting = false
	g.hasPaint = false

	if g.down <= 0 {
		g.resetPointers()
	}

	if g.selecting {
		g.selecting = false
		g.isDown = false
		if e.onSelection != nil {
			e.onSelection.Selection(e, e.currentSelection(), true)
		}
		return
	}

	if !g.didMove && e.onClick != nil {
		ev2 := e.tileEvent(g.startX, g.startY, ev.Type, ev.Button)
		g.isDown = false
		g.resetPointers()
		if rightClick && e.onRightClick != nil {
			e.onRightClick.OnTile(e, ev2)
		} else {
			e.onClick.OnTile(e, ev2)
		}
	}

	if e.onPointer != nil {
		e.onPointer.Pointer(e, ev)
	}

	g.isDown = false
	g.didMove = false
	g.actualX, g.actualY = 0, 0
}

// HandleWheel zooms for a mouse wheel step. dy < 0 zooms in.
func (e *Engine) HandleWheel(dy float64) {
	if !e.running || dy == 0 {
		return
	}
	e.DoZoom(dy < 0, dy)
}

// pinch zooms when the distance between two touching pointers changes by
// more than pinchThreshold pixels.
func (e *Engine) pinch() {
	g := &e.gestures
	var a, b *pointerState
	for i := range g.pointers {
		p := &g.pointers[i]
		if !p.used || !p.down {
			continue
		}
		if a == nil {
			a = p
		} else if b == nil {
			b = p
		}
	}
	if a == nil || b == nil {
		return
	}
	g.selecting = false
	g.pinching = true

	dist := math.Hypot(a.x-b.x, a.y-b.y)
	if !g.hasDistance {
		g.lastDistance = dist
		g.hasDistance = true
		return
	}
	if dist > g.lastDistance+pinchThreshold {
		e.DoZoom(true, 0)
		g.lastDistance = dist
	}
	if dist < g.lastDistance-pinchThreshold {
		e.DoZoom(false, 0)
		g.lastDistance = dist
	}
}

// updateGestures fires the hold timer and the paint timeout.
func (e *Engine) updateGestures(now time.Duration) {
	g := &e.gestures
	g.now = now

	if g.holdPending && now >= g.holdAt {
		g.holdPending = false
		g.didMove = false
		if !g.painting {
			if e.onSelection != nil {
				e.beginSelection()
			} else if e.onHold != nil {
				g.isHold = true
				e.onHold.OnTile(e, e.tileEvent(g.holdX, g.holdY, PointerMouse, MouseButtonLeft))
			}
		}
	}

	if g.painting && now >= g.paintUntil {
		e.ClearPainting(false)
	}
}

func (e *Engine) beginSelection() {
	g := &e.gestures
	g.selecting = true
	g.selX, g.selY = g.holdX, g.holdY
	e.setSelectionPoints(g.holdX, g.holdY)
	if e.onSelection != nil {
		e.onSelection.Selection(e, e.currentSelection(), false)
	}
}

func (e *Engine) setSelectionPoints(x, y float64) {
	g := &e.gestures
	g.selTop.X, g.selW = min(x, g.selX), math.Abs(x-g.selX)
	g.selTop.Y, g.selH = min(y, g.selY), math.Abs(y-g.selY)
}

func (e *Engine) corner(x, y float64) SelectionCorner {
	pos := e.cam.PositionToCoords(x, y)
	return SelectionCorner{ScreenX: x, ScreenY: y, X: pos.X, Y: pos.Y}
}

func (e *Engine) currentSelection() Selection {
	g := &e.gestures
	rx := g.selTop.X + g.selW
	by := g.selTop.Y + g.selH
	return Selection{
		TopLeft:     e.corner(g.selTop.X, g.selTop.Y),
		TopRight:    e.corner(rx, g.selTop.Y),
		BottomLeft:  e.corner(g.selTop.X, by),
		BottomRight: e.corner(rx, by),
	}
}

// drawSelection outlines the selection rectangle being dragged.
func (e *Engine) drawSelection(dst *ebiten.Image) {
	g := &e.gestures
	if !g.selecting || g.pinching {
		return
	}
	s := float32(e.scale)
	vector.StrokeRect(dst,
		float32(g.selTop.X)*s, float32(g.selTop.Y)*s,
		float32(g.selW)*s, float32(g.selH)*s,
		selectionWidth*s, e.selectionColor.toRGBA(), false)
}

// --- Ebitengine polling ---

// pointerPoller turns Ebitengine mouse and touch state into PointerEvents.
type pointerPoller struct {
	mouseDown   bool
	mouseButton MouseButton
	mouseX      float64
	mouseY      float64

	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
	touchDown [maxPointers]bool
	touchPos  [maxPointers]Vec2

	events []PointerEvent
}

// poll returns the pointer events since the previous call. The slice is
// reused by the next call.
func (pp *pointerPoller) poll() []PointerEvent {
	pp.events = pp.events[:0]
	pp.pollMouse()
	pp.pollTouches()
	return pp.events
}

func (pp *pointerPoller) pollMouse() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	pressed := left || right || middle

	moved := x != pp.mouseX || y != pp.mouseY
	pp.mouseX, pp.mouseY = x, y

	switch {
	case pressed && !pp.mouseDown:
		switch {
		case left:
			pp.mouseButton = MouseButtonLeft
		case right:
			pp.mouseButton = MouseButtonRight
		default:
			pp.mouseButton = MouseButtonMiddle
		}
		pp.mouseDown = true
		pp.emit(0, x, y, PointerMouse, PointerDown, pp.mouseButton)
	case !pressed && pp.mouseDown:
		pp.mouseDown = false
		pp.emit(0, x, y, PointerMouse, PointerUp, pp.mouseButton)
	case moved:
		pp.emit(0, x, y, PointerMouse, PointerMove, pp.mouseButton)
	}
}

func (pp *pointerPoller) pollTouches() {
	pp.touchIDs = ebiten.AppendTouchIDs(pp.touchIDs[:0])

	var active [maxPointers]bool
	for _, tid := range pp.touchIDs {
		slot := pp.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		pos := Vec2{float64(tx), float64(ty)}
		if !pp.touchDown[slot] {
			pp.touchDown[slot] = true
			pp.touchPos[slot] = pos
			pp.emit(slot, pos.X, pos.Y, PointerTouch, PointerDown, MouseButtonLeft)
			continue
		}
		if pos != pp.touchPos[slot] {
			pp.touchPos[slot] = pos
			pp.emit(slot, pos.X, pos.Y, PointerTouch, PointerMove, MouseButtonLeft)
		}
	}

	for i := 1; i < maxPointers; i++ {
		if pp.touchUsed[i] && !active[i] {
			if pp.touchDown[i] {
				pos := pp.touchPos[i]
				pp.emit(i, pos.X, pos.Y, PointerTouch, PointerUp, MouseButtonLeft)
			}
			pp.touchUsed[i] = false
			pp.touchDown[i] = false
			pp.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns -1 when
// every slot is taken.
func (pp *pointerPoller) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if pp.touchUsed[i] && pp.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !pp.touchUsed[i] {
			pp.touchUsed[i] = true
			pp.touchMap[i] = tid
			return i
		}
	}
	return -1
}

func (pp *pointerPoller) emit(id int, x, y float64, typ PointerType, action PointerAction, button MouseButton) {
	pp.events = append(pp.events, PointerEvent{ID: id, X: x, Y: y, Type: typ, Button: button, Action: action})
}
