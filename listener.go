package scroll2d

import "time"

// Listeners are invoked synchronously on the goroutine driving Context.Tick.
// They may call any draw or camera method of the engine they receive, but
// must not call Context.Tick. A nil listener disables the callback.

// DrawListener issues the draw calls for one frame. full is true while a
// full-map render is in progress, in which case every cell should be drawn.
type DrawListener interface {
	Draw(e *Engine, full bool)
}

// DrawFunc adapts a function to DrawListener.
type DrawFunc func(e *Engine, full bool)

// Draw calls f(e, full).
func (f DrawFunc) Draw(e *Engine, full bool) { f(e, full) }

// UpdateListener runs game logic at the engine's logic rate. now is the tick
// timestamp; delta is the elapsed time in logic intervals (1 when on time).
type UpdateListener interface {
	Update(e *Engine, now time.Duration, delta float64)
}

// UpdateFunc adapts a function to UpdateListener.
type UpdateFunc func(e *Engine, now time.Duration, delta float64)

// Update calls f(e, now, delta).
func (f UpdateFunc) Update(e *Engine, now time.Duration, delta float64) { f(e, now, delta) }

// ViewportListener is told when the view offset or zoom changes. manual is
// true when the change came from a gesture or zoom call.
type ViewportListener interface {
	ViewportChanged(e *Engine, manual bool)
}

// ViewportFunc adapts a function to ViewportListener.
type ViewportFunc func(e *Engine, manual bool)

// ViewportChanged calls f(e, manual).
func (f ViewportFunc) ViewportChanged(e *Engine, manual bool) { f(e, manual) }

// TileEvent describes a pointer gesture resolved to a tile.
type TileEvent struct {
	// X and Y are the floored cell; PX and PY the fractional position.
	X, Y   int
	PX, PY float64
	// ScreenX and ScreenY are the pointer position in logical pixels.
	ScreenX, ScreenY float64
	Pointer          PointerType
	Button           MouseButton
}

// TileListener receives click, right click, hover, hold and paint gestures.
type TileListener interface {
	OnTile(e *Engine, ev TileEvent)
}

// TileFunc adapts a function to TileListener.
type TileFunc func(e *Engine, ev TileEvent)

// OnTile calls f(e, ev).
func (f TileFunc) OnTile(e *Engine, ev TileEvent) { f(e, ev) }

// ReleaseListener is told when a hold gesture ends.
type ReleaseListener interface {
	Released(e *Engine)
}

// ReleaseFunc adapts a function to ReleaseListener.
type ReleaseFunc func(e *Engine)

// Released calls f(e).
func (f ReleaseFunc) Released(e *Engine) { f(e) }

// SelectionCorner is one corner of a selection rectangle.
type SelectionCorner struct {
	ScreenX, ScreenY float64
	X, Y             int
}

// Selection is a rectangle dragged out on screen.
type Selection struct {
	TopLeft, TopRight, BottomLeft, BottomRight SelectionCorner
}

// SelectionListener receives selection progress while dragging and the final
// rectangle when the pointer is released (done is true).
type SelectionListener interface {
	Selection(e *Engine, sel Selection, done bool)
}

// SelectionFunc adapts a function to SelectionListener.
type SelectionFunc func(e *Engine, sel Selection, done bool)

// Selection calls f(e, sel, done).
func (f SelectionFunc) Selection(e *Engine, sel Selection, done bool) { f(e, sel, done) }

// PointerListener receives every raw pointer event before gesture handling.
type PointerListener interface {
	Pointer(e *Engine, ev PointerEvent)
}

// PointerFunc adapts a function to PointerListener.
type PointerFunc func(e *Engine, ev PointerEvent)

// Pointer calls f(e, ev).
func (f PointerFunc) Pointer(e *Engine, ev PointerEvent) { f(e, ev) }
