package ecs

import (
	"github.com/phanxgames/scroll2d"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GestureKind identifies the gesture behind a TileGestureEvent.
type GestureKind uint8

const (
	GestureClick GestureKind = iota
	GestureRightClick
	GestureHover
	GestureHold
	GestureRelease
	GesturePaint
)

func (k GestureKind) String() string {
	switch k {
	case GestureClick:
		return "click"
	case GestureRightClick:
		return "right-click"
	case GestureHover:
		return "hover"
	case GestureHold:
		return "hold"
	case GestureRelease:
		return "release"
	case GesturePaint:
		return "paint"
	}
	return "unknown"
}

// TileGestureEvent is a pointer gesture resolved to a tile. Release events
// carry no tile.
type TileGestureEvent struct {
	Kind   GestureKind
	Engine uint64
	Tile   scroll2d.TileEvent
}

// SelectionEvent reports a selection rectangle in progress, or the final
// one when Done is set.
type SelectionEvent struct {
	Engine    uint64
	Selection scroll2d.Selection
	Done      bool
}

// TileGestureEventType carries tile gestures. Subscribe to it in your ECS
// systems and call ProcessEvents once per update.
var TileGestureEventType = events.NewEventType[TileGestureEvent]()

// SelectionEventType carries selection rectangles.
var SelectionEventType = events.NewEventType[SelectionEvent]()

// Bridge publishes engine gestures into a Donburi world.
type Bridge struct {
	world donburi.World
}

// NewBridge creates a bridge publishing into world.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{world: world}
}

// World returns the world events are published into.
func (b *Bridge) World() donburi.World { return b.world }

func (b *Bridge) tile(kind GestureKind) scroll2d.TileListener {
	return scroll2d.TileFunc(func(e *scroll2d.Engine, ev scroll2d.TileEvent) {
		TileGestureEventType.Publish(b.world, TileGestureEvent{Kind: kind, Engine: e.ID(), Tile: ev})
	})
}

// Attach replaces the click, right click, hold, release and paint listeners
// of e with publishers. Returns b for chaining.
func (b *Bridge) Attach(e *scroll2d.Engine) *Bridge {
	e.SetClickListener(b.tile(GestureClick))
	e.SetRightClickListener(b.tile(GestureRightClick))
	e.SetHoldListener(b.tile(GestureHold))
	e.SetPaintListener(b.tile(GesturePaint))
	e.SetReleaseListener(scroll2d.ReleaseFunc(func(e *scroll2d.Engine) {
		TileGestureEventType.Publish(b.world, TileGestureEvent{Kind: GestureRelease, Engine: e.ID()})
	}))
	return b
}

// AttachHover publishes mouse movement over tiles. Hover events arrive on
// every pointer move, so it is separate from Attach.
func (b *Bridge) AttachHover(e *scroll2d.Engine) *Bridge {
	e.SetHoverListener(b.tile(GestureHover))
	return b
}

// AttachSelection enables rectangle selection on e and publishes it. c is
// the rectangle color; the zero color keeps the engine default.
func (b *Bridge) AttachSelection(e *scroll2d.Engine, c scroll2d.Color) *Bridge {
	e.SetSelectionListener(scroll2d.SelectionFunc(func(e *scroll2d.Engine, sel scroll2d.Selection, done bool) {
		SelectionEventType.Publish(b.world, SelectionEvent{Engine: e.ID(), Selection: sel, Done: done})
	}), c)
	return b
}
