package ecs

import (
	"io"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/scroll2d"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yohamta/donburi"
)

func newEngine(t *testing.T) *scroll2d.Engine {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	opts := scroll2d.DefaultOptions()
	opts.Width, opts.Height = 400, 300
	opts.Scale = 1
	opts.Logger = log
	e, err := scroll2d.NewEngine(nil, opts)
	require.NoError(t, err)
	t.Cleanup(e.Context().Close)
	return e
}

func click(e *scroll2d.Engine, x, y float64, button scroll2d.MouseButton) {
	e.HandlePointer(scroll2d.PointerEvent{X: x, Y: y, Button: button, Action: scroll2d.PointerDown})
	e.HandlePointer(scroll2d.PointerEvent{X: x, Y: y, Button: button, Action: scroll2d.PointerUp})
}

func TestBridgePublishesClicks(t *testing.T) {
	world := donburi.NewWorld()
	e := newEngine(t)
	NewBridge(world).Attach(e)

	var got []TileGestureEvent
	TileGestureEventType.Subscribe(world, func(_ donburi.World, ev TileGestureEvent) {
		got = append(got, ev)
	})

	click(e, 85, 125, scroll2d.MouseButtonLeft)
	click(e, 5, 5, scroll2d.MouseButtonRight)
	assert.Empty(t, got, "events are queued until processed")

	TileGestureEventType.ProcessEvents(world)
	require.Len(t, got, 2)
	assert.Equal(t, GestureClick, got[0].Kind)
	assert.Equal(t, e.ID(), got[0].Engine)
	assert.Equal(t, 2, got[0].Tile.X)
	assert.Equal(t, 3, got[0].Tile.Y)
	assert.Equal(t, GestureRightClick, got[1].Kind)
}

func TestBridgeHover(t *testing.T) {
	world := donburi.NewWorld()
	e := newEngine(t)
	NewBridge(world).AttachHover(e)

	var kinds []GestureKind
	TileGestureEventType.Subscribe(world, func(_ donburi.World, ev TileGestureEvent) {
		kinds = append(kinds, ev.Kind)
	})
	e.HandlePointer(scroll2d.PointerEvent{X: 10, Y: 10, Action: scroll2d.PointerMove})
	TileGestureEventType.ProcessEvents(world)

	assert.Equal(t, []GestureKind{GestureHover}, kinds)
}

func TestBridgeSelection(t *testing.T) {
	world := donburi.NewWorld()
	e := newEngine(t)
	NewBridge(world).AttachSelection(e, scroll2d.Color{})
	e.SetNextDownSelection(true)

	var sels []SelectionEvent
	SelectionEventType.Subscribe(world, func(_ donburi.World, ev SelectionEvent) {
		sels = append(sels, ev)
	})
	e.HandlePointer(scroll2d.PointerEvent{X: 40, Y: 40, Action: scroll2d.PointerDown})
	e.HandlePointer(scroll2d.PointerEvent{X: 120, Y: 80, Action: scroll2d.PointerMove})
	e.HandlePointer(scroll2d.PointerEvent{X: 120, Y: 80, Action: scroll2d.PointerUp})
	SelectionEventType.ProcessEvents(world)

	require.NotEmpty(t, sels)
	last := sels[len(sels)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 1, last.Selection.TopLeft.X)
	assert.Equal(t, 3, last.Selection.BottomRight.X)
	assert.Equal(t, 2, last.Selection.BottomRight.Y)
}

func TestMultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	e := newEngine(t)
	NewBridge(world).Attach(e)

	var count1, count2 int
	TileGestureEventType.Subscribe(world, func(donburi.World, TileGestureEvent) { count1++ })
	TileGestureEventType.Subscribe(world, func(donburi.World, TileGestureEvent) { count2++ })

	click(e, 1, 1, scroll2d.MouseButtonLeft)
	TileGestureEventType.ProcessEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestGestureKindString(t *testing.T) {
	assert.Equal(t, "paint", GesturePaint.String())
	assert.Equal(t, "unknown", GestureKind(99).String())
}

func TestDrawEntities(t *testing.T) {
	world := donburi.NewWorld()
	e := newEngine(t)
	img := ebiten.NewImage(40, 40)

	onScreen := world.Entry(world.Create(Position, Sprite))
	Position.SetValue(onScreen, PositionData{X: 1, Y: 1})
	Sprite.SetValue(onScreen, SpriteData{Image: img})

	offScreen := world.Entry(world.Create(Position, Sprite))
	Position.SetValue(offScreen, PositionData{X: 500, Y: 500})
	Sprite.SetValue(offScreen, SpriteData{Image: img})

	lamp := world.Entry(world.Create(Position, Light))
	Position.SetValue(lamp, PositionData{X: 2, Y: 2})
	Light.SetValue(lamp, LightData{Options: scroll2d.LightOptions{Radius: 3}})

	world.Create(Position)

	assert.Equal(t, 1, DrawEntities(world, e))
	assert.Equal(t, 1, e.Lighting().Pending())
}
