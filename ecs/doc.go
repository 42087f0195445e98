// Package ecs connects scroll2d engines to a [Donburi] world.
//
// [Bridge] publishes tile gestures (click, hold, paint, selection) as typed
// Donburi events, and [DrawEntities] draws every entity that carries a
// [Position] together with a [Sprite] or a [Light].
//
// Usage:
//
//	world := donburi.NewWorld()
//	ecs.NewBridge(world).Attach(engine)
//	ecs.TileGestureEventType.Subscribe(world, onGesture)
//
//	engine.SetDrawListener(scroll2d.DrawFunc(func(e *scroll2d.Engine, _ bool) {
//		ecs.DrawEntities(world, e)
//	}))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
