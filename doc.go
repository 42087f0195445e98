// Package scroll2d is a 2D tile map renderer for [Ebitengine].
//
// scroll2d draws scrolling tile maps in orthogonal or isometric projection,
// with depth-sorted sprites, a cached static tile layer, shadow-casting
// lights and pointer gestures mapped to tile coordinates.
//
// # Quick start
//
// A [Context] drives every [Engine] registered on it and implements
// [ebiten.Game], so the simplest program is:
//
//	ctx, _ := scroll2d.NewContext()
//	eng, _ := scroll2d.NewEngine(ctx, scroll2d.DefaultOptions())
//	eng.SetMapDimensions(64, 64)
//	eng.SetDrawListener(scroll2d.DrawFunc(func(e *scroll2d.Engine, delta float64) {
//		b := e.ViewBounds()
//		for x := b.MinX; x <= b.MaxX; x++ {
//			for y := b.MinY; y <= b.MaxY; y++ {
//				e.DrawStaticTile(grass, x, y, 0)
//			}
//		}
//	}))
//	ctx.Run("My Map")
//
// Games that own their loop call [Context.Tick] once per frame instead and
// draw [Engine.Canvas] themselves.
//
// # Frames
//
// Each tick an engine runs the update listener at its logic rate, calls the
// draw listener, sorts the queued items by z-index, nearness and draw order,
// composites the static layer, the sorted queue and the light map, and then
// draws sprite meters and markers on top.
//
// # Tiles and sprites
//
// [Engine.DrawTile] and [Engine.DrawSprite] queue per-frame items.
// [Engine.DrawStaticTile] stores tiles that rarely change; they are baked
// into a cached surface that is only redrawn when a tile or the camera
// changes. Wide isometric sprites are cut into one-cell slices so walls and
// characters standing between them overlap correctly.
//
// # Lighting
//
// [Engine.SetColorFilter] darkens the scene and [Engine.DrawLight] cuts
// lights through it. In orthogonal mode tiles drawn with blocksLight cast
// shadows: each light casts 360 rays against the blocker edges and the
// resulting polygon masks its gradient.
//
// # Input
//
// Pointer events are resolved to tiles and delivered to the click, hover,
// hold, paint, release and selection listeners. Dragging scrolls the map and
// pinching or the mouse wheel zooms. Input can also be scripted with
// [LoadInputScript] for automated visual tests.
//
// [Ebitengine]: https://ebitengine.org
package scroll2d
