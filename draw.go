package scroll2d

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// acquire borrows an item from the context pool and stamps its draw order.
func (e *Engine) acquire() *RenderItem {
	it := e.ctx.items.Acquire()
	it.Seq = e.seq
	e.seq++
	return it
}

// fullRender reports whether a full-map render is collecting this frame.
func (e *Engine) fullRender() bool { return e.fullMap != nil }

// layoutTile positions a tile image for cell (x, y). Orthogonal tiles are
// bottom-aligned in their cell and keep the image aspect ratio; isometric
// tiles are anchored at the bottom-left of the diamond.
func (e *Engine) layoutTile(it *RenderItem, img *ebiten.Image, x, y float64) {
	c := e.cam
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	w, h := c.grid, c.grid

	if c.Projection == Isometric {
		h = c.half
		if iw != ih*2 && iw > 0 {
			h = ih / (iw / c.grid)
		}
		ix, iy := c.Project(x, y)
		it.X = ix - c.half
		it.Y = iy + c.half - h
		it.W, it.H = w, h
		it.Nearness = x + y
		return
	}

	if iw != ih && iw > 0 {
		h = c.grid * ih / iw
	}
	w, h = math.Ceil(w), math.Ceil(h)
	it.X = x * c.grid
	it.Y = y*c.grid + c.grid - h
	it.W, it.H = w, h
	it.Nearness = y
}

// DrawTile queues img at cell (x, y). Tiles outside the view are skipped.
// blocksLight marks the tile as a shadow caster for orthogonal lights.
func (e *Engine) DrawTile(img *ebiten.Image, x, y float64, z int, blocksLight bool, alpha float64) {
	if img == nil || !e.running {
		return
	}
	e.instructionsReceived = true
	if !e.fullRender() && !e.cam.CheckVisibility(x, y) {
		return
	}
	it := e.acquire()
	it.Kind = KindSprite
	it.Image = img
	e.layoutTile(it, img, x, y)
	it.TileX, it.TileY = x, y
	it.ZIndex = z
	it.BlocksLight = blocksLight
	it.SetAlpha(alpha)
	e.main.Push(it)
}

// DrawStaticTile stores img at cell (x, y) on static layer z. Static tiles
// are baked into a cached surface and only redrawn when they or the camera
// change. Cells outside a known map and negative z-indexes are dropped.
func (e *Engine) DrawStaticTile(img *ebiten.Image, x, y, z int) {
	if img == nil || !e.running || z < 0 {
		return
	}
	if mw, mh := e.cam.MapDimensions(); mw >= 0 && mh >= 0 {
		if x < 0 || x >= mw || y < 0 || y >= mh {
			return
		}
	}
	if e.static.raise(&e.ctx.items, z) {
		e.changed = true
	}
	if e.fullRender() {
		e.DrawTile(img, float64(x), float64(y), z, false, 1)
		return
	}
	e.staticCallMade = true
	e.instructionsReceived = true

	existing := e.static.Item(x, y, z)
	if existing != nil {
		if existing.Image == img {
			return
		}
		existing.Image = img
		e.layoutTile(existing, img, float64(x), float64(y))
		e.static.Set(&e.ctx.items, x, y, z, existing)
		e.changed = true
		return
	}
	it := e.ctx.items.Acquire()
	it.Kind = KindStaticTile
	it.Image = img
	it.ZIndex = z
	it.TileX, it.TileY = float64(x), float64(y)
	e.layoutTile(it, img, float64(x), float64(y))
	e.static.Set(&e.ctx.items, x, y, z, it)
	e.changed = true
}

// StaticItem returns the static item at cell (x, y) on layer z, or nil.
func (e *Engine) StaticItem(x, y, z int) *RenderItem { return e.static.Item(x, y, z) }

// Static returns the static layer.
func (e *Engine) Static() *StaticLayer { return e.static }

// DrawSquare fills cell (x, y) with c: a square in orthogonal mode, a
// diamond in isometric mode. blend selects the compositing operation.
func (e *Engine) DrawSquare(c Color, x, y float64, z int, blend BlendMode) {
	if !e.running {
		return
	}
	if !e.fullRender() && !e.cam.CheckVisibility(x, y) {
		return
	}
	e.instructionsReceived = true
	it := e.acquire()
	it.Kind = KindSquare
	it.Color = c
	it.Square.Blend = blend
	it.X, it.Y = e.cam.Project(x, y)
	it.TileX, it.TileY = x, y
	it.Nearness = e.cam.Projection.Nearness(x, y)
	it.ZIndex = z
	e.main.Push(it)
}

// DrawLine queues a line between tile positions (x, y) and (x2, y2).
// centerInTile moves both ends to the middle of their cells.
func (e *Engine) DrawLine(c Color, x, y, x2, y2 float64, z int, centerInTile bool, width float64, dashed bool) {
	if !e.running {
		return
	}
	e.instructionsReceived = true
	cam := e.cam
	it := e.acquire()
	it.Kind = KindLine
	it.Color = c
	it.ZIndex = z
	it.Line = LineAttrs{Width: width, Dashed: dashed}
	it.X, it.Y = cam.Project(x, y)
	it.Line.X2, it.Line.Y2 = cam.Project(x2, y2)
	if centerInTile {
		if cam.Projection == Isometric {
			it.Y += cam.quarter
			it.Line.Y2 += cam.quarter
		} else {
			it.X += cam.half
			it.Y += cam.half
			it.Line.X2 += cam.half
			it.Line.Y2 += cam.half
		}
	}
	it.Nearness = x*2 + y*2 + float64(z)
	e.main.Push(it)
}

// DrawCircle queues a circle of tileRadius cells centered on (x, y). In
// isometric mode it is an ellipse half as tall. A zero width fills it.
func (e *Engine) DrawCircle(c Color, x, y, tileRadius float64, z int, width float64, dashed bool) {
	if !e.running {
		return
	}
	e.instructionsReceived = true
	e.pushCircle(c, x, y, tileRadius*e.cam.grid/2, z, width, dashed, 0.56)
}

func (e *Engine) pushCircle(c Color, x, y, radius float64, z int, width float64, dashed bool, lift float64) {
	cam := e.cam
	it := e.acquire()
	it.Kind = KindCircle
	it.Color = c
	it.ZIndex = z
	it.Circle = CircleAttrs{Radius: radius, Width: width, Dashed: dashed}
	it.X, it.Y = cam.Project(x, y)
	if cam.Projection == Isometric {
		it.Y += cam.quarter
	} else {
		it.X += cam.half
		it.Y += cam.half
	}
	it.Nearness = cam.Projection.Nearness(x, y) + lift
	e.main.Push(it)
}

// DrawText queues stroked bold text centered on cell (x, y). size is the
// unzoomed font size in pixels.
func (e *Engine) DrawText(s string, x, y float64, fill, stroke Color, size float64, z int) {
	if !e.running || s == "" {
		return
	}
	e.instructionsReceived = true
	cam := e.cam
	it := e.acquire()
	it.Kind = KindText
	it.Color = fill
	it.ZIndex = z
	it.Text = TextAttrs{Content: s, Size: size, Face: e.font, Stroke: stroke}
	it.X, it.Y = cam.Project(x, y)
	if cam.Projection != Isometric {
		it.X += cam.half
		it.Y += cam.half
	}
	e.main.Push(it)
}

// LightOptions describes a light for DrawLight.
type LightOptions struct {
	// Radius is in tiles. Zero means one tile.
	Radius float64
	// Color is the light tint. The zero value is white.
	Color Color
	// Intensity is the center brightness in [0, 1]. Zero means 0.2.
	Intensity float64
	// Moving lights are offset Step twentieths of a cell toward
	// (TargetX, TargetY).
	Moving           bool
	TargetX, TargetY float64
	Step             float64
}

// DrawLight queues a light centered on cell (x, y) for this frame.
func (e *Engine) DrawLight(x, y float64, opts LightOptions) {
	if !e.running {
		return
	}
	if !e.fullRender() && !e.cam.CheckVisibility(x, y) {
		return
	}
	radius := opts.Radius
	if radius == 0 {
		radius = 1
	}
	c := opts.Color
	if c == (Color{}) {
		c = ColorWhite
	}
	intensity := opts.Intensity
	if intensity == 0 {
		intensity = 0.2
	}

	cam := e.cam
	ux, uy := cam.Project(x, y)
	if cam.Projection != Isometric {
		ux += cam.half
		uy += cam.half
	}
	if opts.Moving {
		dx, dy := e.stepOffset(x, y, opts.TargetX, opts.TargetY, opts.Step)
		ux += dx
		uy += dy
	}
	e.light.AddLight(e.ctx.lights.Acquire(ux, uy, radius*cam.grid, c, intensity))
}

// stepOffset returns the pixel offset of something step twentieths of a cell
// along its way from (x, y) toward (tx, ty).
func (e *Engine) stepOffset(x, y, tx, ty, step float64) (dx, dy float64) {
	if x == tx && y == ty {
		return 0, 0
	}
	d := e.cam.twentieth * step
	if e.cam.Projection == Isometric {
		switch {
		case tx > x:
			dx += d / 2
			dy += d / 4
		case tx < x:
			dx -= d / 2
			dy -= d / 4
		}
		switch {
		case ty > y:
			dx -= d / 2
			dy += d / 4
		case ty < y:
			dx += d / 2
			dy -= d / 4
		}
		return dx, dy
	}
	switch {
	case tx > x:
		dx += d
	case tx < x:
		dx -= d
	}
	switch {
	case ty > y:
		dy += d
	case ty < y:
		dy -= d
	}
	return dx, dy
}
