package scroll2d

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

const (
	defaultLabelSize = 20
	chevronSize      = 16
	chevronSpacing   = 10
	barHeight        = 6
)

var (
	defaultMeterColor = Color{1, 0, 0, 1}
	dropShadowColor   = Color{0, 0, 0, 0.25}
)

// Chevron is a small marker drawn under a sprite: an image when Image is
// set, otherwise a colored pip.
type Chevron struct {
	Image *ebiten.Image
	Color Color
}

// SpriteOptions controls DrawSprite. The zero value draws a stationary,
// opaque, unscaled 1x1 sprite with no decorations.
type SpriteOptions struct {
	// Moving sprites are drawn Step twentieths of a cell toward
	// (TargetX, TargetY).
	Moving           bool
	TargetX, TargetY float64
	Step             float64

	// Alpha is the opacity. Zero means opaque.
	Alpha  float64
	ZIndex int
	// TileWidth and TileHeight are the footprint in cells. Zero means 1.
	TileWidth, TileHeight int
	// Angle is a clockwise rotation in degrees.
	Angle float64
	// Scale multiplies the image size. Zero means 1.
	Scale float64
	// YOffset raises the sprite by this many cells.
	YOffset float64
	// Elevation lifts the sprite off the ground by this many cells and
	// drops a shadow under it.
	Elevation float64

	// Meter draws a bar under the sprite filled to this fraction. Zero hides
	// the bar.
	Meter        float64
	MeterColor   Color
	MeterYOffset float64

	Chevrons       []Chevron
	CenterChevrons bool

	Label        string
	LabelSize    float64
	LabelFace    *text.GoTextFaceSource
	LabelYOffset float64
}

// DrawSprite queues img at cell (x, y) and returns the area it covers in
// unscrolled pixels. Stationary isometric sprites are cut into vertical
// slices so each slice sorts against the cells it overlaps, unless fast
// render mode is on.
func (e *Engine) DrawSprite(img *ebiten.Image, x, y float64, opts SpriteOptions) Rect {
	if img == nil || !e.running {
		return Rect{}
	}
	if !opts.Moving {
		opts.TargetX, opts.TargetY = x, y
	}
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1
	}
	if e.fullRender() {
		e.DrawTile(img, x, y, opts.ZIndex, false, alpha)
		return Rect{}
	}
	if !e.cam.CheckVisibility(x, y) {
		return Rect{}
	}
	e.instructionsReceived = true

	if math.IsNaN(opts.Elevation) || math.IsInf(opts.Elevation, 0) {
		opts.Elevation = 0
	}
	if opts.TileWidth <= 0 {
		opts.TileWidth = 1
	}
	if opts.TileHeight <= 0 {
		opts.TileHeight = 1
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	if e.cam.Projection == Isometric && opts.TargetX == x && opts.TargetY == y && !e.fastRender {
		return e.drawSegmented(img, x, y, alpha, &opts)
	}

	cam := e.cam
	dw := float64(img.Bounds().Dx()) * opts.Scale * cam.Zoom
	dh := float64(img.Bounds().Dy()) * opts.Scale * cam.Zoom

	var dx, dy, nearness float64
	if cam.Projection == Isometric {
		lastX := x + float64(opts.TileWidth) - 1
		lastY := y + float64(opts.TileHeight) - 1
		nearness = lastX + lastY
		right, bottom := e.isoAnchor(lastX, lastY, opts.YOffset)
		dx = right - dw
		dy = bottom - dh
	} else {
		nearness = y
		dx = x * cam.grid
		dy = (y-opts.YOffset)*cam.grid + cam.grid - dh
	}

	if opts.Moving && (x != opts.TargetX || y != opts.TargetY) {
		ox, oy := e.stepOffset(x, y, opts.TargetX, opts.TargetY, opts.Step)
		dx += ox
		dy += oy
		if cam.Projection == Isometric {
			nearness = stepNearness(x, opts.TargetX) + stepNearness(y, opts.TargetY)
		}
	}

	if opts.Elevation > 0 {
		e.dropShadow(x, y, opts.ZIndex, opts.TileWidth)
		nearness += opts.Elevation
		dy -= e.elevationLift(opts.Elevation)
	}

	it := e.acquire()
	it.Kind = KindSprite
	it.Image = img
	it.X, it.Y, it.W, it.H = dx, dy, dw, dh
	it.TileX, it.TileY = x, y
	it.TileW, it.TileH = opts.TileWidth, opts.TileHeight
	it.Angle = opts.Angle
	it.ZIndex = opts.ZIndex
	it.Nearness = nearness
	it.SetAlpha(alpha)
	e.main.Push(it)

	e.decorate(y, dx, dy, dw, dh, nearness, &opts)
	if opts.Label != "" {
		e.label(dx, dy, dw, dh, nearness, &opts)
	}
	return Rect{X: dx, Y: dy, Width: dw, Height: dh}
}

// isoAnchor returns the right edge and bottom of the diamond of cell
// (x, y - yOffset).
func (e *Engine) isoAnchor(x, y, yOffset float64) (right, bottom float64) {
	c := e.cam
	bottom = (x+(y-yOffset))*c.quarter + c.half
	right = (x-(y-yOffset))*c.half + c.half
	return right, bottom
}

// stepNearness moves a moving sprite's depth toward the cell it enters.
func stepNearness(from, to float64) float64 {
	switch {
	case to > from:
		return from + 2
	case to < from:
		return from + 1
	}
	return from
}

func (e *Engine) elevationLift(elevation float64) float64 {
	return math.Round(elevation * e.cam.GridSize * e.cam.Zoom)
}

// drawSegmented cuts a stationary isometric sprite into vertical slices half
// a grid wide. Each slice takes the greatest depth among the footprint cells
// its column overlaps.
func (e *Engine) drawSegmented(img *ebiten.Image, x, y, alpha float64, opts *SpriteOptions) Rect {
	cam := e.cam
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	dw := iw * opts.Scale * cam.Zoom
	dh := ih * opts.Scale * cam.Zoom

	lastX := x + float64(opts.TileWidth) - 1
	lastY := y + float64(opts.TileHeight) - 1
	right, bottom := e.isoAnchor(lastX, lastY, opts.YOffset)
	dx := right - dw
	dy := bottom - dh

	segment := cam.GridSize / 2 / opts.Scale
	count := int(math.Round(iw / segment))

	if opts.Elevation > 0 {
		e.dropShadow(x, y, opts.ZIndex, opts.TileWidth)
		dy -= e.elevationLift(opts.Elevation)
	}

	top := x + y
	for i := 0; i < count; i++ {
		left := dx + cam.half*float64(i)
		segRight := left + cam.half

		nearness := x + y
		for sx := x; sx < x+float64(opts.TileWidth); sx++ {
			for sy := y; sy < y+float64(opts.TileHeight); sy++ {
				isoX := (sx - sy) * cam.half
				r := min(isoX+cam.half, right)
				if r >= left && isoX-cam.half <= segRight && sx+sy > nearness {
					nearness = sx + sy
				}
			}
		}
		nearness += opts.Elevation

		it := e.acquire()
		it.Kind = KindSlice
		it.Image = img
		it.X, it.Y, it.W, it.H = dx, dy, dw, dh
		it.TileX, it.TileY = x, y
		it.TileW, it.TileH = opts.TileWidth, opts.TileHeight
		it.ZIndex = opts.ZIndex
		it.Nearness = nearness
		it.TieX, it.TieY = x, y
		it.Slice = SliceAttrs{
			SrcX: segment * float64(i),
			SrcW: segment,
			SrcH: ih,
			DstX: cam.half * float64(i),
		}
		it.SetAlpha(alpha)
		e.main.Push(it)
		top = max(top, nearness)
	}

	e.decorate(y, dx, dy, dw, dh, top, opts)
	if opts.Label != "" {
		e.label(dx, dy, dw, dh, x+y, opts)
	}
	return Rect{X: dx, Y: dy, Width: dw, Height: dh}
}

// dropShadow queues the translucent ellipse under an elevated sprite.
func (e *Engine) dropShadow(x, y float64, z, tileWidth int) {
	e.pushCircle(dropShadowColor, x, y, float64(tileWidth)*e.cam.grid/4, z, 0, false, 0.1)
}

// overlayNearness puts decorations just above the sprite they belong to.
func (e *Engine) overlayNearness(nearness float64) float64 {
	if e.cam.Projection == Isometric {
		return nearness + 2
	}
	return nearness + 1
}

// decorate queues the meter bar and chevrons of a sprite on the above-fold
// queue.
func (e *Engine) decorate(y, dx, dy, dw, dh, nearness float64, opts *SpriteOptions) {
	cam := e.cam
	hadBar := false
	if opts.Meter > 0 {
		hadBar = true
		bar := e.acquire()
		bar.Kind = KindBar
		bar.X = dx
		bar.Y = dy + dh
		if opts.MeterYOffset != 0 {
			bar.Y = ((y-opts.YOffset)+opts.MeterYOffset)*cam.grid + cam.grid
		}
		mw := dw
		if cam.Projection != Isometric {
			mw = math.Round(dw * 0.7)
			bar.X += math.Round(dw * 0.15)
		}
		bar.W = mw
		bar.H = barHeight
		bar.Bar.Fill = mw*opts.Meter - 2
		bar.Color = opts.MeterColor
		if bar.Color == (Color{}) {
			bar.Color = defaultMeterColor
		}
		bar.Nearness = e.overlayNearness(nearness)
		bar.ZIndex = opts.ZIndex + 1
		e.above.Push(bar)
	}

	if len(opts.Chevrons) == 0 {
		return
	}
	cx := dx
	cy := dy + dh
	if hadBar {
		cy += 10
	}
	if opts.CenterChevrons {
		cy = dy + math.Round(dh/2) - 5
		total := 0.0
		for _, ch := range opts.Chevrons {
			if ch.Image != nil {
				total += 2 * chevronSpacing
			} else {
				total += chevronSpacing
			}
		}
		cx = dx + math.Round(dw/2) - math.Round(total/2)
	}
	for _, ch := range opts.Chevrons {
		it := e.acquire()
		it.X, it.Y = cx, cy
		if ch.Image != nil {
			it.Kind = KindMarker
			it.Image = ch.Image
			it.W, it.H = chevronSize, chevronSize
			it.Y -= 5
			cx += chevronSpacing
		} else {
			it.Kind = KindBar
			it.W = 6
			it.H = barHeight
			it.Bar.Fill = 4
			it.Color = ch.Color
		}
		it.Nearness = e.overlayNearness(nearness)
		it.ZIndex = opts.ZIndex + 1
		e.above.Push(it)
		cx += chevronSpacing
	}
}

// label queues the sprite's text label centered on it.
func (e *Engine) label(dx, dy, dw, dh, nearness float64, opts *SpriteOptions) {
	size := opts.LabelSize
	if size <= 0 {
		size = defaultLabelSize
	}
	face := opts.LabelFace
	if face == nil {
		face = e.font
	}
	it := e.acquire()
	it.Kind = KindText
	it.X = dx + math.Round(dw/2)
	it.Y = dy + math.Round(dh/2)
	if opts.LabelYOffset != 0 {
		it.Y += opts.LabelYOffset * e.cam.grid
	}
	it.Color = ColorWhite
	it.Text = TextAttrs{Content: opts.Label, Size: size, Face: face, Stroke: ColorBlack}
	it.Nearness = e.overlayNearness(nearness)
	it.ZIndex = opts.ZIndex + 1
	e.main.Push(it)
}
