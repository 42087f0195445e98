package scroll2d

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// DefaultMinZoom and DefaultMaxZoom bound SetZoomLevel.
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 3.0

	// DefaultLerpSpeed is the fraction of the remaining distance covered per
	// frame by LerpToCoord.
	DefaultLerpSpeed = 0.15
	// DefaultLerpAccuracy is the distance in tiles at which a lerp completes.
	DefaultLerpAccuracy = 1.0

	zoomStep       = 0.15
	minLerpStep    = 0.001
	unboundedLimit = 99999999
)

// Limits is the allowed range of the camera view offset.
type Limits struct {
	XMin, XMax, YMin, YMax float64
}

// ViewBounds is the inclusive range of tile cells the camera can see.
// When map dimensions are known the range is clamped to the map.
type ViewBounds struct {
	MinX, MinY, MaxX, MaxY int
}

// Contains reports whether the cell (x, y) lies within the bounds.
func (b ViewBounds) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// cameraLerp is an in-progress LerpToCoord.
type cameraLerp struct {
	x, y     float64
	speed    float64
	accuracy float64
	done     func()
}

// scrollAnim holds active scroll-to tweens for the view offset.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
	done   func()
}

// Camera holds the view offset, zoom and grid metrics of an engine, and does
// all the projection math that depends on them.
//
// The view offset (ViewX, ViewY) is the world pixel at the top-left corner of
// the viewport. Mutating it directly must be followed by CheckBounds.
type Camera struct {
	ViewX, ViewY float64
	// WinW and WinH are the viewport size in logical pixels.
	WinW, WinH float64
	Zoom       float64
	MinZoom    float64
	MaxZoom    float64
	// GridSize is the unzoomed tile size in pixels.
	GridSize   float64
	Projection Projection
	// FitGridToHeight derives GridSize from the viewport height so the whole
	// map height fits on screen, and pins the vertical offset to zero.
	FitGridToHeight bool
	// ViewPadding widens visibility culling and view bounds, in pixels.
	ViewPadding float64

	grid      float64
	half      float64
	quarter   float64
	twentieth float64

	mapW, mapH           int
	mapTotalW, mapTotalH float64

	limits Limits
	bounds ViewBounds

	lerp   *cameraLerp
	scroll *scrollAnim
}

// NewCamera creates a camera with no map dimensions (unbounded scrolling).
func NewCamera(gridSize, width, height float64, proj Projection) *Camera {
	c := &Camera{
		WinW:       width,
		WinH:       height,
		Zoom:       1,
		MinZoom:    DefaultMinZoom,
		MaxZoom:    DefaultMaxZoom,
		GridSize:   gridSize,
		Projection: proj,
		mapW:       -1,
		mapH:       -1,
	}
	c.updateGrid()
	c.setLimits()
	c.CheckBounds()
	return c
}

// Grid returns the relative grid size: GridSize × Zoom rounded to an even
// integer.
func (c *Camera) Grid() float64 { return c.grid }

// HalfGrid returns Grid()/2.
func (c *Camera) HalfGrid() float64 { return c.half }

// QuarterGrid returns Grid()/4.
func (c *Camera) QuarterGrid() float64 { return c.quarter }

// TwentiethGrid returns Grid()/20, the length of one motion step.
func (c *Camera) TwentiethGrid() float64 { return c.twentieth }

func (c *Camera) updateGrid() {
	g := math.Round(c.GridSize * c.Zoom)
	if math.Mod(g, 2) != 0 {
		g++
	}
	if g < 2 {
		g = 2
	}
	c.grid = g
	c.half = g / 2
	c.quarter = g / 4
	c.twentieth = g / 20
	if c.mapW > 0 && c.mapH > 0 {
		c.mapTotalW = float64(c.mapW) * g
		c.mapTotalH = float64(c.mapH) * g
	}
}

// SetViewport updates the viewport size and recomputes every metric derived
// from it.
func (c *Camera) SetViewport(width, height float64) {
	c.WinW = width
	c.WinH = height
	if c.FitGridToHeight && c.mapH > 0 {
		c.GridSize = height / float64(c.mapH)
	}
	c.updateGrid()
	c.setLimits()
	c.updateViewBounds()
}

// SetMapDimensions sets the map size in tiles. A negative size clears the map,
// which makes scrolling unbounded. It reports whether a map is now set.
func (c *Camera) SetMapDimensions(width, height int) bool {
	if width < 0 || height < 0 {
		c.mapW, c.mapH = -1, -1
		c.mapTotalW, c.mapTotalH = -1, -1
		c.setLimits()
		return false
	}
	c.mapW, c.mapH = width, height
	c.mapTotalW = float64(width) * c.grid
	c.mapTotalH = float64(height) * c.grid
	c.setLimits()
	return true
}

// MapDimensions returns the map size in tiles, or (-1, -1) when unset.
func (c *Camera) MapDimensions() (int, int) { return c.mapW, c.mapH }

// HasMap reports whether positive map dimensions are set.
func (c *Camera) HasMap() bool { return c.mapW > 0 && c.mapH > 0 }

// Limits returns the current view offset limits.
func (c *Camera) Limits() Limits { return c.limits }

func (c *Camera) setLimits() {
	if !c.HasMap() {
		c.limits = Limits{-unboundedLimit, unboundedLimit, -unboundedLimit, unboundedLimit}
		return
	}
	if c.Projection == Isometric {
		c.limits = Limits{
			XMin: -(c.mapTotalW / 2) - c.grid,
			XMax: c.mapTotalW/2 - c.WinW + c.grid*2,
			YMin: -c.grid,
			YMax: c.mapTotalH/2 - c.WinH + c.grid*2,
		}
		return
	}
	c.limits = Limits{
		XMin: -c.WinW / 2,
		XMax: c.mapTotalW - c.WinW/2,
		YMin: -c.WinH / 2,
		YMax: c.mapTotalH - c.WinH/2,
	}
	if c.FitGridToHeight {
		c.limits.YMin, c.limits.YMax = 0, 0
	}
}

// CheckBounds clamps the view offset to the limits and refreshes the view
// bounds. Applying it twice is the same as applying it once.
func (c *Camera) CheckBounds() {
	if c.ViewX < c.limits.XMin {
		c.ViewX = c.limits.XMin
	}
	if c.ViewX > c.limits.XMax {
		c.ViewX = c.limits.XMax
	}
	if c.ViewY < c.limits.YMin {
		c.ViewY = c.limits.YMin
	}
	if c.ViewY > c.limits.YMax {
		c.ViewY = c.limits.YMax
	}
	c.updateViewBounds()
}

func (c *Camera) updateViewBounds() {
	p := c.ViewPadding
	lo := c.PositionToCoords(-p, -p)
	hi := c.PositionToCoords(c.WinW+p, c.WinH+p)
	b := ViewBounds{MinX: lo.X, MinY: lo.Y, MaxX: hi.X, MaxY: hi.Y}
	if c.Projection == Isometric {
		tr := c.PositionToCoords(c.WinW+p, -p)
		bl := c.PositionToCoords(-p, c.WinH+p)
		b.MinY = tr.Y
		b.MaxY = bl.Y
	}
	if c.HasMap() {
		b.MinX = max(b.MinX, 0)
		b.MinY = max(b.MinY, 0)
		b.MaxX = min(b.MaxX, c.mapW)
		b.MaxY = min(b.MaxY, c.mapH)
	}
	c.bounds = b
}

// ViewBounds returns the range of cells currently on screen.
func (c *Camera) ViewBounds() ViewBounds { return c.bounds }

// Project returns the unscrolled pixel position of a tile coordinate.
func (c *Camera) Project(x, y float64) (float64, float64) {
	return c.Projection.ToScreen(x, y, c.grid)
}

// ToScreen returns the screen position of a tile coordinate.
func (c *Camera) ToScreen(x, y float64) (float64, float64) {
	px, py := c.Projection.ToScreen(x, y, c.grid)
	return px - c.ViewX, py - c.ViewY
}

// PositionToCoords resolves a screen pixel to tile space.
func (c *Camera) PositionToCoords(x, y float64) Coord {
	px, py := c.Projection.ToWorld(x+c.ViewX, y+c.ViewY, c.grid)
	return newCoord(px, py)
}

// CenterPosition returns the tile under the middle of the viewport.
func (c *Camera) CenterPosition() Coord {
	return c.PositionToCoords(c.WinW/2, c.WinH/2)
}

// CheckVisibility reports whether a tile lies within the viewport grown by one
// grid cell plus ViewPadding on each side.
func (c *Camera) CheckVisibility(x, y float64) bool {
	dx, dy := c.Project(x, y)
	pad := c.grid + c.ViewPadding
	return dx > c.ViewX-pad && dx < c.WinW+c.ViewX+pad &&
		dy > c.ViewY-pad && dy < c.WinH+c.ViewY+pad
}

// CenterOnCoord moves the view so tile (x, y) sits in the middle of the
// viewport. With exact set, x and y are world pixels instead of tiles.
func (c *Camera) CenterOnCoord(x, y float64, exact bool) {
	switch {
	case exact:
		c.ViewX = x - c.WinW/2
		c.ViewY = y - c.WinH/2
	case c.Projection == Isometric:
		c.ViewX = (x-y)*c.half - c.WinW/2
		c.ViewY = (x+y)*c.quarter - c.WinH/2
	default:
		c.ViewX = math.Floor(x*c.grid + c.half - c.WinW/2)
		c.ViewY = math.Floor(y*c.grid + c.half - c.WinH/2)
	}
	if c.FitGridToHeight {
		c.ViewY = 0
	}
	c.CheckBounds()
}

// ModifyView shifts the view offset by (dx, dy) pixels and clamps it.
func (c *Camera) ModifyView(dx, dy float64) {
	c.ViewX += dx
	c.ViewY += dy
	c.CheckBounds()
}

// clampZoom applies the 1.0 snap band and the zoom range.
func (c *Camera) clampZoom(level float64) float64 {
	if level >= 0.9 && level <= 1.1 {
		level = 1
	}
	if level > c.MaxZoom {
		level = c.MaxZoom
	}
	if level < c.MinZoom {
		level = c.MinZoom
	}
	return level
}

// zoomTarget returns the level DoZoom moves to. A non-zero amt is a relative
// change clamped to ±0.15; zero steps by 0.15.
func (c *Camera) zoomTarget(zoomIn bool, amt float64) float64 {
	lvl := c.Zoom
	if amt != 0 {
		amt = math.Max(-zoomStep, math.Min(zoomStep, amt))
		if (zoomIn && lvl < c.MaxZoom) || (!zoomIn && lvl > c.MinZoom) {
			lvl -= lvl * amt
		}
		return lvl
	}
	if zoomIn && lvl < c.MaxZoom {
		lvl += zoomStep
	}
	if !zoomIn && lvl > c.MinZoom {
		lvl -= zoomStep
	}
	return lvl
}

// setZoom changes the zoom level, keeping the same tile centered.
func (c *Camera) setZoom(level float64) {
	center := c.CenterPosition()
	c.Zoom = c.clampZoom(level)
	c.updateGrid()
	c.SetMapDimensions(c.mapW, c.mapH)
	c.CenterOnCoord(float64(center.X), float64(center.Y), false)
}

// LerpTo starts easing the view toward tile (x, y). done, if non-nil, runs
// once the center is within accuracy tiles of the target. A speed or
// accuracy <= 0 uses the default.
func (c *Camera) LerpTo(x, y, speed, accuracy float64, done func()) {
	if speed <= 0 {
		speed = DefaultLerpSpeed
	}
	if accuracy <= 0 {
		accuracy = DefaultLerpAccuracy
	}
	c.lerp = &cameraLerp{x: x, y: y, speed: speed, accuracy: accuracy, done: done}
}

// CancelLerp discards a pending LerpTo without running its callback.
func (c *Camera) CancelLerp() { c.lerp = nil }

// Lerping reports whether a LerpTo is in progress.
func (c *Camera) Lerping() bool { return c.lerp != nil }

// stepLerp advances an active lerp by one frame. It returns the completion
// callback when the target has been reached, so the caller can run it after
// the camera state is consistent.
func (c *Camera) stepLerp() (moved bool, done func()) {
	l := c.lerp
	if l == nil {
		return false, nil
	}
	pos := c.CenterPosition()
	if math.Hypot(pos.PX-l.x, pos.PY-l.y) < l.accuracy {
		c.lerp = nil
		return false, l.done
	}
	lx := minStep((l.x - pos.PX) * l.speed)
	ly := minStep((l.y - pos.PY) * l.speed)
	// Center on the exact fractional position. Centering on the cell would
	// add half a tile each frame and never converge on orthogonal maps.
	px, py := c.Project(pos.PX+lx, pos.PY+ly)
	c.CenterOnCoord(px, py, true)
	return true, nil
}

func minStep(v float64) float64 {
	if v > 0 && v < minLerpStep {
		return minLerpStep
	}
	if v < 0 && v > -minLerpStep {
		return -minLerpStep
	}
	return v
}

// ScrollTo tweens the view so tile (x, y) ends up centered, over duration
// seconds. A nil easeFn uses ease.OutQuad. done, if non-nil, runs when the
// tween finishes.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc, done func()) {
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	fromX, fromY := c.ViewX, c.ViewY
	c.CenterOnCoord(x, y, false)
	toX, toY := c.ViewX, c.ViewY
	c.ViewX, c.ViewY = fromX, fromY
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(fromX), float32(toX), duration, easeFn),
		tweenY: gween.New(float32(fromY), float32(toY), duration, easeFn),
		done:   done,
	}
}

// Scrolling reports whether a ScrollTo tween is active.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// updateScroll advances the scroll tween by dt seconds.
func (c *Camera) updateScroll(dt float32) (moved bool, done func()) {
	s := c.scroll
	if s == nil {
		return false, nil
	}
	if !s.doneX {
		val, fin := s.tweenX.Update(dt)
		c.ViewX = float64(val)
		s.doneX = fin
	}
	if !s.doneY {
		val, fin := s.tweenY.Update(dt)
		c.ViewY = float64(val)
		s.doneY = fin
	}
	if c.FitGridToHeight {
		c.ViewY = 0
	}
	c.CheckBounds()
	if s.doneX && s.doneY {
		c.scroll = nil
		return true, s.done
	}
	return true, nil
}
