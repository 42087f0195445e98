package scroll2d

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// isoSquashRatio is the radius, in grid cells, above which isometric lights
// are drawn as ellipses half as tall as they are wide.
const isoSquashRatio = 0.8

var (
	shadowColor  = Color{0, 0, 0, shadowFloor}
	litMaskColor = Color{1, 0, 0, 1}
)

// LightingEngine gathers blockers and light requests during a frame and
// composites them over the scene once the main queue has been drawn.
//
// Blockers are reset at the start of every frame. Light sources are returned
// to the context's LightPool after compositing.
type LightingEngine struct {
	blockers []Blocker
	sources  []*LightSource

	caster    shadowCaster
	lights    *LightPool
	scratch   *surfacePool
	gradients *gradientCache

	accum *Surface
	final *Surface

	verts []ebiten.Vertex
	inds  []uint16
	op    ebiten.DrawImageOptions
}

func newLightingEngine(lights *LightPool, scratch *surfacePool, gradients *gradientCache, w, h int) *LightingEngine {
	return &LightingEngine{
		lights:    lights,
		scratch:   scratch,
		gradients: gradients,
		accum:     NewSurface(w, h),
		final:     NewSurface(w, h),
	}
}

// AddBlocker records a grid-sized footprint at (x, y) in scrolled screen
// space.
func (l *LightingEngine) AddBlocker(x, y float64) {
	l.blockers = append(l.blockers, Blocker{x, y})
}

// Blockers returns this frame's blockers. The slice MUST NOT be retained.
func (l *LightingEngine) Blockers() []Blocker { return l.blockers }

// AddLight queues a light for this frame.
func (l *LightingEngine) AddLight(src *LightSource) {
	l.sources = append(l.sources, src)
}

// Pending returns the number of queued lights.
func (l *LightingEngine) Pending() int { return len(l.sources) }

func (l *LightingEngine) beginFrame() {
	l.blockers = l.blockers[:0]
}

func (l *LightingEngine) resize(w, h int) {
	l.accum.Resize(w, h)
	l.final.Resize(w, h)
}

// discard recycles queued lights without drawing them.
func (l *LightingEngine) discard() {
	for i, src := range l.sources {
		l.lights.Release(src)
		l.sources[i] = nil
	}
	l.sources = l.sources[:0]
}

// lightPass carries the per-frame parameters of Composite.
type lightPass struct {
	viewX, viewY float64
	scale        float64
	grid         float64
	projection   Projection
	// darkness is the ambient tint; nil leaves unlit areas untouched.
	darkness *Color
}

// Composite draws every queued light into the accumulation surface over the
// ambient darkness, then multiplies the lit result onto scene.
func (l *LightingEngine) Composite(scene *ebiten.Image, p lightPass) {
	if len(l.sources) == 0 && p.darkness == nil {
		return
	}

	if p.darkness != nil {
		l.accum.Fill(*p.darkness)
	} else {
		l.accum.Clear()
	}

	for i, src := range l.sources {
		x := math.Floor(0.5 + src.X - p.viewX)
		y := math.Floor(0.5 + src.Y - p.viewY)
		l.drawLight(src, x, y, p)
		l.lights.Release(src)
		l.sources[i] = nil
	}
	l.sources = l.sources[:0]

	final := l.final.Image()
	final.Clear()
	var op ebiten.DrawImageOptions
	op.Blend = BlendNone.EbitenBlend()
	final.DrawImage(scene, &op)
	op.Blend = BlendSourceIn.EbitenBlend()
	final.DrawImage(l.accum.Image(), &op)

	op.Blend = BlendMultiply.EbitenBlend()
	scene.DrawImage(final, &op)
}

// drawLight renders one light centered at (x, y) in scrolled logical pixels.
func (l *LightingEngine) drawLight(src *LightSource, x, y float64, p lightPass) {
	r := src.Radius
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return
	}
	grad := l.gradients.get(r)
	gs := float64(grad.Bounds().Dx()) / 2

	op := &l.op
	if p.projection == Isometric {
		squash := 1.0
		if r > p.grid*isoSquashRatio {
			squash = 0.5
		}
		op.GeoM.Reset()
		op.GeoM.Scale(r/gs, r/gs*squash)
		op.GeoM.Translate(x-r, y-r*squash)
		op.GeoM.Scale(p.scale, p.scale)
		l.tint(op, src)
		op.Blend = BlendLighten.EbitenBlend()
		l.accum.Image().DrawImage(grad, op)
		return
	}

	poly, lit, occluded := l.caster.Cast(x, y, r, p.grid, l.blockers)
	if !occluded {
		op.GeoM.Reset()
		op.GeoM.Scale(r/gs, r/gs)
		op.GeoM.Translate(x-r, y-r)
		op.GeoM.Scale(p.scale, p.scale)
		l.tint(op, src)
		op.Blend = BlendLighten.EbitenBlend()
		l.accum.Image().DrawImage(grad, op)
		return
	}

	size := int(math.Ceil(r * 2))
	pre := l.scratch.Acquire(size, size)
	mask := l.scratch.Acquire(size, size)

	op.GeoM.Reset()
	op.GeoM.Scale(r/gs, r/gs)
	l.tint(op, src)
	op.Blend = BlendNormal.EbitenBlend()
	pre.DrawImage(grad, op)

	mask.Fill(shadowColor.toRGBA())
	for _, b := range lit {
		vector.DrawFilledRect(mask, float32(b.X), float32(b.Y), float32(p.grid), float32(p.grid), litMaskColor.toRGBA(), false)
	}
	l.fillFan(mask, Vec2{r, r}, poly)

	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = BlendDestinationIn.EbitenBlend()
	pre.DrawImage(mask, op)

	op.GeoM.Reset()
	op.GeoM.Translate(x-r, y-r)
	op.GeoM.Scale(p.scale, p.scale)
	op.Blend = BlendLighten.EbitenBlend()
	l.accum.Image().DrawImage(pre, op)

	l.scratch.Release(mask)
	l.scratch.Release(pre)
}

func (l *LightingEngine) tint(op *ebiten.DrawImageOptions, src *LightSource) {
	op.ColorScale.Reset()
	i := float32(clamp01(src.Intensity))
	op.ColorScale.Scale(float32(src.Color.R)*i, float32(src.Color.G)*i, float32(src.Color.B)*i, i)
}

// fillFan fills the star-shaped polygon around center with opaque red,
// using a triangle fan on the white pixel.
func (l *LightingEngine) fillFan(dst *ebiten.Image, center Vec2, poly []Vec2) {
	n := len(poly)
	if n < 2 {
		return
	}
	l.verts = l.verts[:0]
	l.inds = l.inds[:0]
	l.verts = append(l.verts, fanVertex(center))
	for _, pt := range poly {
		l.verts = append(l.verts, fanVertex(pt))
	}
	for i := 0; i < n; i++ {
		next := (i+1)%n + 1
		l.inds = append(l.inds, 0, uint16(i+1), uint16(next))
	}
	var op ebiten.DrawTrianglesOptions
	dst.DrawTriangles(l.verts, l.inds, WhitePixel, &op)
}

func fanVertex(p Vec2) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(litMaskColor.R),
		ColorG: float32(litMaskColor.G),
		ColorB: float32(litMaskColor.B),
		ColorA: float32(litMaskColor.A),
	}
}

// Dispose releases the lighting surfaces.
func (l *LightingEngine) Dispose() {
	l.discard()
	l.accum.Dispose()
	l.final.Dispose()
}
