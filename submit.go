package scroll2d

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// sliceOverlap widens segmented slices to hide seams between them.
	sliceOverlap = 1
	dashOn       = 4
	dashOff      = 10
	// ellipseSegments is the number of edges used to approximate circles.
	ellipseSegments = 48
	textStrokeWidth = 2
)

// painter holds the scratch buffers used to draw shapes. After warmup it does
// not allocate.
type painter struct {
	verts []ebiten.Vertex
	inds  []uint16
	pts   []Vec2
	op    ebiten.DrawImageOptions
	tri   ebiten.DrawTrianglesOptions
}

// fillConvex fills a convex polygon with c as a triangle fan.
func (p *painter) fillConvex(dst *ebiten.Image, pts []Vec2, c Color, alpha float64, blend BlendMode) {
	n := len(pts)
	if n < 3 {
		return
	}
	p.verts = p.verts[:0]
	p.inds = p.inds[:0]
	a := float32(clamp01(c.A * alpha))
	for _, pt := range pts {
		p.verts = append(p.verts, ebiten.Vertex{
			DstX:   float32(pt.X),
			DstY:   float32(pt.Y),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: float32(c.R),
			ColorG: float32(c.G),
			ColorB: float32(c.B),
			ColorA: a,
		})
	}
	for i := 1; i < n-1; i++ {
		p.inds = append(p.inds, 0, uint16(i), uint16(i+1))
	}
	p.tri.Blend = blend.EbitenBlend()
	dst.DrawTriangles(p.verts, p.inds, WhitePixel, &p.tri)
}

// strokePath strokes the polyline through pts, optionally closing it and
// optionally dashed with the 4 on, 10 off pattern.
func (p *painter) strokePath(dst *ebiten.Image, pts []Vec2, closed bool, width float64, c Color, dashed bool, dashScale float64) {
	n := len(pts)
	if n < 2 || width <= 0 {
		return
	}
	clr := c.toRGBA()
	w := float32(width)
	phase := 0.0
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		if !dashed {
			vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), w, clr, true)
			continue
		}
		phase = dashLine(dst, a, b, w, clr, phase, dashScale)
	}
}

// dashLine draws a dashed segment starting phase pixels into the dash
// pattern and returns the phase at its end.
func dashLine(dst *ebiten.Image, a, b Vec2, w float32, clr colorRGBA, phase, scale float64) float64 {
	on, off := dashOn*scale, dashOff*scale
	period := on + off
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length == 0 {
		return phase
	}
	ux, uy := (b.X-a.X)/length, (b.Y-a.Y)/length
	pos := 0.0
	for pos < length {
		inPeriod := math.Mod(phase+pos, period)
		if inPeriod < on {
			end := min(pos+on-inPeriod, length)
			vector.StrokeLine(dst,
				float32(a.X+ux*pos), float32(a.Y+uy*pos),
				float32(a.X+ux*end), float32(a.Y+uy*end),
				w, clr, true)
			pos = end
		} else {
			pos += period - inPeriod
		}
	}
	return math.Mod(phase+length, period)
}

// ellipse fills p.pts with points on an ellipse around (cx, cy).
func (p *painter) ellipse(cx, cy, rx, ry float64) []Vec2 {
	p.pts = p.pts[:0]
	for i := 0; i < ellipseSegments; i++ {
		a := float64(i) * 2 * math.Pi / ellipseSegments
		p.pts = append(p.pts, Vec2{cx + rx*math.Cos(a), cy + ry*math.Sin(a)})
	}
	return p.pts
}

// screenPos returns where an item lands on screen in logical pixels.
// Isometric multi-cell items shift back to their first cell; orthogonal
// positions are rounded to whole pixels.
func (e *Engine) screenPos(it *RenderItem) (float64, float64) {
	c := e.cam
	if c.Projection == Isometric {
		ox := float64(it.TileW-1) * c.half
		oy := float64(it.TileH-1) * c.quarter
		return it.X - c.ViewX - ox, it.Y - c.ViewY - oy
	}
	return math.Floor(0.5 + it.X - c.ViewX), math.Floor(0.5 + it.Y - c.ViewY)
}

// submit draws one queued item onto dst.
func (e *Engine) submit(dst *ebiten.Image, it *RenderItem) {
	c := e.cam
	x, y := e.screenPos(it)

	if e.fullMap != nil && it.Kind != KindLine && it.Kind != KindCircle {
		if x+it.W < 0 || y+it.H < 0 || x > c.WinW || y > c.WinH {
			if it.Kind != KindBar && it.Kind != KindSquare {
				e.fullMap.add(e, it)
			}
			return
		}
	}
	if it.Kind == KindLine && (x > c.WinW || y > c.WinH) {
		return
	}

	if it.BlocksLight && c.Projection != Isometric {
		by := y
		if e.doubleHeightTiles {
			by += c.grid
		}
		e.light.AddBlocker(x, by)
	}

	switch it.Kind {
	case KindText:
		e.drawText(dst, it.Text.Content, it.Text.Face, it.Text.Size*c.Zoom, x, y, it.Color, it.Text.Stroke, textStrokeWidth, it.Alpha())
	case KindLine:
		e.submitLine(dst, it, x, y)
	case KindCircle:
		e.submitCircle(dst, it, x, y)
	case KindSquare:
		e.submitSquare(dst, it, x, y)
	case KindBar:
		e.submitBar(dst, it, x, y)
	case KindSlice:
		e.submitSlice(dst, it, x, y)
	case KindMarker:
		e.submitImage(dst, it, x, y, false)
	default:
		e.submitImage(dst, it, x, y, e.fullMap != nil)
	}
}

func (e *Engine) submitImage(dst *ebiten.Image, it *RenderItem, x, y float64, record bool) {
	img := it.Image
	if img == nil {
		return
	}
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if iw == 0 || ih == 0 {
		return
	}
	half := e.cam.half
	op := &e.paint.op
	op.GeoM.Reset()
	op.GeoM.Scale(it.W/float64(iw), it.H/float64(ih))
	if it.Angle != 0 {
		op.GeoM.Translate(-half, -half)
		op.GeoM.Rotate(it.Angle * math.Pi / 180)
		op.GeoM.Translate(half, half)
	}
	op.GeoM.Translate(x, y)
	op.GeoM.Scale(e.scale, e.scale)
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(clamp01(it.Alpha())))
	op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(img, op)

	if record {
		e.fullMap.add(e, it)
	}
}

func (e *Engine) submitSlice(dst *ebiten.Image, it *RenderItem, x, y float64) {
	half := e.cam.half
	if y+it.H < 0 || x+it.Slice.DstX+half < 0 {
		return
	}
	img := it.Image
	if img == nil {
		return
	}
	s := it.Slice
	src := image.Rect(int(math.Floor(s.SrcX)), 0, int(math.Ceil(s.SrcX+s.SrcW)), int(math.Ceil(s.SrcH)))
	src = src.Intersect(img.Bounds())
	if src.Empty() {
		return
	}
	sub := img.SubImage(src).(*ebiten.Image)

	op := &e.paint.op
	op.GeoM.Reset()
	op.GeoM.Scale((half+sliceOverlap)/float64(src.Dx()), it.H/float64(src.Dy()))
	op.GeoM.Translate(x+s.DstX, y)
	op.GeoM.Scale(e.scale, e.scale)
	op.ColorScale.Reset()
	op.ColorScale.ScaleAlpha(float32(clamp01(it.Alpha())))
	op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(sub, op)
}

func (e *Engine) submitLine(dst *ebiten.Image, it *RenderItem, x, y float64) {
	c := e.cam
	x2 := math.Floor(0.5 + it.Line.X2 - c.ViewX)
	y2 := math.Floor(0.5 + it.Line.Y2 - c.ViewY)
	s := e.scale
	p := &e.paint
	p.pts = append(p.pts[:0], Vec2{x * s, y * s}, Vec2{x2 * s, y2 * s})
	p.strokePath(dst, p.pts, false, it.Line.Width*s, it.Color.WithAlpha(it.Color.A*it.Alpha()), it.Line.Dashed, s)
}

func (e *Engine) submitCircle(dst *ebiten.Image, it *RenderItem, x, y float64) {
	s := e.scale
	r := it.Circle.Radius * s
	ry := r
	if e.cam.Projection == Isometric {
		ry = r / 2
	}
	clr := it.Color.WithAlpha(it.Color.A * it.Alpha())
	p := &e.paint
	pts := p.ellipse(x*s, y*s, r, ry)
	if it.Circle.Width > 0 {
		p.strokePath(dst, pts, true, it.Circle.Width*s, clr, it.Circle.Dashed, s)
		return
	}
	p.fillConvex(dst, pts, clr, 1, BlendNormal)
}

func (e *Engine) submitSquare(dst *ebiten.Image, it *RenderItem, x, y float64) {
	c := e.cam
	s := e.scale
	p := &e.paint
	if c.Projection == Isometric {
		p.pts = append(p.pts[:0],
			Vec2{x * s, y * s},
			Vec2{(x + c.half) * s, (y + c.quarter) * s},
			Vec2{x * s, (y + c.half) * s},
			Vec2{(x - c.half) * s, (y + c.quarter) * s},
		)
	} else {
		g := c.grid + 1
		p.pts = append(p.pts[:0],
			Vec2{x * s, y * s},
			Vec2{(x + g) * s, y * s},
			Vec2{(x + g) * s, (y + g) * s},
			Vec2{x * s, (y + g) * s},
		)
	}
	p.fillConvex(dst, p.pts, it.Color, 1, it.Square.Blend)
}

// submitBar draws a meter: a black frame barHeight tall with the colored
// fill inset by one pixel.
func (e *Engine) submitBar(dst *ebiten.Image, it *RenderItem, x, y float64) {
	s := float32(e.scale)
	fx, fy := float32(x), float32(y)
	vector.DrawFilledRect(dst, fx*s, fy*s, float32(it.W)*s, barHeight*s, ColorBlack.toRGBA(), false)
	fill := float32(max(it.Bar.Fill, 0))
	if fill > 0 {
		vector.DrawFilledRect(dst, (fx+1)*s, (fy+1)*s, fill*s, (barHeight-2)*s, it.Color.toRGBA(), false)
	}
}

// drawText draws s centered on (x, y) in logical pixels with a stroke of
// the given width around the fill.
func (e *Engine) drawText(dst *ebiten.Image, s string, src *text.GoTextFaceSource, size, x, y float64, fill, stroke Color, strokeWidth, alpha float64) {
	if s == "" || size <= 0 {
		return
	}
	if src == nil {
		src = e.font
	}
	sc := e.scale
	face := &text.GoTextFace{Source: src, Size: size * sc}
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter

	if strokeWidth > 0 {
		d := strokeWidth / 2 * sc
		for _, off := range strokeOffsets {
			op.GeoM.Reset()
			op.GeoM.Translate(x*sc+off.X*d, y*sc+off.Y*d)
			op.ColorScale.Reset()
			scaleColor(&op.ColorScale, stroke, alpha)
			text.Draw(dst, s, face, op)
		}
	}
	op.GeoM.Reset()
	op.GeoM.Translate(x*sc, y*sc)
	op.ColorScale.Reset()
	scaleColor(&op.ColorScale, fill, alpha)
	text.Draw(dst, s, face, op)
}

var strokeOffsets = [...]Vec2{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
