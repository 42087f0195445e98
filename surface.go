package scroll2d

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is a persistent offscreen canvas sized to a viewport. Engines keep
// one for the frame, one for the static layer and two for lighting.
type Surface struct {
	image *ebiten.Image
	w, h  int
}

// NewSurface creates a canvas of the given size. Sizes below 1 are raised
// to 1.
func NewSurface(w, h int) *Surface {
	w, h = max(w, 1), max(h, 1)
	return &Surface{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (s *Surface) Image() *ebiten.Image {
	return s.image
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	return s.w
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	return s.h
}

// Clear fills the surface with transparent black.
func (s *Surface) Clear() {
	s.image.Clear()
}

// Fill fills the entire surface with the given color.
func (s *Surface) Fill(c Color) {
	s.image.Fill(c.toRGBA())
}

// DrawImageAt draws src at the given position with the specified blend mode.
func (s *Surface) DrawImageAt(src *ebiten.Image, x, y float64, blend BlendMode) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(x, y)
	op.Blend = blend.EbitenBlend()
	s.image.DrawImage(src, &op)
}

// Resize reallocates the surface when the size changes. It reports whether
// a new image was created.
func (s *Surface) Resize(w, h int) bool {
	w, h = max(w, 1), max(h, 1)
	if s.image != nil && s.w == w && s.h == h {
		return false
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(w, h)
	s.w = w
	s.h = h
	return true
}

// Dispose deallocates the underlying image. The Surface should not be
// used after calling Dispose.
func (s *Surface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}

// --- Scratch texture pool ---

// surfacePool manages reusable scratch images keyed by power-of-two
// dimensions. Lighting borrows one gradient and one mask image per light.
type surfacePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared image with at least (w, h) pixels.
func (p *surfacePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool. It is cleared on the next Acquire.
func (p *surfacePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// Len returns the number of pooled images.
func (p *surfacePool) Len() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
