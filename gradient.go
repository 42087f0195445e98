package scroll2d

import (
	"fmt"
	"math"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/hajimehoshi/ebiten/v2"
)

// gradientCacheBytes bounds the memory held by cached gradient textures.
const gradientCacheBytes = 64 << 20

// gradientCache holds white radial gradients keyed by integer radius. Lights
// tint them with a color scale, so one texture serves every color and
// intensity.
type gradientCache struct {
	cache *ristretto.Cache[int, *ebiten.Image]
}

func newGradientCache() (*gradientCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[int, *ebiten.Image]{
		NumCounters: 1 << 12,
		MaxCost:     gradientCacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("scroll2d: gradient cache: %w", err)
	}
	return &gradientCache{cache: c}, nil
}

// get returns the gradient for radius, generating it on a miss. Radius is
// rounded up to an integer to avoid separate textures for tiny differences.
func (g *gradientCache) get(radius float64) *ebiten.Image {
	key := max(int(math.Ceil(radius)), 1)
	if img, ok := g.cache.Get(key); ok {
		return img
	}
	img := generateGradient(float64(key))
	size := int64(key*2) * int64(key*2) * 4
	if g.cache.Set(key, img, size) {
		g.cache.Wait()
	}
	return img
}

func (g *gradientCache) close() {
	g.cache.Close()
}

// generateGradient creates a white radial gradient of the given radius whose
// alpha falls linearly from 1 at the center to 0 at the edge. Premultiplied.
func generateGradient(radius float64) *ebiten.Image {
	size := int(math.Ceil(radius * 2))
	if size < 1 {
		size = 1
	}
	img := ebiten.NewImage(size, size)
	pix := make([]byte, size*size*4)

	cx, cy := radius, radius
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			dist := math.Sqrt(dx*dx+dy*dy) / radius

			var alpha float64
			if dist < 1 {
				alpha = 1 - dist
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	img.WritePixels(pix)
	return img
}
