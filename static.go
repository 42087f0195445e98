package scroll2d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kamstrup/intmap"
)

// StaticLayer caches tiles that rarely change. Items are stored per z-index
// in sparse cell maps and baked into a screen-sized surface, which is only
// redrawn when the layer or the camera changes.
type StaticLayer struct {
	layers []*intmap.Map[uint64, *RenderItem]
	// items holds every stored item so the layer can be released without
	// iterating the maps.
	items []*RenderItem
	maxZ  int

	surface *Surface
	dirty   bool

	// bakedView is the camera state the surface was last baked for.
	bakedX, bakedY, bakedGrid float64

	op ebiten.DrawImageOptions
}

func newStaticLayer() *StaticLayer {
	return &StaticLayer{maxZ: -1, dirty: true}
}

func cellKey(x, y int) uint64 {
	return uint64(uint32(int32(x)))<<32 | uint64(uint32(int32(y)))
}

// Item returns the item stored at cell (x, y) on layer z.
func (s *StaticLayer) Item(x, y, z int) *RenderItem {
	if z < 0 || z >= len(s.layers) {
		return nil
	}
	it, _ := s.layers[z].Get(cellKey(x, y))
	return it
}

// Set stores it at cell (x, y) on layer z, growing the z range if needed.
// An item already stored at that cell is released to pool.
func (s *StaticLayer) Set(pool *ItemPool, x, y, z int, it *RenderItem) {
	if z < 0 {
		return
	}
	for len(s.layers) <= z {
		s.layers = append(s.layers, intmap.New[uint64, *RenderItem](256))
	}
	key := cellKey(x, y)
	if old, ok := s.layers[z].Get(key); ok {
		if old == it {
			s.dirty = true
			return
		}
		s.forget(pool, old)
	}
	s.layers[z].Put(key, it)
	s.items = append(s.items, it)
	if z > s.maxZ {
		s.maxZ = z
	}
	s.dirty = true
}

func (s *StaticLayer) forget(pool *ItemPool, it *RenderItem) {
	for i, held := range s.items {
		if held == it {
			last := len(s.items) - 1
			s.items[i] = s.items[last]
			s.items[last] = nil
			s.items = s.items[:last]
			break
		}
	}
	pool.Release(it)
}

// Len returns the number of stored items.
func (s *StaticLayer) Len() int { return len(s.items) }

// MaxZ returns the highest z-index stored, or -1 when empty.
func (s *StaticLayer) MaxZ() int { return s.maxZ }

// Dirty reports whether the next frame rebakes the surface.
func (s *StaticLayer) Dirty() bool { return s.dirty }

// MarkDirty forces a rebake on the next frame.
func (s *StaticLayer) MarkDirty() { s.dirty = true }

// reset drops every stored item and marks the layer dirty. The z range is
// kept so raising it stays monotonic.
func (s *StaticLayer) reset(pool *ItemPool) {
	for i, it := range s.items {
		pool.Release(it)
		s.items[i] = nil
	}
	s.items = s.items[:0]
	for _, m := range s.layers {
		m.Clear()
	}
	s.dirty = true
}

// raise grows the z range to z. Growing it resets the layer.
func (s *StaticLayer) raise(pool *ItemPool, z int) bool {
	if z <= s.maxZ {
		return false
	}
	s.reset(pool)
	s.maxZ = z
	return true
}

// stale reports whether the camera moved since the last bake.
func (s *StaticLayer) stale(c *Camera) bool {
	return s.dirty || c.ViewX != s.bakedX || c.ViewY != s.bakedY || c.grid != s.bakedGrid
}

// bake clears the surface and draws every stored item in the bounds,
// z-index first, then column, then row.
func (s *StaticLayer) bake(c *Camera, b ViewBounds, scale float64) {
	dst := s.surface.Image()
	dst.Clear()
	op := &s.op
	for z := 0; z <= s.maxZ && z < len(s.layers); z++ {
		m := s.layers[z]
		if m.Len() == 0 {
			continue
		}
		for x := b.MinX; x <= b.MaxX; x++ {
			for y := b.MinY; y <= b.MaxY; y++ {
				it, ok := m.Get(cellKey(x, y))
				if !ok || it.Image == nil {
					continue
				}
				iw, ih := it.Image.Bounds().Dx(), it.Image.Bounds().Dy()
				if iw == 0 || ih == 0 {
					continue
				}
				op.GeoM.Reset()
				op.GeoM.Scale(it.W/float64(iw), it.H/float64(ih))
				op.GeoM.Translate(it.X-c.ViewX, it.Y-c.ViewY)
				op.GeoM.Scale(scale, scale)
				op.ColorScale.Reset()
				dst.DrawImage(it.Image, op)
			}
		}
	}
	s.dirty = false
	s.bakedX, s.bakedY, s.bakedGrid = c.ViewX, c.ViewY, c.grid
}
