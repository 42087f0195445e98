package scroll2d

// ItemPool is an arena of reusable RenderItems. After warmup, Acquire and
// Release are zero-alloc. A pool is owned by a Context and shared by every
// engine registered on it; it is not safe for concurrent use.
type ItemPool struct {
	free      []*RenderItem
	allocated int
	live      int
}

// Acquire returns a reset item from the free list, allocating one if the
// list is empty.
func (p *ItemPool) Acquire() *RenderItem {
	var it *RenderItem
	if n := len(p.free); n > 0 {
		it = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		it = &RenderItem{}
		p.allocated++
	}
	it.reset()
	p.live++
	return it
}

// Release returns an item to the free list. Releasing an item that is
// already free is a no-op.
func (p *ItemPool) Release(it *RenderItem) {
	if it == nil || it.pooled {
		return
	}
	it.Image = nil
	it.Text.Face = nil
	it.pooled = true
	p.free = append(p.free, it)
	p.live--
}

// Live returns the number of items acquired and not yet released.
func (p *ItemPool) Live() int { return p.live }

// Free returns the length of the free list.
func (p *ItemPool) Free() int { return len(p.free) }

// Allocated returns how many items the pool has ever created.
func (p *ItemPool) Allocated() int { return p.allocated }

// LightSource is a radial light request for the current frame, in unscrolled
// pixel space.
type LightSource struct {
	X, Y      float64
	Radius    float64
	Color     Color
	Intensity float64
	pooled    bool
}

// LightPool recycles LightSources between frames.
type LightPool struct {
	free      []*LightSource
	allocated int
	live      int
}

// Acquire returns a light initialized with the given values.
func (p *LightPool) Acquire(x, y, radius float64, c Color, intensity float64) *LightSource {
	var l *LightSource
	if n := len(p.free); n > 0 {
		l = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		l = &LightSource{}
		p.allocated++
	}
	*l = LightSource{X: x, Y: y, Radius: radius, Color: c, Intensity: intensity}
	p.live++
	return l
}

// Release returns a light to the free list. Double releases are ignored.
func (p *LightPool) Release(l *LightSource) {
	if l == nil || l.pooled {
		return
	}
	l.pooled = true
	p.free = append(p.free, l)
	p.live--
}

// Live returns the number of lights acquired and not yet released.
func (p *LightPool) Live() int { return p.live }

// Free returns the length of the free list.
func (p *LightPool) Free() int { return len(p.free) }
