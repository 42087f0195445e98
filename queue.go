package scroll2d

// DrawQueue collects the items drawn during one frame and sorts them into
// paint order.
type DrawQueue struct {
	items   []*RenderItem
	sortBuf []*RenderItem
}

// Push appends an item.
func (q *DrawQueue) Push(it *RenderItem) {
	q.items = append(q.items, it)
}

// Len returns the number of queued items.
func (q *DrawQueue) Len() int { return len(q.items) }

// Items returns the queued items in their current order. The returned slice
// MUST NOT be retained past the frame.
func (q *DrawQueue) Items() []*RenderItem { return q.items }

// Sort orders the queue ascending by (ZIndex, Nearness, TieX, TieY, Seq).
// Bottom-up merge sort: zero allocations after the sort buffer reaches
// high-water mark.
func (q *DrawQueue) Sort() {
	n := len(q.items)
	if n <= 1 {
		return
	}
	if cap(q.sortBuf) < n {
		q.sortBuf = make([]*RenderItem, n)
	}
	q.sortBuf = q.sortBuf[:n]

	a := q.items
	b := q.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(q.items, q.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []*RenderItem, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if src[i].lessOrEqual(src[j].SortKey) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

// Drain sorts the queue, calls fn for each item in paint order, and returns
// every item to pool. The queue is empty afterwards.
func (q *DrawQueue) Drain(pool *ItemPool, fn func(*RenderItem)) {
	q.Sort()
	for _, it := range q.items {
		if fn != nil {
			fn(it)
		}
	}
	q.Reset(pool)
}

// Reset releases every queued item to pool without drawing it.
func (q *DrawQueue) Reset(pool *ItemPool) {
	for i, it := range q.items {
		pool.Release(it)
		q.items[i] = nil
	}
	for i := range q.sortBuf {
		q.sortBuf[i] = nil
	}
	q.items = q.items[:0]
}
