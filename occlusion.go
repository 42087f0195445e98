package scroll2d

import (
	"math"
	"slices"
)

const (
	// rayCount is the number of rays cast per light, one per degree.
	rayCount = 360
	// lightReach scales the radius used for blocker selection and ray length.
	lightReach = 1.05
	// shadowFloor is the share of light that still reaches occluded pixels.
	shadowFloor = 0.3
)

// Blocker is the top-left corner of a grid-sized footprint that stops light,
// in scrolled screen space.
type Blocker struct {
	X, Y float64
}

// Segment is a line segment between A and B.
type Segment struct {
	A, B Vec2
}

// SegmentIntersection returns where p crosses q. The hit counts only when it
// lies strictly inside both segments; parallel segments never hit.
func SegmentIntersection(p, q Segment) (Vec2, bool) {
	denom := (q.B.Y-q.A.Y)*(p.B.X-p.A.X) - (q.B.X-q.A.X)*(p.B.Y-p.A.Y)
	if denom == 0 {
		return Vec2{}, false
	}
	a := p.A.Y - q.A.Y
	b := p.A.X - q.A.X
	ua := ((q.B.X-q.A.X)*a - (q.B.Y-q.A.Y)*b) / denom
	ub := ((p.B.X-p.A.X)*a - (p.B.Y-p.A.Y)*b) / denom
	if ua <= 0 || ua >= 1 || ub <= 0 || ub >= 1 {
		return Vec2{}, false
	}
	return Vec2{p.A.X + ua*(p.B.X-p.A.X), p.A.Y + ua*(p.B.Y-p.A.Y)}, true
}

// blockerSide is one edge of a blocker footprint in light-local space.
// source is the footprint's top-left corner.
type blockerSide struct {
	seg    Segment
	source Vec2
}

// Ray is a light ray in light-local space (the light sits at (r, r)).
type Ray struct {
	End   Vec2
	Angle float64
	// Blocked is set when the ray was clipped by a blocker whose footprint
	// starts at Source.
	Blocked bool
	Source  Vec2
}

// shadowCaster holds the scratch buffers for occlusion. One per engine;
// after warmup casting a light is zero-alloc.
type shadowCaster struct {
	near   []nearBlocker
	sides  []blockerSide
	rays   [rayCount]Ray
	sorted [rayCount]Ray
	poly   []Vec2
	lit    []Vec2
}

type nearBlocker struct {
	Blocker
	d float64
}

// Cast computes the visible polygon of a light of radius r at (x, y) given
// blockers of size grid, all in the same screen space. The polygon and the
// top-left corners of the blockers hit by rays are returned in light-local
// space, where the light sits at (r, r). Both slices are reused by the next
// call. ok is false when no blocker is in reach, which means the light is
// unoccluded.
func (sc *shadowCaster) Cast(x, y, r, grid float64, blockers []Blocker) (poly, lit []Vec2, ok bool) {
	sc.near = sc.near[:0]
	reach := r * lightReach
	for _, b := range blockers {
		d := math.Hypot(x-b.X, y-b.Y)
		if d <= reach {
			sc.near = append(sc.near, nearBlocker{b, d})
		}
	}
	if len(sc.near) == 0 {
		return nil, nil, false
	}

	sc.sides = sc.sides[:0]
	for _, b := range sc.near {
		sc.addBlocker(b, x, y, r, grid)
	}

	center := Vec2{r, r}
	sc.lit = sc.lit[:0]
	for i := range sc.rays {
		rad := float64(i) * math.Pi / 180
		ray := &sc.rays[i]
		*ray = Ray{End: Vec2{r + reach*math.Cos(rad), r + reach*math.Sin(rad)}}
		sc.clip(ray, center)
		if ray.Blocked {
			sc.lit = append(sc.lit, ray.Source)
		}
	}

	sc.poly = sc.poly[:0]
	sc.sorted = sc.rays
	slices.SortStableFunc(sc.sorted[:], func(a, b Ray) int {
		switch {
		case a.Angle < b.Angle:
			return -1
		case a.Angle > b.Angle:
			return 1
		}
		return 0
	})
	for i := range sc.sorted {
		sc.poly = append(sc.poly, sc.sorted[i].End)
	}
	return sc.poly, sc.lit, true
}

// Rays returns the rays of the last Cast in degree order.
func (sc *shadowCaster) Rays() []Ray { return sc.rays[:] }

// addBlocker appends the four sides of a grid-sized square placed at the
// blocker's distance from the light along the light-to-blocker direction.
func (sc *shadowCaster) addBlocker(b nearBlocker, x, y, r, grid float64) {
	angle := math.Atan2(b.Y-y, b.X-x)
	tl := Vec2{r + b.d*math.Cos(angle), r + b.d*math.Sin(angle)}
	tr := Vec2{tl.X + grid, tl.Y}
	bl := Vec2{tl.X, tl.Y + grid}
	br := Vec2{tl.X + grid, tl.Y + grid}
	sc.sides = append(sc.sides,
		blockerSide{Segment{tl, tr}, tl},
		blockerSide{Segment{tr, br}, tl},
		blockerSide{Segment{bl, br}, tl},
		blockerSide{Segment{tl, bl}, tl},
	)
}

// clip shortens the ray to its nearest blocker hit and records its angle.
func (sc *shadowCaster) clip(ray *Ray, center Vec2) {
	closest := math.Inf(1)
	for _, side := range sc.sides {
		hit, ok := SegmentIntersection(Segment{center, ray.End}, side.seg)
		if !ok {
			continue
		}
		if d := math.Hypot(center.X-hit.X, center.Y-hit.Y); d < closest {
			closest = d
			ray.End = hit
			ray.Blocked = true
			ray.Source = side.source
		}
	}
	ray.Angle = math.Atan2(ray.End.Y-center.Y, ray.End.X-center.X)
}
