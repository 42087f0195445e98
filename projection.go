package scroll2d

import "math"

// Projection selects how tile coordinates map onto the screen.
type Projection uint8

const (
	Orthogonal Projection = iota // square grid, one tile = g×g pixels
	Isometric                    // diamond grid, one tile = g×g/2 pixels
)

func (p Projection) String() string {
	if p == Isometric {
		return "isometric"
	}
	return "orthogonal"
}

// ToScreen projects tile coordinates to unscrolled pixel space for the
// relative grid size g. Subtract the camera view offset for screen space.
func (p Projection) ToScreen(x, y, g float64) (float64, float64) {
	if p == Isometric {
		return (x - y) * g / 2, (x + y) * g / 4
	}
	return x * g, y * g
}

// ToWorld is the inverse of ToScreen. It returns fractional tile coordinates.
func (p Projection) ToWorld(px, py, g float64) (float64, float64) {
	if p == Isometric {
		half, quarter := g/2, g/4
		return (px/half + py/quarter) / 2, (py/quarter - px/half) / 2
	}
	return px / g, py / g
}

// Nearness returns the paint-order key of a tile: y for orthogonal maps and
// x+y along the isometric diagonal.
func (p Projection) Nearness(x, y float64) float64 {
	if p == Isometric {
		return x + y
	}
	return y
}

// Coord is a screen position resolved to tile space.
type Coord struct {
	// X and Y are the floored cell.
	X, Y int
	// PX and PY are the fractional tile position.
	PX, PY float64
}

func newCoord(px, py float64) Coord {
	return Coord{
		X:  int(math.Floor(px)),
		Y:  int(math.Floor(py)),
		PX: px,
		PY: py,
	}
}
