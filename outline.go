package scroll2d

import "image"

// Edge is a cell border between two grid corners, in tile units.
type Edge struct {
	X1, Y1, X2, Y2 float64
}

// GroupOutline returns the borders of a group of cells that are not shared
// with another cell of the group, in input order: top, right, bottom, left
// for each cell. Duplicate cells are ignored.
func GroupOutline(cells []image.Point) []Edge {
	set := make(map[image.Point]struct{}, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	has := func(x, y int) bool {
		_, ok := set[image.Pt(x, y)]
		return ok
	}

	var edges []Edge
	seen := make(map[image.Point]struct{}, len(cells))
	for _, c := range cells {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		x, y := float64(c.X), float64(c.Y)
		if !has(c.X, c.Y-1) {
			edges = append(edges, Edge{x, y, x + 1, y})
		}
		if !has(c.X+1, c.Y) {
			edges = append(edges, Edge{x + 1, y, x + 1, y + 1})
		}
		if !has(c.X, c.Y+1) {
			edges = append(edges, Edge{x, y + 1, x + 1, y + 1})
		}
		if !has(c.X-1, c.Y) {
			edges = append(edges, Edge{x, y, x, y + 1})
		}
	}
	return edges
}

// OutlineTileGroup draws the outer border of a group of cells. offset moves
// each edge's start point by -offset and its end point by +offset on both
// axes, in tiles.
func (e *Engine) OutlineTileGroup(cells []image.Point, z int, c Color, width float64, dashed bool, offset float64) {
	for _, ed := range GroupOutline(cells) {
		e.DrawLine(c, ed.X1-offset, ed.Y1-offset, ed.X2+offset, ed.Y2+offset, z, false, width, dashed)
	}
}
