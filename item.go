package scroll2d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// ItemKind tags the payload a RenderItem carries.
type ItemKind uint8

const (
	KindSprite     ItemKind = iota // image at a position
	KindStaticTile                 // image baked into the static layer
	KindBar                        // meter bar: dark frame with a colored fill
	KindMarker                     // chevron image above a sprite
	KindLine                       // straight line between two points
	KindCircle                     // circle, or ellipse in isometric mode
	KindSquare                     // filled cell, or diamond in isometric mode
	KindText                       // stroked text
	KindSlice                      // vertical slice of a segmented sprite
)

var kindNames = [...]string{"sprite", "static", "bar", "marker", "line", "circle", "square", "text", "slice"}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// SortKey orders items in a draw queue. Items are drawn ascending, so the
// greatest key lands on top.
type SortKey struct {
	ZIndex int
	// Nearness places items within a z-index: y for orthogonal maps, x+y for
	// isometric ones, plus any elevation.
	Nearness float64
	// TieX and TieY break ties between slices of the same segmented sprite.
	TieX, TieY float64
	// Seq is the per-frame acquisition order.
	Seq int
}

// lessOrEqual reports whether k sorts at or before o.
func (k SortKey) lessOrEqual(o SortKey) bool {
	if k.ZIndex != o.ZIndex {
		return k.ZIndex < o.ZIndex
	}
	if k.Nearness != o.Nearness {
		return k.Nearness < o.Nearness
	}
	if k.TieX != o.TieX {
		return k.TieX < o.TieX
	}
	if k.TieY != o.TieY {
		return k.TieY < o.TieY
	}
	return k.Seq <= o.Seq
}

// LineAttrs is the payload of KindLine.
type LineAttrs struct {
	X2, Y2 float64
	Width  float64
	Dashed bool
}

// CircleAttrs is the payload of KindCircle. A zero Width fills the circle.
type CircleAttrs struct {
	Radius float64
	Width  float64
	Dashed bool
}

// BarAttrs is the payload of KindBar.
type BarAttrs struct {
	// Fill is the width of the colored inner bar in pixels.
	Fill float64
}

// TextAttrs is the payload of KindText.
type TextAttrs struct {
	Content string
	// Size is the unzoomed font size.
	Size   float64
	Face   *text.GoTextFaceSource
	Stroke Color
}

// SliceAttrs is the payload of KindSlice.
type SliceAttrs struct {
	// SrcX is the left edge of the slice in the source image.
	SrcX float64
	// SrcW and SrcH are the slice size in the source image.
	SrcW, SrcH float64
	// DstX is the slice's offset from the sprite's left edge on screen.
	DstX float64
}

// SquareAttrs is the payload of KindSquare.
type SquareAttrs struct {
	Blend BlendMode
}

// RenderItem is one drawable unit for the current frame. Items are borrowed
// from an ItemPool and returned when the frame is composited, so they must
// not be retained by callers.
type RenderItem struct {
	Kind ItemKind
	SortKey

	// X and Y are the unscrolled pixel position; W and H the drawn size.
	X, Y, W, H float64
	Image      *ebiten.Image
	Color      Color
	// Angle is a clockwise rotation in degrees around the tile center.
	Angle float64
	// TileX and TileY are the tile the item was drawn for.
	TileX, TileY float64
	// TileW and TileH are the footprint in tiles.
	TileW, TileH int
	BlocksLight  bool

	Line   LineAttrs
	Circle CircleAttrs
	Bar    BarAttrs
	Text   TextAttrs
	Slice  SliceAttrs
	Square SquareAttrs

	alpha    float64
	alphaSet bool
	pooled   bool
}

// SetAlpha sets the item opacity.
func (it *RenderItem) SetAlpha(a float64) {
	it.alpha = a
	it.alphaSet = true
}

// Alpha returns the item opacity; 1 when unset.
func (it *RenderItem) Alpha() float64 {
	if !it.alphaSet {
		return 1
	}
	return it.alpha
}

// reset restores the defaults an acquired item starts from.
func (it *RenderItem) reset() {
	*it = RenderItem{
		TileW: 1,
		TileH: 1,
	}
}
