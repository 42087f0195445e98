package scroll2d

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the packed rect
	Width     uint16 // packed width (may differ from OriginalW if trimmed)
	Height    uint16 // packed height (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed width as authored
	OriginalH uint16 // untrimmed height as authored
	OffsetX   int16  // trim offset inside the untrimmed frame
	OffsetY   int16
	Rotated   bool // stored 90 degrees clockwise in the page
}

// Atlas holds one or more atlas page images and a map of named tile regions.
// Images returned by Image are untrimmed and unrotated, ready for DrawTile,
// DrawStaticTile and DrawSprite.
type Atlas struct {
	// Pages contains the atlas page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
	images  map[string]*ebiten.Image
}

// Has reports whether the atlas contains a region named name.
func (a *Atlas) Has(name string) bool {
	_, ok := a.regions[name]
	return ok
}

// Region returns the region for name and whether it exists.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions in the atlas.
func (a *Atlas) Len() int { return len(a.regions) }

// Image returns the tile image for name. Missing names and regions on
// missing pages return a 1x1 magenta placeholder.
func (a *Atlas) Image(name string) *ebiten.Image {
	if img, ok := a.images[name]; ok {
		return img
	}
	r, ok := a.regions[name]
	if !ok || int(r.Page) >= len(a.Pages) || a.Pages[r.Page] == nil {
		return magentaImage()
	}
	img := a.extract(r)
	a.images[name] = img
	return img
}

// extract copies a region into its own untrimmed image. Regions that are
// neither trimmed nor rotated are returned as sub-images of the page.
func (a *Atlas) extract(r TextureRegion) *ebiten.Image {
	page := a.Pages[r.Page]
	w, h := int(r.Width), int(r.Height)
	if r.Rotated {
		w, h = h, w
	}
	src := page.SubImage(image.Rect(int(r.X), int(r.Y), int(r.X)+w, int(r.Y)+h)).(*ebiten.Image)

	ow, oh := int(r.OriginalW), int(r.OriginalH)
	if ow == 0 || oh == 0 {
		ow, oh = int(r.Width), int(r.Height)
	}
	trimmed := r.OffsetX != 0 || r.OffsetY != 0 || ow != int(r.Width) || oh != int(r.Height)
	if !r.Rotated && !trimmed {
		return src
	}

	dst := ebiten.NewImage(max(ow, 1), max(oh, 1))
	var op ebiten.DrawImageOptions
	if r.Rotated {
		// Packed clockwise: rotate back and shift into positive space.
		op.GeoM.Rotate(-math.Pi / 2)
		op.GeoM.Translate(0, float64(r.Height))
	}
	op.GeoM.Translate(float64(r.OffsetX), float64(r.OffsetY))
	dst.DrawImage(src, &op)
	return dst
}

var placeholder *ebiten.Image

func magentaImage() *ebiten.Image {
	if placeholder == nil {
		placeholder = ebiten.NewImage(1, 1)
		placeholder.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return placeholder
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists) are supported.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("scroll2d: parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]TextureRegion),
		images:  make(map[string]*ebiten.Image),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("scroll2d: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

// NewGridAtlas slices a tile sheet into cells of w x h pixels named by
// name(col, row). Cells are laid out left to right, top to bottom.
func NewGridAtlas(sheet *ebiten.Image, w, h int, name func(col, row int) string) (*Atlas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("scroll2d: invalid atlas cell %dx%d", w, h)
	}
	b := sheet.Bounds()
	atlas := &Atlas{
		Pages:   []*ebiten.Image{sheet},
		regions: make(map[string]TextureRegion),
		images:  make(map[string]*ebiten.Image),
	}
	for row := 0; (row+1)*h <= b.Dy(); row++ {
		for col := 0; (col+1)*w <= b.Dx(); col++ {
			atlas.regions[name(col, row)] = TextureRegion{
				X: uint16(col * w), Y: uint16(row * h),
				Width: uint16(w), Height: uint16(h),
				OriginalW: uint16(w), OriginalH: uint16(h),
			}
		}
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, pageIndex uint16, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("scroll2d: parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, pageIndex)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("scroll2d: parse atlas textures: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	// TexturePacker reports the packed rect in page orientation; store the
	// unrotated size.
	w, h := f.Frame.W, f.Frame.H
	if f.Rotated {
		w, h = h, w
	}
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(w),
		Height:    uint16(h),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
