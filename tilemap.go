package scroll2d

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// GID flag bits (same convention as the Tiled TMX format). Flips are not
// rendered; the bits are masked off before lookup.
const (
	tileFlipH    uint32 = 1 << 31 // horizontal flip
	tileFlipV    uint32 = 1 << 30 // vertical flip
	tileFlipD    uint32 = 1 << 29 // diagonal flip (90° rotation)
	tileFlagMask uint32 = tileFlipH | tileFlipV | tileFlipD
)

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	GID      uint32 `json:"gid"`
	Duration int    `json:"duration"` // milliseconds
}

// TileLayer is one layer of tile GIDs. GID 0 is an empty cell.
type TileLayer struct {
	Name string
	// Static layers go through DrawStaticTile and are baked into the static
	// layer; the rest are queued with DrawTile every frame.
	Static bool
	// BlocksLight marks every non-empty cell of a dynamic layer as a light
	// blocker.
	BlocksLight bool
	Hidden      bool
	Alpha       float64

	data []uint32
}

// TileMap is a layered grid of tiles drawn through an Engine. Layer i is
// drawn at z index i.
type TileMap struct {
	Width, Height int
	Layers        []*TileLayer

	tiles   []*ebiten.Image // indexed by GID
	anims   map[uint32][]AnimFrame
	elapsed int
}

// NewTileMap creates an empty map of width x height cells.
func NewTileMap(width, height int) *TileMap {
	return &TileMap{Width: width, Height: height}
}

// AddLayer appends a layer. data is row-major and must hold Width*Height
// GIDs; nil creates an empty layer.
func (m *TileMap) AddLayer(name string, data []uint32, static bool) (*TileLayer, error) {
	if data == nil {
		data = make([]uint32, m.Width*m.Height)
	}
	if len(data) != m.Width*m.Height {
		return nil, fmt.Errorf("scroll2d: layer %q has %d cells, want %d", name, len(data), m.Width*m.Height)
	}
	l := &TileLayer{Name: name, Static: static, Alpha: 1, data: data}
	m.Layers = append(m.Layers, l)
	return l, nil
}

// Layer returns the layer named name, or nil.
func (m *TileMap) Layer(name string) *TileLayer {
	for _, l := range m.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// SetTileset sets the image for each GID. tiles[0] is ignored.
func (m *TileMap) SetTileset(tiles []*ebiten.Image) { m.tiles = tiles }

// SetTilesetFromAtlas maps GID i+1 to the atlas region names[i].
func (m *TileMap) SetTilesetFromAtlas(a *Atlas, names []string) {
	m.tiles = make([]*ebiten.Image, len(names)+1)
	for i, n := range names {
		m.tiles[i+1] = a.Image(n)
	}
}

// SetAnimations sets the animation definitions keyed by base GID.
func (m *TileMap) SetAnimations(anims map[uint32][]AnimFrame) { m.anims = anims }

// Tile returns the GID at (x, y) of layer, or 0 outside the map.
func (m *TileMap) Tile(layer, x, y int) uint32 {
	if !m.inside(layer, x, y) {
		return 0
	}
	return m.Layers[layer].data[y*m.Width+x]
}

// SetTile replaces the GID at (x, y) of layer. It reports whether the cell
// exists.
func (m *TileMap) SetTile(layer, x, y int, gid uint32) bool {
	if !m.inside(layer, x, y) {
		return false
	}
	m.Layers[layer].data[y*m.Width+x] = gid
	return true
}

func (m *TileMap) inside(layer, x, y int) bool {
	return layer >= 0 && layer < len(m.Layers) && x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Advance moves tile animations forward by ms milliseconds.
func (m *TileMap) Advance(ms int) {
	if ms > 0 {
		m.elapsed += ms
	}
}

// image resolves a GID, masking flip flags and applying animations.
func (m *TileMap) image(gid uint32) *ebiten.Image {
	gid &^= tileFlagMask
	if gid == 0 {
		return nil
	}
	if frames, ok := m.anims[gid]; ok {
		gid = currentFrame(frames, m.elapsed, gid)
	}
	if int(gid) >= len(m.tiles) {
		return nil
	}
	return m.tiles[gid]
}

func currentFrame(frames []AnimFrame, elapsed int, fallback uint32) uint32 {
	total := 0
	for _, f := range frames {
		total += f.Duration
	}
	if total <= 0 {
		return fallback
	}
	t := elapsed % total
	acc := 0
	for _, f := range frames {
		acc += f.Duration
		if t < acc {
			return f.GID
		}
	}
	return frames[0].GID
}

// Draw issues the draw calls for the visible cells of every layer. With
// full set every cell is drawn, as needed during RenderFullMap.
func (m *TileMap) Draw(e *Engine, full bool) {
	b := ViewBounds{MaxX: m.Width - 1, MaxY: m.Height - 1}
	if !full {
		vb := e.ViewBounds()
		b.MinX, b.MinY = max(vb.MinX, 0), max(vb.MinY, 0)
		b.MaxX, b.MaxY = min(vb.MaxX, m.Width-1), min(vb.MaxY, m.Height-1)
	}
	for z, l := range m.Layers {
		if l.Hidden {
			continue
		}
		for y := b.MinY; y <= b.MaxY; y++ {
			row := l.data[y*m.Width:]
			for x := b.MinX; x <= b.MaxX; x++ {
				img := m.image(row[x])
				if img == nil {
					continue
				}
				if l.Static {
					e.DrawStaticTile(img, x, y, z)
				} else {
					e.DrawTile(img, float64(x), float64(y), z, l.BlocksLight, l.Alpha)
				}
			}
		}
	}
}

type jsonTileLayer struct {
	Name        string   `json:"name"`
	Data        []uint32 `json:"data"`
	Static      bool     `json:"static"`
	BlocksLight bool     `json:"blocksLight"`
	Hidden      bool     `json:"hidden"`
	Alpha       *float64 `json:"alpha"`
}

type jsonTileMap struct {
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	Tiles      []string               `json:"tiles"`
	Layers     []jsonTileLayer        `json:"layers"`
	Animations map[string][]AnimFrame `json:"animations"`
}

// LoadTileMap parses a JSON map. "tiles" lists the atlas region for GID 1,
// 2 and so on; "animations" is keyed by base GID.
func LoadTileMap(jsonData []byte, atlas *Atlas) (*TileMap, error) {
	var raw jsonTileMap
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, fmt.Errorf("scroll2d: parse tile map: %w", err)
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("scroll2d: invalid tile map size %dx%d", raw.Width, raw.Height)
	}
	m := NewTileMap(raw.Width, raw.Height)
	for _, rl := range raw.Layers {
		l, err := m.AddLayer(rl.Name, rl.Data, rl.Static)
		if err != nil {
			return nil, err
		}
		l.BlocksLight = rl.BlocksLight
		l.Hidden = rl.Hidden
		if rl.Alpha != nil {
			l.Alpha = *rl.Alpha
		}
	}
	if len(raw.Animations) > 0 {
		m.anims = make(map[uint32][]AnimFrame, len(raw.Animations))
		for k, frames := range raw.Animations {
			gid, err := strconv.ParseUint(k, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("scroll2d: animation key %q: %w", k, err)
			}
			m.anims[uint32(gid)] = frames
		}
	}
	if atlas != nil {
		m.SetTilesetFromAtlas(atlas, raw.Tiles)
	}
	return m, nil
}
