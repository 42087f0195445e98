package scroll2d

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// SnapshotFunc receives a captured image. img is nil when err is set.
type SnapshotFunc func(img *image.NRGBA, err error)

// fullMapRender collects every drawn tile at half size into one image of
// the whole map while a RenderFullMap is in progress.
type fullMapRender struct {
	target *ebiten.Image
	done   SnapshotFunc
	op     ebiten.DrawImageOptions
}

// RenderFullMap renders the whole map at half scale on the next frame and
// passes it to done. The zoom is reset to 1. The draw listener is called
// with full set so it can issue every cell instead of only visible ones.
func (e *Engine) RenderFullMap(done SnapshotFunc) error {
	if !e.running {
		return ErrNotRunning
	}
	if !e.cam.HasMap() {
		return ErrNoMap
	}
	e.SetZoomLevel(1)
	mw, mh := e.cam.MapDimensions()
	w := float64(mw) * e.cam.GridSize / 2
	h := float64(mh) * e.cam.GridSize / 2
	if e.cam.Projection == Isometric {
		h = float64(mh) * e.cam.GridSize / 4
	}
	if e.fullMap != nil {
		e.fullMap.target.Deallocate()
	}
	e.fullMap = &fullMapRender{
		target: ebiten.NewImage(max(int(math.Ceil(w)), 1), max(int(math.Ceil(h)), 1)),
		done:   done,
	}
	e.log.WithField("size", fmt.Sprintf("%.0fx%.0f", w, h)).Debug("full map render requested")
	return nil
}

// add stamps the item's image at half size where its cell falls on the
// full map.
func (f *fullMapRender) add(e *Engine, it *RenderItem) {
	img := it.Image
	if img == nil {
		return
	}
	ih := float64(img.Bounds().Dy())
	g := e.cam.GridSize
	x, y := it.TileX, it.TileY

	dx := math.Floor(x*g) / 2
	dy := ((y+1)*g - ih) / 2
	if e.cam.Projection == Isometric {
		half := e.cam.half
		quarter := e.cam.quarter
		dx = math.Floor((x-y)*half)/2 + float64(f.target.Bounds().Dx())/2
		dy = (x + y) * quarter / 2
	}
	f.op.GeoM.Reset()
	f.op.GeoM.Scale(0.5, 0.5)
	f.op.GeoM.Translate(dx, dy)
	f.op.ColorScale.Reset()
	f.op.ColorScale.ScaleAlpha(float32(clamp01(it.Alpha())))
	f.target.DrawImage(img, &f.op)
}

// finishFullMap delivers the collected image and ends the full-map render.
func (e *Engine) finishFullMap() {
	f := e.fullMap
	e.fullMap = nil
	img := toNRGBA(f.target)
	f.target.Deallocate()
	if f.done != nil {
		f.done(img, nil)
	}
	e.static.MarkDirty()
}

// screenshotRequest is a pending TakeScreenshot.
type screenshotRequest struct {
	done SnapshotFunc
}

// TakeScreenshot captures the composited frame, before poppers and the
// selection box, at the end of the next rendered frame.
func (e *Engine) TakeScreenshot(done SnapshotFunc) error {
	if !e.running {
		return ErrNotRunning
	}
	e.screenshot = &screenshotRequest{done: done}
	return nil
}

func (e *Engine) finishScreenshot() {
	req := e.screenshot
	e.screenshot = nil
	e.changed = true
	if req.done != nil {
		req.done(toNRGBA(e.canvas.Image()), nil)
	}
}

// toNRGBA reads img back from the GPU and converts premultiplied RGBA to
// straight-alpha NRGBA.
func toNRGBA(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)
	return unpremultiply(pixels, w, h)
}

func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// WritePNG encodes img to a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scroll2d: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("scroll2d: encode %s: %w", path, err)
	}
	return f.Close()
}

// SaveSnapshot writes img into dir as a timestamped PNG named after label
// and returns the file path.
func SaveSnapshot(dir, label string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scroll2d: mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	return path, WritePNG(path, img)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
