package scroll2d

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is the overlay refresh interval in 60 Hz frames.
const fpsRefresh = 30

// fpsOverlay prints the measured FPS and TPS in the top-left corner of the
// canvas. The text is redrawn about twice a second.
type fpsOverlay struct {
	on      bool
	img     *ebiten.Image
	elapsed float64
}

// SetShowFPS toggles the FPS overlay.
func (e *Engine) SetShowFPS(on bool) {
	e.fps.on = on
	e.fps.elapsed = fpsRefresh
}

func (o *fpsOverlay) draw(dst *ebiten.Image, delta float64) {
	if !o.on {
		return
	}
	if o.img == nil {
		// 100x32 fits "FPS: 60.0\nTPS: 60.0".
		o.img = ebiten.NewImage(100, 32)
		o.elapsed = fpsRefresh
	}
	o.elapsed += delta
	if o.elapsed >= fpsRefresh {
		o.elapsed = 0
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	dst.DrawImage(o.img, nil)
}
