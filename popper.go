package scroll2d

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	popperSize = 20
	// popperLife is how long a popper lives, in 60 Hz frames. It rises 2px
	// and fades by 0.03 per frame.
	popperLife = 1 / 0.03
	popperRise = 2 * popperLife
)

// textPopper is a floating text that rises and fades out.
type textPopper struct {
	x, y  float64
	text  string
	color Color

	rise *gween.Tween
	fade *gween.Tween

	offY  float64
	alpha float64
	done  bool
}

// PopText shows s floating up from cell (x, y) in color c. The zero color is
// red.
func (e *Engine) PopText(x, y float64, s string, c Color) {
	if !e.running || s == "" {
		return
	}
	if c == (Color{}) {
		c = ColorRed
	}
	cam := e.cam
	px, py := cam.Project(x, y)
	if cam.Projection != Isometric {
		px += cam.half
		py += cam.half
	}

	var p *textPopper
	if n := len(e.freePoppers); n > 0 {
		p = e.freePoppers[n-1]
		e.freePoppers[n-1] = nil
		e.freePoppers = e.freePoppers[:n-1]
	} else {
		p = &textPopper{}
	}
	*p = textPopper{
		x:     px,
		y:     py,
		text:  s,
		color: c,
		rise:  gween.New(0, -popperRise, popperLife, ease.Linear),
		fade:  gween.New(1, 0, popperLife, ease.Linear),
		alpha: 1,
	}
	e.poppers = append(e.poppers, p)
}

// Poppers returns the number of live text poppers.
func (e *Engine) Poppers() int { return len(e.poppers) }

// advancePoppers moves every live popper delta frames along.
func (e *Engine) advancePoppers(delta float64) {
	for _, p := range e.poppers {
		if p.done {
			continue
		}
		oy, _ := p.rise.Update(float32(delta))
		a, fin := p.fade.Update(float32(delta))
		p.offY = float64(oy)
		p.alpha = float64(a)
		if fin || p.alpha <= 0 {
			p.done = true
		}
	}
}

// drawPoppers draws live poppers and recycles finished ones.
func (e *Engine) drawPoppers() {
	dst := e.canvas.Image()
	cam := e.cam
	kept := e.poppers[:0]
	for _, p := range e.poppers {
		if p.done {
			e.freePoppers = append(e.freePoppers, p)
			continue
		}
		e.drawText(dst, p.text, e.font, popperSize*cam.Zoom, p.x-cam.ViewX, p.y+p.offY-cam.ViewY, p.color, ColorBlack, 1, p.alpha)
		kept = append(kept, p)
	}
	for i := len(kept); i < len(e.poppers); i++ {
		e.poppers[i] = nil
	}
	e.poppers = kept
}
