package scroll2d

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// panSpeed is the keyboard-style scroll speed in pixels per 60 Hz frame.
const panSpeed = 40

// Render draws one frame into the engine canvas. delta is the elapsed time
// in 60 Hz frames. It is normally called by Context.Tick.
func (e *Engine) Render(delta float64) {
	if !e.running {
		return
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 1
	}
	start := time.Now()

	e.checkScale()
	e.light.beginFrame()
	if e.particles != nil {
		e.particles.Update(delta)
	}
	e.advancePoppers(delta)

	e.fpsCounter++
	if e.fpsCounter < e.fpsLimiter {
		return
	}
	e.fpsCounter = 0

	e.instructionsReceived = false
	if e.drawListener != nil {
		e.drawListener.Draw(e, e.fullMap != nil)
	}
	if !e.instructionsReceived {
		return
	}

	cam := e.cam
	if e.changed || e.static.stale(cam) {
		bounds := cam.ViewBounds()
		if e.fullMap != nil {
			mw, mh := cam.MapDimensions()
			bounds = ViewBounds{MaxX: mw, MaxY: mh}
		}
		e.static.bake(cam, bounds, e.scale)
		e.changed = false
	}

	canvas := e.canvas.Image()
	canvas.Clear()
	if e.staticCallMade {
		canvas.DrawImage(e.static.surface.Image(), nil)
	}

	e.stats.items = e.main.Len() + e.above.Len()
	e.stats.lights = e.light.Pending()
	e.main.Drain(&e.ctx.items, e.submitCanvas)

	e.stats.blockers = len(e.light.Blockers())
	if e.light.Pending() > 0 || e.hasFilter {
		e.light.Composite(canvas, lightPass{
			viewX:      cam.ViewX,
			viewY:      cam.ViewY,
			scale:      e.scale,
			grid:       cam.grid,
			projection: cam.Projection,
			darkness:   e.darkness(),
		})
	}

	e.above.Drain(&e.ctx.items, e.submitCanvas)
	e.seq = 0
	if e.particles != nil {
		e.particles.Draw(canvas, cam.ViewX, cam.ViewY, e.scale)
	}
	if e.screenshot != nil {
		e.finishScreenshot()
	}
	e.drawPoppers()
	e.drawSelection(canvas)
	e.fps.draw(canvas, delta)
	if e.fullMap != nil {
		e.finishFullMap()
	}

	e.advanceCamera(delta)

	e.stats.frameTime = time.Since(start)
	e.frames++
	if e.debug && e.frames%e.debugEvery == 0 {
		e.debugLog()
	}
}

// submitCanvas draws a drained queue item onto the canvas.
func (e *Engine) submitCanvas(it *RenderItem) {
	e.submit(e.canvas.Image(), it)
}

// advanceCamera steps an active lerp and scroll tween.
func (e *Engine) advanceCamera(delta float64) {
	moved, done := e.cam.stepLerp()
	if moved {
		e.changed = true
		e.notifyViewport(false)
	}
	if done != nil {
		done()
	}

	moved, done = e.cam.updateScroll(float32(delta / 60))
	if moved {
		e.changed = true
		e.notifyViewport(false)
	}
	if done != nil {
		done()
	}
}

// checkScale follows the monitor's device scale factor when the engine was
// created without an explicit scale.
func (e *Engine) checkScale() {
	if !e.autoScale || !e.ctx.running {
		return
	}
	m := ebiten.Monitor()
	if m == nil {
		return
	}
	if s := m.DeviceScaleFactor(); s > 0 && s != e.scale {
		e.Resize(int(e.cam.WinW), int(e.cam.WinH), s)
	}
}

// Update runs pointer timers, pan scrolling and the fixed-rate logic
// listener. now is the tick timestamp and delta the elapsed time in 60 Hz
// frames.
func (e *Engine) Update(now time.Duration, delta float64) {
	if !e.running {
		return
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		delta = 1
	}
	e.light.discard()
	e.updateGestures(now)
	e.processInjected()

	if e.pan[DirUp] || e.pan[DirDown] || e.pan[DirLeft] || e.pan[DirRight] {
		amt := panSpeed * delta
		var dx, dy float64
		if e.pan[DirUp] {
			dy -= amt
		}
		if e.pan[DirDown] {
			dy += amt
		}
		if e.pan[DirLeft] {
			dx -= amt
		}
		if e.pan[DirRight] {
			dx += amt
		}
		e.cam.ModifyView(dx, dy)
		e.changed = true
		e.notifyViewport(true)
	}

	if e.updateListener == nil {
		return
	}
	diff := time.Second
	if e.updated {
		diff = now - e.lastUpdate
	}
	if diff >= e.logicInterval {
		e.lastUpdate = now
		e.updated = true
		e.updateListener.Update(e, now, float64(diff)/float64(e.logicInterval))
	}
}
