package scroll2d

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// frameStats holds per-frame timing and pool metrics. Only logged when
// Options.Debug is set.
type frameStats struct {
	frameTime time.Duration
	items     int
	lights    int
	blockers  int
}

// SetDebugMode toggles periodic frame stats logging.
func (e *Engine) SetDebugMode(on bool) { e.debug = on }

// debugLog writes the last frame's stats and the shared pool counters.
func (e *Engine) debugLog() {
	pool := &e.ctx.items
	e.log.WithFields(logrus.Fields{
		"frame":       e.stats.frameTime,
		"items":       e.stats.items,
		"lights":      e.stats.lights,
		"blockers":    e.stats.blockers,
		"static":      e.static.Len(),
		"pool_live":   pool.Live(),
		"pool_free":   pool.Free(),
		"pool_total":  pool.Allocated(),
		"light_free":  e.ctx.lights.Free(),
		"scratch":     e.ctx.scratch.Len(),
		"actual_fps":  ebiten.ActualFPS(),
		"actual_tps":  ebiten.ActualTPS(),
		"zoom":        e.cam.Zoom,
		"view_bounds": e.cam.ViewBounds(),
	}).Debug("frame stats")
}

// FPS returns the measured frame rate of the running game loop.
func FPS() float64 { return ebiten.ActualFPS() }
