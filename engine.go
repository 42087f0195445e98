package scroll2d

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"
)

var (
	// ErrNoMap is returned by RenderFullMap when no map dimensions are set.
	ErrNoMap = errors.New("scroll2d: map dimensions not set")
	// ErrNotRunning is returned by requests made on a destroyed engine.
	ErrNotRunning = errors.New("scroll2d: engine not running")
)

const (
	// DefaultGridSize is the tile size used when Options.GridSize is zero.
	DefaultGridSize = 40
	// DefaultLogicFPS is the update rate used when Options.LogicFPS is zero.
	DefaultLogicFPS = 60
	// DefaultSelectionColor outlines the selection rectangle.
	DefaultSelectionColor = "#4CAF50"
)

// Options configures an Engine. The mapstructure tags let the struct be
// loaded straight from a config file.
type Options struct {
	// Width and Height are the viewport size in logical pixels.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	// Scale is the device pixel ratio. Zero follows the monitor.
	Scale    float64 `mapstructure:"scale"`
	GridSize float64 `mapstructure:"grid_size"`

	Isometric         bool `mapstructure:"isometric"`
	FitGridToHeight   bool `mapstructure:"fit_grid_to_height"`
	DoubleHeightTiles bool `mapstructure:"double_height_tiles"`
	// FastRenderMode skips segmentation of wide isometric sprites.
	FastRenderMode bool    `mapstructure:"fast_render_mode"`
	ViewPadding    float64 `mapstructure:"view_padding"`
	MinZoom        float64 `mapstructure:"min_zoom"`
	MaxZoom        float64 `mapstructure:"max_zoom"`

	// LogicFPS is the rate of UpdateListener calls.
	LogicFPS float64 `mapstructure:"logic_fps"`
	// FPSLimiter renders only every Nth tick. Zero or one renders every tick.
	FPSLimiter int `mapstructure:"fps_limiter"`

	// SelectionColor is a hex color for the selection rectangle.
	SelectionColor string `mapstructure:"selection_color"`

	// Debug logs frame timing and pool counters.
	Debug bool `mapstructure:"debug"`
	// DebugEvery is the number of frames between debug log lines.
	DebugEvery int `mapstructure:"debug_every"`

	Logger logrus.FieldLogger     `mapstructure:"-"`
	Font   *text.GoTextFaceSource `mapstructure:"-"`
}

// DefaultOptions returns an 800x600 orthogonal configuration.
func DefaultOptions() Options {
	return Options{
		Width:          800,
		Height:         600,
		GridSize:       DefaultGridSize,
		MinZoom:        DefaultMinZoom,
		MaxZoom:        DefaultMaxZoom,
		LogicFPS:       DefaultLogicFPS,
		SelectionColor: DefaultSelectionColor,
		DebugEvery:     120,
	}
}

func (o *Options) validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("scroll2d: invalid viewport %dx%d", o.Width, o.Height)
	}
	if o.GridSize < 0 || math.IsNaN(o.GridSize) || math.IsInf(o.GridSize, 0) {
		return fmt.Errorf("scroll2d: invalid grid size %v", o.GridSize)
	}
	if o.GridSize == 0 {
		o.GridSize = DefaultGridSize
	}
	if o.MinZoom <= 0 {
		o.MinZoom = DefaultMinZoom
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = DefaultMaxZoom
	}
	if o.MinZoom > o.MaxZoom {
		return fmt.Errorf("scroll2d: min zoom %v above max zoom %v", o.MinZoom, o.MaxZoom)
	}
	if o.LogicFPS <= 0 {
		o.LogicFPS = DefaultLogicFPS
	}
	if o.SelectionColor == "" {
		o.SelectionColor = DefaultSelectionColor
	}
	if o.DebugEvery <= 0 {
		o.DebugEvery = 120
	}
	if o.Scale < 0 {
		return fmt.Errorf("scroll2d: invalid scale %v", o.Scale)
	}
	return nil
}

// Engine renders one tile map viewport. Engines are created with NewEngine
// and driven by their Context; all methods must be called from the goroutine
// that calls Context.Tick.
type Engine struct {
	id  uint64
	ctx *Context
	log logrus.FieldLogger

	cam       *Camera
	scale     float64
	autoScale bool
	width     int
	height    int

	canvas *Surface
	static *StaticLayer
	light  *LightingEngine

	main  DrawQueue
	above DrawQueue
	seq   int
	paint painter

	running              bool
	changed              bool
	instructionsReceived bool
	staticCallMade       bool
	fastRender           bool
	doubleHeightTiles    bool

	colorFilter  Color
	filterAmount float64
	hasFilter    bool

	font           *text.GoTextFaceSource
	selectionColor Color

	poppers     []*textPopper
	freePoppers []*textPopper
	particles   ParticleSystem

	drawListener     DrawListener
	updateListener   UpdateListener
	viewportListener ViewportListener

	onClick      TileListener
	onRightClick TileListener
	onHover      TileListener
	onHold       TileListener
	onPaint      TileListener
	onRelease    ReleaseListener
	onSelection  SelectionListener
	onPointer    PointerListener

	logicInterval time.Duration
	lastUpdate    time.Duration
	updated       bool

	gestures gestureState
	pan      [4]bool
	inject   []PointerEvent
	script   *InputScript

	fpsLimiter int
	fpsCounter int

	fullMap    *fullMapRender
	screenshot *screenshotRequest

	debug      bool
	debugEvery int
	fps        fpsOverlay
	frames     int
	stats      frameStats
}

// NewEngine creates an engine and registers it on ctx. A nil ctx gives the
// engine a private context.
func NewEngine(ctx *Context, opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	sel, err := ParseHexColor(opts.SelectionColor)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		if ctx, err = NewContext(); err != nil {
			return nil, err
		}
	}

	proj := Orthogonal
	if opts.Isometric {
		proj = Isometric
	}
	cam := NewCamera(opts.GridSize, float64(opts.Width), float64(opts.Height), proj)
	cam.MinZoom = opts.MinZoom
	cam.MaxZoom = opts.MaxZoom
	cam.ViewPadding = opts.ViewPadding
	cam.FitGridToHeight = opts.FitGridToHeight

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := &Engine{
		ctx:               ctx,
		cam:               cam,
		scale:             opts.Scale,
		autoScale:         opts.Scale == 0,
		changed:           true,
		running:           true,
		fastRender:        opts.FastRenderMode,
		doubleHeightTiles: opts.DoubleHeightTiles,
		font:              opts.Font,
		selectionColor:    sel,
		fpsLimiter:        opts.FPSLimiter,
		debug:             opts.Debug,
		debugEvery:        opts.DebugEvery,
		static:            newStaticLayer(),
	}
	if e.scale == 0 {
		e.scale = 1
	}
	if e.font == nil {
		e.font = defaultFontSource()
	}
	e.SetLogicRate(opts.LogicFPS)
	e.width, e.height = e.physicalSize()
	e.canvas = NewSurface(e.width, e.height)
	e.static.surface = NewSurface(e.width, e.height)
	e.light = newLightingEngine(&ctx.lights, &ctx.scratch, ctx.gradients, e.width, e.height)

	ctx.Register(e)
	e.log = log.WithFields(logrus.Fields{
		"engine":     e.id,
		"projection": proj.String(),
	})
	e.log.WithFields(logrus.Fields{
		"width":  opts.Width,
		"height": opts.Height,
		"grid":   cam.Grid(),
	}).Debug("engine created")
	return e, nil
}

// ID returns the identifier assigned by the context.
func (e *Engine) ID() uint64 { return e.id }

// Context returns the context the engine is registered on.
func (e *Engine) Context() *Context { return e.ctx }

// Camera returns the engine camera. Use the engine methods to move it so the
// static layer and listeners stay in sync.
func (e *Engine) Camera() *Camera { return e.cam }

// Canvas returns the image the engine renders into.
func (e *Engine) Canvas() *Surface { return e.canvas }

// Lighting returns the engine's lighting engine.
func (e *Engine) Lighting() *LightingEngine { return e.light }

// Scale returns the device pixel ratio in use.
func (e *Engine) Scale() float64 { return e.scale }

// Running reports whether the engine still receives ticks.
func (e *Engine) Running() bool { return e.running }

// Destroy stops the engine, unregisters it from its context and releases its
// surfaces.
func (e *Engine) Destroy() {
	if !e.running {
		return
	}
	e.running = false
	e.ctx.Unregister(e)
	e.main.Reset(&e.ctx.items)
	e.above.Reset(&e.ctx.items)
	e.static.reset(&e.ctx.items)
	e.light.Dispose()
	e.canvas.Dispose()
	e.static.surface.Dispose()
	if e.fps.img != nil {
		e.fps.img.Deallocate()
	}
	e.log.Debug("engine destroyed")
}

func (e *Engine) physicalSize() (int, int) {
	return int(math.Round(e.cam.WinW * e.scale)), int(math.Round(e.cam.WinH * e.scale))
}

// Resize sets the viewport size in logical pixels and the device pixel ratio.
// A scale of zero keeps the current one.
func (e *Engine) Resize(width, height int, scale float64) {
	if scale > 0 {
		e.scale = scale
	}
	e.cam.SetViewport(float64(width), float64(height))
	e.width, e.height = e.physicalSize()
	e.canvas.Resize(e.width, e.height)
	e.static.surface.Resize(e.width, e.height)
	e.light.resize(e.width, e.height)
	e.changed = true
}

// --- listeners ---

// SetDrawListener sets the per-frame draw callback.
func (e *Engine) SetDrawListener(l DrawListener) { e.drawListener = l }

// SetUpdateListener sets the logic callback and its rate in updates per
// second. A rate <= 0 keeps the current rate.
func (e *Engine) SetUpdateListener(l UpdateListener, fps float64) {
	e.updateListener = l
	if fps > 0 {
		e.SetLogicRate(fps)
	}
}

// SetLogicRate sets how many times per second the update listener runs.
func (e *Engine) SetLogicRate(fps float64) {
	if fps <= 0 {
		fps = DefaultLogicFPS
	}
	e.logicInterval = time.Duration(float64(time.Second) / fps)
}

// SetViewportListener sets the viewport change callback.
func (e *Engine) SetViewportListener(l ViewportListener) { e.viewportListener = l }

func (e *Engine) notifyViewport(manual bool) {
	if e.viewportListener != nil {
		e.viewportListener.ViewportChanged(e, manual)
	}
}

// --- settings ---

// SetIsometric switches the projection.
func (e *Engine) SetIsometric(on bool) {
	if on {
		e.cam.Projection = Isometric
	} else {
		e.cam.Projection = Orthogonal
	}
	e.forceSceneChange()
}

// Isometric reports whether the isometric projection is active.
func (e *Engine) Isometric() bool { return e.cam.Projection == Isometric }

// SetFitGridToHeight toggles fixed-height mode.
func (e *Engine) SetFitGridToHeight(on bool) {
	e.cam.FitGridToHeight = on
	e.Resize(int(e.cam.WinW), int(e.cam.WinH), 0)
}

// SetFastRenderMode disables segmentation of wide isometric sprites.
func (e *Engine) SetFastRenderMode(on bool) { e.fastRender = on }

// FastRenderMode reports whether sprite segmentation is skipped.
func (e *Engine) FastRenderMode() bool { return e.fastRender }

// SetDoubleHeightTiles moves light blockers one grid cell down, for tile sets
// whose walls are drawn two cells tall.
func (e *Engine) SetDoubleHeightTiles(on bool) { e.doubleHeightTiles = on }

// SetFPSLimiter renders only every nth tick.
func (e *Engine) SetFPSLimiter(n int) { e.fpsLimiter = n }

// SetViewPadding grows culling bounds by padding pixels.
func (e *Engine) SetViewPadding(padding float64) {
	e.cam.ViewPadding = padding
	e.cam.CheckBounds()
}

// SetGridSize changes the unzoomed tile size, keeping the centered tile.
func (e *Engine) SetGridSize(size float64) {
	if size <= 0 {
		return
	}
	center := e.cam.CenterPosition()
	e.cam.GridSize = size
	e.Resize(int(e.cam.WinW), int(e.cam.WinH), 0)
	e.cam.SetMapDimensions(e.cam.MapDimensions())
	e.CenterOnCoord(float64(center.X), float64(center.Y), false)
}

// SetMinZoomLevel sets the lower zoom bound.
func (e *Engine) SetMinZoomLevel(v float64) { e.cam.MinZoom = v }

// SetMaxZoomLevel sets the upper zoom bound.
func (e *Engine) SetMaxZoomLevel(v float64) { e.cam.MaxZoom = v }

// ZoomLevel returns the current zoom.
func (e *Engine) ZoomLevel() float64 { return e.cam.Zoom }

// SetColorFilter darkens the scene with c at the given strength. Lights cut
// through the darkness. amount <= 0 disables the filter.
func (e *Engine) SetColorFilter(c Color, amount float64) {
	e.colorFilter = c
	e.filterAmount = amount
	e.hasFilter = true
}

// ClearColorFilter removes the color filter.
func (e *Engine) ClearColorFilter() {
	e.hasFilter = false
	e.filterAmount = 0
}

func (e *Engine) darkness() *Color {
	if !e.hasFilter || e.filterAmount <= 0 {
		return nil
	}
	c := e.colorFilter.WithAlpha(clamp01(e.filterAmount))
	return &c
}

// --- map and camera ---

// SetMapDimensions sets the map size in tiles. Negative values clear it.
// Pending draw calls are discarded.
func (e *Engine) SetMapDimensions(width, height int) {
	if !e.cam.SetMapDimensions(width, height) {
		e.cam.CheckBounds()
		e.changed = true
		return
	}
	e.main.Reset(&e.ctx.items)
	e.above.Reset(&e.ctx.items)
	e.seq = 0
	if e.staticCallMade {
		e.static.reset(&e.ctx.items)
	}
	e.cam.CheckBounds()
	e.changed = true
}

// MapDimensions returns the map size in tiles, or (-1, -1) when unset.
func (e *Engine) MapDimensions() (int, int) { return e.cam.MapDimensions() }

// forceSceneChange rebuilds everything derived from grid metrics.
func (e *Engine) forceSceneChange() {
	e.SetMapDimensions(e.cam.MapDimensions())
	e.static.reset(&e.ctx.items)
	e.cam.updateGrid()
	e.cam.setLimits()
	e.cam.CheckBounds()
	e.notifyViewport(true)
	e.changed = true
}

// PositionToCoords resolves a screen position to tile space.
func (e *Engine) PositionToCoords(x, y float64) Coord { return e.cam.PositionToCoords(x, y) }

// CenterPosition returns the tile in the middle of the viewport.
func (e *Engine) CenterPosition() Coord { return e.cam.CenterPosition() }

// CheckVisibility reports whether tile (x, y) is on screen.
func (e *Engine) CheckVisibility(x, y float64) bool { return e.cam.CheckVisibility(x, y) }

// ViewBounds returns the visible tile range.
func (e *Engine) ViewBounds() ViewBounds { return e.cam.ViewBounds() }

// CenterOnCoord centers the view on tile (x, y), or on world pixel (x, y)
// when exact is set.
func (e *Engine) CenterOnCoord(x, y float64, exact bool) {
	e.cam.CenterOnCoord(x, y, exact)
	e.changed = true
}

// ModifyViewX scrolls horizontally by amount pixels.
func (e *Engine) ModifyViewX(amount float64) {
	e.cam.ModifyView(amount, 0)
	e.changed = true
	e.notifyViewport(true)
}

// ModifyViewY scrolls vertically by amount pixels.
func (e *Engine) ModifyViewY(amount float64) {
	e.cam.ModifyView(0, amount)
	e.changed = true
	e.notifyViewport(true)
}

// LerpToCoord eases the view toward tile (x, y) a fraction speed of the way
// each frame, and calls done once within accuracy tiles. Replacing the lerp
// or calling CancelLerp drops the callback.
func (e *Engine) LerpToCoord(x, y float64, done func(), speed, accuracy float64) {
	e.cam.LerpTo(x, y, speed, accuracy, done)
}

// CancelLerp stops a LerpToCoord without calling its callback.
func (e *Engine) CancelLerp() { e.cam.CancelLerp() }

// ScrollToCoord tweens the view to tile (x, y) over duration seconds.
func (e *Engine) ScrollToCoord(x, y float64, duration float32, easeFn ease.TweenFunc, done func()) {
	e.cam.ScrollTo(x, y, duration, easeFn, done)
}

// DoZoom zooms one step in or out. A non-zero amt zooms by that relative
// amount, clamped to ±0.15.
func (e *Engine) DoZoom(zoomIn bool, amt float64) {
	e.SetZoomLevel(e.cam.zoomTarget(zoomIn, amt))
}

// SetZoomLevel changes the zoom, snapping values within 0.1 of 1 to 1 and
// clamping to the zoom range. The centered tile stays centered and the
// static layer is rebuilt.
func (e *Engine) SetZoomLevel(level float64) {
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return
	}
	e.cam.setZoom(level)
	e.instructionsReceived = true
	e.forceSceneChange()
	e.changed = true
	e.notifyViewport(true)
}

// StartPan begins continuous scrolling in dir until EndPan.
func (e *Engine) StartPan(dir Direction) { e.pan[dir] = true }

// EndPan stops scrolling in dir.
func (e *Engine) EndPan(dir Direction) { e.pan[dir] = false }
