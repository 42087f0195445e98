package scroll2d

import (
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// frameDuration is the length of one 60 Hz frame. Render deltas are
// expressed in these units.
const frameDuration = time.Second / 60

// Context owns the resources shared by a set of engines: the render item
// and light pools, scratch surfaces and the gradient cache. It drives every
// registered engine from one Tick and can run them as an ebiten.Game.
//
// A Context and its engines are not safe for concurrent use.
type Context struct {
	items     ItemPool
	lights    LightPool
	scratch   surfacePool
	gradients *gradientCache

	engines []*Engine
	nextID  uint64
	focus   *Engine
	log     logrus.FieldLogger

	running  bool
	started  bool
	start    time.Time
	last     time.Duration
	hasTick  bool
	closed   bool
	tickBuf  []*Engine
	poller   pointerPoller
	keyPan   bool
	outsideW int
	outsideH int
}

// NewContext creates an empty context.
func NewContext() (*Context, error) {
	g, err := newGradientCache()
	if err != nil {
		return nil, err
	}
	return &Context{
		gradients: g,
		nextID:    1,
		log:       logrus.StandardLogger(),
	}, nil
}

// SetLogger replaces the logger used for context events.
func (c *Context) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		c.log = l
	}
}

// Register adds e to the tick list and assigns its id. The first engine
// registered receives input.
func (c *Context) Register(e *Engine) {
	if slices.Contains(c.engines, e) {
		return
	}
	e.id = c.nextID
	c.nextID++
	c.engines = append(c.engines, e)
	if c.focus == nil {
		c.focus = e
	}
}

// Unregister removes e from the tick list.
func (c *Context) Unregister(e *Engine) {
	i := slices.Index(c.engines, e)
	if i < 0 {
		return
	}
	c.engines = slices.Delete(c.engines, i, i+1)
	if c.focus == e {
		c.focus = nil
		if len(c.engines) > 0 {
			c.focus = c.engines[0]
		}
	}
}

// Engines returns the registered engines in registration order. The slice
// must not be modified.
func (c *Context) Engines() []*Engine { return c.engines }

// Focus makes e the engine that receives pointer and wheel input.
func (c *Context) Focus(e *Engine) {
	if slices.Contains(c.engines, e) {
		c.focus = e
	}
}

// Focused returns the engine receiving input, or nil.
func (c *Context) Focused() *Engine { return c.focus }

// SetKeyboardPan lets the arrow keys pan the focused engine while the
// context runs as a game.
func (c *Context) SetKeyboardPan(on bool) { c.keyPan = on }

// Resize resizes every engine to width x height logical pixels. A scale of
// zero keeps each engine's current scale.
func (c *Context) Resize(width, height int, scale float64) {
	for _, e := range c.engines {
		e.Resize(width, height, scale)
	}
}

// Tick advances every engine by one animation frame: each engine renders,
// then runs its timers and logic listener. now is a monotonic timestamp.
// The delta passed to the engines is the time since the previous tick in
// 60 Hz frames; the first tick and non-finite values use 1.
func (c *Context) Tick(now time.Duration) {
	delta := 1.0
	if c.hasTick {
		delta = float64(now-c.last) / float64(frameDuration)
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
		delta = 1
	}
	c.last = now
	c.hasTick = true

	// Listeners may destroy engines mid-tick.
	c.tickBuf = append(c.tickBuf[:0], c.engines...)
	for _, e := range c.tickBuf {
		e.Render(delta)
		e.Update(now, delta)
	}
	clear(c.tickBuf)
}

// Close destroys every engine and releases the shared caches.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for len(c.engines) > 0 {
		c.engines[len(c.engines)-1].Destroy()
	}
	c.gradients.close()
}

// --- ebiten.Game ---

// Update implements ebiten.Game. It routes input to the focused engine and
// ticks every engine.
func (c *Context) Update() error {
	if !c.started {
		c.started = true
		c.start = time.Now()
	}
	c.running = true
	if e := c.focus; e != nil {
		inv := 1 / e.scale
		for _, ev := range c.poller.poll() {
			ev.X *= inv
			ev.Y *= inv
			e.HandlePointer(ev)
		}
		if _, wy := ebiten.Wheel(); wy != 0 {
			e.HandleWheel(-wy)
		}
		if c.keyPan {
			c.pollKeys(e)
		}
	}
	c.Tick(time.Since(c.start))
	return nil
}

var panKeys = [4]ebiten.Key{
	DirUp:    ebiten.KeyArrowUp,
	DirDown:  ebiten.KeyArrowDown,
	DirLeft:  ebiten.KeyArrowLeft,
	DirRight: ebiten.KeyArrowRight,
}

func (c *Context) pollKeys(e *Engine) {
	for dir, key := range panKeys {
		if ebiten.IsKeyPressed(key) {
			e.StartPan(Direction(dir))
		} else {
			e.EndPan(Direction(dir))
		}
	}
}

// Draw implements ebiten.Game. Engine canvases are drawn in registration
// order, so later engines overlay earlier ones.
func (c *Context) Draw(screen *ebiten.Image) {
	for _, e := range c.engines {
		screen.DrawImage(e.canvas.Image(), nil)
	}
}

// Layout implements ebiten.Game. Window size changes resize every engine;
// the screen is sized in device pixels of the focused engine.
func (c *Context) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != c.outsideW || outsideHeight != c.outsideH {
		c.outsideW, c.outsideH = outsideWidth, outsideHeight
		if c.started {
			c.Resize(outsideWidth, outsideHeight, 0)
		}
	}
	if e := c.focus; e != nil {
		return e.width, e.height
	}
	return outsideWidth, outsideHeight
}

// Run opens a resizable window sized to the focused engine and runs the
// context as a game until the window closes. Every engine is destroyed
// when Run returns.
func (c *Context) Run(title string) error {
	defer c.Close()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if e := c.focus; e != nil {
		ebiten.SetWindowSize(int(e.cam.WinW), int(e.cam.WinH))
	}
	c.log.WithField("engines", len(c.engines)).Debug("context running")
	err := ebiten.RunGame(c)
	c.running = false
	return err
}
