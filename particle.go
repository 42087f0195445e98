package scroll2d

import (
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
)

// ParticleSystem is the particle collaborator of an engine. The engine
// advances it before drawing and draws it after the lighting pass. Positions
// passed to Play are unscrolled world pixels.
type ParticleSystem interface {
	Update(delta float64)
	Draw(dst *ebiten.Image, viewX, viewY, scale float64)
	// Play fires the named effect at (x, y). It reports whether the effect
	// exists.
	Play(name string, x, y float64) bool
}

// Range is a closed interval used for randomized particle properties.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// particle holds per-particle simulation state.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
	startR     float32
	startG     float32
	startB     float32
	endR       float32
	endG       float32
	endB       float32
	colorR     float32
	colorG     float32
	colorB     float32
}

// EffectConfig controls how an effect spawns and animates particles.
type EffectConfig struct {
	// MaxParticles is the pool size. New particles are dropped when full.
	MaxParticles int
	// Burst is the number of particles spawned by each Play.
	Burst int
	// EmitRate is the number of particles spawned per second while the
	// emitter runs continuously.
	EmitRate float64
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range
	// Speed is the range of initial speeds in pixels per second.
	Speed Range
	// Angle is the range of emission angles in radians.
	Angle Range
	// Spread scatters spawn positions horizontally, in pixels.
	Spread     Range
	StartScale Range
	EndScale   Range
	StartAlpha Range
	EndAlpha   Range
	// Gravity is the constant acceleration in pixels per second squared.
	Gravity    Vec2
	StartColor Color
	EndColor   Color
	// Image is drawn for each particle. Nil draws a Size-pixel square.
	Image     *ebiten.Image
	Size      float64
	BlendMode BlendMode
}

// ParticleEmitter simulates one effect's particle pool on the CPU.
type ParticleEmitter struct {
	config    EffectConfig
	particles []particle
	alive     int
	emitAccum float64
	active    bool
	x, y      float64
}

func newParticleEmitter(cfg EffectConfig) *ParticleEmitter {
	n := cfg.MaxParticles
	if n <= 0 {
		n = 128
	}
	if cfg.Size <= 0 {
		cfg.Size = 2
	}
	return &ParticleEmitter{
		config:    cfg,
		particles: make([]particle, n),
	}
}

// Start begins continuous emission at world position (x, y).
func (pe *ParticleEmitter) Start(x, y float64) {
	pe.x, pe.y = x, y
	pe.active = true
}

// Stop stops emitting new particles. Existing particles live out.
func (pe *ParticleEmitter) Stop() {
	pe.active = false
}

// Reset stops emitting and kills all alive particles.
func (pe *ParticleEmitter) Reset() {
	pe.active = false
	pe.alive = 0
	pe.emitAccum = 0
}

// IsActive reports whether the emitter emits continuously.
func (pe *ParticleEmitter) IsActive() bool { return pe.active }

// AliveCount returns the number of alive particles.
func (pe *ParticleEmitter) AliveCount() int { return pe.alive }

// Config returns the emitter's config for live tuning.
func (pe *ParticleEmitter) Config() *EffectConfig { return &pe.config }

// Burst spawns the configured burst at (x, y).
func (pe *ParticleEmitter) Burst(x, y float64) {
	n := max(pe.config.Burst, 1)
	for i := 0; i < n && pe.alive < len(pe.particles); i++ {
		pe.spawn(x, y)
	}
}

// update advances the simulation by dt seconds.
func (pe *ParticleEmitter) update(dt float64) {
	gx := pe.config.Gravity.X * dt
	gy := pe.config.Gravity.Y * dt

	i := 0
	for i < pe.alive {
		p := &pe.particles[i]
		p.life -= dt
		if p.life <= 0 {
			pe.alive--
			pe.particles[i] = pe.particles[pe.alive]
			continue
		}
		p.vx += gx
		p.vy += gy
		p.x += p.vx * dt
		p.y += p.vy * dt

		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)
		p.colorR = lerp32(p.startR, p.endR, t)
		p.colorG = lerp32(p.startG, p.endG, t)
		p.colorB = lerp32(p.startB, p.endB, t)
		i++
	}

	if pe.active && pe.config.EmitRate > 0 {
		pe.emitAccum += pe.config.EmitRate * dt
		for pe.emitAccum >= 1.0 {
			pe.emitAccum -= 1.0
			if pe.alive < len(pe.particles) {
				pe.spawn(pe.x, pe.y)
			}
		}
	}
}

// spawn initializes the particle at slot alive and increments alive.
func (pe *ParticleEmitter) spawn(x, y float64) {
	p := &pe.particles[pe.alive]
	cfg := &pe.config

	angle := cfg.Angle.Random()
	speed := cfg.Speed.Random()
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed
	p.x = x + cfg.Spread.Random()
	p.y = y

	p.life = cfg.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(cfg.StartScale.Random())
	p.endScale = float32(cfg.EndScale.Random())
	p.scale = p.startScale
	p.startAlpha = float32(cfg.StartAlpha.Random())
	p.endAlpha = float32(cfg.EndAlpha.Random())
	p.alpha = p.startAlpha

	p.startR = float32(cfg.StartColor.R)
	p.startG = float32(cfg.StartColor.G)
	p.startB = float32(cfg.StartColor.B)
	p.endR = float32(cfg.EndColor.R)
	p.endG = float32(cfg.EndColor.G)
	p.endB = float32(cfg.EndColor.B)
	p.colorR = p.startR
	p.colorG = p.startG
	p.colorB = p.startB

	pe.alive++
}

func (pe *ParticleEmitter) draw(dst *ebiten.Image, viewX, viewY, scale float64, op *ebiten.DrawImageOptions) {
	img := pe.config.Image
	size := 1.0
	if img == nil {
		img = WhitePixel
		size = pe.config.Size
	}
	hw := float64(img.Bounds().Dx()) * size / 2
	hh := float64(img.Bounds().Dy()) * size / 2
	op.Blend = pe.config.BlendMode.EbitenBlend()
	for i := 0; i < pe.alive; i++ {
		p := &pe.particles[i]
		s := float64(p.scale)
		op.GeoM.Reset()
		op.GeoM.Translate(-hw/size, -hh/size)
		op.GeoM.Scale(size*s, size*s)
		op.GeoM.Translate(p.x-viewX, p.y-viewY)
		op.GeoM.Scale(scale, scale)
		op.ColorScale.Reset()
		a := p.alpha
		op.ColorScale.Scale(p.colorR*a, p.colorG*a, p.colorB*a, a)
		dst.DrawImage(img, op)
	}
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Particles is the default ParticleSystem: a set of named effects, each
// with its own emitter.
type Particles struct {
	effects map[string]*ParticleEmitter
	order   []*ParticleEmitter
	op      ebiten.DrawImageOptions
}

// NewParticles creates an empty particle system.
func NewParticles() *Particles {
	return &Particles{effects: make(map[string]*ParticleEmitter)}
}

// Register adds or replaces the named effect and returns its emitter.
func (ps *Particles) Register(name string, cfg EffectConfig) *ParticleEmitter {
	pe := newParticleEmitter(cfg)
	if old, ok := ps.effects[name]; ok {
		for i, o := range ps.order {
			if o == old {
				ps.order[i] = pe
			}
		}
	} else {
		ps.order = append(ps.order, pe)
	}
	ps.effects[name] = pe
	return pe
}

// Emitter returns the emitter of the named effect, or nil.
func (ps *Particles) Emitter(name string) *ParticleEmitter { return ps.effects[name] }

// Alive returns the number of alive particles across all effects.
func (ps *Particles) Alive() int {
	n := 0
	for _, pe := range ps.order {
		n += pe.alive
	}
	return n
}

// Play implements ParticleSystem.
func (ps *Particles) Play(name string, x, y float64) bool {
	pe, ok := ps.effects[name]
	if !ok {
		return false
	}
	pe.Burst(x, y)
	return true
}

// Update implements ParticleSystem. delta is in 60 Hz frames.
func (ps *Particles) Update(delta float64) {
	dt := delta / 60
	for _, pe := range ps.order {
		pe.update(dt)
	}
}

// Draw implements ParticleSystem.
func (ps *Particles) Draw(dst *ebiten.Image, viewX, viewY, scale float64) {
	for _, pe := range ps.order {
		pe.draw(dst, viewX, viewY, scale, &ps.op)
	}
}

// SetParticleSystem attaches a particle system. Nil disables particles.
func (e *Engine) SetParticleSystem(ps ParticleSystem) { e.particles = ps }

// PlayParticleEffect fires the named effect at cell (x, y).
func (e *Engine) PlayParticleEffect(name string, x, y float64) bool {
	if e.particles == nil {
		return false
	}
	px, py := e.cam.Project(x, y)
	return e.particles.Play(name, px, py)
}
