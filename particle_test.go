package scroll2d

import (
	"math"
	"testing"
)

// steadyEffect emits particles that fly right at 100 px/s for one second,
// shrinking to half size and fading from white to black.
func steadyEffect(pool int) EffectConfig {
	return EffectConfig{
		MaxParticles: pool,
		EmitRate:     100,
		Lifetime:     Range{Min: 1, Max: 1},
		Speed:        Range{Min: 100, Max: 100},
		StartScale:   Range{Min: 1, Max: 1},
		EndScale:     Range{Min: 0.5, Max: 0.5},
		StartAlpha:   Range{Min: 1, Max: 1},
		StartColor:   ColorWhite,
		EndColor:     ColorBlack,
	}
}

// spawnOne starts pe, lets it emit for a millisecond and stops it again.
func spawnOne(t *testing.T, pe *ParticleEmitter) *particle {
	t.Helper()
	pe.Start(0, 0)
	pe.update(0.001)
	pe.Stop()
	if pe.AliveCount() == 0 {
		t.Fatal("no particle spawned")
	}
	return &pe.particles[0]
}

func TestEmitterPoolSize(t *testing.T) {
	cases := []struct {
		cfg      EffectConfig
		wantPool int
		wantSize float64
	}{
		{steadyEffect(500), 500, 2},
		{EffectConfig{}, 128, 2},
		{EffectConfig{MaxParticles: 3, Size: 6}, 3, 6},
	}
	for _, tc := range cases {
		pe := newParticleEmitter(tc.cfg)
		if len(pe.particles) != tc.wantPool {
			t.Errorf("pool = %d, want %d", len(pe.particles), tc.wantPool)
		}
		if pe.config.Size != tc.wantSize {
			t.Errorf("size = %v, want %v", pe.config.Size, tc.wantSize)
		}
		if pe.AliveCount() != 0 || pe.IsActive() {
			t.Error("new emitter should be idle and empty")
		}
	}
}

func TestEmitterLifecycle(t *testing.T) {
	pe := newParticleEmitter(steadyEffect(100))
	pe.Start(10, 20)
	pe.update(0.1)
	running := pe.AliveCount()
	if !pe.IsActive() || running == 0 {
		t.Fatalf("active/alive = %v/%d after Start", pe.IsActive(), running)
	}

	pe.Stop()
	pe.update(0.1)
	if pe.IsActive() {
		t.Error("emitter active after Stop")
	}
	if pe.AliveCount() != running {
		t.Errorf("alive after Stop = %d, want %d (no new spawns, none expired)", pe.AliveCount(), running)
	}

	pe.Reset()
	if pe.AliveCount() != 0 {
		t.Errorf("alive after Reset = %d, want 0", pe.AliveCount())
	}
}

func TestEmitterRate(t *testing.T) {
	cfg := steadyEffect(1000)
	cfg.EmitRate = 60
	pe := newParticleEmitter(cfg)
	pe.Start(0, 0)
	for range 4 {
		pe.update(0.125)
	}
	if pe.AliveCount() != 30 {
		t.Errorf("alive after 0.5s at 60/s = %d, want 30", pe.AliveCount())
	}
}

func TestEmitterRateCappedByPool(t *testing.T) {
	cfg := steadyEffect(5)
	cfg.EmitRate = 10000
	pe := newParticleEmitter(cfg)
	pe.Start(0, 0)
	pe.update(1)
	if pe.AliveCount() != 5 {
		t.Errorf("alive = %d, want 5", pe.AliveCount())
	}
}

func TestEmitterExpiresEverything(t *testing.T) {
	cfg := steadyEffect(100)
	cfg.Lifetime = Range{Min: 0.05, Max: 0.05}
	pe := newParticleEmitter(cfg)
	pe.Start(0, 0)
	pe.update(0.02)
	pe.Stop()
	pe.update(0.1)
	if pe.AliveCount() != 0 {
		t.Errorf("alive = %d, want 0 once every lifetime has passed", pe.AliveCount())
	}
}

func TestParticleMotion(t *testing.T) {
	cases := []struct {
		name           string
		angle, speed   float64
		gravity        Vec2
		wantVX, wantVY float64
	}{
		{"right", 0, 100, Vec2{}, 100, 0},
		{"down", math.Pi / 2, 100, Vec2{}, 0, 100},
		{"falling", 0, 0, Vec2{Y: 100}, 0, 100},
	}
	for _, tc := range cases {
		cfg := steadyEffect(1)
		cfg.EmitRate = 10000
		cfg.Lifetime = Range{Min: 10, Max: 10}
		cfg.Angle = Range{Min: tc.angle, Max: tc.angle}
		cfg.Speed = Range{Min: tc.speed, Max: tc.speed}
		cfg.Gravity = tc.gravity
		pe := newParticleEmitter(cfg)
		p := spawnOne(t, pe)
		pe.update(1)
		assertNear(t, tc.name+" vx", p.vx, tc.wantVX)
		assertNear(t, tc.name+" vy", p.vy, tc.wantVY)
		if tc.gravity.Y > 0 && p.y < 50 {
			t.Errorf("%s: y = %f, want > 50", tc.name, p.y)
		}
	}
}

func TestParticleFadesOverLifetime(t *testing.T) {
	cfg := steadyEffect(1)
	cfg.EmitRate = 1000
	cfg.StartScale = Range{Min: 2, Max: 2}
	cfg.EndScale = Range{}
	cfg.StartColor = ColorRed
	cfg.EndColor = Color{G: 1, A: 1}
	pe := newParticleEmitter(cfg)
	p := spawnOne(t, pe)

	assertNear(t, "scale at birth", float64(p.scale), 2)
	assertNear(t, "alpha at birth", float64(p.alpha), 1)
	assertNear(t, "red at birth", float64(p.colorR), 1)

	pe.update(0.5)
	assertNear(t, "age", 1-p.life/p.maxLife, 0.5)
	assertNear(t, "scale at half life", float64(p.scale), 1)
	assertNear(t, "alpha at half life", float64(p.alpha), 0.5)
	assertNear(t, "green at half life", float64(p.colorG), 0.5)
}

func TestEmitterBurst(t *testing.T) {
	cases := []struct {
		pool, burst, want int
	}{
		{4, 10, 4},
		{10, 0, 1},
		{10, 3, 3},
	}
	for _, tc := range cases {
		cfg := steadyEffect(tc.pool)
		cfg.Burst = tc.burst
		pe := newParticleEmitter(cfg)
		pe.Burst(5, 5)
		if pe.AliveCount() != tc.want {
			t.Errorf("pool %d burst %d: alive = %d, want %d", tc.pool, tc.burst, pe.AliveCount(), tc.want)
		}
		if pe.IsActive() {
			t.Error("Burst should not start continuous emission")
		}
	}
}

func TestRangeRandom(t *testing.T) {
	r := Range{Min: 10, Max: 20}
	for range 100 {
		if v := r.Random(); v < 10 || v > 20 {
			t.Fatalf("Random() = %f, outside [10, 20]", v)
		}
	}
	if (Range{Min: 5, Max: 5}).Random() != 5 {
		t.Error("degenerate range should return Min")
	}
}

func TestEmitterUpdateZeroAllocs(t *testing.T) {
	cfg := steadyEffect(1000)
	cfg.EmitRate = 500
	pe := newParticleEmitter(cfg)
	pe.Start(0, 0)
	for range 100 {
		pe.update(1.0 / 60)
	}
	allocs := testing.AllocsPerRun(100, func() { pe.update(1.0 / 60) })
	if allocs > 0 {
		t.Errorf("update allocs = %f, want 0", allocs)
	}
}

func TestParticlesRegistry(t *testing.T) {
	ps := NewParticles()
	if ps.Play("missing", 0, 0) {
		t.Error("Play of an unregistered effect should report false")
	}

	first := ps.Register("dust", steadyEffect(10))
	second := ps.Register("dust", steadyEffect(20))
	if first == second || ps.Emitter("dust") != second {
		t.Error("Register should replace the emitter under the same name")
	}
	if len(ps.order) != 1 {
		t.Errorf("order len = %d, want 1", len(ps.order))
	}
	second.Config().EmitRate = 999
	if ps.Emitter("dust").config.EmitRate != 999 {
		t.Error("Config should allow live tuning")
	}
}

func TestParticlesUpdateInFrames(t *testing.T) {
	ps := NewParticles()
	cfg := steadyEffect(10)
	cfg.Lifetime = Range{Min: 0.5, Max: 0.5}
	ps.Register("spark", cfg)
	if !ps.Play("spark", 0, 0) || ps.Alive() != 1 {
		t.Fatalf("after Play alive = %d, want 1", ps.Alive())
	}
	ps.Update(29)
	if ps.Alive() != 1 {
		t.Errorf("alive after 29 frames = %d, want 1", ps.Alive())
	}
	ps.Update(2)
	if ps.Alive() != 0 {
		t.Errorf("alive after 31 frames = %d, want 0", ps.Alive())
	}
}

func TestPlayParticleEffectProjectsCell(t *testing.T) {
	e := newTestEngine(t, false)
	if e.PlayParticleEffect("spark", 1, 1) {
		t.Error("no particle system attached, Play should report false")
	}

	ps := NewParticles()
	cfg := steadyEffect(1)
	cfg.Speed = Range{}
	ps.Register("spark", cfg)
	e.SetParticleSystem(ps)
	if !e.PlayParticleEffect("spark", 2, 3) {
		t.Fatal("PlayParticleEffect returned false")
	}
	p := ps.Emitter("spark").particles[0]
	assertNear(t, "x", p.x, 80)
	assertNear(t, "y", p.y, 120)
}

func BenchmarkParticleUpdate_1000(b *testing.B) {
	cfg := steadyEffect(1000)
	cfg.EmitRate = 500
	pe := newParticleEmitter(cfg)
	pe.Start(0, 0)
	for range 200 {
		pe.update(1.0 / 60)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		pe.update(1.0 / 60)
	}
}
