package ecs

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/scroll2d"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// PositionData places an entity on the map in tile coordinates. Moving
// entities are drawn Step twentieths of a cell toward the target.
type PositionData struct {
	X, Y             float64
	Moving           bool
	TargetX, TargetY float64
	Step             float64
}

// SpriteData draws an image at the entity's position.
type SpriteData struct {
	Image   *ebiten.Image
	Options scroll2d.SpriteOptions
}

// LightData lights the entity's cell.
type LightData struct {
	Options scroll2d.LightOptions
}

var (
	Position = donburi.NewComponentType[PositionData]()
	Sprite   = donburi.NewComponentType[SpriteData]()
	Light    = donburi.NewComponentType[LightData]()
)

var (
	spriteQuery = donburi.NewQuery(filter.Contains(Position, Sprite))
	lightQuery  = donburi.NewQuery(filter.Contains(Position, Light))
)

// DrawEntities queues every entity with a Position and a Sprite or Light on
// e. Call it from the engine's draw listener. It returns the number of
// sprites that were on screen.
func DrawEntities(world donburi.World, e *scroll2d.Engine) int {
	drawn := 0
	spriteQuery.Each(world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		spr := Sprite.Get(entry)
		if spr.Image == nil {
			return
		}
		opts := spr.Options
		if pos.Moving {
			opts.Moving = true
			opts.TargetX, opts.TargetY = pos.TargetX, pos.TargetY
			opts.Step = pos.Step
		}
		if r := e.DrawSprite(spr.Image, pos.X, pos.Y, opts); r.Width > 0 {
			drawn++
		}
	})
	lightQuery.Each(world, func(entry *donburi.Entry) {
		pos := Position.Get(entry)
		opts := Light.Get(entry).Options
		if pos.Moving {
			opts.Moving = true
			opts.TargetX, opts.TargetY = pos.TargetX, pos.TargetY
			opts.Step = pos.Step
		}
		e.DrawLight(pos.X, pos.Y, opts)
	})
	return drawn
}
