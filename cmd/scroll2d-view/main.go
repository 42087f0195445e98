// Command scroll2d-view opens a JSON tile map in a scroll2d engine. It can
// replay an input script and save a full map snapshot with a thumbnail.
//
// Usage:
//
//	scroll2d-view --map level.json [--isometric] [--darkness 0.7] [--snapshot]
//
// Tiles are drawn as solid placeholders, one distinct color per entry of the
// map's tile list.
//
// Every flag can also be set in a config file (--config) or through a
// SCROLL2D_* environment variable. A .env file in the working directory is
// loaded first.
package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/phanxgames/scroll2d"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "scroll2d-view:", err)
		os.Exit(2)
	}
	log, closer, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scroll2d-view:", err)
		os.Exit(2)
	}
	if closer != nil {
		defer closer.Close()
	}
	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("viewer failed")
		if closer != nil {
			closer.Close()
		}
		os.Exit(1)
	}
}

func run(cfg *Config, log *logrus.Logger) error {
	data, err := os.ReadFile(cfg.Map)
	if err != nil {
		return err
	}
	m, err := loadMap(data, cfg)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"map":    cfg.Map,
		"size":   fmt.Sprintf("%dx%d", m.Width, m.Height),
		"layers": len(m.Layers),
	}).Info("map loaded")

	ctx, err := scroll2d.NewContext()
	if err != nil {
		return err
	}
	ctx.SetLogger(log)
	ctx.SetKeyboardPan(true)

	opts := cfg.Engine
	opts.Logger = log
	e, err := scroll2d.NewEngine(ctx, opts)
	if err != nil {
		return err
	}
	e.SetMapDimensions(m.Width, m.Height)
	e.SetShowFPS(true)
	if cfg.Darkness > 0 {
		e.SetColorFilter(scroll2d.MustHexColor(cfg.DarknessColor), cfg.Darkness)
	}

	v := &viewer{cfg: cfg, log: log, m: m}
	e.SetDrawListener(scroll2d.DrawFunc(v.draw))
	e.SetUpdateListener(scroll2d.UpdateFunc(v.update), 0)
	e.SetHoverListener(scroll2d.TileFunc(v.hover))
	e.SetClickListener(scroll2d.TileFunc(v.click))
	e.CenterOnCoord(float64(m.Width)/2, float64(m.Height)/2, true)

	if cfg.Script != "" {
		raw, err := os.ReadFile(cfg.Script)
		if err != nil {
			return err
		}
		s, err := scroll2d.LoadInputScript(raw)
		if err != nil {
			return err
		}
		s.OnScreenshot(func(label string, img *image.NRGBA) { v.save(label, img) })
		e.SetInputScript(s)
		log.WithField("script", cfg.Script).Info("replaying input script")
	}
	if cfg.Snapshot {
		if err := e.RenderFullMap(func(img *image.NRGBA, err error) {
			if err != nil {
				log.WithError(err).Error("full map render failed")
				return
			}
			v.save("fullmap", img)
		}); err != nil {
			return err
		}
	}
	return ctx.Run(cfg.Title)
}

// loadMap parses the map JSON and gives each tile name a placeholder image.
func loadMap(data []byte, cfg *Config) (*scroll2d.TileMap, error) {
	m, err := scroll2d.LoadTileMap(data, nil)
	if err != nil {
		return nil, err
	}
	var names struct {
		Tiles []string `json:"tiles"`
	}
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	m.SetTileset(placeholderTiles(len(names.Tiles), cfg.TileSize))
	return m, nil
}

// placeholderTiles returns n solid tiles in distinct colors, indexed by GID.
func placeholderTiles(n, size int) []*ebiten.Image {
	tiles := make([]*ebiten.Image, n+1)
	for i, c := range colorful.FastHappyPalette(n) {
		r, g, b := c.RGB255()
		img := ebiten.NewImage(size, size)
		img.Fill(color.RGBA{r, g, b, 0xff})
		tiles[i+1] = img
	}
	return tiles
}

type viewer struct {
	cfg *Config
	log logrus.FieldLogger
	m   *scroll2d.TileMap

	cursor   scroll2d.TileEvent
	hasHover bool
}

func (v *viewer) draw(e *scroll2d.Engine, full bool) {
	v.m.Draw(e, full)
	if v.hasHover && v.cfg.Darkness > 0 {
		e.DrawLight(float64(v.cursor.X), float64(v.cursor.Y), scroll2d.LightOptions{Radius: 6, Intensity: 0.9})
	}
}

func (v *viewer) update(e *scroll2d.Engine, now time.Duration, delta float64) {
	v.m.Advance(int(delta * 1000 / 60))
}

func (v *viewer) hover(e *scroll2d.Engine, ev scroll2d.TileEvent) {
	v.cursor, v.hasHover = ev, true
}

func (v *viewer) click(e *scroll2d.Engine, ev scroll2d.TileEvent) {
	v.log.WithFields(logrus.Fields{"x": ev.X, "y": ev.Y}).Debug("click")
	e.PopText(float64(ev.X), float64(ev.Y), fmt.Sprintf("%d,%d", ev.X, ev.Y), scroll2d.ColorWhite)
}

func (v *viewer) save(label string, img *image.NRGBA) {
	path, err := saveWithThumb(v.cfg.SnapshotDir, label, img, v.cfg.ThumbWidth)
	if err != nil {
		v.log.WithError(err).Error("snapshot not saved")
		return
	}
	v.log.WithField("path", path).Info("snapshot saved")
}
