package main

import (
	"fmt"
	"strings"

	"github.com/phanxgames/scroll2d"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SCROLL2D"

// Config is the viewer configuration. Values come from flags, SCROLL2D_*
// environment variables and an optional config file, in that order of
// precedence.
type Config struct {
	Engine scroll2d.Options `mapstructure:"engine"`

	// Map is the JSON tile map to view.
	Map string `mapstructure:"map"`
	// TileSize is the pixel size of the generated placeholder tiles.
	TileSize int `mapstructure:"tile_size"`

	// Darkness dims the map with DarknessColor so the cursor light shows.
	Darkness      float64 `mapstructure:"darkness"`
	DarknessColor string  `mapstructure:"darkness_color"`

	Script      string `mapstructure:"script"`
	Snapshot    bool   `mapstructure:"snapshot"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
	ThumbWidth  int    `mapstructure:"thumb_width"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Title    string `mapstructure:"title"`
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("scroll2d-view", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (yaml, toml or json)")
	fs.StringP("map", "m", "", "tile map JSON file")
	fs.Int("tile-size", scroll2d.DefaultGridSize, "placeholder tile size in pixels")
	fs.Int("width", 0, "viewport width")
	fs.Int("height", 0, "viewport height")
	fs.Float64("scale", 0, "device scale, 0 follows the monitor")
	fs.Bool("isometric", false, "use the isometric projection")
	fs.Bool("fast", false, "skip isometric sprite segmentation")
	fs.Float64("darkness", 0, "color filter strength")
	fs.String("script", "", "input script JSON file to replay")
	fs.Bool("snapshot", false, "save a full map render on the first frame")
	fs.String("snapshot-dir", "snapshots", "directory for snapshots and screenshots")
	fs.Int("thumb-width", 256, "width of the snapshot thumbnail, 0 disables it")
	fs.String("log-level", "info", "log level")
	fs.String("log-file", "", "also write logs to this rotated file")
	fs.Bool("debug", false, "log frame timing")
	return fs
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"width":        "engine.width",
	"height":       "engine.height",
	"scale":        "engine.scale",
	"isometric":    "engine.isometric",
	"fast":         "engine.fast_render_mode",
	"debug":        "engine.debug",
	"tile-size":    "tile_size",
	"snapshot-dir": "snapshot_dir",
	"thumb-width":  "thumb_width",
	"log-level":    "log_level",
	"log-file":     "log_file",
}

func setDefaults(v *viper.Viper) {
	d := scroll2d.DefaultOptions()
	v.SetDefault("engine.width", d.Width)
	v.SetDefault("engine.height", d.Height)
	v.SetDefault("engine.grid_size", d.GridSize)
	v.SetDefault("engine.min_zoom", d.MinZoom)
	v.SetDefault("engine.max_zoom", d.MaxZoom)
	v.SetDefault("engine.logic_fps", d.LogicFPS)
	v.SetDefault("engine.selection_color", d.SelectionColor)
	v.SetDefault("engine.debug_every", d.DebugEvery)
	v.SetDefault("darkness_color", "#000000")
	v.SetDefault("title", "scroll2d viewer")
}

// loadConfig parses args and merges them over the environment and the
// config file named by --config.
func loadConfig(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = f.Name
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Map == "" {
		return nil, fmt.Errorf("no map given, use --map or %s_MAP", envPrefix)
	}
	if cfg.TileSize <= 0 {
		return nil, fmt.Errorf("invalid tile size %d", cfg.TileSize)
	}
	if _, err := scroll2d.ParseHexColor(cfg.DarknessColor); err != nil {
		return nil, err
	}
	return &cfg, nil
}
