// Package config loads the host settings: defaults, then an optional config
// file, then VRPAWN_* environment variables, then command line flags.
package config

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/locomotion"
	"github.com/soar/VRPawn/internal/logging"
	"github.com/soar/VRPawn/internal/navscene"
	"github.com/soar/VRPawn/internal/pawn"
	"github.com/soar/VRPawn/internal/raytrace"
)

const envPrefix = "VRPAWN"

// Input sources.
const (
	SourceWebSocket = "websocket"
	SourceSDL       = "sdl"
)

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	Minify bool   `mapstructure:"minify"`
}

type InputConfig struct {
	InvertY   bool `mapstructure:"invert_y"`
	Precision int  `mapstructure:"precision"`
}

type RayConfig struct {
	Forward []float64 `mapstructure:"forward"`
}

type ProfilesConfig struct {
	// File is an optional YAML document of extra controller profiles.
	File         string `mapstructure:"file"`
	AssetBaseURL string `mapstructure:"asset_base_url"`
}

// SceneConfig replaces the built-in scene when any geometry is given.
type SceneConfig struct {
	Planes []navscene.Plane `mapstructure:"planes"`
	Boxes  []navscene.Box   `mapstructure:"boxes"`
}

type BroadcastConfig struct {
	FullSyncInterval time.Duration `mapstructure:"full_sync_interval"`
}

type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Log        logging.Config    `mapstructure:"log"`
	Source     string            `mapstructure:"source"`
	Input      InputConfig       `mapstructure:"input"`
	Ray        RayConfig         `mapstructure:"ray"`
	Locomotion locomotion.Config `mapstructure:"locomotion"`
	Profiles   ProfilesConfig    `mapstructure:"profiles"`
	Scene      SceneConfig       `mapstructure:"scene"`
	Broadcast  BroadcastConfig   `mapstructure:"broadcast"`
}

func setDefaults(v *viper.Viper) {
	lg := logging.DefaultConfig()
	in := gamepad.DefaultSamplerConfig()
	lc := locomotion.DefaultConfig()
	fwd := raytrace.DefaultForward

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.minify", true)
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.development", lg.Development)
	v.SetDefault("source", SourceWebSocket)
	v.SetDefault("input.invert_y", in.InvertY)
	v.SetDefault("input.precision", in.Precision)
	v.SetDefault("ray.forward", []float64{fwd.X(), fwd.Y(), fwd.Z()})
	v.SetDefault("locomotion.snap_threshold", lc.SnapThreshold)
	v.SetDefault("locomotion.snap_angle", lc.SnapAngle)
	v.SetDefault("locomotion.max_opacity", lc.MaxOpacity)
	v.SetDefault("profiles.file", "")
	v.SetDefault("profiles.asset_base_url", "/profiles/")
	v.SetDefault("scene.planes", []navscene.Plane{})
	v.SetDefault("scene.boxes", []navscene.Box{})
	v.SetDefault("broadcast.full_sync_interval", 5*time.Second)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("vrpawn", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (yaml or toml)")
	fs.String("server.addr", ":8080", "HTTP listen address")
	fs.String("source", SourceWebSocket, "input source: websocket or sdl")
	fs.String("log.level", "info", "log level")
	fs.String("log.format", "console", "log encoding: console or json")
	fs.Bool("log.development", false, "development logging")
	fs.String("profiles.file", "", "extra controller profiles (yaml)")
	fs.String("profiles.asset_base_url", "/profiles/", "base URL controller models are fetched from")
	return fs
}

// Load parses args (without the program name) and returns the merged
// configuration. pflag.ErrHelp is returned unwrapped when help was asked for.
func Load(args []string) (Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, pflag.ErrHelp
		}
		return Config{}, errors.Wrap(err, "parse flags")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, errors.Wrap(err, "bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	if c.Source != SourceWebSocket && c.Source != SourceSDL {
		err = multierr.Append(err, errors.Errorf("source: unknown input source %q", c.Source))
	}
	if c.Server.Addr == "" {
		err = multierr.Append(err, errors.New("server.addr: empty"))
	}
	if len(c.Ray.Forward) != 3 {
		err = multierr.Append(err, errors.Errorf("ray.forward: want 3 components, got %d", len(c.Ray.Forward)))
	} else if c.forward().Len() == 0 {
		err = multierr.Append(err, errors.New("ray.forward: zero vector"))
	}
	if c.Locomotion.SnapThreshold <= 0 || c.Locomotion.SnapThreshold > 1 {
		err = multierr.Append(err, errors.Errorf("locomotion.snap_threshold: %v not in (0, 1]", c.Locomotion.SnapThreshold))
	}
	if c.Locomotion.MaxOpacity < 0 || c.Locomotion.MaxOpacity > 1 {
		err = multierr.Append(err, errors.Errorf("locomotion.max_opacity: %v not in [0, 1]", c.Locomotion.MaxOpacity))
	}
	if c.Broadcast.FullSyncInterval <= 0 {
		err = multierr.Append(err, errors.New("broadcast.full_sync_interval: must be positive"))
	}
	if _, serr := navscene.New(c.Scene.Planes, c.Scene.Boxes); serr != nil {
		err = multierr.Append(err, errors.Wrap(serr, "scene"))
	}
	return err
}

func (c Config) forward() mgl64.Vec3 {
	if len(c.Ray.Forward) != 3 {
		return raytrace.DefaultForward
	}
	return mgl64.Vec3{c.Ray.Forward[0], c.Ray.Forward[1], c.Ray.Forward[2]}
}

// Pawn returns the pipeline tunables.
func (c Config) Pawn() pawn.Config {
	return pawn.Config{
		Sampler: gamepad.SamplerConfig{
			InvertY:   c.Input.InvertY,
			Precision: c.Input.Precision,
		},
		Forward:    c.forward(),
		Locomotion: c.Locomotion,
	}
}

// NavScene builds the configured scene, or the built-in one when no
// geometry is configured.
func (c Config) NavScene() (*navscene.Scene, error) {
	if len(c.Scene.Planes) == 0 && len(c.Scene.Boxes) == 0 {
		return navscene.Default(), nil
	}
	return navscene.New(c.Scene.Planes, c.Scene.Boxes)
}
