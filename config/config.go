// Package config loads demo configuration from a YAML file and OCCLUSION_ environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/spf13/viper"

	"github.com/lixenwraith/occlusion/audio"
	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/spatial"
	"github.com/lixenwraith/occlusion/vmath"
)

// EnvPrefix is prepended to every environment override, e.g. OCCLUSION_AUDIO_MUSIC_VOLUME
const EnvPrefix = "OCCLUSION"

// Config holds all configuration for the demo
type Config struct {
	Audio  audio.Config `mapstructure:"audio"`
	Assets AssetsConfig `mapstructure:"assets"`
	Engine EngineConfig `mapstructure:"engine"`
	Debug  bool         `mapstructure:"debug"`
}

// AssetsConfig names the sound files and where the event emitter sits
type AssetsConfig struct {
	EventSound  string     `mapstructure:"event_sound"`  // Empty uses the generated bell
	MusicStream string     `mapstructure:"music_stream"` // Empty uses the generated loop
	Emitter     vmath.Vec3 `mapstructure:"emitter"`
}

// EngineConfig tunes the spatial engine's output
type EngineConfig struct {
	SampleRate     int           `mapstructure:"sample_rate"`
	BufferDuration time.Duration `mapstructure:"buffer_duration"`
	SampleCacheTTL time.Duration `mapstructure:"sample_cache_ttl"`
}

// Options converts the engine settings to spatial options
func (e EngineConfig) Options() []spatial.Option {
	return []spatial.Option{
		spatial.WithSampleRate(beep.SampleRate(e.SampleRate)),
		spatial.WithBufferDuration(e.BufferDuration),
		spatial.WithSampleCacheTTL(e.SampleCacheTTL),
	}
}

// Defaults returns a Config with the stock scene: emitter behind the wall
func Defaults() Config {
	return Config{
		Audio: audio.DefaultConfig(),
		Assets: AssetsConfig{
			Emitter: vmath.Vec3{Y: 1, Z: -100},
		},
		Engine: EngineConfig{
			SampleRate:     constant.AudioSampleRate,
			BufferDuration: constant.AudioBufferDuration,
			SampleCacheTTL: constant.SampleCacheTTL,
		},
	}
}

// Validate checks the whole configuration
func (c Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return err
	}
	if c.Engine.SampleRate <= 0 {
		return fmt.Errorf("%w: engine sample_rate must be positive, got %d", audio.ErrInvalidConfig, c.Engine.SampleRate)
	}
	if c.Engine.BufferDuration <= 0 {
		return fmt.Errorf("%w: engine buffer_duration must be positive, got %s", audio.ErrInvalidConfig, c.Engine.BufferDuration)
	}
	if c.Engine.SampleCacheTTL <= 0 {
		return fmt.Errorf("%w: engine sample_cache_ttl must be positive, got %s", audio.ErrInvalidConfig, c.Engine.SampleCacheTTL)
	}
	return nil
}

// Load reads path (optional) over the defaults, applies environment overrides and validates
func Load(path string) (Config, error) {
	v := viper.New()
	registerDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	// Decoding over the defaults merges slices element-wise, a configured polygon replaces them
	if v.IsSet("audio.occluder.vertices") {
		var verts []vmath.Vec3
		if err := v.UnmarshalKey("audio.occluder.vertices", &verts); err != nil {
			return Config{}, fmt.Errorf("parsing occluder vertices: %w", err)
		}
		cfg.Audio.Occluder.Vertices = verts
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// registerDefaults makes scalar keys known to viper so environment overrides apply
// Vectors and the occluder polygon are file-only
func registerDefaults(v *viper.Viper, d Config) {
	a := d.Audio
	defaults := map[string]any{
		"debug":                           d.Debug,
		"assets.event_sound":              d.Assets.EventSound,
		"assets.music_stream":             d.Assets.MusicStream,
		"engine.sample_rate":              d.Engine.SampleRate,
		"engine.buffer_duration":          d.Engine.BufferDuration,
		"engine.sample_cache_ttl":         d.Engine.SampleCacheTTL,
		"audio.max_channels":              a.MaxChannels,
		"audio.right_handed":              a.RightHanded,
		"audio.doppler_scale":             a.DopplerScale,
		"audio.distance_factor":           a.DistanceFactor,
		"audio.rolloff_scale":             a.RolloffScale,
		"audio.music_volume":              a.MusicVolume,
		"audio.volume_step":               a.VolumeStep,
		"audio.event_volume":              a.EventVolume,
		"audio.filter_low_cutoff":         a.FilterLowCutoff,
		"audio.filter_high_cutoff":        a.FilterHighCutoff,
		"audio.occluder.direct_occlusion": a.Occluder.DirectOcclusion,
		"audio.occluder.reverb_occlusion": a.Occluder.ReverbOcclusion,
		"audio.occluder.double_sided":     a.Occluder.DoubleSided,
		"audio.occluder.active":           a.Occluder.Active,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments
func DefaultConfigTemplate() string {
	return `# Occlusion demo configuration
# Every scalar can be overridden from the environment, e.g.
#   OCCLUSION_AUDIO_MUSIC_VOLUME=0.5 OCCLUSION_DEBUG=true

debug: false

assets:
  event_sound: ""    # empty: generated bell
  music_stream: ""   # empty: generated loop
  emitter: {x: 0, y: 1, z: -100}

engine:
  sample_rate: 44100
  buffer_duration: 50ms
  sample_cache_ttl: 5m

audio:
  max_channels: 32
  right_handed: true
  doppler_scale: 1.0
  distance_factor: 1.0
  rolloff_scale: 1.0

  music_volume: 0.2
  volume_step: 0.05
  event_volume: 1.0
  filter_low_cutoff: 700
  filter_high_cutoff: 22000

  listener:
    forward: {x: 0, y: 0, z: -1}
    up: {x: 0, y: 1, z: 0}
    velocity: {x: 0, y: 0, z: 0}

  # One convex polygon in geometry-local space, moved to position
  occluder:
    position: {x: 0, y: 0, z: -50}
    direct_occlusion: 1.0   # 1 blocks the direct path
    reverb_occlusion: 0.0
    double_sided: false
    active: true
    vertices:
      - {x: 2, y: 0, z: -10}
      - {x: 2, y: 300, z: -10}
      - {x: -3, y: 300, z: -10}
      - {x: -3, y: 0, z: -10}
`
}

// WriteDefaultConfig creates a config file at path, refusing to overwrite an existing one
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
