package audio

import (
	"fmt"
	"math"

	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/vmath"
)

// Config holds the facade parameters
// Zero-valued fields are not defaulted, start from DefaultConfig
type Config struct {
	MaxChannels    int     `mapstructure:"max_channels"`
	RightHanded    bool    `mapstructure:"right_handed"`
	DopplerScale   float64 `mapstructure:"doppler_scale"`
	DistanceFactor float64 `mapstructure:"distance_factor"`
	RolloffScale   float64 `mapstructure:"rolloff_scale"`

	Occluder OccluderConfig `mapstructure:"occluder"`
	Listener ListenerConfig `mapstructure:"listener"`

	MusicVolume      float64 `mapstructure:"music_volume"`
	VolumeStep       float64 `mapstructure:"volume_step"`
	EventVolume      float64 `mapstructure:"event_volume"`
	FilterLowCutoff  float64 `mapstructure:"filter_low_cutoff"`
	FilterHighCutoff float64 `mapstructure:"filter_high_cutoff"`
}

// OccluderConfig describes the single static occluding polygon
type OccluderConfig struct {
	Position        vmath.Vec3   `mapstructure:"position"`
	Vertices        []vmath.Vec3 `mapstructure:"vertices"`
	DirectOcclusion float64      `mapstructure:"direct_occlusion"`
	ReverbOcclusion float64      `mapstructure:"reverb_occlusion"`
	DoubleSided     bool         `mapstructure:"double_sided"`
	Active          bool         `mapstructure:"active"`
}

// ListenerConfig is the listener state not supplied per frame
type ListenerConfig struct {
	Forward  vmath.Vec3 `mapstructure:"forward"`
	Up       vmath.Vec3 `mapstructure:"up"`
	Velocity vmath.Vec3 `mapstructure:"velocity"`
}

// DefaultConfig returns the stock setup: 32 channels, right-handed, unit 3D settings,
// one wall occluder in front of the origin
func DefaultConfig() Config {
	return Config{
		MaxChannels:    constant.AudioMaxChannels,
		RightHanded:    true,
		DopplerScale:   1.0,
		DistanceFactor: 1.0,
		RolloffScale:   1.0,
		Occluder: OccluderConfig{
			Position:        vmath.Vec3{Z: constant.WallOffsetZ},
			Vertices:        WallVertices(),
			DirectOcclusion: constant.WallOcclusion,
			ReverbOcclusion: constant.WallReverbOccl,
			DoubleSided:     false,
			Active:          true,
		},
		Listener: ListenerConfig{
			Forward: vmath.Vec3{Z: -1},
			Up:      vmath.Vec3{Y: 1},
		},
		MusicVolume:      constant.MusicVolumeDefault,
		VolumeStep:       constant.MusicVolumeStep,
		EventVolume:      constant.EventVolumeDefault,
		FilterLowCutoff:  constant.MusicFilterLowCutoff,
		FilterHighCutoff: constant.MusicFilterHighCutoff,
	}
}

// WallVertices returns the default occluder quad in geometry-local space
func WallVertices() []vmath.Vec3 {
	return []vmath.Vec3{
		{X: constant.WallStartX, Y: 0, Z: constant.WallZ},
		{X: constant.WallStartX, Y: constant.WallHeight, Z: constant.WallZ},
		{X: constant.WallEndX, Y: constant.WallHeight, Z: constant.WallZ},
		{X: constant.WallEndX, Y: 0, Z: constant.WallZ},
	}
}

// Validate checks ranges; it does not modify the config
func (c Config) Validate() error {
	if c.MaxChannels <= 0 {
		return fmt.Errorf("%w: max_channels must be positive, got %d", ErrInvalidConfig, c.MaxChannels)
	}
	if c.DopplerScale < 0 || c.RolloffScale < 0 {
		return fmt.Errorf("%w: doppler_scale and rolloff_scale must be non-negative", ErrInvalidConfig)
	}
	if c.DistanceFactor <= 0 {
		return fmt.Errorf("%w: distance_factor must be positive, got %g", ErrInvalidConfig, c.DistanceFactor)
	}
	if len(c.Occluder.Vertices) < 3 {
		return fmt.Errorf("%w: occluder needs at least 3 vertices, got %d", ErrInvalidConfig, len(c.Occluder.Vertices))
	}
	if !inUnit(c.MusicVolume) {
		return fmt.Errorf("%w: music_volume must be in [0,1], got %g", ErrInvalidConfig, c.MusicVolume)
	}
	if !inUnit(c.VolumeStep) || c.VolumeStep == 0 {
		return fmt.Errorf("%w: volume_step must be in (0,1], got %g", ErrInvalidConfig, c.VolumeStep)
	}
	if c.EventVolume < 0 || math.IsNaN(c.EventVolume) {
		return fmt.Errorf("%w: event_volume must be non-negative, got %g", ErrInvalidConfig, c.EventVolume)
	}
	if c.FilterLowCutoff <= 0 || c.FilterHighCutoff <= 0 {
		return fmt.Errorf("%w: filter cutoffs must be positive", ErrInvalidConfig)
	}
	if c.FilterLowCutoff >= c.FilterHighCutoff {
		return fmt.Errorf("%w: filter_low_cutoff (%g) must be below filter_high_cutoff (%g)",
			ErrInvalidConfig, c.FilterLowCutoff, c.FilterHighCutoff)
	}
	if vmath.V3MagSq(c.Listener.Forward) == 0 || vmath.V3MagSq(c.Listener.Up) == 0 {
		return fmt.Errorf("%w: listener forward and up must be non-zero", ErrInvalidConfig)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
