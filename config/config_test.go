package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/occlusion/audio"
	"github.com/lixenwraith/occlusion/vmath"
)

// loadConfigFromYAML writes yaml to a temp file and loads it
func loadConfigFromYAML(t *testing.T, yaml string) (Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return Load(path)
}

// TestDefaults_Valid verifies the stock configuration passes validation
func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 32, cfg.Audio.MaxChannels)
	assert.InDelta(t, 0.2, cfg.Audio.MusicVolume, 1e-9)
	assert.InDelta(t, 0.05, cfg.Audio.VolumeStep, 1e-9)
	assert.Equal(t, 700.0, cfg.Audio.FilterLowCutoff)
	assert.Equal(t, 22000.0, cfg.Audio.FilterHighCutoff)
	assert.Equal(t, vmath.Vec3{Z: -50}, cfg.Audio.Occluder.Position)
	assert.Len(t, cfg.Audio.Occluder.Vertices, 4)
	assert.Equal(t, 44100, cfg.Engine.SampleRate)
	assert.Len(t, cfg.Engine.Options(), 3)
}

// TestLoad_NoFile verifies an empty path yields the defaults
func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

// TestLoad_TemplateMatchesDefaults verifies the commented template describes the defaults
func TestLoad_TemplateMatchesDefaults(t *testing.T) {
	cfg, err := loadConfigFromYAML(t, DefaultConfigTemplate())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

// TestLoad_PartialOverride verifies unspecified keys keep their defaults
func TestLoad_PartialOverride(t *testing.T) {
	cfg, err := loadConfigFromYAML(t, `
debug: true
assets:
  event_sound: sounds/door.wav
engine:
  buffer_duration: 100ms
audio:
  music_volume: 0.6
  occluder:
    position: {z: -80}
`)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "sounds/door.wav", cfg.Assets.EventSound)
	assert.Equal(t, "", cfg.Assets.MusicStream)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.BufferDuration)
	assert.InDelta(t, 0.6, cfg.Audio.MusicVolume, 1e-9)
	assert.InDelta(t, 0.05, cfg.Audio.VolumeStep, 1e-9)
	assert.Equal(t, -80.0, cfg.Audio.Occluder.Position.Z)
	assert.Equal(t, audio.WallVertices(), cfg.Audio.Occluder.Vertices)
}

// TestLoad_ReplacesPolygon verifies a configured polygon is not merged with the default wall
func TestLoad_ReplacesPolygon(t *testing.T) {
	cfg, err := loadConfigFromYAML(t, `
audio:
  occluder:
    double_sided: true
    vertices:
      - {x: 0, y: 0, z: 0}
      - {x: 10, y: 0, z: 0}
      - {x: 0, y: 10, z: 0}
`)
	require.NoError(t, err)

	assert.True(t, cfg.Audio.Occluder.DoubleSided)
	assert.Equal(t, []vmath.Vec3{{}, {X: 10}, {Y: 10}}, cfg.Audio.Occluder.Vertices)
}

// TestLoad_EnvOverride verifies OCCLUSION_ variables win over the file
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OCCLUSION_AUDIO_MUSIC_VOLUME", "0.75")
	t.Setenv("OCCLUSION_DEBUG", "true")
	t.Setenv("OCCLUSION_ENGINE_SAMPLE_RATE", "22050")

	cfg, err := loadConfigFromYAML(t, `
audio:
  music_volume: 0.4
`)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, cfg.Audio.MusicVolume, 1e-9)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 22050, cfg.Engine.SampleRate)
}

// TestLoad_Invalid verifies validation errors surface from Load
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"volume above one", "audio:\n  music_volume: 1.5\n", "music_volume"},
		{"cutoffs inverted", "audio:\n  filter_low_cutoff: 30000\n", "filter_low_cutoff"},
		{"zero channels", "audio:\n  max_channels: 0\n", "max_channels"},
		{"zero sample rate", "engine:\n  sample_rate: 0\n", "sample_rate"},
		{"two vertices", "audio:\n  occluder:\n    vertices:\n      - {x: 0}\n      - {x: 1}\n", "vertices"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfigFromYAML(t, tc.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

// TestLoad_MissingFile verifies a named file must exist
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestWriteDefaultConfig verifies the template is written once
func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "occlusion.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))

	assert.Error(t, WriteDefaultConfig(path), "expected refusal to overwrite")
}
