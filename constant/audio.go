package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
	AudioBitDepth   = 16
)

// Audio Engine Timing
const (
	// AudioBufferDuration determines output latency
	// 50ms keeps the speaker fed between 60 FPS updates
	AudioBufferDuration = 50 * time.Millisecond

	// AudioResampleQuality is the beep resampler quality for every channel
	AudioResampleQuality = 4

	// SampleCacheTTL keeps decoded samples for repeated loads of the same file
	SampleCacheTTL = 5 * time.Minute
)

// Audio Engine Limits
const (
	// AudioMaxChannels is the default number of simultaneous channels
	AudioMaxChannels = 32

	// AudioMinDistance is the distance (meters) below which no rolloff applies
	AudioMinDistance = 1.0

	// AudioMaxDistance is the distance (meters) beyond which rolloff stops
	AudioMaxDistance = 10000.0

	// AudioSpeedOfSound in meters per second, scaled by the distance factor
	AudioSpeedOfSound = 340.0

	// AudioDopplerSpeedLimit caps emitter/listener speed as a fraction of sound speed
	AudioDopplerSpeedLimit = 0.9
)

// Music Controls
const (
	MusicVolumeDefault = 0.2
	MusicVolumeStep    = 0.05

	// MusicFilterLowCutoff is the audible low-pass setting (Hz)
	MusicFilterLowCutoff = 700.0

	// MusicFilterHighCutoff leaves the music effectively unfiltered (Hz)
	MusicFilterHighCutoff = 22000.0

	// EventVolumeDefault is the maximum channel volume for event sounds
	EventVolumeDefault = 1.0
)

// Occluder Wall
// Wall sits in front of the emitter it hides, geometry offset places it in the world
const (
	WallStartX     = 2.0
	WallEndX       = -3.0
	WallHeight     = 300.0
	WallZ          = -10.0
	WallOffsetZ    = -50.0
	WallOcclusion  = 1.0
	WallReverbOccl = 0.0
)

// Generated Asset Sounds
const (
	BellSoundDuration           = 600 * time.Millisecond
	BellSoundAttack             = 5 * time.Millisecond
	BellSoundFundamentalRelease = 550 * time.Millisecond
	BellSoundOvertoneRelease    = 200 * time.Millisecond

	MusicLoopDuration = 4 * time.Second
	MusicBeatDuration = 500 * time.Millisecond
	MusicKickDuration = 100 * time.Millisecond
)
