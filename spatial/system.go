package spatial

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/vmath"
)

// Option configures a System at creation
type Option func(*System)

// WithOutput replaces the default speaker output
func WithOutput(o Output) Option {
	return func(s *System) {
		if o != nil {
			s.output = o
		}
	}
}

// WithSampleRate sets the mixing rate; sounds are resampled to it
func WithSampleRate(sr beep.SampleRate) Option {
	return func(s *System) {
		if sr > 0 {
			s.sampleRate = sr
		}
	}
}

// WithBufferDuration sets the output buffer length (latency)
func WithBufferDuration(d time.Duration) Option {
	return func(s *System) {
		if d > 0 {
			s.bufferDuration = d
		}
	}
}

// WithSampleCacheTTL sets how long decoded samples stay cached after last load
func WithSampleCacheTTL(d time.Duration) Option {
	return func(s *System) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

// Stats is a snapshot of engine counters
type Stats struct {
	Ticks    uint64 // Update calls
	Playing  int    // Live channels
	Reaped   uint64 // Channels released after finishing or stopping
	Stolen   uint64 // Channels stopped to honor the channel limit
	Geometry int    // Registered geometry objects
}

// listenerState is the single listener; orientation defaults to +Z forward, +Y up
type listenerState struct {
	pos     vmath.Vec3
	vel     vmath.Vec3
	forward vmath.Vec3
	up      vmath.Vec3
}

// System owns the output device, the mixer, every channel, DSP node and geometry
// All public methods are safe to call from one host goroutine while the output
// goroutine streams; mu serializes graph changes against mixing
type System struct {
	mu sync.Mutex

	output         Output
	sampleRate     beep.SampleRate
	bufferDuration time.Duration
	cacheTTL       time.Duration
	cache          *sampleCache

	initialized bool
	closed      bool
	maxChannels int
	flags       InitFlags

	dopplerScale   float64
	distanceFactor float64
	rolloffScale   float64
	listener       listenerState

	mixer      *beep.Mixer
	channels   []*Channel
	geometries []*Geometry

	ticks  uint64
	reaped uint64
	stolen uint64
}

// Create allocates an uninitialized System; call Init before use
func Create(opts ...Option) (*System, error) {
	s := &System{
		output:         SpeakerOutput{},
		sampleRate:     beep.SampleRate(constant.AudioSampleRate),
		bufferDuration: constant.AudioBufferDuration,
		cacheTTL:       constant.SampleCacheTTL,
		dopplerScale:   1,
		distanceFactor: 1,
		rolloffScale:   1,
		listener: listenerState{
			forward: vmath.Vec3{Z: 1},
			up:      vmath.Vec3{Y: 1},
		},
		mixer: &beep.Mixer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newSampleCache(s.cacheTTL)
	return s, nil
}

// Init opens the output and starts mixing
func (s *System) Init(maxChannels int, flags InitFlags) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.initialized:
		s.mu.Unlock()
		return ErrAlreadyInitialized
	case maxChannels <= 0:
		s.mu.Unlock()
		return fmt.Errorf("%w: max channels %d", ErrInvalidParam, maxChannels)
	}
	sr := s.sampleRate
	bufSize := sr.N(s.bufferDuration)
	s.mu.Unlock()

	// Output locks are taken outside mu: the output goroutine calls Stream, which takes mu
	if err := s.output.Init(sr, bufSize); err != nil {
		return fmt.Errorf("output init: %w", err)
	}

	s.mu.Lock()
	s.maxChannels = maxChannels
	s.flags = flags
	s.initialized = true
	s.mu.Unlock()

	s.output.Play(s)
	return nil
}

// Set3DSettings sets the global doppler scale, units-per-meter factor and rolloff scale
func (s *System) Set3DSettings(dopplerScale, distanceFactor, rolloffScale float64) error {
	if dopplerScale < 0 || distanceFactor <= 0 || rolloffScale < 0 {
		return fmt.Errorf("%w: 3d settings doppler=%g distance=%g rolloff=%g",
			ErrInvalidParam, dopplerScale, distanceFactor, rolloffScale)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	s.dopplerScale = dopplerScale
	s.distanceFactor = distanceFactor
	s.rolloffScale = rolloffScale
	return nil
}

// Get3DSettings returns doppler scale, distance factor and rolloff scale
func (s *System) Get3DSettings() (dopplerScale, distanceFactor, rolloffScale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dopplerScale, s.distanceFactor, s.rolloffScale
}

// Set3DListenerAttributes updates listener 0; nil arguments keep their previous value
func (s *System) Set3DListenerAttributes(listener int, pos, vel, forward, up *Vector) error {
	if listener != 0 {
		return fmt.Errorf("%w: listener %d", ErrInvalidParam, listener)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}

	next := s.listener
	if pos != nil {
		next.pos = pos.ToVec3()
	}
	if vel != nil {
		next.vel = vel.ToVec3()
	}
	if forward != nil {
		next.forward = forward.ToVec3()
	}
	if up != nil {
		next.up = up.ToVec3()
	}
	if vmath.V3MagSq(next.forward) == 0 || vmath.V3MagSq(next.up) == 0 {
		return fmt.Errorf("%w: zero listener orientation", ErrInvalidParam)
	}
	s.listener = next
	return nil
}

// Get3DListenerAttributes returns listener 0 position, velocity, forward and up
func (s *System) Get3DListenerAttributes() (pos, vel, forward, up Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listener
	return VectorFrom(l.pos), VectorFrom(l.vel), VectorFrom(l.forward), VectorFrom(l.up)
}

// Update applies pending 3D state to every channel and reaps finished ones
// Must run once per frame for positional audio to track the listener
func (s *System) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}

	live := s.channels[:0]
	for _, c := range s.channels {
		if c.stopped || c.done {
			c.release()
			s.reaped++
			continue
		}
		c.update3D()
		live = append(live, c)
	}
	for i := len(live); i < len(s.channels); i++ {
		s.channels[i] = nil
	}
	s.channels = live
	s.ticks++
	return nil
}

// Stats returns engine counters
func (s *System) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	playing := 0
	for _, c := range s.channels {
		if !c.stopped && !c.done {
			playing++
		}
	}
	return Stats{
		Ticks:    s.ticks,
		Playing:  playing,
		Reaped:   s.reaped,
		Stolen:   s.stolen,
		Geometry: len(s.geometries),
	}
}

// SampleRate returns the mixing rate
func (s *System) SampleRate() beep.SampleRate {
	return s.sampleRate
}

// Close stops all channels, releases geometry and shuts the output down
// Safe to call more than once
func (s *System) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	for _, c := range s.channels {
		c.stopped = true
		c.release()
	}
	s.channels = nil
	for _, g := range s.geometries {
		g.released = true
	}
	s.geometries = nil
	s.mixer.Clear()
	wasInit := s.initialized
	s.closed = true
	s.initialized = false
	s.mu.Unlock()

	s.cache.flush()
	if wasInit {
		s.output.Close()
	}
	return nil
}

// Stream implements beep.Streamer for the output device
func (s *System) Stream(samples [][2]float64) (n int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	return s.mixer.Stream(samples)
}

func (s *System) Err() error { return nil }

// checkLive must be called with mu held
func (s *System) checkLive() error {
	if s.closed {
		return ErrClosed
	}
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}
