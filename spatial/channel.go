package spatial

import (
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/occlusion/vmath"
)

// Channel is one playback instance of a Sound
// Signal path: wave (source) -> [user DSP nodes] -> fader head -> pan -> volume -> mixer
type Channel struct {
	sys   *System
	sound *Sound

	head      *DSP
	source    *DSP
	resampler *beep.Resampler
	baseRatio float64
	closer    io.Closer

	pan *effects.Pan
	vol *effects.Volume

	mode   Mode
	volume float64
	pos    vmath.Vec3
	vel    vmath.Vec3

	// Computed by System.Update for 3D channels
	gain float64

	paused  bool
	stopped bool
	done    bool
}

// Stream implements beep.Streamer; called by the mixer with sys.mu held
func (c *Channel) Stream(samples [][2]float64) (n int, ok bool) {
	if c.stopped || c.done {
		return 0, false
	}
	if c.paused {
		clear(samples)
		return len(samples), true
	}
	n, ok = c.vol.Stream(samples)
	if !ok {
		c.done = true
	}
	return n, ok
}

func (c *Channel) Err() error { return nil }

// SetMode switches between 2D and 3D spatialization; loop bits are ignored
func (c *Channel) SetMode(mode Mode) error {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}

	switch {
	case mode.Has(Mode3D):
		c.mode = (c.mode &^ Mode2D) | Mode3D
	case mode.Has(Mode2D):
		c.mode = (c.mode &^ Mode3D) | Mode2D
		c.gain = 1
		c.pan.Pan = 0
		c.setPitch(1)
	}
	c.applyFader()
	return nil
}

// Mode returns the channel's current mode bits
func (c *Channel) Mode() Mode {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return c.mode
}

// SetVolume sets linear channel volume, applied immediately; negative is rejected
func (c *Channel) SetVolume(volume float64) error {
	if volume < 0 || math.IsNaN(volume) {
		return fmt.Errorf("%w: volume %g", ErrInvalidParam, volume)
	}

	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.volume = volume
	c.applyFader()
	return nil
}

// Volume returns linear channel volume
func (c *Channel) Volume() float64 {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return c.volume
}

// Set3DAttributes stores emitter position and velocity, applied on the next Update
// nil arguments keep their previous value
func (c *Channel) Set3DAttributes(pos, vel *Vector) error {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	if pos != nil {
		c.pos = pos.ToVec3()
	}
	if vel != nil {
		c.vel = vel.ToVec3()
	}
	return nil
}

// Get3DAttributes returns emitter position and velocity
func (c *Channel) Get3DAttributes() (pos, vel Vector) {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return VectorFrom(c.pos), VectorFrom(c.vel)
}

// Gain returns the last computed 3D gain (distance and occlusion)
func (c *Channel) Gain() float64 {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return c.gain
}

// Pan returns the last computed stereo pan
func (c *Channel) Pan() float64 {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return c.pan.Pan
}

// DSPHead returns the fader node at the end of the channel's DSP chain
func (c *Channel) DSPHead() (*DSP, error) {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	return c.head, nil
}

// SetPaused pauses or resumes the channel
func (c *Channel) SetPaused(paused bool) error {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.paused = paused
	return nil
}

// IsPlaying reports whether the channel has neither finished nor been stopped
func (c *Channel) IsPlaying() bool {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	return !c.stopped && !c.done
}

// Sound returns the sound this channel was started from
func (c *Channel) Sound() *Sound {
	return c.sound
}

// Stop ends playback; the channel handle becomes invalid
func (c *Channel) Stop() error {
	c.sys.mu.Lock()
	defer c.sys.mu.Unlock()
	if c.stopped {
		return ErrInvalidHandle
	}
	c.stopped = true
	c.release()
	return nil
}

// checkLive must be called with sys.mu held
func (c *Channel) checkLive() error {
	if err := c.sys.checkLive(); err != nil {
		return err
	}
	if c.stopped {
		return ErrInvalidHandle
	}
	return nil
}

// update3D recomputes gain, pan and doppler pitch from current listener state
func (c *Channel) update3D() {
	if !c.mode.Has(Mode3D) {
		return
	}
	s := c.sys
	dist := vmath.V3Dist(s.listener.pos, c.pos)
	c.gain = s.rolloff(dist) * s.occlusion(c.pos)
	c.pan.Pan = s.pan(c.pos)
	c.setPitch(s.doppler(c.pos, c.vel))
	c.applyFader()
}

func (c *Channel) setPitch(pitch float64) {
	if c.resampler != nil {
		c.resampler.SetRatio(c.baseRatio * pitch)
	}
}

// applyFader pushes volume*gain into the volume effect
func (c *Channel) applyFader() {
	setLevel(c.vol, c.volume*c.gain)
}

// release closes the stream decoder and unlinks the DSP graph
// User-created nodes spliced into the channel become free to reconnect
func (c *Channel) release() {
	if c.closer != nil {
		_ = c.closer.Close()
		c.closer = nil
	}
	c.head.detachGraph()
}

// setLevel maps linear gain onto effects.Volume
// math.Log2(0) is -Inf, so 0 is handled by making it silent
func setLevel(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Volume = 0
		v.Silent = true
		return
	}
	v.Volume = math.Log2(level)
	v.Silent = false
}

func newPan(s beep.Streamer) *effects.Pan {
	return &effects.Pan{Streamer: s}
}

func newVolume(s beep.Streamer) *effects.Volume {
	return &effects.Volume{Streamer: s, Base: 2}
}
