package audio

import (
	"fmt"

	"github.com/lixenwraith/occlusion/spatial"
)

// Engine is the 3D audio engine the facade drives
type Engine interface {
	Init(maxChannels int, flags spatial.InitFlags) error
	Set3DSettings(dopplerScale, distanceFactor, rolloffScale float64) error
	CreateGeometry(maxPolygons, maxVertices int) (Geometry, error)
	CreateSound(path string, mode spatial.Mode) (Sound, error)
	CreateStream(path string, mode spatial.Mode) (Sound, error)
	CreateDSPByType(typ spatial.DSPType) (DSP, error)
	PlaySound(snd Sound, paused bool) (Channel, error)
	Set3DListenerAttributes(listener int, pos, vel, forward, up *spatial.Vector) error
	Update() error
	Close() error
}

// Sound is a loaded sample or stream
type Sound interface {
	Release() error
}

// Channel is one playback of a Sound
type Channel interface {
	SetMode(mode spatial.Mode) error
	SetVolume(volume float64) error
	Set3DAttributes(pos, vel *spatial.Vector) error
	DSPHead() (DSP, error)
	Stop() error
}

// DSP is a node in a channel's signal graph
type DSP interface {
	Input(index int) (DSP, error)
	AddInput(in DSP) error
	DisconnectFrom(target DSP) error
	SetActive(active bool) error
	SetParameterFloat(index int, value float64) error
	Release() error
}

// Geometry is a group of occluding polygons
type Geometry interface {
	AddPolygon(directOcclusion, reverbOcclusion float64, doubleSided bool, vertices []spatial.Vector) (int, error)
	SetPosition(pos spatial.Vector) error
	SetActive(active bool) error
	Release() error
}

// StatsReporter is implemented by engines that expose counters
type StatsReporter interface {
	Stats() spatial.Stats
}

// EngineFactory creates the engine during Initialise
type EngineFactory func() (Engine, error)

// SpatialEngine returns a factory for the beep-backed spatial engine
func SpatialEngine(opts ...spatial.Option) EngineFactory {
	return func() (Engine, error) {
		sys, err := spatial.Create(opts...)
		if err != nil {
			return nil, err
		}
		return &spatialEngine{sys: sys}, nil
	}
}

// spatialEngine adapts *spatial.System handles to the interfaces above
type spatialEngine struct {
	sys *spatial.System
}

func (e *spatialEngine) Init(maxChannels int, flags spatial.InitFlags) error {
	return e.sys.Init(maxChannels, flags)
}

func (e *spatialEngine) Set3DSettings(dopplerScale, distanceFactor, rolloffScale float64) error {
	return e.sys.Set3DSettings(dopplerScale, distanceFactor, rolloffScale)
}

func (e *spatialEngine) CreateGeometry(maxPolygons, maxVertices int) (Geometry, error) {
	g, err := e.sys.CreateGeometry(maxPolygons, maxVertices)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (e *spatialEngine) CreateSound(path string, mode spatial.Mode) (Sound, error) {
	snd, err := e.sys.CreateSound(path, mode)
	if err != nil {
		return nil, err
	}
	return snd, nil
}

func (e *spatialEngine) CreateStream(path string, mode spatial.Mode) (Sound, error) {
	snd, err := e.sys.CreateStream(path, mode)
	if err != nil {
		return nil, err
	}
	return snd, nil
}

func (e *spatialEngine) CreateDSPByType(typ spatial.DSPType) (DSP, error) {
	d, err := e.sys.CreateDSPByType(typ)
	if err != nil {
		return nil, err
	}
	return spatialDSP{d}, nil
}

func (e *spatialEngine) PlaySound(snd Sound, paused bool) (Channel, error) {
	s, ok := snd.(*spatial.Sound)
	if !ok {
		return nil, fmt.Errorf("%w: sound %T", ErrForeignHandle, snd)
	}
	c, err := e.sys.PlaySound(s, paused)
	if err != nil {
		return nil, err
	}
	return spatialChannel{c}, nil
}

func (e *spatialEngine) Set3DListenerAttributes(listener int, pos, vel, forward, up *spatial.Vector) error {
	return e.sys.Set3DListenerAttributes(listener, pos, vel, forward, up)
}

func (e *spatialEngine) Update() error { return e.sys.Update() }

func (e *spatialEngine) Close() error { return e.sys.Close() }

func (e *spatialEngine) Stats() spatial.Stats { return e.sys.Stats() }

type spatialChannel struct {
	*spatial.Channel
}

func (c spatialChannel) DSPHead() (DSP, error) {
	d, err := c.Channel.DSPHead()
	if err != nil {
		return nil, err
	}
	return spatialDSP{d}, nil
}

type spatialDSP struct {
	*spatial.DSP
}

func (d spatialDSP) Input(index int) (DSP, error) {
	in, err := d.DSP.Input(index)
	if err != nil {
		return nil, err
	}
	return spatialDSP{in}, nil
}

func (d spatialDSP) AddInput(in DSP) error {
	n, err := unwrapDSP(in)
	if err != nil {
		return err
	}
	return d.DSP.AddInput(n)
}

func (d spatialDSP) DisconnectFrom(target DSP) error {
	if target == nil {
		return d.DSP.DisconnectFrom(nil)
	}
	n, err := unwrapDSP(target)
	if err != nil {
		return err
	}
	return d.DSP.DisconnectFrom(n)
}

func unwrapDSP(d DSP) (*spatial.DSP, error) {
	sd, ok := d.(spatialDSP)
	if !ok {
		return nil, fmt.Errorf("%w: dsp %T", ErrForeignHandle, d)
	}
	return sd.DSP, nil
}
