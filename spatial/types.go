// Package spatial is a small 3D audio engine on top of beep
// It mirrors the shape of native game audio middleware: a System owns an output device,
// sounds and streams are played on channels, every channel feeds a DSP graph that can be
// rewired, and static geometry occludes the direct path between emitter and listener
package spatial

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/occlusion/vmath"
)

// Vector is the engine's float32 vector format
type Vector struct {
	X, Y, Z float32
}

// ToVec3 widens to host precision for 3D math
func (v Vector) ToVec3() vmath.Vec3 {
	return vmath.Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// VectorFrom narrows a host vector to engine format
func VectorFrom(v vmath.Vec3) Vector {
	return Vector{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func (v Vector) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Mode is a bit set describing how a sound is loaded and how a channel is spatialized
type Mode uint32

const (
	ModeDefault    Mode = 0
	ModeLoopOff    Mode = 1 << 0
	ModeLoopNormal Mode = 1 << 1
	Mode2D         Mode = 1 << 2
	Mode3D         Mode = 1 << 3
)

func (m Mode) Has(flag Mode) bool { return m&flag != 0 }

// InitFlags control System.Init
type InitFlags uint32

const (
	InitNormal InitFlags = 0
	// Init3DRightHanded treats +X as right with -Z forward (OpenGL convention)
	Init3DRightHanded InitFlags = 1 << 0
)

// DSPType selects the processing performed by a DSP node
type DSPType int

const (
	DSPTypeWave    DSPType = iota // Channel source, reads the decoded sound
	DSPTypeFader                  // Channel head, applies volume and 3D pan/gain
	DSPTypeLowPass                // Resonant low-pass biquad
)

func (t DSPType) String() string {
	switch t {
	case DSPTypeWave:
		return "wave"
	case DSPTypeFader:
		return "fader"
	case DSPTypeLowPass:
		return "lowpass"
	default:
		return fmt.Sprintf("dsp(%d)", int(t))
	}
}

// Low-pass parameter indices for DSP.SetParameterFloat
const (
	LowPassCutoff    = 0 // Hz, [10, 22000]
	LowPassResonance = 1 // Q, [1, 10]
)

// Low-pass parameter ranges and defaults
const (
	LowPassCutoffMin        = 10.0
	LowPassCutoffMax        = 22000.0
	LowPassCutoffDefault    = 5000.0
	LowPassResonanceMin     = 1.0
	LowPassResonanceMax     = 10.0
	LowPassResonanceDefault = 1.0
)

// Sentinel errors
var (
	ErrNotInitialized     = errors.New("spatial: system not initialized")
	ErrAlreadyInitialized = errors.New("spatial: system already initialized")
	ErrClosed             = errors.New("spatial: system closed")
	ErrUnsupportedFormat  = errors.New("spatial: unsupported audio format")
	ErrInvalidParam       = errors.New("spatial: invalid parameter")
	ErrInvalidHandle      = errors.New("spatial: invalid or released handle")
	ErrGeometryFull       = errors.New("spatial: geometry capacity exceeded")
	ErrDSPCycle           = errors.New("spatial: connection would create a DSP cycle")
	ErrNotConnected       = errors.New("spatial: DSP nodes not connected")
)
