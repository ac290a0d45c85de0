package spatial

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"
)

// DSP is a node in a channel's processing graph
// Each node pulls from its inputs, sums them, then processes the result
// A node feeds at most one output so every input is pulled once per block
type DSP struct {
	sys *System
	typ DSPType

	inputs []*DSP
	output *DSP

	active   bool
	bypass   bool
	released bool
	params   []float64

	src     beep.Streamer // DSPTypeWave only
	lp      *biquad       // DSPTypeLowPass only
	scratch [][2]float64
}

// CreateDSPByType creates a detached, inactive DSP node
func (s *System) CreateDSPByType(typ DSPType) (*DSP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return nil, err
	}

	switch typ {
	case DSPTypeLowPass:
		d := &DSP{
			sys:    s,
			typ:    typ,
			params: []float64{LowPassCutoffDefault, LowPassResonanceDefault},
			lp:     newBiquad(float64(s.sampleRate)),
		}
		d.lp.setLowPass(LowPassCutoffDefault, LowPassResonanceDefault)
		return d, nil
	default:
		return nil, fmt.Errorf("%w: cannot create %s node", ErrInvalidParam, typ)
	}
}

// newNode creates an engine-owned node; caller holds mu
func (s *System) newNode(typ DSPType) *DSP {
	return &DSP{sys: s, typ: typ, active: true}
}

// Stream pulls and processes one block; called with sys.mu held
// Inactive nodes output silence without pulling their inputs
func (d *DSP) Stream(samples [][2]float64) (n int, ok bool) {
	if d.released || !d.active {
		clear(samples)
		return len(samples), true
	}
	if d.typ == DSPTypeWave {
		return d.src.Stream(samples)
	}

	n, ok = d.mixInputs(samples)
	if d.lp != nil && !d.bypass {
		d.lp.process(samples[:n])
	}
	return n, ok
}

func (d *DSP) Err() error { return nil }

// mixInputs sums every input into samples
// ok stays true while any input still has data; no inputs yields silence
func (d *DSP) mixInputs(samples [][2]float64) (n int, ok bool) {
	if len(d.inputs) == 0 {
		clear(samples)
		return len(samples), true
	}

	n, ok = d.inputs[0].Stream(samples)
	clear(samples[n:])

	for _, in := range d.inputs[1:] {
		if cap(d.scratch) < len(samples) {
			d.scratch = make([][2]float64, len(samples))
		}
		buf := d.scratch[:len(samples)]
		m, inOK := in.Stream(buf)
		for i := 0; i < m; i++ {
			samples[i][0] += buf[i][0]
			samples[i][1] += buf[i][1]
		}
		if m > n {
			n = m
		}
		ok = ok || inOK
	}
	return n, ok
}

// Type returns the node type
func (d *DSP) Type() DSPType {
	return d.typ
}

// NumInputs returns the number of connected inputs
func (d *DSP) NumInputs() int {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	return len(d.inputs)
}

// Input returns the input at index
func (d *DSP) Input(index int) (*DSP, error) {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(d.inputs) {
		return nil, fmt.Errorf("%w: input %d of %d", ErrInvalidParam, index, len(d.inputs))
	}
	return d.inputs[index], nil
}

// AddInput connects in as a new input of d
// Rejects nodes that already feed another node and connections that would form a cycle
func (d *DSP) AddInput(in *DSP) error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidParam)
	}

	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	if err := in.checkLive(); err != nil {
		return err
	}
	if in.sys != d.sys {
		return fmt.Errorf("%w: node belongs to another system", ErrInvalidParam)
	}
	if in.output != nil {
		return fmt.Errorf("%w: %s node already connected", ErrInvalidParam, in.typ)
	}
	if in == d || in.reaches(d) {
		return ErrDSPCycle
	}

	d.inputs = append(d.inputs, in)
	in.output = d
	return nil
}

// DisconnectFrom removes target from d's inputs; nil disconnects every input
func (d *DSP) DisconnectFrom(target *DSP) error {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}

	if target == nil {
		for _, in := range d.inputs {
			in.output = nil
		}
		d.inputs = nil
		return nil
	}

	for i, in := range d.inputs {
		if in == target {
			d.inputs = append(d.inputs[:i], d.inputs[i+1:]...)
			in.output = nil
			return nil
		}
	}
	return ErrNotConnected
}

// SetActive enables processing; inactive nodes are silent
func (d *DSP) SetActive(active bool) error {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	if active && !d.active && d.lp != nil {
		d.lp.reset()
	}
	d.active = active
	return nil
}

// Active reports whether the node processes audio
func (d *DSP) Active() bool {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	return d.active
}

// SetBypass passes input through unprocessed while keeping the node active
func (d *DSP) SetBypass(bypass bool) error {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	d.bypass = bypass
	return nil
}

// Bypass reports the bypass state
func (d *DSP) Bypass() bool {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	return d.bypass
}

// SetParameterFloat sets a processing parameter, clamped to its range
func (d *DSP) SetParameterFloat(index int, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: parameter value %g", ErrInvalidParam, value)
	}

	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if err := d.checkLive(); err != nil {
		return err
	}
	if index < 0 || index >= len(d.params) {
		return fmt.Errorf("%w: %s has no parameter %d", ErrInvalidParam, d.typ, index)
	}

	if d.typ == DSPTypeLowPass {
		switch index {
		case LowPassCutoff:
			value = math.Max(LowPassCutoffMin, math.Min(LowPassCutoffMax, value))
		case LowPassResonance:
			value = math.Max(LowPassResonanceMin, math.Min(LowPassResonanceMax, value))
		}
		d.params[index] = value
		d.lp.setLowPass(d.params[LowPassCutoff], d.params[LowPassResonance])
		return nil
	}

	d.params[index] = value
	return nil
}

// ParameterFloat returns a processing parameter
func (d *DSP) ParameterFloat(index int) (float64, error) {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if index < 0 || index >= len(d.params) {
		return 0, fmt.Errorf("%w: %s has no parameter %d", ErrInvalidParam, d.typ, index)
	}
	return d.params[index], nil
}

// Release detaches a user-created node from the graph and invalidates it
// Its inputs are reconnected to its output so the signal path stays intact
func (d *DSP) Release() error {
	d.sys.mu.Lock()
	defer d.sys.mu.Unlock()
	if d.released {
		return ErrInvalidHandle
	}
	if d.typ == DSPTypeWave || d.typ == DSPTypeFader {
		return fmt.Errorf("%w: %s node is owned by its channel", ErrInvalidParam, d.typ)
	}

	parent := d.output
	if parent != nil {
		for i, in := range parent.inputs {
			if in == d {
				parent.inputs = append(parent.inputs[:i], parent.inputs[i+1:]...)
				break
			}
		}
	}
	for _, in := range d.inputs {
		in.output = nil
		if parent != nil {
			parent.inputs = append(parent.inputs, in)
			in.output = parent
		}
	}
	d.inputs = nil
	d.output = nil
	d.released = true
	return nil
}

// detachGraph unlinks d and everything upstream of it; caller holds mu
func (d *DSP) detachGraph() {
	for _, in := range d.inputs {
		in.detachGraph()
	}
	d.inputs = nil
	d.output = nil
}

// reaches reports whether target is upstream of d; caller holds mu
func (d *DSP) reaches(target *DSP) bool {
	for _, in := range d.inputs {
		if in == target || in.reaches(target) {
			return true
		}
	}
	return false
}

// checkLive must be called with sys.mu held
func (d *DSP) checkLive() error {
	if d.released {
		return ErrInvalidHandle
	}
	return d.sys.checkLive()
}
