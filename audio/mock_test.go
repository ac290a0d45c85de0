package audio

import (
	"strings"

	"github.com/lixenwraith/occlusion/spatial"
)

// recorder logs every engine call in order and injects failures by call name
// Call names look like "head.AddInput(filter)"; failures match the part before '('
type recorder struct {
	calls []string
	fail  map[string]error
}

func newRecorder() *recorder {
	return &recorder{fail: make(map[string]error)}
}

func (r *recorder) call(name string) error {
	r.calls = append(r.calls, name)
	key := name
	if i := strings.IndexByte(name, '('); i >= 0 {
		key = name[:i]
	}
	return r.fail[key]
}

// since returns the calls recorded after mark
func (r *recorder) since(mark int) []string {
	return append([]string(nil), r.calls[mark:]...)
}

type mockEngine struct {
	rec *recorder

	initChannels int
	initFlags    spatial.InitFlags
	settings     [3]float64

	geometry *mockGeometry
	filters  []*mockDSP
	channels []*mockChannel

	listenerPos []spatial.Vector
	listenerFwd spatial.Vector
	listenerUp  spatial.Vector
}

func newMockEngine() *mockEngine {
	return &mockEngine{rec: newRecorder()}
}

func (e *mockEngine) factory() EngineFactory {
	return func() (Engine, error) {
		if err := e.rec.call("Create"); err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (e *mockEngine) Init(maxChannels int, flags spatial.InitFlags) error {
	e.initChannels, e.initFlags = maxChannels, flags
	return e.rec.call("Init")
}

func (e *mockEngine) Set3DSettings(d, f, r float64) error {
	e.settings = [3]float64{d, f, r}
	return e.rec.call("Set3DSettings")
}

func (e *mockEngine) CreateGeometry(maxPolygons, maxVertices int) (Geometry, error) {
	if err := e.rec.call("CreateGeometry"); err != nil {
		return nil, err
	}
	e.geometry = &mockGeometry{rec: e.rec, maxVertices: maxVertices}
	return e.geometry, nil
}

func (e *mockEngine) CreateSound(path string, mode spatial.Mode) (Sound, error) {
	if err := e.rec.call("CreateSound(" + path + ")"); err != nil {
		return nil, err
	}
	return &mockSound{rec: e.rec, path: path, mode: mode}, nil
}

func (e *mockEngine) CreateStream(path string, mode spatial.Mode) (Sound, error) {
	if err := e.rec.call("CreateStream(" + path + ")"); err != nil {
		return nil, err
	}
	return &mockSound{rec: e.rec, path: path, mode: mode}, nil
}

func (e *mockEngine) CreateDSPByType(typ spatial.DSPType) (DSP, error) {
	if err := e.rec.call("CreateDSP(" + typ.String() + ")"); err != nil {
		return nil, err
	}
	d := &mockDSP{rec: e.rec, name: "filter", active: true}
	e.filters = append(e.filters, d)
	return d, nil
}

func (e *mockEngine) PlaySound(snd Sound, paused bool) (Channel, error) {
	s := snd.(*mockSound)
	if err := e.rec.call("PlaySound(" + s.path + ")"); err != nil {
		return nil, err
	}
	wave := &mockDSP{rec: e.rec, name: "wave"}
	head := &mockDSP{rec: e.rec, name: "head", inputs: []DSP{wave}}
	ch := &mockChannel{rec: e.rec, sound: s, head: head}
	e.channels = append(e.channels, ch)
	return ch, nil
}

func (e *mockEngine) Set3DListenerAttributes(listener int, pos, vel, forward, up *spatial.Vector) error {
	e.listenerPos = append(e.listenerPos, *pos)
	e.listenerFwd, e.listenerUp = *forward, *up
	return e.rec.call("Listener")
}

func (e *mockEngine) Update() error { return e.rec.call("Update") }

func (e *mockEngine) Close() error { return e.rec.call("Close") }

// lastChannel returns the most recently started channel
func (e *mockEngine) lastChannel() *mockChannel {
	if len(e.channels) == 0 {
		return nil
	}
	return e.channels[len(e.channels)-1]
}

type mockSound struct {
	rec  *recorder
	path string
	mode spatial.Mode
}

func (s *mockSound) Release() error { return s.rec.call("Release(" + s.path + ")") }

type mockChannel struct {
	rec   *recorder
	sound *mockSound
	head  *mockDSP

	mode    spatial.Mode
	volume  float64
	pos     spatial.Vector
	stopped bool
}

func (c *mockChannel) SetMode(mode spatial.Mode) error {
	c.mode = mode
	return c.rec.call("SetMode")
}

func (c *mockChannel) SetVolume(volume float64) error {
	if err := c.rec.call("SetVolume"); err != nil {
		return err
	}
	c.volume = volume
	return nil
}

func (c *mockChannel) Set3DAttributes(pos, vel *spatial.Vector) error {
	c.pos = *pos
	return c.rec.call("Set3DAttributes")
}

func (c *mockChannel) DSPHead() (DSP, error) {
	if err := c.rec.call("DSPHead"); err != nil {
		return nil, err
	}
	return c.head, nil
}

func (c *mockChannel) Stop() error {
	c.stopped = true
	return c.rec.call("Stop(" + c.sound.path + ")")
}

type mockDSP struct {
	rec    *recorder
	name   string
	inputs []DSP
	active bool
	cutoff float64
}

func (d *mockDSP) Input(index int) (DSP, error) {
	if err := d.rec.call(d.name + ".Input"); err != nil {
		return nil, err
	}
	return d.inputs[index], nil
}

func (d *mockDSP) AddInput(in DSP) error {
	if err := d.rec.call(d.name + ".AddInput(" + in.(*mockDSP).name + ")"); err != nil {
		return err
	}
	d.inputs = append(d.inputs, in)
	return nil
}

func (d *mockDSP) DisconnectFrom(target DSP) error {
	if err := d.rec.call(d.name + ".DisconnectFrom(" + target.(*mockDSP).name + ")"); err != nil {
		return err
	}
	for i, in := range d.inputs {
		if in == target {
			d.inputs = append(d.inputs[:i], d.inputs[i+1:]...)
			break
		}
	}
	return nil
}

func (d *mockDSP) SetActive(active bool) error {
	name := d.name + ".SetActive(false)"
	if active {
		name = d.name + ".SetActive(true)"
	}
	if err := d.rec.call(name); err != nil {
		return err
	}
	d.active = active
	return nil
}

func (d *mockDSP) SetParameterFloat(index int, value float64) error {
	if err := d.rec.call(d.name + ".SetParameterFloat"); err != nil {
		return err
	}
	if index == spatial.LowPassCutoff {
		d.cutoff = value
	}
	return nil
}

func (d *mockDSP) Release() error { return d.rec.call(d.name + ".Release") }

type mockGeometry struct {
	rec         *recorder
	maxVertices int

	direct, reverb float64
	doubleSided    bool
	vertices       []spatial.Vector
	position       spatial.Vector
	active         bool
}

func (g *mockGeometry) AddPolygon(direct, reverb float64, doubleSided bool, vertices []spatial.Vector) (int, error) {
	if err := g.rec.call("Geometry.AddPolygon"); err != nil {
		return -1, err
	}
	g.direct, g.reverb, g.doubleSided, g.vertices = direct, reverb, doubleSided, vertices
	return 0, nil
}

func (g *mockGeometry) SetPosition(pos spatial.Vector) error {
	g.position = pos
	return g.rec.call("Geometry.SetPosition")
}

func (g *mockGeometry) SetActive(active bool) error {
	g.active = active
	return g.rec.call("Geometry.SetActive")
}

func (g *mockGeometry) Release() error { return g.rec.call("Geometry.Release") }
