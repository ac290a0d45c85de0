// Package audio is the game-facing sound facade
// It owns one engine instance and sequences engine calls for event sounds, a filtered music
// stream, the listener and a static occluder; hosts call it from a single game loop thread
package audio

import (
	"errors"
	"io"
	"log"
	"math"

	"github.com/lixenwraith/occlusion/spatial"
	"github.com/lixenwraith/occlusion/vmath"
)

// Audio drives a 3D audio engine for one game
type Audio struct {
	cfg     Config
	factory EngineFactory
	logger  *log.Logger

	engine   Engine
	occluder Geometry

	eventSound   Sound
	eventChannel Channel

	musicStream  Sound
	musicChannel Channel
	filter       DSP

	filterEnabled bool
	musicVolume   float64
	listenerPos   vmath.Vec3
}

// Option configures an Audio at construction
type Option func(*Audio)

// WithLogger routes facade diagnostics to l
func WithLogger(l *log.Logger) Option {
	return func(a *Audio) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an uninitialised facade; no engine exists until Initialise
func New(cfg Config, factory EngineFactory, opts ...Option) *Audio {
	a := &Audio{
		cfg:         cfg,
		factory:     factory,
		logger:      log.New(io.Discard, "", 0),
		musicVolume: clampUnit(cfg.MusicVolume),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialise creates the engine, applies 3D settings and registers the occluder
// Each step short-circuits on failure and the partially built engine is closed
func (a *Audio) Initialise() error {
	const op = "Initialise"
	if a.engine != nil {
		return a.fail(op, KindInit, ErrAlreadyInitialised)
	}
	if err := a.cfg.Validate(); err != nil {
		return a.fail(op, KindInit, err)
	}
	if a.factory == nil {
		return a.fail(op, KindCreate, errors.New("no engine factory"))
	}

	eng, err := a.factory()
	if err != nil {
		return a.fail(op, KindCreate, err)
	}
	if eng == nil {
		return a.fail(op, KindCreate, errors.New("engine factory returned nil"))
	}

	flags := spatial.InitNormal
	if a.cfg.RightHanded {
		flags |= spatial.Init3DRightHanded
	}
	if err := eng.Init(a.cfg.MaxChannels, flags); err != nil {
		a.abandon(eng)
		return a.fail(op, KindInit, err)
	}
	if err := eng.Set3DSettings(a.cfg.DopplerScale, a.cfg.DistanceFactor, a.cfg.RolloffScale); err != nil {
		a.abandon(eng)
		return a.fail(op, KindSettings, err)
	}

	geo, err := a.createOccluder(eng)
	if err != nil {
		a.abandon(eng)
		return a.fail(op, KindGeometry, err)
	}

	a.engine = eng
	a.occluder = geo
	a.logger.Printf("audio: initialised, %d channels, occluder at %v", a.cfg.MaxChannels, a.cfg.Occluder.Position)
	return nil
}

// createOccluder builds the single occluding polygon described by the config
func (a *Audio) createOccluder(eng Engine) (Geometry, error) {
	oc := a.cfg.Occluder
	geo, err := eng.CreateGeometry(1, len(oc.Vertices))
	if err != nil {
		return nil, err
	}

	verts := make([]spatial.Vector, len(oc.Vertices))
	for i, v := range oc.Vertices {
		verts[i] = toEngineVector(v)
	}

	if _, err := geo.AddPolygon(oc.DirectOcclusion, oc.ReverbOcclusion, oc.DoubleSided, verts); err != nil {
		_ = geo.Release()
		return nil, err
	}
	if err := geo.SetPosition(toEngineVector(oc.Position)); err != nil {
		_ = geo.Release()
		return nil, err
	}
	if err := geo.SetActive(oc.Active); err != nil {
		_ = geo.Release()
		return nil, err
	}
	return geo, nil
}

// abandon closes an engine that failed to come up
func (a *Audio) abandon(eng Engine) {
	if err := eng.Close(); err != nil {
		a.logger.Printf("audio: close after failed init: %v", err)
	}
}

// LoadEventSound loads a one-shot sound into the event slot
// The previous event sound is released only after the new one loads
func (a *Audio) LoadEventSound(path string) error {
	const op = "LoadEventSound"
	if a.engine == nil {
		return a.fail(op, KindNotInitialized, ErrNotInitialised)
	}

	snd, err := a.engine.CreateSound(path, spatial.ModeLoopOff)
	if err != nil {
		return a.fail(op, KindLoad, err)
	}

	if a.eventSound != nil {
		if err := a.eventSound.Release(); err != nil {
			a.logger.Printf("audio: release previous event sound: %v", err)
		}
	}
	a.eventSound = snd
	a.eventChannel = nil
	return nil
}

// PlayEventSound plays the event sound as a 3D emitter at the origin
func (a *Audio) PlayEventSound() error {
	return a.playEvent("PlayEventSound", vmath.Vec3{})
}

// PlayEventSoundAt plays the event sound as a 3D emitter at pos
func (a *Audio) PlayEventSoundAt(pos vmath.Vec3) error {
	return a.playEvent("PlayEventSoundAt", pos)
}

func (a *Audio) playEvent(op string, pos vmath.Vec3) error {
	if a.engine == nil {
		return a.fail(op, KindNotInitialized, ErrNotInitialised)
	}
	if a.eventSound == nil {
		return a.fail(op, KindNotLoaded, ErrNothingLoaded)
	}

	ch, err := a.engine.PlaySound(a.eventSound, false)
	if err != nil {
		return a.fail(op, KindPlay, err)
	}

	p := toEngineVector(pos)
	var vel spatial.Vector
	if err := ch.SetMode(spatial.Mode3D); err != nil {
		a.stopChannel(ch)
		return a.fail(op, KindAttributes, err)
	}
	if err := ch.SetVolume(a.cfg.EventVolume); err != nil {
		a.stopChannel(ch)
		return a.fail(op, KindAttributes, err)
	}
	if err := ch.Set3DAttributes(&p, &vel); err != nil {
		a.stopChannel(ch)
		return a.fail(op, KindAttributes, err)
	}

	a.eventChannel = ch
	return nil
}

// LoadMusicStream opens a looping stream and creates its inactive low-pass filter
// Both must succeed; the previous stream, filter and music channel are then replaced
func (a *Audio) LoadMusicStream(path string) error {
	const op = "LoadMusicStream"
	if a.engine == nil {
		return a.fail(op, KindNotInitialized, ErrNotInitialised)
	}

	stream, err := a.engine.CreateStream(path, spatial.ModeLoopNormal)
	if err != nil {
		return a.fail(op, KindLoad, err)
	}

	filter, err := a.engine.CreateDSPByType(spatial.DSPTypeLowPass)
	if err != nil {
		_ = stream.Release()
		return a.fail(op, KindDSP, err)
	}
	if err := filter.SetActive(false); err != nil {
		_ = filter.Release()
		_ = stream.Release()
		return a.fail(op, KindDSP, err)
	}

	a.stopMusic()
	if a.musicStream != nil {
		if err := a.musicStream.Release(); err != nil {
			a.logger.Printf("audio: release previous music stream: %v", err)
		}
	}
	if a.filter != nil {
		if err := a.filter.Release(); err != nil {
			a.logger.Printf("audio: release previous filter: %v", err)
		}
	}

	a.musicStream = stream
	a.filter = filter
	a.filterEnabled = false
	return nil
}

// PlayMusicStream starts the music and splices the filter between the channel head and its input
// The filter ends up active at the high cutoff, so the flag reads disabled
func (a *Audio) PlayMusicStream() error {
	const op = "PlayMusicStream"
	if a.engine == nil {
		return a.fail(op, KindNotInitialized, ErrNotInitialised)
	}
	if a.musicStream == nil || a.filter == nil {
		return a.fail(op, KindNotLoaded, ErrNothingLoaded)
	}

	a.stopMusic()

	ch, err := a.engine.PlaySound(a.musicStream, false)
	if err != nil {
		return a.fail(op, KindPlay, err)
	}
	if err := ch.SetVolume(a.musicVolume); err != nil {
		a.stopChannel(ch)
		return a.fail(op, KindAttributes, err)
	}
	if err := a.spliceFilter(ch); err != nil {
		a.stopChannel(ch)
		return a.fail(op, KindDSP, err)
	}

	a.musicChannel = ch
	a.filterEnabled = false
	return nil
}

// spliceFilter rewires head <- input into head <- filter <- input
func (a *Audio) spliceFilter(ch Channel) error {
	head, err := ch.DSPHead()
	if err != nil {
		return err
	}
	in, err := head.Input(0)
	if err != nil {
		return err
	}
	if err := head.DisconnectFrom(in); err != nil {
		return err
	}
	if err := head.AddInput(a.filter); err != nil {
		return err
	}
	if err := a.filter.AddInput(in); err != nil {
		return err
	}
	if err := a.filter.SetActive(true); err != nil {
		return err
	}
	return a.filter.SetParameterFloat(spatial.LowPassCutoff, a.cfg.FilterHighCutoff)
}

// ToggleMusicFilter switches the music between the low and high cutoff
// The flag only changes when the engine accepts the new cutoff
func (a *Audio) ToggleMusicFilter() {
	if a.filter == nil {
		a.logger.Printf("audio: ToggleMusicFilter: %v", ErrNothingLoaded)
		return
	}

	next := !a.filterEnabled
	cutoff := a.cfg.FilterHighCutoff
	if next {
		cutoff = a.cfg.FilterLowCutoff
	}
	if err := a.filter.SetParameterFloat(spatial.LowPassCutoff, cutoff); err != nil {
		a.logger.Printf("%v", &Error{Op: "ToggleMusicFilter", Kind: KindDSP, Err: err})
		return
	}
	a.filterEnabled = next
}

// IncreaseMusicVolume raises music volume by one step, clamped to 1
func (a *Audio) IncreaseMusicVolume() {
	a.setMusicVolume("IncreaseMusicVolume", a.musicVolume+a.cfg.VolumeStep)
}

// DecreaseMusicVolume lowers music volume by one step, clamped to 0
func (a *Audio) DecreaseMusicVolume() {
	a.setMusicVolume("DecreaseMusicVolume", a.musicVolume-a.cfg.VolumeStep)
}

func (a *Audio) setMusicVolume(op string, v float64) {
	a.musicVolume = clampUnit(v)
	if a.musicChannel == nil {
		return
	}
	if err := a.musicChannel.SetVolume(a.musicVolume); err != nil {
		a.logger.Printf("%v", &Error{Op: op, Kind: KindAttributes, Err: err})
	}
}

// Update pushes the listener position and advances the engine by one tick
// Called once per frame; a no-op before Initialise
func (a *Audio) Update(pos vmath.Vec3) {
	if a.engine == nil {
		return
	}
	a.listenerPos = pos

	p := toEngineVector(pos)
	vel := toEngineVector(a.cfg.Listener.Velocity)
	fwd := toEngineVector(a.cfg.Listener.Forward)
	up := toEngineVector(a.cfg.Listener.Up)
	if err := a.engine.Set3DListenerAttributes(0, &p, &vel, &fwd, &up); err != nil {
		a.logger.Printf("%v", &Error{Op: "Update", Kind: KindListener, Err: err})
	}
	if err := a.engine.Update(); err != nil {
		a.logger.Printf("%v", &Error{Op: "Update", Kind: KindUpdate, Err: err})
	}
}

// Close releases every handle and the engine; safe to call more than once
func (a *Audio) Close() error {
	if a.engine == nil {
		return nil
	}

	var errs []error
	a.stopMusic()
	if a.eventSound != nil {
		errs = append(errs, a.eventSound.Release())
	}
	if a.musicStream != nil {
		errs = append(errs, a.musicStream.Release())
	}
	if a.filter != nil {
		errs = append(errs, a.filter.Release())
	}
	if a.occluder != nil {
		errs = append(errs, a.occluder.Release())
	}
	errs = append(errs, a.engine.Close())

	a.engine = nil
	a.occluder = nil
	a.eventSound, a.eventChannel = nil, nil
	a.musicStream, a.musicChannel = nil, nil
	a.filter = nil
	a.filterEnabled = false

	if err := errors.Join(errs...); err != nil {
		return a.fail("Close", KindClose, err)
	}
	return nil
}

// stopMusic stops the current music channel if any
func (a *Audio) stopMusic() {
	if a.musicChannel == nil {
		return
	}
	a.stopChannel(a.musicChannel)
	a.musicChannel = nil
}

func (a *Audio) stopChannel(ch Channel) {
	if err := ch.Stop(); err != nil {
		a.logger.Printf("audio: stop channel: %v", err)
	}
}

// Initialised reports whether the engine is up
func (a *Audio) Initialised() bool {
	return a.engine != nil
}

// MusicVolume returns the current music volume in [0,1]
func (a *Audio) MusicVolume() float64 {
	return a.musicVolume
}

// FilterEnabled reports whether the audible low cutoff is selected
func (a *Audio) FilterEnabled() bool {
	return a.filterEnabled
}

// FilterCutoff returns the cutoff selected by the filter flag
func (a *Audio) FilterCutoff() float64 {
	if a.filterEnabled {
		return a.cfg.FilterLowCutoff
	}
	return a.cfg.FilterHighCutoff
}

// ListenerPosition returns the position passed to the last Update
func (a *Audio) ListenerPosition() vmath.Vec3 {
	return a.listenerPos
}

// Stats returns engine counters when the engine exposes them
func (a *Audio) Stats() (spatial.Stats, bool) {
	sr, ok := a.engine.(StatsReporter)
	if !ok {
		return spatial.Stats{}, false
	}
	return sr.Stats(), true
}

func (a *Audio) fail(op string, kind Kind, err error) error {
	e := &Error{Op: op, Kind: kind, Err: err}
	a.logger.Printf("%v", e)
	return e
}

// toEngineVector narrows a host position to the engine's float32 format
func toEngineVector(v vmath.Vec3) spatial.Vector {
	return spatial.VectorFrom(v)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
