package audio

import (
	"errors"
	"fmt"
)

// Kind classifies a facade failure by the step that failed
type Kind int

const (
	KindUnknown Kind = iota
	KindCreate
	KindInit
	KindSettings
	KindGeometry
	KindLoad
	KindPlay
	KindAttributes
	KindDSP
	KindListener
	KindUpdate
	KindClose
	KindNotInitialized
	KindNotLoaded
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindCreate:         "engine create",
	KindInit:           "engine init",
	KindSettings:       "3d settings",
	KindGeometry:       "geometry",
	KindLoad:           "load",
	KindPlay:           "play",
	KindAttributes:     "channel attributes",
	KindDSP:            "dsp",
	KindListener:       "listener",
	KindUpdate:         "update",
	KindClose:          "close",
	KindNotInitialized: "not initialized",
	KindNotLoaded:      "not loaded",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the structured failure returned by every facade operation
type Error struct {
	Op   string // Facade operation, e.g. "PlayMusicStream"
	Kind Kind
	Err  error // Engine cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("audio: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("audio: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, and by op when the target sets one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf extracts the Kind from an error chain, KindUnknown if absent
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinel errors
var (
	ErrNotInitialised     = errors.New("audio: engine not initialised")
	ErrAlreadyInitialised = errors.New("audio: engine already initialised")
	ErrNothingLoaded      = errors.New("audio: nothing loaded")
	ErrForeignHandle      = errors.New("audio: handle does not belong to this engine")
	ErrInvalidConfig      = errors.New("audio: invalid config")
)
