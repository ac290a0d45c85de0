package spatial

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output is the device the System mixes into
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

// SpeakerOutput plays through the beep speaker (oto backed)
// The speaker is process-wide; only one System should use it at a time
type SpeakerOutput struct{}

func (SpeakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (SpeakerOutput) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (SpeakerOutput) Close() {
	speaker.Clear()
	speaker.Close()
}

// PullOutput is a headless output driven by the caller
// Used for tests and offline rendering
type PullOutput struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	bufferSize int
	streamer   beep.Streamer
	closed     bool
}

// NewPullOutput creates an unattached headless output
func NewPullOutput() *PullOutput {
	return &PullOutput{}
}

func (o *PullOutput) Init(sr beep.SampleRate, bufferSize int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sampleRate = sr
	o.bufferSize = bufferSize
	o.closed = false
	return nil
}

func (o *PullOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	o.streamer = s
	o.mu.Unlock()
}

func (o *PullOutput) Close() {
	o.mu.Lock()
	o.streamer = nil
	o.closed = true
	o.mu.Unlock()
}

// SampleRate returns the rate passed to Init
func (o *PullOutput) SampleRate() beep.SampleRate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sampleRate
}

// Pull renders n frames; silence when nothing is attached
func (o *PullOutput) Pull(n int) [][2]float64 {
	buf := make([][2]float64, n)

	o.mu.Lock()
	s := o.streamer
	closed := o.closed
	o.mu.Unlock()

	if s == nil || closed {
		return buf
	}

	filled := 0
	for filled < n {
		got, ok := s.Stream(buf[filled:])
		filled += got
		if !ok || got == 0 {
			break
		}
	}
	return buf
}
