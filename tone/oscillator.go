// Package tone synthesizes simple test and demo signals on top of beep
package tone

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave selects an oscillator shape
type Wave int

const (
	Sine Wave = iota
	Square
	Saw
	Noise
)

// oscillator emits a fixed-length periodic wave, identical on both channels
type oscillator struct {
	wave  Wave
	step  float64 // Phase increment per sample
	phase float64 // [0, 1)
	left  int     // Samples remaining
}

// Oscillator returns a streamer producing wave at freq Hz for d
func Oscillator(wave Wave, freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		wave: wave,
		step: freq / float64(rate),
		left: rate.N(d),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.left <= 0 {
		return 0, false
	}
	n = min(len(samples), o.left)
	for i := range samples[:n] {
		v := o.sample()
		samples[i] = [2]float64{v, v}
		o.phase += o.step
		o.phase -= math.Floor(o.phase)
	}
	o.left -= n
	return n, true
}

func (o *oscillator) sample() float64 {
	switch o.wave {
	case Square:
		if o.phase < 0.5 {
			return 1
		}
		return -1
	case Saw:
		return 2*o.phase - 1
	case Noise:
		return rand.Float64()*2 - 1
	default:
		return math.Sin(2 * math.Pi * o.phase)
	}
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release over a fixed length
type envelope struct {
	s       beep.Streamer
	pos     int
	attack  int
	release int
	total   int
}

// Envelope shapes s with a linear fade-in of attack and fade-out of release, ending after d
func Envelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		s:       s,
		attack:  rate.N(attack),
		release: rate.N(release),
		total:   rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.pos >= e.total {
		return 0, false
	}
	if rest := e.total - e.pos; len(samples) > rest {
		samples = samples[:rest]
	}

	n, ok = e.s.Stream(samples)
	for i := range samples[:n] {
		g := e.gainAt(e.pos)
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) gainAt(pos int) float64 {
	g := 1.0
	if e.attack > 0 && pos < e.attack {
		g = float64(pos) / float64(e.attack)
	}
	if fromEnd := e.total - pos; e.release > 0 && fromEnd <= e.release {
		g = math.Min(g, float64(fromEnd)/float64(e.release))
	}
	return g
}

func (e *envelope) Err() error { return e.s.Err() }

// Gain scales s by a linear factor; 0 or less is silent
func Gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}
