package tone

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/occlusion/constant"
)

// Bell is a short two-partial ding, used as the demo event sound
func Bell(rate beep.SampleRate) beep.Streamer {
	d := constant.BellSoundDuration
	fund := Envelope(Oscillator(Sine, 880, d, rate), d, constant.BellSoundAttack, constant.BellSoundFundamentalRelease, rate)
	over := Envelope(Oscillator(Sine, 1760, d, rate), d, constant.BellSoundAttack, constant.BellSoundOvertoneRelease, rate)
	return beep.Mix(Gain(fund, 0.7), Gain(over, 0.3))
}

// MusicLoop is a kick on every beat over a saw bass line, one loop long
// Bright enough that a low-pass cutoff is clearly audible
func MusicLoop(rate beep.SampleRate) beep.Streamer {
	loop := constant.MusicLoopDuration
	beat := constant.MusicBeatDuration
	kick := constant.MusicKickDuration

	beats := int(loop / beat)
	kicks := make([]beep.Streamer, 0, beats)
	for range beats {
		hit := Envelope(Oscillator(Sine, 60, kick, rate), kick, 2*time.Millisecond, kick/2, rate)
		kicks = append(kicks, beep.Seq(hit, beep.Silence(rate.N(beat-kick))))
	}

	// Root, fifth, octave, fifth; one bar each
	notes := []float64{55, 82.41, 110, 82.41}
	bar := loop / time.Duration(len(notes))
	bass := make([]beep.Streamer, 0, len(notes))
	for _, f := range notes {
		bass = append(bass, Envelope(Oscillator(Saw, f, bar, rate), bar, 5*time.Millisecond, 20*time.Millisecond, rate))
	}

	return beep.Mix(Gain(beep.Seq(kicks...), 0.8), Gain(beep.Seq(bass...), 0.3))
}
