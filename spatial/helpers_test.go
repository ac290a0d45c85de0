package spatial

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/occlusion/tone"
)

const testRate = beep.SampleRate(22050)

// newTestSystem returns an initialized system mixing into a pull output
func newTestSystem(t *testing.T, maxChannels int, flags InitFlags) (*System, *PullOutput) {
	t.Helper()
	out := NewPullOutput()
	sys, err := Create(WithOutput(out), WithSampleRate(testRate))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := sys.Init(maxChannels, flags); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = sys.Close() })
	return sys, out
}

// writeTone renders a half-amplitude oscillator to a wav file in the test's temp dir
func writeTone(t *testing.T, name string, wave tone.Wave, freq float64, d time.Duration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := tone.WriteWAV(path, tone.Gain(tone.Oscillator(wave, freq, d, testRate), 0.5), testRate); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// rms returns the root mean square of the left channel
func rms(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s[0] * s[0]
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func mustSound(t *testing.T, sys *System, path string, mode Mode) *Sound {
	t.Helper()
	snd, err := sys.CreateSound(path, mode)
	if err != nil {
		t.Fatalf("CreateSound failed: %v", err)
	}
	return snd
}

func mustPlay(t *testing.T, sys *System, snd *Sound) *Channel {
	t.Helper()
	ch, err := sys.PlaySound(snd, false)
	if err != nil {
		t.Fatalf("PlaySound failed: %v", err)
	}
	return ch
}
