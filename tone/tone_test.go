package tone

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(8000)

// drain pulls s to the end and returns every sample
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 100)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer did not end")
	return nil
}

// TestOscillatorLength verifies the oscillator stops after its duration
func TestOscillatorLength(t *testing.T) {
	for _, w := range []Wave{Sine, Square, Saw, Noise} {
		got := drain(t, Oscillator(w, 440, 250*time.Millisecond, testRate))
		if len(got) != testRate.N(250*time.Millisecond) {
			t.Errorf("wave %d: expected %d samples, got %d", w, testRate.N(250*time.Millisecond), len(got))
		}
		for i, s := range got {
			if s[0] < -1 || s[0] > 1 || s[0] != s[1] {
				t.Fatalf("wave %d: sample %d out of range or not mono: %v", w, i, s)
			}
		}
	}
}

// TestSquareWaveLevels verifies square output only takes the two rail values
func TestSquareWaveLevels(t *testing.T) {
	for _, s := range drain(t, Oscillator(Square, 100, 100*time.Millisecond, testRate)) {
		if s[0] != 1 && s[0] != -1 {
			t.Fatalf("expected +-1, got %f", s[0])
		}
	}
}

// TestEnvelopeShape verifies the envelope starts and ends silent and truncates to its length
func TestEnvelopeShape(t *testing.T) {
	src := Oscillator(Square, 100, time.Second, testRate)
	env := Envelope(src, 500*time.Millisecond, 50*time.Millisecond, 100*time.Millisecond, testRate)
	got := drain(t, env)

	if len(got) != testRate.N(500*time.Millisecond) {
		t.Fatalf("expected %d samples, got %d", testRate.N(500*time.Millisecond), len(got))
	}
	if got[0][0] != 0 {
		t.Errorf("expected silent first sample, got %f", got[0][0])
	}
	mid := got[len(got)/2][0]
	if math.Abs(mid) != 1 {
		t.Errorf("expected full level in sustain, got %f", mid)
	}
	last := got[len(got)-1][0]
	if math.Abs(last) > 0.01 {
		t.Errorf("expected near-silent last sample, got %f", last)
	}
}

// TestGainSilent verifies zero gain mutes the stream
func TestGainSilent(t *testing.T) {
	for _, s := range drain(t, Gain(Oscillator(Sine, 440, 50*time.Millisecond, testRate), 0)) {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("expected silence, got %v", s)
		}
	}
}

// TestWriteWAV verifies the written file decodes with the expected format and length
func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, Oscillator(Sine, 440, 200*time.Millisecond, testRate), testRate); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatal("expected a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if d.SampleRate != uint32(testRate) {
		t.Errorf("expected sample rate %d, got %d", testRate, d.SampleRate)
	}
	if d.BitDepth != 16 {
		t.Errorf("expected 16 bit, got %d", d.BitDepth)
	}
	if buf.Format.NumChannels != 2 {
		t.Errorf("expected 2 channels, got %d", buf.Format.NumChannels)
	}
	frames := len(buf.Data) / 2
	if frames != testRate.N(200*time.Millisecond) {
		t.Errorf("expected %d frames, got %d", testRate.N(200*time.Millisecond), frames)
	}
}

// TestGeneratedAssets verifies the demo sounds render to non-silent audio of the right length
func TestGeneratedAssets(t *testing.T) {
	bell := drain(t, Bell(testRate))
	if len(bell) == 0 || peak(bell) == 0 {
		t.Error("expected audible bell")
	}

	music := drain(t, MusicLoop(testRate))
	want := testRate.N(4 * time.Second)
	if diff := len(music) - want; diff < -8 || diff > 8 {
		t.Errorf("expected about %d music samples, got %d", want, len(music))
	}
	if peak(music) == 0 {
		t.Error("expected audible music")
	}
}

func peak(samples [][2]float64) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(s[0]))
	}
	return p
}
