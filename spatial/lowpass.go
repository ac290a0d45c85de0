package spatial

import "math"

// biquad is a stereo RBJ low-pass filter in direct form I
type biquad struct {
	sampleRate float64

	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 [2]float64
	y1, y2 [2]float64
}

func newBiquad(sampleRate float64) *biquad {
	return &biquad{sampleRate: sampleRate, b0: 1}
}

// setLowPass computes coefficients; resonance 1 is a flat Butterworth response
// Cutoff is limited below Nyquist so the highest setting is effectively transparent
func (f *biquad) setLowPass(cutoff, resonance float64) {
	nyquist := f.sampleRate / 2
	if cutoff > nyquist*0.98 {
		cutoff = nyquist * 0.98
	}
	q := resonance / math.Sqrt2

	w0 := 2 * math.Pi * cutoff / f.sampleRate
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	f.b0 = (1 - cosW) / 2 / a0
	f.b1 = (1 - cosW) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosW / a0
	f.a2 = (1 - alpha) / a0
}

func (f *biquad) process(samples [][2]float64) {
	for i := range samples {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
}

// reset clears filter history
func (f *biquad) reset() {
	f.x1, f.x2, f.y1, f.y2 = [2]float64{}, [2]float64{}, [2]float64{}, [2]float64{}
}
