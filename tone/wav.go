package tone

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/occlusion/constant"
)

const writeBlock = 1024

// WriteWAV renders s until it ends into a 16-bit stereo PCM WAV file at path
func WriteWAV(path string, s beep.Streamer, rate beep.SampleRate) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, s, rate)
}

// Encode renders s into w as a 16-bit stereo PCM WAV stream
func Encode(w io.WriteSeeker, s beep.Streamer, rate beep.SampleRate) error {
	enc := wav.NewEncoder(w, int(rate), constant.AudioBitDepth, constant.AudioChannels, 1)

	samples := make([][2]float64, writeBlock)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: constant.AudioChannels, SampleRate: int(rate)},
		Data:           make([]int, 0, writeBlock*constant.AudioChannels),
		SourceBitDepth: constant.AudioBitDepth,
	}

	for {
		n, ok := s.Stream(samples)
		if n > 0 {
			buf.Data = buf.Data[:0]
			for _, smp := range samples[:n] {
				buf.Data = append(buf.Data, toPCM16(smp[0]), toPCM16(smp[1]))
			}
			if err := enc.Write(buf); err != nil {
				return fmt.Errorf("tone: write wav: %w", err)
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("tone: render: %w", err)
	}
	return enc.Close()
}

func toPCM16(v float64) int {
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * math.MaxInt16))
}
