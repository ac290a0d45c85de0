package spatial

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/lixenwraith/occlusion/constant"
)

// Sound is a loaded sample or an opened stream
type Sound struct {
	sys    *System
	path   string
	mode   Mode
	stream bool
	format beep.Format

	// Samples only; shared with the cache and read-only after decode
	sample *decodedSample

	released bool
}

// CreateSound decodes a whole file into memory
func (s *System) CreateSound(path string, mode Mode) (*Sound, error) {
	if err := s.live(); err != nil {
		return nil, err
	}

	sample, err := s.cache.load(path)
	if err != nil {
		return nil, err
	}

	return s.register(&Sound{
		sys:    s,
		path:   path,
		mode:   mode,
		format: sample.format,
		sample: sample,
	})
}

// CreateStream validates a file and defers decoding to playback
// Every channel playing a stream owns its own decoder
func (s *System) CreateStream(path string, mode Mode) (*Sound, error) {
	if err := s.live(); err != nil {
		return nil, err
	}

	dec, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	_ = dec.Close()

	return s.register(&Sound{
		sys:    s,
		path:   path,
		mode:   mode,
		stream: true,
		format: format,
	})
}

// PlaySound starts a new channel; the oldest channel is stolen when the limit is hit
func (s *System) PlaySound(snd *Sound, paused bool) (*Channel, error) {
	if snd == nil {
		return nil, fmt.Errorf("%w: nil sound", ErrInvalidParam)
	}
	if err := s.live(); err != nil {
		return nil, err
	}
	if snd.sys != s {
		return nil, fmt.Errorf("%w: sound belongs to another system", ErrInvalidParam)
	}

	// Decoder setup does file IO, keep it outside mu
	src, closer, err := snd.open()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.checkLive()
	if err == nil && snd.released {
		err = ErrInvalidHandle
	}
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	resampler := beep.Resample(constant.AudioResampleQuality, snd.format.SampleRate, s.sampleRate, src)

	source := s.newNode(DSPTypeWave)
	source.src = resampler
	head := s.newNode(DSPTypeFader)
	head.inputs = []*DSP{source}
	source.output = head

	mode := Mode2D
	if snd.mode.Has(Mode3D) {
		mode = Mode3D
	}

	c := &Channel{
		sys:       s,
		sound:     snd,
		head:      head,
		source:    source,
		resampler: resampler,
		baseRatio: float64(snd.format.SampleRate) / float64(s.sampleRate),
		closer:    closer,
		mode:      mode,
		volume:    1,
		gain:      1,
		paused:    paused,
	}
	c.pan = newPan(head)
	c.vol = newVolume(c.pan)
	c.applyFader()

	s.stealFor(1)
	s.channels = append(s.channels, c)
	s.mixer.Add(c)
	return c, nil
}

// stealFor stops the oldest live channels until n more fit; caller holds mu
func (s *System) stealFor(n int) {
	live := 0
	for _, c := range s.channels {
		if !c.stopped && !c.done {
			live++
		}
	}
	for _, c := range s.channels {
		if live+n <= s.maxChannels {
			return
		}
		if c.stopped || c.done {
			continue
		}
		c.stopped = true
		c.release()
		s.stolen++
		live--
	}
}

// Path returns the file the sound was created from
func (snd *Sound) Path() string { return snd.path }

// IsStream reports whether the sound decodes on playback
func (snd *Sound) IsStream() bool { return snd.stream }

// Format returns the source format before resampling
func (snd *Sound) Format() beep.Format { return snd.format }

// Length returns the decoded duration of a sample, 0 for streams
func (snd *Sound) Length() time.Duration {
	if snd.sample == nil {
		return 0
	}
	return snd.format.SampleRate.D(snd.sample.buffer.Len())
}

// Release stops every channel playing the sound and invalidates the handle
func (snd *Sound) Release() error {
	s := snd.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if snd.released {
		return ErrInvalidHandle
	}
	for _, c := range s.channels {
		if c.sound == snd && !c.stopped {
			c.stopped = true
			c.release()
		}
	}
	snd.released = true
	snd.sample = nil
	return nil
}

// open builds the source streamer for one playback
func (snd *Sound) open() (beep.Streamer, io.Closer, error) {
	loop := snd.mode.Has(ModeLoopNormal)

	if !snd.stream {
		snd.sys.mu.Lock()
		sample := snd.sample
		snd.sys.mu.Unlock()
		if sample == nil {
			return nil, nil, ErrInvalidHandle
		}
		st := sample.buffer.Streamer(0, sample.buffer.Len())
		if loop {
			return beep.Loop(-1, st), nil, nil
		}
		return st, nil, nil
	}

	dec, _, err := decodeFile(snd.path)
	if err != nil {
		return nil, nil, err
	}
	if loop {
		return beep.Loop(-1, dec), dec, nil
	}
	return dec, dec, nil
}

func (s *System) register(snd *Sound) (*Sound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return nil, err
	}
	return snd, nil
}

// live checks state under mu for callers that must not hold it
func (s *System) live() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkLive()
}

// decodeFile opens a decoder by file extension; closing the decoder closes the file
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext, err := formatOf(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open %s: %w", path, err)
	}

	var (
		dec    beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".wav":
		dec, format, err = wav.Decode(f)
	case ".mp3":
		dec, format, err = mp3.Decode(f)
	case ".ogg":
		dec, format, err = vorbis.Decode(f)
	case ".flac":
		dec, format, err = flac.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return dec, format, nil
}

// formatOf returns the lowercased extension of a supported file
func formatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".ogg", ".flac":
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// decodeSample reads a whole file into a buffer
func decodeSample(path string) (*decodedSample, error) {
	dec, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	buf := beep.NewBuffer(format)
	buf.Append(dec)
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no samples", ErrUnsupportedFormat, path)
	}
	return &decodedSample{buffer: buf, format: format}, nil
}
