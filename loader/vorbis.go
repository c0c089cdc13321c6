package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisReader is the part of oggvorbis.Reader the stream relies on.
// Narrowed to an interface so tests can substitute a fake decoder.
type vorbisReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	SetPosition(int64) error
}

// VorbisStream is one independent decoder instance over a Vorbis file. It
// exposes the pull shape the voice layer consumes: interleaved signed 16-bit
// little-endian bytes, with explicit PCM and time seeking. Each voice opens
// its own stream so voices never fight over a shared decode position.
type VorbisStream struct {
	f       *os.File
	dec     vorbisReader
	rate    int
	channels int
	section int
	scratch []float32
}

// SniffVorbis reports whether path opens as an Ogg Vorbis stream.
func SniffVorbis(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, err = oggvorbis.NewReader(f)
	return err == nil
}

// OpenVorbis opens a fresh decoder instance over path.
func OpenVorbis(path string) (*VorbisStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loader: %s: %w", path, ErrNotVorbis)
	}
	return &VorbisStream{
		f:        f,
		dec:      dec,
		rate:     dec.SampleRate(),
		channels: dec.Channels(),
		scratch:  make([]float32, 2048),
	}, nil
}

// Info returns the stream parameters of the current logical section. The
// section counter increments whenever a chained stream switches rate or
// channel count mid-file; callers compare it against the value they last saw
// to know when to reconfigure their resampler.
func (s *VorbisStream) Info() (rate, channels, section int) {
	return s.rate, s.channels, s.section
}

// Read fills buf with interleaved signed 16-bit little-endian samples and
// returns the number of bytes written, 0 at end of stream. Short reads are
// normal; the byte count is always even and a multiple of the channel count.
func (s *VorbisStream) Read(buf []byte) int {
	want := len(buf) / 2
	if want > len(s.scratch) {
		want = len(s.scratch)
	}
	want -= want % s.channels
	if want <= 0 {
		return 0
	}

	n, err := s.dec.Read(s.scratch[:want])
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0
		}
		return 0
	}

	for i := 0; i < n; i++ {
		v := float32ToInt16(s.scratch[i])
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}

	if r, c := s.dec.SampleRate(), s.dec.Channels(); r != s.rate || c != s.channels {
		s.rate = r
		s.channels = c
		s.section++
	}
	return n * 2
}

// SeekPCM positions the stream at the given frame.
func (s *VorbisStream) SeekPCM(frames int64) error {
	if err := s.dec.SetPosition(frames); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}

// SeekTime positions the stream at the given offset in seconds.
func (s *VorbisStream) SeekTime(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return s.SeekPCM(int64(seconds * float64(s.rate)))
}

// float32ToInt16 clamps and scales one decoded sample to the 16-bit wire
// shape the voice layer consumes.
func float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}

func (s *VorbisStream) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}
