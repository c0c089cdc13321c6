package voice

import (
	"fmt"

	"github.com/ik5/polymix/loader"
	"github.com/ik5/polymix/sample"
)

// vorbisStream is the decoder-facing contract a VorbisVoice pulls from.
// loader.VorbisStream satisfies it; tests substitute a fake.
type vorbisStream interface {
	Info() (rate, channels, section int)
	Read(buf []byte) int
	SeekPCM(frames int64) error
	SeekTime(seconds float64) error
	Close() error
}

const vorbisScratchBytes = 4096

// VorbisSource is a streamed, seekable source. It holds only the filename
// and the output binding; every voice reopens the file with its own decoder
// instance so concurrent voices seek independently.
type VorbisSource struct {
	path string

	outRate     int
	outChannels int
	outBits     int
}

// NewVorbisSource validates that path opens as an Ogg Vorbis stream.
func NewVorbisSource(path string) (*VorbisSource, error) {
	if !loader.SniffVorbis(path) {
		return nil, fmt.Errorf("voice: %s: %w", path, ErrBadSource)
	}
	return &VorbisSource{path: path}, nil
}

func (s *VorbisSource) SetOutputFormat(rate, channels, bits int) error {
	if rate <= 0 || (channels != 1 && channels != 2) || (bits != 16 && bits != 24) {
		return ErrBadFormat
	}
	s.outRate = rate
	s.outChannels = channels
	s.outBits = bits
	return nil
}

func (s *VorbisSource) NewVoice() (Voice, error) {
	if s.outRate == 0 {
		return nil, ErrNotConfigured
	}
	stream, err := loader.OpenVorbis(s.path)
	if err != nil {
		return nil, err
	}
	return newVorbisVoice(stream, s.outRate, s.outChannels, s.outBits)
}

func (s *VorbisSource) Close() error { return nil }

// VorbisVoice streams from its own decoder instance through a small scratch
// buffer. The integer part of pos indexes the current input frame within
// buf and the interpolation window needs that frame plus the next one; when
// the window would pass bufLen, the unread tail is compacted to the front
// and the decoder refills the rest.
type VorbisVoice struct {
	stream vorbisStream

	outRate     int
	outChannels int
	outBits     int

	// input stream parameters of the current section
	rate       int
	channels   int
	section    int
	frameBytes int // channels × 2 (the decoder always delivers 16-bit LE)

	decoder sample.Decoder
	step    float64
	pos     float64 // frame cursor within buf, fractional part is the lerp offset

	buf    []byte
	bufLen int
}

func newVorbisVoice(stream vorbisStream, outRate, outChannels, outBits int) (*VorbisVoice, error) {
	v := &VorbisVoice{
		stream:      stream,
		outRate:     outRate,
		outChannels: outChannels,
		outBits:     outBits,
		section:     -1,
		buf:         make([]byte, vorbisScratchBytes),
	}
	if err := v.configure(); err != nil {
		stream.Close()
		return nil, err
	}
	return v, nil
}

// configure re-reads the stream parameters and rebinds decoder and step.
// Called at open and again whenever the logical stream section changes.
func (v *VorbisVoice) configure() error {
	rate, channels, section := v.stream.Info()
	if channels < 1 || channels > 2 {
		return fmt.Errorf("voice: %d vorbis channels: %w", channels, ErrBadSource)
	}
	dec, _, err := sample.Select(sample.Signed, 2, v.outBits)
	if err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	v.rate = rate
	v.channels = channels
	v.section = section
	v.frameBytes = 2 * channels
	v.decoder = dec
	v.step = float64(rate) / float64(v.outRate)
	return nil
}

// Read produces up to frames output frames. On end of stream it seeks back
// to the start and returns the frames produced so far.
func (v *VorbisVoice) Read(out []int32, frames int) int {
	produced := 0
	for produced < frames {
		idx := int(v.pos)
		alpha := v.pos - float64(idx)
		bufIdx := idx * v.frameBytes

		// the window needs two whole input frames at bufIdx
		if bufIdx+2*v.frameBytes > v.bufLen {
			skip := 0
			remaining := v.bufLen - bufIdx
			if remaining > 0 {
				copy(v.buf, v.buf[bufIdx:v.bufLen])
			} else {
				// the cursor overshot the buffered data; the overshoot
				// falls inside the bytes about to be decoded
				skip = -remaining
				remaining = 0
			}
			n := v.stream.Read(v.buf[remaining:])
			if n == 0 {
				// EOF: rewind for the next pass
				v.rewind()
				return produced
			}
			v.bufLen = remaining + n
			if skip > 0 {
				if skip > v.bufLen {
					skip = v.bufLen
				}
				copy(v.buf, v.buf[skip:v.bufLen])
				v.bufLen -= skip
			}

			if _, _, section := v.stream.Info(); section != v.section {
				if err := v.configure(); err != nil {
					v.rewind()
					return produced
				}
			}

			v.pos = alpha
			continue
		}

		a := v.buf[bufIdx:]
		if v.outChannels == 2 {
			if v.channels == 2 {
				la := v.decoder(a[0:2])
				ra := v.decoder(a[2:4])
				lb := v.decoder(a[4:6])
				rb := v.decoder(a[6:8])
				out[2*produced] = la + int32(alpha*float64(lb-la))
				out[2*produced+1] = ra + int32(alpha*float64(rb-ra))
			} else {
				va := v.decoder(a[0:2])
				vb := v.decoder(a[2:4])
				l := va + int32(alpha*float64(vb-va))
				out[2*produced] = l
				out[2*produced+1] = l
			}
		} else {
			if v.channels == 2 {
				la := v.decoder(a[0:2])
				ra := v.decoder(a[2:4])
				lb := v.decoder(a[4:6])
				rb := v.decoder(a[6:8])
				l := la + int32(alpha*float64(lb-la))
				r := ra + int32(alpha*float64(rb-ra))
				out[produced] = (l + r) >> 1
			} else {
				va := v.decoder(a[0:2])
				vb := v.decoder(a[2:4])
				out[produced] = va + int32(alpha*float64(vb-va))
			}
		}
		produced++
		v.pos += v.step
	}
	return produced
}

// rewind drops the scratch and seeks the decoder back to frame zero.
func (v *VorbisVoice) rewind() {
	v.bufLen = 0
	v.pos = 0
	v.stream.SeekPCM(0)
}

func (v *VorbisVoice) Seek(frame int64) {
	if frame < 0 {
		frame = 0
	}
	v.bufLen = 0
	v.pos = 0
	v.stream.SeekPCM(frame)
}

func (v *VorbisVoice) SeekTime(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	v.bufLen = 0
	v.pos = 0
	v.stream.SeekTime(seconds)
}

func (v *VorbisVoice) Close() error {
	return v.stream.Close()
}
