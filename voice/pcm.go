package voice

import (
	"fmt"

	"github.com/ik5/polymix/loader"
	"github.com/ik5/polymix/sample"
)

// pcmReadFn is one of the four channel-mapping read variants, chosen once at
// format time so the per-frame loop carries no dispatch.
type pcmReadFn func(v *PCMVoice, out []int32, frames int) int

// PCMSource is an in-memory, seekable source decoded lazily from its raw
// data chunk. The blob is shared read-only between all voices; each voice
// owns only its cursor.
type PCMSource struct {
	rate         int
	channels     int
	channelBytes int
	frameBytes   int
	frameCount   int
	kind         sample.Kind
	data         []byte

	// output binding, recomputed by SetOutputFormat
	decoder sample.Decoder
	step    float64
	read    pcmReadFn
}

// NewPCMSource wraps loaded WAVE data. Inputs beyond stereo are refused;
// the mix format itself never exceeds two channels.
func NewPCMSource(wd *loader.WaveData) (*PCMSource, error) {
	if wd.Channels < 1 || wd.Channels > 2 {
		return nil, fmt.Errorf("voice: %d input channels: %w", wd.Channels, ErrBadSource)
	}
	if wd.FrameCount == 0 {
		return nil, fmt.Errorf("voice: empty data chunk: %w", ErrBadSource)
	}
	return &PCMSource{
		rate:         wd.Rate,
		channels:     wd.Channels,
		channelBytes: wd.Width,
		frameBytes:   wd.Width * wd.Channels,
		frameCount:   wd.FrameCount,
		kind:         wd.Kind,
		data:         wd.Data,
	}, nil
}

// Rate returns the source sample rate in Hz.
func (s *PCMSource) Rate() int { return s.rate }

// FrameCount returns the total number of input frames.
func (s *PCMSource) FrameCount() int { return s.frameCount }

// SetOutputFormat binds the source to the mixer format: it selects the
// sample decoder for the output depth, the resampler step, and one of the
// four channel-mapping read variants.
func (s *PCMSource) SetOutputFormat(rate, channels, bits int) error {
	if rate <= 0 || (channels != 1 && channels != 2) {
		return ErrBadFormat
	}
	dec, _, err := sample.Select(s.kind, s.channelBytes, bits)
	if err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	s.decoder = dec
	s.step = float64(s.rate) / float64(rate)

	if channels == 2 {
		if s.channels == 2 {
			s.read = s.readStereoToStereo
		} else {
			s.read = s.readMonoToStereo
		}
	} else {
		if s.channels == 2 {
			s.read = s.readStereoToMono
		} else {
			s.read = s.readMonoToMono
		}
	}
	return nil
}

// NewVoice spawns a voice at the start of the data.
func (s *PCMSource) NewVoice() (Voice, error) {
	if s.read == nil {
		return nil, ErrNotConfigured
	}
	return &PCMVoice{src: s}, nil
}

func (s *PCMSource) Close() error { return nil }

// PCMVoice is a playback cursor over a PCMSource. The integer part of pos is
// the input frame index, the fractional part the interpolation offset.
type PCMVoice struct {
	src *PCMSource
	pos float64
}

func (v *PCMVoice) Read(out []int32, frames int) int {
	n := v.src.read(v, out, frames)
	if n < frames {
		// input exhausted: rewind, carrying the fractional cursor so a
		// looping caller resumes without a phase jump
		v.pos -= float64(v.src.frameCount)
		if v.pos < 0 {
			v.pos = 0
		}
	}
	return n
}

func (v *PCMVoice) Seek(frame int64) {
	if frame < 0 {
		frame = 0
	}
	if frame >= int64(v.src.frameCount) {
		frame = int64(v.src.frameCount) - 1
	}
	v.pos = float64(frame)
}

func (v *PCMVoice) SeekTime(seconds float64) {
	if seconds < 0 {
		return
	}
	v.Seek(int64(seconds * float64(v.src.rate)))
}

func (v *PCMVoice) Close() error { return nil }

// lerpPair decodes the interpolation pair for one channel at frame idx. The
// second frame is clamped at the end of the data so the last input frame is
// still emitted exactly once.
func (s *PCMSource) lerpPair(idx, channel int) (a, b int32) {
	base := idx*s.frameBytes + channel*s.channelBytes
	a = s.decoder(s.data[base : base+s.channelBytes])
	if idx+1 < s.frameCount {
		base += s.frameBytes
	}
	b = s.decoder(s.data[base : base+s.channelBytes])
	return a, b
}

func (s *PCMSource) readStereoToStereo(v *PCMVoice, out []int32, frames int) int {
	produced := 0
	for produced < frames {
		idx := int(v.pos)
		if idx >= s.frameCount {
			break
		}
		alpha := v.pos - float64(idx)
		la, lb := s.lerpPair(idx, 0)
		ra, rb := s.lerpPair(idx, 1)
		out[2*produced] = la + int32(alpha*float64(lb-la))
		out[2*produced+1] = ra + int32(alpha*float64(rb-ra))
		produced++
		v.pos += s.step
	}
	return produced
}

func (s *PCMSource) readMonoToStereo(v *PCMVoice, out []int32, frames int) int {
	produced := 0
	for produced < frames {
		idx := int(v.pos)
		if idx >= s.frameCount {
			break
		}
		alpha := v.pos - float64(idx)
		a, b := s.lerpPair(idx, 0)
		l := a + int32(alpha*float64(b-a))
		out[2*produced] = l
		out[2*produced+1] = l
		produced++
		v.pos += s.step
	}
	return produced
}

func (s *PCMSource) readStereoToMono(v *PCMVoice, out []int32, frames int) int {
	produced := 0
	for produced < frames {
		idx := int(v.pos)
		if idx >= s.frameCount {
			break
		}
		alpha := v.pos - float64(idx)
		la, lb := s.lerpPair(idx, 0)
		ra, rb := s.lerpPair(idx, 1)
		l := la + int32(alpha*float64(lb-la))
		r := ra + int32(alpha*float64(rb-ra))
		out[produced] = (l + r) >> 1
		produced++
		v.pos += s.step
	}
	return produced
}

func (s *PCMSource) readMonoToMono(v *PCMVoice, out []int32, frames int) int {
	produced := 0
	for produced < frames {
		idx := int(v.pos)
		if idx >= s.frameCount {
			break
		}
		alpha := v.pos - float64(idx)
		a, b := s.lerpPair(idx, 0)
		out[produced] = a + int32(alpha*float64(b-a))
		produced++
		v.pos += s.step
	}
	return produced
}
