package voice

import (
	"encoding/binary"
	"testing"
)

// fakeStream serves canned 16-bit LE frames in dribbles, like a decoder
// that returns short reads, and counts seeks.
type fakeStream struct {
	rate     int
	channels int
	section  int
	samples  []int16
	pos      int // sample index
	chunk    int // max samples per Read, 0 = unlimited
	seeks    []int64
	closed   bool
}

func (f *fakeStream) Info() (int, int, int) { return f.rate, f.channels, f.section }

func (f *fakeStream) Read(buf []byte) int {
	if f.pos >= len(f.samples) {
		return 0
	}
	n := len(buf) / 2
	if f.chunk > 0 && n > f.chunk {
		n = f.chunk
	}
	if n > len(f.samples)-f.pos {
		n = len(f.samples) - f.pos
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(f.samples[f.pos+i]))
	}
	f.pos += n
	return n * 2
}

func (f *fakeStream) SeekPCM(frames int64) error {
	f.seeks = append(f.seeks, frames)
	f.pos = int(frames) * f.channels
	return nil
}

func (f *fakeStream) SeekTime(seconds float64) error {
	return f.SeekPCM(int64(seconds * float64(f.rate)))
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func TestVorbisVoice_MonoToStereoSameRate(t *testing.T) {
	t.Parallel()

	fs := &fakeStream{rate: 44100, channels: 1, samples: []int16{100, 200, 300, 400}}
	v, err := newVorbisVoice(fs, 44100, 2, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	// the interpolation window always needs a pair of input frames, so the
	// final frame is held back and the read ends one short
	out := make([]int32, 8)
	n := v.Read(out, 4)
	if n != 3 {
		t.Fatalf("Read() = %d frames, want 3", n)
	}
	want := []int32{100, 100, 200, 200, 300, 300}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %d, want %d", i, out[i], w)
		}
	}
}

func TestVorbisVoice_ShortDecoderReads(t *testing.T) {
	t.Parallel()

	// the decoder hands over two samples at a time; the scratch window must
	// compact and refill without losing or repeating frames
	fs := &fakeStream{
		rate:     8000,
		channels: 1,
		samples:  []int16{10, 20, 30, 40, 50, 60, 70, 80},
		chunk:    2,
	}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	out := make([]int32, 8)
	n := v.Read(out, 8)
	if n != 7 {
		t.Fatalf("Read() = %d frames, want 7 (final frame held back)", n)
	}
	for i := 0; i < n; i++ {
		if out[i] != int32((i+1)*10) {
			t.Errorf("out[%d] = %d, want %d", i, out[i], (i+1)*10)
		}
	}
}

func TestVorbisVoice_EOFRewinds(t *testing.T) {
	t.Parallel()

	fs := &fakeStream{rate: 8000, channels: 1, samples: []int16{1, 2}}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	out := make([]int32, 8)
	n := v.Read(out, 8)
	if n >= 8 {
		t.Fatalf("Read() = %d frames, expected early EOF", n)
	}
	if len(fs.seeks) == 0 || fs.seeks[len(fs.seeks)-1] != 0 {
		t.Errorf("stream seeks = %v, want a rewind to 0 on EOF", fs.seeks)
	}

	// and the next read serves the stream from the top
	n = v.Read(out, 1)
	if n != 1 || out[0] != 1 {
		t.Errorf("Read() after rewind = %d frames, out[0] = %d; want 1 frame of value 1", n, out[0])
	}
}

func TestVorbisVoice_SectionChangeReconfigures(t *testing.T) {
	t.Parallel()

	fs := &fakeStream{rate: 8000, channels: 1, samples: make([]int16, 64)}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	out := make([]int32, 16)
	v.Read(out, 16)

	// the stream flips to a new logical section with a different rate
	fs.rate = 16000
	fs.section = 1
	fs.samples = append(fs.samples, make([]int16, 64)...)

	v.Read(out, 16)
	for v.bufLen > 0 && v.section == 0 {
		v.Read(out, 16) // drain until the voice crosses the refill boundary
	}
	if v.section != 1 {
		t.Fatalf("voice section = %d, want 1 after stream section change", v.section)
	}
	if v.step != 2.0 {
		t.Errorf("step = %v, want 2.0 after rate change to 16 kHz", v.step)
	}
}

func TestVorbisVoice_CloseClosesStream(t *testing.T) {
	t.Parallel()

	fs := &fakeStream{rate: 8000, channels: 1, samples: []int16{1}}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fs.closed {
		t.Error("Close() did not close the underlying stream")
	}
}

func TestVorbisVoice_StereoToMono(t *testing.T) {
	t.Parallel()

	fs := &fakeStream{rate: 8000, channels: 2, samples: []int16{1000, 3000, -1000, -3000, 0, 0}}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	out := make([]int32, 2)
	n := v.Read(out, 2)
	if n != 2 {
		t.Fatalf("Read() = %d frames, want 2", n)
	}
	if out[0] != 2000 || out[1] != -2000 {
		t.Errorf("out = [%d %d], want [2000 -2000]", out[0], out[1])
	}
}

func TestVorbisVoice_StereoToMonoInterpolatesPerChannel(t *testing.T) {
	t.Parallel()

	// per-channel interpolation before the downmix sum: at the midpoint
	// of (1,1)->(0,0) each channel truncates to 1, giving (1+1)>>1 = 1
	fs := &fakeStream{rate: 4000, channels: 2, samples: []int16{1, 1, 0, 0, 0, 0}}
	v, err := newVorbisVoice(fs, 8000, 1, 16)
	if err != nil {
		t.Fatalf("newVorbisVoice() error = %v", err)
	}

	out := make([]int32, 2)
	n := v.Read(out, 2)
	if n != 2 {
		t.Fatalf("Read() = %d frames, want 2", n)
	}
	if out[0] != 1 || out[1] != 1 {
		t.Errorf("out = [%d %d], want [1 1]", out[0], out[1])
	}
}
