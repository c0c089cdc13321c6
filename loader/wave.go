package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/polymix/sample"
)

// WAVE format tags, as found in the fmt chunk.
const (
	waveFormatPCM        = 0x0001
	waveFormatIEEEFloat  = 0x0003
	waveFormatALaw       = 0x0006
	waveFormatMuLaw      = 0x0007
	waveFormatExtensible = 0xFFFE
)

// WaveData is a fully loaded WAVE file: the raw data chunk plus everything a
// voice needs to decode and resample it.
type WaveData struct {
	Rate           int
	Channels       int
	BytesPerSample int // per channel
	Kind           sample.Kind
	Width          int // decoder input width in bytes
	Data           []byte
	FrameCount     int
}

// SniffWave reports whether path starts with a RIFF/WAVE header.
func SniffWave(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var hdr [12]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return false
	}
	return string(hdr[0:4]) == "RIFF" && string(hdr[8:12]) == "WAVE"
}

// LoadWave parses a WAVE file and returns its data chunk untouched, together
// with the sample kind resolved from the format tag (via the sub-format GUID
// for WAVE_FORMAT_EXTENSIBLE files).
func LoadWave(path string) (*WaveData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("loader: %s: %w", path, ErrNotWave)
	}

	tag := int(dec.WavAudioFormat)
	if tag == waveFormatExtensible {
		tag, err = subFormatTag(f)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		// subFormatTag moved the read cursor; start over for the data chunk.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}
		dec = wav.NewDecoder(f)
		if !dec.IsValidFile() {
			return nil, fmt.Errorf("loader: %s: %w", path, ErrNotWave)
		}
	}

	kind, width, err := resolveKind(tag, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	blob := make([]byte, dec.PCMSize)
	n, err := io.ReadFull(dec.PCMChunk, blob)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	blob = blob[:n]

	format := dec.Format()
	frameBytes := width * format.NumChannels
	if frameBytes == 0 {
		return nil, fmt.Errorf("loader: %s: %w", path, ErrUnsupportedFormat)
	}

	return &WaveData{
		Rate:           format.SampleRate,
		Channels:       format.NumChannels,
		BytesPerSample: width,
		Kind:           kind,
		Width:          width,
		Data:           blob,
		FrameCount:     len(blob) / frameBytes,
	}, nil
}

// Format describes the data in go-audio vocabulary, for interop with the
// ecosystem the parser comes from.
func (wd *WaveData) Format() *audio.Format {
	return &audio.Format{NumChannels: wd.Channels, SampleRate: wd.Rate}
}

// resolveKind maps a WAVE format tag and declared bit depth to the decoder
// vocabulary. 12-bit PCM is stored in 16-bit containers with the low nibble
// zeroed, so it is treated as 16.
func resolveKind(tag, bits int) (sample.Kind, int, error) {
	switch tag {
	case waveFormatPCM:
		switch bits {
		case 8:
			return sample.Unsigned, 1, nil
		case 12, 16:
			return sample.Signed, 2, nil
		case 24:
			return sample.Signed, 3, nil
		case 32:
			return sample.Signed, 4, nil
		}
	case waveFormatIEEEFloat:
		switch bits {
		case 32:
			return sample.Float, 4, nil
		case 64:
			return sample.Float, 8, nil
		}
	case waveFormatALaw:
		return sample.ALaw, 1, nil
	case waveFormatMuLaw:
		return sample.MuLaw, 1, nil
	}
	return 0, 0, ErrUnsupportedFormat
}

// subFormatTag walks the RIFF chunk list to the fmt chunk and returns the
// first 16-bit word of the WAVE_FORMAT_EXTENSIBLE sub-format GUID, which is
// the effective format tag.
func subFormatTag(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(12, io.SeekStart); err != nil {
		return 0, err
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(rs, hdr[:]); err != nil {
			return 0, ErrNotWave
		}
		size := binary.LittleEndian.Uint32(hdr[4:8])
		if string(hdr[0:4]) == "fmt " {
			// cbSize lives after the 16 common bytes; the GUID starts 8
			// bytes after that (cbSize, wValidBitsPerSample, dwChannelMask).
			if size < 40 {
				return 0, ErrUnsupportedFormat
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(rs, body); err != nil {
				return 0, ErrNotWave
			}
			return int(binary.LittleEndian.Uint16(body[24:26])), nil
		}
		// chunks are word aligned
		skip := int64(size)
		if size%2 == 1 {
			skip++
		}
		if _, err := rs.Seek(skip, io.SeekCurrent); err != nil {
			return 0, ErrNotWave
		}
	}
}
