// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteWave16 writes interleaved signed 16-bit PCM as a canonical WAVE
// file: the 44-byte RIFF/fmt/data header followed by the samples in
// little-endian order. len(samples) must be a multiple of channels.
// Output written this way round-trips through LoadWave byte for byte.
func WriteWave16(w io.Writer, rate, channels int, samples []int16) error {
	if rate <= 0 || channels < 1 || len(samples)%channels != 0 {
		return fmt.Errorf("loader: %d Hz / %d channels / %d samples: %w",
			rate, channels, len(samples), ErrUnsupportedFormat)
	}

	blockAlign := channels * 2
	dataBytes := len(samples) * 2

	var hdr [44]byte
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+dataBytes))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:], waveFormatPCM)
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(rate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(rate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:], 16) // bits per sample
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataBytes))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	body := make([]byte, dataBytes)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(body[2*i:], uint16(s))
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return nil
}
