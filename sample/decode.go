package sample

import (
	"fmt"
	"math"
)

// Kind identifies the on-disk encoding of one PCM sample, independent of
// its byte width. It mirrors the wave_format_tag vocabulary of the WAVE
// loader contract (unsigned/signed/float/companded).
type Kind int

const (
	// Unsigned is 8-bit unsigned PCM (WAVE's only unsigned width).
	Unsigned Kind = iota
	// Signed is little-endian signed PCM at any byte width.
	Signed
	// Float is little-endian IEEE 754, 32- or 64-bit.
	Float
	// ALaw is ITU-T G.711 A-law companded 8-bit.
	ALaw
	// MuLaw is ITU-T G.711 mu-law companded 8-bit.
	MuLaw
)

// Decoder converts one input sample frame element to a signed intermediate
// value scaled for the requested output depth. The slice passed to it
// holds exactly the frame width returned by Select.
type Decoder func(frame []byte) int32

// Select returns the decoder for one (kind, input byte width, output depth)
// triple, along with the number of input bytes the decoder expects per
// call. outBits must be 16 or 24.
func Select(kind Kind, width int, outBits int) (Decoder, int, error) {
	if outBits != 16 && outBits != 24 {
		return nil, 0, fmt.Errorf("sample: unsupported output depth %d", outBits)
	}

	switch kind {
	case Unsigned:
		if width != 1 {
			return nil, 0, fmt.Errorf("sample: unsigned PCM only supports 8-bit input, got width %d", width)
		}
		return decodeUnsigned8(outBits), 1, nil

	case Signed:
		switch width {
		case 2, 3, 4:
			return decodeSignedLE(width, outBits), width, nil
		default:
			return nil, 0, fmt.Errorf("sample: unsupported signed PCM width %d", width)
		}

	case Float:
		switch width {
		case 4:
			return decodeFloat32LE(outBits), 4, nil
		case 8:
			return decodeFloat64LE(outBits), 8, nil
		default:
			return nil, 0, fmt.Errorf("sample: unsupported float width %d", width)
		}

	case ALaw:
		return decodeALaw(outBits), 1, nil

	case MuLaw:
		return decodeMuLaw(outBits), 1, nil

	default:
		return nil, 0, fmt.Errorf("sample: unknown kind %d", kind)
	}
}

// decodeUnsigned8 recentres unsigned 8-bit PCM around zero:
// ((b<<8) - 0x8000) for 16-bit out, shifted left another 8 bits for 24-bit.
func decodeUnsigned8(outBits int) Decoder {
	if outBits == 24 {
		return func(frame []byte) int32 {
			return (int32(frame[0]) << 16) - 0x800000
		}
	}
	return func(frame []byte) int32 {
		return (int32(frame[0]) << 8) - 0x8000
	}
}

// decodeSignedLE takes the top two (16-bit out) or top three (24-bit out)
// bytes of a little-endian signed sample of the given width, sign-extending
// from the most significant byte actually present.
func decodeSignedLE(width, outBits int) Decoder {
	if outBits == 24 {
		if width <= 3 {
			return func(frame []byte) int32 {
				v := signExtend(frame, width)
				return v << uint(24-8*width) // pad up to 24 significant bits
			}
		}
		return func(frame []byte) int32 {
			// width==4: keep the top three bytes.
			v := signExtend(frame, width)
			return v >> 8
		}
	}
	// 16-bit out: keep the top two bytes of whatever width we were given.
	return func(frame []byte) int32 {
		v := signExtend(frame, width)
		return v >> uint(8*(width-2))
	}
}

// signExtend reads a little-endian width-byte two's-complement integer into
// an int32, sign-extended from its true MSB.
func signExtend(frame []byte, width int) int32 {
	var u uint32
	for i := width - 1; i >= 0; i-- {
		u = (u << 8) | uint32(frame[i])
	}
	shift := uint(32 - 8*width)
	return int32(u<<shift) >> shift
}

func decodeFloat32LE(outBits int) Decoder {
	scale := float32(0x7FFF)
	if outBits == 24 {
		scale = float32(0x7FFFFF)
	}
	return func(frame []byte) int32 {
		bits := uint32(frame[0]) | uint32(frame[1])<<8 | uint32(frame[2])<<16 | uint32(frame[3])<<24
		f := math.Float32frombits(bits)
		return int32(f * scale)
	}
}

func decodeFloat64LE(outBits int) Decoder {
	scale := float64(0x7FFF)
	if outBits == 24 {
		scale = float64(0x7FFFFF)
	}
	return func(frame []byte) int32 {
		var bits uint64
		for i := 7; i >= 0; i-- {
			bits = (bits << 8) | uint64(frame[i])
		}
		f := math.Float64frombits(bits)
		return int32(f * scale)
	}
}

// decodeALaw implements ITU-T G.711 A-law expansion to a 13-bit signed
// magnitude, left-shifted by 4 onto the 16-bit scale (and by a further
// 8 bits for 24-bit output).
func decodeALaw(outBits int) Decoder {
	extra := uint(0)
	if outBits == 24 {
		extra = 8
	}
	return func(frame []byte) int32 {
		return alawToLinear(frame[0]) << (4 + extra)
	}
}

// decodeMuLaw implements ITU-T G.711 mu-law expansion to a 14-bit signed
// magnitude, left-shifted by 3 onto the 16-bit scale.
func decodeMuLaw(outBits int) Decoder {
	extra := uint(0)
	if outBits == 24 {
		extra = 8
	}
	return func(frame []byte) int32 {
		return mulawToLinear(frame[0]) << (3 + extra)
	}
}

// alawToLinear decodes one A-law octet to its 13-bit signed linear value.
func alawToLinear(a byte) int32 {
	a ^= 0x55
	sign := a & 0x80
	exponent := (a & 0x70) >> 4
	mantissa := int32(a & 0x0F)

	magnitude := (mantissa << 4) + 8
	if exponent != 0 {
		magnitude += 0x100
		magnitude <<= exponent - 1
	}
	if sign != 0 {
		return magnitude
	}
	return -magnitude
}

// mulawToLinear decodes one mu-law octet to its 14-bit signed linear value.
func mulawToLinear(m byte) int32 {
	m = ^m
	sign := m & 0x80
	exponent := (m & 0x70) >> 4
	mantissa := int32(m & 0x0F)

	magnitude := ((mantissa << 3) + 0x84) << exponent
	magnitude -= 0x84
	if sign != 0 {
		return -magnitude
	}
	return magnitude
}
