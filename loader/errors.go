package loader

import "errors"

var (
	ErrNotWave           = errors.New("not a RIFF/WAVE file")
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrNotVorbis         = errors.New("not an Ogg Vorbis file")
)
