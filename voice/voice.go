package voice

import "errors"

// Voice is one independent playback of a Source, producing interleaved
// samples as signed 32-bit intermediates in the mixer's output format.
type Voice interface {
	// Read produces up to frames output frames into out (which must hold
	// frames × output-channel samples) and returns the number produced.
	// A short count means the input ended; the cursor has already rewound
	// to the start, so a caller that wants looping simply reads again.
	Read(out []int32, frames int) int
	// Seek positions the cursor at an input frame, clearing any
	// fractional part.
	Seek(frame int64)
	// SeekTime positions the cursor at an offset in seconds.
	SeekTime(seconds float64)
	Close() error
}

// Source is immutable audio content from which voices are spawned.
type Source interface {
	// SetOutputFormat retargets the source to the mixer format. Voices of a
	// PCMSource follow the change; a VorbisVoice keeps the format it was
	// spawned with, so only voices spawned afterwards use the new one.
	SetOutputFormat(rate, channels, bits int) error
	// NewVoice spawns an independent voice over this source.
	NewVoice() (Voice, error)
	Close() error
}

var (
	ErrBadFormat      = errors.New("unsupported output format")
	ErrBadSource      = errors.New("source has an unsupported layout")
	ErrNotConfigured  = errors.New("source output format not set")
)
