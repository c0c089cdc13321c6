// Package loader reads the on-disk formats the mixer accepts and hands the
// result to the voice layer in a decode-ready shape.
//
// WAVE files are parsed with github.com/go-audio/wav; the data chunk is kept
// as the raw byte blob so the per-voice decoders can address individual
// sample frames without an up-front conversion pass. Ogg Vorbis files are
// wrapped as a pull-based 16-bit little-endian stream over
// github.com/jfreymuth/oggvorbis so every voice can hold its own decoder
// instance and seek independently.
package loader
