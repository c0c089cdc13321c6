// Package sample provides the pure per-frame decoders that turn one input
// sample (one channel, one frame) into a signed 32-bit intermediate value at
// a chosen output bit depth (16 or 24).
//
// Decoders never allocate and never look past the bytes handed to them;
// callers own buffering, resampling and channel mapping. A Decoder is
// selected once, at format-negotiation time, via Select, and then called
// once per input sample for the lifetime of a voice.
//
//	dec, frameBytes, err := sample.Select(sample.Signed, 2, 16)
//	v := dec(frame) // frame is frameBytes long
package sample
