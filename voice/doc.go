// Package voice turns loaded sources into playable voices.
//
// A Source describes immutable audio content and knows how to produce frames
// in the mixer's canonical format; a Voice is one independent playback of
// that content, owning nothing but its cursor (and, for Vorbis, a private
// decoder instance and scratch buffer). Several voices over the same source
// never share state, so the mixer can play a source polyphonically.
//
// Resampling is linear interpolation between the two nearest input frames.
// When the interpolation window would pass the last frame, a read terminates
// early and the cursor rewinds so the next read restarts from the beginning;
// whether playback actually continues is the caller's looping decision.
package voice
