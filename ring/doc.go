// Package ring decouples the realtime audio sink from the mixing work.
//
// A Buffer owns a producer goroutine that fills fixed-size packets with
// mixed audio, and a Read side meant to be called from the sink callback.
// The byte buffer has a single writer and a single reader, so only the
// wait/notify path takes the mutex; Read never blocks. When the producer
// has not kept up, Read zero-fills the remainder of the caller's buffer and
// returns immediately — an underrun is audible silence, never a stall.
//
// Pause(true) returns only once the producer is observably parked, which is
// what lets the control surface mutate source tables the producer would
// otherwise be reading.
package ring
