// Package kss runs KSS chip-tune cartridges as multi-line sources.
//
// A Cartridge hosts a fixed set of lines; each line owns a private copy of
// the KSS binary and an independent emulator instance, so concurrently
// playing tracks never collide. Lines carry activation, pause, autostop and
// fade state, and the cartridge sums every active line additively into the
// mixer's accumulator.
//
// A Cartridge is not safe for concurrent use. The one exception is
// activating an inactive line, which only touches fields the producer
// ignores until the final active flip. Every other mutation of a live line
// must be synchronised with the producer; the mixer does this by pausing it
// around the call.
package kss
