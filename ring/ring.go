package ring

import (
	"errors"
	"sync"
	"sync/atomic"
)

// MixFunc fills dst with exactly one packet of encoded audio. dst holds
// packetFrames × frameBytes bytes. It runs on the producer goroutine.
type MixFunc func(dst []byte, frames int)

var (
	ErrBadParameters = errors.New("ring: need at least 2 packets and 1 frame")
	ErrNoMixFunc     = errors.New("ring: no mix function set")
)

// Buffer is a bounded single-producer single-consumer packet ring.
//
// read and write positions are byte offsets into buf, always advancing in
// whole packets modulo the total size. Equality means empty; the producer
// therefore never fills the last free packet, leaving packetCount−1 packets
// of usable capacity.
type Buffer struct {
	packetBytes  int
	packetFrames int
	frameBytes   int
	totalBytes   int

	buf []byte

	readPos  atomic.Int64
	writePos atomic.Int64
	// readInrange is the byte offset of a partially consumed packet.
	// Consumer-local: only Read touches it.
	readInrange int

	producerOn atomic.Bool
	paused     atomic.Bool

	mu   sync.Mutex
	cond *sync.Cond
	// idle is true while the producer is parked in the wait loop.
	// Guarded by mu.
	idle bool

	mix  MixFunc
	done chan struct{}
}

// New builds a ring of packetCount packets of packetFrames frames each.
func New(packetCount, packetFrames, frameBytes int) (*Buffer, error) {
	if packetCount < 2 || packetFrames < 1 || frameBytes < 1 {
		return nil, ErrBadParameters
	}
	b := &Buffer{
		packetBytes:  packetFrames * frameBytes,
		packetFrames: packetFrames,
		frameBytes:   frameBytes,
		totalBytes:   packetCount * packetFrames * frameBytes,
	}
	b.buf = make([]byte, b.totalBytes)
	b.cond = sync.NewCond(&b.mu)
	return b, nil
}

func (b *Buffer) PacketCount() int  { return b.totalBytes / b.packetBytes }
func (b *Buffer) PacketBytes() int  { return b.packetBytes }
func (b *Buffer) PacketFrames() int { return b.packetFrames }

// IsStarted reports whether the producer goroutine is running.
func (b *Buffer) IsStarted() bool { return b.producerOn.Load() }

// IsPaused reports whether production is suspended.
func (b *Buffer) IsPaused() bool { return b.paused.Load() }

// IsActive reports started and not paused.
func (b *Buffer) IsActive() bool { return b.producerOn.Load() && !b.paused.Load() }

// SetMixFunc assigns the producer's mix callback. Ignored while the
// producer is active.
func (b *Buffer) SetMixFunc(fn MixFunc) {
	if !b.IsActive() {
		b.mix = fn
	}
}

// Start launches the producer goroutine. A stopped buffer can be started
// again; positions reset to zero.
func (b *Buffer) Start() error {
	if b.producerOn.Load() {
		return nil
	}
	if b.mix == nil {
		return ErrNoMixFunc
	}
	b.writePos.Store(0)
	b.readPos.Store(0)
	b.readInrange = 0
	b.done = make(chan struct{})
	b.producerOn.Store(true)
	go b.produce()
	return nil
}

// Pause suspends or resumes production. Pausing blocks until the producer
// is observably idle, so on return the caller may mutate anything the mix
// function reads.
func (b *Buffer) Pause(pause bool) {
	if b.paused.Load() == pause {
		return
	}
	b.mu.Lock()
	b.paused.Store(pause)
	b.cond.Broadcast()
	if pause {
		for b.producerOn.Load() && !b.idle {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

// Stop terminates the producer goroutine and waits for it to exit.
func (b *Buffer) Stop() {
	if !b.producerOn.Load() {
		return
	}
	b.mu.Lock()
	b.producerOn.Store(false)
	b.cond.Broadcast()
	b.mu.Unlock()
	<-b.done
}

// produce is the producer loop: wait until a packet slot is free and the
// buffer is not paused, mix one packet, publish it.
func (b *Buffer) produce() {
	defer close(b.done)
	for b.producerOn.Load() {
		wp := b.writePos.Load()
		next := (wp + int64(b.packetBytes)) % int64(b.totalBytes)

		b.mu.Lock()
		for (next == b.readPos.Load() || b.paused.Load()) && b.producerOn.Load() {
			b.idle = true
			b.cond.Broadcast()
			b.cond.Wait()
		}
		b.idle = false
		if !b.producerOn.Load() {
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()

		b.mix(b.buf[wp:wp+int64(b.packetBytes)], b.packetFrames)
		b.writePos.Store(next)
	}
}

// Read copies buffered bytes into out, crossing packet boundaries as
// needed. When the ring runs dry mid-request the remainder of out is
// zero-filled and Read returns at once; it never blocks and never
// allocates, so it is safe to call from a realtime audio callback.
func (b *Buffer) Read(out []byte) {
	outCount := 0
	remaining := len(out)
	for remaining > 0 {
		rp := b.readPos.Load()
		if b.writePos.Load() == rp {
			// underrun: the sink hears silence and carries on
			zero(out[outCount:])
			return
		}

		rangeRemaining := b.packetBytes - b.readInrange
		take := rangeRemaining
		if remaining < take {
			take = remaining
		}
		cur := int(rp) + b.readInrange
		copy(out[outCount:outCount+take], b.buf[cur:cur+take])

		outCount += take
		remaining -= take
		rangeRemaining -= take

		if rangeRemaining > 0 {
			b.readInrange += take
		} else {
			b.readInrange = 0
			b.readPos.Store((rp + int64(b.packetBytes)) % int64(b.totalBytes))
			// wake the producer; Signal without the lock cannot block
			b.cond.Signal()
		}
	}
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
