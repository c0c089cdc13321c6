package ring

import (
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestNew_Validates(t *testing.T) {
	t.Parallel()

	if _, err := New(1, 10, 4); err != ErrBadParameters {
		t.Errorf("New(1 packet) error = %v, want ErrBadParameters", err)
	}
	if _, err := New(5, 0, 4); err != ErrBadParameters {
		t.Errorf("New(0 frames) error = %v, want ErrBadParameters", err)
	}
	b, err := New(5, 100, 4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.PacketCount() != 5 || b.PacketBytes() != 400 || b.PacketFrames() != 100 {
		t.Errorf("geometry = %d/%d/%d, want 5/400/100",
			b.PacketCount(), b.PacketBytes(), b.PacketFrames())
	}
}

func TestStart_RequiresMixFunc(t *testing.T) {
	t.Parallel()

	b, _ := New(3, 4, 1)
	if err := b.Start(); err != ErrNoMixFunc {
		t.Errorf("Start() error = %v, want ErrNoMixFunc", err)
	}
}

func TestRead_EmptyRingZeroFills(t *testing.T) {
	t.Parallel()

	b, _ := New(3, 4, 1)
	out := []byte{0xAA, 0xBB, 0xCC}
	b.Read(out)
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %#x, want 0 (underrun silence)", i, v)
		}
	}
}

// TestProducerFillsWithoutOverwrite drives the producer until it parks and
// checks that at most packetCount−1 packets are in flight.
func TestProducerFillsWithoutOverwrite(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int64
	b, _ := New(4, 2, 1) // packets of 2 bytes, 8 bytes total
	b.SetMixFunc(func(dst []byte, frames int) {
		n := byte(ticks.Add(1))
		for i := range dst {
			dst[i] = n
		}
	})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	// the producer can buffer exactly 3 packets before it must wait
	waitFor(t, func() bool { return ticks.Load() == 3 })
	time.Sleep(10 * time.Millisecond)
	if got := ticks.Load(); got != 3 {
		t.Fatalf("producer ran %d ticks against a full ring, want 3", got)
	}

	// consuming one packet frees exactly one slot
	out := make([]byte, 2)
	b.Read(out)
	if out[0] != 1 || out[1] != 1 {
		t.Errorf("first packet = %v, want [1 1]", out)
	}
	waitFor(t, func() bool { return ticks.Load() == 4 })
}

// TestReadCrossesPacketBoundaries consumes in odd-sized chunks and expects
// the packet sequence byte-exact.
func TestReadCrossesPacketBoundaries(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int64
	b, _ := New(3, 4, 1)
	b.SetMixFunc(func(dst []byte, frames int) {
		n := byte(ticks.Add(1))
		for i := range dst {
			dst[i] = n
		}
	})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	waitFor(t, func() bool { return ticks.Load() == 2 })

	// 8 buffered bytes: [1 1 1 1 2 2 2 2]; read 3+5
	got := make([]byte, 0, 8)
	chunk := make([]byte, 3)
	b.Read(chunk)
	got = append(got, chunk...)

	waitFor(t, func() bool { return ticks.Load() >= 2 })
	chunk5 := make([]byte, 5)
	b.Read(chunk5)
	got = append(got, chunk5...)

	want := []byte{1, 1, 1, 1, 2, 2, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d (got %v)", i, got[i], want[i], got)
		}
	}
}

// TestPauseParksProducer verifies the pause protocol: once Pause(true)
// returns, the mix function is guaranteed not to run until resume. One
// packet is consumed while paused so that a free slot exists and only the
// pause keeps the producer parked.
func TestPauseParksProducer(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int64
	b, _ := New(8, 2, 1)
	b.SetMixFunc(func(dst []byte, frames int) {
		ticks.Add(1)
	})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	waitFor(t, func() bool { return ticks.Load() >= 1 })
	b.Pause(true)
	if !b.IsPaused() || b.IsActive() {
		t.Error("buffer not reporting paused state")
	}
	b.Read(make([]byte, 2))

	before := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != before {
		t.Fatalf("producer mixed %d ticks while paused", got-before)
	}

	b.Pause(false)
	waitFor(t, func() bool { return ticks.Load() > before })
}

func TestPauseWhileRingFull(t *testing.T) {
	t.Parallel()

	var ticks atomic.Int64
	b, _ := New(2, 2, 1) // capacity one packet: fills immediately
	b.SetMixFunc(func(dst []byte, frames int) { ticks.Add(1) })
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	waitFor(t, func() bool { return ticks.Load() == 1 })

	// the producer is parked on a full ring; pausing must not deadlock
	b.Pause(true)
	b.Pause(false)

	// drain one packet so the producer runs again
	out := make([]byte, 2)
	b.Read(out)
	waitFor(t, func() bool { return ticks.Load() == 2 })
}

func TestStopJoinsProducer(t *testing.T) {
	t.Parallel()

	b, _ := New(3, 2, 1)
	b.SetMixFunc(func(dst []byte, frames int) {})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	b.Stop()
	if b.IsStarted() {
		t.Error("IsStarted() = true after Stop()")
	}

	// restart works and resets positions
	if err := b.Start(); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	b.Stop()
}

func TestStopWhileParkedOnFullRing(t *testing.T) {
	t.Parallel()

	b, _ := New(2, 2, 1)
	b.SetMixFunc(func(dst []byte, frames int) {})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// give the producer time to park, then stop; must not hang
	time.Sleep(5 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() hung on a parked producer")
	}
}
