package mixer

import (
	"testing"
	"time"

	"github.com/ik5/polymix/backend"
	"github.com/ik5/polymix/internal/audiotest"
)

func kssMixer(t *testing.T, lines int) (*Mixer, *backend.NullSink, *audiotest.FakeKSSProvider, int) {
	t.Helper()

	sink := &backend.NullSink{}
	m := New(sink)
	provider := &audiotest.FakeKSSProvider{}
	m.SetKSSProvider(provider)

	h := m.AddSourceKSS("game.kss", lines, 500)
	if h <= 0 {
		t.Fatalf("AddSourceKSS() = %d, want a handle", h)
	}
	return m, sink, provider, h
}

func TestAddSourceKSS(t *testing.T) {
	t.Parallel()

	m, _, _, h := kssMixer(t, 2)

	if sourceType(h) != sourceTypeKSS {
		t.Errorf("handle type = %d, want KSS", sourceType(h))
	}
	if got := m.GetKSSActiveLinesCount(h); got != 0 {
		t.Errorf("active lines on a fresh cartridge = %d, want 0", got)
	}

	// refused without a provider or with bad line counts
	bare := New(&backend.NullSink{})
	if got := bare.AddSourceKSS("game.kss", 1, 500); got != -1 {
		t.Errorf("AddSourceKSS() without provider = %d, want -1", got)
	}
	if got := m.AddSourceKSS("game.kss", 0, 500); got != -1 {
		t.Errorf("AddSourceKSS(0 lines) = %d, want -1", got)
	}
}

// TestForceKSSTrack is scenario S4: with a single line, the second play
// fails politely and force preempts.
func TestForceKSSTrack(t *testing.T) {
	t.Parallel()

	m, sink, provider, h := kssMixer(t, 1)
	if err := m.StartStopMixer(true); err != nil {
		t.Fatalf("StartStopMixer(true) error = %v", err)
	}
	defer m.StartStopMixer(false)

	p1 := m.PlayKSSTrack(h, 1, true, true, false)
	if p1 == 0 {
		t.Fatal("PlayKSSTrack(track 1) = 0")
	}
	if got := m.GetKSSActiveLinesCount(h); got != 1 {
		t.Fatalf("active lines = %d, want 1", got)
	}

	if got := m.PlayKSSTrack(h, 2, true, true, false); got != 0 {
		t.Fatalf("PlayKSSTrack(track 2, no force) = %d, want 0", got)
	}

	p2 := m.PlayKSSTrack(h, 2, true, true, true)
	if p2 == 0 {
		t.Fatal("PlayKSSTrack(track 2, force) = 0")
	}
	if channelID(p2) != 1 {
		t.Errorf("forced line = %d, want 1", channelID(p2))
	}

	// the fake emulator emits the track number as every sample: packets
	// buffered before the force carry 1, later ones carry 2, and no
	// packet may mix the two or show any third value
	deadline := time.Now().Add(2 * time.Second)
	sawTrack2 := false
	for !sawTrack2 && time.Now().Before(deadline) {
		b := sink.Pull(882)
		if b == nil || allZero(b) {
			time.Sleep(time.Millisecond)
			continue
		}
		first := sample16(b, 0)
		if first != 1 && first != 2 {
			t.Fatalf("packet carries track %d, want 1 or 2", first)
		}
		for i := 0; i < len(b)/2; i++ {
			if got := sample16(b, i); got != first {
				t.Fatalf("packet mixes tracks: sample %d = %d, packet started with %d", i, got, first)
			}
		}
		sawTrack2 = first == 2
	}
	if !sawTrack2 {
		t.Fatal("track 2 never reached the output after force")
	}

	m.PauseProducer(true)
	if got := provider.Players[0].Track; got != 2 {
		t.Errorf("emulator track = %d, want 2", got)
	}
	m.PauseProducer(false)
}

func TestUpdateKSSTrack(t *testing.T) {
	t.Parallel()

	m, _, provider, h := kssMixer(t, 1)

	play := m.PlayKSSTrack(h, 3, true, true, false)
	if play == 0 {
		t.Fatal("PlayKSSTrack() = 0")
	}

	if !m.UpdateKSSTrack(play, 4, true, true, 25) {
		t.Fatal("UpdateKSSTrack() = false")
	}
	if got := provider.Players[0].Fades; len(got) != 1 || got[0] != 25 {
		t.Errorf("fades = %v, want [25]", got)
	}

	// a cartridge-level handle is not a line
	if m.UpdateKSSTrack(h, 5, true, true, 0) {
		t.Error("UpdateKSSTrack() accepted a handle with no line")
	}
	// and an unknown cartridge is ignored
	if m.UpdateKSSTrack(makeHandle(kssSourceID(9), 1), 5, true, true, 0) {
		t.Error("UpdateKSSTrack() accepted an unknown cartridge")
	}
}

func TestUpdateKSSVolume(t *testing.T) {
	t.Parallel()

	m, _, provider, h := kssMixer(t, 2)

	if !m.UpdateKSSVolume(h, 70) {
		t.Fatal("UpdateKSSVolume(cartridge) = false")
	}
	for i, p := range provider.Players {
		if p.MasterVolume != 70 {
			t.Errorf("player %d volume = %d, want 70", i, p.MasterVolume)
		}
	}

	line2 := makeHandle(sourceID(h), 2)
	if !m.UpdateKSSVolume(line2, 35) {
		t.Fatal("UpdateKSSVolume(line) = false")
	}
	if provider.Players[1].MasterVolume != 35 {
		t.Errorf("line 2 volume = %d, want 35", provider.Players[1].MasterVolume)
	}
	if provider.Players[0].MasterVolume != 70 {
		t.Errorf("line 1 volume = %d, want 70", provider.Players[0].MasterVolume)
	}
}

func TestUpdateKSSFrequency(t *testing.T) {
	t.Parallel()

	m, _, provider, h := kssMixer(t, 2)

	if !m.UpdateKSSFrequency(h, 50) {
		t.Fatal("UpdateKSSFrequency(cartridge) = false")
	}
	for i, p := range provider.Players {
		if p.VsyncFreq() != 50 {
			t.Errorf("player %d vsync = %d, want 50", i, p.VsyncFreq())
		}
	}

	// handle 0 addresses every cartridge
	if !m.UpdateKSSFrequency(0, 60) {
		t.Fatal("UpdateKSSFrequency(0) = false")
	}
	for i, p := range provider.Players {
		if p.VsyncFreq() != 60 {
			t.Errorf("player %d vsync = %d, want 60", i, p.VsyncFreq())
		}
	}
}

func TestKSSPlaytimeAndStop(t *testing.T) {
	t.Parallel()

	m, sink, _, h := kssMixer(t, 1)
	if err := m.StartStopMixer(true); err != nil {
		t.Fatalf("StartStopMixer(true) error = %v", err)
	}
	defer m.StartStopMixer(false)

	play := m.PlayKSSTrack(h, 1, false, true, false)
	if play == 0 {
		t.Fatal("PlayKSSTrack() = 0")
	}
	pullNonSilent(t, sink, 882)

	if got := m.GetKSSPlaytimeMillis(play); got <= 0 {
		t.Errorf("GetKSSPlaytimeMillis() = %d, want > 0", got)
	}

	m.StopPlayback(play)
	if got := m.GetKSSActiveLinesCount(h); got != 0 {
		t.Errorf("active lines after stop = %d, want 0", got)
	}
}

func TestStopPlaybackWildcardReachesKSS(t *testing.T) {
	t.Parallel()

	m, _, _, h := kssMixer(t, 2)
	m.PlayKSSTrack(h, 1, true, true, false)
	m.PlayKSSTrack(h, 2, true, true, false)

	m.StopPlayback(0)
	if got := m.GetKSSActiveLinesCount(h); got != 0 {
		t.Errorf("active lines after StopPlayback(0) = %d, want 0", got)
	}
}

func TestPauseResumeKSSLine(t *testing.T) {
	t.Parallel()

	m, _, _, h := kssMixer(t, 1)
	play := m.PlayKSSTrack(h, 1, false, true, false)

	m.PauseResumePlayback(play, true)
	// an activated-then-paused line stays active but silent; the count
	// still reports it
	if got := m.GetKSSActiveLinesCount(h); got != 1 {
		t.Errorf("active lines while paused = %d, want 1", got)
	}
	m.PauseResumePlayback(play, false)
}

func TestDropSourceKSS(t *testing.T) {
	t.Parallel()

	m, _, _, h := kssMixer(t, 1)
	if !m.DropSource(h) {
		t.Fatal("DropSource(kss) = false")
	}
	if m.DropSource(h) {
		t.Error("DropSource(kss) twice = true, want false")
	}
	if got := m.PlayKSSTrack(h, 1, true, true, false); got != 0 {
		t.Errorf("PlayKSSTrack() on a dropped cartridge = %d, want 0", got)
	}
}
