package backend

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays the mix through the system's default audio device using
// github.com/ebitengine/oto/v3. Oto pulls PCM by calling Read on the
// player's source from its own audio goroutine; otoFeed adapts that pull
// into the mixer callback.
//
// Oto delivers signed 16-bit little-endian output; opening at 24 bits
// reports ErrUnsupportedBits.
type OtoSink struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	active bool
	err    error
}

// otoFeed is the io.Reader oto drains; every Read is one sink callback.
type otoFeed struct {
	cb Callback
}

func (f *otoFeed) Read(p []byte) (int, error) {
	f.cb(p)
	return len(p), nil
}

func (s *OtoSink) Open(rate, channels, bits int, cb Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		return ErrSinkOpen
	}
	if bits != 16 {
		return ErrUnsupportedBits
	}

	// a context can only be created once per process; reuse it across
	// close/open cycles
	if s.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			s.err = err
			return fmt.Errorf("backend: %w", err)
		}
		<-ready
		s.ctx = ctx
	}

	s.player = s.ctx.NewPlayer(&otoFeed{cb: cb})
	s.active = false
	s.err = nil
	return nil
}

func (s *OtoSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return ErrSinkClosed
	}
	if !s.player.IsPlaying() {
		s.player.Play()
	}
	s.active = true
	return nil
}

func (s *OtoSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return ErrSinkClosed
	}
	s.player.Pause()
	s.active = false
	return nil
}

func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	s.active = false
	if err != nil {
		s.err = err
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

func (s *OtoSink) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return StateError
	}
	if s.active {
		return StateActive
	}
	return StateInactive
}

func (s *OtoSink) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil
}
