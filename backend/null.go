package backend

import "sync"

// NullSink is a backend with no audio device behind it. Output is produced
// only when the owner calls Pull, which makes packet timing fully
// deterministic; tests and offline rendering drive it tick by tick.
type NullSink struct {
	mu     sync.Mutex
	cb     Callback
	open   bool
	active bool

	frameBytes int
}

func (s *NullSink) Open(rate, channels, bits int, cb Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return ErrSinkOpen
	}
	if bits != 16 && bits != 24 {
		return ErrUnsupportedBits
	}
	s.cb = cb
	s.open = true
	s.active = false
	s.frameBytes = channels * bits / 8
	return nil
}

func (s *NullSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrSinkClosed
	}
	s.active = true
	return nil
}

func (s *NullSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrSinkClosed
	}
	s.active = false
	return nil
}

func (s *NullSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.active = false
	s.cb = nil
	return nil
}

func (s *NullSink) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return StateActive
	}
	return StateInactive
}

func (s *NullSink) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// FrameBytes returns the byte size of one output frame in the opened
// format.
func (s *NullSink) FrameBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameBytes
}

// Pull invokes the callback for frames output frames and returns the
// bytes, or nil when the sink is not running.
func (s *NullSink) Pull(frames int) []byte {
	s.mu.Lock()
	cb, ok := s.cb, s.open && s.active
	frameBytes := s.frameBytes
	s.mu.Unlock()
	if !ok || cb == nil {
		return nil
	}
	out := make([]byte, frames*frameBytes)
	cb(out)
	return out
}
