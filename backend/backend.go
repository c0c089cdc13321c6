// Package backend binds the mixer to a host audio output.
//
// A Sink owns the realtime delivery of mixed bytes: the mixer opens it with
// a callback that drains the ring buffer, and the sink invokes that
// callback from whatever thread the host audio layer uses. The callback
// contract is strict: it must fill the whole slice and may not block.
//
// OtoSink plays through github.com/ebitengine/oto/v3. NullSink is a
// headless stand-in whose callback is driven manually, used by tests and
// offline rendering.
package backend

import "errors"

// State is the sink's liveness report.
type State int

const (
	StateInactive State = iota
	StateActive
	StateError
)

// Callback fills out with exactly len(out) bytes of interleaved PCM in the
// format the sink was opened with. It runs on the sink's audio thread and
// must not block or allocate.
type Callback func(out []byte)

// Sink is the host audio backend contract.
type Sink interface {
	// Open prepares a stream for the given format. bits is 16 or 24.
	Open(rate, channels, bits int, cb Callback) error
	// Start begins (or resumes) pulling audio through the callback.
	Start() error
	// Stop pauses pulling without releasing the stream.
	Stop() error
	// Close releases the stream. Open may be called again afterwards.
	Close() error
	State() State
	IsOpen() bool
}

var (
	ErrSinkOpen        = errors.New("backend: sink already open")
	ErrSinkClosed      = errors.New("backend: sink not open")
	ErrUnsupportedBits = errors.New("backend: unsupported bit depth")
)
