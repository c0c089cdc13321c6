package kss

import (
	"sync/atomic"

	"github.com/ik5/polymix/kssplayer"
)

// Line is one voice slot inside a cartridge. The activation id is a
// monotonic sequence number used to rank line age when forcing; 64 bits so
// wraparound is not a practical concern.
type Line struct {
	id int64

	active   atomic.Bool
	paused   atomic.Bool
	autostop atomic.Bool
	forcable bool

	currentTrack int
	nextTrack    int
	// transitionFadeout counts output frames until the fade completes.
	transitionFadeout int

	// volume is the line's emulator volume (0-100), remembered here so it
	// survives emulator reinitialisation on format changes.
	volume int

	cart kssplayer.Cartridge
	ply  kssplayer.Player
}

// Active reports whether the line is currently playing or fading.
func (l *Line) Active() bool { return l.active.Load() }

// Paused reports whether the line is silenced without state advance.
func (l *Line) Paused() bool { return l.paused.Load() }

// LineSnapshot is a copy of one line's state for introspection; it carries
// no references into the live cartridge.
type LineSnapshot struct {
	ID            int64
	Active        bool
	Paused        bool
	Autostop      bool
	Forcable      bool
	CurrentTrack  int
	NextTrack     int
	FadeRemaining int
}
