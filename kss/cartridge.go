package kss

import (
	"errors"
	"fmt"

	"github.com/ik5/polymix/kssplayer"
)

// The emulator always renders 16-bit samples; 24-bit output is produced by
// shifting during accumulation.
const kssBits = 16

// Stereo image: PSG a little to the left, SCC a little to the right, OPLL
// channel pairs split across both sides (±32 on the ±128 pan scale).
const (
	psgPan = 32
	sccPan = -32
)

var ErrBadFormat = errors.New("kss: unsupported output format")

// Cartridge wraps a KSS binary as a set of parallel lines.
type Cartridge struct {
	provider kssplayer.Provider

	rate          int
	channels      int
	bits          int
	silentLimitMS int

	masterVolume int
	nextID       int64

	lines   []*Line
	scratch []int16
}

// NewCartridge builds a cartridge with lineCount lines over the loaded
// binary. silentLimitMS configures each line's autostop silence detector.
func NewCartridge(provider kssplayer.Provider, cart kssplayer.Cartridge, lineCount, rate, channels, bits, silentLimitMS int) (*Cartridge, error) {
	if cart == nil || lineCount < 1 {
		return nil, fmt.Errorf("kss: need a cartridge and at least one line")
	}
	if err := validFormat(rate, channels, bits); err != nil {
		return nil, err
	}

	c := &Cartridge{
		provider:      provider,
		rate:          rate,
		channels:      channels,
		bits:          bits,
		silentLimitMS: silentLimitMS,
		masterVolume:  60,
	}
	for i := 0; i < lineCount; i++ {
		l := &Line{forcable: true, volume: c.masterVolume}
		if i == 0 {
			l.cart = cart
		} else {
			l.cart = cart.Clone()
		}
		c.lines = append(c.lines, l)
		c.initLine(l)
	}
	return c, nil
}

func validFormat(rate, channels, bits int) error {
	if rate < 8000 || rate > 96000 || (channels != 1 && channels != 2) || (bits != 16 && bits != 24) {
		return ErrBadFormat
	}
	return nil
}

// initLine resets a line's flags and rebuilds its emulator instance,
// preserving the volume and vsync frequency of any previous instance.
func (c *Cartridge) initLine(l *Line) {
	l.active.Store(false)
	l.paused.Store(false)
	l.autostop.Store(false)
	l.forcable = true
	l.currentTrack = 0
	l.nextTrack = 0
	l.transitionFadeout = 0

	vsync := 0
	if l.ply != nil {
		vsync = l.ply.VsyncFreq()
	}

	l.ply = c.provider.NewPlayer(c.rate, c.channels, kssBits)
	l.ply.Bind(l.cart)

	if c.channels > 1 {
		l.ply.SetDevicePan(kssplayer.DevicePSG, psgPan)
		l.ply.SetDevicePan(kssplayer.DeviceSCC, sccPan)
		l.ply.SetOPLLStereo(true)
		for ch := 0; ch < 6; ch++ {
			pan := psgPan
			if ch%2 == 1 {
				pan = sccPan
			}
			l.ply.SetChannelPan(kssplayer.DeviceOPLL, ch, pan)
		}
	}

	l.ply.SetSilentLimit(c.silentLimitMS)
	l.ply.SetMasterVolume(l.volume)
	l.ply.SetVsyncFreq(vsync)
}

// SetOutputFormat retargets every line to a new mixer format. All lines are
// reinitialised; anything playing stops.
func (c *Cartridge) SetOutputFormat(rate, channels, bits int) error {
	if err := validFormat(rate, channels, bits); err != nil {
		return err
	}
	c.rate = rate
	c.channels = channels
	c.bits = bits
	for _, l := range c.lines {
		c.initLine(l)
	}
	return nil
}

// LineCount returns the number of lines in the cartridge.
func (c *Cartridge) LineCount() int { return len(c.lines) }

// activate re-arms a line on a track. The active flag is written last so a
// concurrently running producer sees the line either idle or fully
// configured.
func (c *Cartridge) activate(l *Line, track int, autostop, forcable bool, fadeoutMS int) {
	l.autostop.Store(autostop)
	l.nextTrack = track
	l.paused.Store(false)
	l.forcable = forcable
	l.id = c.nextID
	c.nextID++

	if fadeoutMS > 0 {
		l.transitionFadeout = fadeoutMS * c.rate / 1000
		l.ply.FadeStart(fadeoutMS)
	} else {
		l.transitionFadeout = 0
	}

	l.active.Store(true)
}

// ActivateLine assigns track to the first idle line and returns its 1-based
// index, 0 when every line is busy. Safe to call while the producer runs.
func (c *Cartridge) ActivateLine(track int, autostop, forcable bool) int {
	for i, l := range c.lines {
		if !l.active.Load() {
			c.activate(l, track, autostop, forcable, 0)
			return i + 1
		}
	}
	return 0
}

// ForceLine preempts the oldest forcable line (smallest activation id, ties
// by index order) and returns its 1-based index, 0 when no line is
// forcable. The caller must have synchronised with the producer.
func (c *Cartridge) ForceLine(track int, autostop, forcable bool) int {
	min := c.nextID
	idx := 0
	for i, l := range c.lines {
		if l.forcable && l.id < min {
			min = l.id
			idx = i + 1
		}
	}
	if idx != 0 {
		c.activate(c.lines[idx-1], track, autostop, forcable, 0)
	}
	return idx
}

// UpdateLine re-activates an existing line on a new track, optionally
// fading the current one out first. The caller must have synchronised with
// the producer.
func (c *Cartridge) UpdateLine(lineID, newTrack int, autostop, forcable bool, fadeoutMS int) bool {
	if lineID < 1 || lineID > len(c.lines) {
		return false
	}
	c.activate(c.lines[lineID-1], newTrack, autostop, forcable, fadeoutMS)
	return true
}

// Read renders every line additively into out, which must hold
// frames × channels values. The returned count is frames.
func (c *Cartridge) Read(out []int32, frames int) int {
	for _, l := range c.lines {
		c.readLine(out, l, frames)
	}
	return frames
}

// ReadLine renders one line additively into out and returns the number of
// frames produced (0 for an idle or paused line).
func (c *Cartridge) ReadLine(out []int32, lineID, frames int) int {
	if lineID < 1 || lineID > len(c.lines) {
		return 0
	}
	return c.readLine(out, c.lines[lineID-1], frames)
}

func (c *Cartridge) readLine(out []int32, l *Line, frames int) int {
	if !l.active.Load() {
		return 0
	}

	dataCount := frames * c.channels
	if len(c.scratch) < dataCount {
		c.scratch = make([]int16, dataCount)
	}

	produced := 0
	deactivate := false
	if !l.paused.Load() {
		// a pending track starts once any fade has run out
		if l.nextTrack != 0 && l.transitionFadeout == 0 {
			l.currentTrack = l.nextTrack
			l.nextTrack = 0
			l.ply.Reset(l.currentTrack, 0)
		}

		l.ply.Calc(c.scratch[:dataCount], frames)
		deactivate = l.autostop.Load() && l.ply.StopFlag() == kssplayer.StopStopped

		if c.bits == 16 {
			for i, v := range c.scratch[:dataCount] {
				out[i] += int32(v)
			}
		} else {
			for i, v := range c.scratch[:dataCount] {
				out[i] += int32(v) << 8
			}
		}
		produced = frames

		if l.transitionFadeout > 0 {
			if l.transitionFadeout < frames {
				l.transitionFadeout = 0
				deactivate = l.nextTrack == 0
			} else {
				l.transitionFadeout -= frames
			}
		}
	}
	if deactivate {
		l.active.Store(false)
	}
	return produced
}

// SetPause pauses or resumes one line.
func (c *Cartridge) SetPause(lineID int, pause bool) {
	if lineID < 1 || lineID > len(c.lines) {
		return
	}
	c.lines[lineID-1].paused.Store(pause)
}

// SetPauseActive pauses or resumes every active line.
func (c *Cartridge) SetPauseActive(pause bool) {
	for _, l := range c.lines {
		if l.active.Load() {
			l.paused.Store(pause)
		}
	}
}

// Stop deactivates one line.
func (c *Cartridge) Stop(lineID int) {
	if lineID < 1 || lineID > len(c.lines) {
		return
	}
	c.lines[lineID-1].active.Store(false)
}

// StopActive deactivates every active line.
func (c *Cartridge) StopActive() {
	for _, l := range c.lines {
		if l.active.Load() {
			l.active.Store(false)
		}
	}
}

// SetMasterVolume sets every line's emulator volume (0-100).
func (c *Cartridge) SetMasterVolume(volume int) {
	c.masterVolume = volume
	for _, l := range c.lines {
		l.volume = volume
		l.ply.SetMasterVolume(volume)
	}
}

// SetLineVolume overrides one line's emulator volume (0-100).
func (c *Cartridge) SetLineVolume(lineID, volume int) {
	if lineID < 1 || lineID > len(c.lines) {
		return
	}
	l := c.lines[lineID-1]
	l.volume = volume
	l.ply.SetMasterVolume(volume)
}

// SetFrequency changes the vsync frequency of every line; there is no
// cartridge-wide frequency distinct from the lines'.
func (c *Cartridge) SetFrequency(hz int) {
	for _, l := range c.lines {
		c.setLineFrequency(l, hz)
	}
}

// SetLineFrequency changes the vsync frequency of one line.
func (c *Cartridge) SetLineFrequency(lineID, hz int) {
	if lineID < 1 || lineID > len(c.lines) {
		return
	}
	c.setLineFrequency(c.lines[lineID-1], hz)
}

// setLineFrequency applies a vsync change. An idle line just stores the new
// value. A live line is reset on its current track and advanced silently to
// a position recomputed with an empirically tuned correction that keeps
// 50 Hz ↔ 60 Hz transitions inaudible.
func (c *Cartridge) setLineFrequency(l *Line, hz int) {
	if hz <= 0 {
		return
	}
	if !l.active.Load() {
		l.ply.SetVsyncFreq(hz)
		return
	}

	oldHz := l.ply.VsyncFreq()
	length := float64(l.ply.DecodedLength())
	position := 0
	if oldHz > 0 {
		fo := float64(oldHz)
		fn := float64(hz)
		position = int(length * fo * (1024 + (fo-fn)*0.3667) / (fn * 1024))
	}
	l.ply.SetVsyncFreq(hz)
	l.ply.Reset(l.currentTrack, 0)
	if position > 0 {
		l.ply.CalcSilent(position)
	}
}

// PlaytimeMillis returns how long a line has been playing its track.
func (c *Cartridge) PlaytimeMillis(lineID int) int {
	if c.rate == 0 || lineID < 1 || lineID > len(c.lines) {
		return 0
	}
	return int(c.lines[lineID-1].ply.DecodedLength() * 1000 / int64(c.rate))
}

// ActiveLines counts the lines currently active.
func (c *Cartridge) ActiveLines() int {
	n := 0
	for _, l := range c.lines {
		if l.active.Load() {
			n++
		}
	}
	return n
}

// Lines returns a snapshot of every line for introspection.
func (c *Cartridge) Lines() []LineSnapshot {
	out := make([]LineSnapshot, len(c.lines))
	for i, l := range c.lines {
		out[i] = LineSnapshot{
			ID:            l.id,
			Active:        l.active.Load(),
			Paused:        l.paused.Load(),
			Autostop:      l.autostop.Load(),
			Forcable:      l.forcable,
			CurrentTrack:  l.currentTrack,
			NextTrack:     l.nextTrack,
			FadeRemaining: l.transitionFadeout,
		}
	}
	return out
}
