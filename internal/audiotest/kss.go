// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync/atomic"

	"github.com/ik5/polymix/kssplayer"
)

// FakeKSSProvider is a scripted kssplayer.Provider for tests. It records
// every player it spawns so tests can inspect emulator interactions.
type FakeKSSProvider struct {
	LoadErr error
	Players []*FakeKSSPlayer

	// StopAfterFrames, when non-zero, is copied to every new player to
	// script the silence detector.
	StopAfterFrames int64
}

func (p *FakeKSSProvider) Load(path string) (kssplayer.Cartridge, error) {
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	return &FakeKSSCartridge{Path: path}, nil
}

func (p *FakeKSSProvider) NewPlayer(rate, channels, bits int) kssplayer.Player {
	ply := &FakeKSSPlayer{
		Rate:            rate,
		Channels:        channels,
		Bits:            bits,
		DevicePans:      make(map[kssplayer.Device]int),
		ChannelPans:     make(map[[2]int]int),
		StopAfterFrames: p.StopAfterFrames,
	}
	p.Players = append(p.Players, ply)
	return ply
}

// FakeKSSCartridge stands in for a loaded KSS binary.
type FakeKSSCartridge struct {
	Path   string
	Clones int
}

func (c *FakeKSSCartridge) Clone() kssplayer.Cartridge {
	c.Clones++
	return &FakeKSSCartridge{Path: c.Path}
}

// FakeKSSPlayer renders a deterministic waveform: every sample equals the
// current track number, so tests can tell which track produced a packet.
type FakeKSSPlayer struct {
	Rate     int
	Channels int
	Bits     int

	Cart  kssplayer.Cartridge
	Track int

	Resets      []int
	Fades       []int
	SilentCalcs []int64
	DevicePans  map[kssplayer.Device]int
	ChannelPans map[[2]int]int // {device, channel} -> pan
	OPLLStereo  bool

	MasterVolume int
	SilentLimit  int

	// StopAfterFrames scripts the silence detector: once the decoded
	// length passes it, StopFlag reports StopStopped. Zero disables.
	StopAfterFrames int64

	decoded atomic.Int64
	vsync   int
}

func (p *FakeKSSPlayer) Bind(c kssplayer.Cartridge) { p.Cart = c }

func (p *FakeKSSPlayer) Reset(track, cpuSpeed int) {
	p.Track = track
	p.Resets = append(p.Resets, track)
	p.decoded.Store(0)
}

func (p *FakeKSSPlayer) Calc(buf []int16, frames int) {
	for i := 0; i < frames*p.Channels; i++ {
		buf[i] = int16(p.Track)
	}
	p.decoded.Add(int64(frames))
}

func (p *FakeKSSPlayer) CalcSilent(frames int) {
	p.SilentCalcs = append(p.SilentCalcs, int64(frames))
	p.decoded.Add(int64(frames))
}

func (p *FakeKSSPlayer) FadeStart(ms int) { p.Fades = append(p.Fades, ms) }

func (p *FakeKSSPlayer) StopFlag() kssplayer.StopFlag {
	if p.StopAfterFrames > 0 && p.decoded.Load() >= p.StopAfterFrames {
		return kssplayer.StopStopped
	}
	return kssplayer.StopNone
}

func (p *FakeKSSPlayer) SetSilentLimit(ms int)  { p.SilentLimit = ms }
func (p *FakeKSSPlayer) SetMasterVolume(v int)  { p.MasterVolume = v }
func (p *FakeKSSPlayer) SetOPLLStereo(on bool)  { p.OPLLStereo = on }
func (p *FakeKSSPlayer) DecodedLength() int64   { return p.decoded.Load() }
func (p *FakeKSSPlayer) VsyncFreq() int         { return p.vsync }
func (p *FakeKSSPlayer) SetVsyncFreq(hz int)    { p.vsync = hz }

func (p *FakeKSSPlayer) SetDevicePan(dev kssplayer.Device, pan int) {
	p.DevicePans[dev] = pan
}

func (p *FakeKSSPlayer) SetChannelPan(dev kssplayer.Device, channel, pan int) {
	p.ChannelPans[[2]int{int(dev), channel}] = pan
}
