// Package kssplayer declares the contract between the mixer and a KSS
// chip-tune emulator.
//
// The mixer does not emulate MSX sound hardware itself; it drives any
// emulator that can be expressed through these interfaces. An embedder
// supplies a Provider (typically a cgo binding or a pure-Go emulator) and
// the kss package builds its multi-line cartridges on top of it. Tests run
// against a scripted fake.
package kssplayer

// Device identifies one emulated sound chip for pan and volume control.
type Device int

const (
	DevicePSG Device = iota
	DeviceSCC
	DeviceOPL
	DeviceOPLL
)

// StopFlag is the emulator's end-of-track report.
type StopFlag int

const (
	// StopNone means the track is still producing audible output.
	StopNone StopFlag = iota
	// StopStopped means silence exceeded the configured silent limit.
	StopStopped
)

// Cartridge is a loaded KSS binary. Clone returns a bit-identical copy with
// independent ownership, so parallel players never share mutable state.
type Cartridge interface {
	Clone() Cartridge
}

// Player is one emulator instance producing interleaved signed 16-bit
// samples. A Player is single-threaded; callers serialize access.
//
// Pan values use a signed ±128 scale where positive values move the device
// towards the left channel and 0 is centre.
type Player interface {
	// Bind attaches the cartridge the player will execute.
	Bind(c Cartridge)
	// Reset restarts playback at the given track. cpuSpeed 0 selects the
	// emulator's automatic clock.
	Reset(track, cpuSpeed int)
	// Calc renders frames output frames into buf, which must hold
	// frames × channel samples.
	Calc(buf []int16, frames int)
	// CalcSilent advances the emulation by frames without rendering.
	CalcSilent(frames int)
	// FadeStart begins the emulator's internal amplitude ramp to zero.
	FadeStart(ms int)
	// StopFlag reports whether the silence detector has tripped.
	StopFlag() StopFlag
	// SetSilentLimit configures the silence detector threshold.
	SetSilentLimit(ms int)
	// SetMasterVolume sets the emulator volume, 0-100.
	SetMasterVolume(v int)
	SetDevicePan(dev Device, pan int)
	SetChannelPan(dev Device, channel, pan int)
	// SetOPLLStereo toggles the OPLL's two-channel output mode.
	SetOPLLStereo(on bool)
	// DecodedLength is the total number of frames rendered since the last
	// Reset, silent rendering included.
	DecodedLength() int64
	VsyncFreq() int
	SetVsyncFreq(hz int)
}

// Provider loads KSS binaries and spawns emulator instances.
type Provider interface {
	Load(path string) (Cartridge, error)
	NewPlayer(rate, channels, bits int) Player
}
