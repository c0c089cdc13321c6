package mixer

import (
	"io"
	"log"
	"sync/atomic"

	"github.com/ik5/polymix/backend"
	"github.com/ik5/polymix/kss"
	"github.com/ik5/polymix/kssplayer"
	"github.com/ik5/polymix/ring"
	"github.com/ik5/polymix/voice"
)

// Default format and ring geometry, matching roughly 100 ms of latency.
const (
	defaultRate          = 44100
	defaultBits          = 16
	defaultVoiceCapacity = 6
	defaultPacketCount   = 5

	defaultMasterVolume = 128
)

// channel is one slot of the voice table. The flags are atomic because the
// control thread and the producer observe them without locks; everything
// else is guarded by the activation protocol (the control thread writes
// active last, and only the producer clears it while the sink runs).
type channel struct {
	active  atomic.Bool
	stopped atomic.Bool
	paused  atomic.Bool
	loop    atomic.Bool

	sid   int32
	voice voice.Voice
}

// Mixer is the engine. See the package documentation for the threading
// rules; the zero value is not usable, construct with New.
type Mixer struct {
	sink        backend.Sink
	kssProvider kssplayer.Provider
	logger      *log.Logger

	rate     int
	channels int
	bits     int

	table      []*channel
	sources    []voice.Source
	cartridges []*kss.Cartridge

	buffer *ring.Buffer
	// producer-private mixing state
	accumulator []int32
	scratch     []int32
	encode      func(dst []byte)

	masterVolume atomic.Int32
}

// New builds a mixer over the given sink with the default format (44.1 kHz
// stereo 16-bit, 6 voices). Call SetFormat before starting to change it.
func New(sink backend.Sink) *Mixer {
	m := &Mixer{
		sink:   sink,
		logger: log.New(io.Discard, "", 0),
	}
	m.masterVolume.Store(defaultMasterVolume)
	// the defaults are always valid
	_ = m.SetFormat(defaultRate, true, defaultBits, defaultVoiceCapacity)
	return m
}

// SetKSSProvider configures the emulator backend used by AddSourceKSS.
func (m *Mixer) SetKSSProvider(p kssplayer.Provider) { m.kssProvider = p }

// SetLogger routes diagnostics for failures that the control calls report
// only as a 0 or -1 handle (source load and voice spawn errors) to l. The
// default discards them.
func (m *Mixer) SetLogger(l *log.Logger) {
	if l != nil {
		m.logger = l
	}
}

// SetFormat fixes the mix format and rebuilds the voice table. Only
// allowed while the sink is closed. Every registered source is retargeted
// to the new format.
func (m *Mixer) SetFormat(rate int, stereo bool, bits, voiceCapacity int) error {
	if m.sink != nil && m.sink.IsOpen() {
		return ErrInvalidFormat
	}
	if rate < 8000 || rate > 96000 || (bits != 16 && bits != 24) || voiceCapacity < 1 {
		return ErrInvalidFormat
	}

	m.rate = rate
	m.channels = 1
	if stereo {
		m.channels = 2
	}
	m.bits = bits

	m.table = make([]*channel, voiceCapacity)
	for i := range m.table {
		m.table[i] = &channel{}
	}

	for _, src := range m.sources {
		if src == nil {
			continue
		}
		if err := src.SetOutputFormat(m.rate, m.channels, m.bits); err != nil {
			return err
		}
	}
	for _, c := range m.cartridges {
		if c == nil {
			continue
		}
		if err := c.SetOutputFormat(m.rate, m.channels, m.bits); err != nil {
			return err
		}
	}

	if bits == 16 {
		m.encode = m.encode16
	} else {
		m.encode = m.encode24
	}

	packetCount, packetFrames := 0, 0
	if m.buffer != nil {
		packetCount = m.buffer.PacketCount()
		packetFrames = m.buffer.PacketFrames()
	}
	return m.SetBufferParameters(packetCount, packetFrames)
}

// SetBufferParameters rebuilds the packet ring. Zero arguments select the
// defaults: 5 packets of rate/50 frames, about 100 ms of total latency.
// Only allowed while the sink is closed.
func (m *Mixer) SetBufferParameters(packetCount, packetFrames int) error {
	if m.sink != nil && m.sink.IsOpen() {
		return ErrSinkOpen
	}
	if packetCount == 0 {
		packetCount = defaultPacketCount
	}
	if packetFrames == 0 {
		packetFrames = 100 * m.rate / (defaultPacketCount * 1000)
	}

	buf, err := ring.New(packetCount, packetFrames, m.frameBytes())
	if err != nil {
		return err
	}
	m.buffer = buf
	m.accumulator = make([]int32, packetFrames*m.channels)
	m.scratch = make([]int32, packetFrames*m.channels)
	m.buffer.SetMixFunc(m.mix)
	return nil
}

func (m *Mixer) frameBytes() int { return m.channels * m.bits / 8 }

// StartStopMixer opens the sink and launches the producer, or tears both
// down. Idempotent in both directions.
func (m *Mixer) StartStopMixer(start bool) error {
	if start {
		if m.sink.IsOpen() {
			return nil
		}
		if err := m.sink.Open(m.rate, m.channels, m.bits, m.buffer.Read); err != nil {
			return err
		}
		if err := m.buffer.Start(); err != nil {
			m.sink.Close()
			return err
		}
		return m.sink.Start()
	}

	if m.sink.IsOpen() {
		m.sink.Stop()
		m.sink.Close()
	}
	m.buffer.Stop()
	return nil
}

// PauseResumeMixer pauses or resumes the sink without closing it. With no
// open sink it reports the requested state back, mirroring the fact that a
// stopped mixer is trivially "paused".
func (m *Mixer) PauseResumeMixer(pause bool) bool {
	if !m.sink.IsOpen() {
		return pause
	}
	if pause {
		return m.sink.Stop() == nil
	}
	return m.sink.Start() == nil
}

// GetMixerStatus derives the aggregate state from the sink.
func (m *Mixer) GetMixerStatus() Status {
	if !m.sink.IsOpen() {
		return StatusStopped
	}
	switch m.sink.State() {
	case backend.StateError:
		return StatusError
	case backend.StateActive:
		return StatusRunning
	}
	return StatusPaused
}

// ActiveVoices counts the voice slots currently active.
func (m *Mixer) ActiveVoices() int {
	n := 0
	for _, c := range m.table {
		if c.active.Load() {
			n++
		}
	}
	return n
}

// SetMasterVolume sets the output gain, 0-255 where 128 is unity.
func (m *Mixer) SetMasterVolume(v int) {
	m.masterVolume.Store(int32(v & 0xFF))
}

// PauseProducer suspends or resumes the producer directly. Pausing blocks
// until the producer is idle; the control surface uses this around every
// mutation of state the mix loop reads.
func (m *Mixer) PauseProducer(pause bool) {
	if m.buffer != nil {
		m.buffer.Pause(pause)
	}
}

// withProducerPaused runs fn with the producer parked, restoring it
// afterwards even if fn panics.
func (m *Mixer) withProducerPaused(fn func()) {
	resume := m.buffer != nil && m.buffer.IsActive()
	if resume {
		m.buffer.Pause(true)
		defer m.buffer.Pause(false)
	}
	fn()
}
