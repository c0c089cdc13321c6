package mixer

import (
	"github.com/ik5/polymix/kss"
	"github.com/ik5/polymix/loader"
	"github.com/ik5/polymix/voice"
)

// AddSource registers a WAVE or Ogg Vorbis file and returns its handle, or
// 0 when the file cannot be loaded. The file is sniffed as WAVE first and
// tried as Vorbis otherwise.
func (m *Mixer) AddSource(path string) int {
	var src voice.Source

	if loader.SniffWave(path) {
		wd, err := loader.LoadWave(path)
		if err != nil {
			m.logger.Printf("add source %s: %v", path, err)
			return 0
		}
		s, err := voice.NewPCMSource(wd)
		if err != nil {
			m.logger.Printf("add source %s: %v", path, err)
			return 0
		}
		src = s
	} else {
		s, err := voice.NewVorbisSource(path)
		if err != nil {
			m.logger.Printf("add source %s: %v", path, err)
			return 0
		}
		src = s
	}

	if err := src.SetOutputFormat(m.rate, m.channels, m.bits); err != nil {
		m.logger.Printf("add source %s: %v", path, err)
		return 0
	}

	for i, s := range m.sources {
		if s == nil {
			m.sources[i] = src
			return i + 1
		}
	}
	m.sources = append(m.sources, src)
	return len(m.sources)
}

// AddSourceKSS registers a KSS cartridge with the given number of parallel
// lines and autostop silence limit, returning its handle or -1 on failure.
// The producer is paused across the insertion.
func (m *Mixer) AddSourceKSS(path string, lines, silentLimitMS int) int {
	if lines <= 0 || m.kssProvider == nil {
		return -1
	}

	bin, err := m.kssProvider.Load(path)
	if err != nil {
		m.logger.Printf("add KSS source %s: %v", path, err)
		return -1
	}
	cartridge, err := kss.NewCartridge(m.kssProvider, bin, lines, m.rate, m.channels, m.bits, silentLimitMS)
	if err != nil {
		m.logger.Printf("add KSS source %s: %v", path, err)
		return -1
	}

	id := 0
	m.withProducerPaused(func() {
		for i, c := range m.cartridges {
			if c == nil {
				m.cartridges[i] = cartridge
				id = i + 1
				return
			}
		}
		m.cartridges = append(m.cartridges, cartridge)
		id = len(m.cartridges)
	})
	return kssSourceID(id)
}

// DropSource releases a source (or, with handle 0, every source) after
// detaching all channels that reference it. Safe to call at any time; the
// producer is paused across the mutation.
func (m *Mixer) DropSource(handle int) bool {
	dropped := false
	m.withProducerPaused(func() {
		switch {
		case handle == 0:
			for _, c := range m.table {
				m.detachChannel(c)
			}
			for i, s := range m.sources {
				if s != nil {
					s.Close()
					m.sources[i] = nil
				}
			}
			for i := range m.cartridges {
				m.cartridges[i] = nil
			}
			dropped = true

		case sourceType(handle) == sourceTypeKSS:
			id := untypedSourceID(handle)
			if id >= 1 && id <= len(m.cartridges) && m.cartridges[id-1] != nil {
				m.cartridges[id-1] = nil
				dropped = true
			}

		default:
			sid := sourceID(handle)
			if sid < 1 || sid > len(m.sources) || m.sources[sid-1] == nil {
				return
			}
			for _, c := range m.table {
				if int(c.sid) == sid {
					m.detachChannel(c)
				}
			}
			m.sources[sid-1].Close()
			m.sources[sid-1] = nil
			dropped = true
		}
	})
	return dropped
}

// detachChannel force-clears a slot. Only called with the producer parked.
func (m *Mixer) detachChannel(c *channel) {
	c.active.Store(false)
	c.paused.Store(false)
	c.loop.Store(false)
	if c.voice != nil {
		c.voice.Close()
		c.voice = nil
	}
	c.sid = 0
}
