package mixer

// mix produces one packet: sum every active voice and cartridge into the
// accumulator, apply the master gain, encode into dst. Runs on the
// producer goroutine only.
func (m *Mixer) mix(dst []byte, frames int) {
	for i := range m.accumulator {
		m.accumulator[i] = 0
	}

	for _, c := range m.table {
		if !c.active.Load() {
			continue
		}

		deactivate := false
		produced := 0
		if c.stopped.Load() || c.voice == nil {
			deactivate = true
		} else if !c.paused.Load() {
			produced = c.voice.Read(m.scratch, frames)
			if c.loop.Load() {
				// the voice rewound at EOF; keep pulling until the
				// packet is full. A voice that cannot produce at all
				// ends the loop instead of spinning.
				for produced < frames {
					n := c.voice.Read(m.scratch[produced*m.channels:], frames-produced)
					if n == 0 {
						break
					}
					produced += n
				}
			}
			for i := 0; i < produced*m.channels; i++ {
				m.accumulator[i] += m.scratch[i]
			}
			if produced < frames {
				deactivate = true
			}
		}

		if deactivate {
			c.stopped.Store(true)
			c.active.Store(false)
		}
	}

	for _, cart := range m.cartridges {
		if cart != nil {
			cart.Read(m.accumulator, frames)
		}
	}

	// master gain: 0-255, 128 is unity
	vol := int64(m.masterVolume.Load())
	if vol != defaultMasterVolume {
		for i, v := range m.accumulator {
			m.accumulator[i] = int32((int64(v) * vol) >> 7)
		}
	}

	m.encode(dst)
}

// encode16 writes the accumulator as 16-bit little-endian, saturating
// instead of wrapping on overflow.
func (m *Mixer) encode16(dst []byte) {
	j := 0
	for _, v := range m.accumulator {
		if v > 0x7FFF {
			v = 0x7FFF
		} else if v < -0x8000 {
			v = -0x8000
		}
		dst[j] = byte(v)
		dst[j+1] = byte(v >> 8)
		j += 2
	}
}

// encode24 writes the accumulator as 24-bit little-endian, saturating
// instead of wrapping on overflow.
func (m *Mixer) encode24(dst []byte) {
	j := 0
	for _, v := range m.accumulator {
		if v > 0x7FFFFF {
			v = 0x7FFFFF
		} else if v < -0x800000 {
			v = -0x800000
		}
		dst[j] = byte(v)
		dst[j+1] = byte(v >> 8)
		dst[j+2] = byte(v >> 16)
		j += 3
	}
}
