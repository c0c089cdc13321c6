package mixer

import "github.com/ik5/polymix/kss"

// cartridgeAndLine resolves a KSS handle. With needLine the channel part
// must name a valid line; without it the handle may address the cartridge
// as a whole (lineID 0).
func (m *Mixer) cartridgeAndLine(handle int, needLine bool) (*kss.Cartridge, int, bool) {
	if sourceType(handle) != sourceTypeKSS {
		return nil, 0, false
	}
	id := untypedSourceID(handle)
	if id < 1 || id > len(m.cartridges) || m.cartridges[id-1] == nil {
		return nil, 0, false
	}
	cart := m.cartridges[id-1]
	lineID := channelID(handle)
	if needLine && (lineID < 1 || lineID > cart.LineCount()) {
		return nil, 0, false
	}
	return cart, lineID, true
}

// PlayKSSTrack starts a track on a free line of the cartridge and returns
// the play handle, or 0 when no line is free. With force, the oldest
// forcable line is preempted instead (synchronised with the producer).
func (m *Mixer) PlayKSSTrack(handle, track int, autostop, forcable, force bool) int {
	cart, _, ok := m.cartridgeAndLine(handle, false)
	if !ok {
		return 0
	}

	id := cart.ActivateLine(track, autostop, forcable)
	if id == 0 && force {
		m.withProducerPaused(func() {
			id = cart.ForceLine(track, autostop, forcable)
		})
	}
	if id == 0 {
		return 0
	}
	return makeHandle(sourceID(handle), id)
}

// UpdateKSSTrack re-targets a playing line to a new track, fading the old
// one out over fadeOutMS when non-zero.
func (m *Mixer) UpdateKSSTrack(handle, newTrack int, autostop, forcable bool, fadeOutMS int) bool {
	cart, lineID, ok := m.cartridgeAndLine(handle, true)
	if !ok {
		return false
	}
	done := false
	m.withProducerPaused(func() {
		done = cart.UpdateLine(lineID, newTrack, autostop, forcable, fadeOutMS)
	})
	return done
}

// UpdateKSSVolume sets the volume (0-100) of one line, or of every line
// when the handle addresses the cartridge.
func (m *Mixer) UpdateKSSVolume(handle, volume int) bool {
	cart, lineID, ok := m.cartridgeAndLine(handle, channelID(handle) != 0)
	if !ok {
		return false
	}
	m.withProducerPaused(func() {
		if lineID != 0 {
			cart.SetLineVolume(lineID, volume)
		} else {
			cart.SetMasterVolume(volume)
		}
	})
	return true
}

// UpdateKSSFrequency changes the vsync frequency (typically 50 or 60 Hz)
// of one line, one cartridge, or, with handle 0, every cartridge.
func (m *Mixer) UpdateKSSFrequency(handle, frequency int) bool {
	if handle == 0 {
		m.withProducerPaused(func() {
			for _, cart := range m.cartridges {
				if cart != nil {
					cart.SetFrequency(frequency)
				}
			}
		})
		return true
	}

	cart, lineID, ok := m.cartridgeAndLine(handle, channelID(handle) != 0)
	if !ok {
		return false
	}
	m.withProducerPaused(func() {
		if lineID != 0 {
			cart.SetLineFrequency(lineID, frequency)
		} else {
			cart.SetFrequency(frequency)
		}
	})
	return true
}

// GetKSSActiveLinesCount reports how many lines of the cartridge are
// currently active.
func (m *Mixer) GetKSSActiveLinesCount(handle int) int {
	cart, _, ok := m.cartridgeAndLine(handle, false)
	if !ok {
		return 0
	}
	return cart.ActiveLines()
}

// GetKSSPlaytimeMillis reports how long a line has been playing its track.
func (m *Mixer) GetKSSPlaytimeMillis(handle int) int {
	cart, lineID, ok := m.cartridgeAndLine(handle, true)
	if !ok {
		return 0
	}
	return cart.PlaytimeMillis(lineID)
}
