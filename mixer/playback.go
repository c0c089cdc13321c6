package mixer

// PlaySource allocates a free voice slot for the source and returns the
// play handle, or 0 when every slot is busy (NoFreeChannel is not an
// error). A slot that last played the same source reuses its voice, seeked
// back to the start; otherwise a fresh voice is spawned.
func (m *Mixer) PlaySource(handle int, loop, paused bool) int {
	sid := sourceID(handle)
	if sid < 1 || sid > len(m.sources) || m.sources[sid-1] == nil {
		return 0
	}

	for i, c := range m.table {
		if c.active.Load() {
			continue
		}
		if int(c.sid) != sid {
			if c.voice != nil {
				c.voice.Close()
			}
			v, err := m.sources[sid-1].NewVoice()
			if err != nil {
				m.logger.Printf("play source %d: %v", sid, err)
				return 0
			}
			c.sid = int32(sid)
			c.voice = v
		} else {
			c.voice.Seek(0)
		}
		c.stopped.Store(false)
		c.loop.Store(loop)
		c.paused.Store(paused)
		// active last: the producer sees the slot idle or complete
		c.active.Store(true)
		return makeHandle(sid, i+1)
	}
	return 0
}

// StopPlayback stops one voice or line, every voice of a source, or, with
// handle 0, everything. When the sink is closed there is no producer to
// observe the stop flag, so slots are cleared directly.
func (m *Mixer) StopPlayback(handle int) {
	sinkOpen := m.sink.IsOpen()

	stopChannel := func(c *channel) {
		c.stopped.Store(true)
		c.paused.Store(false)
		if !sinkOpen {
			c.loop.Store(false)
			c.active.Store(false)
		}
	}

	switch {
	case handle == 0:
		for _, c := range m.table {
			if c.active.Load() {
				stopChannel(c)
			}
		}
		for _, cart := range m.cartridges {
			if cart != nil {
				cart.StopActive()
			}
		}

	case sourceType(handle) == sourceTypeKSS:
		cart, lineID, ok := m.cartridgeAndLine(handle, channelID(handle) != 0)
		if !ok {
			return
		}
		if lineID != 0 {
			cart.Stop(lineID)
		} else {
			cart.StopActive()
		}

	default:
		sid := sourceID(handle)
		if sid == 0 {
			return
		}
		if cid := channelID(handle); cid != 0 {
			if cid > len(m.table) {
				return
			}
			c := m.table[cid-1]
			if c.active.Load() && int(c.sid) == sid {
				stopChannel(c)
			}
		} else {
			for _, c := range m.table {
				if c.active.Load() && int(c.sid) == sid {
					stopChannel(c)
				}
			}
		}
	}
}

// PauseResumePlayback mirrors StopPlayback's addressing on the paused
// flag: one voice or line, a whole source, or everything with handle 0.
func (m *Mixer) PauseResumePlayback(handle int, pause bool) {
	switch {
	case handle == 0:
		for _, c := range m.table {
			if c.active.Load() {
				c.paused.Store(pause)
			}
		}
		for _, cart := range m.cartridges {
			if cart != nil {
				cart.SetPauseActive(pause)
			}
		}

	case sourceType(handle) == sourceTypeKSS:
		cart, lineID, ok := m.cartridgeAndLine(handle, channelID(handle) != 0)
		if !ok {
			return
		}
		if lineID != 0 {
			cart.SetPause(lineID, pause)
		} else {
			cart.SetPauseActive(pause)
		}

	default:
		sid := sourceID(handle)
		if sid == 0 {
			return
		}
		if cid := channelID(handle); cid != 0 {
			if cid > len(m.table) {
				return
			}
			c := m.table[cid-1]
			if c.active.Load() && int(c.sid) == sid {
				c.paused.Store(pause)
			}
		} else {
			for _, c := range m.table {
				if c.active.Load() && int(c.sid) == sid {
					c.paused.Store(pause)
				}
			}
		}
	}
}

// SetLoop flips the loop flag of one playing voice.
func (m *Mixer) SetLoop(handle int, loop bool) {
	sid := sourceID(handle)
	cid := channelID(handle)
	if sid == 0 || cid == 0 || cid > len(m.table) {
		return
	}
	m.table[cid-1].loop.Store(loop)
}
