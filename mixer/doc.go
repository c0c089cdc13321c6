// Package mixer is the polyphonic mixing engine: a fixed table of voice
// slots fed from registered sources, summed with a master gain and
// delivered to a realtime audio sink through a bounded packet ring.
//
// Three kinds of thread touch a Mixer. Control threads issue the public
// operations (serialise them externally). A single producer goroutine,
// owned by the ring buffer, runs the mix loop. The sink's audio thread only
// ever calls the ring's Read, which never blocks.
//
// Basic use:
//
//	m := mixer.New(&backend.OtoSink{})
//	if err := m.SetFormat(44100, true, 16, 8); err != nil {
//		log.Fatal(err)
//	}
//	if err := m.StartStopMixer(true); err != nil {
//		log.Fatal(err)
//	}
//	h := m.AddSource("jump.wav")
//	play := m.PlaySource(h, false, false)
//	...
//	m.StopPlayback(play)
//	m.StartStopMixer(false)
//
// Handles pack a source id, a source type and an optional voice/line index
// into one int; handle 0 addresses everything at once, so
// m.StopPlayback(0) silences the world.
package mixer
