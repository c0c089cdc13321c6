// SPDX-License-Identifier: EPL-2.0

// Package polymix is an in-process polyphonic audio mixer.
//
// Register WAVE, Ogg Vorbis and KSS chip-tune sources, play them
// polyphonically across a fixed table of voices, and deliver the summed
// mix to an audio device through a bounded packet ring whose consumer
// side never blocks.
//
// # Package layout
//
//   - mixer — the engine: voice table, mix step, control surface, and
//     the threading rules binding them together
//   - backend — audio device sinks (oto, and a headless null sink)
//   - ring — the bounded producer/consumer packet ring
//   - voice — per-voice PCM and Vorbis decoding and resampling
//   - loader — WAVE and Ogg Vorbis file access
//   - sample — pure per-sample format decoders
//   - kss, kssplayer — KSS cartridges over a pluggable chip emulator
//
// # Quick start
//
//	m := mixer.New(&backend.OtoSink{})
//	if err := m.SetFormat(44100, true, 16, 8); err != nil {
//		log.Fatal(err)
//	}
//	if err := m.StartStopMixer(true); err != nil {
//		log.Fatal(err)
//	}
//	defer m.StartStopMixer(false)
//
//	h := m.AddSource("jump.wav")
//	play := m.PlaySource(h, false, false)
//	...
//	m.StopPlayback(play)
//
// The accepted WAVE vocabulary covers 8/12/16/24/32-bit PCM, 32/64-bit
// IEEE float, A-law and mu-law. KSS playback needs an emulator binding
// registered with mixer.SetKSSProvider; see the kssplayer package for the
// contract.
//
// For offline conversion outside the realtime path, cmd/polymixconvert
// drives the same loader and voice pipeline from the command line.
package polymix
