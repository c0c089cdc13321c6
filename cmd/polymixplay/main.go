// Command polymixplay plays WAVE and Ogg Vorbis files through the
// polyphonic mixer and the system audio device.
//
//	polymixplay [-rate 44100] [-mono] [-voices 8] [-loop] file...
//
// Every file is registered as a source and started at once; playback runs
// until all voices finish or the process is interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ik5/polymix/backend"
	"github.com/ik5/polymix/mixer"
)

func main() {
	rate := flag.Int("rate", 44100, "output sample rate in Hz (8000-96000)")
	mono := flag.Bool("mono", false, "mix down to mono output")
	voices := flag.Int("voices", 8, "number of simultaneous voices")
	loop := flag.Bool("loop", false, "loop every file")
	volume := flag.Int("volume", 128, "master volume, 0-255 (128 = unity)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: polymixplay [flags] file...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	m := mixer.New(&backend.OtoSink{})
	m.SetLogger(log.New(os.Stderr, "polymixplay: ", 0))
	if err := m.SetFormat(*rate, !*mono, 16, *voices); err != nil {
		log.Fatalf("set format: %v", err)
	}
	m.SetMasterVolume(*volume)

	if err := m.StartStopMixer(true); err != nil {
		log.Fatalf("start mixer: %v", err)
	}
	defer m.StartStopMixer(false)

	var plays []int
	for _, path := range flag.Args() {
		h := m.AddSource(path)
		if h == 0 {
			log.Printf("skipping %s: not a WAVE or Ogg Vorbis file", path)
			continue
		}
		play := m.PlaySource(h, *loop, false)
		if play == 0 {
			log.Printf("skipping %s: no free voice", path)
			continue
		}
		plays = append(plays, play)
		fmt.Printf("playing %s\n", path)
	}
	if len(plays) == 0 {
		log.Fatal("nothing to play")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-interrupt:
			fmt.Println("\ninterrupted")
			m.StopPlayback(0)
			return
		case <-ticker.C:
			if *loop {
				continue
			}
			if m.ActiveVoices() == 0 {
				// drain the buffered tail before closing the device
				time.Sleep(200 * time.Millisecond)
				return
			}
		}
	}
}
