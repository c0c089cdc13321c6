// Command polymixconvert converts a WAVE or Ogg Vorbis file to 16-bit PCM
// WAVE at a chosen rate and channel count. It runs the input through the
// same source and voice pipeline the realtime mixer uses, so the output is
// exactly what a mixer voice would feed into a packet.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ik5/polymix/loader"
	"github.com/ik5/polymix/voice"
)

func main() {
	rate := flag.Int("rate", 8000, "target sample rate in Hz")
	stereo := flag.Bool("stereo", false, "write stereo instead of mono")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: polymixconvert [-rate 8000] [-stereo] <input.{wav|ogg}> <output.wav>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	inPath := flag.Arg(0)
	outPath := flag.Arg(1)

	src, err := openSource(inPath)
	if err != nil {
		log.Fatalf("open %s: %v", inPath, err)
	}
	defer src.Close()

	channels := 1
	if *stereo {
		channels = 2
	}
	if err := src.SetOutputFormat(*rate, channels, 16); err != nil {
		log.Fatalf("set output format: %v", err)
	}
	v, err := src.NewVoice()
	if err != nil {
		log.Fatalf("spawn voice: %v", err)
	}
	defer v.Close()

	// drain the voice once through; a short read is the end of the input
	const chunkFrames = 4096
	buf := make([]int32, chunkFrames*channels)
	var pcm16 []int16
	for {
		n := v.Read(buf, chunkFrames)
		for i := 0; i < n*channels; i++ {
			s := buf[i]
			if s > 0x7FFF {
				s = 0x7FFF
			} else if s < -0x8000 {
				s = -0x8000
			}
			pcm16 = append(pcm16, int16(s))
		}
		if n < chunkFrames {
			break
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer out.Close()

	if err := loader.WriteWave16(out, *rate, channels, pcm16); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}
	fmt.Printf("wrote %s: %d frames at %d Hz, %d channel(s)\n",
		outPath, len(pcm16)/channels, *rate, channels)
}

// openSource sniffs the input the same way the mixer's AddSource does:
// WAVE first, Vorbis otherwise.
func openSource(path string) (voice.Source, error) {
	if loader.SniffWave(path) {
		wd, err := loader.LoadWave(path)
		if err != nil {
			return nil, err
		}
		return voice.NewPCMSource(wd)
	}
	return voice.NewVorbisSource(path)
}
