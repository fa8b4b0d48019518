// Command sstvtx renders a source image into an SSTV audio waveform,
// writes it to a WAV file, and optionally streams it live over a HackRF
// transmitter.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/samuel/go-hackrf/hackrf"

	"sstvgo/config"
	"sstvgo/imagesrc"
	"sstvgo/sdr"
	"sstvgo/sstv"
	"sstvgo/tui"
	"sstvgo/wavfile"
)

func main() {
	cfg := config.NewTXConfig()

	var src *imagesrc.Source
	var err error
	if cfg.ImagePath == "" {
		log.Println("No -image given; using a synthesized SMPTE color-bars test pattern.")
		src = imagesrc.TestPattern(320, 240)
	} else {
		src, err = imagesrc.Load(cfg.ImagePath)
		if err != nil {
			log.Fatalf("loading image: %v", err)
		}
	}

	enc := sstv.NewEncoder()
	if err := enc.SetModeByName(cfg.ModeName); err != nil {
		log.Fatalf("unknown mode %q: %v", cfg.ModeName, err)
	}
	enc.SetSampleRate(cfg.SampleRate)
	enc.SetSourceSize(src.Width(), src.Height())
	enc.SetPixelProvider(src.Provider())

	mode, _ := enc.GetMode()
	letterbox := sstv.Letterbox(mode.Width, mode.Lines, sstv.Rect{W: src.Width(), H: src.Height()})
	enc.SetLetterbox(letterbox)

	out, err := os.Create(cfg.WAVPath)
	if err != nil {
		log.Fatalf("creating %s: %v", cfg.WAVPath, err)
	}
	defer out.Close()

	wr, err := wavfile.NewWriter(out, cfg.SampleRate)
	if err != nil {
		log.Fatalf("initializing WAV writer: %v", err)
	}

	var tx *sdr.Transmitter
	if cfg.TX {
		if err := hackrf.Init(); err != nil {
			log.Fatalf("hackrf.Init() failed: %v", err)
		}
		defer hackrf.Exit()
		dev, err := hackrf.Open()
		if err != nil {
			log.Fatalf("hackrf.Open() failed: %v", err)
		}
		tx, err = sdr.NewTransmitter(dev, sdr.TransmitterConfig{
			FrequencyHz: uint64(cfg.Frequency * 1e6),
			SampleRate:  uint32(cfg.SampleRate),
			Gain:        cfg.Gain,
		})
		if err != nil {
			log.Fatalf("configuring HackRF transmitter: %v", err)
		}
	}

	var allSamples []float32
	onPump := func(chunk []float32) {
		if err := wr.WriteSamples(chunk); err != nil {
			log.Fatalf("writing samples: %v", err)
		}
		if tx != nil {
			allSamples = append(allSamples, chunk...)
		}
	}

	if cfg.TUI {
		if err := tui.RunEncodeProgress(enc, onPump); err != nil {
			log.Fatalf("running encoder: %v", err)
		}
	} else {
		buf := make([]float32, 2048)
		for {
			n, done := enc.Pump(buf)
			if n > 0 {
				onPump(buf[:n])
			}
			if done {
				break
			}
		}
	}

	if _, err := wr.Finish(); err != nil {
		log.Fatalf("finalizing WAV file: %v", err)
	}
	fmt.Printf("Wrote %s (mode %q, %d Hz)\n", cfg.WAVPath, mode.Name, cfg.SampleRate)

	if tx != nil {
		if err := tx.TransmitAudio(allSamples); err != nil {
			log.Fatalf("transmitting: %v", err)
		}
	}
}
