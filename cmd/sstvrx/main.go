// Command sstvrx decodes an SSTV audio waveform, either from a recorded
// WAV file or captured live from an RTL-SDR receiver, into a PNG image.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"sstvgo/config"
	"sstvgo/sdr"
	"sstvgo/sstv"
	"sstvgo/wavfile"
)

const rxSampleRate = 8000

func main() {
	cfg := config.NewRXConfig()

	var pcm []float32
	sampleRate := rxSampleRate

	if cfg.RX {
		recv, err := sdr.NewReceiver(sdr.ReceiverConfig{
			FrequencyHz:  int(cfg.Frequency * 1e6),
			SampleRateHz: 2400000,
			Gain:         cfg.Gain,
		})
		if err != nil {
			log.Fatalf("opening RTL-SDR device: %v", err)
		}
		defer recv.Close()

		log.Println("Capturing from RTL-SDR... (Ctrl+C to stop)")
		pcm, err = recv.CaptureAudio(context.Background(), 30*rxSampleRate)
		if err != nil {
			log.Fatalf("capturing audio: %v", err)
		}
	} else {
		if cfg.WAVPath == "" {
			log.Fatal("either -in <file.wav> or -rx is required")
		}
		f, err := os.Open(cfg.WAVPath)
		if err != nil {
			log.Fatalf("opening %s: %v", cfg.WAVPath, err)
		}
		defer f.Close()

		rd, err := wavfile.NewReader(f)
		if err != nil {
			log.Fatalf("reading WAV header: %v", err)
		}
		sampleRate = int(rd.Format.SampleRate)
		pcm, err = rd.ReadSamples()
		if err != nil {
			log.Fatalf("reading samples: %v", err)
		}
	}

	var expectedMode *sstv.Mode
	if cfg.ExpectedMode != "" {
		m, ok := sstv.GetModeByName(cfg.ExpectedMode)
		if !ok {
			log.Fatalf("unknown expected mode %q", cfg.ExpectedMode)
		}
		expectedMode = &m
	}

	dec := &sstv.Decoder{}
	if err := dec.DecodeSamples(pcm, sampleRate, expectedMode, true); err != nil {
		log.Fatalf("decoding SSTV signal: %v", err)
	}

	mode, _ := dec.GetMode()
	pixels, _ := dec.GetPixels()

	img := image.NewRGBA(image.Rect(0, 0, mode.Width, mode.Lines))
	for y := 0; y < mode.Lines; y++ {
		for x := 0; x < mode.Width; x++ {
			i := (y*mode.Width + x) * 3
			img.Set(x, y, color.RGBA{R: pixels[i], G: pixels[i+1], B: pixels[i+2], A: 255})
		}
	}

	out, err := os.Create(cfg.ImagePath)
	if err != nil {
		log.Fatalf("creating %s: %v", cfg.ImagePath, err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		log.Fatalf("encoding PNG: %v", err)
	}
	fmt.Printf("Decoded mode %q into %s\n", mode.Name, cfg.ImagePath)
}
