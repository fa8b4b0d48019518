// Package sdr bridges the sstv codec's mono audio waveform to and from
// software-defined radio hardware: a HackRF transmitter and an RTL-SDR
// receiver.
package sdr

import (
	"fmt"
	"log"
	"math"

	"github.com/samuel/go-hackrf/hackrf"
)

// NewLowPassFilterTaps builds Blackman-windowed sinc low-pass FIR taps,
// normalised to unity DC gain.
func NewLowPassFilterTaps(numTaps int, bandwidth, sampleRate float64) []float64 {
	taps := make([]float64, numTaps)
	cutoffFreq := bandwidth / 2.0
	normalizedCutoff := cutoffFreq / sampleRate

	m := float64(numTaps - 1)
	var sum float64
	for i := 0; i < numTaps; i++ {
		n := float64(i)
		window := 0.42 - 0.5*math.Cos(2*math.Pi*n/m) + 0.08*math.Cos(4*math.Pi*n/m)

		var sinc float64
		if i == int(m/2) {
			sinc = 2 * math.Pi * normalizedCutoff
		} else {
			sinc = math.Sin(2*math.Pi*normalizedCutoff*(n-m/2)) / (n - m/2)
		}

		taps[i] = sinc * window
		sum += taps[i]
	}

	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// TransmitterConfig configures a HackRF transmission.
type TransmitterConfig struct {
	FrequencyHz uint64
	SampleRate  uint32
	Gain        int
}

// Transmitter streams a pre-rendered SSTV audio waveform out of a HackRF
// device as a direct-conversion I/Q signal: audio amplitude on I, Q
// held at zero.
type Transmitter struct {
	dev *hackrf.Device
	cfg TransmitterConfig
}

// NewTransmitter configures an already-opened device's frequency, sample
// rate, and gain for transmission.
func NewTransmitter(dev *hackrf.Device, cfg TransmitterConfig) (*Transmitter, error) {
	if err := dev.SetFreq(cfg.FrequencyHz); err != nil {
		return nil, fmt.Errorf("SetFreq failed: %w", err)
	}
	if err := dev.SetSampleRate(float64(cfg.SampleRate)); err != nil {
		return nil, fmt.Errorf("SetSampleRate failed: %w", err)
	}
	if err := dev.SetTXVGAGain(cfg.Gain); err != nil {
		return nil, fmt.Errorf("SetTXVGAGain failed: %w", err)
	}
	if err := dev.SetAmpEnable(false); err != nil {
		return nil, fmt.Errorf("SetAmpEnable failed: %w", err)
	}
	return &Transmitter{dev: dev, cfg: cfg}, nil
}

// TransmitAudio streams audio (mono samples in [-1, 1]) out over the
// HackRF's StartTX callback, which runs on a goroutine owned by the
// hackrf binding. It blocks until the waveform is fully sent.
func (t *Transmitter) TransmitAudio(audio []float32) error {
	log.Printf("Transmitting on %.3f MHz at %d samples (Sample Rate: %.3f Msps)...",
		float64(t.cfg.FrequencyHz)/1e6, len(audio), float64(t.cfg.SampleRate)/1e6)

	pos := 0
	done := make(chan error, 1)
	err := t.dev.StartTX(func(buf []byte) error {
		n := len(buf) / 2
		for i := 0; i < n; i++ {
			var amplitude float32
			if pos < len(audio) {
				amplitude = audio[pos]
				pos++
			}
			buf[i*2] = byte(int8(amplitude * 127.0))
			buf[i*2+1] = 0
		}
		if pos >= len(audio) {
			select {
			case done <- nil:
			default:
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("StartTX failed: %w", err)
	}
	<-done
	return nil
}
