package sdr

import (
	"context"
	"fmt"
	"log"
	"math"

	rtl "github.com/jpoirier/gortlsdr"
)

// ReceiverConfig configures an RTL-SDR capture.
type ReceiverConfig struct {
	FrequencyHz  int
	SampleRateHz int
	Gain         int // tenths of a dB; 0 enables automatic gain
}

// Receiver pulls raw I/Q samples from an RTL-SDR dongle and demodulates
// them into an audio-rate amplitude stream via AM envelope detection
// with an adaptive AGC. This is a simplification of a true SSB/FM
// discriminator, adequate for tone-presence detection but not
// phase-accurate recovery.
type Receiver struct {
	dongle *rtl.Context
	cfg    ReceiverConfig

	smoothedMax float64
	smoothedMin float64
}

// NewReceiver opens the first RTL-SDR device and configures it per cfg.
func NewReceiver(cfg ReceiverConfig) (*Receiver, error) {
	devCount := rtl.GetDeviceCount()
	if devCount == 0 {
		return nil, fmt.Errorf("no RTL-SDR devices found")
	}
	log.Printf("Found %d RTL-SDR device(s). Using device 0.", devCount)

	dongle, err := rtl.Open(0)
	if err != nil {
		return nil, fmt.Errorf("error opening RTL-SDR device: %w", err)
	}

	if err := dongle.SetCenterFreq(cfg.FrequencyHz); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetCenterFreq failed: %w", err)
	}
	if err := dongle.SetSampleRate(cfg.SampleRateHz); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetSampleRate failed: %w", err)
	}
	if cfg.Gain == 0 {
		if err := dongle.SetTunerGainMode(false); err != nil {
			dongle.Close()
			return nil, fmt.Errorf("SetTunerGainMode failed: %w", err)
		}
	} else {
		if err := dongle.SetTunerGainMode(true); err != nil {
			dongle.Close()
			return nil, fmt.Errorf("SetTunerGainMode failed: %w", err)
		}
		if err := dongle.SetTunerGain(cfg.Gain); err != nil {
			dongle.Close()
			return nil, fmt.Errorf("SetTunerGain failed: %w", err)
		}
	}
	if err := dongle.ResetBuffer(); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("ResetBuffer failed: %w", err)
	}

	return &Receiver{dongle: dongle, cfg: cfg, smoothedMax: 128.0, smoothedMin: 0.0}, nil
}

// Close releases the underlying RTL-SDR device.
func (r *Receiver) Close() error {
	return r.dongle.Close()
}

// CaptureAudio reads I/Q samples in chunks until maxSamples envelope
// samples have been produced or ctx is cancelled, whichever comes
// first. Callers wanting a bounded capture with cancellation wrap this
// call in their own context with a deadline or cancel func.
func (r *Receiver) CaptureAudio(ctx context.Context, maxSamples int) ([]float32, error) {
	out := make([]float32, 0, maxSamples)
	iqBuf := make([]byte, 16384)

	for len(out) < maxSamples {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		n, err := r.dongle.ReadSync(iqBuf, len(iqBuf))
		if err != nil {
			return out, fmt.Errorf("ReadSync failed: %w", err)
		}
		out = append(out, r.demodulate(iqBuf[:n])...)
	}
	if len(out) > maxSamples {
		out = out[:maxSamples]
	}
	return out, nil
}

// demodulate converts a chunk of interleaved 8-bit I/Q samples into
// AGC-normalised envelope amplitudes in roughly [-1, 1].
func (r *Receiver) demodulate(iq []byte) []float32 {
	n := len(iq) / 2
	out := make([]float32, n)

	localMax, localMin := 0.0, 255.0
	mags := make([]float64, n)
	for i := 0; i < n; i++ {
		iqI := float64(int(iq[i*2]) - 127)
		iqQ := float64(int(iq[i*2+1]) - 127)
		mag := math.Sqrt(iqI*iqI + iqQ*iqQ)
		mags[i] = mag
		if mag > localMax {
			localMax = mag
		}
		if mag < localMin {
			localMin = mag
		}
	}
	r.smoothedMax = r.smoothedMax*0.95 + localMax*0.05
	r.smoothedMin = r.smoothedMin*0.95 + localMin*0.05

	span := r.smoothedMax - r.smoothedMin
	if span < 1e-6 {
		span = 1e-6
	}
	for i, mag := range mags {
		out[i] = float32((mag-r.smoothedMin)/span*2 - 1)
	}
	return out
}
