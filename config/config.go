// Package config parses the flag-based configuration for the sstvtx and
// sstvrx commands: a plain struct populated by flag.*Var calls under
// NewTXConfig and NewRXConfig.
package config

import "flag"

// TXConfig holds sstvtx's command-line configuration.
type TXConfig struct {
	ImagePath  string
	ModeName   string
	SampleRate int
	WAVPath    string

	TX        bool
	Frequency float64
	Gain      int
	Device    string

	TUI bool
}

// NewTXConfig parses os.Args (via the flag package) into a TXConfig.
func NewTXConfig() *TXConfig {
	cfg := &TXConfig{}
	flag.StringVar(&cfg.ImagePath, "image", "", "Path to the source image")
	flag.StringVar(&cfg.ModeName, "mode", "Martin 1", "SSTV mode name")
	flag.IntVar(&cfg.SampleRate, "rate", 44100, "Output sample rate in Hz")
	flag.StringVar(&cfg.WAVPath, "out", "out.wav", "Output WAV file path")
	flag.BoolVar(&cfg.TX, "tx", false, "Also stream over a HackRF device")
	flag.Float64Var(&cfg.Frequency, "freq", 145.500, "Transmit frequency in MHz (with -tx)")
	flag.IntVar(&cfg.Gain, "gain", 30, "TX VGA gain 0-47 (with -tx)")
	flag.StringVar(&cfg.Device, "device", "", "HackRF device serial (accepted but unused: sstvtx opens the first HackRF found)")
	flag.BoolVar(&cfg.TUI, "tui", false, "Show a progress bar while encoding")
	flag.Parse()
	return cfg
}

// RXConfig holds sstvrx's command-line configuration.
type RXConfig struct {
	WAVPath      string
	ExpectedMode string
	ImagePath    string

	RX        bool
	Frequency float64
	Gain      int

	TUI bool
}

// NewRXConfig parses os.Args (via the flag package) into an RXConfig.
func NewRXConfig() *RXConfig {
	cfg := &RXConfig{}
	flag.StringVar(&cfg.WAVPath, "in", "", "Path to a recorded WAV file")
	flag.StringVar(&cfg.ExpectedMode, "mode", "", "Expected SSTV mode name (optional)")
	flag.StringVar(&cfg.ImagePath, "out", "out.png", "Output PNG image path")
	flag.BoolVar(&cfg.RX, "rx", false, "Capture live from an RTL-SDR device instead of reading -in")
	flag.Float64Var(&cfg.Frequency, "freq", 145.500, "Receive frequency in MHz (with -rx)")
	flag.IntVar(&cfg.Gain, "gain", 0, "Tuner gain in tenths of a dB, 0 for auto (with -rx)")
	flag.BoolVar(&cfg.TUI, "tui", false, "Accepted but unused: sstvrx shows no progress display")
	flag.Parse()
	return cfg
}
