// Package wavfile reads and writes mono 16-bit PCM WAVE files: the
// container format this module's command-line tools use to carry SSTV
// audio to and from disk.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PCM is the WAVE fmt-chunk audio format code for integer PCM.
const PCM = 1

// Format mirrors the 16-byte WAVE fmt chunk.
type Format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Writer streams mono float32 samples (in [-1, 1]) to a WriteSeeker as
// 16-bit PCM, patching the RIFF and data chunk sizes on Finish once the
// total length is known.
type Writer struct {
	ws           io.WriteSeeker
	bytesWritten int64
}

// NewWriter writes the RIFF/WAVE/fmt/data chunk headers (with
// placeholder sizes) and returns a Writer ready for WriteSamples.
func NewWriter(ws io.WriteSeeker, sampleRate int) (*Writer, error) {
	if _, err := ws.Write([]byte("RIFF")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("fmt ")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(16)); err != nil {
		return nil, err
	}
	format := Format{AudioFormat: PCM, Channels: 1, SampleRate: uint32(sampleRate), BitsPerSample: 16}
	format.ByteRate = uint32(sampleRate) * 1 * (16 / 8)
	format.BlockAlign = 1 * (16 / 8)
	if err := binary.Write(ws, binary.LittleEndian, format); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("data")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	return &Writer{ws: ws}, nil
}

// WriteSamples converts samples to 16-bit PCM and appends them to the
// data chunk.
func (w *Writer) WriteSamples(samples []float32) error {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32767
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		pcm[i] = int16(v)
	}
	if err := binary.Write(w.ws, binary.LittleEndian, pcm); err != nil {
		return err
	}
	w.bytesWritten += int64(len(pcm)) * 2
	return nil
}

// Finish seeks back and patches the RIFF and data chunk sizes now that
// the total sample count is known.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if offset, err := w.ws.Seek(4, io.SeekStart); offset != 4 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}

	if offset, err := w.ws.Seek(40, io.SeekStart); offset != 40 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}

	if _, err := w.ws.Seek(wlen, io.SeekStart); err != nil {
		return 0, err
	}
	return wlen, nil
}

// Reader parses a mono 16-bit PCM WAVE file read from an io.Reader.
type Reader struct {
	Format Format
	data   io.Reader
}

// NewReader parses the RIFF/WAVE/fmt chunk headers and positions the
// returned Reader at the start of the data chunk. It rejects anything
// other than mono 16-bit integer PCM, since that's the only format this
// module's decoder pipeline consumes.
func NewReader(r io.Reader) (*Reader, error) {
	var riff [4]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("wavfile: reading RIFF tag: %w", err)
	}
	if string(riff[:]) != "RIFF" {
		return nil, fmt.Errorf("wavfile: not a RIFF file (got %q)", riff)
	}
	var riffSize int32
	if err := binary.Read(r, binary.LittleEndian, &riffSize); err != nil {
		return nil, fmt.Errorf("wavfile: reading RIFF size: %w", err)
	}

	var wave [4]byte
	if _, err := io.ReadFull(r, wave[:]); err != nil {
		return nil, fmt.Errorf("wavfile: reading WAVE tag: %w", err)
	}
	if string(wave[:]) != "WAVE" {
		return nil, fmt.Errorf("wavfile: not a WAVE file (got %q)", wave)
	}

	var format Format
	for {
		var tag [4]byte
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			return nil, fmt.Errorf("wavfile: reading chunk tag: %w", err)
		}
		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("wavfile: reading chunk size: %w", err)
		}

		switch string(tag[:]) {
		case "fmt ":
			if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
				return nil, fmt.Errorf("wavfile: reading fmt chunk: %w", err)
			}
			if size > 16 {
				if _, err := io.CopyN(io.Discard, r, int64(size-16)); err != nil {
					return nil, err
				}
			}
		case "data":
			if format.AudioFormat != PCM || format.Channels != 1 || format.BitsPerSample != 16 {
				return nil, fmt.Errorf("wavfile: unsupported format (audioFormat=%d channels=%d bits=%d); need mono 16-bit PCM",
					format.AudioFormat, format.Channels, format.BitsPerSample)
			}
			return &Reader{Format: format, data: io.LimitReader(r, int64(size))}, nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("wavfile: skipping chunk %q: %w", tag, err)
			}
		}
	}
}

// ReadSamples reads every remaining sample in the data chunk, converted
// to float32 in [-1, 1].
func (r *Reader) ReadSamples() ([]float32, error) {
	raw, err := io.ReadAll(r.data)
	if err != nil {
		return nil, fmt.Errorf("wavfile: reading samples: %w", err)
	}
	n := len(raw) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(s) / 32768
	}
	return out, nil
}
