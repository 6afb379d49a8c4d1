package registry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shhawkins/chord-wheel-writer/constants"
)

// LoadSampleInstrument starts an asynchronous load of a sample-based
// instrument whose reference notes map to WAV files under the sample
// dir. The instrument stays not-ready until every file is decoded.
func (r *Registry) LoadSampleInstrument(id, displayName string, refFiles map[uint8]string) <-chan struct{} {
	return r.RegisterAsync(id, func() (*Definition, error) {
		sm := &SampleMap{Refs: make(map[uint8][]float64)}
		for ref, file := range refFiles {
			path := filepath.Join(constants.GetSampleDir(), file)
			buf, rate, err := readWAVMono(path)
			if err != nil {
				return nil, fmt.Errorf("reading sample %v: %w", file, err)
			}
			if sm.SampleRate == 0 {
				sm.SampleRate = rate
			}
			if sm.SampleRate != rate {
				return nil, fmt.Errorf("sample %v rate %v differs from %v", file, rate, sm.SampleRate)
			}
			sm.Refs[ref] = buf
		}
		return &Definition{
			ID:          id,
			DisplayName: displayName,
			Synth:       DefaultSynthParams(),
			Samples:     sm,
		}, nil
	})
}

type wavHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte
}

type wavFmtChunk struct {
	SubchunkID    [4]byte
	SubchunkSize  uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

type wavDataChunk struct {
	SubchunkID   [4]byte
	SubchunkSize uint32
}

// readWAVMono decodes a 16-bit PCM WAV file, mixing stereo down to mono.
func readWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var header wavHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, 0, err
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return nil, 0, errors.New("not a RIFF/WAVE file")
	}

	var fmtChunk wavFmtChunk
	if err := binary.Read(f, binary.LittleEndian, &fmtChunk); err != nil {
		return nil, 0, err
	}
	if string(fmtChunk.SubchunkID[:]) != "fmt " {
		return nil, 0, errors.New("missing fmt chunk")
	}
	if fmtChunk.AudioFormat != 1 || fmtChunk.BitsPerSample != 16 {
		return nil, 0, errors.New("only 16-bit PCM samples are supported")
	}

	var dataChunk wavDataChunk
	if err := binary.Read(f, binary.LittleEndian, &dataChunk); err != nil {
		return nil, 0, err
	}
	if string(dataChunk.SubchunkID[:]) != "data" {
		return nil, 0, errors.New("missing data chunk")
	}

	raw := make([]byte, dataChunk.SubchunkSize)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, 0, err
	}

	channels := int(fmtChunk.NumChannels)
	frames := len(raw) / 2 / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			v := int16(binary.LittleEndian.Uint16(raw[(i*channels+ch)*2:]))
			sum += float64(v) / 32768.0
		}
		out[i] = sum / float64(channels)
	}
	return out, int(fmtChunk.SampleRate), nil
}
