package render

import (
	"encoding/binary"
	"io"
)

// The canonical 44-byte uncompressed WAV header: RIFF chunk, "fmt "
// subchunk with PCM format code 1, then the data subchunk. External
// tools depend on this layout byte for byte.
type wavHeader struct {
	ChunkID   [4]byte // "RIFF"
	ChunkSize uint32  // 36 + data length
	Format    [4]byte // "WAVE"
}

type wavFmtChunk struct {
	SubchunkID    [4]byte // "fmt "
	SubchunkSize  uint32  // 16 for PCM
	AudioFormat   uint16  // 1 = PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16
}

type wavDataChunk struct {
	SubchunkID   [4]byte // "data"
	SubchunkSize uint32  // payload bytes
}

// EncodeWAV writes interleaved 16-bit samples as a PCM WAV stream.
func EncodeWAV(w io.Writer, samples []int16, sampleRate, channels int) error {
	dataLen := uint32(len(samples) * 2)

	header := wavHeader{
		ChunkID:   [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize: 36 + dataLen,
		Format:    [4]byte{'W', 'A', 'V', 'E'},
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	fmtChunk := wavFmtChunk{
		SubchunkID:    [4]byte{'f', 'm', 't', ' '},
		SubchunkSize:  16,
		AudioFormat:   1,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * 2),
		BlockAlign:    uint16(channels * 2),
		BitsPerSample: 16,
	}
	if err := binary.Write(w, binary.LittleEndian, fmtChunk); err != nil {
		return err
	}

	dataChunk := wavDataChunk{
		SubchunkID:   [4]byte{'d', 'a', 't', 'a'},
		SubchunkSize: dataLen,
	}
	if err := binary.Write(w, binary.LittleEndian, dataChunk); err != nil {
		return err
	}

	return binary.Write(w, binary.LittleEndian, samples)
}
