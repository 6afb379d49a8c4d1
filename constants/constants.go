package constants

import "os"

// Render format. The exported WAV and the live stream both use this.
const (
	SampleRate    = 44100
	NumChannels   = 2
	BitsPerSample = 16
	BytesPerFrame = NumChannels * BitsPerSample / 8
)

// TailSeconds is appended to every offline render so the last chord
// can decay instead of being cut at the final beat boundary.
const TailSeconds = 2.0

// TicksPerQuarter is the resolution used for symbolic (SMF) export.
const TicksPerQuarter = 960

// BaseOctave is where the voicing engine puts chord roots unless a note
// carries an explicit octave.
const BaseOctave = 4

// MaxTriadNotes is how many notes get voiced near the base octave before
// extensions (9th/11th/13th) start stacking additional octaves.
const MaxTriadNotes = 4

func GetInstrumentTableName() string {
	if name := os.Getenv("INSTRUMENT_TABLE"); name != "" {
		return name
	}
	return "chordwheel-instruments"
}

func GetInstrumentDBEndpoint() string {
	return os.Getenv("INSTRUMENT_DB_ENDPOINT")
}

func GetSampleDir() string {
	if path := os.Getenv("SAMPLE_PATH"); path != "" {
		return path
	}
	return "./samples"
}
