package songfile

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/theory"
)

// The on-disk document keeps chords as symbols ("Abmaj7", "F#m7b5")
// rather than interval stacks, so files stay hand-editable. Loading
// resolves every symbol through the theory tables and stamps each beat
// with a fresh id.

// Documents travel as YAML on disk and as JSON over the song endpoint;
// both tag sets carry the same snake_case field names.

type Document struct {
	Title      string                `yaml:"title" json:"title"`
	Tempo      int                   `yaml:"tempo" json:"tempo"`
	TimeSig    TimeSignatureDoc      `yaml:"time_signature" json:"time_signature"`
	Instrument string                `yaml:"instrument,omitempty" json:"instrument,omitempty"`
	Effects    *model.EffectSettings `yaml:"effects,omitempty" json:"effects,omitempty"`
	Sections   []SectionDoc          `yaml:"sections" json:"sections"`
}

type TimeSignatureDoc struct {
	Numerator   uint8 `yaml:"numerator" json:"numerator"`
	Denominator uint8 `yaml:"denominator" json:"denominator"`
}

type SectionDoc struct {
	Name     string            `yaml:"name" json:"name"`
	TimeSig  *TimeSignatureDoc `yaml:"time_signature,omitempty" json:"time_signature,omitempty"`
	Measures []MeasureDoc      `yaml:"measures" json:"measures"`
}

type MeasureDoc struct {
	Beats []BeatDoc `yaml:"beats" json:"beats"`
}

// A beat with no chord is a rest. Duration defaults to one beat.
type BeatDoc struct {
	Chord    string  `yaml:"chord,omitempty" json:"chord,omitempty"`
	Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// Load reads a YAML song file and resolves it to the engine model.
func Load(path string) (*model.Song, *model.EffectSettings, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, "", fmt.Errorf("parse %s: %w", path, err)
	}

	song, err := doc.Song()
	if err != nil {
		return nil, nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return song, doc.Effects, doc.Instrument, nil
}

// Save writes a song back to its document form.
func Save(path string, song *model.Song, effects *model.EffectSettings, instrument string) error {
	doc := FromSong(song)
	doc.Effects = effects
	doc.Instrument = instrument

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Song converts the document into the engine model, resolving every
// chord symbol. Symbol errors carry the section/measure/beat location.
func (d *Document) Song() (*model.Song, error) {
	if d.Tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %v", d.Tempo)
	}
	if d.TimeSig.Denominator == 0 {
		return nil, fmt.Errorf("time signature denominator must be set")
	}

	song := &model.Song{
		Title:   d.Title,
		Tempo:   d.Tempo,
		TimeSig: model.TimeSignature{Numerator: d.TimeSig.Numerator, Denominator: d.TimeSig.Denominator},
	}

	for si, secDoc := range d.Sections {
		sec := model.Section{Name: secDoc.Name}
		if secDoc.TimeSig != nil {
			sec.TimeSig = &model.TimeSignature{
				Numerator:   secDoc.TimeSig.Numerator,
				Denominator: secDoc.TimeSig.Denominator,
			}
		}
		for mi, mDoc := range secDoc.Measures {
			var measure model.Measure
			for bi, bDoc := range mDoc.Beats {
				beat, err := bDoc.beat()
				if err != nil {
					return nil, fmt.Errorf("section %d measure %d beat %d: %w", si, mi, bi, err)
				}
				measure.Beats = append(measure.Beats, beat)
			}
			sec.Measures = append(sec.Measures, measure)
		}
		song.Sections = append(song.Sections, sec)
	}
	return song, nil
}

func (b BeatDoc) beat() (model.Beat, error) {
	beat := model.Beat{ID: uuid.NewString(), Duration: b.Duration}
	if beat.Duration == 0 {
		beat.Duration = 1
	}
	if beat.Duration < 0 {
		return model.Beat{}, fmt.Errorf("duration must be positive, got %v", b.Duration)
	}
	if b.Chord == "" {
		return beat, nil
	}

	root, quality, err := theory.ParseSymbol(b.Chord)
	if err != nil {
		return model.Beat{}, err
	}
	chord, err := theory.BuildChord(root, quality, theory.SpellingForKey(root))
	if err != nil {
		return model.Beat{}, err
	}
	beat.Chord = &chord
	return beat, nil
}

// FromSong projects the engine model back to document form.
func FromSong(song *model.Song) *Document {
	doc := &Document{
		Title: song.Title,
		Tempo: song.Tempo,
		TimeSig: TimeSignatureDoc{
			Numerator:   song.TimeSig.Numerator,
			Denominator: song.TimeSig.Denominator,
		},
	}
	for _, sec := range song.Sections {
		secDoc := SectionDoc{Name: sec.Name}
		if sec.TimeSig != nil {
			secDoc.TimeSig = &TimeSignatureDoc{
				Numerator:   sec.TimeSig.Numerator,
				Denominator: sec.TimeSig.Denominator,
			}
		}
		for _, m := range sec.Measures {
			var mDoc MeasureDoc
			for _, beat := range m.Beats {
				bDoc := BeatDoc{Duration: beat.Duration}
				if beat.Chord != nil {
					bDoc.Chord = beat.Chord.Symbol
				}
				mDoc.Beats = append(mDoc.Beats, bDoc)
			}
			secDoc.Measures = append(secDoc.Measures, mDoc)
		}
		doc.Sections = append(doc.Sections, secDoc)
	}
	return doc
}
