package cmd

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/constants"
	"github.com/shhawkins/chord-wheel-writer/fx"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/registry"
	"github.com/shhawkins/chord-wheel-writer/render"
	"github.com/shhawkins/chord-wheel-writer/songfile"
	"github.com/shhawkins/chord-wheel-writer/synth"
	"github.com/shhawkins/chord-wheel-writer/transport"
	"github.com/shhawkins/chord-wheel-writer/voicing"
)

var playInstrument string

func init() {
	playCmd.Flags().StringVarP(&playInstrument, "instrument", "i", "", "instrument id (overrides the song file)")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <song.yaml>",
	Short: "Plays a song through the default audio device",
	Long:  `Plays a song through the default audio device`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args[0])
	},
}

// audioStream feeds the oto player: it mixes the synth engine into a
// mono block, duplicates to stereo, runs the effects chain, and encodes
// 16-bit little-endian frames. It never returns EOF; playback ends when
// the transport stops and the command closes the player.
type audioStream struct {
	engine *synth.Engine
	chain  *fx.Chain
	mono   []float64
	stereo []float64
}

func (s *audioStream) Read(p []byte) (int, error) {
	frames := len(p) / (constants.NumChannels * 2)
	if frames > len(s.mono) {
		frames = len(s.mono)
	}
	if frames == 0 {
		return 0, nil
	}

	for i := 0; i < frames; i++ {
		s.mono[i] = 0
	}
	s.engine.Process(s.mono, frames)
	for i := 0; i < frames; i++ {
		s.stereo[i*2] = s.mono[i]
		s.stereo[i*2+1] = s.mono[i]
	}
	if err := s.chain.Process(s.stereo[:frames*2]); err != nil {
		return 0, err
	}

	for i, sample := range render.Quantize(s.stereo[:frames*2]) {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(sample))
	}
	return frames * constants.NumChannels * 2, nil
}

func runPlay(cmd *cobra.Command, songPath string) error {
	song, effects, instrument, err := songfile.Load(songPath)
	if err != nil {
		return err
	}
	if playInstrument != "" {
		instrument = playInstrument
	}
	settings := model.DefaultEffectSettings()
	if effects != nil {
		settings = *effects
	}

	reg, err := loadInstruments(cmd.Context(), instrument)
	if err != nil {
		return err
	}
	def, err := reg.Resolve(cmd.Context(), instrument)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	chain, err := fx.NewChain(settings, constants.SampleRate)
	if err != nil {
		return err
	}
	defer chain.Dispose()

	engine := synth.NewEngine(constants.SampleRate, def)
	spb := song.SecondsPerBeat()
	trigger := func(ev model.ChordEvent) {
		for _, note := range voicing.Voice(ev.Chord.Notes, constants.BaseOctave) {
			engine.NoteOn(note.MIDINote(), render.NoteVelocity, ev.DurationBeats*spb)
		}
	}

	sched := transport.New(song.Tempo, trigger, engine)
	events, derivationErr := render.SongEvents(song)
	if derivationErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", derivationErr)
	}
	sched.Schedule(events)

	const bytesPerSample = 2
	ctx, ready, err := oto.NewContext(constants.SampleRate, constants.NumChannels, bytesPerSample)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	const blockFrames = 2048
	player := ctx.NewPlayer(&audioStream{
		engine: engine,
		chain:  chain,
		mono:   make([]float64, blockFrames),
		stereo: make([]float64, blockFrames*constants.NumChannels),
	})
	defer player.Close()
	player.Play()

	fmt.Fprintf(cmd.OutOrStdout(), "playing %s (%.1fs)\n", songPath, render.TotalSeconds(song))

	sched.Play()
	for sched.State().Status != model.PlaybackStopped {
		select {
		case <-cmd.Context().Done():
			sched.Stop()
			return cmd.Context().Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	// let the release tails ring out before tearing the device down
	time.Sleep(time.Duration(constants.TailSeconds * float64(time.Second)))
	return nil
}
