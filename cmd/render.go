package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/registry"
	"github.com/shhawkins/chord-wheel-writer/render"
	"github.com/shhawkins/chord-wheel-writer/songfile"
)

var renderInstrument string

func init() {
	renderCmd.Flags().StringVarP(&renderInstrument, "instrument", "i", "", "instrument id (overrides the song file)")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <song.yaml> <out.wav>",
	Short: "Renders a song to a WAV file",
	Long:  `Renders a song to a WAV file`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args[0], args[1])
	},
}

func runRender(cmd *cobra.Command, songPath, outPath string) error {
	song, effects, instrument, err := songfile.Load(songPath)
	if err != nil {
		return err
	}
	if renderInstrument != "" {
		instrument = renderInstrument
	}
	settings := model.DefaultEffectSettings()
	if effects != nil {
		settings = *effects
	}

	reg, err := loadInstruments(cmd.Context(), instrument)
	if err != nil {
		return err
	}

	r := render.NewRenderer(reg)
	if err := r.RenderFile(cmd.Context(), song, settings, instrument, outPath); err != nil {
		if errors.Is(err, errs.ErrUnknownChordQuality) || errors.Is(err, errs.ErrInstrumentLoadFailed) {
			// non-fatal: the file was written with substitutes
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		} else {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%.1fs)\n", outPath, render.TotalSeconds(song))
	return nil
}

// loadInstruments builds the registry for a run. Sample instruments
// resolve through the catalog when one is configured; the default
// synthesized voice is always available.
func loadInstruments(ctx context.Context, instrument string) (*registry.Registry, error) {
	reg := registry.New()
	if instrument == "" || instrument == registry.DefaultInstrumentID {
		return reg, nil
	}

	if _, err := reg.LoadFromCatalog([]string{instrument}); err != nil {
		return nil, fmt.Errorf("loading instrument catalog: %w", err)
	}
	if _, err := reg.Await(ctx, instrument); err != nil {
		// keep going: the renderer substitutes the default voice
		fmt.Printf("warning: %v\n", err)
	}
	return reg, nil
}
