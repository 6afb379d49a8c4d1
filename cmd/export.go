package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/errs"
	"github.com/shhawkins/chord-wheel-writer/midifile"
	"github.com/shhawkins/chord-wheel-writer/songfile"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <song.yaml> <out.mid>",
	Short: "Exports a song as a Standard MIDI File",
	Long:  `Exports a song as a Standard MIDI File`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, _, _, err := songfile.Load(args[0])
		if err != nil {
			return err
		}

		if err := midifile.WriteFile(song, args[1]); err != nil {
			if !errors.Is(err, errs.ErrUnknownChordQuality) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
		return nil
	},
}
