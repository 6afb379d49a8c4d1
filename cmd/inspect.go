package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/theory"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Inspects a key on the wheel",
	Long:  `Inspects a key on the wheel`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd, args[0])
	},
}

func inspect(cmd *cobra.Command, keyName string) error {
	key, err := theory.ParsePitchClass(keyName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	spell := theory.SpellingForKey(key)
	pos := theory.PositionOf(key)
	chords := theory.ChordsAtPosition(pos)

	fmt.Fprintf(out, "key: %v major\n", theory.NoteName(key, spell))
	fmt.Fprintf(out, "wheel position: %v\n", pos)
	fmt.Fprintf(out, "relative minor: %vm\n", theory.NoteName(chords.Minor, spell))

	sharps, flats := theory.KeySignature(key)
	switch {
	case sharps > 0:
		fmt.Fprintf(out, "key signature: %v sharps\n", sharps)
	case flats > 0:
		fmt.Fprintf(out, "key signature: %v flats\n", flats)
	default:
		fmt.Fprintln(out, "key signature: no accidentals")
	}

	fmt.Fprintln(out, "diatonic chords:")
	for _, m := range theory.DiatonicMembership(key) {
		symbol := theory.Symbol(m.Root, m.Quality, spell)
		fmt.Fprintf(out, "  %-4s %-6s position %v (%v ring)\n", m.Numeral, symbol, m.Position, m.Ring)
	}
	return nil
}
