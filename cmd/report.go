package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shhawkins/chord-wheel-writer/midifile"
	"github.com/shhawkins/chord-wheel-writer/model"
	"github.com/shhawkins/chord-wheel-writer/render"
	"github.com/shhawkins/chord-wheel-writer/songfile"
	"github.com/shhawkins/chord-wheel-writer/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <song.yaml>",
	Short: "Summarizes a song file",
	Long:  `Summarizes a song file`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, _, instrument, err := songfile.Load(args[0])
		if err != nil {
			return err
		}
		return report(cmd, song, instrument)
	},
}

func report(cmd *cobra.Command, song *model.Song, instrument string) error {
	out := cmd.OutOrStdout()

	var chords, rests int
	symbolCounts := make(map[string]int)
	for _, sec := range song.Sections {
		for _, m := range sec.Measures {
			for _, beat := range m.Beats {
				if beat.Chord == nil {
					rests++
					continue
				}
				chords++
				symbolCounts[beat.Chord.Symbol]++
			}
		}
	}

	fmt.Fprintf(out, "title: %v\n", song.Title)
	fmt.Fprintf(out, "tempo: %v BPM, %v/%v\n", song.Tempo, song.TimeSig.Numerator, song.TimeSig.Denominator)
	if instrument != "" {
		fmt.Fprintf(out, "instrument: %v\n", instrument)
	}
	fmt.Fprintf(out, "sections: %v\n", len(song.Sections))
	for _, sec := range song.Sections {
		ts := song.SectionTimeSig(&sec)
		fmt.Fprintf(out, "  %-12s %v measures (%v/%v)\n", sec.Name, len(sec.Measures), ts.Numerator, ts.Denominator)
	}
	fmt.Fprintf(out, "beats: %v (%v chords, %v rests)\n", song.TotalBeats(), chords, rests)
	fmt.Fprintf(out, "render length: %.1fs\n", render.TotalSeconds(song))
	fmt.Fprintf(out, "export length: %v ticks\n", midifile.TotalTicks(song))

	symbols := util.GetKeys(symbolCounts)
	sort.Strings(symbols)
	fmt.Fprintln(out, "chords used:")
	for _, sym := range symbols {
		fmt.Fprintf(out, "  %-8s x%v\n", sym, symbolCounts[sym])
	}
	return nil
}
