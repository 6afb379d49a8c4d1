package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chordwheel",
	Short: "Circle-of-fifths songwriting engine",
	Long:  `Writes, renders, and exports chord progressions built around the circle of fifths.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
