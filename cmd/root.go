package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chordforge",
	Short: "Chord analysis and transformation for MIDI files",
	Long:  `Detects chords in Standard MIDI Files, names them, and rewrites them with voice leading.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
