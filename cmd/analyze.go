package cmd

import (
	"fmt"

	"github.com/chordforge/chordforge/keydetect"
	"github.com/chordforge/chordforge/processor"
	"github.com/chordforge/chordforge/theory"
	"github.com/spf13/cobra"
)

var analyzeReportPath string
var analyzeTolerance uint32

func init() {
	analyzeCmd.Flags().StringVar(&analyzeReportPath, "report", "", "write the analysis dump to this file")
	analyzeCmd.Flags().Uint32Var(&analyzeTolerance, "tolerance", 0, "segmentation tick tolerance (0 = default)")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.mid>",
	Short: "Detects and names the chords in a MIDI file",
	Long:  `Detects and names the chords in a MIDI file, then reports key and known progressions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(args[0])
	},
}

func analyze(path string) error {
	proc := processor.New()
	if analyzeTolerance > 0 {
		proc.SetTimeTolerance(analyzeTolerance)
	}
	if err := proc.Load(path); err != nil {
		return err
	}

	chords := proc.Chords()
	fmt.Printf("Detected %v chords in %v\n\n", len(chords), path)
	for i, c := range chords {
		fmt.Printf("Chord %v: %v at %v ticks, duration: %v ticks\n", i+1, c.Name, c.Start, c.Duration)
		fmt.Printf("  Notes: %v\n", theory.FormatNotes(c.Notes))
	}

	if key := proc.DetectKey(); key != nil {
		fmt.Printf("\nDetected key: %v\n", key.Name())
		fmt.Printf("Diatonic chords: %v\n", keydetect.DiatonicChordNames(key))
	} else {
		fmt.Println("\nCould not determine key with confidence.")
	}

	progressions := proc.AnalyzeProgression()
	if len(progressions) == 0 {
		fmt.Println("No recognized progressions found.")
	}
	for _, prog := range progressions {
		fmt.Printf("Found progression: %v (confidence: %.2f)\n", prog.Name, prog.Confidence)
	}

	if analyzeReportPath != "" {
		if err := proc.SaveAnalysis(analyzeReportPath); err != nil {
			return err
		}
		fmt.Printf("\nWrote analysis to %v\n", analyzeReportPath)
	}
	return nil
}
