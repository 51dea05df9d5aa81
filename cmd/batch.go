package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chordforge/chordforge/cache"
	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/processor"
	"github.com/chordforge/chordforge/util"
	"github.com/spf13/cobra"
)

var batchMax int

func init() {
	batchCmd.Flags().IntVar(&batchMax, "max", 0, "stop after this many files (0 = no limit)")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyzes every MIDI file under a directory",
	Long:  `Analyzes every MIDI file under a directory and writes one analysis dump per file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return batch(args[0])
	},
}

func batch(dir string) error {
	paths := util.GatherAllMidiPaths(dir, batchMax)
	if len(paths) == 0 {
		return fmt.Errorf("no midi files found under %v", dir)
	}

	outDir := constants.GetOutputDir()
	if err := os.MkdirAll(outDir, 0777); err != nil {
		return err
	}

	// Each file gets its own document context; the detection cache is the
	// only shared piece.
	shared := cache.New()

	for i, path := range paths {
		fmt.Printf("Processing %v of %v midi files\n", i+1, len(paths))

		proc := processor.NewWithCache(shared)
		if err := proc.Load(path); err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
			continue
		}

		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := proc.SaveAnalysis(filepath.Join(outDir, base+".txt")); err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
		}
	}
	return nil
}
