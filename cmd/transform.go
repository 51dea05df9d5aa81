package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/processor"
	"github.com/chordforge/chordforge/theory"
	"github.com/spf13/cobra"
)

var (
	transformIndices    string
	transformTargets    string
	transformMode       string
	transformInversion  int
	transformPercentage float64
	transformNoVoiceLed bool
	transformOutPath    string
)

func init() {
	transformCmd.Flags().StringVar(&transformIndices, "chords", "", "1-based chord indices, comma-separated (required)")
	transformCmd.Flags().StringVar(&transformTargets, "target", "", "target chord name(s), one or comma-separated per index")
	transformCmd.Flags().StringVar(&transformMode, "mode", "standard", "standard, inversion, percentage or switch")
	transformCmd.Flags().IntVar(&transformInversion, "inversion", 0, "inversion index for mode=inversion")
	transformCmd.Flags().Float64Var(&transformPercentage, "percentage", 100, "interpolation amount for mode=percentage")
	transformCmd.Flags().BoolVar(&transformNoVoiceLed, "no-voice-leading", false, "place the target by octave instead of voice leading")
	transformCmd.Flags().StringVar(&transformOutPath, "out", "", "output midi path (default <input>_transformed.mid)")
	transformCmd.MarkFlagRequired("chords")
	rootCmd.AddCommand(transformCmd)
}

var transformCmd = &cobra.Command{
	Use:   "transform <file.mid>",
	Short: "Rewrites selected chords and saves a new MIDI file",
	Long:  `Rewrites selected chords and saves a new MIDI file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transform(args[0])
	},
}

func parseMode(mode string) (model.TransformationType, error) {
	switch mode {
	case "standard":
		return model.Standard, nil
	case "inversion":
		return model.Inversion, nil
	case "percentage":
		return model.Percentage, nil
	case "switch":
		return model.SwitchTonality, nil
	default:
		return model.Standard, fmt.Errorf("unknown mode %q", mode)
	}
}

func parseIndices(s string) ([]int, error) {
	var res []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad chord index %q", part)
		}
		res = append(res, n-1)
	}
	return res, nil
}

func transform(path string) error {
	mode, err := parseMode(transformMode)
	if err != nil {
		return err
	}
	indices, err := parseIndices(transformIndices)
	if err != nil {
		return err
	}

	proc := processor.New()
	if err := proc.Load(path); err != nil {
		return err
	}

	if mode == model.SwitchTonality {
		for _, index := range indices {
			if err := proc.SwitchTonality(index); err != nil {
				fmt.Printf("Skipping chord %v: %v\n", index+1, err)
			}
		}
	} else {
		if transformTargets == "" {
			return fmt.Errorf("--target is required for mode %v", transformMode)
		}
		targets := strings.Split(transformTargets, ",")
		for i := range targets {
			targets[i] = strings.TrimSpace(targets[i])
		}
		if len(targets) == 1 && len(indices) > 1 {
			single := targets[0]
			targets = make([]string, len(indices))
			for i := range targets {
				targets[i] = single
			}
		}

		opts := model.NewTransformationOptions()
		opts.Type = mode
		opts.Inversion = transformInversion
		opts.Percentage = transformPercentage
		opts.UseVoiceLeading = !transformNoVoiceLed

		skipped, err := proc.Transform(indices, targets, opts)
		if err != nil {
			return err
		}
		for _, index := range skipped {
			fmt.Printf("Skipping chord %v: out of range\n", index+1)
		}
	}

	for _, c := range proc.Chords() {
		if !c.Transformed {
			continue
		}
		fmt.Printf("%v -> %v\n", c.OriginalName, c.Name)
		fmt.Printf("  Original Notes: %v\n", theory.FormatNotes(c.OriginalNotes))
		fmt.Printf("  New Notes: %v\n", theory.FormatNotes(c.Notes))
	}

	out := transformOutPath
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(path, ".midi"), ".mid") + "_transformed.mid"
	}
	if err := proc.Save(out); err != nil {
		return err
	}
	fmt.Printf("Wrote %v\n", out)
	return nil
}
