package processor

import (
	"fmt"
	"os"
	"strings"

	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/theory"
)

// AnalysisText renders the chord analysis dump: a header block followed by
// one record per chord, with the original voicing for transformed chords.
func (p *Processor) AnalysisText() string {
	var b strings.Builder

	b.WriteString("MIDI Chord Analysis\n")
	b.WriteString("===================\n")
	fmt.Fprintf(&b, "File: %v\n", p.filename)
	fmt.Fprintf(&b, "Number of chords: %v\n\n", len(p.chords))

	b.WriteString("Chord List:\n")
	b.WriteString("----------\n")

	for i, c := range p.chords {
		fmt.Fprintf(&b, "Chord %v: %v at %v ticks, duration: %v ticks\n", i+1, c.Name, c.Start, c.Duration)
		fmt.Fprintf(&b, "  Notes: %v\n", theory.FormatNotes(c.Notes))
		if c.Transformed {
			fmt.Fprintf(&b, "  Original: %v\n", c.OriginalName)
			fmt.Fprintf(&b, "  Original Notes: %v\n", theory.FormatNotes(c.OriginalNotes))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// SaveAnalysis writes the analysis dump as UTF-8 text.
func (p *Processor) SaveAnalysis(path string) error {
	if p.file == nil {
		return ErrNoDocument
	}
	if err := os.WriteFile(path, []byte(p.AnalysisText()), 0666); err != nil {
		return fmt.Errorf("could not write analysis: %w", err)
	}
	return nil
}

// ChordInfos flattens the chord list into the JSON-friendly records served
// over HTTP and printed by the CLI.
func (p *Processor) ChordInfos() []model.ChordInfo {
	infos := make([]model.ChordInfo, 0, len(p.chords))
	for i, c := range p.chords {
		names := make([]string, len(c.Notes))
		for j, n := range c.Notes {
			names[j] = theory.MidiToName(n)
		}
		info := model.ChordInfo{
			Index:       i + 1,
			Name:        c.Name,
			Start:       c.Start,
			Duration:    c.Duration,
			Pitches:     append(model.Notes(nil), c.Notes...),
			NoteNames:   names,
			Transformed: c.Transformed,
		}
		if c.Transformed {
			info.OriginalName = c.OriginalName
			info.OriginalNotes = append(model.Notes(nil), c.OriginalNotes...)
		}
		infos = append(infos, info)
	}
	return infos
}
