// Package progression slides known quality templates over a labelled chord
// sequence and scores each window.
package progression

import (
	"sort"

	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/theory"
)

// Pattern is a sequence of bare chord qualities with a display name, the
// keys the progression commonly appears in, and which window position is
// the tonic chord (used only for the display name).
type Pattern struct {
	Qualities  []string
	Name       string
	CommonKeys []string
	TonicIndex int
}

func defaultPatterns() []Pattern {
	return []Pattern{
		{Qualities: []string{"m7", "7", "maj7"}, Name: "ii-V-I", CommonKeys: []string{"C", "F", "Bb", "Eb", "G", "D", "A"}, TonicIndex: 2},
		{Qualities: []string{"", "", ""}, Name: "I-IV-V", CommonKeys: []string{"C", "G", "D", "A", "E", "F"}},
		{Qualities: []string{"", "", "m", ""}, Name: "I-V-vi-IV", CommonKeys: []string{"C", "G", "D", "A", "F"}},
		{Qualities: []string{"", "m", "", ""}, Name: "I-vi-IV-V (50s)", CommonKeys: []string{"C", "G", "D", "A", "F"}},
		{Qualities: []string{"m", "", "", ""}, Name: "vi-IV-I-V", CommonKeys: []string{"C", "G", "D", "A", "F"}, TonicIndex: 2},
		{Qualities: []string{"", "", "m", "m", "", "", "", ""}, Name: "Canon Progression", CommonKeys: []string{"D", "G", "C"}},
		{Qualities: []string{"m", "", "", ""}, Name: "Andalusian Cadence", CommonKeys: []string{"Am", "Em", "Dm"}},
		{Qualities: []string{"", "", ""}, Name: "Mixolydian Vamp", CommonKeys: []string{"G", "D", "A", "E"}},
		{Qualities: []string{"m", "m", "m"}, Name: "Minor Blues", CommonKeys: []string{"Am", "Em", "Dm", "Gm"}},
		{Qualities: []string{"", "7", "", "m"}, Name: "Major-Minor Change", CommonKeys: []string{"C", "G", "D", "F"}},
	}
}

type Analyzer struct {
	patterns []Pattern
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{patterns: defaultPatterns()}
}

func (a *Analyzer) AddPattern(p Pattern) {
	a.patterns = append(a.patterns, p)
}

func (a *Analyzer) Patterns() []Pattern {
	return a.patterns
}

// Detect scans every window of every pattern. Exact quality matches score
// 1.0 (a bare major template also accepts maj7, 6 and 9 colorations),
// same-first-letter matches score 0.5, anything else kills the window.
// Windows starting on a common key for the pattern are boosted, others
// dampened; results at or above the confidence floor come back sorted by
// confidence, best first.
func (a *Analyzer) Detect(chords []model.Chord) []model.ProgressionMatch {
	if len(chords) < 2 {
		return nil
	}

	type part struct{ root, quality string }
	parts := make([]part, len(chords))
	for i, c := range chords {
		root, quality := theory.ParseChordName(c.Name)
		parts[i] = part{root: root, quality: quality}
	}

	var results []model.ProgressionMatch

	for _, pattern := range a.patterns {
		size := len(pattern.Qualities)
		if size > len(chords) {
			continue
		}

		for start := 0; start+size <= len(chords); start++ {
			score := 0.0
			matched := true

			for i, want := range pattern.Qualities {
				got := parts[start+i].quality
				switch {
				case qualityMatches(want, got):
					score += 1.0
				case want != "" && got != "" && want[0] == got[0]:
					score += 0.5
				default:
					matched = false
				}
				if !matched {
					break
				}
			}
			if !matched {
				continue
			}

			confidence := score / float64(size)
			if startsOnCommonKey(pattern, parts[start].root) {
				confidence *= 1.2
			} else {
				confidence *= 0.8
			}
			if confidence < constants.ProgressionConfidenceThreshold {
				continue
			}

			tonic := parts[start+pattern.TonicIndex]
			keyName := tonic.root
			if pattern.Qualities[pattern.TonicIndex] == "m" {
				keyName += "m"
			}

			indices := make([]int, size)
			for i := range indices {
				indices[i] = start + i
			}
			results = append(results, model.ProgressionMatch{
				Name:         pattern.Name + " in " + keyName,
				Confidence:   confidence,
				ChordIndices: indices,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

func qualityMatches(want, got string) bool {
	if want == "" {
		return got == "" || got == "maj7" || got == "6" || got == "9"
	}
	return want == got
}

func startsOnCommonKey(pattern Pattern, root string) bool {
	for _, key := range pattern.CommonKeys {
		if key == root || key == root+"m" {
			return true
		}
	}
	return false
}
