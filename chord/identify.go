package chord

import (
	"github.com/chordforge/chordforge/theory"
)

// Identify names an ascending pitch list. Root-position interval patterns
// are tried first, then every rotation for slash naming. Anything else
// falls back to "{root} (note, note, ...)".
func Identify(notes []uint8) string {
	if len(notes) < 3 {
		return "N/A"
	}

	intervals := theory.Intervals(notes)
	if quality, ok := matchPattern(intervals); ok {
		return theory.PitchClassName(notes[0]) + quality
	}

	// Rotate: raise the lowest k pitches an octave and rebase. A match
	// means the chord is an inversion whose root is the first unraised
	// pitch.
	for k := 1; k < len(notes); k++ {
		rotated := make([]uint8, 0, len(notes))
		rotated = append(rotated, notes[k:]...)
		for _, n := range notes[:k] {
			rotated = append(rotated, n+12)
		}
		if quality, ok := matchPattern(theory.Intervals(rotated)); ok {
			root := theory.PitchClassName(notes[k])
			bass := theory.PitchClassName(notes[0])
			return root + quality + "/" + bass
		}
	}

	return theory.PitchClassName(notes[0]) + " (" + theory.FormatNotes(notes) + ")"
}

func matchPattern(intervals []int) (string, bool) {
	for quality, pattern := range theory.QualityIntervals {
		if len(pattern) != len(intervals) {
			continue
		}
		match := true
		for i := range pattern {
			if pattern[i] != intervals[i] {
				match = false
				break
			}
		}
		if match {
			return quality, true
		}
	}
	return "", false
}
