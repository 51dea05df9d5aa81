package chord

import (
	"sort"

	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/model"
)

// Detect groups notes whose onsets lie within tolerance ticks of an anchor
// into chords. A chord needs at least three distinct pitches. Duration runs
// to the next anchor; the final chord gets the longest member duration.
func Detect(notes []model.Note, tolerance uint32) []model.Chord {
	if len(notes) == 0 {
		return nil
	}

	var anchors []uint32
	members := make(map[uint32][]model.Note)

	for _, note := range notes {
		assigned := false
		for _, anchor := range anchors {
			if tickDistance(note.Start, anchor) <= int64(tolerance) {
				members[anchor] = append(members[anchor], note)
				assigned = true
				break
			}
		}
		if !assigned {
			anchors = append(anchors, note.Start)
			members[note.Start] = append(members[note.Start], note)
		}
	}

	sort.Slice(anchors, func(i, j int) bool { return anchors[i] < anchors[j] })

	var chords []model.Chord
	for i, anchor := range anchors {
		pitches := distinctPitches(members[anchor])
		if len(pitches) < constants.MinChordSize {
			continue
		}

		var duration uint32
		if i < len(anchors)-1 {
			duration = anchors[i+1] - anchor
		} else {
			for _, note := range members[anchor] {
				if note.Duration > duration {
					duration = note.Duration
				}
			}
		}

		chords = append(chords, model.Chord{
			Notes:    pitches,
			Name:     Identify(pitches),
			Start:    anchor,
			Duration: duration,
		})
	}

	return chords
}

func distinctPitches(notes []model.Note) model.Notes {
	seen := make(map[uint8]bool)
	var pitches model.Notes
	for _, note := range notes {
		if !seen[note.Pitch] {
			seen[note.Pitch] = true
			pitches = append(pitches, note.Pitch)
		}
	}
	sort.Slice(pitches, func(i, j int) bool { return pitches[i] < pitches[j] })
	return pitches
}

func tickDistance(a, b uint32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}
