// Package keydetect scores the 24 major and minor keys against a chord
// sequence using a pitch-class histogram plus chord-function cues.
package keydetect

import (
	"sort"

	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/theory"
	"github.com/chordforge/chordforge/util"
)

var keyRoots = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var majorOffsets = []uint8{0, 2, 4, 5, 7, 9, 11}
var minorOffsets = []uint8{0, 2, 3, 5, 7, 8, 10}

var majorDiatonic = map[int]string{1: "", 2: "m", 3: "m", 4: "", 5: "", 6: "m", 7: "dim"}
var minorDiatonic = map[int]string{1: "m", 2: "dim", 3: "", 4: "m", 5: "m", 6: "", 7: ""}

type Detector struct {
	keys map[string]*model.KeySignature
}

func NewDetector() *Detector {
	keys := make(map[string]*model.KeySignature)

	for _, root := range keyRoots {
		tonic := theory.NameToMidi(root) % 12
		keys[root] = &model.KeySignature{
			Root:           root,
			Major:          true,
			ScaleDegrees:   scaleDegrees(tonic, majorOffsets),
			DiatonicChords: majorDiatonic,
		}
		keys[root+"m"] = &model.KeySignature{
			Root:           root,
			Major:          false,
			ScaleDegrees:   scaleDegrees(tonic, minorOffsets),
			DiatonicChords: minorDiatonic,
		}
	}

	return &Detector{keys: keys}
}

func scaleDegrees(tonic uint8, offsets []uint8) []uint8 {
	degrees := make([]uint8, len(offsets))
	for i, off := range offsets {
		degrees[i] = (tonic + off) % 12
	}
	return degrees
}

// Detect returns the best-scoring key, or nil when no key reaches the
// confidence floor or there is nothing to score.
func (d *Detector) Detect(chords []model.Chord) *model.KeySignature {
	if len(chords) == 0 {
		return nil
	}

	var hist [12]int
	total := 0
	for _, c := range chords {
		for _, n := range c.Notes {
			hist[n%12]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	var bestKey *model.KeySignature
	bestScore := -1.0

	for _, name := range d.AllKeyNames() {
		key := d.keys[name]
		score := d.score(key, chords, hist[:], total)
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}

	if bestScore < constants.KeyScoreThreshold {
		return nil
	}
	res := *bestKey
	return &res
}

func (d *Detector) score(key *model.KeySignature, chords []model.Chord, hist []int, total int) float64 {
	inKey := 0
	for pc := 0; pc < 12; pc++ {
		if inScale(key, uint8(pc)) {
			inKey += hist[pc]
		}
	}
	score := float64(inKey) / float64(total)

	tonic := int(theory.NameToMidi(key.Root)) % 12
	dominant := (tonic + 7) % 12
	subdominant := (tonic + 5) % 12

	if hist[tonic] > 0 {
		score *= 1.2
	}
	if hist[dominant] > 0 {
		score *= 1.1
	}
	if hist[subdominant] > 0 {
		score *= 1.05
	}

	hasTonicChord := false
	hasDominantChord := false
	hasSubdominantChord := false

	for _, c := range chords {
		root, quality := theory.ParseChordName(c.Name)
		rootClass := int(theory.NameToMidi(root)) % 12

		switch rootClass {
		case tonic:
			if (key.Major && (quality == "" || quality == "maj7" || quality == "6")) ||
				(!key.Major && (quality == "m" || quality == "m7")) {
				hasTonicChord = true
			}
		case dominant:
			if quality == "" || quality == "7" {
				hasDominantChord = true
			}
		case subdominant:
			if (key.Major && (quality == "" || quality == "maj7")) ||
				(!key.Major && (quality == "m" || quality == "m7")) {
				hasSubdominantChord = true
			}
		}
	}

	if hasTonicChord {
		score *= 1.3
	}
	if hasDominantChord {
		score *= 1.2
	}
	if hasSubdominantChord {
		score *= 1.1
	}

	return score
}

func inScale(key *model.KeySignature, pc uint8) bool {
	for _, degree := range key.ScaleDegrees {
		if degree == pc {
			return true
		}
	}
	return false
}

// KeySignature looks up a key by name ("F#", "Am").
func (d *Detector) KeySignature(name string) *model.KeySignature {
	if key, ok := d.keys[name]; ok {
		res := *key
		return &res
	}
	return nil
}

func (d *Detector) AllKeyNames() []string {
	names := util.GetKeys(d.keys)
	sort.Strings(names)
	return names
}

// DiatonicChordNames spells out the default chord on every scale degree of
// a key, tonic first.
func DiatonicChordNames(key *model.KeySignature) []string {
	if key == nil {
		return nil
	}
	names := make([]string, 0, len(key.ScaleDegrees))
	for degree := 1; degree <= len(key.ScaleDegrees); degree++ {
		root := theory.PitchClassName(key.ScaleDegrees[degree-1])
		names = append(names, theory.FormatChordName(root, key.DiatonicChords[degree]))
	}
	return names
}
