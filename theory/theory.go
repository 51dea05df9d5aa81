// Package theory holds the pitch-name and chord-quality tables everything
// else is built on. Spelling is sharps-only on output; flats are accepted
// on input and never produced.
package theory

import (
	"fmt"
	"sort"
	"strings"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var noteToIndex = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3,
	"E": 4, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8,
	"Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// QualityIntervals maps a chord quality suffix to its root-position
// interval pattern in semitones. The empty quality is a major triad.
var QualityIntervals = map[string][]int{
	"":      {0, 4, 7},
	"m":     {0, 3, 7},
	"dim":   {0, 3, 6},
	"aug":   {0, 4, 8},
	"sus4":  {0, 5, 7},
	"sus2":  {0, 2, 7},
	"7":     {0, 4, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"m7":    {0, 3, 7, 10},
	"dim7":  {0, 3, 6, 9},
	"m7b5":  {0, 3, 6, 10},
	"aug7":  {0, 4, 8, 10},
	"7sus4": {0, 5, 7, 10},
	"9":     {0, 4, 7, 10, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"m9":    {0, 3, 7, 10, 14},
	"6":     {0, 4, 7, 9},
	"m6":    {0, 3, 7, 9},
	"add9":  {0, 4, 7, 14},
	"madd9": {0, 3, 7, 14},
}

// TonalitySwitch maps each quality to its major/minor counterpart.
var TonalitySwitch = map[string]string{
	"":      "m",
	"m":     "",
	"dim":   "m",
	"aug":   "",
	"7":     "m7",
	"maj7":  "m7",
	"m7":    "maj7",
	"dim7":  "m7b5",
	"m7b5":  "dim7",
	"9":     "m9",
	"maj9":  "m9",
	"m9":    "maj9",
	"6":     "m6",
	"m6":    "6",
	"add9":  "madd9",
	"madd9": "add9",
}

// PitchClassName spells a pitch class with sharps.
func PitchClassName(note uint8) string {
	return noteNames[note%12]
}

// MidiToName renders a note number as name plus octave, middle C = C4.
func MidiToName(note uint8) string {
	octave := int(note)/12 - 1
	return fmt.Sprintf("%v%v", noteNames[note%12], octave)
}

// NameToMidi converts a note name, with or without a trailing octave digit,
// to a MIDI note number. Flats and sharps are both accepted. Unknown names
// fall back to middle C.
func NameToMidi(name string) uint8 {
	octave := 4
	note := name
	if len(name) >= 2 {
		last := name[len(name)-1]
		if last >= '0' && last <= '9' {
			octave = int(last - '0')
			note = name[:len(name)-1]
		}
	}

	idx, ok := noteToIndex[note]
	if !ok {
		return 60
	}
	return uint8((octave+1)*12 + idx)
}

// ParseChordName splits a chord name into root and quality, dropping any
// "/bass" suffix. An unrecognized leading letter yields root "C".
func ParseChordName(chordName string) (string, string) {
	base := chordName
	if slash := strings.IndexByte(chordName, '/'); slash >= 0 {
		base = chordName[:slash]
	}
	if base == "" {
		return "C", ""
	}

	root := base[:1]
	rest := base[1:]
	if len(base) >= 2 && (base[1] == '#' || base[1] == 'b') {
		root = base[:2]
		rest = base[2:]
	}
	if _, ok := noteToIndex[root]; !ok {
		return "C", base
	}
	return root, rest
}

func ChordRoot(chordName string) string {
	root, _ := ParseChordName(chordName)
	return root
}

func ChordQuality(chordName string) string {
	_, quality := ParseChordName(chordName)
	return quality
}

func FormatChordName(root, quality string) string {
	return root + quality
}

// ChordNotes builds the pitches of a named chord with its root placed in
// baseOctave. A "/bass" suffix adds the bass note an octave below unless
// the pitch is already present. Unknown qualities default to a major triad.
func ChordNotes(chordName string, baseOctave uint8) []uint8 {
	root, quality := ParseChordName(chordName)
	rootNote := NameToMidi(root)%12 + baseOctave*12

	intervals, ok := QualityIntervals[quality]
	if !ok {
		intervals = QualityIntervals[""]
	}

	var notes []uint8
	for _, interval := range intervals {
		n := int(rootNote) + interval
		if n <= 127 {
			notes = append(notes, uint8(n))
		}
	}

	if slash := strings.IndexByte(chordName, '/'); slash >= 0 && slash+1 < len(chordName) {
		bass := NameToMidi(chordName[slash+1:]) % 12
		if baseOctave > 0 {
			bass += (baseOctave - 1) * 12
		}
		present := false
		for _, n := range notes {
			if n == bass {
				present = true
				break
			}
		}
		if !present {
			notes = append([]uint8{bass}, notes...)
		}
	}

	return notes
}

// Intervals returns the semitone offsets of every pitch above the lowest
// one, sorted ascending.
func Intervals(notes []uint8) []int {
	if len(notes) == 0 {
		return nil
	}
	lowest := notes[0]
	for _, n := range notes {
		if n < lowest {
			lowest = n
		}
	}
	intervals := make([]int, len(notes))
	for i, n := range notes {
		intervals[i] = int(n) - int(lowest)
	}
	sort.Ints(intervals)
	return intervals
}

// FormatNotes renders pitches as comma-separated note names with octaves.
func FormatNotes(notes []uint8) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = MidiToName(n)
	}
	return strings.Join(parts, ", ")
}
