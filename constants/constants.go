package constants

import "os"

func GetOutputDir() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// Notes whose onsets land within this many ticks of each other are treated
// as one chord attack.
const DefaultTimeTolerance = 120

// Groups with fewer distinct pitches than this are not chords.
const MinChordSize = 3

const MaxHistorySize = 50

// Voice leading search bounds.
const DefaultMaxVoiceMovement = 7
const MinOctave = 0
const MaxOctave = 10
const FallbackOctave = 5

// Confidence floors for the analysis passes.
const KeyScoreThreshold = 0.6
const ProgressionConfidenceThreshold = 0.6
