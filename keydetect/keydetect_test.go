package keydetect

import (
	"testing"

	"github.com/chordforge/chordforge/model"
	"github.com/stretchr/testify/assert"
)

func namedChord(name string, notes ...uint8) model.Chord {
	return model.Chord{Name: name, Notes: notes}
}

func TestDetectCMajor(t *testing.T) {
	chords := []model.Chord{
		namedChord("C", 60, 64, 67),
		namedChord("F", 65, 69, 72),
		namedChord("G7", 67, 71, 74, 77),
		namedChord("C", 60, 64, 67),
	}

	key := NewDetector().Detect(chords)
	assert := assert.New(t)
	assert.NotNil(key)
	assert.Equal("C", key.Root)
	assert.True(key.Major)
	assert.Equal("C", key.Name())
}

func TestDetectAMinor(t *testing.T) {
	chords := []model.Chord{
		namedChord("Am", 57, 60, 64),
		namedChord("Dm", 62, 65, 69),
		namedChord("Em", 64, 67, 71),
		namedChord("Am", 57, 60, 64),
	}

	key := NewDetector().Detect(chords)
	assert := assert.New(t)
	assert.NotNil(key)
	assert.Equal("A", key.Root)
	assert.False(key.Major)
	assert.Equal("Am", key.Name())
}

func TestDetectNothingToScore(t *testing.T) {
	d := NewDetector()
	assert.Nil(t, d.Detect(nil))
	assert.Nil(t, d.Detect([]model.Chord{{Name: "C"}}))
}

func TestDetectIsDeterministic(t *testing.T) {
	chords := []model.Chord{
		namedChord("C", 60, 64, 67),
		namedChord("G", 55, 59, 62),
	}
	d := NewDetector()
	first := d.Detect(chords)
	second := d.Detect(chords)
	assert.Equal(t, first, second)
}

func TestKeySignatureLookup(t *testing.T) {
	d := NewDetector()

	am := d.KeySignature("Am")
	assert := assert.New(t)
	assert.NotNil(am)
	assert.Equal("A", am.Root)
	assert.False(am.Major)
	assert.Equal([]uint8{9, 11, 0, 2, 4, 5, 7}, am.ScaleDegrees)

	assert.Nil(d.KeySignature("Hm"))
	assert.Len(d.AllKeyNames(), 24)
}

func TestDiatonicChordNames(t *testing.T) {
	d := NewDetector()
	assert.Equal(t,
		[]string{"C", "Dm", "Em", "F", "G", "Am", "Bdim"},
		DiatonicChordNames(d.KeySignature("C")))
	assert.Nil(t, DiatonicChordNames(nil))
}
