package processor

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/chordforge/chordforge/cache"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/smf"
	"github.com/stretchr/testify/assert"
)

// writeGroups builds a one-track file with each pitch group struck 960
// ticks apart, every note 480 ticks long.
func writeGroups(t *testing.T, groups ...[]uint8) string {
	t.Helper()

	type timedEvent struct {
		tick  uint32
		event smf.Event
	}
	var events []timedEvent
	for gi, notes := range groups {
		start := uint32(gi) * 960
		for _, p := range notes {
			events = append(events, timedEvent{start, smf.Event{Status: 0x90, Data: []byte{p, 100}}})
			events = append(events, timedEvent{start + 480, smf.Event{Status: 0x80, Data: []byte{p, 0}}})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	track := smf.Track{}
	var prev uint32
	for _, te := range events {
		event := te.event
		event.Delta = te.tick - prev
		prev = te.tick
		track.Events = append(track.Events, event)
	}
	track.Events = append(track.Events, smf.Event{Status: 0xFF, Meta: true, MetaType: smf.MetaEndOfTrack})

	f := &smf.File{Format: 1, Division: 480, Tracks: []smf.Track{track}}
	path := filepath.Join(t.TempDir(), "in.mid")
	assert.NoError(t, f.WriteFile(path))
	return path
}

func loadGroups(t *testing.T, groups ...[]uint8) *Processor {
	t.Helper()
	proc := New()
	assert.NoError(t, proc.Load(writeGroups(t, groups...)))
	return proc
}

func TestLoadDetectsChords(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	chords := proc.Chords()
	assert := assert.New(t)
	assert.Len(chords, 1)
	assert.Equal("C", chords[0].Name)
	assert.Equal(model.Notes{60, 64, 67}, chords[0].Notes)
	assert.Equal(uint32(480), chords[0].Duration)
	assert.False(chords[0].Transformed)
}

func TestLoadFailureKeepsPreviousDocument(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	err := proc.Load(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
	assert.Len(t, proc.Chords(), 1)
	assert.Equal(t, "C", proc.Chords()[0].Name)
}

func TestTransformStandard(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	skipped, err := proc.Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert := assert.New(t)
	assert.NoError(err)
	assert.Empty(skipped)

	c, err := proc.Chord(0)
	assert.NoError(err)
	assert.Equal("Am", c.Name)
	assert.Equal(model.Notes{60, 64, 69}, c.Notes)
	assert.True(c.Transformed)
	assert.Equal("C", c.OriginalName)
	assert.Equal(model.Notes{60, 64, 67}, c.OriginalNotes)

	movements, err := proc.VoiceMovements(0)
	assert.NoError(err)
	assert.Len(movements, 3)
	assert.Equal(2, movements[2].Movement) // G up to A
}

func TestTransformSkipsBadIndices(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	skipped, err := proc.Transform([]int{0, 99}, []string{"Am", "F"}, model.NewTransformationOptions())
	assert.NoError(t, err)
	assert.Equal(t, []int{99}, skipped)
	assert.Equal(t, "Am", proc.Chords()[0].Name)
}

func TestTransformArgumentMismatch(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})
	_, err := proc.Transform([]int{0}, []string{"Am", "F"}, model.NewTransformationOptions())
	assert.Error(t, err)
}

func TestTransformWithoutDocument(t *testing.T) {
	_, err := New().Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert.ErrorIs(t, err, ErrNoChords)
}

func TestSwitchTonality(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67, 71}) // Cmaj7

	assert := assert.New(t)
	assert.NoError(proc.SwitchTonality(0))

	c, _ := proc.Chord(0)
	assert.Equal("Cm7", c.Name)
	assert.Equal(model.Notes{60, 63, 67, 70}, c.Notes)
	assert.Equal("Cmaj7", c.OriginalName)

	assert.ErrorIs(proc.SwitchTonality(5), ErrIndexOutOfRange)
}

func TestSwitchTonalityIgnoresUnmappedQuality(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 61, 62}) // fallback-named cluster

	before := proc.Chords()[0]
	assert.NoError(t, proc.SwitchTonality(0))
	assert.Equal(t, before, proc.Chords()[0])
	assert.False(t, proc.CanUndo())
}

func TestUndoRedoLaw(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})
	initial := proc.Chords()

	_, err := proc.Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert.NoError(t, err)
	_, err = proc.Transform([]int{0}, []string{"F"}, model.NewTransformationOptions())
	assert.NoError(t, err)
	final := proc.Chords()

	assert := assert.New(t)
	assert.True(proc.Undo())
	assert.True(proc.Undo())
	assert.False(proc.Undo())
	assert.Equal(initial, proc.Chords())

	assert.True(proc.Redo())
	assert.True(proc.Redo())
	assert.False(proc.Redo())
	assert.Equal(final, proc.Chords())
}

func TestSaveAppliesTransformations(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	_, err := proc.Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.mid")
	assert.NoError(t, proc.Save(out))

	reloaded := New()
	assert.NoError(t, reloaded.Load(out))

	chords := reloaded.Chords()
	assert.Len(t, chords, 1)
	assert.Equal(t, model.Notes{60, 64, 69}, chords[0].Notes)
	assert.Equal(t, "Am/C", chords[0].Name) // first-inversion spelling of the new voicing
}

func TestSaveWithoutTransformsRoundTrips(t *testing.T) {
	proc := loadGroups(t, []uint8{62, 65, 69, 72}, []uint8{55, 59, 62, 65})

	out := filepath.Join(t.TempDir(), "out.mid")
	assert.NoError(t, proc.Save(out))

	reloaded := New()
	assert.NoError(t, reloaded.Load(out))
	assert.Equal(t, proc.Chords(), reloaded.Chords())
}

func TestSaveWithoutDocument(t *testing.T) {
	assert.ErrorIs(t, New().Save("out.mid"), ErrNoDocument)
}

func TestCacheServesSecondLoad(t *testing.T) {
	path := writeGroups(t, []uint8{60, 64, 67}, []uint8{65, 69, 72})

	shared := cache.New()
	first := NewWithCache(shared)
	assert.NoError(t, first.Load(path))

	second := NewWithCache(shared)
	assert.NoError(t, second.Load(path))
	assert.Equal(t, first.Chords(), second.Chords())
	assert.Equal(t, 1, shared.Len())
}

func TestCachedChordsAreNotAliased(t *testing.T) {
	path := writeGroups(t, []uint8{60, 64, 67})

	shared := cache.New()
	first := NewWithCache(shared)
	assert.NoError(t, first.Load(path))

	_, err := first.Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert.NoError(t, err)

	// A second load must see the untransformed detection result.
	second := NewWithCache(shared)
	assert.NoError(t, second.Load(path))
	assert.Equal(t, "C", second.Chords()[0].Name)
	assert.False(t, second.Chords()[0].Transformed)
}

func TestDetectKeyAndProgression(t *testing.T) {
	proc := loadGroups(t,
		[]uint8{62, 65, 69, 72}, // Dm7
		[]uint8{55, 59, 62, 65}, // G7
		[]uint8{60, 64, 67, 71}, // Cmaj7
	)

	assert := assert.New(t)
	key := proc.DetectKey()
	assert.NotNil(key)
	assert.Equal("C", key.Name())

	matches := proc.AnalyzeProgression()
	assert.NotEmpty(matches)
	assert.Equal("ii-V-I in C", matches[0].Name)
	assert.GreaterOrEqual(matches[0].Confidence, 0.72)
}

func TestAnalysisText(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	_, err := proc.Transform([]int{0}, []string{"Am"}, model.NewTransformationOptions())
	assert.NoError(t, err)

	out := filepath.Join(t.TempDir(), "analysis.txt")
	assert.NoError(t, proc.SaveAnalysis(out))

	text := proc.AnalysisText()
	assert := assert.New(t)
	assert.True(strings.HasPrefix(text, "MIDI Chord Analysis"))
	assert.Contains(text, "Number of chords: 1")
	assert.Contains(text, "Chord 1: Am at 0 ticks, duration: 480 ticks")
	assert.Contains(text, "Notes: C4, E4, A4")
	assert.Contains(text, "Original: C")
	assert.Contains(text, "Original Notes: C4, E4, G4")
}

func TestChordInfos(t *testing.T) {
	proc := loadGroups(t, []uint8{60, 64, 67})

	infos := proc.ChordInfos()
	assert := assert.New(t)
	assert.Len(infos, 1)
	assert.Equal(1, infos[0].Index)
	assert.Equal("C", infos[0].Name)
	assert.Equal([]string{"C4", "E4", "G4"}, infos[0].NoteNames)
}

func TestSetTimeToleranceAffectsNextLoad(t *testing.T) {
	// Two triads 960 ticks apart: a huge tolerance folds them into one
	// six-note group on the next load.
	path := writeGroups(t, []uint8{60, 64, 67}, []uint8{65, 69, 72})

	proc := New()
	proc.SetTimeTolerance(2000)
	assert.NoError(t, proc.Load(path))

	chords := proc.Chords()
	assert.Len(t, chords, 1)
	assert.Len(t, chords[0].Notes, 6)
}
