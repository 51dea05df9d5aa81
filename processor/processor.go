// Package processor is the document context: it owns the parsed MIDI
// file, the aggregated notes, the labelled chord list, and the journal,
// and exposes the host-facing API over them.
package processor

import (
	"errors"
	"fmt"
	"os"

	"github.com/chordforge/chordforge/cache"
	"github.com/chordforge/chordforge/chord"
	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/journal"
	"github.com/chordforge/chordforge/keydetect"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/progression"
	"github.com/chordforge/chordforge/smf"
	"github.com/chordforge/chordforge/theory"
	"github.com/chordforge/chordforge/voicelead"
)

var (
	ErrNoDocument      = errors.New("no midi file loaded")
	ErrNoChords        = errors.New("document has no chords")
	ErrIndexOutOfRange = errors.New("chord index out of range")
)

type Processor struct {
	file      *smf.File
	filename  string
	notes     []model.Note
	chords    []model.Chord
	tolerance uint32

	engine       *voicelead.Engine
	keys         *keydetect.Detector
	progressions *progression.Analyzer
	journal      *journal.Journal
	cache        *cache.Cache
}

func New() *Processor {
	return NewWithCache(cache.New())
}

// NewWithCache builds a processor around a shared detection cache. The
// core is single-threaded; a cache shared between documents needs external
// synchronization.
func NewWithCache(c *cache.Cache) *Processor {
	p := &Processor{
		tolerance:    constants.DefaultTimeTolerance,
		engine:       voicelead.New(model.NewVoiceLeadingOptions()),
		keys:         keydetect.NewDetector(),
		progressions: progression.NewAnalyzer(),
		cache:        c,
	}
	p.journal = journal.New(p)
	return p
}

// Load parses an SMF and detects its chords. A cache hit skips note
// aggregation and chord segmentation; the container is still parsed so
// Save keeps working. Any failure leaves the previous document intact.
func (p *Processor) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %v: %w", path, err)
	}

	f, err := smf.Parse(data)
	if err != nil {
		return err
	}

	key := cache.Hash(data)
	if cached, ok := p.cache.Get(key); ok {
		p.chords = cached
		p.notes = nil
	} else {
		p.notes = chord.ExtractNotes(f)
		p.chords = chord.Detect(p.notes, p.tolerance)
		p.cache.Put(key, p.chords)
	}

	p.file = f
	p.filename = path
	p.journal.Clear()
	return nil
}

// Save applies the transformed chords to the note events and writes the
// result as a new SMF.
func (p *Processor) Save(path string) error {
	if p.file == nil {
		return ErrNoDocument
	}
	return p.renderFile().WriteFile(path)
}

func (p *Processor) Filename() string {
	return p.filename
}

// SetTimeTolerance changes the segmentation tick tolerance for subsequent
// loads.
func (p *Processor) SetTimeTolerance(ticks uint32) {
	p.tolerance = ticks
}

func (p *Processor) TimeTolerance() uint32 {
	return p.tolerance
}

func (p *Processor) SetVoiceLeadingOptions(opts model.VoiceLeadingOptions) {
	p.engine.SetOptions(opts)
}

func (p *Processor) VoiceLeadingOptions() model.VoiceLeadingOptions {
	return p.engine.Options()
}

// Chords returns a deep snapshot of the chord list.
func (p *Processor) Chords() []model.Chord {
	return model.CloneChords(p.chords)
}

func (p *Processor) Chord(index int) (model.Chord, error) {
	if index < 0 || index >= len(p.chords) {
		return model.Chord{}, ErrIndexOutOfRange
	}
	return p.chords[index].Clone(), nil
}

// UpdateChord replaces one chord with a deep copy of the given value. The
// journal replays snapshots through this.
func (p *Processor) UpdateChord(index int, c model.Chord) error {
	if index < 0 || index >= len(p.chords) {
		return ErrIndexOutOfRange
	}
	p.chords[index] = c.Clone()
	return nil
}

// Transform rewrites the selected chords into their target names. Indices
// out of range are skipped and returned; the journal records only chords
// that actually changed, as one atomic action.
func (p *Processor) Transform(indices []int, targets []string, opts model.TransformationOptions) ([]int, error) {
	if len(p.chords) == 0 {
		return nil, ErrNoChords
	}
	if len(indices) != len(targets) {
		return nil, fmt.Errorf("got %v indices but %v target names", len(indices), len(targets))
	}

	var skipped []int
	var changedIndices []int
	var before, after []model.Chord

	for i, index := range indices {
		if index < 0 || index >= len(p.chords) {
			skipped = append(skipped, index)
			continue
		}
		b, a, changed := p.transformChord(index, targets[i], opts)
		if changed {
			changedIndices = append(changedIndices, index)
			before = append(before, b)
			after = append(after, a)
		}
	}

	if len(changedIndices) > 0 {
		p.journal.Record(changedIndices, before, after,
			fmt.Sprintf("Transform %v chords", len(changedIndices)))
	}
	return skipped, nil
}

// SwitchTonality flips a chord between its major and minor counterpart.
// Chords whose quality has no counterpart are left alone.
func (p *Processor) SwitchTonality(index int) error {
	if index < 0 || index >= len(p.chords) {
		return ErrIndexOutOfRange
	}

	root, quality := theory.ParseChordName(p.chords[index].Name)
	mapped, ok := theory.TonalitySwitch[quality]
	if !ok {
		return nil
	}

	opts := model.NewTransformationOptions()
	opts.Type = model.SwitchTonality

	b, a, changed := p.transformChord(index, theory.FormatChordName(root, mapped), opts)
	if changed {
		p.journal.Record([]int{index}, []model.Chord{b}, []model.Chord{a},
			fmt.Sprintf("Switch tonality of chord %v", index+1))
	}
	return nil
}

// transformChord mutates one chord in place. The first transformation of a
// chord snapshots the original pitches and label.
func (p *Processor) transformChord(index int, target string, opts model.TransformationOptions) (model.Chord, model.Chord, bool) {
	c := &p.chords[index]
	before := c.Clone()

	newNotes := p.engine.Transform(c.Notes, target, opts)
	if target == c.Name && samePitches(newNotes, c.Notes) {
		return before, before, false
	}

	if !c.Transformed {
		c.OriginalNotes = append(model.Notes(nil), c.Notes...)
		c.OriginalName = c.Name
	}
	c.Notes = newNotes
	c.Name = target
	c.Transformed = true

	return before, c.Clone(), true
}

// VoiceMovements reports how each voice travelled for a transformed chord.
func (p *Processor) VoiceMovements(index int) ([]model.VoiceMovement, error) {
	if index < 0 || index >= len(p.chords) {
		return nil, ErrIndexOutOfRange
	}
	c := p.chords[index]
	if !c.Transformed {
		return nil, nil
	}
	return p.engine.AnalyzeMovement(c.OriginalNotes, c.Notes), nil
}

// DetectKey scores the 24 keys over the chord list; nil means no key
// reached the confidence floor.
func (p *Processor) DetectKey() *model.KeySignature {
	return p.keys.Detect(p.chords)
}

func (p *Processor) AnalyzeProgression() []model.ProgressionMatch {
	return p.progressions.Detect(p.chords)
}

func (p *Processor) Undo() bool { return p.journal.Undo() }
func (p *Processor) Redo() bool { return p.journal.Redo() }

func (p *Processor) CanUndo() bool { return p.journal.CanUndo() }
func (p *Processor) CanRedo() bool { return p.journal.CanRedo() }

func (p *Processor) UndoDescription() string { return p.journal.UndoDescription() }
func (p *Processor) RedoDescription() string { return p.journal.RedoDescription() }

func samePitches(a, b model.Notes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
