package processor

import (
	"math"
	"sort"

	"github.com/chordforge/chordforge/smf"
)

// chordEdit is the event-level footprint of one transformed chord: old
// pitches paired low-to-low with new pitches become renames, surplus old
// pitches are removed, surplus new pitches are added at the chord onset.
type chordEdit struct {
	start    uint32
	duration uint32
	origSet  map[uint8]bool
	renames  map[uint8]uint8
	removals map[uint8]bool
	adds     []uint8
	applied  bool
}

type absEvent struct {
	tick    uint32
	order   int
	dropped bool
	event   smf.Event
}

// renderFile builds a fresh copy of the loaded file with every transformed
// chord written back into its note events. The loaded file itself is never
// touched, so rendering is repeatable.
func (p *Processor) renderFile() *smf.File {
	out := &smf.File{
		Format:   p.file.Format,
		Division: p.file.Division,
	}

	edits := p.collectEdits()

	for _, track := range p.file.Tracks {
		events := absoluteEvents(track)
		for _, edit := range edits {
			events = applyEdit(events, edit, p.tolerance)
		}
		out.Tracks = append(out.Tracks, rebuildTrack(track.Name, events))
	}

	return out
}

func (p *Processor) collectEdits() []*chordEdit {
	var edits []*chordEdit
	for _, c := range p.chords {
		if !c.Transformed || samePitches(c.Notes, c.OriginalNotes) {
			continue
		}

		edit := &chordEdit{
			start:    c.Start,
			duration: c.Duration,
			origSet:  make(map[uint8]bool),
			renames:  make(map[uint8]uint8),
			removals: make(map[uint8]bool),
		}
		for _, pitch := range c.OriginalNotes {
			edit.origSet[pitch] = true
		}

		paired := len(c.OriginalNotes)
		if len(c.Notes) < paired {
			paired = len(c.Notes)
		}
		for i := 0; i < paired; i++ {
			if c.OriginalNotes[i] != c.Notes[i] {
				edit.renames[c.OriginalNotes[i]] = c.Notes[i]
			}
		}
		for _, pitch := range c.OriginalNotes[paired:] {
			edit.removals[pitch] = true
		}
		edit.adds = append(edit.adds, c.Notes[paired:]...)

		edits = append(edits, edit)
	}
	return edits
}

func absoluteEvents(track smf.Track) []*absEvent {
	events := make([]*absEvent, len(track.Events))
	var abs uint32
	for i, event := range track.Events {
		abs += event.Delta
		events[i] = &absEvent{tick: abs, order: i, event: event.Clone()}
	}
	return events
}

func applyEdit(events []*absEvent, edit *chordEdit, tolerance uint32) []*absEvent {
	var templateOn *absEvent

	for i, ae := range events {
		if ae.dropped || !isNoteOn(ae.event) {
			continue
		}
		if tickDistance(ae.tick, edit.start) > int64(tolerance) {
			continue
		}

		pitch := ae.event.Data[0]
		if newPitch, ok := edit.renames[pitch]; ok {
			closer := findCloser(events, i, pitch, ae.event.Status&0x0F)
			ae.event.Data[0] = newPitch
			if closer != nil {
				closer.event.Data[0] = newPitch
			}
			if templateOn == nil {
				templateOn = ae
			}
		} else if edit.removals[pitch] {
			ae.dropped = true
			if closer := findCloser(events, i, pitch, ae.event.Status&0x0F); closer != nil {
				closer.dropped = true
			}
		} else if edit.origSet[pitch] && templateOn == nil {
			templateOn = ae
		}
	}

	// Surplus target pitches become fresh notes on the template's channel,
	// in whichever track first carried the chord.
	if edit.applied || templateOn == nil {
		return events
	}
	edit.applied = true

	channel := templateOn.event.Status & 0x0F
	velocity := templateOn.event.Data[1]
	order := len(events)

	for _, pitch := range edit.adds {
		on := &absEvent{
			tick:  edit.start,
			order: order,
			event: smf.Event{Status: smf.StatusNoteOn | channel, Data: []byte{pitch, velocity}},
		}
		off := &absEvent{
			tick:  edit.start + edit.duration,
			order: order + 1,
			event: smf.Event{Status: smf.StatusNoteOff | channel, Data: []byte{pitch, 0}},
		}
		order += 2
		events = append(events, on, off)
	}
	return events
}

func isNoteOn(e smf.Event) bool {
	return !e.Meta && e.Status&0xF0 == smf.StatusNoteOn && len(e.Data) >= 2 && e.Data[1] > 0
}

func isCloserFor(e smf.Event, pitch, channel uint8) bool {
	if e.Meta || len(e.Data) < 2 || e.Data[0] != pitch || e.Status&0x0F != channel {
		return false
	}
	return e.Status&0xF0 == smf.StatusNoteOff ||
		(e.Status&0xF0 == smf.StatusNoteOn && e.Data[1] == 0)
}

func findCloser(events []*absEvent, from int, pitch, channel uint8) *absEvent {
	for _, ae := range events[from+1:] {
		if !ae.dropped && isCloserFor(ae.event, pitch, channel) {
			return ae
		}
	}
	return nil
}

func rebuildTrack(name string, events []*absEvent) smf.Track {
	kept := make([]*absEvent, 0, len(events))
	var maxTick uint32
	for _, ae := range events {
		if ae.dropped {
			continue
		}
		kept = append(kept, ae)
		if ae.tick > maxTick {
			maxTick = ae.tick
		}
	}

	// End-of-track stays last even when added notes ring past it.
	for _, ae := range kept {
		if ae.event.Meta && ae.event.MetaType == smf.MetaEndOfTrack {
			if ae.tick < maxTick {
				ae.tick = maxTick
			}
			ae.order = math.MaxInt
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].tick != kept[j].tick {
			return kept[i].tick < kept[j].tick
		}
		return kept[i].order < kept[j].order
	})

	track := smf.Track{Name: name}
	var prev uint32
	for _, ae := range kept {
		event := ae.event
		event.Delta = ae.tick - prev
		prev = ae.tick
		track.Events = append(track.Events, event)
	}
	return track
}

func tickDistance(a, b uint32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}
