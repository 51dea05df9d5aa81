// Package chord turns a decoded SMF event stream into labelled chords:
// note aggregation, onset grouping, and naming.
package chord

import (
	"sort"

	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/smf"
)

type pendingNote struct {
	start    uint32
	velocity uint8
	channel  uint8
}

// ExtractNotes pairs note-on and note-off events into timed notes. A
// note-on with velocity 0 closes like a note-off. Notes still open when a
// track ends are closed at the track's final tick. The result is sorted by
// onset, then pitch.
func ExtractNotes(f *smf.File) []model.Note {
	var notes []model.Note

	for _, track := range f.Tracks {
		pending := make(map[uint8]pendingNote)
		var absTicks uint32

		for _, event := range track.Events {
			absTicks += event.Delta
			if event.Meta {
				continue
			}

			switch event.Status & 0xF0 {
			case smf.StatusNoteOn:
				if len(event.Data) < 2 {
					continue
				}
				pitch, velocity := event.Data[0], event.Data[1]
				if velocity > 0 {
					pending[pitch] = pendingNote{start: absTicks, velocity: velocity, channel: event.Status & 0x0F}
				} else {
					notes = closeNote(notes, pending, pitch, absTicks)
				}
			case smf.StatusNoteOff:
				if len(event.Data) < 2 {
					continue
				}
				notes = closeNote(notes, pending, event.Data[0], absTicks)
			}
		}

		// Force-close anything left hanging at the end of the track.
		for pitch, p := range pending {
			notes = append(notes, model.Note{
				Pitch:    pitch,
				Start:    p.start,
				Duration: absTicks - p.start,
				Velocity: p.velocity,
				Channel:  p.channel,
			})
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		if notes[i].Pitch != notes[j].Pitch {
			return notes[i].Pitch < notes[j].Pitch
		}
		return notes[i].Channel < notes[j].Channel
	})

	return notes
}

func closeNote(notes []model.Note, pending map[uint8]pendingNote, pitch uint8, now uint32) []model.Note {
	p, ok := pending[pitch]
	if !ok {
		return notes
	}
	delete(pending, pitch)
	return append(notes, model.Note{
		Pitch:    pitch,
		Start:    p.start,
		Duration: now - p.start,
		Velocity: p.velocity,
		Channel:  p.channel,
	})
}
