// Package journal records before/after snapshots of chord transformations
// and replays them for undo/redo.
package journal

import (
	"time"

	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/model"
	"github.com/google/uuid"
)

// Store is the mutation surface the journal replays snapshots through.
type Store interface {
	UpdateChord(index int, c model.Chord) error
}

// Journal keeps a bounded action list and a cursor. Everything before the
// cursor can be undone, everything from the cursor on can be redone.
type Journal struct {
	store   Store
	actions []model.Action
	cursor  int
	max     int
}

func New(store Store) *Journal {
	return &Journal{store: store, max: constants.MaxHistorySize}
}

// Record drops any redoable tail, appends the action, and evicts the
// oldest entry once the cap is reached. Snapshots are deep-copied on the
// way in.
func (j *Journal) Record(indices []int, before, after []model.Chord, description string) {
	action := model.Action{
		ID:          uuid.New().String(),
		Indices:     append([]int(nil), indices...),
		Before:      model.CloneChords(before),
		After:       model.CloneChords(after),
		Description: description,
		Timestamp:   time.Now(),
	}

	if j.cursor < len(j.actions) {
		j.actions = j.actions[:j.cursor]
	}
	j.actions = append(j.actions, action)
	j.cursor++

	if len(j.actions) > j.max {
		j.actions = j.actions[1:]
		j.cursor--
	}
}

func (j *Journal) Undo() bool {
	if !j.CanUndo() {
		return false
	}
	j.cursor--
	action := j.actions[j.cursor]
	for i, index := range action.Indices {
		if i < len(action.Before) {
			j.store.UpdateChord(index, action.Before[i])
		}
	}
	return true
}

func (j *Journal) Redo() bool {
	if !j.CanRedo() {
		return false
	}
	action := j.actions[j.cursor]
	j.cursor++
	for i, index := range action.Indices {
		if i < len(action.After) {
			j.store.UpdateChord(index, action.After[i])
		}
	}
	return true
}

func (j *Journal) CanUndo() bool {
	return j.cursor > 0
}

func (j *Journal) CanRedo() bool {
	return j.cursor < len(j.actions)
}

func (j *Journal) UndoDescription() string {
	if !j.CanUndo() {
		return "Nothing to undo"
	}
	return j.actions[j.cursor-1].Description
}

func (j *Journal) RedoDescription() string {
	if !j.CanRedo() {
		return "Nothing to redo"
	}
	return j.actions[j.cursor].Description
}

func (j *Journal) Clear() {
	j.actions = nil
	j.cursor = 0
}

func (j *Journal) Len() int {
	return len(j.actions)
}
