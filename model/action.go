package model

import "time"

// Action is one journal entry: full before/after snapshots of every chord a
// transformation touched. Snapshots are values, never pointers into the
// live chord list.
type Action struct {
	ID          string
	Indices     []int
	Before      []Chord
	After       []Chord
	Description string
	Timestamp   time.Time
}
