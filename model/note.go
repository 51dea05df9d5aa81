package model

type Notes = []uint8

// Note is a timed pitch extracted from the event stream. Immutable once the
// aggregator emits it.
type Note struct {
	Pitch    uint8
	Start    uint32
	Duration uint32
	Velocity uint8
	Channel  uint8
}
