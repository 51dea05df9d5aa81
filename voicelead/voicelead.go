// Package voicelead picks octave placements for target chords so that each
// voice moves as little as possible from the previous voicing, and
// dispatches the four transformation modes on top of that search.
package voicelead

import (
	"math"
	"sort"

	"github.com/chordforge/chordforge/constants"
	"github.com/chordforge/chordforge/model"
	"github.com/chordforge/chordforge/theory"
	"github.com/chordforge/chordforge/util"
)

type Engine struct {
	opts model.VoiceLeadingOptions
}

func New(opts model.VoiceLeadingOptions) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) SetOptions(opts model.VoiceLeadingOptions) {
	e.opts = opts
}

func (e *Engine) Options() model.VoiceLeadingOptions {
	return e.opts
}

// Transform rewrites original into the chord named by targetName according
// to the transformation options. The result is ascending, duplicate-free,
// and clamped to the MIDI range.
func (e *Engine) Transform(original []uint8, targetName string, topts model.TransformationOptions) []uint8 {
	target := theory.ChordNotes(targetName, 4)

	var result []int
	switch topts.Type {
	case model.Standard:
		result = e.standard(original, target, topts.UseVoiceLeading)

	case model.Inversion:
		inverted := append([]uint8(nil), target...)
		sort.Slice(inverted, func(i, j int) bool { return inverted[i] < inverted[j] })

		k := topts.Inversion
		if k < 0 {
			k = 0
		}
		if k >= len(inverted) {
			k = len(inverted) - 1
		}
		raised := make([]uint8, len(inverted))
		copy(raised, inverted)
		for i := 0; i < k; i++ {
			raised[i] += 12
		}
		sort.Slice(raised, func(i, j int) bool { return raised[i] < raised[j] })

		result = e.standard(original, raised, topts.UseVoiceLeading)

	case model.Percentage:
		result = e.interpolate(original, target, topts.Percentage)

	case model.SwitchTonality:
		result = e.FindOptimalVoicing(target, original)

	default:
		result = e.FindOptimalVoicing(target, original)
	}

	return finishVoicing(result)
}

func (e *Engine) standard(original []uint8, target []uint8, useVoiceLeading bool) []int {
	if useVoiceLeading {
		return e.FindOptimalVoicing(target, original)
	}
	return octaveMatch(target, original)
}

// interpolate moves each voice a fraction of the way toward the voice-led
// target. Voices are paired by index when the counts match, otherwise by
// nearest pitch in both directions.
func (e *Engine) interpolate(original []uint8, target []uint8, percentage float64) []int {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	voiced := e.FindOptimalVoicing(target, original)

	type pair struct{ from, to int }
	var pairs []pair

	if len(original) == len(voiced) {
		for i := range original {
			pairs = append(pairs, pair{int(original[i]), voiced[i]})
		}
	} else {
		for _, v := range original {
			pairs = append(pairs, pair{int(v), nearest(voiced, int(v))})
		}
		for _, w := range voiced {
			matched := false
			for _, p := range pairs {
				if p.to == w {
					matched = true
					break
				}
			}
			if !matched {
				pairs = append(pairs, pair{nearestU8(original, w), w})
			}
		}
	}

	result := make([]int, len(pairs))
	for i, p := range pairs {
		result[i] = int(math.Round(float64(p.from) + float64(p.to-p.from)*percentage/100))
	}
	return result
}

// FindOptimalVoicing enumerates every assignment of the target's pitch
// classes to octaves near the original voicing and returns the candidate
// with the lowest movement cost; among equal costs, the candidate whose own
// pitches lie closest to the original voicing wins. Candidates with parallel
// perfect fifths or octaves against the original are rejected when the
// options say so.
func (e *Engine) FindOptimalVoicing(target []uint8, original []uint8) []int {
	classes := make([]int, len(target))
	for i, p := range target {
		classes[i] = int(p) % 12
	}

	if len(original) == 0 || len(classes) == 0 {
		placed := placeInOctave(classes, constants.FallbackOctave)
		sort.Ints(placed)
		return placed
	}

	lo, hi := int(original[0]), int(original[0])
	for _, p := range original {
		lo = util.Min(lo, int(p))
		hi = util.Max(hi, int(p))
	}
	minOctave := util.Max(constants.MinOctave, lo/12-1)
	maxOctave := util.Min(constants.MaxOctave, hi/12+1)

	var best, first []int
	bestCost := math.MaxInt
	bestSpread := math.MaxInt

	current := make([]int, len(classes))
	var walk func(index int)
	walk = func(index int) {
		if index == len(classes) {
			if first == nil {
				first = append([]int(nil), current...)
			}
			if e.opts.AvoidParallels && hasParallels(original, current) {
				return
			}
			cost := e.movementCost(original, current)
			spread := 0
			for _, w := range current {
				spread += util.Abs(nearestU8(original, w) - w)
			}
			if cost < bestCost || (cost == bestCost && spread < bestSpread) {
				bestCost = cost
				bestSpread = spread
				best = append(best[:0], current...)
			}
			return
		}
		for octave := minOctave; octave <= maxOctave; octave++ {
			pitch := classes[index] + octave*12
			if pitch > 127 {
				continue
			}
			current[index] = pitch
			walk(index + 1)
		}
	}
	walk(0)

	if best == nil {
		best = first
	}
	if best == nil {
		best = placeInOctave(classes, constants.FallbackOctave)
	}
	// Ascending order so later pairing steps match voices low-to-low.
	sort.Ints(best)
	return best
}

// hasParallels reports whether any pair of voices keeps a perfect fifth or
// octave interval while both move in the same direction.
func hasParallels(original []uint8, candidate []int) bool {
	if len(original) < 2 || len(candidate) < 2 {
		return false
	}

	for i := 0; i < len(original); i++ {
		for j := i + 1; j < len(original); j++ {
			interval := util.Abs(int(original[i])-int(original[j])) % 12
			if interval != 7 && interval != 0 {
				continue
			}

			ci, cj := i, j
			if ci >= len(candidate) {
				ci = 0
			}
			if cj >= len(candidate) {
				cj = len(candidate) - 1
			}
			if util.Abs(candidate[ci]-candidate[cj])%12 != interval {
				continue
			}

			di := candidate[ci] - int(original[i])
			dj := candidate[cj] - int(original[j])
			if di != 0 && dj != 0 && (di > 0) == (dj > 0) {
				return true
			}
		}
	}
	return false
}

// movementCost scores a candidate: each original voice pays its distance
// to the nearest candidate pitch, overshoot beyond the movement limit pays
// tenfold, and a changed voice count pays a flat 1000.
func (e *Engine) movementCost(original []uint8, candidate []int) int {
	cost := 0
	if e.opts.MaintainVoiceCount && len(original) != len(candidate) {
		cost += 1000
	}

	for _, v := range original {
		d := util.Abs(nearest(candidate, int(v)) - int(v))
		if d > e.opts.MaxVoiceMovement {
			cost += (d - e.opts.MaxVoiceMovement) * 10
		}
		cost += d
	}

	if e.opts.MinimizeMovement {
		cost *= 2
	}
	return cost
}

// AnalyzeMovement matches each original voice to its closest new pitch and
// reports the travel. New pitches with no original voice get the zero
// sentinel for OriginalPitch.
func (e *Engine) AnalyzeMovement(original, next []uint8) []model.VoiceMovement {
	var movements []model.VoiceMovement

	for _, v := range original {
		w := nearestU8(next, int(v))
		mv := w - int(v)
		movements = append(movements, model.VoiceMovement{
			OriginalPitch: v,
			NewPitch:      uint8(w),
			Movement:      mv,
			Optimal:       util.Abs(mv) <= e.opts.MaxVoiceMovement,
		})
	}

	for _, w := range next {
		matched := false
		for _, m := range movements {
			if m.NewPitch == w {
				matched = true
				break
			}
		}
		if !matched {
			movements = append(movements, model.VoiceMovement{NewPitch: w, Optimal: true})
		}
	}

	return movements
}

func octaveMatch(target []uint8, original []uint8) []int {
	if len(target) == 0 {
		return nil
	}
	if len(original) == 0 {
		classes := make([]int, len(target))
		for i, p := range target {
			classes[i] = int(p) % 12
		}
		return placeInOctave(classes, constants.FallbackOctave)
	}

	lowestOriginal := original[0]
	for _, p := range original {
		lowestOriginal = util.Min(lowestOriginal, p)
	}
	lowestTarget := target[0]
	for _, p := range target {
		lowestTarget = util.Min(lowestTarget, p)
	}

	shift := int(lowestOriginal)/12 - int(lowestTarget)/12
	result := make([]int, len(target))
	for i, p := range target {
		result[i] = int(p) + shift*12
	}
	return result
}

func placeInOctave(classes []int, octave int) []int {
	result := make([]int, len(classes))
	for i, c := range classes {
		result[i] = c + octave*12
	}
	return result
}

func nearest(candidates []int, v int) int {
	best, bestDist := 0, math.MaxInt
	for _, c := range candidates {
		if d := util.Abs(c - v); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func nearestU8(candidates []uint8, v int) int {
	best, bestDist := 0, math.MaxInt
	for _, c := range candidates {
		if d := util.Abs(int(c) - v); d < bestDist {
			bestDist = d
			best = int(c)
		}
	}
	return best
}

// finishVoicing clamps to the MIDI range, sorts ascending, and drops
// duplicate pitches.
func finishVoicing(pitches []int) []uint8 {
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)

	var result []uint8
	for _, p := range sorted {
		if p < 0 {
			p = 0
		}
		if p > 127 {
			p = 127
		}
		if len(result) > 0 && result[len(result)-1] == uint8(p) {
			continue
		}
		result = append(result, uint8(p))
	}
	return result
}
