package voicelead

import (
	"testing"

	"github.com/chordforge/chordforge/model"
	"github.com/stretchr/testify/assert"
)

func defaultEngine() *Engine {
	return New(model.NewVoiceLeadingOptions())
}

func TestStandardTransformWithVoiceLeading(t *testing.T) {
	// C major to A minor: only the G has to move, two semitones up.
	result := defaultEngine().Transform([]uint8{60, 64, 67}, "Am", model.NewTransformationOptions())
	assert.Equal(t, []uint8{60, 64, 69}, result)
}

func TestStandardTransformWithoutVoiceLeading(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.UseVoiceLeading = false

	// Target placed so its lowest pitch shares the original's octave.
	result := defaultEngine().Transform([]uint8{60, 64, 67}, "D", opts)
	assert.Equal(t, []uint8{62, 66, 69}, result)
}

func TestPercentageInterpolation(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.Type = model.Percentage
	opts.Percentage = 50

	// Voice-led F target is [60, 65, 69]; halfway there is [60, 65, 68].
	result := defaultEngine().Transform([]uint8{60, 64, 67}, "F", opts)
	assert.Equal(t, []uint8{60, 65, 68}, result)
}

func TestPercentageClamped(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.Type = model.Percentage
	opts.Percentage = 250

	full := model.NewTransformationOptions()
	full.Type = model.Percentage
	full.Percentage = 100

	engine := defaultEngine()
	assert.Equal(t,
		engine.Transform([]uint8{60, 64, 67}, "F", full),
		engine.Transform([]uint8{60, 64, 67}, "F", opts))
}

func TestSwitchTonalityVoicing(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.Type = model.SwitchTonality

	// Cmaj7 to Cm7: E drops to Eb, B drops to Bb.
	result := defaultEngine().Transform([]uint8{60, 64, 67, 71}, "Cm7", opts)
	assert.Equal(t, []uint8{60, 63, 67, 70}, result)
}

func TestInversionWithoutVoiceLeading(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.Type = model.Inversion
	opts.Inversion = 2
	opts.UseVoiceLeading = false

	// Second inversion of C: G C E, shifted up to the original's octave.
	result := defaultEngine().Transform([]uint8{60, 64, 67}, "C", opts)
	assert.Equal(t, []uint8{67, 72, 76}, result)
}

func TestInversionIndexClamped(t *testing.T) {
	opts := model.NewTransformationOptions()
	opts.Type = model.Inversion
	opts.Inversion = 9
	opts.UseVoiceLeading = false

	clamped := model.NewTransformationOptions()
	clamped.Type = model.Inversion
	clamped.Inversion = 2
	clamped.UseVoiceLeading = false

	engine := defaultEngine()
	assert.Equal(t,
		engine.Transform([]uint8{60, 64, 67}, "C", clamped),
		engine.Transform([]uint8{60, 64, 67}, "C", opts))
}

func TestVoicingIsOptimalForSmallTargets(t *testing.T) {
	// Exhaustively confirm no candidate beats the returned voicing.
	engine := defaultEngine()
	original := []uint8{55, 60, 64}

	voiced := engine.FindOptimalVoicing([]uint8{50, 53, 57}, original) // D minor classes
	best := engine.movementCost(original, voiced)

	classes := []int{2, 5, 9}
	for _, a := range []int{3, 4, 5, 6} {
		for _, b := range []int{3, 4, 5, 6} {
			for _, c := range []int{3, 4, 5, 6} {
				candidate := []int{classes[0] + a*12, classes[1] + b*12, classes[2] + c*12}
				if engine.opts.AvoidParallels && hasParallels(original, candidate) {
					continue
				}
				assert.GreaterOrEqual(t, engine.movementCost(original, candidate), best)
			}
		}
	}
}

func TestParallelFifthsRejected(t *testing.T) {
	opts := model.NewVoiceLeadingOptions()
	opts.AvoidParallels = true
	engine := New(opts)

	// C and G a perfect fifth apart moving to D and A keeps the interval
	// with both voices moving up.
	assert.True(t, hasParallels([]uint8{60, 67}, []int{62, 69}))
	assert.False(t, hasParallels([]uint8{60, 67}, []int{60, 69}))
	assert.False(t, hasParallels([]uint8{60, 64}, []int{62, 66}))

	voiced := engine.FindOptimalVoicing([]uint8{50, 57}, []uint8{60, 67})
	assert.False(t, hasParallels([]uint8{60, 67}, voiced))
}

func TestFallbackOctaveWhenNoOriginal(t *testing.T) {
	result := defaultEngine().Transform(nil, "C", model.NewTransformationOptions())
	assert.Equal(t, []uint8{60, 64, 67}, result)
}

func TestAnalyzeMovement(t *testing.T) {
	engine := defaultEngine()
	movements := engine.AnalyzeMovement([]uint8{60, 64, 67}, []uint8{60, 63, 67})

	assert := assert.New(t)
	assert.Len(movements, 3)
	assert.Equal(model.VoiceMovement{OriginalPitch: 60, NewPitch: 60, Movement: 0, Optimal: true}, movements[0])
	assert.Equal(model.VoiceMovement{OriginalPitch: 64, NewPitch: 63, Movement: -1, Optimal: true}, movements[1])
}

func TestAnalyzeMovementNewVoiceSentinel(t *testing.T) {
	movements := defaultEngine().AnalyzeMovement([]uint8{60}, []uint8{60, 72})

	assert := assert.New(t)
	assert.Len(movements, 2)
	assert.Equal(uint8(0), movements[1].OriginalPitch)
	assert.Equal(uint8(72), movements[1].NewPitch)
}
