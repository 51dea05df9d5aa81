package model

import "github.com/chordforge/chordforge/constants"

type TransformationType int

const (
	Standard TransformationType = iota
	Inversion
	Percentage
	SwitchTonality
)

func (t TransformationType) String() string {
	switch t {
	case Standard:
		return "standard"
	case Inversion:
		return "inversion"
	case Percentage:
		return "percentage"
	case SwitchTonality:
		return "switch-tonality"
	default:
		return "unknown"
	}
}

type TransformationOptions struct {
	Type            TransformationType
	Inversion       int
	Percentage      float64
	PreserveRoot    bool
	PreserveBass    bool
	UseVoiceLeading bool
}

func NewTransformationOptions() TransformationOptions {
	return TransformationOptions{
		Type:            Standard,
		Inversion:       0,
		Percentage:      100,
		PreserveRoot:    true,
		PreserveBass:    true,
		UseVoiceLeading: true,
	}
}

type VoiceLeadingOptions struct {
	MinimizeMovement   bool
	AvoidParallels     bool
	MaintainVoiceCount bool
	MaxVoiceMovement   int
}

func NewVoiceLeadingOptions() VoiceLeadingOptions {
	return VoiceLeadingOptions{
		MinimizeMovement:   true,
		AvoidParallels:     false,
		MaintainVoiceCount: true,
		MaxVoiceMovement:   constants.DefaultMaxVoiceMovement,
	}
}

// VoiceMovement reports how one voice travelled during a transformation.
// OriginalPitch 0 marks a voice that did not exist before.
type VoiceMovement struct {
	OriginalPitch uint8
	NewPitch      uint8
	Movement      int
	Optimal       bool
}
