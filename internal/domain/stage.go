package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStage is returned when a stage name does not match any production stage
var ErrUnknownStage = errors.New("unknown production stage")

// Stage represents a production stage in the furniture workshop
type Stage string

const (
	StageMaterialPreparation Stage = "Material Preparation"
	StageCuttingShaping      Stage = "Cutting & Shaping"
	StageAssembly            Stage = "Assembly"
	StageSanding             Stage = "Sanding & Surface Preparation"
	StageFinishing           Stage = "Finishing"
	StageQualityCheck        Stage = "Quality Check & Packaging"
)

// StageOrder lists all stages in their fixed workshop sequence
var StageOrder = []Stage{
	StageMaterialPreparation,
	StageCuttingShaping,
	StageAssembly,
	StageSanding,
	StageFinishing,
	StageQualityCheck,
}

// EntryStage returns the first stage every production enters
func EntryStage() Stage {
	return StageMaterialPreparation
}

// FinalStage returns the last stage of the sequence
func FinalStage() Stage {
	return StageQualityCheck
}

// ParseStage validates a stage name
func ParseStage(s string) (Stage, error) {
	for _, stage := range StageOrder {
		if string(stage) == s {
			return stage, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Index returns the zero-based position of the stage in the sequence, or -1
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s, or false if s is the final stage
func (s Stage) Next() (Stage, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(StageOrder)-1 {
		return "", false
	}
	return StageOrder[idx+1], true
}

// IsFinal reports whether s is the last stage
func (s Stage) IsFinal() bool {
	return s == FinalStage()
}

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// DefaultStageCapacities returns the workshop's default capacity per stage,
// in concurrent unit-equivalents. Overridable via the stage-capacity config
// file.
func DefaultStageCapacities() map[Stage]int {
	return map[Stage]int{
		StageMaterialPreparation: 30,
		StageCuttingShaping:      40,
		StageAssembly:            50,
		StageSanding:             30,
		StageFinishing:           30,
		StageQualityCheck:        20,
	}
}
