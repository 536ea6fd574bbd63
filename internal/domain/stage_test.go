package domain

import (
	"errors"
	"testing"
)

// =============================================================================
// Sequence Tests
// =============================================================================

func TestStageSequence(t *testing.T) {
	if got := EntryStage(); got != StageMaterialPreparation {
		t.Errorf("EntryStage() = %q, want %q", got, StageMaterialPreparation)
	}
	if got := FinalStage(); got != StageQualityCheck {
		t.Errorf("FinalStage() = %q, want %q", got, StageQualityCheck)
	}
	if len(StageOrder) != 6 {
		t.Errorf("len(StageOrder) = %d, want 6", len(StageOrder))
	}
}

func TestStage_Next(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		want  Stage
		ok    bool
	}{
		{"material preparation precedes cutting", StageMaterialPreparation, StageCuttingShaping, true},
		{"cutting precedes assembly", StageCuttingShaping, StageAssembly, true},
		{"assembly precedes sanding", StageAssembly, StageSanding, true},
		{"sanding precedes finishing", StageSanding, StageFinishing, true},
		{"finishing precedes quality check", StageFinishing, StageQualityCheck, true},
		{"final stage has no successor", StageQualityCheck, "", false},
		{"unknown stage has no successor", Stage("Painting"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.stage.Next()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Next() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStage_Index(t *testing.T) {
	for i, stage := range StageOrder {
		if got := stage.Index(); got != i {
			t.Errorf("Index(%q) = %d, want %d", stage, got, i)
		}
	}
	if got := Stage("Painting").Index(); got != -1 {
		t.Errorf("Index() for unknown stage = %d, want -1", got)
	}
}

func TestStage_IsFinal(t *testing.T) {
	if !StageQualityCheck.IsFinal() {
		t.Error("IsFinal() = false for the last stage")
	}
	if StageAssembly.IsFinal() {
		t.Error("IsFinal() = true for a middle stage")
	}
}

// =============================================================================
// Parsing Tests
// =============================================================================

func TestParseStage(t *testing.T) {
	t.Run("every stage name parses", func(t *testing.T) {
		for _, stage := range StageOrder {
			got, err := ParseStage(string(stage))
			if err != nil {
				t.Errorf("ParseStage(%q) error = %v", stage, err)
			}
			if got != stage {
				t.Errorf("ParseStage(%q) = %q", stage, got)
			}
		}
	})

	t.Run("unknown name is rejected", func(t *testing.T) {
		if _, err := ParseStage("Varnishing"); !errors.Is(err, ErrUnknownStage) {
			t.Errorf("ParseStage() error = %v, want ErrUnknownStage", err)
		}
	})

	t.Run("case matters", func(t *testing.T) {
		if _, err := ParseStage("assembly"); !errors.Is(err, ErrUnknownStage) {
			t.Errorf("ParseStage() error = %v, want ErrUnknownStage", err)
		}
	})
}

// =============================================================================
// Default Capacity Tests
// =============================================================================

func TestDefaultStageCapacities(t *testing.T) {
	capacities := DefaultStageCapacities()

	wants := map[Stage]int{
		StageMaterialPreparation: 30,
		StageCuttingShaping:      40,
		StageAssembly:            50,
		StageSanding:             30,
		StageFinishing:           30,
		StageQualityCheck:        20,
	}

	for stage, want := range wants {
		if got := capacities[stage]; got != want {
			t.Errorf("capacity[%q] = %d, want %d", stage, got, want)
		}
	}

	// callers mutate their copy freely
	capacities[StageAssembly] = 99
	if DefaultStageCapacities()[StageAssembly] != 50 {
		t.Error("DefaultStageCapacities() shares state between calls")
	}
}
