package domain

import (
	"errors"
	"sync"
	"testing"
)

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewCapacityLedger(t *testing.T) {
	tests := []struct {
		name       string
		capacities map[Stage]int
		wantErr    bool
	}{
		{"default capacities are valid", DefaultStageCapacities(), false},
		{"missing stage is rejected", map[Stage]int{StageAssembly: 5}, true},
		{"zero capacity is rejected", withCapacity(StageAssembly, 0), true},
		{"negative capacity is rejected", withCapacity(StageFinishing, -1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCapacityLedger(tt.capacities)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCapacityLedger() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaultCapacityLedger(t *testing.T) {
	ledger := NewDefaultCapacityLedger()

	wants := map[Stage]int{
		StageMaterialPreparation: 30,
		StageCuttingShaping:      40,
		StageAssembly:            50,
		StageSanding:             30,
		StageFinishing:           30,
		StageQualityCheck:        20,
	}

	for stage, want := range wants {
		if got := ledger.Capacity(stage); got != want {
			t.Errorf("Capacity(%q) = %d, want %d", stage, got, want)
		}
		if got := ledger.Reserved(stage); got != 0 {
			t.Errorf("Reserved(%q) = %d, want 0", stage, got)
		}
	}
}

// =============================================================================
// Reserve Tests
// =============================================================================

func TestCapacityLedger_Reserve(t *testing.T) {
	t.Run("reservation within capacity succeeds", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		if err := ledger.Reserve(StageAssembly, 3); err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if got := ledger.Reserved(StageAssembly); got != 3 {
			t.Errorf("Reserved() = %d, want 3", got)
		}
		if got := ledger.Available(StageAssembly); got != 47 {
			t.Errorf("Available() = %d, want 47", got)
		}
	})

	t.Run("reservation exactly filling capacity succeeds", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		if err := ledger.Reserve(StageQualityCheck, 20); err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if got := ledger.Available(StageQualityCheck); got != 0 {
			t.Errorf("Available() = %d, want 0", got)
		}
	})

	t.Run("oversized request is refused with shortfall, never clamped", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger() // Assembly capacity is 50

		if err := ledger.Reserve(StageAssembly, 40); err != nil {
			t.Fatalf("Reserve(40) error = %v", err)
		}

		err := ledger.Reserve(StageAssembly, 15)
		var exceeded *CapacityExceededError
		if !errors.As(err, &exceeded) {
			t.Fatalf("Reserve(15) error = %v, want CapacityExceededError", err)
		}
		if exceeded.Requested != 15 {
			t.Errorf("Requested = %d, want 15", exceeded.Requested)
		}
		if exceeded.Available != 10 {
			t.Errorf("Available = %d, want 10", exceeded.Available)
		}
		if exceeded.Shortfall != 5 {
			t.Errorf("Shortfall = %d, want 5", exceeded.Shortfall)
		}

		// the refused request must not change the ledger
		if got := ledger.Reserved(StageAssembly); got != 40 {
			t.Errorf("Reserved() after refusal = %d, want 40", got)
		}
	})

	t.Run("non-positive unit counts are rejected", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		for _, units := range []int{0, -3} {
			if err := ledger.Reserve(StageAssembly, units); !errors.Is(err, ErrInvalidUnitCount) {
				t.Errorf("Reserve(%d) error = %v, want ErrInvalidUnitCount", units, err)
			}
		}
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		if err := ledger.Reserve(Stage("Painting"), 1); !errors.Is(err, ErrUnknownStage) {
			t.Errorf("Reserve() error = %v, want ErrUnknownStage", err)
		}
	})
}

// =============================================================================
// Release Tests
// =============================================================================

func TestCapacityLedger_Release(t *testing.T) {
	t.Run("release returns capacity to the pool", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		if err := ledger.Reserve(StageFinishing, 3); err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if err := ledger.Release(StageFinishing, 2); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if got := ledger.Reserved(StageFinishing); got != 1 {
			t.Errorf("Reserved() = %d, want 1", got)
		}
	})

	t.Run("releasing more than reserved leaves ledger unchanged", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		if err := ledger.Reserve(StageSanding, 2); err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}

		err := ledger.Release(StageSanding, 3)
		var unknown *UnknownReleaseError
		if !errors.As(err, &unknown) {
			t.Fatalf("Release() error = %v, want UnknownReleaseError", err)
		}
		if unknown.Requested != 3 || unknown.Reserved != 2 {
			t.Errorf("UnknownReleaseError = %+v, want Requested 3 Reserved 2", unknown)
		}
		if got := ledger.Reserved(StageSanding); got != 2 {
			t.Errorf("Reserved() after failed release = %d, want 2", got)
		}
	})

	t.Run("release on empty stage is an unknown release", func(t *testing.T) {
		ledger := NewDefaultCapacityLedger()

		var unknown *UnknownReleaseError
		if err := ledger.Release(StageAssembly, 1); !errors.As(err, &unknown) {
			t.Errorf("Release() error = %v, want UnknownReleaseError", err)
		}
	})
}

// =============================================================================
// Restore Tests
// =============================================================================

func TestCapacityLedger_Restore(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		reserved int
		wantErr  bool
	}{
		{"restore within capacity", StageAssembly, 4, false},
		{"restore to zero", StageAssembly, 0, false},
		{"restore at full capacity", StageQualityCheck, 20, false},
		{"restore above capacity fails", StageQualityCheck, 21, true},
		{"restore negative fails", StageAssembly, -1, true},
		{"restore unknown stage fails", Stage("Painting"), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewDefaultCapacityLedger()
			err := ledger.Restore(tt.stage, tt.reserved)
			if (err != nil) != tt.wantErr {
				t.Errorf("Restore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && ledger.Reserved(tt.stage) != tt.reserved {
				t.Errorf("Reserved() = %d, want %d", ledger.Reserved(tt.stage), tt.reserved)
			}
		})
	}
}

// =============================================================================
// Utilization and Snapshot Tests
// =============================================================================

func TestCapacityLedger_Utilization(t *testing.T) {
	ledger := mustLedger(t, withCapacity(StageAssembly, 100))

	if err := ledger.Reserve(StageAssembly, 85); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if got := ledger.Utilization(StageAssembly); got != 85.0 {
		t.Errorf("Utilization() = %v, want 85.0", got)
	}
}

func TestCapacityLedger_Snapshot(t *testing.T) {
	ledger := NewDefaultCapacityLedger()
	if err := ledger.Reserve(StageCuttingShaping, 1); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	snapshot := ledger.Snapshot()
	if len(snapshot) != len(StageOrder) {
		t.Fatalf("Snapshot() length = %d, want %d", len(snapshot), len(StageOrder))
	}

	for i, usage := range snapshot {
		if usage.Stage != StageOrder[i] {
			t.Errorf("Snapshot()[%d].Stage = %q, want %q", i, usage.Stage, StageOrder[i])
		}
		if usage.Available != usage.Capacity-usage.Reserved {
			t.Errorf("Snapshot()[%d] Available = %d, want %d", i, usage.Available, usage.Capacity-usage.Reserved)
		}
	}

	if snapshot[1].Reserved != 1 {
		t.Errorf("Snapshot()[1].Reserved = %d, want 1", snapshot[1].Reserved)
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestCapacityLedger_ConcurrentReserve(t *testing.T) {
	ledger := mustLedger(t, withCapacity(StageAssembly, 100))

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	// 200 goroutines fight for 100 units; exactly 100 must win
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Reserve(StageAssembly, 1); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 100 {
		t.Errorf("granted = %d, want 100", granted)
	}
	if got := ledger.Reserved(StageAssembly); got != 100 {
		t.Errorf("Reserved() = %d, want 100", got)
	}
}

func TestCapacityLedger_ConcurrentReserveRelease(t *testing.T) {
	ledger := NewDefaultCapacityLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ledger.Reserve(StageAssembly, 1); err == nil {
				_ = ledger.Release(StageAssembly, 1)
			}
		}()
	}
	wg.Wait()

	if got := ledger.Reserved(StageAssembly); got != 0 {
		t.Errorf("Reserved() after balanced reserve/release = %d, want 0", got)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// withCapacity returns the default capacities with one stage overridden
func withCapacity(stage Stage, capacity int) map[Stage]int {
	capacities := DefaultStageCapacities()
	capacities[stage] = capacity
	return capacities
}

func mustLedger(t *testing.T, capacities map[Stage]int) *CapacityLedger {
	t.Helper()
	ledger, err := NewCapacityLedger(capacities)
	if err != nil {
		t.Fatalf("NewCapacityLedger() error = %v", err)
	}
	return ledger
}
