package domain

import (
	"errors"
	"testing"
	"time"
)

func diningTable() Product {
	return Product{ID: "PROD-100", Name: "Dining Table", Trackable: true}
}

func alkansyaBox() Product {
	return Product{ID: "PROD-200", Name: "Alkansya Coin Box", Trackable: false}
}

// =============================================================================
// Batching and Estimate Tests
// =============================================================================

func TestStartedBatches(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{"zero quantity needs no batch", 0, 0},
		{"negative quantity needs no batch", -5, 0},
		{"single unit starts one batch", 1, 1},
		{"full batch", 10, 1},
		{"started batch rounds up", 11, 2},
		{"thirty units fill three batches", 30, 3},
		{"large order", 95, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartedBatches(tt.quantity); got != tt.want {
				t.Errorf("StartedBatches(%d) = %d, want %d", tt.quantity, got, tt.want)
			}
		})
	}
}

func TestEstimateDuration(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name     string
		quantity int
		want     time.Duration
	}{
		{"one batch adds two days", 5, 16 * day},
		{"boundary batch", 10, 16 * day},
		{"second batch adds two more", 11, 18 * day},
		{"three batches", 30, 20 * day},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDuration(tt.quantity); got != tt.want {
				t.Errorf("EstimateDuration(%d) = %v, want %v", tt.quantity, got, tt.want)
			}
		})
	}
}

func TestEstimateCompletion(t *testing.T) {
	from := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	got := EstimateCompletion(from, 25)
	want := from.Add((14 + 3*2) * 24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("EstimateCompletion() = %v, want %v", got, want)
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewProduction(t *testing.T) {
	t.Run("valid single-order production", func(t *testing.T) {
		p, err := NewProduction("PRD-1", diningTable(), []BatchItem{{OrderID: "ORD-1", Quantity: 12}}, PriorityMedium)
		if err != nil {
			t.Fatalf("NewProduction() error = %v", err)
		}

		if p.ProductionID != "PRD-1" {
			t.Errorf("ProductionID = %q, want %q", p.ProductionID, "PRD-1")
		}
		if p.Quantity != 12 {
			t.Errorf("Quantity = %d, want 12", p.Quantity)
		}
		if p.UnitsReserved != 12 {
			t.Errorf("UnitsReserved = %d, want 12", p.UnitsReserved)
		}
		if p.Stage != EntryStage() {
			t.Errorf("Stage = %q, want %q", p.Stage, EntryStage())
		}
		if p.Status != ProductionStatusPending {
			t.Errorf("Status = %q, want %q", p.Status, ProductionStatusPending)
		}
		if p.IsBatch() {
			t.Error("IsBatch() = true for a single-order production")
		}
		if len(p.StageLog) != 1 || p.StageLog[0].Stage != EntryStage() {
			t.Errorf("StageLog = %+v, want single entry at %q", p.StageLog, EntryStage())
		}
		if len(p.DomainEvents) != 1 {
			t.Fatalf("DomainEvents length = %d, want 1", len(p.DomainEvents))
		}
		if _, ok := p.DomainEvents[0].(*ProductionCreatedEvent); !ok {
			t.Errorf("DomainEvents[0] = %T, want *ProductionCreatedEvent", p.DomainEvents[0])
		}
	})

	t.Run("non-trackable product is refused", func(t *testing.T) {
		_, err := NewProduction("PRD-2", alkansyaBox(), []BatchItem{{OrderID: "ORD-1", Quantity: 5}}, PriorityMedium)

		var nonTrackable *NonTrackableProductError
		if !errors.As(err, &nonTrackable) {
			t.Fatalf("NewProduction() error = %v, want NonTrackableProductError", err)
		}
		if nonTrackable.ProductID != "PROD-200" {
			t.Errorf("ProductID = %q, want %q", nonTrackable.ProductID, "PROD-200")
		}
	})

	t.Run("empty item list is refused", func(t *testing.T) {
		if _, err := NewProduction("PRD-3", diningTable(), nil, PriorityMedium); !errors.Is(err, ErrEmptyProduction) {
			t.Errorf("NewProduction() error = %v, want ErrEmptyProduction", err)
		}
	})

	t.Run("non-positive quantity is refused", func(t *testing.T) {
		for _, qty := range []int{0, -4} {
			_, err := NewProduction("PRD-4", diningTable(), []BatchItem{{OrderID: "ORD-1", Quantity: qty}}, PriorityMedium)
			if !errors.Is(err, ErrInvalidQuantity) {
				t.Errorf("NewProduction(qty=%d) error = %v, want ErrInvalidQuantity", qty, err)
			}
		}
	})

	t.Run("duplicate order is refused", func(t *testing.T) {
		items := []BatchItem{{OrderID: "ORD-1", Quantity: 5}, {OrderID: "ORD-1", Quantity: 3}}
		if _, err := NewProduction("PRD-5", diningTable(), items, PriorityMedium); !errors.Is(err, ErrDuplicateOrder) {
			t.Errorf("NewProduction() error = %v, want ErrDuplicateOrder", err)
		}
	})

	t.Run("invalid priority is refused", func(t *testing.T) {
		_, err := NewProduction("PRD-6", diningTable(), []BatchItem{{OrderID: "ORD-1", Quantity: 5}}, Priority("critical"))
		if !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("NewProduction() error = %v, want ErrInvalidPriority", err)
		}
	})
}

func TestNewBatch(t *testing.T) {
	at := time.Date(2025, 3, 15, 9, 30, 45, 0, time.UTC)
	items := []BatchItem{
		{OrderID: "ORD-1", Quantity: 10},
		{OrderID: "ORD-2", Quantity: 15},
		{OrderID: "ORD-3", Quantity: 5},
	}

	p, err := NewBatch("PRD-7", diningTable(), items, PriorityHigh, at)
	if err != nil {
		t.Fatalf("NewBatch() error = %v", err)
	}

	if p.Quantity != 30 {
		t.Errorf("Quantity = %d, want 30", p.Quantity)
	}
	if p.UnitsReserved != 30 {
		t.Errorf("UnitsReserved = %d, want 30", p.UnitsReserved)
	}
	if p.BatchNumber != "BATCH-20250315093045" {
		t.Errorf("BatchNumber = %q, want %q", p.BatchNumber, "BATCH-20250315093045")
	}
	if !p.IsBatch() {
		t.Error("IsBatch() = false")
	}

	orderIDs := p.OrderIDs()
	if len(orderIDs) != 3 || orderIDs[0] != "ORD-1" || orderIDs[2] != "ORD-3" {
		t.Errorf("OrderIDs() = %v", orderIDs)
	}

	if len(p.DomainEvents) != 2 {
		t.Fatalf("DomainEvents length = %d, want 2", len(p.DomainEvents))
	}
	batchEvent, ok := p.DomainEvents[1].(*BatchCreatedEvent)
	if !ok {
		t.Fatalf("DomainEvents[1] = %T, want *BatchCreatedEvent", p.DomainEvents[1])
	}
	if batchEvent.AggregateQuantity != 30 {
		t.Errorf("AggregateQuantity = %d, want 30", batchEvent.AggregateQuantity)
	}
}

// =============================================================================
// Stage Transition Tests
// =============================================================================

func TestProduction_AdvanceTo(t *testing.T) {
	t.Run("advances through the full sequence", func(t *testing.T) {
		p := mustProduction(t, 10)

		for i := 1; i < len(StageOrder); i++ {
			if err := p.AdvanceTo(StageOrder[i]); err != nil {
				t.Fatalf("AdvanceTo(%q) error = %v", StageOrder[i], err)
			}
			if p.Stage != StageOrder[i] {
				t.Errorf("Stage = %q, want %q", p.Stage, StageOrder[i])
			}
		}

		if p.Status != ProductionStatusInProgress {
			t.Errorf("Status = %q after advancing, want %q", p.Status, ProductionStatusInProgress)
		}

		if len(p.StageLog) != len(StageOrder) {
			t.Errorf("StageLog length = %d, want %d", len(p.StageLog), len(StageOrder))
		}
	})

	t.Run("skipping a stage is refused", func(t *testing.T) {
		p := mustProduction(t, 10)

		if err := p.AdvanceTo(StageAssembly); err == nil {
			t.Error("AdvanceTo() skipping a stage succeeded, want error")
		}
		if p.Stage != EntryStage() {
			t.Errorf("Stage = %q after refused transition, want %q", p.Stage, EntryStage())
		}
	})

	t.Run("advancing past the final stage is refused", func(t *testing.T) {
		p := atFinalStage(t)

		if err := p.AdvanceTo(EntryStage()); !errors.Is(err, ErrAlreadyAtFinalStage) {
			t.Errorf("AdvanceTo() error = %v, want ErrAlreadyAtFinalStage", err)
		}
	})

	t.Run("finalized production cannot advance", func(t *testing.T) {
		p := mustProduction(t, 10)
		if _, err := p.Cancel("test"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}

		if err := p.AdvanceTo(StageCuttingShaping); !errors.Is(err, ErrProductionFinalized) {
			t.Errorf("AdvanceTo() error = %v, want ErrProductionFinalized", err)
		}
	})
}

func TestProduction_Complete(t *testing.T) {
	t.Run("completes at the final stage", func(t *testing.T) {
		p := atFinalStage(t)

		if err := p.Complete(); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if p.Status != ProductionStatusCompleted {
			t.Errorf("Status = %q, want %q", p.Status, ProductionStatusCompleted)
		}
		if p.UnitsReserved != 0 {
			t.Errorf("UnitsReserved = %d, want 0", p.UnitsReserved)
		}
		if p.ActualCompletion == nil {
			t.Error("ActualCompletion = nil")
		}
		if got := p.Progress(); got != 100 {
			t.Errorf("Progress() = %v, want 100", got)
		}
	})

	t.Run("cannot complete before the final stage", func(t *testing.T) {
		p := mustProduction(t, 10)
		if err := p.Complete(); err == nil {
			t.Error("Complete() at entry stage succeeded, want error")
		}
	})

	t.Run("cannot complete twice", func(t *testing.T) {
		p := atFinalStage(t)
		if err := p.Complete(); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if err := p.Complete(); !errors.Is(err, ErrProductionFinalized) {
			t.Errorf("second Complete() error = %v, want ErrProductionFinalized", err)
		}
	})
}

// =============================================================================
// Cancellation Tests
// =============================================================================

func TestProduction_Cancel(t *testing.T) {
	t.Run("cancel releases the reserved units", func(t *testing.T) {
		p := mustProduction(t, 25)

		released, err := p.Cancel("customer withdrew")
		if err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if released != 25 {
			t.Errorf("released = %d, want 25", released)
		}
		if p.Status != ProductionStatusCancelled {
			t.Errorf("Status = %q, want %q", p.Status, ProductionStatusCancelled)
		}
		if p.UnitsReserved != 0 {
			t.Errorf("UnitsReserved = %d, want 0", p.UnitsReserved)
		}
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		p := mustProduction(t, 25)
		if _, err := p.Cancel("first"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}

		released, err := p.Cancel("again")
		if err != nil {
			t.Errorf("second Cancel() error = %v, want nil", err)
		}
		if released != 0 {
			t.Errorf("second Cancel() released = %d, want 0", released)
		}
	})

	t.Run("completed production cannot be cancelled", func(t *testing.T) {
		p := atFinalStage(t)
		if err := p.Complete(); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if _, err := p.Cancel("too late"); !errors.Is(err, ErrProductionFinalized) {
			t.Errorf("Cancel() error = %v, want ErrProductionFinalized", err)
		}
	})
}

// =============================================================================
// Priority Tests
// =============================================================================

func TestProduction_ChangePriority(t *testing.T) {
	t.Run("change records a note", func(t *testing.T) {
		p := mustProduction(t, 10)

		if err := p.ChangePriority(PriorityUrgent, "rush order"); err != nil {
			t.Fatalf("ChangePriority() error = %v", err)
		}
		if p.Priority != PriorityUrgent {
			t.Errorf("Priority = %q, want %q", p.Priority, PriorityUrgent)
		}
		if p.Notes == "" {
			t.Error("Notes is empty after priority change with a note")
		}
	})

	t.Run("same priority is a no-op", func(t *testing.T) {
		p := mustProduction(t, 10)
		events := len(p.DomainEvents)

		if err := p.ChangePriority(PriorityMedium, "no change"); err != nil {
			t.Fatalf("ChangePriority() error = %v", err)
		}
		if len(p.DomainEvents) != events {
			t.Errorf("DomainEvents length = %d, want %d", len(p.DomainEvents), events)
		}
		if p.Notes != "" {
			t.Errorf("Notes = %q, want empty", p.Notes)
		}
	})

	t.Run("invalid priority is refused", func(t *testing.T) {
		p := mustProduction(t, 10)
		if err := p.ChangePriority(Priority("asap"), ""); !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("ChangePriority() error = %v, want ErrInvalidPriority", err)
		}
	})

	t.Run("finalized production is refused", func(t *testing.T) {
		p := mustProduction(t, 10)
		if _, err := p.Cancel("test"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if err := p.ChangePriority(PriorityHigh, ""); !errors.Is(err, ErrProductionFinalized) {
			t.Errorf("ChangePriority() error = %v, want ErrProductionFinalized", err)
		}
	})
}

// =============================================================================
// Progress Tests
// =============================================================================

func TestProduction_Progress(t *testing.T) {
	p := mustProduction(t, 10)

	if got := p.Progress(); got != 0 {
		t.Errorf("Progress() at entry = %v, want 0", got)
	}

	if err := p.AdvanceTo(StageCuttingShaping); err != nil {
		t.Fatalf("AdvanceTo() error = %v", err)
	}
	want := float64(1) / float64(len(StageOrder)) * 100
	if got := p.Progress(); got != want {
		t.Errorf("Progress() = %v, want %v", got, want)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func mustProduction(t *testing.T, quantity int) *Production {
	t.Helper()
	p, err := NewProduction("PRD-T", diningTable(), []BatchItem{{OrderID: "ORD-T", Quantity: quantity}}, PriorityMedium)
	if err != nil {
		t.Fatalf("NewProduction() error = %v", err)
	}
	return p
}

func atFinalStage(t *testing.T) *Production {
	t.Helper()
	p := mustProduction(t, 10)
	for i := 1; i < len(StageOrder); i++ {
		if err := p.AdvanceTo(StageOrder[i]); err != nil {
			t.Fatalf("AdvanceTo(%q) error = %v", StageOrder[i], err)
		}
	}
	return p
}
