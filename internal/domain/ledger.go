package domain

import (
	"errors"
	"fmt"
	"sync"
)

// Errors
var (
	ErrInvalidUnitCount = errors.New("unit count must be positive")
	ErrInvalidCapacity  = errors.New("stage capacity must be positive")
)

// CapacityExceededError is returned when a reservation does not fit. The
// ledger never clamps a request: a reservation either fits in full or is
// refused with the shortfall.
type CapacityExceededError struct {
	Stage     Stage
	Requested int
	Available int
	Shortfall int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("insufficient capacity at stage %q: requested %d, available %d (shortfall %d)",
		e.Stage, e.Requested, e.Available, e.Shortfall)
}

// UnknownReleaseError indicates an attempt to release more units than are
// reserved for a stage. This is a data-integrity fault, not a recoverable
// condition; the ledger is left unchanged.
type UnknownReleaseError struct {
	Stage     Stage
	Requested int
	Reserved  int
}

func (e *UnknownReleaseError) Error() string {
	return fmt.Sprintf("unknown release at stage %q: requested %d, only %d reserved",
		e.Stage, e.Requested, e.Reserved)
}

// stageAccount tracks reserved unit-equivalents for one stage
type stageAccount struct {
	mu       sync.Mutex
	capacity int
	reserved int
}

// CapacityLedger tracks reserved production capacity per stage, measured in
// unit-equivalents. Reserve and Release are atomic per stage.
type CapacityLedger struct {
	accounts map[Stage]*stageAccount
}

// NewCapacityLedger creates a ledger with the given per-stage capacities.
// Every stage in the workshop sequence must have a positive capacity.
func NewCapacityLedger(capacities map[Stage]int) (*CapacityLedger, error) {
	accounts := make(map[Stage]*stageAccount, len(StageOrder))
	for _, stage := range StageOrder {
		capacity, ok := capacities[stage]
		if !ok {
			return nil, fmt.Errorf("missing capacity for stage %q", stage)
		}
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: stage %q has capacity %d", ErrInvalidCapacity, stage, capacity)
		}
		accounts[stage] = &stageAccount{capacity: capacity}
	}
	return &CapacityLedger{accounts: accounts}, nil
}

// NewDefaultCapacityLedger creates a ledger with the workshop defaults
func NewDefaultCapacityLedger() *CapacityLedger {
	ledger, err := NewCapacityLedger(DefaultStageCapacities())
	if err != nil {
		panic(err) // defaults are always valid
	}
	return ledger
}

func (l *CapacityLedger) account(stage Stage) (*stageAccount, error) {
	acc, ok := l.accounts[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	return acc, nil
}

// Reserve atomically reserves units at a stage. If the request exceeds the
// available capacity the reservation is refused entirely and a
// CapacityExceededError carrying the shortfall is returned.
func (l *CapacityLedger) Reserve(stage Stage, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUnitCount, units)
	}

	acc, err := l.account(stage)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	available := acc.capacity - acc.reserved
	if units > available {
		return &CapacityExceededError{
			Stage:     stage,
			Requested: units,
			Available: available,
			Shortfall: units - available,
		}
	}

	acc.reserved += units
	return nil
}

// Release returns reserved units at a stage. Releasing more units than are
// reserved is an UnknownReleaseError and leaves the ledger unchanged.
func (l *CapacityLedger) Release(stage Stage, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUnitCount, units)
	}

	acc, err := l.account(stage)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if units > acc.reserved {
		return &UnknownReleaseError{
			Stage:     stage,
			Requested: units,
			Reserved:  acc.reserved,
		}
	}

	acc.reserved -= units
	return nil
}

// Restore sets the reserved count for a stage, used when rebuilding the
// ledger from a persisted snapshot at startup.
func (l *CapacityLedger) Restore(stage Stage, reserved int) error {
	if reserved < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUnitCount, reserved)
	}

	acc, err := l.account(stage)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if reserved > acc.capacity {
		return fmt.Errorf("reserved %d exceeds capacity %d for stage %q", reserved, acc.capacity, stage)
	}

	acc.reserved = reserved
	return nil
}

// Capacity returns the total unit capacity of a stage
func (l *CapacityLedger) Capacity(stage Stage) int {
	acc, err := l.account(stage)
	if err != nil {
		return 0
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.capacity
}

// Reserved returns the reserved unit count of a stage
func (l *CapacityLedger) Reserved(stage Stage) int {
	acc, err := l.account(stage)
	if err != nil {
		return 0
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.reserved
}

// Available returns the free unit count of a stage
func (l *CapacityLedger) Available(stage Stage) int {
	acc, err := l.account(stage)
	if err != nil {
		return 0
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.capacity - acc.reserved
}

// Utilization returns the stage utilization as a percentage (0-100)
func (l *CapacityLedger) Utilization(stage Stage) float64 {
	acc, err := l.account(stage)
	if err != nil {
		return 0
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return float64(acc.reserved) / float64(acc.capacity) * 100
}

// StageUsage is a point-in-time view of one stage capacity account
type StageUsage struct {
	Stage     Stage
	Capacity  int
	Reserved  int
	Available int
}

// Utilization returns the usage as a percentage (0-100)
func (u StageUsage) Utilization() float64 {
	if u.Capacity == 0 {
		return 0
	}
	return float64(u.Reserved) / float64(u.Capacity) * 100
}

// Snapshot returns the usage of every stage in workshop order
func (l *CapacityLedger) Snapshot() []StageUsage {
	usages := make([]StageUsage, 0, len(StageOrder))
	for _, stage := range StageOrder {
		acc := l.accounts[stage]
		acc.mu.Lock()
		usages = append(usages, StageUsage{
			Stage:     stage,
			Capacity:  acc.capacity,
			Reserved:  acc.reserved,
			Available: acc.capacity - acc.reserved,
		})
		acc.mu.Unlock()
	}
	return usages
}
