package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrEmptyProduction      = errors.New("production must contain at least one order")
	ErrInvalidQuantity      = errors.New("order quantity must be positive")
	ErrDuplicateOrder       = errors.New("order appears more than once in the batch")
	ErrInvalidPriority      = errors.New("invalid priority value")
	ErrProductionFinalized  = errors.New("production is already completed or cancelled")
	ErrAlreadyAtFinalStage  = errors.New("production is already at the final stage")
	ErrProductionNotStarted = errors.New("production has no reserved capacity")
	ErrStaleProduction      = errors.New("production was modified concurrently")
)

// InconsistentBatchError indicates that a batch request declared a quantity
// for an order that does not match the order's trackable-item total. Always
// a caller bug; the batch is rejected as a whole.
type InconsistentBatchError struct {
	OrderID  string
	Declared int
	Actual   int
}

func (e *InconsistentBatchError) Error() string {
	return fmt.Sprintf("inconsistent batch: order %s declares %d units but carries %d trackable units",
		e.OrderID, e.Declared, e.Actual)
}

// ProductionStatus represents the lifecycle status of a production run.
// Runs are admitted as pending and move to in_progress on their first stage
// transition.
type ProductionStatus string

const (
	ProductionStatusPending    ProductionStatus = "pending"
	ProductionStatusInProgress ProductionStatus = "in_progress"
	ProductionStatusCompleted  ProductionStatus = "completed"
	ProductionStatusCancelled  ProductionStatus = "cancelled"
)

// Priority represents a production priority
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority value
func ParsePriority(p string) (Priority, error) {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(p), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
}

// BatchItem records one order's contribution to a production run
type BatchItem struct {
	OrderID  string `bson:"orderId"`
	Quantity int    `bson:"quantity"`
}

// StageEntry records a production entering a stage
type StageEntry struct {
	Stage     Stage     `bson:"stage"`
	EnteredAt time.Time `bson:"enteredAt"`
}

// durationBatchSize is the unit quantity the workshop processes as one
// internal batch. It only drives the completion estimate: two extra days
// per started batch.
const durationBatchSize = 10

// baseProductionDuration is the lead time before per-quantity extra days
const baseProductionDuration = 14 * 24 * time.Hour

// Production is the aggregate root for a scheduled production run. A run
// covers a single product and one or more orders; runs with more than one
// order carry a batch number.
type Production struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	ProductionID        string             `bson:"productionId"`
	BatchNumber         string             `bson:"batchNumber,omitempty"`
	ProductID           string             `bson:"productId"`
	ProductName         string             `bson:"productName"`
	Items               []BatchItem        `bson:"items"`
	Quantity            int                `bson:"quantity"` // sum of item quantities
	Stage               Stage              `bson:"stage"`
	UnitsReserved       int                `bson:"unitsReserved"` // unit-equivalents reserved at the current stage
	Priority            Priority           `bson:"priority"`
	Status              ProductionStatus   `bson:"status"`
	Notes               string             `bson:"notes,omitempty"`
	StageLog            []StageEntry       `bson:"stageLog"`
	StageStartedAt      time.Time          `bson:"stageStartedAt"`
	EstimatedCompletion time.Time          `bson:"estimatedCompletion"`
	ActualCompletion    *time.Time         `bson:"actualCompletion,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt"`
	Version             int64              `bson:"version"`  // bumped on every save, guards concurrent writers
	DomainEvents        []DomainEvent      `bson:"-"`        // Transient
}

// NewProduction creates a production run for one or more orders of a single
// product. The product must be trackable; items must be non-empty, carry
// positive quantities, and reference distinct orders.
func NewProduction(productionID string, product Product, items []BatchItem, priority Priority) (*Production, error) {
	if !product.Trackable {
		return nil, &NonTrackableProductError{ProductID: product.ID, ProductName: product.Name}
	}
	if len(items) == 0 {
		return nil, ErrEmptyProduction
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(items))
	quantity := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: order %s has quantity %d", ErrInvalidQuantity, item.OrderID, item.Quantity)
		}
		if seen[item.OrderID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrder, item.OrderID)
		}
		seen[item.OrderID] = true
		quantity += item.Quantity
	}

	now := time.Now()
	entryStage := EntryStage()

	p := &Production{
		ProductionID:        productionID,
		ProductID:           product.ID,
		ProductName:         product.Name,
		Items:               items,
		Quantity:            quantity,
		Stage:               entryStage,
		UnitsReserved:       quantity,
		Priority:            priority,
		Status:              ProductionStatusPending,
		StageLog:            []StageEntry{{Stage: entryStage, EnteredAt: now}},
		StageStartedAt:      now,
		EstimatedCompletion: EstimateCompletion(now, quantity),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	p.AddDomainEvent(&ProductionCreatedEvent{
		ProductionID:        productionID,
		OrderIDs:            p.OrderIDs(),
		ProductID:           product.ID,
		ProductName:         product.Name,
		Quantity:            quantity,
		Priority:            string(priority),
		Stage:               string(entryStage),
		EstimatedCompletion: p.EstimatedCompletion,
		CreatedAt:           now,
	})

	return p, nil
}

// NewBatch creates a production run that aggregates multiple orders of the
// same product under a batch number.
func NewBatch(productionID string, product Product, items []BatchItem, priority Priority, at time.Time) (*Production, error) {
	p, err := NewProduction(productionID, product, items, priority)
	if err != nil {
		return nil, err
	}

	p.BatchNumber = GenerateBatchNumber(at)

	p.AddDomainEvent(&BatchCreatedEvent{
		ProductionID:      productionID,
		BatchNumber:       p.BatchNumber,
		OrderIDs:          p.OrderIDs(),
		ProductID:         product.ID,
		AggregateQuantity: p.Quantity,
		CreatedAt:         p.CreatedAt,
	})

	return p, nil
}

// GenerateBatchNumber derives a batch number from a timestamp
func GenerateBatchNumber(at time.Time) string {
	return "BATCH-" + at.Format("20060102150405")
}

// EstimateCompletion projects the completion date for a quantity: two weeks
// base plus two extra days per started batch of durationBatchSize units.
func EstimateCompletion(from time.Time, quantity int) time.Time {
	return from.Add(EstimateDuration(quantity))
}

// EstimateDuration returns the projected production duration for a quantity
func EstimateDuration(quantity int) time.Duration {
	extraDays := StartedBatches(quantity) * 2
	return baseProductionDuration + time.Duration(extraDays)*24*time.Hour
}

// StartedBatches returns how many internal batches a quantity occupies
func StartedBatches(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	return (quantity + durationBatchSize - 1) / durationBatchSize
}

// OrderIDs returns the IDs of all constituent orders
func (p *Production) OrderIDs() []string {
	ids := make([]string, len(p.Items))
	for i, item := range p.Items {
		ids[i] = item.OrderID
	}
	return ids
}

// IsBatch reports whether the run aggregates multiple orders
func (p *Production) IsBatch() bool {
	return p.BatchNumber != ""
}

// IsActive reports whether the run still holds capacity
func (p *Production) IsActive() bool {
	return p.Status == ProductionStatusPending || p.Status == ProductionStatusInProgress
}

func (p *Production) isFinalized() bool {
	return p.Status == ProductionStatusCompleted || p.Status == ProductionStatusCancelled
}

// AdvanceTo moves the production to the next stage. The caller is
// responsible for the accompanying ledger movements; the aggregate only
// validates the transition and records it. A pending run becomes
// in_progress on its first advance.
func (p *Production) AdvanceTo(next Stage) error {
	if p.isFinalized() {
		return ErrProductionFinalized
	}

	expected, ok := p.Stage.Next()
	if !ok {
		return ErrAlreadyAtFinalStage
	}
	if next != expected {
		return fmt.Errorf("%w: cannot move from %q to %q", ErrUnknownStage, p.Stage, next)
	}

	now := time.Now()
	from := p.Stage
	p.Stage = next
	p.Status = ProductionStatusInProgress
	p.StageStartedAt = now
	p.StageLog = append(p.StageLog, StageEntry{Stage: next, EnteredAt: now})
	p.UpdatedAt = now

	p.AddDomainEvent(&StageAdvancedEvent{
		ProductionID: p.ProductionID,
		FromStage:    string(from),
		ToStage:      string(next),
		Progress:     p.Progress(),
		AdvancedAt:   now,
	})

	return nil
}

// Complete finishes the production at the final stage
func (p *Production) Complete() error {
	if p.isFinalized() {
		return ErrProductionFinalized
	}
	if !p.Stage.IsFinal() {
		return fmt.Errorf("production %s is at stage %q, not the final stage", p.ProductionID, p.Stage)
	}

	now := time.Now()
	p.Status = ProductionStatusCompleted
	p.ActualCompletion = &now
	p.UnitsReserved = 0
	p.UpdatedAt = now

	p.AddDomainEvent(&ProductionCompletedEvent{
		ProductionID: p.ProductionID,
		OrderIDs:     p.OrderIDs(),
		CompletedAt:  now,
	})

	return nil
}

// Cancel cancels the production. Cancelling an already-cancelled run is a
// benign no-op; a completed run cannot be cancelled. Returns the units that
// were reserved so the caller can release them.
func (p *Production) Cancel(reason string) (int, error) {
	if p.Status == ProductionStatusCancelled {
		return 0, nil
	}
	if p.Status == ProductionStatusCompleted {
		return 0, ErrProductionFinalized
	}

	now := time.Now()
	released := p.UnitsReserved
	stage := p.Stage
	p.Status = ProductionStatusCancelled
	p.UnitsReserved = 0
	p.UpdatedAt = now

	p.AddDomainEvent(&ProductionCancelledEvent{
		ProductionID:  p.ProductionID,
		Stage:         string(stage),
		UnitsReleased: released,
		Reason:        reason,
		CancelledAt:   now,
	})

	return released, nil
}

// ChangePriority updates the priority. This is metadata only and never
// affects capacity. A note line records the change.
func (p *Production) ChangePriority(newPriority Priority, note string) error {
	if p.isFinalized() {
		return ErrProductionFinalized
	}
	if _, err := ParsePriority(string(newPriority)); err != nil {
		return err
	}
	if newPriority == p.Priority {
		return nil
	}

	now := time.Now()
	old := p.Priority
	p.Priority = newPriority
	if note != "" {
		if p.Notes != "" {
			p.Notes += "\n"
		}
		p.Notes += fmt.Sprintf("[%s] Priority changed from %s to %s: %s",
			now.Format(time.RFC3339), old, newPriority, note)
	}
	p.UpdatedAt = now

	p.AddDomainEvent(&PriorityChangedEvent{
		ProductionID: p.ProductionID,
		OldPriority:  string(old),
		NewPriority:  string(newPriority),
		ChangedAt:    now,
	})

	return nil
}

// Progress returns the overall completion percentage based on stages passed
func (p *Production) Progress() float64 {
	if p.Status == ProductionStatusCompleted {
		return 100
	}
	return float64(p.Stage.Index()) / float64(len(StageOrder)) * 100
}

// AddDomainEvent adds a domain event to the aggregate
func (p *Production) AddDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}

// ClearDomainEvents clears all domain events after they are persisted
func (p *Production) ClearDomainEvents() {
	p.DomainEvents = nil
}
