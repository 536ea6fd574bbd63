package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ProductionCreatedEvent is published when a production run is created
type ProductionCreatedEvent struct {
	ProductionID        string    `json:"productionId"`
	OrderIDs            []string  `json:"orderIds"`
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	Quantity            int       `json:"quantity"`
	Priority            string    `json:"priority"`
	Stage               string    `json:"stage"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (e *ProductionCreatedEvent) EventType() string     { return "mes.production.created" }
func (e *ProductionCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// BatchCreatedEvent is published when orders are aggregated into a batch
type BatchCreatedEvent struct {
	ProductionID      string    `json:"productionId"`
	BatchNumber       string    `json:"batchNumber"`
	OrderIDs          []string  `json:"orderIds"`
	ProductID         string    `json:"productId"`
	AggregateQuantity int       `json:"aggregateQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (e *BatchCreatedEvent) EventType() string     { return "mes.production.batch-created" }
func (e *BatchCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StageAdvancedEvent is published when a production moves to the next stage
type StageAdvancedEvent struct {
	ProductionID string    `json:"productionId"`
	FromStage    string    `json:"fromStage"`
	ToStage      string    `json:"toStage"`
	Progress     float64   `json:"progress"`
	AdvancedAt   time.Time `json:"advancedAt"`
}

func (e *StageAdvancedEvent) EventType() string     { return "mes.production.stage-advanced" }
func (e *StageAdvancedEvent) OccurredAt() time.Time { return e.AdvancedAt }

// ProductionCompletedEvent is published when a production finishes
type ProductionCompletedEvent struct {
	ProductionID string    `json:"productionId"`
	OrderIDs     []string  `json:"orderIds"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (e *ProductionCompletedEvent) EventType() string     { return "mes.production.completed" }
func (e *ProductionCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// PriorityChangedEvent is published when a production's priority changes
type PriorityChangedEvent struct {
	ProductionID string    `json:"productionId"`
	OldPriority  string    `json:"oldPriority"`
	NewPriority  string    `json:"newPriority"`
	ChangedAt    time.Time `json:"changedAt"`
}

func (e *PriorityChangedEvent) EventType() string     { return "mes.production.priority-changed" }
func (e *PriorityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// ProductionCancelledEvent is published when a production is cancelled
type ProductionCancelledEvent struct {
	ProductionID  string    `json:"productionId"`
	Stage         string    `json:"stage"`
	UnitsReleased int       `json:"unitsReleased"`
	Reason        string    `json:"reason,omitempty"`
	CancelledAt   time.Time `json:"cancelledAt"`
}

func (e *ProductionCancelledEvent) EventType() string     { return "mes.production.cancelled" }
func (e *ProductionCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }
