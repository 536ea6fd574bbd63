package cloudevents

import (
	"time"
)

// EventType constants for production scheduling domain events
const (
	// Production events
	ProductionCreated   = "mes.production.created"
	BatchCreated        = "mes.production.batch-created"
	StageAdvanced       = "mes.production.stage-advanced"
	ProductionCompleted = "mes.production.completed"
	PriorityChanged     = "mes.production.priority-changed"
	ProductionCancelled = "mes.production.cancelled"

	// Order events (consumed from the order service)
	OrderConfirmed = "mes.orders.order-confirmed"
	OrderCancelled = "mes.orders.order-cancelled"
)

// Source constants for event sources
const (
	SourceScheduling = "/mes/scheduling-service"
	SourceOrders     = "/mes/order-service"
	SourceCatalog    = "/mes/catalog-service"
)

// MESCloudEvent represents a CloudEvents v1.0 compliant event
type MESCloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// Scheduling-specific extensions
	CorrelationID string `json:"mescorrelationid,omitempty"`
	BatchNumber   string `json:"mesbatchnumber,omitempty"`
	OrderID       string `json:"mesorderid,omitempty"`
}

// ProductionCreatedData represents the data payload for ProductionCreated events
type ProductionCreatedData struct {
	ProductionID        string    `json:"productionId"`
	OrderIDs            []string  `json:"orderIds"`
	ProductID           string    `json:"productId"`
	ProductName         string    `json:"productName"`
	Quantity            int       `json:"quantity"`
	Priority            string    `json:"priority"`
	Stage               string    `json:"stage"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
}

// BatchCreatedData represents the data payload for BatchCreated events
type BatchCreatedData struct {
	ProductionID      string   `json:"productionId"`
	BatchNumber       string   `json:"batchNumber"`
	OrderIDs          []string `json:"orderIds"`
	ProductID         string   `json:"productId"`
	AggregateQuantity int      `json:"aggregateQuantity"`
}

// StageAdvancedData represents the data payload for StageAdvanced events
type StageAdvancedData struct {
	ProductionID string  `json:"productionId"`
	FromStage    string  `json:"fromStage"`
	ToStage      string  `json:"toStage"`
	Progress     float64 `json:"progress"`
}

// ProductionCompletedData represents the data payload for ProductionCompleted events
type ProductionCompletedData struct {
	ProductionID string    `json:"productionId"`
	OrderIDs     []string  `json:"orderIds"`
	CompletedAt  time.Time `json:"completedAt"`
}

// PriorityChangedData represents the data payload for PriorityChanged events
type PriorityChangedData struct {
	ProductionID string `json:"productionId"`
	OldPriority  string `json:"oldPriority"`
	NewPriority  string `json:"newPriority"`
}

// ProductionCancelledData represents the data payload for ProductionCancelled events
type ProductionCancelledData struct {
	ProductionID  string `json:"productionId"`
	Stage         string `json:"stage"`
	UnitsReleased int    `json:"unitsReleased"`
	Reason        string `json:"reason,omitempty"`
}

// OrderCancelledData represents the data payload for consumed OrderCancelled events
type OrderCancelledData struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}
