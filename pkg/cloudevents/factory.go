package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for production scheduling domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new MESCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *MESCloudEvent {
	return &MESCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}
}

// CreateProductionCreatedEvent creates a ProductionCreated event
func (f *EventFactory) CreateProductionCreatedEvent(ctx context.Context, data ProductionCreatedData) *MESCloudEvent {
	return f.CreateEvent(ctx, ProductionCreated, "production/"+data.ProductionID, data)
}

// CreateBatchCreatedEvent creates a BatchCreated event
func (f *EventFactory) CreateBatchCreatedEvent(ctx context.Context, data BatchCreatedData) *MESCloudEvent {
	event := f.CreateEvent(ctx, BatchCreated, "production/"+data.ProductionID, data)
	event.BatchNumber = data.BatchNumber
	return event
}

// CreateStageAdvancedEvent creates a StageAdvanced event
func (f *EventFactory) CreateStageAdvancedEvent(ctx context.Context, data StageAdvancedData) *MESCloudEvent {
	return f.CreateEvent(ctx, StageAdvanced, "production/"+data.ProductionID, data)
}

// CreateProductionCompletedEvent creates a ProductionCompleted event
func (f *EventFactory) CreateProductionCompletedEvent(ctx context.Context, data ProductionCompletedData) *MESCloudEvent {
	return f.CreateEvent(ctx, ProductionCompleted, "production/"+data.ProductionID, data)
}

// CreatePriorityChangedEvent creates a PriorityChanged event
func (f *EventFactory) CreatePriorityChangedEvent(ctx context.Context, data PriorityChangedData) *MESCloudEvent {
	return f.CreateEvent(ctx, PriorityChanged, "production/"+data.ProductionID, data)
}

// CreateProductionCancelledEvent creates a ProductionCancelled event
func (f *EventFactory) CreateProductionCancelledEvent(ctx context.Context, data ProductionCancelledData) *MESCloudEvent {
	return f.CreateEvent(ctx, ProductionCancelled, "production/"+data.ProductionID, data)
}
