package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/furniture-mes/scheduling-service/pkg/cloudevents"
	"github.com/furniture-mes/scheduling-service/pkg/kafka"
	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/application"
)

// OrderEventsConsumer reacts to order lifecycle events from order-service.
// A cancelled order pulls its production out of the pipeline and frees the
// capacity it held.
type OrderEventsConsumer struct {
	consumer  *kafka.Consumer
	scheduler *application.SchedulingApplicationService
	logger    *logging.Logger
}

// NewOrderEventsConsumer creates a consumer subscribed to the orders topic
func NewOrderEventsConsumer(
	config *kafka.Config,
	scheduler *application.SchedulingApplicationService,
	logger *logging.Logger,
) *OrderEventsConsumer {
	c := &OrderEventsConsumer{
		consumer:  kafka.NewConsumer(config, kafka.Topics.OrdersEvents, logger.Logger),
		scheduler: scheduler,
		logger:    logger,
	}

	c.consumer.Subscribe(cloudevents.OrderCancelled, c.handleOrderCancelled)

	return c
}

// Start consumes until the context is cancelled. It blocks, so main runs
// it in a goroutine.
func (c *OrderEventsConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close stops the underlying consumer
func (c *OrderEventsConsumer) Close() error {
	return c.consumer.Close()
}

func (c *OrderEventsConsumer) handleOrderCancelled(ctx context.Context, event *cloudevents.MESCloudEvent) error {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode order-cancelled payload: %w", err)
	}

	var data cloudevents.OrderCancelledData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to decode order-cancelled payload: %w", err)
	}

	if data.OrderID == "" {
		c.logger.Warn("Order-cancelled event without order ID", "eventId", event.ID)
		return nil
	}

	reason := data.Reason
	if reason == "" {
		reason = "order cancelled"
	}

	c.logger.Info("Processing order cancellation", "orderId", data.OrderID)
	return c.scheduler.CancelByOrder(ctx, data.OrderID, reason)
}
