package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/furniture-mes/scheduling-service/pkg/cloudevents"
)

// EventHandler is a function that handles a CloudEvent
type EventHandler func(ctx context.Context, event *cloudevents.MESCloudEvent) error

// Consumer reads CloudEvents from a single Kafka topic and dispatches them
// to per-event-type handlers. Event types without a handler are committed
// and skipped so the group offset keeps moving.
type Consumer struct {
	topic    string
	reader   *kafka.Reader
	handlers map[string]EventHandler
	logger   *slog.Logger
}

// NewConsumer creates a consumer bound to one topic
func NewConsumer(config *Config, topic string, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		GroupID:        config.ConsumerGroup,
		Topic:          topic,
		MinBytes:       config.MinBytes,
		MaxBytes:       config.MaxBytes,
		MaxWait:        config.MaxWait,
		CommitInterval: config.CommitTimeout,
	})

	return &Consumer{
		topic:    topic,
		reader:   reader,
		handlers: make(map[string]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a specific event type
func (c *Consumer) Subscribe(eventType string, handler EventHandler) {
	c.handlers[eventType] = handler
}

// Start consumes messages until the context is cancelled. It blocks, so
// callers run it in a goroutine; the returned error is the context error.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting consumer", "topic", c.topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Stopping consumer", "topic", c.topic)
				return ctx.Err()
			}
			c.logger.Error("Error fetching message", "topic", c.topic, "error", err)
			continue
		}

		c.processMessage(ctx, msg)
	}
}

// processMessage decodes and dispatches one message. Undecodable messages
// are committed anyway so they cannot wedge the partition; handler failures
// leave the offset uncommitted to allow a redelivery.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	event, err := c.decodeMessage(msg)
	if err != nil {
		c.logger.Error("Error parsing message", "topic", c.topic, "error", err)
		c.commit(ctx, msg)
		return
	}

	handler, ok := c.handlers[event.Type]
	if !ok {
		c.logger.Debug("No handler for event type", "topic", c.topic, "eventType", event.Type)
		c.commit(ctx, msg)
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("Error handling event",
			"topic", c.topic,
			"eventType", event.Type,
			"eventId", event.ID,
			"error", err,
		)
		return
	}

	c.commit(ctx, msg)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Error committing message", "topic", c.topic, "error", err)
	}
}

// decodeMessage unmarshals a Kafka message into a CloudEvent, lifting the
// scheduling extension headers back onto the event
func (c *Consumer) decodeMessage(msg kafka.Message) (*cloudevents.MESCloudEvent, error) {
	var event cloudevents.MESCloudEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	for _, header := range msg.Headers {
		switch header.Key {
		case "ce-mescorrelationid":
			event.CorrelationID = string(header.Value)
		case "ce-mesbatchnumber":
			event.BatchNumber = string(header.Value)
		case "ce-mesorderid":
			event.OrderID = string(header.Value)
		}
	}

	return &event, nil
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
