package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/furniture-mes/scheduling-service/pkg/cloudevents"
	"github.com/furniture-mes/scheduling-service/pkg/kafka"
	"github.com/furniture-mes/scheduling-service/pkg/mongodb"
	"github.com/furniture-mes/scheduling-service/pkg/outbox"
	outboxMongo "github.com/furniture-mes/scheduling-service/pkg/outbox/mongodb"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

// ProductionRepository implements domain.ProductionRepository using MongoDB
type ProductionRepository struct {
	client       *mongodb.Client
	collection   *mongo.Collection
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

// NewProductionRepository creates a new ProductionRepository
func NewProductionRepository(client *mongodb.Client, eventFactory *cloudevents.EventFactory) *ProductionRepository {
	repo := &ProductionRepository{
		client:       client,
		collection:   client.Collection("productions"),
		outboxRepo:   outboxMongo.NewOutboxRepository(client.Database()),
		eventFactory: eventFactory,
	}
	repo.ensureIndexes(context.Background())
	_ = repo.outboxRepo.EnsureIndexes(context.Background())

	return repo
}

// ensureIndexes creates the necessary indexes
func (r *ProductionRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "batchNumber", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "items.orderId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "stage", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save persists a production with its domain events in a single transaction.
// The aggregate version guards the write: a concurrent writer that saved
// first bumps the stored version, so the stale write misses the filter,
// falls into the upsert insert path, and trips the unique productionId
// index. That surfaces as ErrStaleProduction.
func (r *ProductionRepository) Save(ctx context.Context, production *domain.Production) error {
	expected := production.Version
	production.Version++
	production.UpdatedAt = time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{
			"productionId": production.ProductionID,
			"version":      expected,
		}
		update := bson.M{"$set": production}

		if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrStaleProduction
			}
			return fmt.Errorf("failed to save production: %w", err)
		}

		if len(production.DomainEvents) > 0 {
			outboxEvents, err := r.toOutboxEvents(sessCtx, production)
			if err != nil {
				return err
			}
			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		production.Version = expected
		if errors.Is(err, domain.ErrStaleProduction) || mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("production %s: %w", production.ProductionID, domain.ErrStaleProduction)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	// cleared only after the commit; a retried transaction must still see them
	production.ClearDomainEvents()

	return nil
}

// toOutboxEvents converts the aggregate's pending domain events into outbox
// rows carrying typed CloudEvents
func (r *ProductionRepository) toOutboxEvents(ctx context.Context, production *domain.Production) ([]*outbox.OutboxEvent, error) {
	outboxEvents := make([]*outbox.OutboxEvent, 0, len(production.DomainEvents))

	for _, event := range production.DomainEvents {
		cloudEvent := r.toCloudEvent(ctx, production, event)
		if production.BatchNumber != "" {
			cloudEvent.BatchNumber = production.BatchNumber
		}

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			production.ProductionID,
			"Production",
			kafka.Topics.ProductionEvents,
			cloudEvent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}

		outboxEvents = append(outboxEvents, outboxEvent)
	}

	return outboxEvents, nil
}

// toCloudEvent maps a domain event onto its typed CloudEvent payload
func (r *ProductionRepository) toCloudEvent(ctx context.Context, production *domain.Production, event domain.DomainEvent) *cloudevents.MESCloudEvent {
	switch e := event.(type) {
	case *domain.ProductionCreatedEvent:
		return r.eventFactory.CreateProductionCreatedEvent(ctx, cloudevents.ProductionCreatedData{
			ProductionID:        e.ProductionID,
			OrderIDs:            e.OrderIDs,
			ProductID:           e.ProductID,
			ProductName:         e.ProductName,
			Quantity:            e.Quantity,
			Priority:            e.Priority,
			Stage:               e.Stage,
			EstimatedCompletion: e.EstimatedCompletion,
		})
	case *domain.BatchCreatedEvent:
		return r.eventFactory.CreateBatchCreatedEvent(ctx, cloudevents.BatchCreatedData{
			ProductionID:      e.ProductionID,
			BatchNumber:       e.BatchNumber,
			OrderIDs:          e.OrderIDs,
			ProductID:         e.ProductID,
			AggregateQuantity: e.AggregateQuantity,
		})
	case *domain.StageAdvancedEvent:
		return r.eventFactory.CreateStageAdvancedEvent(ctx, cloudevents.StageAdvancedData{
			ProductionID: e.ProductionID,
			FromStage:    e.FromStage,
			ToStage:      e.ToStage,
			Progress:     e.Progress,
		})
	case *domain.ProductionCompletedEvent:
		return r.eventFactory.CreateProductionCompletedEvent(ctx, cloudevents.ProductionCompletedData{
			ProductionID: e.ProductionID,
			OrderIDs:     e.OrderIDs,
			CompletedAt:  e.CompletedAt,
		})
	case *domain.PriorityChangedEvent:
		return r.eventFactory.CreatePriorityChangedEvent(ctx, cloudevents.PriorityChangedData{
			ProductionID: e.ProductionID,
			OldPriority:  e.OldPriority,
			NewPriority:  e.NewPriority,
		})
	case *domain.ProductionCancelledEvent:
		return r.eventFactory.CreateProductionCancelledEvent(ctx, cloudevents.ProductionCancelledData{
			ProductionID:  e.ProductionID,
			Stage:         e.Stage,
			UnitsReleased: e.UnitsReleased,
			Reason:        e.Reason,
		})
	default:
		subject := "production/" + production.ProductionID
		return r.eventFactory.CreateEvent(ctx, event.EventType(), subject, event)
	}
}

// FindByID retrieves a production by its ID
func (r *ProductionRepository) FindByID(ctx context.Context, productionID string) (*domain.Production, error) {
	return r.findOne(ctx, bson.M{"productionId": productionID})
}

// FindByBatchNumber retrieves a production by its batch number
func (r *ProductionRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*domain.Production, error) {
	return r.findOne(ctx, bson.M{"batchNumber": batchNumber})
}

// FindByOrderID retrieves the production containing a specific order.
// Cancelled productions are excluded so a re-submitted order resolves to
// its live run.
func (r *ProductionRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Production, error) {
	filter := bson.M{
		"items.orderId": orderID,
		"status":        bson.M{"$ne": domain.ProductionStatusCancelled},
	}
	return r.findOne(ctx, filter)
}

// FindActive retrieves all productions that still hold capacity
func (r *ProductionRepository) FindActive(ctx context.Context) ([]*domain.Production, error) {
	filter := bson.M{"status": bson.M{"$in": bson.A{
		domain.ProductionStatusPending,
		domain.ProductionStatusInProgress,
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.findMany(ctx, filter, opts)
}

// FindPage retrieves a page of productions, optionally filtered by status
func (r *ProductionRepository) FindPage(ctx context.Context, status domain.ProductionStatus, offset, limit int64, sortField string, sortOrder int) ([]*domain.Production, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetSkip(offset).
		SetLimit(limit)

	productions, err := r.findMany(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	return productions, total, nil
}

func (r *ProductionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Production, error) {
	var production domain.Production
	err := r.collection.FindOne(ctx, filter).Decode(&production)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &production, nil
}

func (r *ProductionRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Production, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var productions []*domain.Production
	if err := cursor.All(ctx, &productions); err != nil {
		return nil, err
	}

	return productions, nil
}

// GetOutboxRepository returns the outbox repository for this service
func (r *ProductionRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
