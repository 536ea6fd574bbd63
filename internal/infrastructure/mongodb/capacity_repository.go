package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/furniture-mes/scheduling-service/pkg/mongodb"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

// stageUsageDocument is the persisted form of one stage's reservations
type stageUsageDocument struct {
	Stage    string `bson:"stage"`
	Capacity int    `bson:"capacity"`
	Reserved int    `bson:"reserved"`
}

// CapacityRepository implements domain.CapacityRepository using MongoDB.
// One document per stage; the snapshot only seeds the in-memory ledger
// rebuild after a restart.
type CapacityRepository struct {
	collection *mongo.Collection
}

// NewCapacityRepository creates a new CapacityRepository
func NewCapacityRepository(client *mongodb.Client) *CapacityRepository {
	repo := &CapacityRepository{collection: client.Collection("stage_capacity")}
	repo.ensureIndexes(context.Background())

	return repo
}

func (r *CapacityRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stage", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// SaveUsage persists the current usage of every stage
func (r *CapacityRepository) SaveUsage(ctx context.Context, usages []domain.StageUsage) error {
	if len(usages) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(usages))
	for _, usage := range usages {
		doc := stageUsageDocument{
			Stage:    string(usage.Stage),
			Capacity: usage.Capacity,
			Reserved: usage.Reserved,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"stage": doc.Stage}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, models)
	return err
}

// LoadUsage retrieves the persisted usage of every stage. Documents for
// stages the ledger no longer knows are skipped by the caller.
func (r *CapacityRepository) LoadUsage(ctx context.Context) ([]domain.StageUsage, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []stageUsageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	usages := make([]domain.StageUsage, 0, len(docs))
	for _, doc := range docs {
		usages = append(usages, domain.StageUsage{
			Stage:    domain.Stage(doc.Stage),
			Capacity: doc.Capacity,
			Reserved: doc.Reserved,
		})
	}

	return usages, nil
}
