package reconciliation

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReconciliationMongoRepository struct {
	Collection *mongo.Collection
}

func NewReconciliationMongoRepository(db *mongo.Client, dbName string) *ReconciliationMongoRepository {
	return &ReconciliationMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionReconciliationRuns),
	}
}

func (repo *ReconciliationMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "runId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "kind", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (repo *ReconciliationMongoRepository) CreateRun(ctx context.Context, run *models.ReconciliationRun) error {
	_, err := repo.Collection.InsertOne(ctx, run)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *ReconciliationMongoRepository) FindLatestRun(ctx context.Context, kind models.ReconciliationKind) (*models.ReconciliationRun, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var run models.ReconciliationRun
	err := repo.Collection.FindOne(ctx, bson.M{"kind": kind}, opts).Decode(&run)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &run, nil
}

func (repo *ReconciliationMongoRepository) FindRecentRuns(ctx context.Context, limit int64) ([]models.ReconciliationRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"payload": 0})

	cursor, err := repo.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var runs []models.ReconciliationRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return runs, nil
}

var _ contracts.ReconciliationRepository = (*ReconciliationMongoRepository)(nil)
