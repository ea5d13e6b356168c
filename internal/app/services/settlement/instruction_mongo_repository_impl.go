package settlement

import (
	"context"
	"oppdrag-service/internal/app/contracts"
	"oppdrag-service/internal/app/models"
	"oppdrag-service/internal/pkg/constvars"
	"oppdrag-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InstructionMongoRepository struct {
	Collection *mongo.Collection
}

func NewInstructionMongoRepository(db *mongo.Client, dbName string) *InstructionMongoRepository {
	return &InstructionMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionInstructions),
	}
}

// EnsureIndexes creates the unique index on vedtakId that turns a
// concurrent double-create into a duplicate key error, and the multikey
// index over embedded line ids backing the defensive duplicate-line check.
func (repo *InstructionMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "vedtakId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "lines.lineId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "dispatchedAt", Value: 1}},
		},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err)
	}
	return nil
}

func (repo *InstructionMongoRepository) CreateInstruction(ctx context.Context, instruction *models.PaymentInstruction) error {
	_, err := repo.Collection.InsertOne(ctx, instruction)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return exceptions.ErrMongoDBDuplicateKey(err)
		}
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *InstructionMongoRepository) FindByVedtakID(ctx context.Context, vedtakID string) (*models.PaymentInstruction, error) {
	var instruction models.PaymentInstruction
	err := repo.Collection.FindOne(ctx, bson.M{"vedtakId": vedtakID}).Decode(&instruction)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &instruction, nil
}

func (repo *InstructionMongoRepository) FindExistingLineIDs(ctx context.Context, lineIDs []string) ([]string, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}

	cursor, err := repo.Collection.Find(ctx, bson.M{"lines.lineId": bson.M{"$in": lineIDs}})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	proposed := make(map[string]bool, len(lineIDs))
	for _, lineID := range lineIDs {
		proposed[lineID] = true
	}

	var conflicting []string
	for cursor.Next(ctx) {
		var instruction models.PaymentInstruction
		if err := cursor.Decode(&instruction); err != nil {
			return nil, exceptions.ErrMongoDBFindDocument(err)
		}
		for _, line := range instruction.Lines {
			if proposed[line.LineID] {
				conflicting = append(conflicting, line.LineID)
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return conflicting, nil
}

func (repo *InstructionMongoRepository) MarkDispatched(ctx context.Context, vedtakID string, dispatchedAt time.Time) error {
	_, err := repo.Collection.UpdateOne(ctx,
		bson.M{"vedtakId": vedtakID},
		bson.M{"$set": bson.M{"dispatchedAt": dispatchedAt}},
	)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

// ApplyConfirmation performs the guarded transition out of SENT in one
// conditional write, so two racing kvitteringer cannot both win.
func (repo *InstructionMongoRepository) ApplyConfirmation(ctx context.Context, vedtakID string, newStatus models.InstructionStatus, confirmation *models.Confirmation) (bool, error) {
	result, err := repo.Collection.UpdateOne(ctx,
		bson.M{
			"vedtakId": vedtakID,
			"status":   models.InstructionStatusSent,
		},
		bson.M{"$set": bson.M{
			"status":       newStatus,
			"confirmation": confirmation,
		}},
	)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount == 1, nil
}

func (repo *InstructionMongoRepository) FindStuckInstructions(ctx context.Context, createdBefore, unconfirmedBefore time.Time) ([]models.PaymentInstruction, error) {
	filter := bson.M{
		"status": models.InstructionStatusSent,
		"$or": []bson.M{
			{"dispatchedAt": nil, "createdAt": bson.M{"$lt": createdBefore}},
			{"dispatchedAt": bson.M{"$lt": unconfirmedBefore}},
		},
	}
	return repo.findInstructions(ctx, filter)
}

func (repo *InstructionMongoRepository) FindDispatchedBetween(ctx context.Context, fraOgMed, tilOgMed time.Time) ([]models.PaymentInstruction, error) {
	filter := bson.M{
		"dispatchedAt": bson.M{"$gte": fraOgMed, "$lt": tilOgMed},
	}
	return repo.findInstructions(ctx, filter)
}

func (repo *InstructionMongoRepository) FindActive(ctx context.Context) ([]models.PaymentInstruction, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.InstructionStatus{
			models.InstructionStatusSent,
			models.InstructionStatusApproved,
			models.InstructionStatusApprovedWithWarning,
		}},
	}
	return repo.findInstructions(ctx, filter)
}

func (repo *InstructionMongoRepository) findInstructions(ctx context.Context, filter bson.M) ([]models.PaymentInstruction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := repo.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var instructions []models.PaymentInstruction
	if err := cursor.All(ctx, &instructions); err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return instructions, nil
}

var _ contracts.InstructionRepository = (*InstructionMongoRepository)(nil)
