package mongo

import (
	"context"
	"errors"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const goalCollectionName = "goals"

// mongoGoalRepository implements repository.GoalRepository.
type mongoGoalRepository struct {
	collection *mongo.Collection
}

// NewMongoGoalRepository creates a new goal repository.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{
		collection: db.Collection(goalCollectionName),
	}
}

// Upsert saves the user's goal singleton, preserving createdAt on update.
func (r *mongoGoalRepository) Upsert(ctx context.Context, goal *domain.Goal) error {
	if goal.UserID == primitive.NilObjectID {
		return errors.New("goal requires a user id")
	}

	now := time.Now().UTC()
	filter := bson.M{"userId": goal.UserID}
	update := bson.M{
		"$set": bson.M{
			"muscleIds":   goal.MuscleIDs,
			"intensity":   goal.Intensity,
			"notes":       goal.Notes,
			"muscleGoals": goal.MuscleGoals,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"userId":    goal.UserID,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByUserID retrieves the user's goals.
func (r *mongoGoalRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	var goal domain.Goal
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

// EnsureGoalIndexes creates the unique per-user index. Call during startup.
func EnsureGoalIndexes(ctx context.Context, collection *mongo.Collection) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, index); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
