// internal/repository/mongo/routine_repo.go
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

const routineCollectionName = "routine_entries"

// mongoRoutineRepository implements repository.RoutineRepository.
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new routine entry repository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// ReplaceForUser deletes the user's existing entries and inserts the new set.
// Not safe against the same user building a routine in two tabs; last writer
// wins, matching the delete-all/insert-set contract.
func (r *mongoRoutineRepository) ReplaceForUser(ctx context.Context, userID primitive.ObjectID, entries []domain.RoutineEntry) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(entries))
	for i := range entries {
		entries[i].ID = primitive.NewObjectID()
		entries[i].UserID = userID
		entries[i].CreatedAt = now
		docs = append(docs, entries[i])
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// ListByUserID retrieves the user's routine entries in insertion order.
func (r *mongoRoutineRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.RoutineEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.RoutineEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// StatsByUserID counts total and completed entries for the user.
func (r *mongoRoutineRepository) StatsByUserID(ctx context.Context, userID primitive.ObjectID) (domain.RoutineStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID})
	if err != nil {
		return domain.RoutineStats{}, err
	}
	completed, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "goal": true})
	if err != nil {
		return domain.RoutineStats{}, err
	}
	return domain.RoutineStats{Total: int(total), Completed: int(completed)}, nil
}

// MarkGoal sets the completion flag on the matching entry.
func (r *mongoRoutineRepository) MarkGoal(ctx context.Context, userID, exerciseID primitive.ObjectID, goal bool) error {
	filter := bson.M{"userId": userID, "exerciseId": exerciseID}
	update := bson.M{"$set": bson.M{"goal": goal}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ResetGoals flips every entry back to goal=false. Running it twice is a
// no-op, not an error.
func (r *mongoRoutineRepository) ResetGoals(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"userId": userID}, bson.M{"$set": bson.M{"goal": false}})
	return err
}

// Remove deletes one exercise from the user's routine.
func (r *mongoRoutineRepository) Remove(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("user ID and exercise ID are required for removal")
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "exerciseId": exerciseID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveAllByUserID clears the user's routine.
func (r *mongoRoutineRepository) RemoveAllByUserID(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// EnsureRoutineIndexes creates routine entry indexes. Call during startup.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutSessionId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
