// internal/repository/mongo/pain_feedback_repo.go
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

const painFeedbackCollectionName = "pain_feedback"

// mongoPainFeedbackRepository implements repository.PainFeedbackRepository.
type mongoPainFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoPainFeedbackRepository creates a new pain feedback repository.
func NewMongoPainFeedbackRepository(db *mongo.Database) repository.PainFeedbackRepository {
	return &mongoPainFeedbackRepository{
		collection: db.Collection(painFeedbackCollectionName),
	}
}

// Upsert writes the session's pain report, replacing any earlier submission
// for the same session.
func (r *mongoPainFeedbackRepository) Upsert(ctx context.Context, feedback *domain.PainFeedback) error {
	if feedback.WorkoutSessionID == primitive.NilObjectID || feedback.UserID == primitive.NilObjectID {
		return errors.New("pain feedback requires session and user ids")
	}

	filter := bson.M{"workoutSessionId": feedback.WorkoutSessionID}
	update := bson.M{
		"$set": bson.M{
			"userId":    feedback.UserID,
			"painScore": feedback.PainScore,
			"trend":     feedback.Trend,
			"notes":     feedback.Notes,
			"createdAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"workoutSessionId": feedback.WorkoutSessionID,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetBySessionID retrieves the report for one session.
func (r *mongoPainFeedbackRepository) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) (*domain.PainFeedback, error) {
	var feedback domain.PainFeedback
	err := r.collection.FindOne(ctx, bson.M{"workoutSessionId": sessionID}).Decode(&feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

// GetLatestByUserID retrieves the user's most recent report across all sessions.
func (r *mongoPainFeedbackRepository) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.PainFeedback, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var feedback domain.PainFeedback
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, findOptions).Decode(&feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

// EnsurePainFeedbackIndexes creates the unique per-session index. Call during startup.
func EnsurePainFeedbackIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutSessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
