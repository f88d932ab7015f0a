// internal/repository/mongo/session_repo.go
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

const sessionCollectionName = "workout_sessions"

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository.
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new workout session repository.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session. Callers set status/difficulty; startedAt is
// stamped here.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires a user id")
	}
	if session.Status == "" {
		session.Status = domain.SessionActive
	}

	session.ID = primitive.NewObjectID()
	session.StartedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetActiveByUserID retrieves the user's newest active session.
func (r *mongoWorkoutSessionRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	filter := bson.M{"userId": userID, "status": domain.SessionActive}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetLastCompletedByUserID retrieves the most recently completed session.
func (r *mongoWorkoutSessionRepository) GetLastCompletedByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	filter := bson.M{"userId": userID, "status": domain.SessionCompleted}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "completedAt", Value: -1}})

	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetRecentCompletedByUserID retrieves completed sessions, most recent first.
func (r *mongoWorkoutSessionRepository) GetRecentCompletedByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error) {
	filter := bson.M{"userId": userID, "status": domain.SessionCompleted}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.WorkoutSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Complete transitions the session active -> completed. The status filter
// makes a double-finish match nothing; callers treat ErrNotFound from an
// already-completed session as an idempotent no-op.
func (r *mongoWorkoutSessionRepository) Complete(ctx context.Context, sessionID primitive.ObjectID, completion repository.SessionCompletion) error {
	filter := bson.M{"_id": sessionID, "status": domain.SessionActive}
	update := bson.M{
		"$set": bson.M{
			"status":                         domain.SessionCompleted,
			"completedAt":                    completion.CompletedAt,
			"completionRatio":                completion.CompletionRatio,
			"difficultyAfter":                completion.DifficultyAfter,
			"adjustmentReason":               completion.AdjustmentReason,
			"conservativeProgressionApplied": completion.ConservativeProgressionApplied,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// HasCompletedOn reports whether the user completed any workout during the
// server-local calendar day containing `day`.
func (r *mongoWorkoutSessionRepository) HasCompletedOn(ctx context.Context, userID primitive.ObjectID, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	filter := bson.M{
		"userId":      userID,
		"status":      domain.SessionCompleted,
		"completedAt": bson.M{"$gte": start, "$lt": end},
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CompletedDays returns the distinct calendar days with at least one
// completed session, newest first. Days are truncated to local midnight.
func (r *mongoWorkoutSessionRepository) CompletedDays(ctx context.Context, userID primitive.ObjectID) ([]time.Time, error) {
	filter := bson.M{"userId": userID, "status": domain.SessionCompleted}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetProjection(bson.M{"completedAt": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		CompletedAt *time.Time `bson:"completedAt"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var days []time.Time
	seen := map[string]bool{}
	for _, doc := range docs {
		if doc.CompletedAt == nil {
			continue
		}
		local := doc.CompletedAt.Local()
		key := domain.DayKey(local)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()))
	}
	return days, nil
}

// CountCompletedSince counts completed sessions with completedAt >= since.
func (r *mongoWorkoutSessionRepository) CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int, error) {
	filter := bson.M{
		"userId":      userID,
		"status":      domain.SessionCompleted,
		"completedAt": bson.M{"$gte": since},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// EnsureWorkoutSessionIndexes creates session query indexes. Call during startup.
func EnsureWorkoutSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
