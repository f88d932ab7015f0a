// internal/repository/mongo/notification_log_repo.go
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

const notificationLogCollectionName = "notification_log"

// mongoNotificationLogRepository implements repository.NotificationLogRepository.
type mongoNotificationLogRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationLogRepository creates a new notification log repository.
func NewMongoNotificationLogRepository(db *mongo.Database) repository.NotificationLogRepository {
	return &mongoNotificationLogRepository{
		collection: db.Collection(notificationLogCollectionName),
	}
}

// Create inserts a log entry without the once-per-day guard. Used for
// directly-SENT entries like check-in submissions.
func (r *mongoNotificationLogRepository) Create(ctx context.Context, entry *domain.NotificationLogEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.Type == "" {
		return primitive.NilObjectID, errors.New("notification log entry requires user id and type")
	}

	now := time.Now().UTC()
	entry.ID = primitive.NewObjectID()
	if entry.Status == "" {
		entry.Status = domain.NotificationCreated
	}
	if entry.Day == "" {
		entry.Day = domain.DayKey(time.Now())
	}
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted notification ID")
	}
	return insertedID, nil
}

// CreateOncePerDay inserts the entry unless one of the same (user, type, day)
// already exists. The pre-check keeps the common path cheap; the unique
// (userId, type, day) index closes the check-then-insert race, and a
// duplicate-key error on insert is treated as "already exists, ignore".
func (r *mongoNotificationLogRepository) CreateOncePerDay(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	if entry.Day == "" {
		entry.Day = domain.DayKey(time.Now())
	}

	exists, err := r.HasTypeForDay(ctx, entry.UserID, entry.Type, entry.Day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := r.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasTypeForDay reports whether an entry of the type exists for the day.
func (r *mongoNotificationLogRepository) HasTypeForDay(ctx context.Context, userID primitive.ObjectID, nType domain.NotificationType, day string) (bool, error) {
	filter := bson.M{"userId": userID, "type": nType, "day": day}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PendingForDay returns the day's still-CREATED entries, newest first.
func (r *mongoNotificationLogRepository) PendingForDay(ctx context.Context, userID primitive.ObjectID, day string) ([]domain.NotificationLogEntry, error) {
	filter := bson.M{"userId": userID, "day": day, "status": domain.NotificationCreated}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.NotificationLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkShown batch-moves CREATED entries to SHOWN. Entries already past
// CREATED are left untouched, so the dashboard surfaces each entry as "new"
// exactly once.
func (r *mongoNotificationLogRepository) MarkShown(ctx context.Context, ids []primitive.ObjectID, shownAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}, "status": domain.NotificationCreated}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.NotificationShown,
			"shownAt":   shownAt,
			"updatedAt": time.Now().UTC(),
		},
	}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// MarkClicked moves an entry to SENT (terminal), stamping shownAt if the
// dashboard never surfaced it first.
func (r *mongoNotificationLogRepository) MarkClicked(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "userId": userID}
	update := []bson.M{
		{
			"$set": bson.M{
				"status":    domain.NotificationSent,
				"shownAt":   bson.M{"$ifNull": bson.A{"$shownAt", at}},
				"updatedAt": time.Now().UTC(),
			},
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

// EnsureNotificationLogIndexes creates the unique daily-dedup index.
// Call during startup; without it the dedup degrades to check-then-insert.
func EnsureNotificationLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", collection.Name())
	}
}
