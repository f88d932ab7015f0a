// internal/repository/mongo/preferences_repo.go
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

const (
	workoutPrefsCollectionName      = "workout_preferences"
	notificationPrefsCollectionName = "notification_preferences"
)

// mongoWorkoutPreferencesRepository implements repository.WorkoutPreferencesRepository.
type mongoWorkoutPreferencesRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutPreferencesRepository creates a new workout preferences repository.
func NewMongoWorkoutPreferencesRepository(db *mongo.Database) repository.WorkoutPreferencesRepository {
	return &mongoWorkoutPreferencesRepository{
		collection: db.Collection(workoutPrefsCollectionName),
	}
}

// GetOrCreate returns the user's preferences, inserting the defaults if none
// exist. The upsert with $setOnInsert makes the lazy-default path a single
// atomic operation, so two concurrent first reads cannot both insert.
func (r *mongoWorkoutPreferencesRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutPreferences, error) {
	defaults := domain.DefaultWorkoutPreferences(userID)
	now := time.Now().UTC()

	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":                           defaults.UserID,
			"preferredWorkoutDurationMinutes":  defaults.PreferredWorkoutDurationMinutes,
			"recoveryDayRemindersEnabled":      defaults.RecoveryDayRemindersEnabled,
			"painFeedbackAfterWorkoutsEnabled": defaults.PainFeedbackAfterWorkoutsEnabled,
			"autoAdjustDifficultyEnabled":      defaults.AutoAdjustDifficultyEnabled,
			"conservativeProgressionEnabled":   defaults.ConservativeProgressionEnabled,
			"createdAt":                        now,
			"updatedAt":                        now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var prefs domain.WorkoutPreferences
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Update applies a partial patch and returns the updated document.
func (r *mongoWorkoutPreferencesRepository) Update(ctx context.Context, userID primitive.ObjectID, patch domain.WorkoutPreferencesPatch) (*domain.WorkoutPreferences, error) {
	if patch.IsEmpty() {
		return r.GetOrCreate(ctx, userID)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.PreferredWorkoutDurationMinutes != nil {
		set["preferredWorkoutDurationMinutes"] = *patch.PreferredWorkoutDurationMinutes
	}
	if patch.RecoveryDayRemindersEnabled != nil {
		set["recoveryDayRemindersEnabled"] = *patch.RecoveryDayRemindersEnabled
	}
	if patch.PainFeedbackAfterWorkoutsEnabled != nil {
		set["painFeedbackAfterWorkoutsEnabled"] = *patch.PainFeedbackAfterWorkoutsEnabled
	}
	if patch.AutoAdjustDifficultyEnabled != nil {
		set["autoAdjustDifficultyEnabled"] = *patch.AutoAdjustDifficultyEnabled
	}
	if patch.ConservativeProgressionEnabled != nil {
		set["conservativeProgressionEnabled"] = *patch.ConservativeProgressionEnabled
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var prefs domain.WorkoutPreferences
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts).Decode(&prefs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &prefs, nil
}

// mongoNotificationPreferencesRepository implements repository.NotificationPreferencesRepository.
type mongoNotificationPreferencesRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationPreferencesRepository creates a new notification preferences repository.
func NewMongoNotificationPreferencesRepository(db *mongo.Database) repository.NotificationPreferencesRepository {
	return &mongoNotificationPreferencesRepository{
		collection: db.Collection(notificationPrefsCollectionName),
	}
}

// GetOrCreate returns the user's preferences, inserting the defaults if none exist.
func (r *mongoNotificationPreferencesRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.NotificationPreferences, error) {
	defaults := domain.DefaultNotificationPreferences(userID)
	now := time.Now().UTC()

	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":                        defaults.UserID,
			"workoutRemindersEnabled":       defaults.WorkoutRemindersEnabled,
			"restDayRemindersEnabled":       defaults.RestDayRemindersEnabled,
			"progressCheckInsEnabled":       defaults.ProgressCheckInsEnabled,
			"routineRecommendationsEnabled": defaults.RoutineRecommendationsEnabled,
			"preferredReminderTime":         defaults.PreferredReminderTime,
			"timezone":                      defaults.Timezone,
			"createdAt":                     now,
			"updatedAt":                     now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var prefs domain.NotificationPreferences
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Update applies a partial patch and returns the updated document.
func (r *mongoNotificationPreferencesRepository) Update(ctx context.Context, userID primitive.ObjectID, patch domain.NotificationPreferencesPatch) (*domain.NotificationPreferences, error) {
	if patch.IsEmpty() {
		return r.GetOrCreate(ctx, userID)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.WorkoutRemindersEnabled != nil {
		set["workoutRemindersEnabled"] = *patch.WorkoutRemindersEnabled
	}
	if patch.RestDayRemindersEnabled != nil {
		set["restDayRemindersEnabled"] = *patch.RestDayRemindersEnabled
	}
	if patch.ProgressCheckInsEnabled != nil {
		set["progressCheckInsEnabled"] = *patch.ProgressCheckInsEnabled
	}
	if patch.RoutineRecommendationsEnabled != nil {
		set["routineRecommendationsEnabled"] = *patch.RoutineRecommendationsEnabled
	}
	if patch.PreferredReminderTime != nil {
		set["preferredReminderTime"] = *patch.PreferredReminderTime
	}
	if patch.Timezone != nil {
		set["timezone"] = *patch.Timezone
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var prefs domain.NotificationPreferences
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, bson.M{"$set": set}, opts).Decode(&prefs)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &prefs, nil
}

// EnsurePreferenceIndexes creates the unique per-user indexes for both
// preference collections. Call during startup.
func EnsurePreferenceIndexes(ctx context.Context, workoutPrefs, notificationPrefs *mongo.Collection) {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := workoutPrefs.Indexes().CreateOne(ctx, index); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", workoutPrefs.Name())
	}
	if _, err := notificationPrefs.Indexes().CreateOne(ctx, index); err != nil {
		log.WithError(err).Warnf("failed to create indexes for collection %s", notificationPrefs.Name())
	}
}
