// internal/service/preference_service.go
package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidWorkoutDuration = errors.New("preferred workout duration is not supported")
	ErrInvalidReminderTime    = errors.New("preferred reminder time must be HH:MM in 24h format")
	ErrInvalidTimezone        = errors.New("timezone is not a valid IANA name")
	ErrEmptyPatch             = errors.New("update contains no changes")
)

// reminderTimePattern accepts 24h "HH:MM" values like "07:30" or "18:00".
var reminderTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// PreferenceService manages both per-user preference singletons. Reads create
// the defaults lazily, so callers never see a missing document.
type PreferenceService interface {
	GetWorkoutPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutPreferences, error)
	UpdateWorkoutPreferences(ctx context.Context, userID primitive.ObjectID, patch domain.WorkoutPreferencesPatch) (*domain.WorkoutPreferences, error)
	GetNotificationPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, userID primitive.ObjectID, patch domain.NotificationPreferencesPatch) (*domain.NotificationPreferences, error)
}

type preferenceService struct {
	workoutPrefRepo repository.WorkoutPreferencesRepository
	notifPrefRepo   repository.NotificationPreferencesRepository
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(
	workoutPrefRepo repository.WorkoutPreferencesRepository,
	notifPrefRepo repository.NotificationPreferencesRepository,
) PreferenceService {
	return &preferenceService{
		workoutPrefRepo: workoutPrefRepo,
		notifPrefRepo:   notifPrefRepo,
	}
}

func (s *preferenceService) GetWorkoutPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutPreferences, error) {
	return s.workoutPrefRepo.GetOrCreate(ctx, userID)
}

// UpdateWorkoutPreferences validates and applies a partial update. The
// difficulty toggles take effect on the next session completion; an active
// session is never retro-adjusted.
func (s *preferenceService) UpdateWorkoutPreferences(ctx context.Context, userID primitive.ObjectID, patch domain.WorkoutPreferencesPatch) (*domain.WorkoutPreferences, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.PreferredWorkoutDurationMinutes != nil && !domain.IsAllowedWorkoutDuration(*patch.PreferredWorkoutDurationMinutes) {
		return nil, ErrInvalidWorkoutDuration
	}

	// Ensure the singleton exists so Update always has a document to patch.
	if _, err := s.workoutPrefRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	return s.workoutPrefRepo.Update(ctx, userID, patch)
}

func (s *preferenceService) GetNotificationPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.NotificationPreferences, error) {
	return s.notifPrefRepo.GetOrCreate(ctx, userID)
}

func (s *preferenceService) UpdateNotificationPreferences(ctx context.Context, userID primitive.ObjectID, patch domain.NotificationPreferencesPatch) (*domain.NotificationPreferences, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.PreferredReminderTime != nil && !reminderTimePattern.MatchString(*patch.PreferredReminderTime) {
		return nil, ErrInvalidReminderTime
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
	}

	if _, err := s.notifPrefRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	return s.notifPrefRepo.Update(ctx, userID, patch)
}
