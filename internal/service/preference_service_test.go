package service

import (
	"context"
	"testing"

	"lukejohnson/rehab-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPreferenceService() (PreferenceService, primitive.ObjectID) {
	return NewPreferenceService(newFakeWorkoutPrefsRepo(), newFakeNotifPrefsRepo()), primitive.NewObjectID()
}

func TestGetWorkoutPreferences_LazyDefaults(t *testing.T) {
	svc, userID := newPreferenceService()

	prefs, err := svc.GetWorkoutPreferences(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 30, prefs.PreferredWorkoutDurationMinutes)
	assert.False(t, prefs.RecoveryDayRemindersEnabled)
	assert.True(t, prefs.PainFeedbackAfterWorkoutsEnabled)
	assert.True(t, prefs.AutoAdjustDifficultyEnabled)
	assert.False(t, prefs.ConservativeProgressionEnabled)
}

func TestUpdateWorkoutPreferences(t *testing.T) {
	svc, userID := newPreferenceService()
	ctx := context.Background()

	duration := 45
	conservative := true
	prefs, err := svc.UpdateWorkoutPreferences(ctx, userID, domain.WorkoutPreferencesPatch{
		PreferredWorkoutDurationMinutes: &duration,
		ConservativeProgressionEnabled:  &conservative,
	})
	require.NoError(t, err)

	assert.Equal(t, 45, prefs.PreferredWorkoutDurationMinutes)
	assert.True(t, prefs.ConservativeProgressionEnabled)
	// Untouched fields keep their defaults.
	assert.True(t, prefs.PainFeedbackAfterWorkoutsEnabled)
}

func TestUpdateWorkoutPreferences_RejectsUnsupportedDuration(t *testing.T) {
	svc, userID := newPreferenceService()

	duration := 42
	_, err := svc.UpdateWorkoutPreferences(context.Background(), userID, domain.WorkoutPreferencesPatch{
		PreferredWorkoutDurationMinutes: &duration,
	})
	assert.ErrorIs(t, err, ErrInvalidWorkoutDuration)
}

func TestUpdateWorkoutPreferences_EmptyPatch(t *testing.T) {
	svc, userID := newPreferenceService()

	_, err := svc.UpdateWorkoutPreferences(context.Background(), userID, domain.WorkoutPreferencesPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestGetNotificationPreferences_LazyDefaults(t *testing.T) {
	svc, userID := newPreferenceService()

	prefs, err := svc.GetNotificationPreferences(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, prefs.WorkoutRemindersEnabled)
	assert.True(t, prefs.RestDayRemindersEnabled)
	assert.False(t, prefs.ProgressCheckInsEnabled)
	assert.True(t, prefs.RoutineRecommendationsEnabled)
	assert.Equal(t, "18:00", prefs.PreferredReminderTime)
	assert.Equal(t, "UTC", prefs.Timezone)
}

func TestUpdateNotificationPreferences_ValidatesReminderTime(t *testing.T) {
	svc, userID := newPreferenceService()
	ctx := context.Background()

	good := "07:45"
	prefs, err := svc.UpdateNotificationPreferences(ctx, userID, domain.NotificationPreferencesPatch{PreferredReminderTime: &good})
	require.NoError(t, err)
	assert.Equal(t, "07:45", prefs.PreferredReminderTime)

	for _, bad := range []string{"7:45", "24:00", "18:60", "evening", "18.30"} {
		value := bad
		_, err := svc.UpdateNotificationPreferences(ctx, userID, domain.NotificationPreferencesPatch{PreferredReminderTime: &value})
		assert.ErrorIs(t, err, ErrInvalidReminderTime, "value %q", bad)
	}
}

func TestUpdateNotificationPreferences_ValidatesTimezone(t *testing.T) {
	svc, userID := newPreferenceService()
	ctx := context.Background()

	good := "Europe/Berlin"
	prefs, err := svc.UpdateNotificationPreferences(ctx, userID, domain.NotificationPreferencesPatch{Timezone: &good})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", prefs.Timezone)

	bad := "Mars/Olympus"
	_, err = svc.UpdateNotificationPreferences(ctx, userID, domain.NotificationPreferencesPatch{Timezone: &bad})
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}
