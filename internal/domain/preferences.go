// internal/domain/preferences.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllowedWorkoutDurations lists the supported preferred workout durations (minutes).
var AllowedWorkoutDurations = []int{15, 20, 30, 45, 60}

// IsAllowedWorkoutDuration reports whether minutes is one of the supported buckets.
func IsAllowedWorkoutDuration(minutes int) bool {
	for _, d := range AllowedWorkoutDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// WorkoutPreferences is a per-user singleton controlling workout planning and
// the adaptive difficulty behavior. It is created lazily with defaults on
// first read and only ever upserted, never deleted.
type WorkoutPreferences struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`

	PreferredWorkoutDurationMinutes  int  `bson:"preferredWorkoutDurationMinutes" json:"preferredWorkoutDurationMinutes"`
	RecoveryDayRemindersEnabled      bool `bson:"recoveryDayRemindersEnabled" json:"recoveryDayRemindersEnabled"`
	PainFeedbackAfterWorkoutsEnabled bool `bson:"painFeedbackAfterWorkoutsEnabled" json:"painFeedbackAfterWorkoutsEnabled"`
	AutoAdjustDifficultyEnabled      bool `bson:"autoAdjustDifficultyEnabled" json:"autoAdjustDifficultyEnabled"`
	ConservativeProgressionEnabled   bool `bson:"conservativeProgressionEnabled" json:"conservativeProgressionEnabled"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultWorkoutPreferences returns the defaults applied on first read.
func DefaultWorkoutPreferences(userID primitive.ObjectID) WorkoutPreferences {
	return WorkoutPreferences{
		UserID:                           userID,
		PreferredWorkoutDurationMinutes:  30,
		RecoveryDayRemindersEnabled:      false,
		PainFeedbackAfterWorkoutsEnabled: true,
		AutoAdjustDifficultyEnabled:      true,
		ConservativeProgressionEnabled:   false,
	}
}

// WorkoutPreferencesPatch carries a partial update. Nil fields are untouched.
type WorkoutPreferencesPatch struct {
	PreferredWorkoutDurationMinutes  *int  `json:"preferredWorkoutDurationMinutes,omitempty"`
	RecoveryDayRemindersEnabled      *bool `json:"recoveryDayRemindersEnabled,omitempty"`
	PainFeedbackAfterWorkoutsEnabled *bool `json:"painFeedbackAfterWorkoutsEnabled,omitempty"`
	AutoAdjustDifficultyEnabled      *bool `json:"autoAdjustDifficultyEnabled,omitempty"`
	ConservativeProgressionEnabled   *bool `json:"conservativeProgressionEnabled,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p WorkoutPreferencesPatch) IsEmpty() bool {
	return p.PreferredWorkoutDurationMinutes == nil &&
		p.RecoveryDayRemindersEnabled == nil &&
		p.PainFeedbackAfterWorkoutsEnabled == nil &&
		p.AutoAdjustDifficultyEnabled == nil &&
		p.ConservativeProgressionEnabled == nil
}

// NotificationPreferences is a per-user singleton controlling which
// notification categories may fire, and when workout reminders are due.
// Same lazy-default/upsert lifecycle as WorkoutPreferences.
type NotificationPreferences struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`

	WorkoutRemindersEnabled       bool `bson:"workoutRemindersEnabled" json:"workoutRemindersEnabled"`
	RestDayRemindersEnabled       bool `bson:"restDayRemindersEnabled" json:"restDayRemindersEnabled"`
	ProgressCheckInsEnabled       bool `bson:"progressCheckInsEnabled" json:"progressCheckInsEnabled"`
	RoutineRecommendationsEnabled bool `bson:"routineRecommendationsEnabled" json:"routineRecommendationsEnabled"`

	PreferredReminderTime string `bson:"preferredReminderTime" json:"preferredReminderTime"` // "HH:MM", 24h
	Timezone              string `bson:"timezone" json:"timezone"`                           // IANA name, e.g. "Europe/Berlin"

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultNotificationPreferences returns the defaults applied on first read.
func DefaultNotificationPreferences(userID primitive.ObjectID) NotificationPreferences {
	return NotificationPreferences{
		UserID:                        userID,
		WorkoutRemindersEnabled:       true,
		RestDayRemindersEnabled:       true,
		ProgressCheckInsEnabled:       false,
		RoutineRecommendationsEnabled: true,
		PreferredReminderTime:         "18:00",
		Timezone:                      "UTC",
	}
}

// NotificationPreferencesPatch carries a partial update. Nil fields are untouched.
type NotificationPreferencesPatch struct {
	WorkoutRemindersEnabled       *bool   `json:"workoutRemindersEnabled,omitempty"`
	RestDayRemindersEnabled       *bool   `json:"restDayRemindersEnabled,omitempty"`
	ProgressCheckInsEnabled       *bool   `json:"progressCheckInsEnabled,omitempty"`
	RoutineRecommendationsEnabled *bool   `json:"routineRecommendationsEnabled,omitempty"`
	PreferredReminderTime         *string `json:"preferredReminderTime,omitempty"`
	Timezone                      *string `json:"timezone,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p NotificationPreferencesPatch) IsEmpty() bool {
	return p.WorkoutRemindersEnabled == nil &&
		p.RestDayRemindersEnabled == nil &&
		p.ProgressCheckInsEnabled == nil &&
		p.RoutineRecommendationsEnabled == nil &&
		p.PreferredReminderTime == nil &&
		p.Timezone == nil
}
