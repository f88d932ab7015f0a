// internal/domain/notification.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies the notification category. At most one entry
// per (user, type) may be logged per calendar day.
type NotificationType string

const (
	NotificationWorkoutReminder       NotificationType = "WORKOUT_REMINDER"
	NotificationRestDayReminder       NotificationType = "REST_DAY_REMINDER"
	NotificationProgressCheckIn       NotificationType = "PROGRESS_CHECKIN"
	NotificationRoutineRecommendation NotificationType = "ROUTINE_RECOMMENDATION"
)

// NotificationStatus tracks the entry lifecycle:
// CREATED on eligibility evaluation, SHOWN once surfaced on a dashboard read,
// SENT when the user acts on it (terminal). DISMISSED is reserved.
type NotificationStatus string

const (
	NotificationCreated   NotificationStatus = "CREATED"
	NotificationShown     NotificationStatus = "SHOWN"
	NotificationDismissed NotificationStatus = "DISMISSED"
	NotificationSent      NotificationStatus = "SENT"
)

// NotificationMetadata is the display payload of a logged notification.
// Recommendation cards fill the routine fields; plain reminders only
// carry a message and CTA.
type NotificationMetadata struct {
	Title           string `bson:"title,omitempty" json:"title,omitempty"`
	Message         string `bson:"message,omitempty" json:"message,omitempty"`
	DurationMinutes int    `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	Difficulty      string `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Rationale       string `bson:"rationale,omitempty" json:"rationale,omitempty"`
	CTALabel        string `bson:"ctaLabel,omitempty" json:"ctaLabel,omitempty"`
	CTALink         string `bson:"ctaLink,omitempty" json:"ctaLink,omitempty"`
	Source          string `bson:"source,omitempty" json:"source,omitempty"`
}

// NotificationLogEntry is one record per fired notification.
type NotificationLogEntry struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Type   NotificationType   `bson:"type" json:"type"`
	Status NotificationStatus `bson:"status" json:"status"`

	// Day is the server-local calendar day (YYYY-MM-DD) the entry was created
	// on. Backs the unique (userId, type, day) index that makes the daily
	// dedup safe under concurrent evaluation.
	Day string `bson:"day" json:"-"`

	ScheduledFor time.Time            `bson:"scheduledFor" json:"scheduledFor"`
	ShownAt      *time.Time           `bson:"shownAt,omitempty" json:"shownAt,omitempty"`
	Metadata     NotificationMetadata `bson:"metadata" json:"metadata"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DayKey formats t as the calendar-day key used for daily dedup.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
