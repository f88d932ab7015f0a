// internal/domain/session.go
package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the workout session lifecycle.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed" // Terminal; a session is never reopened
)

// WorkoutSession represents one attempt at working through a routine,
// bounded by start and completion/finalization.
type WorkoutSession struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Status SessionStatus      `bson:"status" json:"status"`

	PreferredWorkoutDurationMinutes int `bson:"preferredWorkoutDurationMinutes" json:"preferredWorkoutDurationMinutes"`
	TargetExerciseCount             int `bson:"targetExerciseCount" json:"targetExerciseCount"`
	EstimatedDurationMinutes        int `bson:"estimatedDurationMinutes" json:"estimatedDurationMinutes"`

	// DifficultyBefore is the scalar the session started at (baseline 1.0).
	// DifficultyAfter and the remaining fields are set on completion.
	DifficultyBefore               float64  `bson:"difficultyBefore" json:"difficultyBefore"`
	DifficultyAfter                *float64 `bson:"difficultyAfter,omitempty" json:"difficultyAfter,omitempty"`
	CompletionRatio                *float64 `bson:"completionRatio,omitempty" json:"completionRatio,omitempty"`
	AdjustmentReason               string   `bson:"adjustmentReason,omitempty" json:"adjustmentReason,omitempty"`
	ConservativeProgressionApplied bool     `bson:"conservativeProgressionApplied" json:"conservativeProgressionApplied"`

	StartedAt   time.Time  `bson:"startedAt" json:"startedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// IsActive reports whether the session can still be finished.
func (s *WorkoutSession) IsActive() bool {
	return s.Status == SessionActive
}

// RoutineEntry is one exercise's membership/completion record within a
// user's routine. The session link is soft: entries survive the session
// they were created in until the routine is replaced.
type RoutineEntry struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID  `bson:"userId" json:"userId"`
	ExerciseID       primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"`
	WorkoutSessionID *primitive.ObjectID `bson:"workoutSessionId,omitempty" json:"workoutSessionId,omitempty"`
	Goal             bool                `bson:"goal" json:"goal"` // Completion flag within the current routine
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
}

// RoutineStats summarizes completion across a user's routine entries.
type RoutineStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// CompletionRatio is the fraction of entries marked done, rounded to two
// decimal places. Zero when the routine is empty.
func (s RoutineStats) CompletionRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return Round2(float64(s.Completed) / float64(s.Total))
}

// AllCompleted reports whether every entry in a non-empty routine is done.
// Recomputed from the rows on every render rather than tracked by events;
// self-healing against missed updates.
func (s RoutineStats) AllCompleted() bool {
	return s.Total > 0 && s.Completed == s.Total
}

// PainTrend type for post-workout pain feedback.
type PainTrend string

const (
	TrendWorse  PainTrend = "worse"
	TrendSame   PainTrend = "same"
	TrendBetter PainTrend = "better"
)

// IsValidPainTrend reports whether value is one of the accepted trends.
func IsValidPainTrend(value PainTrend) bool {
	return value == TrendWorse || value == TrendSame || value == TrendBetter
}

// PainFeedback is the terminal pain report for a workout session.
// At most one per session; repeated submissions upsert by session id.
type PainFeedback struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutSessionID primitive.ObjectID `bson:"workoutSessionId" json:"workoutSessionId"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	PainScore        int                `bson:"painScore" json:"painScore"` // 0..10
	Trend            PainTrend          `bson:"trend" json:"trend"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"` // <= 500 chars
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// Round2 rounds to two decimal places. Difficulty values and completion
// ratios are stored at this precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
