package repository

import (
	"context"
	"time"

	"lukejohnson/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListIDs returns every user id; the daily notification job walks this.
	ListIDs(ctx context.Context) ([]primitive.ObjectID, error)
	SetTOTPSecret(ctx context.Context, userID primitive.ObjectID, secret string) error
	EnableTOTP(ctx context.Context, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Exercise, error)
}

// WorkoutPreferencesRepository stores the per-user workout/recovery singleton.
type WorkoutPreferencesRepository interface {
	// GetOrCreate returns the user's preferences, inserting the defaults
	// atomically if none exist yet.
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutPreferences, error)
	Update(ctx context.Context, userID primitive.ObjectID, patch domain.WorkoutPreferencesPatch) (*domain.WorkoutPreferences, error)
}

// NotificationPreferencesRepository stores the per-user notification singleton.
type NotificationPreferencesRepository interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.NotificationPreferences, error)
	Update(ctx context.Context, userID primitive.ObjectID, patch domain.NotificationPreferencesPatch) (*domain.NotificationPreferences, error)
}

// SessionCompletion carries the terminal fields written when a session
// transitions active -> completed.
type SessionCompletion struct {
	CompletionRatio                float64
	DifficultyAfter                float64
	AdjustmentReason               string
	ConservativeProgressionApplied bool
	CompletedAt                    time.Time
}

// WorkoutSessionRepository defines the interface for workout session data.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
	GetLastCompletedByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
	// GetRecentCompletedByUserID returns completed sessions ordered most-recent-first.
	GetRecentCompletedByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error)
	// Complete transitions the session to completed only if it is still
	// active; returns ErrNotFound when no active session matched, which
	// callers treat as an idempotent no-op.
	Complete(ctx context.Context, sessionID primitive.ObjectID, completion SessionCompletion) error
	HasCompletedOn(ctx context.Context, userID primitive.ObjectID, day time.Time) (bool, error)
	// CompletedDays returns the distinct calendar days (server-local,
	// truncated to midnight) with at least one completed session, newest first.
	CompletedDays(ctx context.Context, userID primitive.ObjectID) ([]time.Time, error)
	CountCompletedSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int, error)
}

// RoutineRepository defines the interface for routine entry data.
type RoutineRepository interface {
	// ReplaceForUser deletes the user's existing entries and inserts the new
	// set in one call. Last writer wins under concurrent routine building.
	ReplaceForUser(ctx context.Context, userID primitive.ObjectID, entries []domain.RoutineEntry) error
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.RoutineEntry, error)
	StatsByUserID(ctx context.Context, userID primitive.ObjectID) (domain.RoutineStats, error)
	MarkGoal(ctx context.Context, userID, exerciseID primitive.ObjectID, goal bool) error
	// ResetGoals flips every entry back to goal=false without touching the
	// set of entries or any session status.
	ResetGoals(ctx context.Context, userID primitive.ObjectID) error
	Remove(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	RemoveAllByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// PainFeedbackRepository defines the interface for post-workout pain reports.
type PainFeedbackRepository interface {
	// Upsert keys on the workout session id; resubmitting replaces the report.
	Upsert(ctx context.Context, feedback *domain.PainFeedback) error
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) (*domain.PainFeedback, error)
	GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.PainFeedback, error)
}

// NotificationLogRepository defines the interface for the notification log.
type NotificationLogRepository interface {
	// CreateOncePerDay inserts the entry unless one of the same
	// (user, type, day) already exists; the unique index makes the duplicate
	// path safe under concurrent evaluation. Returns created=false on the
	// no-op path.
	CreateOncePerDay(ctx context.Context, entry *domain.NotificationLogEntry) (created bool, err error)
	HasTypeForDay(ctx context.Context, userID primitive.ObjectID, nType domain.NotificationType, day string) (bool, error)
	// PendingForDay returns the still-CREATED entries for the day, newest first.
	PendingForDay(ctx context.Context, userID primitive.ObjectID, day string) ([]domain.NotificationLogEntry, error)
	MarkShown(ctx context.Context, ids []primitive.ObjectID, shownAt time.Time) error
	// MarkClicked moves an entry to SENT, stamping shownAt if the dashboard
	// never surfaced it.
	MarkClicked(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error
	Create(ctx context.Context, entry *domain.NotificationLogEntry) (primitive.ObjectID, error)
}

// ProgressCheckInRepository defines the interface for progress check-ins.
type ProgressCheckInRepository interface {
	Create(ctx context.Context, checkIn *domain.ProgressCheckIn) (primitive.ObjectID, error)
	GetLastByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.ProgressCheckIn, error)
}

// FavouriteRepository defines the interface for favourite exercises.
type FavouriteRepository interface {
	Add(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	Remove(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Favourite, error)
}

// GoalRepository stores the per-user goal singleton.
type GoalRepository interface {
	Upsert(ctx context.Context, goal *domain.Goal) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
}
