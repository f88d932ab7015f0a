// internal/service/workout_service.go
package service

import (
	"context"
	"errors"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/metrics"
	"lukejohnson/rehab-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEmptyRoutine         = errors.New("routine must contain at least one exercise")
	ErrSessionNotFound      = errors.New("workout session not found")
	ErrSessionNotOwned      = errors.New("workout session does not belong to this user")
	ErrPainFeedbackDisabled = errors.New("pain feedback is disabled in settings")
	ErrPainFeedbackStillOn  = errors.New("pain feedback is enabled; session must be finished with feedback")
	ErrInvalidPainScore     = errors.New("pain score must be between 0 and 10")
	ErrInvalidPainTrend     = errors.New("trend must be one of: worse, same, better")
	ErrPainNotesTooLong     = errors.New("notes must be 500 characters or fewer")
	ErrRoutineEntryNotFound = errors.New("exercise is not part of the current routine")
)

const (
	baselineDifficulty        = 1.0
	recentSessionWindow int64 = 5
)

// PlanMetadata is the display payload returned after building a routine.
type PlanMetadata struct {
	DurationPreferenceMinutes int  `json:"durationPreferenceMinutes"`
	RequestedExercises        int  `json:"requestedExercises"`
	SelectedExercises         int  `json:"selectedExercises"`
	WarmupIncluded            bool `json:"warmupIncluded"`
	WarmupMinutes             int  `json:"warmupMinutes"`
	PerExerciseMinutes        int  `json:"perExerciseMinutes"`
	EstimatedDurationMinutes  int  `json:"estimatedDurationMinutes"`
}

// StartSessionResult is returned by StartSession for UI display.
type StartSessionResult struct {
	SessionID primitive.ObjectID `json:"sessionId"`
	Plan      PlanMetadata       `json:"plan"`
}

// FinishSessionResult is returned by FinishSession and SubmitPainFeedback.
type FinishSessionResult struct {
	SessionID        primitive.ObjectID `json:"sessionId"`
	CompletionRatio  float64            `json:"completionRatio"`
	DifficultyAfter  float64            `json:"difficultyAfter"`
	AdjustmentReason string             `json:"adjustmentReason"`
	AlreadyCompleted bool               `json:"alreadyCompleted"`
}

// PainFeedbackInput is the validated post-workout pain report.
type PainFeedbackInput struct {
	PainScore int
	Trend     domain.PainTrend
	Notes     string
}

// RoutineView combines the routine entries with their completion stats,
// recomputed from the rows on every call.
type RoutineView struct {
	Entries []domain.RoutineEntry `json:"entries"`
	Stats   domain.RoutineStats   `json:"stats"`
}

// WorkoutService orchestrates the workout session lifecycle:
// none -> active -> completed, with no other transitions.
type WorkoutService interface {
	StartSession(ctx context.Context, userID primitive.ObjectID, exerciseIDs []primitive.ObjectID) (*StartSessionResult, error)
	FinishSession(ctx context.Context, sessionID primitive.ObjectID, feedback *PainFeedbackInput) (*FinishSessionResult, error)
	FinalizeWithoutFeedback(ctx context.Context, userID, sessionID primitive.ObjectID) (*FinishSessionResult, error)
	SubmitPainFeedback(ctx context.Context, userID, sessionID primitive.ObjectID, input PainFeedbackInput) (*FinishSessionResult, error)
	MarkExerciseFinished(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	RestartRoutine(ctx context.Context, userID primitive.ObjectID) error
	RemoveExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	RemoveAllByUser(ctx context.Context, userID primitive.ObjectID) error
	GetRoutine(ctx context.Context, userID primitive.ObjectID) (*RoutineView, error)
	GetActiveSession(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	prefsRepo    repository.WorkoutPreferencesRepository
	sessionRepo  repository.WorkoutSessionRepository
	routineRepo  repository.RoutineRepository
	feedbackRepo repository.PainFeedbackRepository
	now          func() time.Time
}

// NewWorkoutService creates a new instance of workoutService. The clock is
// injectable for tests; pass nil for time.Now.
func NewWorkoutService(
	prefsRepo repository.WorkoutPreferencesRepository,
	sessionRepo repository.WorkoutSessionRepository,
	routineRepo repository.RoutineRepository,
	feedbackRepo repository.PainFeedbackRepository,
	now func() time.Time,
) WorkoutService {
	if now == nil {
		now = time.Now
	}
	return &workoutService{
		prefsRepo:    prefsRepo,
		sessionRepo:  sessionRepo,
		routineRepo:  routineRepo,
		feedbackRepo: feedbackRepo,
		now:          now,
	}
}

// StartSession builds a new routine and its active workout session.
//
// The requested exercises are truncated to the plan's target count keeping
// input order; the user's routine entries are fully replaced and linked to
// the new session. Difficulty carries over from the last completed session.
func (s *workoutService) StartSession(ctx context.Context, userID primitive.ObjectID, exerciseIDs []primitive.ObjectID) (*StartSessionResult, error) {
	if len(exerciseIDs) == 0 {
		return nil, ErrEmptyRoutine
	}

	prefs, err := s.prefsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	constraints := ComputePlanConstraints(prefs.PreferredWorkoutDurationMinutes, len(exerciseIDs))

	selected := exerciseIDs
	if len(selected) > constraints.TargetExerciseCount {
		selected = selected[:constraints.TargetExerciseCount]
	}

	difficultyBefore := baselineDifficulty
	lastCompleted, err := s.sessionRepo.GetLastCompletedByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if lastCompleted != nil && lastCompleted.DifficultyAfter != nil {
		difficultyBefore = *lastCompleted.DifficultyAfter
	}

	session := &domain.WorkoutSession{
		UserID:                          userID,
		Status:                          domain.SessionActive,
		PreferredWorkoutDurationMinutes: prefs.PreferredWorkoutDurationMinutes,
		TargetExerciseCount:             len(selected),
		EstimatedDurationMinutes:        constraints.EstimatedDurationMinutes,
		DifficultyBefore:                difficultyBefore,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.RoutineEntry, 0, len(selected))
	for _, exerciseID := range selected {
		entries = append(entries, domain.RoutineEntry{
			ExerciseID:       exerciseID,
			WorkoutSessionID: &sessionID,
			Goal:             false,
		})
	}
	if err := s.routineRepo.ReplaceForUser(ctx, userID, entries); err != nil {
		return nil, err
	}

	metrics.SessionsStarted.Inc()
	log.WithFields(log.Fields{
		"userID":    userID.Hex(),
		"sessionID": sessionID.Hex(),
		"target":    len(selected),
	}).Info("workout session started")

	return &StartSessionResult{
		SessionID: sessionID,
		Plan: PlanMetadata{
			DurationPreferenceMinutes: prefs.PreferredWorkoutDurationMinutes,
			RequestedExercises:        len(exerciseIDs),
			SelectedExercises:         len(selected),
			WarmupIncluded:            constraints.WarmupIncluded,
			WarmupMinutes:             constraints.WarmupMinutes,
			PerExerciseMinutes:        constraints.PerExerciseMinutes,
			EstimatedDurationMinutes:  constraints.EstimatedDurationMinutes,
		},
	}, nil
}

// FinishSession transitions the session active -> completed.
//
// Sequencing matters: the pain feedback (if any) is persisted before the
// completion ratio and adjustment are computed, and both happen before the
// completed write. Finishing an already-completed session is a no-op.
func (s *workoutService) FinishSession(ctx context.Context, sessionID primitive.ObjectID, feedback *PainFeedbackInput) (*FinishSessionResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if !session.IsActive() {
		result := &FinishSessionResult{
			SessionID:        session.ID,
			AlreadyCompleted: true,
		}
		if session.CompletionRatio != nil {
			result.CompletionRatio = *session.CompletionRatio
		}
		if session.DifficultyAfter != nil {
			result.DifficultyAfter = *session.DifficultyAfter
		}
		result.AdjustmentReason = session.AdjustmentReason
		return result, nil
	}

	prefs, err := s.prefsRepo.GetOrCreate(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	var latestPain *PainSnapshot
	if feedback != nil {
		report := &domain.PainFeedback{
			WorkoutSessionID: session.ID,
			UserID:           session.UserID,
			PainScore:        feedback.PainScore,
			Trend:            feedback.Trend,
			Notes:            feedback.Notes,
		}
		if err := s.feedbackRepo.Upsert(ctx, report); err != nil {
			return nil, err
		}
		latestPain = &PainSnapshot{PainScore: feedback.PainScore, Trend: feedback.Trend}
	}

	stats, err := s.routineRepo.StatsByUserID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	completionRatio := stats.CompletionRatio()

	recentSessions, err := s.sessionRepo.GetRecentCompletedByUserID(ctx, session.UserID, recentSessionWindow)
	if err != nil {
		return nil, err
	}
	recentFeedback := make(map[primitive.ObjectID]*domain.PainFeedback, len(recentSessions))
	for _, recent := range recentSessions {
		report, err := s.feedbackRepo.GetBySessionID(ctx, recent.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		recentFeedback[recent.ID] = report
	}

	adjustment := ComputeDifficultyAdjustment(AdjustmentInput{
		AutoAdjustEnabled:              prefs.AutoAdjustDifficultyEnabled,
		ConservativeProgressionEnabled: prefs.ConservativeProgressionEnabled,
		PainFeedbackEnabled:            prefs.PainFeedbackAfterWorkoutsEnabled,
		CurrentDifficulty:              session.DifficultyBefore,
		CompletionRatio:                completionRatio,
		LatestPainFeedback:             latestPain,
		RecentSessions:                 recentSessions,
		RecentFeedbackBySessionID:      recentFeedback,
	})

	completion := repository.SessionCompletion{
		CompletionRatio:                completionRatio,
		DifficultyAfter:                adjustment.DifficultyAfter,
		AdjustmentReason:               adjustment.AdjustmentReason,
		ConservativeProgressionApplied: adjustment.ConservativeProgressionApplied,
		CompletedAt:                    s.now().UTC(),
	}
	if err := s.sessionRepo.Complete(ctx, session.ID, completion); err != nil {
		// Lost a race against another finish; the session is completed
		// either way, so treat it as the idempotent path.
		if errors.Is(err, repository.ErrNotFound) {
			return s.FinishSession(ctx, sessionID, nil)
		}
		return nil, err
	}

	metrics.SessionsCompleted.
		WithLabelValues(metrics.AdjustmentDirection(session.DifficultyBefore, adjustment.DifficultyAfter)).
		Inc()
	log.WithFields(log.Fields{
		"sessionID":       session.ID.Hex(),
		"completionRatio": completionRatio,
		"difficultyAfter": adjustment.DifficultyAfter,
	}).Info("workout session completed")

	return &FinishSessionResult{
		SessionID:        session.ID,
		CompletionRatio:  completionRatio,
		DifficultyAfter:  adjustment.DifficultyAfter,
		AdjustmentReason: adjustment.AdjustmentReason,
	}, nil
}

// FinalizeWithoutFeedback completes a session on the no-feedback path.
// It re-checks that pain feedback is still disabled, guarding against a
// preference toggle mid-session, and that the session is still active.
func (s *workoutService) FinalizeWithoutFeedback(ctx context.Context, userID, sessionID primitive.ObjectID) (*FinishSessionResult, error) {
	prefs, err := s.prefsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs.PainFeedbackAfterWorkoutsEnabled {
		return nil, ErrPainFeedbackStillOn
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotOwned
	}
	if !session.IsActive() {
		return &FinishSessionResult{SessionID: session.ID, AlreadyCompleted: true}, nil
	}

	return s.FinishSession(ctx, sessionID, nil)
}

// SubmitPainFeedback validates and persists a pain report, then finishes the
// session with it. Validation happens before any storage call.
func (s *workoutService) SubmitPainFeedback(ctx context.Context, userID, sessionID primitive.ObjectID, input PainFeedbackInput) (*FinishSessionResult, error) {
	if input.PainScore < 0 || input.PainScore > 10 {
		return nil, ErrInvalidPainScore
	}
	if !domain.IsValidPainTrend(input.Trend) {
		return nil, ErrInvalidPainTrend
	}
	if len(input.Notes) > 500 {
		return nil, ErrPainNotesTooLong
	}

	prefs, err := s.prefsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !prefs.PainFeedbackAfterWorkoutsEnabled {
		return nil, ErrPainFeedbackDisabled
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		// Foreign sessions look like missing ones to the caller.
		return nil, ErrSessionNotFound
	}

	return s.FinishSession(ctx, sessionID, &input)
}

// MarkExerciseFinished sets goal=true on the matching routine entry. It does
// not transition the session; completion detection is the dashboard's job.
func (s *workoutService) MarkExerciseFinished(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if err := s.routineRepo.MarkGoal(ctx, userID, exerciseID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineEntryNotFound
		}
		return err
	}
	return nil
}

// RestartRoutine flips every routine entry back to goal=false, keeping the
// plan and the session status untouched. Idempotent.
func (s *workoutService) RestartRoutine(ctx context.Context, userID primitive.ObjectID) error {
	return s.routineRepo.ResetGoals(ctx, userID)
}

// RemoveExercise deletes one exercise from the routine.
func (s *workoutService) RemoveExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if err := s.routineRepo.Remove(ctx, userID, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineEntryNotFound
		}
		return err
	}
	return nil
}

// RemoveAllByUser clears the routine entirely.
func (s *workoutService) RemoveAllByUser(ctx context.Context, userID primitive.ObjectID) error {
	return s.routineRepo.RemoveAllByUserID(ctx, userID)
}

// GetRoutine returns the entries plus completion stats, recomputed on every
// call rather than tracked by events.
func (s *workoutService) GetRoutine(ctx context.Context, userID primitive.ObjectID) (*RoutineView, error) {
	entries, err := s.routineRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := domain.RoutineStats{Total: len(entries)}
	for _, entry := range entries {
		if entry.Goal {
			stats.Completed++
		}
	}
	return &RoutineView{Entries: entries, Stats: stats}, nil
}

// GetActiveSession returns the user's current active session, nil when none.
func (s *workoutService) GetActiveSession(ctx context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}
