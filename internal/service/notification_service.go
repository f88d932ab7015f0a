// internal/service/notification_service.go
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/metrics"
	"lukejohnson/rehab-app/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service specific errors.
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	defaultReminderMinutes = 18 * 60

	// restStreakThreshold triggers a rest-day reminder after this many
	// consecutive training days.
	restStreakThreshold = 3

	// checkInIntervalDays is the weekly check-in cadence.
	checkInIntervalDays = 7

	// inactivityThresholdDays drives the restart recommendation.
	inactivityThresholdDays = 3

	// consistencyWindowDays / consistencyThreshold drive the progression
	// recommendation.
	consistencyWindowDays = 7
	consistencyThreshold  = 3
)

// RoutineRecommendation is the daily recommendation card.
type RoutineRecommendation struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	Difficulty      string `json:"difficulty"`
	Rationale       string `json:"rationale"`
	CTALabel        string `json:"ctaLabel"`
	CTALink         string `json:"ctaLink"`
}

// EvaluationResult is what a dashboard read gets back: the effective
// preferences plus the entries that were pending before this evaluation
// marked them shown.
type EvaluationResult struct {
	Preferences   *domain.NotificationPreferences
	Notifications []domain.NotificationLogEntry
}

// DailyJobReport summarizes one run of the daily notification job.
type DailyJobReport struct {
	JobRunID  string
	Processed int
	Failed    int
}

// NotificationService defines the notification eligibility operations.
type NotificationService interface {
	// GenerateEventsForUser evaluates all enabled categories for the user and
	// logs at most one entry per category per day.
	GenerateEventsForUser(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.NotificationPreferences, error)
	// EvaluateForUser generates events, then returns and marks shown the
	// pending entries for today.
	EvaluateForUser(ctx context.Context, userID primitive.ObjectID) (*EvaluationResult, error)
	// RecommendRoutine computes the recommendation card without logging.
	RecommendRoutine(ctx context.Context, userID primitive.ObjectID, now time.Time) (RoutineRecommendation, error)
	// MarkClicked transitions the user's entry to its terminal SENT status.
	MarkClicked(ctx context.Context, userID, notificationID primitive.ObjectID) error
	// RunDailyJob evaluates every user; per-user failures are logged and
	// skipped so one bad user never stalls the sweep.
	RunDailyJob(ctx context.Context) (DailyJobReport, error)
}

type notificationService struct {
	userRepo      repository.UserRepository
	notifPrefRepo repository.NotificationPreferencesRepository
	sessionRepo   repository.WorkoutSessionRepository
	painRepo      repository.PainFeedbackRepository
	checkInRepo   repository.ProgressCheckInRepository
	logRepo       repository.NotificationLogRepository

	// now is injectable for tests; nil means time.Now.
	now func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	userRepo repository.UserRepository,
	notifPrefRepo repository.NotificationPreferencesRepository,
	sessionRepo repository.WorkoutSessionRepository,
	painRepo repository.PainFeedbackRepository,
	checkInRepo repository.ProgressCheckInRepository,
	logRepo repository.NotificationLogRepository,
) NotificationService {
	return &notificationService{
		userRepo:      userRepo,
		notifPrefRepo: notifPrefRepo,
		sessionRepo:   sessionRepo,
		painRepo:      painRepo,
		checkInRepo:   checkInRepo,
		logRepo:       logRepo,
	}
}

func (s *notificationService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// parseReminderMinutes converts an "HH:MM" preference into minutes since
// midnight. Malformed values fall back to 18:00; out-of-range components are
// clamped rather than rejected.
func parseReminderMinutes(value string) int {
	if value == "" {
		return defaultReminderMinutes
	}
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return defaultReminderMinutes
	}
	hh, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
	mm, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errH != nil || errM != nil {
		return defaultReminderMinutes
	}
	return clampInt(hh, 0, 23)*60 + clampInt(mm, 0, 59)
}

// nowMinutesInTimezone returns minutes since midnight in the user's timezone.
// An unloadable timezone falls back to the machine-local clock so reminders
// still fire.
func nowMinutesInTimezone(now time.Time, timezone string) int {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		local := now.Local()
		return local.Hour()*60 + local.Minute()
	}
	t := now.In(loc)
	return t.Hour()*60 + t.Minute()
}

// daysSince returns whole days elapsed from t to now, or -1 when t is unset.
func daysSince(now time.Time, t *time.Time) int {
	if t == nil || t.IsZero() {
		return -1
	}
	return int(now.Sub(*t).Hours() / 24)
}

// ConsecutiveTrainingDays counts the unbroken run of calendar days with a
// completed session, anchored at the most recent training day however long
// ago that was. days must be distinct midnights ordered newest first, as
// CompletedDays returns them.
func ConsecutiveTrainingDays(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}

	streak := 0
	cursor := days[0]
	for _, day := range days {
		if !day.Equal(cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func (s *notificationService) daysSinceLastCompletedWorkout(ctx context.Context, userID primitive.ObjectID, now time.Time) (int, error) {
	last, err := s.sessionRepo.GetLastCompletedByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return -1, nil
		}
		return -1, err
	}
	return daysSince(now, last.CompletedAt), nil
}

func (s *notificationService) latestPainFeedback(ctx context.Context, userID primitive.ObjectID) (*domain.PainFeedback, error) {
	feedback, err := s.painRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return feedback, nil
}

func isElevatedPain(feedback *domain.PainFeedback) bool {
	return feedback != nil && (feedback.PainScore >= 4 || feedback.Trend == domain.TrendWorse)
}

// RecommendRoutine picks the recommendation card from recent behavior.
// Cascade order matters: inactivity outranks pain, pain outranks consistency.
func (s *notificationService) RecommendRoutine(ctx context.Context, userID primitive.ObjectID, now time.Time) (RoutineRecommendation, error) {
	daysSinceLast, err := s.daysSinceLastCompletedWorkout(ctx, userID, now)
	if err != nil {
		return RoutineRecommendation{}, err
	}
	workoutsLast7Days, err := s.sessionRepo.CountCompletedSince(ctx, userID, now.AddDate(0, 0, -consistencyWindowDays))
	if err != nil {
		return RoutineRecommendation{}, err
	}
	latestPain, err := s.latestPainFeedback(ctx, userID)
	if err != nil {
		return RoutineRecommendation{}, err
	}

	switch {
	case daysSinceLast >= inactivityThresholdDays:
		return RoutineRecommendation{
			Title:           "Short Restart Session",
			DurationMinutes: 15,
			Difficulty:      "Light",
			Rationale:       "You have had a few days off. A short session helps rebuild momentum safely.",
			CTALabel:        "Start 15-min workout",
			CTALink:         "/workouts",
		}, nil

	case isElevatedPain(latestPain):
		return RoutineRecommendation{
			Title:           "Mobility & Recovery Routine",
			DurationMinutes: 20,
			Difficulty:      "Recovery",
			Rationale:       "Recent pain feedback suggests easing load and prioritizing recovery.",
			CTALabel:        "Start recovery flow",
			CTALink:         "/workouts",
		}, nil

	case workoutsLast7Days >= consistencyThreshold:
		return RoutineRecommendation{
			Title:           "Progression Variation Routine",
			DurationMinutes: 30,
			Difficulty:      "Moderate+",
			Rationale:       "You have been consistent. A progression variation keeps adaptation moving.",
			CTALabel:        "View progression routine",
			CTALink:         "/workouts",
		}, nil

	default:
		return RoutineRecommendation{
			Title:           "Balanced Daily Routine",
			DurationMinutes: 20,
			Difficulty:      "Moderate",
			Rationale:       "A balanced session supports consistency and movement quality.",
			CTALabel:        "Start today's routine",
			CTALink:         "/workouts",
		}, nil
	}
}

// logOncePerDay wraps the repository dedup insert with the counter bump.
func (s *notificationService) logOncePerDay(ctx context.Context, userID primitive.ObjectID, nType domain.NotificationType, now time.Time, metadata domain.NotificationMetadata) error {
	entry := &domain.NotificationLogEntry{
		UserID:       userID,
		Type:         nType,
		Status:       domain.NotificationCreated,
		Day:          domain.DayKey(now),
		ScheduledFor: now,
		Metadata:     metadata,
	}
	created, err := s.logRepo.CreateOncePerDay(ctx, entry)
	if err != nil {
		return err
	}
	if created {
		metrics.NotificationsCreated.WithLabelValues(string(nType)).Inc()
	}
	return nil
}

// GenerateEventsForUser evaluates the four categories in a fixed order.
// Generation is idempotent within a day: every insert goes through the daily
// dedup, so re-running after a partial failure only fills the gaps.
func (s *notificationService) GenerateEventsForUser(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.NotificationPreferences, error) {
	prefs, err := s.notifPrefRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if prefs.WorkoutRemindersEnabled {
		completedToday, err := s.sessionRepo.HasCompletedOn(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		nowMins := nowMinutesInTimezone(now, prefs.Timezone)
		targetMins := parseReminderMinutes(prefs.PreferredReminderTime)

		if !completedToday && nowMins >= targetMins {
			err := s.logOncePerDay(ctx, userID, domain.NotificationWorkoutReminder, now, domain.NotificationMetadata{
				Message:  "Time for your session. A short workout today keeps your progress steady.",
				CTALabel: "Start workout",
				CTALink:  "/workouts",
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if prefs.RestDayRemindersEnabled {
		days, err := s.sessionRepo.CompletedDays(ctx, userID)
		if err != nil {
			return nil, err
		}
		latestPain, err := s.latestPainFeedback(ctx, userID)
		if err != nil {
			return nil, err
		}

		if ConsecutiveTrainingDays(days) >= restStreakThreshold || isElevatedPain(latestPain) {
			err := s.logOncePerDay(ctx, userID, domain.NotificationRestDayReminder, now, domain.NotificationMetadata{
				Message:  "A recovery day can help your body adapt and reduce symptom flare-ups.",
				CTALabel: "Open recovery options",
				CTALink:  "/routine",
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if prefs.ProgressCheckInsEnabled {
		lastCheckIn, err := s.checkInRepo.GetLastByUserID(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		sinceLast := -1
		if lastCheckIn != nil {
			sinceLast = daysSince(now, &lastCheckIn.CreatedAt)
		}

		if sinceLast < 0 || sinceLast >= checkInIntervalDays {
			err := s.logOncePerDay(ctx, userID, domain.NotificationProgressCheckIn, now, domain.NotificationMetadata{
				Message:  "Weekly check-in: how are pain and mobility trending?",
				CTALabel: "Complete check-in",
				CTALink:  "/checkin",
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if prefs.RoutineRecommendationsEnabled {
		recommendation, err := s.RecommendRoutine(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		err = s.logOncePerDay(ctx, userID, domain.NotificationRoutineRecommendation, now, domain.NotificationMetadata{
			Title:           recommendation.Title,
			DurationMinutes: recommendation.DurationMinutes,
			Difficulty:      recommendation.Difficulty,
			Rationale:       recommendation.Rationale,
			CTALabel:        recommendation.CTALabel,
			CTALink:         recommendation.CTALink,
		})
		if err != nil {
			return nil, err
		}
	}

	return prefs, nil
}

// EvaluateForUser is the dashboard-read entry point: generate today's events,
// then hand back what was pending and mark it shown in one sweep.
func (s *notificationService) EvaluateForUser(ctx context.Context, userID primitive.ObjectID) (*EvaluationResult, error) {
	now := s.clock()

	prefs, err := s.GenerateEventsForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	pending, err := s.logRepo.PendingForDay(ctx, userID, domain.DayKey(now))
	if err != nil {
		return nil, err
	}

	if len(pending) > 0 {
		ids := make([]primitive.ObjectID, 0, len(pending))
		for _, entry := range pending {
			ids = append(ids, entry.ID)
		}
		if err := s.logRepo.MarkShown(ctx, ids, now); err != nil {
			return nil, err
		}
	}

	return &EvaluationResult{
		Preferences:   prefs,
		Notifications: pending,
	}, nil
}

// MarkClicked records the user acting on a notification.
func (s *notificationService) MarkClicked(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.logRepo.MarkClicked(ctx, notificationID, userID, s.clock())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// RunDailyJob sweeps every user once. Failures are counted and logged per
// user, never propagated, so the sweep always covers everyone it can reach.
func (s *notificationService) RunDailyJob(ctx context.Context) (DailyJobReport, error) {
	report := DailyJobReport{JobRunID: uuid.NewString()}
	jobLog := log.WithField("jobRunId", report.JobRunID)

	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		jobLog.WithError(err).Error("daily notification job failed to list users")
		return report, err
	}

	jobLog.Infof("daily notification job starting for %d users", len(userIDs))
	now := s.clock()

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := s.GenerateEventsForUser(ctx, userID, now); err != nil {
			report.Failed++
			metrics.NotificationJobUserFailures.Inc()
			jobLog.WithError(err).WithField("userId", userID.Hex()).Warn("daily notification job: user evaluation failed")
			continue
		}
		report.Processed++
		metrics.NotificationJobUsersProcessed.Inc()
	}

	jobLog.Infof("daily notification job finished: %d processed, %d failed", report.Processed, report.Failed)
	return report, nil
}
