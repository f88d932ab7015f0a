package service

import (
	"context"
	"testing"
	"time"

	"lukejohnson/rehab-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type notificationFixture struct {
	userRepo    *fakeUserRepo
	prefsRepo   *fakeNotifPrefsRepo
	sessionRepo *fakeSessionRepo
	painRepo    *fakePainRepo
	checkInRepo *fakeCheckInRepo
	logRepo     *fakeNotifLogRepo
	service     *notificationService
	userID      primitive.ObjectID
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	f := &notificationFixture{
		userRepo:    newFakeUserRepo(),
		prefsRepo:   newFakeNotifPrefsRepo(),
		sessionRepo: newFakeSessionRepo(),
		painRepo:    newFakePainRepo(),
		checkInRepo: newFakeCheckInRepo(),
		logRepo:     newFakeNotifLogRepo(),
	}
	svc := NewNotificationService(f.userRepo, f.prefsRepo, f.sessionRepo, f.painRepo, f.checkInRepo, f.logRepo)
	f.service = svc.(*notificationService)

	user := &domain.User{Username: "anna", Email: "anna@example.com"}
	id, err := f.userRepo.Create(context.Background(), user)
	require.NoError(t, err)
	f.userID = id
	return f
}

// seedCompletedSession records a completed session ending at the given time.
func (f *notificationFixture) seedCompletedSession(completedAt time.Time) {
	id := primitive.NewObjectID()
	ratio := 1.0
	f.sessionRepo.sessions[id] = &domain.WorkoutSession{
		ID:              id,
		UserID:          f.userID,
		Status:          domain.SessionCompleted,
		CompletionRatio: &ratio,
		CompletedAt:     &completedAt,
	}
}

func (f *notificationFixture) seedPain(score int, trend domain.PainTrend) {
	_ = f.painRepo.Upsert(context.Background(), &domain.PainFeedback{
		WorkoutSessionID: primitive.NewObjectID(),
		UserID:           f.userID,
		PainScore:        score,
		Trend:            trend,
	})
}

func (f *notificationFixture) hasType(t *testing.T, nType domain.NotificationType, day string) bool {
	t.Helper()
	has, err := f.logRepo.HasTypeForDay(context.Background(), f.userID, nType, day)
	require.NoError(t, err)
	return has
}

// eveningUTC is past the default 18:00 reminder time.
var eveningUTC = time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)

func TestGenerateEvents_WorkoutReminderAfterReminderTime(t *testing.T) {
	f := newNotificationFixture(t)

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.True(t, f.hasType(t, domain.NotificationWorkoutReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_NoReminderBeforeReminderTime(t *testing.T) {
	f := newNotificationFixture(t)
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, morning)
	require.NoError(t, err)

	assert.False(t, f.hasType(t, domain.NotificationWorkoutReminder, domain.DayKey(morning)))
}

func TestGenerateEvents_NoReminderAfterTrainingToday(t *testing.T) {
	f := newNotificationFixture(t)
	f.seedCompletedSession(eveningUTC.Add(-2 * time.Hour))

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.False(t, f.hasType(t, domain.NotificationWorkoutReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_DailyDedup(t *testing.T) {
	f := newNotificationFixture(t)

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)
	_, err = f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC.Add(30*time.Minute))
	require.NoError(t, err)

	// One reminder and one recommendation, despite two evaluations.
	count := 0
	for _, e := range f.logRepo.entries {
		if e.UserID == f.userID && e.Day == domain.DayKey(eveningUTC) {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestGenerateEvents_RestDayReminderOnStreak(t *testing.T) {
	f := newNotificationFixture(t)
	for daysAgo := 1; daysAgo <= 3; daysAgo++ {
		f.seedCompletedSession(eveningUTC.AddDate(0, 0, -daysAgo))
	}

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.True(t, f.hasType(t, domain.NotificationRestDayReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_RestDayReminderOnOlderStreak(t *testing.T) {
	f := newNotificationFixture(t)
	// Three consecutive training days ending five days ago still count as a
	// streak; the reminder does not require the run to reach yesterday.
	for daysAgo := 5; daysAgo <= 7; daysAgo++ {
		f.seedCompletedSession(eveningUTC.AddDate(0, 0, -daysAgo))
	}

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.True(t, f.hasType(t, domain.NotificationRestDayReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_RestDayReminderOnElevatedPain(t *testing.T) {
	f := newNotificationFixture(t)
	f.seedPain(5, domain.TrendSame)

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.True(t, f.hasType(t, domain.NotificationRestDayReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_NoRestDayReminderWithoutTrigger(t *testing.T) {
	f := newNotificationFixture(t)
	f.seedCompletedSession(eveningUTC.AddDate(0, 0, -1))

	_, err := f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.False(t, f.hasType(t, domain.NotificationRestDayReminder, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_CheckInPromptWhenEnabledAndOverdue(t *testing.T) {
	f := newNotificationFixture(t)
	_, _ = f.prefsRepo.GetOrCreate(context.Background(), f.userID)
	enabled := true
	_, err := f.prefsRepo.Update(context.Background(), f.userID, domain.NotificationPreferencesPatch{ProgressCheckInsEnabled: &enabled})
	require.NoError(t, err)

	_, err = f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	// Never checked in: the prompt fires.
	assert.True(t, f.hasType(t, domain.NotificationProgressCheckIn, domain.DayKey(eveningUTC)))
}

func TestGenerateEvents_NoCheckInPromptWhenRecent(t *testing.T) {
	f := newNotificationFixture(t)
	_, _ = f.prefsRepo.GetOrCreate(context.Background(), f.userID)
	enabled := true
	_, err := f.prefsRepo.Update(context.Background(), f.userID, domain.NotificationPreferencesPatch{ProgressCheckInsEnabled: &enabled})
	require.NoError(t, err)

	_, err = f.checkInRepo.Create(context.Background(), &domain.ProgressCheckIn{
		UserID:    f.userID,
		CreatedAt: eveningUTC.AddDate(0, 0, -2),
	})
	require.NoError(t, err)

	_, err = f.service.GenerateEventsForUser(context.Background(), f.userID, eveningUTC)
	require.NoError(t, err)

	assert.False(t, f.hasType(t, domain.NotificationProgressCheckIn, domain.DayKey(eveningUTC)))
}

func TestRecommendRoutine_Cascade(t *testing.T) {
	ctx := context.Background()

	t.Run("long inactivity wins", func(t *testing.T) {
		f := newNotificationFixture(t)
		f.seedCompletedSession(eveningUTC.AddDate(0, 0, -4))
		f.seedPain(8, domain.TrendWorse)

		rec, err := f.service.RecommendRoutine(ctx, f.userID, eveningUTC)
		require.NoError(t, err)
		assert.Equal(t, "Short Restart Session", rec.Title)
		assert.Equal(t, 15, rec.DurationMinutes)
		assert.Equal(t, "Light", rec.Difficulty)
	})

	t.Run("elevated pain beats consistency", func(t *testing.T) {
		f := newNotificationFixture(t)
		for daysAgo := 1; daysAgo <= 4; daysAgo++ {
			f.seedCompletedSession(eveningUTC.AddDate(0, 0, -daysAgo))
		}
		f.seedPain(4, domain.TrendSame)

		rec, err := f.service.RecommendRoutine(ctx, f.userID, eveningUTC)
		require.NoError(t, err)
		assert.Equal(t, "Mobility & Recovery Routine", rec.Title)
		assert.Equal(t, 20, rec.DurationMinutes)
	})

	t.Run("consistency earns progression", func(t *testing.T) {
		f := newNotificationFixture(t)
		for daysAgo := 1; daysAgo <= 3; daysAgo++ {
			f.seedCompletedSession(eveningUTC.AddDate(0, 0, -daysAgo))
		}

		rec, err := f.service.RecommendRoutine(ctx, f.userID, eveningUTC)
		require.NoError(t, err)
		assert.Equal(t, "Progression Variation Routine", rec.Title)
		assert.Equal(t, 30, rec.DurationMinutes)
	})

	t.Run("default is balanced", func(t *testing.T) {
		f := newNotificationFixture(t)

		rec, err := f.service.RecommendRoutine(ctx, f.userID, eveningUTC)
		require.NoError(t, err)
		assert.Equal(t, "Balanced Daily Routine", rec.Title)
		assert.Equal(t, 20, rec.DurationMinutes)
	})
}

func TestEvaluateForUser_MarksShownOnce(t *testing.T) {
	f := newNotificationFixture(t)
	f.service.now = func() time.Time { return eveningUTC }

	first, err := f.service.EvaluateForUser(context.Background(), f.userID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Notifications)

	// Everything surfaced once is SHOWN; a reload gets nothing new.
	second, err := f.service.EvaluateForUser(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, second.Notifications)

	for _, entry := range f.logRepo.entries {
		assert.Equal(t, domain.NotificationShown, entry.Status)
		assert.NotNil(t, entry.ShownAt)
	}
}

func TestMarkClicked(t *testing.T) {
	f := newNotificationFixture(t)
	f.service.now = func() time.Time { return eveningUTC }

	result, err := f.service.EvaluateForUser(context.Background(), f.userID)
	require.NoError(t, err)
	require.NotEmpty(t, result.Notifications)

	target := result.Notifications[0]
	require.NoError(t, f.service.MarkClicked(context.Background(), f.userID, target.ID))

	for _, entry := range f.logRepo.entries {
		if entry.ID == target.ID {
			assert.Equal(t, domain.NotificationSent, entry.Status)
		}
	}

	// Another user cannot click it.
	err = f.service.MarkClicked(context.Background(), primitive.NewObjectID(), target.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestRunDailyJob_SweepsAllUsers(t *testing.T) {
	f := newNotificationFixture(t)
	f.service.now = func() time.Time { return eveningUTC }

	for i := 0; i < 2; i++ {
		_, err := f.userRepo.Create(context.Background(), &domain.User{
			Username: "user" + string(rune('a'+i)),
			Email:    "user" + string(rune('a'+i)) + "@example.com",
		})
		require.NoError(t, err)
	}

	report, err := f.service.RunDailyJob(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.JobRunID)
}

func TestConsecutiveTrainingDays(t *testing.T) {
	day := func(daysAgo int) time.Time {
		return time.Date(2026, 3, 10-daysAgo, 0, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 0, ConsecutiveTrainingDays(nil))
	assert.Equal(t, 1, ConsecutiveTrainingDays([]time.Time{day(0)}))
	assert.Equal(t, 3, ConsecutiveTrainingDays([]time.Time{day(0), day(1), day(2)}))
	assert.Equal(t, 2, ConsecutiveTrainingDays([]time.Time{day(1), day(2)}))
	// A gap breaks the run.
	assert.Equal(t, 1, ConsecutiveTrainingDays([]time.Time{day(0), day(2), day(3)}))
	// The anchor is the most recent training day, however old.
	assert.Equal(t, 2, ConsecutiveTrainingDays([]time.Time{day(3), day(4)}))
	assert.Equal(t, 3, ConsecutiveTrainingDays([]time.Time{day(5), day(6), day(7)}))
}

func TestParseReminderMinutes(t *testing.T) {
	assert.Equal(t, 18*60, parseReminderMinutes(""))
	assert.Equal(t, 18*60, parseReminderMinutes("not-a-time"))
	assert.Equal(t, 18*60, parseReminderMinutes("18"))
	assert.Equal(t, 7*60+30, parseReminderMinutes("07:30"))
	assert.Equal(t, 0, parseReminderMinutes("00:00"))
	// Out-of-range components clamp instead of failing.
	assert.Equal(t, 23*60+59, parseReminderMinutes("25:99"))
}

func TestNowMinutesInTimezone(t *testing.T) {
	noonUTC := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 12*60, nowMinutesInTimezone(noonUTC, "UTC"))
	assert.Equal(t, 12*60, nowMinutesInTimezone(noonUTC, ""))
	// Tokyo is UTC+9 year-round.
	assert.Equal(t, 21*60, nowMinutesInTimezone(noonUTC, "Asia/Tokyo"))
}
