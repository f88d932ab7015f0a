package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"lukejohnson/rehab-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCheckInFixture() (*fakeCheckInRepo, *fakeNotifLogRepo, *checkInService, primitive.ObjectID) {
	checkInRepo := newFakeCheckInRepo()
	logRepo := newFakeNotifLogRepo()
	svc := NewCheckInService(checkInRepo, logRepo).(*checkInService)
	return checkInRepo, logRepo, svc, primitive.NewObjectID()
}

func TestSubmitCheckIn_StoresAndLogs(t *testing.T) {
	_, logRepo, svc, userID := newCheckInFixture()
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	pain := 3
	mobility := 4
	checkIn, err := svc.Submit(context.Background(), userID, CheckInInput{
		Mood:           "steady",
		PainAvg:        &pain,
		MobilityRating: &mobility,
		Notes:          "less stiffness in the morning",
	})
	require.NoError(t, err)
	assert.False(t, checkIn.ID.IsZero())

	// The acted-on check-in lands in the notification log as SENT.
	entry := logRepo.find(userID, domain.NotificationProgressCheckIn, domain.DayKey(now))
	require.NotNil(t, entry)
	assert.Equal(t, domain.NotificationSent, entry.Status)
}

func TestSubmitCheckIn_ToleratesExistingDailyEntry(t *testing.T) {
	_, logRepo, svc, userID := newCheckInFixture()
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// The eligibility engine already logged today's prompt.
	_, err := logRepo.CreateOncePerDay(context.Background(), &domain.NotificationLogEntry{
		UserID:       userID,
		Type:         domain.NotificationProgressCheckIn,
		Status:       domain.NotificationCreated,
		Day:          domain.DayKey(now),
		ScheduledFor: now,
	})
	require.NoError(t, err)

	// The submission still succeeds; the daily uniqueness holds.
	checkIn, err := svc.Submit(context.Background(), userID, CheckInInput{Mood: "good"})
	require.NoError(t, err)
	assert.False(t, checkIn.ID.IsZero())
}

func TestSubmitCheckIn_MarksPromptClicked(t *testing.T) {
	_, logRepo, svc, userID := newCheckInFixture()
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := logRepo.CreateOncePerDay(context.Background(), &domain.NotificationLogEntry{
		UserID:       userID,
		Type:         domain.NotificationProgressCheckIn,
		Status:       domain.NotificationCreated,
		Day:          domain.DayKey(now),
		ScheduledFor: now,
	})
	require.NoError(t, err)
	prompt := logRepo.find(userID, domain.NotificationProgressCheckIn, domain.DayKey(now))
	require.NotNil(t, prompt)

	_, err = svc.Submit(context.Background(), userID, CheckInInput{NotificationID: &prompt.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationSent, prompt.Status)
}

func TestSubmitCheckIn_Validation(t *testing.T) {
	_, _, svc, userID := newCheckInFixture()
	ctx := context.Background()

	bad := 11
	_, err := svc.Submit(ctx, userID, CheckInInput{PainAvg: &bad})
	assert.ErrorIs(t, err, ErrInvalidPainAvg)

	zero := 0
	_, err = svc.Submit(ctx, userID, CheckInInput{MobilityRating: &zero})
	assert.ErrorIs(t, err, ErrInvalidMobilityRating)

	_, err = svc.Submit(ctx, userID, CheckInInput{Notes: strings.Repeat("x", 601)})
	assert.ErrorIs(t, err, ErrCheckInNotesTooLong)
}

func TestGetLast_NeverCheckedIn(t *testing.T) {
	_, _, svc, userID := newCheckInFixture()

	checkIn, err := svc.GetLast(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, checkIn)
}
