// internal/service/checkin_service.go
package service

import (
	"context"
	"errors"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidPainAvg        = errors.New("average pain must be between 0 and 10")
	ErrInvalidMobilityRating = errors.New("mobility rating must be between 1 and 5")
	ErrCheckInNotesTooLong   = errors.New("check-in notes must be 600 characters or fewer")
)

const checkInNotesMaxLen = 600

// CheckInInput carries a progress check-in submission. All fields are
// optional; an empty submission still counts for recency.
type CheckInInput struct {
	Mood           string
	PainAvg        *int
	MobilityRating *int
	Notes          string

	// NotificationID, when set, is the prompt the user acted on and gets
	// marked clicked alongside the submission.
	NotificationID *primitive.ObjectID
}

// CheckInService records progress check-ins and their recency.
type CheckInService interface {
	Submit(ctx context.Context, userID primitive.ObjectID, input CheckInInput) (*domain.ProgressCheckIn, error)
	// GetLast returns nil without error when the user never checked in.
	GetLast(ctx context.Context, userID primitive.ObjectID) (*domain.ProgressCheckIn, error)
}

type checkInService struct {
	checkInRepo repository.ProgressCheckInRepository
	logRepo     repository.NotificationLogRepository

	now func() time.Time
}

// NewCheckInService creates a new CheckInService.
func NewCheckInService(
	checkInRepo repository.ProgressCheckInRepository,
	logRepo repository.NotificationLogRepository,
) CheckInService {
	return &checkInService{
		checkInRepo: checkInRepo,
		logRepo:     logRepo,
	}
}

func (s *checkInService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Submit validates and stores the check-in, then records the acted-on
// PROGRESS_CHECKIN in the notification log so the day's prompt resolves.
func (s *checkInService) Submit(ctx context.Context, userID primitive.ObjectID, input CheckInInput) (*domain.ProgressCheckIn, error) {
	if input.PainAvg != nil && (*input.PainAvg < 0 || *input.PainAvg > 10) {
		return nil, ErrInvalidPainAvg
	}
	if input.MobilityRating != nil && (*input.MobilityRating < 1 || *input.MobilityRating > 5) {
		return nil, ErrInvalidMobilityRating
	}
	if len(input.Notes) > checkInNotesMaxLen {
		return nil, ErrCheckInNotesTooLong
	}

	checkIn := &domain.ProgressCheckIn{
		UserID:         userID,
		Mood:           input.Mood,
		PainAvg:        input.PainAvg,
		MobilityRating: input.MobilityRating,
		Notes:          input.Notes,
	}
	id, err := s.checkInRepo.Create(ctx, checkIn)
	if err != nil {
		return nil, err
	}
	checkIn.ID = id

	now := s.clock()

	if input.NotificationID != nil {
		if err := s.logRepo.MarkClicked(ctx, *input.NotificationID, userID, now); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.WithError(err).WithField("userId", userID.Hex()).Warn("check-in: failed to mark prompt clicked")
		}
	}

	// Log the acted-on check-in for the day. When the eligibility engine
	// already logged a PROGRESS_CHECKIN entry today the daily uniqueness
	// holds and this lands on the duplicate path, which is fine.
	_, err = s.logRepo.Create(ctx, &domain.NotificationLogEntry{
		UserID:       userID,
		Type:         domain.NotificationProgressCheckIn,
		Status:       domain.NotificationSent,
		Day:          domain.DayKey(now),
		ScheduledFor: now,
		Metadata: domain.NotificationMetadata{
			Message: "Progress check-in completed.",
			Source:  "checkin",
		},
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicate) {
		log.WithError(err).WithField("userId", userID.Hex()).Warn("check-in: failed to log completion")
	}

	return checkIn, nil
}

func (s *checkInService) GetLast(ctx context.Context, userID primitive.ObjectID) (*domain.ProgressCheckIn, error) {
	checkIn, err := s.checkInRepo.GetLastByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return checkIn, nil
}
