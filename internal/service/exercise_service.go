// internal/service/exercise_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"
	"lukejohnson/rehab-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrExerciseNameMissing = errors.New("exercise name cannot be empty")
	ErrInvalidGoalInput    = errors.New("goal intensity is invalid")
)

// mediaURLExpiry bounds how long an exercise demo link stays valid.
const mediaURLExpiry = 1 * time.Hour

// ExerciseWithMedia pairs a catalog entry with a presigned demo link.
type ExerciseWithMedia struct {
	domain.Exercise
	MediaURL string `json:"mediaUrl,omitempty"`
}

// ExerciseService covers the catalog, favourites and the per-user goal.
type ExerciseService interface {
	CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseWithMedia, error)
	// Search runs a request-scoped filter over the catalog. The filter is
	// never persisted; each request starts from a clean slate.
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Exercise, error)

	// GenerateMediaUploadURL presigns a PUT for a new demo clip and returns
	// the object key to store on the exercise.
	GenerateMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (uploadURL, objectKey string, err error)

	AddFavourite(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	RemoveFavourite(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	ListFavourites(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)

	SaveGoal(ctx context.Context, goal *domain.Goal) error
	// GetGoal returns nil without error when the user never saved one.
	GetGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error)
}

type exerciseService struct {
	exerciseRepo  repository.ExerciseRepository
	favouriteRepo repository.FavouriteRepository
	goalRepo      repository.GoalRepository
	fileStorage   storage.FileStorage
}

// NewExerciseService creates a new ExerciseService. fileStorage may be nil
// when object storage is not configured; media links are then omitted.
func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	favouriteRepo repository.FavouriteRepository,
	goalRepo repository.GoalRepository,
	fileStorage storage.FileStorage,
) ExerciseService {
	return &exerciseService{
		exerciseRepo:  exerciseRepo,
		favouriteRepo: favouriteRepo,
		goalRepo:      goalRepo,
		fileStorage:   fileStorage,
	}
}

func (s *exerciseService) CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if strings.TrimSpace(exercise.Name) == "" {
		return nil, ErrExerciseNameMissing
	}

	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseWithMedia, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	result := &ExerciseWithMedia{Exercise: *exercise}
	if s.fileStorage != nil && exercise.MediaObjectKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaObjectKey, mediaURLExpiry)
		if err == nil {
			// A presign failure degrades to a card without a clip rather
			// than failing the whole read.
			result.MediaURL = url
		}
	}
	return result, nil
}

func (s *exerciseService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Exercise, error) {
	return s.exerciseRepo.Search(ctx, filter)
}

func (s *exerciseService) GenerateMediaUploadURL(ctx context.Context, exerciseID primitive.ObjectID, contentType string) (string, string, error) {
	if s.fileStorage == nil {
		return "", "", errors.New("object storage is not configured")
	}
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", ErrExerciseNotFound
		}
		return "", "", err
	}

	objectKey := fmt.Sprintf("exercises/%s/media/%s", exerciseID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	return uploadURL, objectKey, nil
}

func (s *exerciseService) AddFavourite(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return s.favouriteRepo.Add(ctx, userID, exerciseID)
}

func (s *exerciseService) RemoveFavourite(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	return s.favouriteRepo.Remove(ctx, userID, exerciseID)
}

// ListFavourites resolves the user's bookmarks to full catalog entries.
// Bookmarks pointing at removed exercises are silently dropped.
func (s *exerciseService) ListFavourites(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	favourites, err := s.favouriteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favourites) == 0 {
		return []domain.Exercise{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(favourites))
	for _, favourite := range favourites {
		ids = append(ids, favourite.ExerciseID)
	}
	return s.exerciseRepo.GetByIDs(ctx, ids)
}

func (s *exerciseService) SaveGoal(ctx context.Context, goal *domain.Goal) error {
	if !domain.IsValidGoalIntensity(goal.Intensity) {
		return ErrInvalidGoalInput
	}
	return s.goalRepo.Upsert(ctx, goal)
}

func (s *exerciseService) GetGoal(ctx context.Context, userID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return goal, nil
}
