package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request/Response Structs ---

type CreateExerciseRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	BodyLocation     string   `json:"bodyLocation"`
	MuscleGroups     []string `json:"muscleGroups"`
	ExecutionTechnic string   `json:"executionTechnic"`
	Applicability    string   `json:"applicability"`
	Difficulty       string   `json:"difficulty"`
}

type MediaUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type SaveGoalRequest struct {
	MuscleIDs   []string          `json:"muscleIds"`
	Intensity   string            `json:"intensity" binding:"required,oneof=slight moderate significant maximum"`
	Notes       string            `json:"notes" binding:"max=600"`
	MuscleGoals map[string]string `json:"muscleGoals"`
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a catalog exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), &domain.Exercise{
		Name:             req.Name,
		Description:      req.Description,
		BodyLocation:     req.BodyLocation,
		MuscleGroups:     req.MuscleGroups,
		ExecutionTechnic: req.ExecutionTechnic,
		Applicability:    req.Applicability,
		Difficulty:       req.Difficulty,
	})
	if err != nil {
		if errors.Is(err, service.ErrExerciseNameMissing) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not create exercise")
		}
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// SearchExercises godoc
// @Summary Search the exercise catalog
// @Description Runs a request-scoped filter; no filter state is kept between requests.
// @Tags Exercises
// @Produce json
// @Param bodyLocation query string false "Body location"
// @Param muscleGroups query string false "Comma-separated muscle groups"
// @Param q query string false "Name query (case-insensitive substring)"
// @Param limit query int false "Max results"
// @Success 200 {array} domain.Exercise
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [get]
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	var filter domain.SearchFilter
	filter.BodyLocation = c.Query("bodyLocation")
	filter.NameQuery = c.Query("q")
	if raw := c.Query("muscleGroups"); raw != "" {
		for _, group := range strings.Split(raw, ",") {
			if group = strings.TrimSpace(group); group != "" {
				filter.MuscleGroups = append(filter.MuscleGroups, group)
			}
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 64); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	exercises, err := h.exerciseService.Search(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not search exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get one exercise with its demo media link
// @Tags Exercises
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} service.ExerciseWithMedia
// @Failure 400 {object} gin.H "Invalid exercise ID"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	exercise, err := h.exerciseService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not load exercise")
		}
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// GenerateMediaUploadURL godoc
// @Summary Presign a demo media upload
// @Description Returns a presigned PUT URL and the object key to store back on the exercise.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Param body body MediaUploadURLRequest true "Upload content type"
// @Success 200 {object} gin.H "uploadUrl and objectKey"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises/{exerciseId}/media-upload-url [post]
func (h *ExerciseHandler) GenerateMediaUploadURL(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	var req MediaUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	uploadURL, objectKey, err := h.exerciseService.GenerateMediaUploadURL(c.Request.Context(), exerciseID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL, "objectKey": objectKey})
}

// AddFavourite godoc
// @Summary Bookmark an exercise
// @Tags Favourites
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} gin.H "Added"
// @Failure 400 {object} gin.H "Invalid exercise ID"
// @Failure 404 {object} gin.H "Exercise not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /favourites/{exerciseId} [put]
func (h *ExerciseHandler) AddFavourite(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	if err := h.exerciseService.AddFavourite(c.Request.Context(), userID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not add favourite")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"favourite": true})
}

// RemoveFavourite godoc
// @Summary Remove a bookmarked exercise
// @Tags Favourites
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} gin.H "Removed"
// @Failure 400 {object} gin.H "Invalid exercise ID"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /favourites/{exerciseId} [delete]
func (h *ExerciseHandler) RemoveFavourite(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	if err := h.exerciseService.RemoveFavourite(c.Request.Context(), userID, exerciseID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not remove favourite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favourite": false})
}

// ListFavourites godoc
// @Summary List bookmarked exercises
// @Tags Favourites
// @Produce json
// @Success 200 {array} domain.Exercise
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /favourites [get]
func (h *ExerciseHandler) ListFavourites(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exercises, err := h.exerciseService.ListFavourites(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not list favourites")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// SaveGoal godoc
// @Summary Save the user's muscle goals
// @Tags Goals
// @Accept json
// @Produce json
// @Param body body SaveGoalRequest true "Goal details"
// @Success 200 {object} gin.H "Saved"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /goals [put]
func (h *ExerciseHandler) SaveGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SaveGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	muscleIDs := make([]primitive.ObjectID, 0, len(req.MuscleIDs))
	for _, raw := range req.MuscleIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid muscle ID: %s", raw))
			return
		}
		muscleIDs = append(muscleIDs, id)
	}

	err = h.exerciseService.SaveGoal(c.Request.Context(), &domain.Goal{
		UserID:      userID,
		MuscleIDs:   muscleIDs,
		Intensity:   domain.GoalIntensity(req.Intensity),
		Notes:       req.Notes,
		MuscleGoals: req.MuscleGoals,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidGoalInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not save goals")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// GetGoal godoc
// @Summary Get the user's muscle goals
// @Tags Goals
// @Produce json
// @Success 200 {object} domain.Goal
// @Success 204 "No goals saved"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /goals [get]
func (h *ExerciseHandler) GetGoal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	goal, err := h.exerciseService.GetGoal(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load goals")
		return
	}
	if goal == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, goal)
}
