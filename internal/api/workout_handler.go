package api

import (
	"errors"
	"fmt"
	"net/http"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type StartSessionRequest struct {
	ExerciseIDs []string `json:"exerciseIds" binding:"required,min=1"`
}

type PainFeedbackRequest struct {
	PainScore int    `json:"painScore" binding:"min=0,max=10"`
	Trend     string `json:"trend" binding:"required,oneof=worse same better"`
	Notes     string `json:"notes" binding:"max=500"`
}

// --- Handler Methods ---

// StartSession godoc
// @Summary Start a workout session
// @Description Builds a routine from the selected exercises and opens an active session.
// @Description The selection is truncated to the plan's target count, keeping order.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param body body StartSessionRequest true "Selected exercise ids"
// @Success 201 {object} service.StartSessionResult
// @Failure 400 {object} gin.H "Invalid input or empty selection"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/sessions [post]
func (h *WorkoutHandler) StartSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(req.ExerciseIDs))
	for _, raw := range req.ExerciseIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid exercise ID: %s", raw))
			return
		}
		exerciseIDs = append(exerciseIDs, id)
	}

	result, err := h.workoutService.StartSession(c.Request.Context(), userID, exerciseIDs)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRoutine) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not start workout session")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetActiveSession godoc
// @Summary Get the active workout session
// @Description Returns the user's active session, or 204 when there is none.
// @Tags Workouts
// @Produce json
// @Success 200 {object} domain.WorkoutSession
// @Success 204 "No active session"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/sessions/active [get]
func (h *WorkoutHandler) GetActiveSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	session, err := h.workoutService.GetActiveSession(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load active session")
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitPainFeedback godoc
// @Summary Submit pain feedback and finish the session
// @Description Stores the post-workout pain report and completes the session,
// @Description applying the difficulty adjustment. Re-finishing is a no-op.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param sessionId path string true "Workout session ID"
// @Param body body PainFeedbackRequest true "Pain report"
// @Success 200 {object} service.FinishSessionResult
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Pain feedback disabled in settings"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/sessions/{sessionId}/feedback [post]
func (h *WorkoutHandler) SubmitPainFeedback(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req PainFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.workoutService.SubmitPainFeedback(c.Request.Context(), userID, sessionID, service.PainFeedbackInput{
		PainScore: req.PainScore,
		Trend:     domain.PainTrend(req.Trend),
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPainFeedbackDisabled):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidPainScore),
			errors.Is(err, service.ErrInvalidPainTrend),
			errors.Is(err, service.ErrPainNotesTooLong):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not submit pain feedback")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinalizeSession godoc
// @Summary Finish a session without pain feedback
// @Description Completes the session on the no-feedback path. Only valid while
// @Description pain feedback is disabled in the user's settings.
// @Tags Workouts
// @Produce json
// @Param sessionId path string true "Workout session ID"
// @Success 200 {object} service.FinishSessionResult
// @Failure 400 {object} gin.H "Invalid session ID"
// @Failure 403 {object} gin.H "Session belongs to another user"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Pain feedback is enabled"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/sessions/{sessionId}/finalize [post]
func (h *WorkoutHandler) FinalizeSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	result, err := h.workoutService.FinalizeWithoutFeedback(c.Request.Context(), userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSessionNotOwned):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPainFeedbackStillOn):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not finalize session")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRoutine godoc
// @Summary Get the current routine
// @Description Returns the routine entries plus completion stats.
// @Tags Routine
// @Produce json
// @Success 200 {object} service.RoutineView
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routine [get]
func (h *WorkoutHandler) GetRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	view, err := h.workoutService.GetRoutine(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load routine")
		return
	}
	c.JSON(http.StatusOK, view)
}

// MarkExerciseFinished godoc
// @Summary Mark a routine exercise as finished
// @Tags Routine
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} gin.H "Marked"
// @Failure 400 {object} gin.H "Invalid exercise ID"
// @Failure 404 {object} gin.H "Exercise not in routine"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routine/exercises/{exerciseId}/finish [post]
func (h *WorkoutHandler) MarkExerciseFinished(c *gin.Context) {
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

	if err := h.workoutService.MarkExerciseFinished(c.Request.Context(), userID, exerciseID); err != nil {
		if errors.Is(err, service.ErrRoutineEntryNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not mark exercise finished")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"finished": true})
}

// RestartRoutine godoc
// @Summary Restart the current routine
// @Description Resets every entry's completion flag; the plan stays as is.
// @Tags Routine
// @Produce json
// @Success 200 {object} gin.H "Restarted"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routine/restart [post]
func (h *WorkoutHandler) RestartRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.workoutService.RestartRoutine(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not restart routine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"restarted": true})
}

// RemoveExercise godoc
// @Summary Remove one exercise from the routine
// @Tags Routine
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} gin.H "Removed"
// @Failure 400 {object} gin.H "Invalid exercise ID"
// @Failure 404 {object} gin.H "Exercise not in routine"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routine/exercises/{exerciseId} [delete]
func (h *WorkoutHandler) RemoveExercise(c *gin.Context) {
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

	if err := h.workoutService.RemoveExercise(c.Request.Context(), userID, exerciseID); err != nil {
		if errors.Is(err, service.ErrRoutineEntryNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not remove exercise")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// ClearRoutine godoc
// @Summary Remove every exercise from the routine
// @Tags Routine
// @Produce json
// @Success 200 {object} gin.H "Cleared"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routine [delete]
func (h *WorkoutHandler) ClearRoutine(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.workoutService.RemoveAllByUser(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not clear routine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
