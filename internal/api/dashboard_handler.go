package api

import (
	"net/http"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler aggregates the dashboard read model.
type DashboardHandler struct {
	workoutService      service.WorkoutService
	preferenceService   service.PreferenceService
	notificationService service.NotificationService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	workoutService service.WorkoutService,
	preferenceService service.PreferenceService,
	notificationService service.NotificationService,
) *DashboardHandler {
	return &DashboardHandler{
		workoutService:      workoutService,
		preferenceService:   preferenceService,
		notificationService: notificationService,
	}
}

// DashboardResponse is the aggregated dashboard read model. Loading it has
// side effects: eligibility is evaluated and surfaced entries move to SHOWN.
type DashboardResponse struct {
	Routine        *service.RoutineView          `json:"routine"`
	RoutineDone    bool                          `json:"routineDone"`
	ActiveSession  *domain.WorkoutSession        `json:"activeSession,omitempty"`
	Notifications  []domain.NotificationLogEntry `json:"notifications"`
	Recommendation service.RoutineRecommendation `json:"recommendation"`

	// ShowPainFeedbackPrompt asks the UI to collect a pain report: a session
	// is active, every routine entry is done and feedback is enabled.
	ShowPainFeedbackPrompt bool `json:"showPainFeedbackPrompt"`
	// ShowCheckInPrompt is set when a PROGRESS_CHECKIN notification
	// surfaced in this read.
	ShowCheckInPrompt bool `json:"showCheckInPrompt"`
}

// GetDashboard godoc
// @Summary Load the dashboard
// @Description Returns routine progress, the active session, today's
// @Description notifications and the routine recommendation in one call.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	ctx := c.Request.Context()

	routine, err := h.workoutService.GetRoutine(ctx, userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load routine")
		return
	}

	activeSession, err := h.workoutService.GetActiveSession(ctx, userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load active session")
		return
	}

	workoutPrefs, err := h.preferenceService.GetWorkoutPreferences(ctx, userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load workout preferences")
		return
	}

	evaluation, err := h.notificationService.EvaluateForUser(ctx, userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not evaluate notifications")
		return
	}

	recommendation, err := h.notificationService.RecommendRoutine(ctx, userID, time.Now())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not compute recommendation")
		return
	}

	response := DashboardResponse{
		Routine:        routine,
		RoutineDone:    routine.Stats.AllCompleted(),
		ActiveSession:  activeSession,
		Notifications:  evaluation.Notifications,
		Recommendation: recommendation,
	}

	response.ShowPainFeedbackPrompt = activeSession != nil &&
		routine.Stats.AllCompleted() &&
		workoutPrefs.PainFeedbackAfterWorkoutsEnabled

	for _, entry := range evaluation.Notifications {
		if entry.Type == domain.NotificationProgressCheckIn {
			response.ShowCheckInPrompt = true
			break
		}
	}

	c.JSON(http.StatusOK, response)
}
