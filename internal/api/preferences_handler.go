package api

import (
	"errors"
	"fmt"
	"net/http"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PreferencesHandler holds the preference service dependency.
type PreferencesHandler struct {
	preferenceService service.PreferenceService
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(preferenceService service.PreferenceService) *PreferencesHandler {
	return &PreferencesHandler{preferenceService: preferenceService}
}

// GetWorkoutPreferences godoc
// @Summary Get workout preferences
// @Description Returns the user's workout preferences, creating defaults on first read.
// @Tags Preferences
// @Produce json
// @Success 200 {object} domain.WorkoutPreferences
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /preferences/workout [get]
func (h *PreferencesHandler) GetWorkoutPreferences(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	prefs, err := h.preferenceService.GetWorkoutPreferences(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load workout preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdateWorkoutPreferences godoc
// @Summary Update workout preferences
// @Description Applies a partial update; omitted fields are untouched.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param patch body domain.WorkoutPreferencesPatch true "Fields to change"
// @Success 200 {object} domain.WorkoutPreferences
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /preferences/workout [patch]
func (h *PreferencesHandler) UpdateWorkoutPreferences(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var patch domain.WorkoutPreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	prefs, err := h.preferenceService.UpdateWorkoutPreferences(c.Request.Context(), userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPatch), errors.Is(err, service.ErrInvalidWorkoutDuration):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not update workout preferences")
		}
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// GetNotificationPreferences godoc
// @Summary Get notification preferences
// @Description Returns the user's notification preferences, creating defaults on first read.
// @Tags Preferences
// @Produce json
// @Success 200 {object} domain.NotificationPreferences
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /preferences/notifications [get]
func (h *PreferencesHandler) GetNotificationPreferences(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	prefs, err := h.preferenceService.GetNotificationPreferences(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load notification preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdateNotificationPreferences godoc
// @Summary Update notification preferences
// @Description Applies a partial update; omitted fields are untouched.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param patch body domain.NotificationPreferencesPatch true "Fields to change"
// @Success 200 {object} domain.NotificationPreferences
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /preferences/notifications [patch]
func (h *PreferencesHandler) UpdateNotificationPreferences(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var patch domain.NotificationPreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	prefs, err := h.preferenceService.UpdateNotificationPreferences(c.Request.Context(), userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPatch),
			errors.Is(err, service.ErrInvalidReminderTime),
			errors.Is(err, service.ErrInvalidTimezone):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not update notification preferences")
		}
		return
	}
	c.JSON(http.StatusOK, prefs)
}
