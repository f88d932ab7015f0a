package api

import (
	"errors"
	"fmt"
	"net/http"

	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInHandler holds the check-in service dependency.
type CheckInHandler struct {
	checkInService service.CheckInService
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(checkInService service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// SubmitCheckInRequest carries a progress check-in. All fields are optional.
type SubmitCheckInRequest struct {
	Mood           string `json:"mood"`
	PainAvg        *int   `json:"painAvg"`
	MobilityRating *int   `json:"mobilityRating"`
	Notes          string `json:"notes"`
	NotificationID string `json:"notificationId"`
}

// SubmitCheckIn godoc
// @Summary Submit a progress check-in
// @Description Records the check-in and resolves today's check-in prompt.
// @Tags CheckIns
// @Accept json
// @Produce json
// @Param body body SubmitCheckInRequest true "Check-in details"
// @Success 201 {object} domain.ProgressCheckIn
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /checkins [post]
func (h *CheckInHandler) SubmitCheckIn(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SubmitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.CheckInInput{
		Mood:           req.Mood,
		PainAvg:        req.PainAvg,
		MobilityRating: req.MobilityRating,
		Notes:          req.Notes,
	}
	if req.NotificationID != "" {
		notificationID, err := primitive.ObjectIDFromHex(req.NotificationID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid notification ID format")
			return
		}
		input.NotificationID = &notificationID
	}

	checkIn, err := h.checkInService.Submit(c.Request.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPainAvg),
			errors.Is(err, service.ErrInvalidMobilityRating),
			errors.Is(err, service.ErrCheckInNotesTooLong):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Could not submit check-in")
		}
		return
	}

	c.JSON(http.StatusCreated, checkIn)
}

// GetLastCheckIn godoc
// @Summary Get the most recent check-in
// @Tags CheckIns
// @Produce json
// @Success 200 {object} domain.ProgressCheckIn
// @Success 204 "Never checked in"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /checkins/last [get]
func (h *CheckInHandler) GetLastCheckIn(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	checkIn, err := h.checkInService.GetLast(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load check-in")
		return
	}
	if checkIn == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, checkIn)
}
