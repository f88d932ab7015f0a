package api

import (
	"errors"
	"net/http"

	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler holds the notification service dependency.
type NotificationHandler struct {
	notificationService service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// MarkClicked godoc
// @Summary Mark a notification as acted on
// @Description Transitions the entry to its terminal SENT status.
// @Tags Notifications
// @Produce json
// @Param notificationId path string true "Notification ID"
// @Success 200 {object} gin.H "Marked"
// @Failure 400 {object} gin.H "Invalid notification ID"
// @Failure 404 {object} gin.H "Notification not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /notifications/{notificationId}/clicked [post]
func (h *NotificationHandler) MarkClicked(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("notificationId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	if err := h.notificationService.MarkClicked(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not mark notification")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"clicked": true})
}

// RunDailyJob godoc
// @Summary Trigger the daily notification sweep
// @Description Evaluates eligibility for every user. Guarded by X-Job-Token;
// @Description safe to re-run thanks to the per-day dedup.
// @Tags Notifications
// @Produce json
// @Success 200 {object} service.DailyJobReport
// @Failure 401 {object} gin.H "Invalid job token"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /jobs/notifications/run [post]
func (h *NotificationHandler) RunDailyJob(c *gin.Context) {
	report, err := h.notificationService.RunDailyJob(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Daily notification job failed")
		return
	}
	c.JSON(http.StatusOK, report)
}
