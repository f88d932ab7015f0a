package api

import (
	"net/http"

	"lukejohnson/rehab-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	jobToken string,
	authService service.AuthService,
	preferenceService service.PreferenceService,
	workoutService service.WorkoutService,
	exerciseService service.ExerciseService,
	notificationService service.NotificationService,
	checkInService service.CheckInService,
) {
	authHandler := NewAuthHandler(authService)
	preferencesHandler := NewPreferencesHandler(preferenceService)
	workoutHandler := NewWorkoutHandler(workoutService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	notificationHandler := NewNotificationHandler(notificationService)
	checkInHandler := NewCheckInHandler(checkInService)
	dashboardHandler := NewDashboardHandler(workoutService, preferenceService, notificationService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Operational trigger for the daily sweep; token-guarded, not
		// user-authenticated.
		apiV1.POST("/jobs/notifications/run", JobTokenMiddleware(jobToken), notificationHandler.RunDailyJob)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		protected.POST("/auth/totp/enrol", authHandler.BeginTOTPEnrolment)
		protected.POST("/auth/totp/confirm", authHandler.ConfirmTOTPEnrolment)

		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		preferencesGroup := protected.Group("/preferences")
		{
			preferencesGroup.GET("/workout", preferencesHandler.GetWorkoutPreferences)
			preferencesGroup.PATCH("/workout", preferencesHandler.UpdateWorkoutPreferences)
			preferencesGroup.GET("/notifications", preferencesHandler.GetNotificationPreferences)
			preferencesGroup.PATCH("/notifications", preferencesHandler.UpdateNotificationPreferences)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("/sessions", workoutHandler.StartSession)
			workoutGroup.GET("/sessions/active", workoutHandler.GetActiveSession)
			workoutGroup.POST("/sessions/:sessionId/feedback", workoutHandler.SubmitPainFeedback)
			workoutGroup.POST("/sessions/:sessionId/finalize", workoutHandler.FinalizeSession)
		}

		routineGroup := protected.Group("/routine")
		{
			routineGroup.GET("", workoutHandler.GetRoutine)
			routineGroup.DELETE("", workoutHandler.ClearRoutine)
			routineGroup.POST("/restart", workoutHandler.RestartRoutine)
			routineGroup.POST("/exercises/:exerciseId/finish", workoutHandler.MarkExerciseFinished)
			routineGroup.DELETE("/exercises/:exerciseId", workoutHandler.RemoveExercise)
		}

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.SearchExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.POST("/:exerciseId/media-upload-url", exerciseHandler.GenerateMediaUploadURL)
		}

		favouritesGroup := protected.Group("/favourites")
		{
			favouritesGroup.GET("", exerciseHandler.ListFavourites)
			favouritesGroup.PUT("/:exerciseId", exerciseHandler.AddFavourite)
			favouritesGroup.DELETE("/:exerciseId", exerciseHandler.RemoveFavourite)
		}

		goalsGroup := protected.Group("/goals")
		{
			goalsGroup.GET("", exerciseHandler.GetGoal)
			goalsGroup.PUT("", exerciseHandler.SaveGoal)
		}

		notificationsGroup := protected.Group("/notifications")
		{
			notificationsGroup.POST("/:notificationId/clicked", notificationHandler.MarkClicked)
		}

		checkInsGroup := protected.Group("/checkins")
		{
			checkInsGroup.POST("", checkInHandler.SubmitCheckIn)
			checkInsGroup.GET("/last", checkInHandler.GetLastCheckIn)
		}
	}
}
