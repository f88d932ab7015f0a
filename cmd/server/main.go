package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lukejohnson/rehab-app/internal/api"
	"lukejohnson/rehab-app/internal/config"
	"lukejohnson/rehab-app/internal/jobs"
	"lukejohnson/rehab-app/internal/repository/mongo"
	"lukejohnson/rehab-app/internal/service"
	"lukejohnson/rehab-app/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// @title Rehab App API
// @version 1.0
// @description Adaptive workout sessions, pain-aware difficulty adjustment and notification eligibility.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("starting rehab app server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsurePreferenceIndexes(ctx, appDB.Collection("workout_preferences"), appDB.Collection("notification_preferences"))
		mongo.EnsureWorkoutSessionIndexes(ctx, appDB.Collection("workout_sessions"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routine_entries"))
		mongo.EnsurePainFeedbackIndexes(ctx, appDB.Collection("pain_feedback"))
		mongo.EnsureNotificationLogIndexes(ctx, appDB.Collection("notification_log"))
		mongo.EnsureProgressCheckInIndexes(ctx, appDB.Collection("progress_checkins"))
		mongo.EnsureFavouriteIndexes(ctx, appDB.Collection("favourites"))
		mongo.EnsureGoalIndexes(ctx, appDB.Collection("goals"))
		log.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	// Media features switch off cleanly when no bucket is configured.
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize S3 storage")
		}
	} else {
		log.Warn("object storage not configured; exercise media disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutPrefRepo := mongo.NewMongoWorkoutPreferencesRepository(appDB)
	notifPrefRepo := mongo.NewMongoNotificationPreferencesRepository(appDB)
	sessionRepo := mongo.NewMongoWorkoutSessionRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	painFeedbackRepo := mongo.NewMongoPainFeedbackRepository(appDB)
	notificationLogRepo := mongo.NewMongoNotificationLogRepository(appDB)
	checkInRepo := mongo.NewMongoProgressCheckInRepository(appDB)
	favouriteRepo := mongo.NewMongoFavouriteRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	preferenceService := service.NewPreferenceService(workoutPrefRepo, notifPrefRepo)
	workoutService := service.NewWorkoutService(workoutPrefRepo, sessionRepo, routineRepo, painFeedbackRepo, nil)
	exerciseService := service.NewExerciseService(exerciseRepo, favouriteRepo, goalRepo, fileStorage)
	notificationService := service.NewNotificationService(userRepo, notifPrefRepo, sessionRepo, painFeedbackRepo, checkInRepo, notificationLogRepo)
	checkInService := service.NewCheckInService(checkInRepo, notificationLogRepo)

	// --- Scheduled Jobs ---
	scheduler, err := jobs.NewScheduler(cfg.Notifications.CronSchedule, notificationService)
	if err != nil {
		log.WithError(err).Fatal("invalid notification cron schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		cfg.Notifications.JobToken,
		authService,
		preferenceService,
		workoutService,
		exerciseService,
		notificationService,
		checkInService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen and serve error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exiting")
}
