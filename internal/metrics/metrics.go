// Package metrics exposes the app's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStarted counts workout sessions created.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rehab_workout_sessions_started_total",
		Help: "Number of workout sessions started.",
	})

	// SessionsCompleted counts workout sessions finished, by adjustment direction.
	SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehab_workout_sessions_completed_total",
		Help: "Number of workout sessions completed.",
	}, []string{"adjustment"})

	// NotificationsCreated counts notification log entries created, by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rehab_notifications_created_total",
		Help: "Number of notification log entries created.",
	}, []string{"type"})

	// NotificationJobUsersProcessed counts users handled by the daily job.
	NotificationJobUsersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rehab_notification_job_users_processed_total",
		Help: "Number of users processed by the daily notification job.",
	})

	// NotificationJobUserFailures counts per-user failures in the daily job.
	NotificationJobUserFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rehab_notification_job_user_failures_total",
		Help: "Number of per-user failures in the daily notification job.",
	})
)

// AdjustmentDirection buckets a difficulty delta for the completion counter.
func AdjustmentDirection(before, after float64) string {
	switch {
	case after > before:
		return "increased"
	case after < before:
		return "decreased"
	default:
		return "unchanged"
	}
}
