// Package jobs runs the in-process scheduled work.
package jobs

import (
	"context"
	"time"

	"lukejohnson/rehab-app/internal/service"

	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// jobTimeout bounds one full notification sweep.
const jobTimeout = 10 * time.Minute

// Scheduler owns the cron instance and the jobs registered on it.
type Scheduler struct {
	cron                *cron.Cron
	notificationService service.NotificationService
}

// NewScheduler wires the daily notification sweep onto a cron schedule.
// The schedule uses the six-field form with seconds, e.g. "0 5 0 * * *"
// for five minutes past midnight.
func NewScheduler(schedule string, notificationService service.NotificationService) (*Scheduler, error) {
	s := &Scheduler{
		cron:                cron.New(),
		notificationService: notificationService,
	}

	if err := s.cron.AddFunc(schedule, s.runNotificationSweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running jobs on schedule. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("job scheduler started")
}

// Stop halts the scheduler. A sweep already in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info("job scheduler stopped")
}

func (s *Scheduler) runNotificationSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.notificationService.RunDailyJob(ctx)
	if err != nil {
		log.WithError(err).WithField("jobRunId", report.JobRunID).Error("scheduled notification sweep failed")
	}
}
