package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// UnpaidPurger deletes abandoned provisional bookings
type UnpaidPurger interface {
	PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron     *cron.Cron
	purger   UnpaidPurger
	maxAge   time.Duration
	schedule string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewCronService creates a scheduler that purges unpaid bookings older than
// maxAge. schedule uses the six-field format with seconds.
func NewCronService(purger UnpaidPurger, maxAge time.Duration, schedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(cron.WithSeconds()),
		purger:   purger,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.purgeUnpaidJob); err != nil {
		return fmt.Errorf("failed to schedule unpaid booking purge: %w", err)
	}
	s.cron.Start()

	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"max_age":  s.maxAge.String(),
	}).Info("Scheduled unpaid booking purge")
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron service stopped")
}

// PurgeNow deletes unpaid bookings older than the configured age
func (s *CronService) PurgeNow(ctx context.Context) (int64, error) {
	if s.maxAge <= 0 {
		return 0, fmt.Errorf("purge age must be positive")
	}
	return s.purger.PurgeUnpaidBefore(ctx, s.now().Add(-s.maxAge))
}

func (s *CronService) purgeUnpaidJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	purged, err := s.PurgeNow(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Unpaid booking purge failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"purged":      purged,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Purged unpaid bookings")
}

// JobStatus reports the scheduled jobs
func (s *CronService) JobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
