package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/council/backend/pkg/logger"
)

// ReportPurger deletes archived reports created before a cutoff.
type ReportPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportRetentionJob prunes expired reports from the archive
// ⭐ SSOT: 리포트 보존 정책은 이 작업에서만 집행
type ReportRetentionJob struct {
	purger    ReportPurger
	retention time.Duration
	logger    *logger.Logger
}

// NewReportRetentionJob creates a new report retention job
func NewReportRetentionJob(purger ReportPurger, retention time.Duration, log *logger.Logger) *ReportRetentionJob {
	return &ReportRetentionJob{
		purger:    purger,
		retention: retention,
		logger:    log,
	}
}

// Name returns the job name
func (j *ReportRetentionJob) Name() string {
	return "report_retention"
}

// Schedule returns the cron schedule (every day at 4 AM)
func (j *ReportRetentionJob) Schedule() string {
	return "0 0 4 * * *" // Daily at 4 AM
}

// Cutoff returns the creation time before which reports expire.
func (j *ReportRetentionJob) Cutoff(now time.Time) time.Time {
	return now.UTC().Add(-j.retention)
}

// Run executes the report purge
func (j *ReportRetentionJob) Run(ctx context.Context) error {
	cutoff := j.Cutoff(time.Now())
	j.logger.WithField("cutoff", cutoff).Debug("Starting scheduled report purge")

	removed, err := j.purger.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge expired reports: %w", err)
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Report retention completed")
	}

	return nil
}
