package services

import (
	"context"
	"log"
	"time"

	"github.com/stackvest/stackvest_backend/models"
)

// DailyService is the externally-triggered entry point for the daily
// batches. Each batch is a pure function of (entities, date): the Redis day
// lock stops concurrent triggers, the per-entity date guards stop double
// credits even if the lock is lost, and every run is recorded in job_runs.
type DailyService struct {
	roi      *ROIService
	binary   *BinaryService
	referral *ReferralService
	jobs     JobRunStore
	locker   DayLocker
	now      func() time.Time
}

func NewDailyService(roi *ROIService, binary *BinaryService, referral *ReferralService, jobs JobRunStore, locker DayLocker) *DailyService {
	return &DailyService{roi: roi, binary: binary, referral: referral, jobs: jobs, locker: locker, now: time.Now}
}

// Trigger runs the selected batches for the given day (today when empty)
// and returns one summary per job. Safe to call repeatedly.
func (s *DailyService) Trigger(ctx context.Context, req models.DailyCalculationsRequest) ([]models.JobSummary, error) {
	day := req.Date
	if day == "" {
		day = s.now().Format("2006-01-02")
	}

	include := func(p *bool) bool { return p == nil || *p }

	var summaries []models.JobSummary
	if include(req.IncludeROI) {
		summaries = append(summaries, s.runJob(ctx, models.JobROIAccrual, day, s.roi.Run))
	}
	if include(req.IncludeBinary) {
		summaries = append(summaries, s.runJob(ctx, models.JobBinaryBonus, day, s.binary.Run))
	}
	if include(req.IncludeReferral) {
		summaries = append(summaries, s.runJob(ctx, models.JobReferral, day, s.referral.Sweep))
	}
	return summaries, nil
}

func (s *DailyService) runJob(ctx context.Context, job, day string, run func(context.Context, string) models.JobSummary) models.JobSummary {
	acquired, err := s.locker.Acquire(ctx, job, day)
	if err != nil {
		log.Printf("daily trigger: acquiring %s lock for %s: %v", job, day, err)
		// Fall through: the per-entity guards still prevent double credits.
	} else if !acquired {
		return models.JobSummary{Job: job, Date: day, AlreadyRan: true}
	}

	started := s.now()
	summary := run(ctx, day)

	if err := s.jobs.Record(ctx, models.JobRun{
		Job:        job,
		Date:       day,
		Processed:  summary.Processed,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		StartedAt:  started,
		FinishedAt: s.now(),
	}); err != nil {
		log.Printf("daily trigger: recording %s run for %s: %v", job, day, err)
	}
	return summary
}
