package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job names for the daily batches.
const (
	JobROIAccrual  = "roi_accrual"
	JobBinaryBonus = "binary_bonus"
	JobReferral    = "referral_sweep"
)

// JobRun records one execution of a daily batch. Together with the per-day
// Redis lock and the per-entity date guards it makes re-triggering a batch
// for the same day a no-op instead of a double credit.
type JobRun struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Job        string             `json:"job" bson:"job"`
	Date       string             `json:"date" bson:"date"` // YYYY-MM-DD
	Processed  int                `json:"processed" bson:"processed"`
	Skipped    int                `json:"skipped" bson:"skipped"`
	Failed     int                `json:"failed" bson:"failed"`
	StartedAt  time.Time          `json:"startedAt" bson:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt" bson:"finishedAt"`
}

// JobSummary is what the admin trigger endpoint returns per job.
type JobSummary struct {
	Job        string `json:"job"`
	Date       string `json:"date"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	AlreadyRan bool   `json:"alreadyRan,omitempty"`
}

// DailyCalculationsRequest selects which batches the admin trigger runs.
// Nil pointers default to true so a bare POST runs everything.
type DailyCalculationsRequest struct {
	IncludeROI      *bool  `json:"includeROI,omitempty"`
	IncludeBinary   *bool  `json:"includeBinary,omitempty"`
	IncludeReferral *bool  `json:"includeReferral,omitempty"`
	Date            string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
