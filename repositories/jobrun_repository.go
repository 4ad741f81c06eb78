package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

type JobRunRepository struct {
	runs *mongo.Collection
}

func NewJobRunRepository(db *mongo.Database) *JobRunRepository {
	return &JobRunRepository{runs: db.Collection("job_runs")}
}

var _ services.JobRunStore = (*JobRunRepository)(nil)

func (r *JobRunRepository) Record(ctx context.Context, run models.JobRun) error {
	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	_, err := r.runs.InsertOne(ctx, run)
	return err
}
