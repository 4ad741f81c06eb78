package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

type CareerRepository struct {
	levels *mongo.Collection
}

func NewCareerRepository(db *mongo.Database) *CareerRepository {
	return &CareerRepository{levels: db.Collection("career_levels")}
}

var _ services.CareerLevelStore = (*CareerRepository)(nil)

func (r *CareerRepository) LevelsAbove(ctx context.Context, order int) ([]models.CareerLevel, error) {
	cursor, err := r.levels.Find(ctx,
		bson.M{"order": bson.M{"$gt": order}, "status": models.PackageActive},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var levels []models.CareerLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *CareerRepository) AllLevels(ctx context.Context) ([]models.CareerLevel, error) {
	return r.LevelsAbove(ctx, 0)
}

func (r *CareerRepository) Insert(ctx context.Context, level *models.CareerLevel) error {
	if level.ID.IsZero() {
		level.ID = primitive.NewObjectID()
	}
	now := time.Now()
	level.CreatedAt = now
	level.UpdatedAt = now
	if level.Status == "" {
		level.Status = models.PackageActive
	}
	_, err := r.levels.InsertOne(ctx, level)
	return err
}
