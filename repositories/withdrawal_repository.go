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

type WithdrawalRepository struct {
	withdrawals *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Database) *WithdrawalRepository {
	return &WithdrawalRepository{withdrawals: db.Collection("withdrawals")}
}

var _ services.WithdrawalStore = (*WithdrawalRepository)(nil)

func (r *WithdrawalRepository) Insert(ctx context.Context, w *models.Withdrawal) error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	_, err := r.withdrawals.InsertOne(ctx, w)
	return err
}

func (r *WithdrawalRepository) Withdrawal(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.withdrawals.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *WithdrawalRepository) Pending(ctx context.Context) ([]models.Withdrawal, error) {
	return r.find(ctx, bson.M{"status": models.WithdrawalPending})
}

func (r *WithdrawalRepository) find(ctx context.Context, filter bson.M) ([]models.Withdrawal, error) {
	cursor, err := r.withdrawals.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ws []models.Withdrawal
	if err := cursor.All(ctx, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// Decide transitions pending -> approved/rejected exactly once.
func (r *WithdrawalRepository) Decide(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
	set := bson.M{
		"status":      status,
		"adminId":     adminID,
		"processedAt": at,
	}
	if status == models.WithdrawalRejected {
		set["rejectionReason"] = note
	} else {
		set["adminNote"] = note
	}
	res, err := r.withdrawals.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.WithdrawalPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
