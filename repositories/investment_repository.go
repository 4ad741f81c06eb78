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

type InvestmentRepository struct {
	investments *mongo.Collection
}

func NewInvestmentRepository(db *mongo.Database) *InvestmentRepository {
	return &InvestmentRepository{investments: db.Collection("investments")}
}

var _ services.InvestmentStore = (*InvestmentRepository)(nil)

func (r *InvestmentRepository) Insert(ctx context.Context, inv *models.Investment) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	_, err := r.investments.InsertOne(ctx, inv)
	return err
}

func (r *InvestmentRepository) Investment(ctx context.Context, id primitive.ObjectID) (*models.Investment, error) {
	var inv models.Investment
	err := r.investments.FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrInvestmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *InvestmentRepository) ActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error) {
	return r.find(ctx, bson.M{"userId": userID, "status": models.InvestmentActive})
}

func (r *InvestmentRepository) Accruable(ctx context.Context, day string) ([]models.Investment, error) {
	return r.find(ctx, bson.M{
		"status":        models.InvestmentActive,
		"lastAccruedOn": bson.M{"$ne": day},
	})
}

func (r *InvestmentRepository) find(ctx context.Context, filter bson.M) ([]models.Investment, error) {
	cursor, err := r.investments.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invs []models.Investment
	if err := cursor.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// MarkAccrued claims the day's credit for an investment. The filter carries
// the idempotency key (investmentId, day): once stamped, a second run of
// the same day matches nothing.
func (r *InvestmentRepository) MarkAccrued(ctx context.Context, id primitive.ObjectID, day string) (bool, error) {
	res, err := r.investments.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvestmentActive, "lastAccruedOn": bson.M{"$ne": day}},
		bson.M{"$inc": bson.M{"daysCredited": 1}, "$set": bson.M{"lastAccruedOn": day}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// UnmarkAccrued releases a day claim whose wallet credit failed. Guarded on
// the same day so it never undoes a later, successful accrual.
func (r *InvestmentRepository) UnmarkAccrued(ctx context.Context, id primitive.ObjectID, day string) error {
	_, err := r.investments.UpdateOne(ctx,
		bson.M{"_id": id, "lastAccruedOn": day},
		bson.M{"$inc": bson.M{"daysCredited": -1}, "$set": bson.M{"lastAccruedOn": ""}},
	)
	return err
}

func (r *InvestmentRepository) MarkMatured(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.investments.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.InvestmentMatured, "maturedAt": at}},
	)
	return err
}

func (r *InvestmentRepository) MarkBinaryUpdated(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.investments.UpdateOne(ctx,
		bson.M{"_id": id, "isBinaryUpdated": false},
		bson.M{"$set": bson.M{"isBinaryUpdated": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *InvestmentRepository) MarkReferralPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.investments.UpdateOne(ctx,
		bson.M{"_id": id, "referralPaid": false},
		bson.M{"$set": bson.M{"referralPaid": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *InvestmentRepository) UnpaidReferrals(ctx context.Context) ([]models.Investment, error) {
	return r.find(ctx, bson.M{"referralPaid": false})
}
