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

type VoucherRepository struct {
	vouchers *mongo.Collection
}

func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{vouchers: db.Collection("vouchers")}
}

var _ services.VoucherStore = (*VoucherRepository)(nil)

func (r *VoucherRepository) Insert(ctx context.Context, v *models.Voucher) error {
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	_, err := r.vouchers.InsertOne(ctx, v)
	return err
}

func (r *VoucherRepository) Voucher(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	var v models.Voucher
	err := r.vouchers.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Voucher, error) {
	cursor, err := r.vouchers.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vouchers []models.Voucher
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

// MarkUsed transitions active -> used; the status guard makes concurrent
// redemptions of one voucher settle to a single winner.
func (r *VoucherRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	res, err := r.vouchers.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.VoucherActive},
		bson.M{"$set": bson.M{"status": models.VoucherUsed, "usedAt": at}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Restore reactivates a used voucher after the redeeming operation failed.
func (r *VoucherRepository) Restore(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.vouchers.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.VoucherUsed},
		bson.M{"$set": bson.M{"status": models.VoucherActive}, "$unset": bson.M{"usedAt": ""}},
	)
	return err
}

func (r *VoucherRepository) MarkExpired(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.vouchers.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.VoucherActive},
		bson.M{"$set": bson.M{"status": models.VoucherExpired}},
	)
	return err
}
