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

type PackageRepository struct {
	packages *mongo.Collection
}

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{packages: db.Collection("packages")}
}

var _ services.PackageStore = (*PackageRepository)(nil)

func (r *PackageRepository) Package(ctx context.Context, id primitive.ObjectID) (*models.Package, error) {
	var pkg models.Package
	err := r.packages.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) ActivePackages(ctx context.Context) ([]models.Package, error) {
	return r.find(ctx, bson.M{"status": models.PackageActive})
}

func (r *PackageRepository) AllPackages(ctx context.Context) ([]models.Package, error) {
	return r.find(ctx, bson.M{})
}

func (r *PackageRepository) find(ctx context.Context, filter bson.M) ([]models.Package, error) {
	cursor, err := r.packages.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "minAmount", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pkgs []models.Package
	if err := cursor.All(ctx, &pkgs); err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *PackageRepository) Insert(ctx context.Context, pkg *models.Package) error {
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	now := time.Now()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	_, err := r.packages.InsertOne(ctx, pkg)
	return err
}

func (r *PackageRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := r.packages.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return services.ErrPackageNotFound
	}
	return nil
}
