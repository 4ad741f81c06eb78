package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

// TreeRepository is the MongoDB tree store. Users double as tree nodes, so
// it shares the users collection with the account side of the system.
type TreeRepository struct {
	users *mongo.Collection
}

func NewTreeRepository(db *mongo.Database) *TreeRepository {
	return &TreeRepository{users: db.Collection("users")}
}

var (
	_ services.TreeStore = (*TreeRepository)(nil)
	_ services.UserStore = (*TreeRepository)(nil)
)

func (r *TreeRepository) Node(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// User is the UserStore view of the same record.
func (r *TreeRepository) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.Node(ctx, id)
}

func (r *TreeRepository) NodeByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"referralCode": code}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrReferrerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AttachChild fills the parent's child slot for the given side, guarded on
// the slot still being empty, then records the child's parent pointer and
// position. A lost race surfaces as an error so placement can re-search.
func (r *TreeRepository) AttachChild(ctx context.Context, parentID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error {
	slot := "leftChild"
	if side == models.PositionRight {
		slot = "rightChild"
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": parentID, slot: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{slot: childID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return fmt.Errorf("slot %s of %s already taken", side, parentID.Hex())
	}
	return r.setParent(ctx, childID, parentID, side)
}

// AttachRootChild appends to the root's unbounded direct-children list.
func (r *TreeRepository) AttachRootChild(ctx context.Context, rootID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": rootID, "nodeType": models.NodeRoot},
		bson.M{
			"$push": bson.M{"directChildren": childID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	return r.setParent(ctx, childID, rootID, side)
}

func (r *TreeRepository) setParent(ctx context.Context, childID, parentID primitive.ObjectID, side models.Position) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": childID},
		bson.M{"$set": bson.M{"parent": parentID, "position": side, "updatedAt": time.Now()}},
	)
	return err
}

func (r *TreeRepository) IncrementDownlines(ctx context.Context, nodeID primitive.ObjectID, side models.Position) error {
	field := "leftDownlines"
	if side == models.PositionRight {
		field = "rightDownlines"
	}
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": nodeID}, bson.M{"$inc": bson.M{field: 1}})
	return err
}

func (r *TreeRepository) AddBusiness(ctx context.Context, nodeID primitive.ObjectID, side models.Position, amount float64) error {
	field := "leftBusiness"
	if side == models.PositionRight {
		field = "rightBusiness"
	}
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": nodeID},
		bson.M{"$inc": bson.M{field: amount}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	return err
}

func (r *TreeRepository) MatchableNodes(ctx context.Context, day string) ([]models.User, error) {
	filter := bson.M{
		"status":       models.UserActive,
		"lastBinaryOn": bson.M{"$ne": day},
		"$or": []bson.M{
			{"leftBusiness": bson.M{"$gt": 0}, "rightBusiness": bson.M{"$gt": 0}},
			{"leftCarry": bson.M{"$gt": 0}, "rightCarry": bson.M{"$gt": 0}},
		},
	}
	cursor, err := r.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var nodes []models.User
	if err := cursor.All(ctx, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ApplyMatch consumes the matched volume from both legs and stores the new
// carries, stamped with the day so a re-run skips the node.
func (r *TreeRepository) ApplyMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) (bool, error) {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": nodeID, "lastBinaryOn": bson.M{"$ne": day}},
		bson.M{
			"$inc": bson.M{"leftBusiness": -matched, "rightBusiness": -matched},
			"$set": bson.M{
				"leftCarry":    leftCarry,
				"rightCarry":   rightCarry,
				"lastBinaryOn": day,
				"updatedAt":    time.Now(),
			},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// RevertMatch undoes a same-day ApplyMatch whose bonus credit failed: the
// matched volume returns to both legs, the pre-match carries are restored
// and the day stamp is cleared for the retry.
func (r *TreeRepository) RevertMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": nodeID, "lastBinaryOn": day},
		bson.M{
			"$inc": bson.M{"leftBusiness": matched, "rightBusiness": matched},
			"$set": bson.M{
				"leftCarry":    leftCarry,
				"rightCarry":   rightCarry,
				"lastBinaryOn": "",
				"updatedAt":    time.Now(),
			},
		},
	)
	return err
}

func (r *TreeRepository) AddTotalInvestment(ctx context.Context, id primitive.ObjectID, amount float64) (float64, error) {
	var user models.User
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"totalInvestment": amount}, "$set": bson.M{"updatedAt": time.Now()}},
	).Decode(&user)
	if err != nil {
		return 0, err
	}
	// FindOneAndUpdate returns the pre-update document by default.
	return user.TotalInvestment + amount, nil
}

func (r *TreeRepository) AdvanceCareerLevel(ctx context.Context, id primitive.ObjectID, from, to int) (bool, error) {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id, "careerLevel": from},
		bson.M{"$set": bson.M{"careerLevel": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
