package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CareerLevel is a one-time reward tier unlocked when a user's cumulative
// lifetime investment crosses InvestmentThreshold. Levels are ordered by
// Order ascending and are always credited in order, one transaction per
// level, even when a single investment crosses several thresholds.
type CareerLevel struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Order               int                `json:"order" bson:"order"`
	Name                string             `json:"name" bson:"name"`
	InvestmentThreshold float64            `json:"investmentThreshold" bson:"investmentThreshold"`
	RewardAmount        float64            `json:"rewardAmount" bson:"rewardAmount"`
	Status              string             `json:"status" bson:"status"` // Active / InActive
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CareerLevelRequest is the admin create payload.
type CareerLevelRequest struct {
	Order               int     `json:"order" validate:"required,gt=0"`
	Name                string  `json:"name" validate:"required"`
	InvestmentThreshold float64 `json:"investmentThreshold" validate:"required,gt=0"`
	RewardAmount        float64 `json:"rewardAmount" validate:"required,gt=0"`
}
