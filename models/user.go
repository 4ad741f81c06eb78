package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NodeType tags how a user participates in the binary tree. The platform
// root is the single "root" node and is exempt from the two-child
// constraint; every other user is a "binary" node.
type NodeType string

const (
	NodeRoot   NodeType = "root"
	NodeBinary NodeType = "binary"
)

// Position of a node relative to its tree parent.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// Opposite returns the other side.
func (p Position) Opposite() Position {
	if p == PositionLeft {
		return PositionRight
	}
	return PositionLeft
}

func (p Position) Valid() bool {
	return p == PositionLeft || p == PositionRight
}

// UserStatus values. Only active nodes participate in placement and
// binary matching.
const (
	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
	UserBlocked   = "blocked"
)

// User is both the account record and the binary-tree node. ReferrerID is
// the sponsor who introduced the user; Parent is the tree parent, which can
// sit deeper in the sponsor's subtree after spillover placement.
type User struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Password      string             `json:"-" bson:"password"`
	FullName      string             `json:"fullName" bson:"fullName"`
	UserType      string             `json:"userType" bson:"userType"` // "user" or "admin"
	Status        string             `json:"status" bson:"status"`
	ReferralCode  string             `json:"referralCode" bson:"referralCode"`
	PayoutAddress string             `json:"payoutAddress,omitempty" bson:"payoutAddress,omitempty"`

	// Binary tree
	NodeType       NodeType             `json:"nodeType" bson:"nodeType"`
	ReferrerID     *primitive.ObjectID  `json:"referrerId,omitempty" bson:"referrerId,omitempty"`
	Parent         *primitive.ObjectID  `json:"parent,omitempty" bson:"parent,omitempty"`
	LeftChild      *primitive.ObjectID  `json:"leftChild,omitempty" bson:"leftChild,omitempty"`
	RightChild     *primitive.ObjectID  `json:"rightChild,omitempty" bson:"rightChild,omitempty"`
	Position       Position             `json:"position,omitempty" bson:"position,omitempty"`
	DirectChildren []primitive.ObjectID `json:"directChildren,omitempty" bson:"directChildren,omitempty"` // root node only

	// Business volume and matching state, owned by the aggregator and the
	// binary bonus calculator.
	LeftBusiness   float64 `json:"leftBusiness" bson:"leftBusiness"`
	RightBusiness  float64 `json:"rightBusiness" bson:"rightBusiness"`
	LeftCarry      float64 `json:"leftCarry" bson:"leftCarry"`
	RightCarry     float64 `json:"rightCarry" bson:"rightCarry"`
	LeftDownlines  int     `json:"leftDownlines" bson:"leftDownlines"`
	RightDownlines int     `json:"rightDownlines" bson:"rightDownlines"`
	LastBinaryOn   string  `json:"lastBinaryOn,omitempty" bson:"lastBinaryOn,omitempty"` // YYYY-MM-DD of last matched cycle

	// Career progress
	TotalInvestment float64 `json:"totalInvestment" bson:"totalInvestment"`
	CareerLevel     int     `json:"careerLevel" bson:"careerLevel"` // highest achieved level order

	LastActivity time.Time `json:"lastActivity,omitempty" bson:"lastActivity,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsRoot reports whether the user is the distinguished platform root node.
func (u *User) IsRoot() bool {
	return u.NodeType == NodeRoot
}

// Child returns the child pointer for the given side.
func (u *User) Child(side Position) *primitive.ObjectID {
	if side == PositionLeft {
		return u.LeftChild
	}
	return u.RightChild
}

// BinaryTreeStats is the derived per-node view returned by the tree
// endpoint. It is computed from the node record, never stored separately.
type BinaryTreeStats struct {
	UserID         primitive.ObjectID `json:"userId"`
	LeftBusiness   float64            `json:"leftBusiness"`
	RightBusiness  float64            `json:"rightBusiness"`
	LeftCarry      float64            `json:"leftCarry"`
	RightCarry     float64            `json:"rightCarry"`
	LeftDownlines  int                `json:"leftDownlines"`
	RightDownlines int                `json:"rightDownlines"`
	LeftChild      *BinaryTreeStats   `json:"leftChild,omitempty"`
	RightChild     *BinaryTreeStats   `json:"rightChild,omitempty"`
}
