package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Withdrawal status values.
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is a request to move wallet funds out of the platform. The
// requested amount is reserved on the wallet while the request is pending;
// approval captures the reservation, rejection releases it.
type Withdrawal struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	WalletType      WalletType          `json:"walletType" bson:"walletType"`
	Amount          float64             `json:"amount" bson:"amount"`
	Charges         float64             `json:"charges" bson:"charges"`
	FinalAmount     float64             `json:"finalAmount" bson:"finalAmount"`
	Method          string              `json:"method" bson:"method"`
	PayoutAddress   string              `json:"payoutAddress" bson:"payoutAddress"`
	Reference       string              `json:"reference" bson:"reference"`
	Status          string              `json:"status" bson:"status"`
	AdminID         *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	AdminNote       string              `json:"adminNote,omitempty" bson:"adminNote,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ProcessedAt     *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

// WithdrawalRequest is the withdraw endpoint payload.
type WithdrawalRequest struct {
	WalletType string  `json:"walletType" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Method     string  `json:"method" validate:"omitempty,oneof=bank crypto"`
}

// WithdrawalDecision is the admin approve/reject payload.
type WithdrawalDecision struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note,omitempty"`
}
