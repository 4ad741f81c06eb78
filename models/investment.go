package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Investment status values.
const (
	InvestmentActive  = "active"
	InvestmentMatured = "matured"
)

// Investment is a user's commitment to a package. InvestedAmount is fixed at
// creation; daily accrual advances DaysCredited until it reaches
// DurationDays, at which point the investment matures and may spawn a
// renewal of RenewablePrinciplePct percent of the principal.
type Investment struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID  `json:"userId" bson:"userId"`
	PackageID       primitive.ObjectID  `json:"packageId" bson:"packageId"`
	InvestedAmount  float64             `json:"investedAmount" bson:"investedAmount"`
	DailyOutputRate float64             `json:"dailyOutputRate" bson:"dailyOutputRate"`
	DurationDays    int                 `json:"durationDays" bson:"durationDays"`
	DaysCredited    int                 `json:"daysCredited" bson:"daysCredited"`
	Status          string              `json:"status" bson:"status"`
	IsBinaryUpdated bool                `json:"isBinaryUpdated" bson:"isBinaryUpdated"`
	ReferralPaid    bool                `json:"referralPaid" bson:"referralPaid"`
	LastAccruedOn   string              `json:"lastAccruedOn,omitempty" bson:"lastAccruedOn,omitempty"` // YYYY-MM-DD
	VoucherID       *primitive.ObjectID `json:"voucherId,omitempty" bson:"voucherId,omitempty"`
	VoucherCovered  float64             `json:"voucherCovered,omitempty" bson:"voucherCovered,omitempty"`
	RenewedFrom     *primitive.ObjectID `json:"renewedFrom,omitempty" bson:"renewedFrom,omitempty"`
	ExpiresOn       time.Time           `json:"expiresOn" bson:"expiresOn"`
	MaturedAt       *time.Time          `json:"maturedAt,omitempty" bson:"maturedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

// IsRenewal reports whether this investment was spawned automatically from
// a matured one. Renewals accrue ROI but do not re-trigger referral bonus
// or business-volume propagation.
func (i *Investment) IsRenewal() bool {
	return i.RenewedFrom != nil
}

// DailyCredit is the amount credited to the roi wallet per accrual day.
func (i *Investment) DailyCredit() float64 {
	return i.InvestedAmount * i.DailyOutputRate
}

// InvestmentRequest is the invest endpoint payload.
type InvestmentRequest struct {
	PackageID string  `json:"packageId" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	VoucherID string  `json:"voucherId,omitempty"`
}
