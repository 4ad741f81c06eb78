package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Voucher status values. A voucher only ever moves from active to one of
// used, expired or revoked.
const (
	VoucherActive  = "active"
	VoucherUsed    = "used"
	VoucherExpired = "expired"
	VoucherRevoked = "revoked"
)

// Voucher is a wallet-debit-backed investment credit. Purchasing a voucher
// debits Amount from a wallet; the voucher is then redeemable against an
// investment up to InvestmentValue = Amount * Multiplier until Expiry.
type Voucher struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Code            string             `json:"code" bson:"code"`
	FromWallet      WalletType         `json:"fromWallet" bson:"fromWallet"`
	Amount          float64            `json:"amount" bson:"amount"`
	Multiplier      float64            `json:"multiplier" bson:"multiplier"`
	InvestmentValue float64            `json:"investmentValue" bson:"investmentValue"`
	Status          string             `json:"status" bson:"status"`
	ExpiresAt       time.Time          `json:"expiresAt" bson:"expiresAt"`
	UsedAt          *time.Time         `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// IsExpired reports whether the voucher has passed its expiry at the given
// instant, regardless of whether the stored status was already flipped.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.Status == VoucherExpired || now.After(v.ExpiresAt)
}

// VoucherRequest is the voucher purchase payload.
type VoucherRequest struct {
	FromWallet string  `json:"fromWallet" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}
