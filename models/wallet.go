package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletType identifies one of the per-user wallets. The set is closed;
// anything outside it is rejected at the validation boundary.
type WalletType string

const (
	WalletWithdrawal  WalletType = "withdrawal"
	WalletROI         WalletType = "roi"
	WalletReferral    WalletType = "referral"
	WalletBinary      WalletType = "binary"
	WalletInterest    WalletType = "interest"
	WalletCareerLevel WalletType = "career_level"
	WalletInvestment  WalletType = "investment"
	WalletToken       WalletType = "token"
)

// DefaultWalletTypes is the wallet set created for every new user at signup.
var DefaultWalletTypes = []WalletType{
	WalletWithdrawal,
	WalletROI,
	WalletReferral,
	WalletBinary,
	WalletInterest,
	WalletCareerLevel,
	WalletInvestment,
	WalletToken,
}

// Valid reports whether t is one of the known wallet types.
func (t WalletType) Valid() bool {
	switch t {
	case WalletWithdrawal, WalletROI, WalletReferral, WalletBinary,
		WalletInterest, WalletCareerLevel, WalletInvestment, WalletToken:
		return true
	}
	return false
}

// Wallet is a per-user, per-type balance record. Balance is the fold of the
// wallet's transactions; Reserved is the slice of Balance earmarked for
// pending withdrawals.
type Wallet struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Type      WalletType         `json:"type" bson:"type"`
	Balance   float64            `json:"balance" bson:"balance"`
	Reserved  float64            `json:"reserved" bson:"reserved"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Available returns the spendable part of the balance.
func (w *Wallet) Available() float64 {
	return w.Balance - w.Reserved
}
