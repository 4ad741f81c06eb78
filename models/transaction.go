package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// TxMeta carries free-form context about what produced a transaction
// (which investment, exchange, withdrawal, batch job, ...).
type TxMeta map[string]interface{}

// Transaction is an append-only ledger entry. Entries are never mutated or
// deleted; every wallet balance must equal the fold of its transactions.
type Transaction struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	WalletID      primitive.ObjectID `json:"walletId" bson:"walletId"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	WalletType    WalletType         `json:"walletType" bson:"walletType"`
	Type          TransactionType    `json:"type" bson:"type"`
	Amount        float64            `json:"amount" bson:"amount"`
	BalanceBefore float64            `json:"balanceBefore" bson:"balanceBefore"`
	BalanceAfter  float64            `json:"balanceAfter" bson:"balanceAfter"`
	Status        TransactionStatus  `json:"status" bson:"status"`
	Reference     string             `json:"reference" bson:"reference"`
	Meta          TxMeta             `json:"meta,omitempty" bson:"meta,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// TransactionFilter narrows transaction listings for reports and
// daily-limit checks.
type TransactionFilter struct {
	WalletType WalletType
	Type       TransactionType
	From       time.Time
	To         time.Time
	Limit      int64
}
