package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

// maxBalanceRetries bounds the optimistic-concurrency retry loop on wallet
// mutations.
const maxBalanceRetries = 5

var errConcurrentUpdate = errors.New("wallet changed concurrently, retries exhausted")

// WalletRepository is the MongoDB ledger store. Every mutation is an
// optimistic compare-and-set on the wallet document (filtered on the
// balance and reserved values just read), so two concurrent spends against
// one wallet cannot both succeed from the same snapshot; the loser retries
// from a fresh read. Each successful mutation appends one transaction.
type WalletRepository struct {
	wallets      *mongo.Collection
	transactions *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) *WalletRepository {
	return &WalletRepository{
		wallets:      db.Collection("wallets"),
		transactions: db.Collection("transactions"),
	}
}

var _ services.LedgerStore = (*WalletRepository)(nil)

// EnsureWallets creates the default wallet set for a user. Safe to call
// repeatedly; existing wallets are left untouched.
func (r *WalletRepository) EnsureWallets(ctx context.Context, userID primitive.ObjectID) error {
	now := time.Now()
	for _, t := range models.DefaultWalletTypes {
		filter := bson.M{"userId": userID, "type": t}
		update := bson.M{"$setOnInsert": bson.M{
			"userId":    userID,
			"type":      t,
			"balance":   0.0,
			"reserved":  0.0,
			"createdAt": now,
			"updatedAt": now,
		}}
		if _, err := r.wallets.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("ensure wallet %s: %w", t, err)
		}
	}
	return nil
}

func (r *WalletRepository) Wallet(ctx context.Context, userID primitive.ObjectID, t models.WalletType) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.wallets.FindOne(ctx, bson.M{"userId": userID, "type": t}).Decode(&wallet)
	if err == mongo.ErrNoDocuments {
		return nil, services.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *WalletRepository) Wallets(ctx context.Context, userID primitive.ObjectID) ([]models.Wallet, error) {
	cursor, err := r.wallets.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "type", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var wallets []models.Wallet
	if err := cursor.All(ctx, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// mutate applies change(wallet) under the optimistic guard and appends the
// returned transaction when one is produced.
func (r *WalletRepository) mutate(ctx context.Context, userID primitive.ObjectID, t models.WalletType, change func(w *models.Wallet) (bson.M, *models.Transaction, error)) (*models.Transaction, error) {
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		wallet, err := r.Wallet(ctx, userID, t)
		if err != nil {
			return nil, err
		}

		set, tx, err := change(wallet)
		if err != nil {
			return nil, err
		}
		set["updatedAt"] = time.Now()

		filter := bson.M{
			"_id":      wallet.ID,
			"balance":  wallet.Balance,
			"reserved": wallet.Reserved,
		}
		res, err := r.wallets.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount == 0 {
			continue // lost the race, retry from a fresh read
		}

		if tx != nil {
			tx.ID = primitive.NewObjectID()
			tx.WalletID = wallet.ID
			tx.UserID = userID
			tx.WalletType = t
			tx.Status = models.TransactionCompleted
			tx.Reference = uuid.NewString()
			tx.CreatedAt = time.Now()
			if _, err := r.transactions.InsertOne(ctx, tx); err != nil {
				return nil, fmt.Errorf("append transaction: %w", err)
			}
		}
		return tx, nil
	}
	return nil, errConcurrentUpdate
}

func (r *WalletRepository) Credit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %v", amount)
	}
	return r.mutate(ctx, userID, t, func(w *models.Wallet) (bson.M, *models.Transaction, error) {
		after := w.Balance + amount
		return bson.M{"balance": after}, &models.Transaction{
			Type:          models.TransactionCredit,
			Amount:        amount,
			BalanceBefore: w.Balance,
			BalanceAfter:  after,
			Meta:          meta,
		}, nil
	})
}

func (r *WalletRepository) Debit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %v", amount)
	}
	return r.mutate(ctx, userID, t, func(w *models.Wallet) (bson.M, *models.Transaction, error) {
		if w.Available() < amount {
			return nil, nil, services.ErrInsufficientBalance
		}
		after := w.Balance - amount
		return bson.M{"balance": after}, &models.Transaction{
			Type:          models.TransactionDebit,
			Amount:        amount,
			BalanceBefore: w.Balance,
			BalanceAfter:  after,
			Meta:          meta,
		}, nil
	})
}

func (r *WalletRepository) Reserve(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("reserve amount must be positive, got %v", amount)
	}
	_, err := r.mutate(ctx, userID, t, func(w *models.Wallet) (bson.M, *models.Transaction, error) {
		if w.Available() < amount {
			return nil, nil, services.ErrInsufficientBalance
		}
		return bson.M{"reserved": w.Reserved + amount}, nil, nil
	})
	return err
}

func (r *WalletRepository) Release(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("release amount must be positive, got %v", amount)
	}
	_, err := r.mutate(ctx, userID, t, func(w *models.Wallet) (bson.M, *models.Transaction, error) {
		if w.Reserved < amount {
			return nil, nil, fmt.Errorf("release %v exceeds reserved %v", amount, w.Reserved)
		}
		return bson.M{"reserved": w.Reserved - amount}, nil, nil
	})
	return err
}

func (r *WalletRepository) CaptureReserved(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("capture amount must be positive, got %v", amount)
	}
	return r.mutate(ctx, userID, t, func(w *models.Wallet) (bson.M, *models.Transaction, error) {
		if w.Reserved < amount || w.Balance < amount {
			return nil, nil, fmt.Errorf("capture %v exceeds reserved %v", amount, w.Reserved)
		}
		after := w.Balance - amount
		return bson.M{"balance": after, "reserved": w.Reserved - amount}, &models.Transaction{
			Type:          models.TransactionDebit,
			Amount:        amount,
			BalanceBefore: w.Balance,
			BalanceAfter:  after,
			Meta:          meta,
		}, nil
	})
}

// HasExchangeDebitOn scans the day's transactions for a prior exchange
// debit from the given wallet. Backed by the (walletId, createdAt) index.
func (r *WalletRepository) HasExchangeDebitOn(ctx context.Context, userID primitive.ObjectID, t models.WalletType, day string) (bool, error) {
	// The day string comes from time.Now().Format, so the window must be
	// anchored in the same location or the rule misfires around midnight.
	start, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		return false, err
	}
	end := start.AddDate(0, 0, 1)

	count, err := r.transactions.CountDocuments(ctx, bson.M{
		"userId":      userID,
		"walletType":  t,
		"type":        models.TransactionDebit,
		"meta.source": "exchange",
		"createdAt":   bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *WalletRepository) Transactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter) ([]models.Transaction, error) {
	filter := bson.M{"userId": userID}
	if f.WalletType != "" {
		filter["walletType"] = f.WalletType
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	dateRange := bson.M{}
	if !f.From.IsZero() {
		dateRange["$gte"] = f.From
	}
	if !f.To.IsZero() {
		dateRange["$lt"] = f.To
	}
	if len(dateRange) > 0 {
		filter["createdAt"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []models.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
