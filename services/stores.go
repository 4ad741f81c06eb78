package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// LedgerStore is the durable wallet ledger. Credit and Debit are atomic per
// wallet: the balance update and the appended Transaction happen as one
// guarded write, so concurrent spends against the same wallet serialize.
type LedgerStore interface {
	EnsureWallets(ctx context.Context, userID primitive.ObjectID) error
	Wallet(ctx context.Context, userID primitive.ObjectID, t models.WalletType) (*models.Wallet, error)
	Wallets(ctx context.Context, userID primitive.ObjectID) ([]models.Wallet, error)
	Credit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error)
	Debit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error)
	Reserve(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error
	Release(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error
	// CaptureReserved finalizes a prior reservation: balance and reserved
	// both drop by amount and a debit Transaction is appended.
	CaptureReserved(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error)
	// HasExchangeDebitOn reports whether the wallet already has an exchange
	// debit on the given calendar day (YYYY-MM-DD).
	HasExchangeDebitOn(ctx context.Context, userID primitive.ObjectID, t models.WalletType, day string) (bool, error)
	Transactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter) ([]models.Transaction, error)
}

// TreeStore is the durable binary-tree node store.
type TreeStore interface {
	Node(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	NodeByReferralCode(ctx context.Context, code string) (*models.User, error)
	// AttachChild links child under parent on the given side and records
	// the child's parent pointer and position.
	AttachChild(ctx context.Context, parentID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error
	// AttachRootChild appends a direct child to the distinguished root
	// node, which is exempt from the two-child constraint.
	AttachRootChild(ctx context.Context, rootID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error
	IncrementDownlines(ctx context.Context, nodeID primitive.ObjectID, side models.Position) error
	AddBusiness(ctx context.Context, nodeID primitive.ObjectID, side models.Position, amount float64) error
	// MatchableNodes returns active binary nodes with volume or carry on
	// both legs that have not yet been matched on the given day.
	MatchableNodes(ctx context.Context, day string) ([]models.User, error)
	// ApplyMatch consumes matched volume and stores the new carries, guarded
	// by lastBinaryOn != day. Returns false when another run got there first.
	ApplyMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) (bool, error)
	// RevertMatch undoes a same-day ApplyMatch whose wallet credit failed:
	// the matched volume returns to both legs, the carries are restored and
	// the day stamp is cleared so a retry can pay the bonus.
	RevertMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) error
}

// UserStore covers the non-tree parts of the user record the engine touches.
type UserStore interface {
	User(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// AddTotalInvestment atomically bumps the cumulative lifetime investment
	// and returns the new total.
	AddTotalInvestment(ctx context.Context, id primitive.ObjectID, amount float64) (float64, error)
	// AdvanceCareerLevel moves the achieved level from exactly `from` to
	// `to`; returns false if the stored level was no longer `from`.
	AdvanceCareerLevel(ctx context.Context, id primitive.ObjectID, from, to int) (bool, error)
}

type PackageStore interface {
	Package(ctx context.Context, id primitive.ObjectID) (*models.Package, error)
	ActivePackages(ctx context.Context) ([]models.Package, error)
}

type InvestmentStore interface {
	Insert(ctx context.Context, inv *models.Investment) error
	Investment(ctx context.Context, id primitive.ObjectID) (*models.Investment, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error)
	ActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error)
	// Accruable lists active investments not yet credited on the given day.
	Accruable(ctx context.Context, day string) ([]models.Investment, error)
	// MarkAccrued bumps daysCredited and stamps the day, guarded by
	// lastAccruedOn != day. Returns false when the day was already credited.
	MarkAccrued(ctx context.Context, id primitive.ObjectID, day string) (bool, error)
	// UnmarkAccrued reverses a same-day MarkAccrued whose wallet credit
	// failed, so the next run can claim the day again.
	UnmarkAccrued(ctx context.Context, id primitive.ObjectID, day string) error
	MarkMatured(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// MarkBinaryUpdated flips isBinaryUpdated, returning false if it was
	// already set (volume already propagated).
	MarkBinaryUpdated(ctx context.Context, id primitive.ObjectID) (bool, error)
	MarkReferralPaid(ctx context.Context, id primitive.ObjectID) (bool, error)
	UnpaidReferrals(ctx context.Context) ([]models.Investment, error)
}

type CareerLevelStore interface {
	// LevelsAbove returns active levels with Order > order, ascending.
	LevelsAbove(ctx context.Context, order int) ([]models.CareerLevel, error)
}

type VoucherStore interface {
	Insert(ctx context.Context, v *models.Voucher) error
	Voucher(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Voucher, error)
	// MarkUsed transitions active -> used, guarded on the current status.
	MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	MarkExpired(ctx context.Context, id primitive.ObjectID) error
	// Restore transitions used -> active when the operation that redeemed
	// the voucher failed afterwards.
	Restore(ctx context.Context, id primitive.ObjectID) error
}

type WithdrawalStore interface {
	Insert(ctx context.Context, w *models.Withdrawal) error
	Withdrawal(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error)
	Pending(ctx context.Context) ([]models.Withdrawal, error)
	// Decide transitions pending -> approved/rejected, guarded on pending.
	Decide(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string, at time.Time) (bool, error)
}

type JobRunStore interface {
	Record(ctx context.Context, run models.JobRun) error
}

// DayLocker serializes a batch job per calendar day across processes.
// Acquire returns false when another trigger already holds or held the lock.
type DayLocker interface {
	Acquire(ctx context.Context, job, day string) (bool, error)
}

// Notifier receives best-effort wallet-credit events. Failures are logged
// by implementations, never surfaced into the ledger path.
type Notifier interface {
	WalletCredited(userID primitive.ObjectID, t models.WalletType, amount float64, reason string)
}
