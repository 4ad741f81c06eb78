package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// WithdrawalMailer sends the user an email when an admin decides their
// withdrawal. Best effort; failures never roll back the decision.
type WithdrawalMailer interface {
	WithdrawalDecided(email, fullName string, w *models.Withdrawal)
}

// WithdrawalConfig tunes the processor.
type WithdrawalConfig struct {
	ChargePct  float64 // fee percentage deducted from the requested amount
	DefaultCap float64 // capping limit for users without an active package
}

func DefaultWithdrawalConfig() WithdrawalConfig {
	return WithdrawalConfig{ChargePct: 5, DefaultCap: 1000}
}

// WithdrawalService reserves wallet funds for a pending withdrawal and
// finalizes or releases them on the admin's decision.
type WithdrawalService struct {
	ledger      LedgerStore
	withdrawals WithdrawalStore
	users       UserStore
	investments InvestmentStore
	packages    PackageStore
	mailer      WithdrawalMailer
	cfg         WithdrawalConfig
	now         func() time.Time
}

func NewWithdrawalService(ledger LedgerStore, withdrawals WithdrawalStore, users UserStore, investments InvestmentStore, packages PackageStore, mailer WithdrawalMailer, cfg WithdrawalConfig) *WithdrawalService {
	if cfg.ChargePct <= 0 {
		cfg.ChargePct = 5
	}
	return &WithdrawalService{
		ledger: ledger, withdrawals: withdrawals, users: users,
		investments: investments, packages: packages, mailer: mailer,
		cfg: cfg, now: time.Now,
	}
}

// cappingLimit resolves the per-request withdrawal ceiling from the user's
// highest-capacity active package, falling back to the configured default
// when no investment is active.
func (s *WithdrawalService) cappingLimit(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	invs, err := s.investments.ActiveByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	limit := 0.0
	for i := range invs {
		pkg, err := s.packages.Package(ctx, invs[i].PackageID)
		if err != nil || pkg == nil {
			continue
		}
		if pkg.PowerCapacity > limit {
			limit = pkg.PowerCapacity
		}
	}
	if limit <= 0 {
		limit = s.cfg.DefaultCap
	}
	return limit, nil
}

// Request validates the amount against the available balance and the
// capping limit, reserves the funds and files a pending withdrawal.
func (s *WithdrawalService) Request(ctx context.Context, userID primitive.ObjectID, walletType models.WalletType, amount float64, method string) (*models.Withdrawal, error) {
	if !walletType.Valid() {
		return nil, ErrWalletNotFound
	}

	user, err := s.users.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PayoutAddress == "" {
		return nil, ErrPayoutAddressMissing
	}

	limit, err := s.cappingLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount > limit {
		return nil, ErrCappingLimit
	}

	if err := s.ledger.Reserve(ctx, userID, walletType, amount); err != nil {
		return nil, err
	}

	charges := amount * s.cfg.ChargePct / 100
	if method == "" {
		method = "bank"
	}
	withdrawal := &models.Withdrawal{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		WalletType:    walletType,
		Amount:        amount,
		Charges:       charges,
		FinalAmount:   amount - charges,
		Method:        method,
		PayoutAddress: user.PayoutAddress,
		Reference:     uuid.NewString(),
		Status:        models.WithdrawalPending,
		CreatedAt:     s.now(),
	}
	if err := s.withdrawals.Insert(ctx, withdrawal); err != nil {
		if rerr := s.ledger.Release(ctx, userID, walletType, amount); rerr != nil {
			log.Printf("withdrawal: releasing reserve after insert failure for user %s: %v", userID.Hex(), rerr)
		}
		return nil, err
	}
	return withdrawal, nil
}

// Approve finalizes a pending withdrawal: the reservation is captured (the
// wallet is debited for the full requested amount) and the external payout
// of the final amount is assumed triggered by the caller.
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID, adminID primitive.ObjectID, note string) (*models.Withdrawal, error) {
	return s.decide(ctx, withdrawalID, adminID, models.WithdrawalApproved, note)
}

// Reject releases the reserved funds back to the available balance.
func (s *WithdrawalService) Reject(ctx context.Context, withdrawalID, adminID primitive.ObjectID, reason string) (*models.Withdrawal, error) {
	return s.decide(ctx, withdrawalID, adminID, models.WithdrawalRejected, reason)
}

func (s *WithdrawalService) decide(ctx context.Context, withdrawalID, adminID primitive.ObjectID, status, note string) (*models.Withdrawal, error) {
	w, err := s.withdrawals.Withdrawal(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWithdrawalNotFound
	}
	if w.Status != models.WithdrawalPending {
		return nil, ErrWithdrawalNotPending
	}

	now := s.now()
	ok, err := s.withdrawals.Decide(ctx, w.ID, status, adminID, note, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWithdrawalNotPending
	}

	switch status {
	case models.WithdrawalApproved:
		_, err = s.ledger.CaptureReserved(ctx, w.UserID, w.WalletType, w.Amount, models.TxMeta{
			"source":       "withdrawal",
			"withdrawalId": w.ID.Hex(),
			"charges":      w.Charges,
			"finalAmount":  w.FinalAmount,
		})
	case models.WithdrawalRejected:
		err = s.ledger.Release(ctx, w.UserID, w.WalletType, w.Amount)
	}
	if err != nil {
		return nil, err
	}

	w.Status = status
	w.AdminID = &adminID
	w.ProcessedAt = &now
	if status == models.WithdrawalRejected {
		w.RejectionReason = note
	} else {
		w.AdminNote = note
	}

	if s.mailer != nil {
		if user, uerr := s.users.User(ctx, w.UserID); uerr == nil && user != nil {
			s.mailer.WithdrawalDecided(user.Email, user.FullName, w)
		}
	}
	return w, nil
}
