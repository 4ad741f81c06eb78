package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// VoucherConfig tunes voucher issuing and redemption.
type VoucherConfig struct {
	Multiplier   float64       // redeemable value per unit purchased
	Validity     time.Duration // lifetime from creation
	AllowPartial bool          // voucher may cover part of an investment, remainder paid externally
}

// DefaultVoucherConfig matches the primary product flow: 2x multiplier,
// 120-day expiry, partial coverage allowed.
func DefaultVoucherConfig() VoucherConfig {
	return VoucherConfig{Multiplier: 2.0, Validity: 120 * 24 * time.Hour, AllowPartial: true}
}

// VoucherService converts wallet balance into a multiplier-boosted
// investment credit and applies it during investment creation.
type VoucherService struct {
	ledger   LedgerStore
	vouchers VoucherStore
	cfg      VoucherConfig
	now      func() time.Time
}

func NewVoucherService(ledger LedgerStore, vouchers VoucherStore, cfg VoucherConfig) *VoucherService {
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.Validity <= 0 {
		cfg.Validity = 120 * 24 * time.Hour
	}
	return &VoucherService{ledger: ledger, vouchers: vouchers, cfg: cfg, now: time.Now}
}

// Create debits the source wallet and issues the voucher. The debit and the
// voucher insert are not atomic across collections; on insert failure the
// debit is compensated.
func (s *VoucherService) Create(ctx context.Context, userID primitive.ObjectID, from models.WalletType, amount float64) (*models.Voucher, error) {
	if !from.Valid() {
		return nil, ErrWalletNotFound
	}

	now := s.now()
	voucher := &models.Voucher{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Code:            uuid.NewString(),
		FromWallet:      from,
		Amount:          amount,
		Multiplier:      s.cfg.Multiplier,
		InvestmentValue: amount * s.cfg.Multiplier,
		Status:          models.VoucherActive,
		ExpiresAt:       now.Add(s.cfg.Validity),
		CreatedAt:       now,
	}

	debit, err := s.ledger.Debit(ctx, userID, from, amount, models.TxMeta{
		"source":    "voucher_purchase",
		"voucherId": voucher.ID.Hex(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.vouchers.Insert(ctx, voucher); err != nil {
		if _, cerr := s.ledger.Credit(ctx, userID, from, amount, models.TxMeta{
			"source":    "voucher_purchase_reversal",
			"reversing": debit.Reference,
		}); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	return voucher, nil
}

// RedemptionResult reports how much of an investment a voucher covered.
type RedemptionResult struct {
	VoucherID    primitive.ObjectID `json:"voucherId"`
	Covered      float64            `json:"covered"`
	ExternalDue  float64            `json:"externalDue"`
	FullyCovered bool               `json:"fullyCovered"`
}

// Redeem applies the voucher against an investment amount. A voucher whose
// investment value meets or exceeds the amount covers it fully with no
// external payment; otherwise the remainder is due externally when partial
// coverage is enabled, and the redemption is rejected when it is not.
// Successful redemption transitions the voucher to used.
func (s *VoucherService) Redeem(ctx context.Context, userID, voucherID primitive.ObjectID, investmentAmount float64) (*RedemptionResult, error) {
	voucher, err := s.vouchers.Voucher(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if voucher == nil || voucher.UserID != userID {
		return nil, ErrVoucherNotFound
	}

	now := s.now()
	switch {
	case voucher.Status == models.VoucherUsed:
		return nil, ErrVoucherAlreadyUsed
	case voucher.Status == models.VoucherRevoked:
		return nil, ErrVoucherRevoked
	case voucher.IsExpired(now):
		if voucher.Status == models.VoucherActive {
			if err := s.vouchers.MarkExpired(ctx, voucher.ID); err != nil {
				return nil, err
			}
		}
		return nil, ErrVoucherExpired
	}

	if investmentAmount > voucher.InvestmentValue && !s.cfg.AllowPartial {
		return nil, ErrAmountExceedsVoucher
	}

	ok, err := s.vouchers.MarkUsed(ctx, voucher.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVoucherAlreadyUsed
	}

	covered := minF(voucher.InvestmentValue, investmentAmount)
	return &RedemptionResult{
		VoucherID:    voucher.ID,
		Covered:      covered,
		ExternalDue:  investmentAmount - covered,
		FullyCovered: covered >= investmentAmount,
	}, nil
}

// Restore reactivates a redeemed voucher after the operation that consumed
// it failed, so its value is not forfeited.
func (s *VoucherService) Restore(ctx context.Context, voucherID primitive.ObjectID) error {
	return s.vouchers.Restore(ctx, voucherID)
}
