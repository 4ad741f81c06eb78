package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// InvestmentService creates investments from confirmed payments or voucher
// coverage and fans out the follow-up effects: referral bonus, business
// volume propagation and career-level evaluation.
type InvestmentService struct {
	users       UserStore
	packages    PackageStore
	investments InvestmentStore
	vouchers    *VoucherService
	volume      *VolumeService
	referral    *ReferralService
	career      *CareerService
	now         func() time.Time
}

func NewInvestmentService(users UserStore, packages PackageStore, investments InvestmentStore, vouchers *VoucherService, volume *VolumeService, referral *ReferralService, career *CareerService) *InvestmentService {
	return &InvestmentService{
		users: users, packages: packages, investments: investments,
		vouchers: vouchers, volume: volume, referral: referral, career: career,
		now: time.Now,
	}
}

// InvestResult is the invest operation's outcome.
type InvestResult struct {
	Investment  *models.Investment `json:"investment"`
	Redemption  *RedemptionResult  `json:"redemption,omitempty"`
	ExternalDue float64            `json:"externalDue"`
}

// Invest validates the amount against the package bounds, applies voucher
// coverage when a voucher is supplied, and records the investment. Any
// remainder not covered by the voucher arrives here as a trusted
// payment-confirmed amount; gateway interaction is outside the engine.
func (s *InvestmentService) Invest(ctx context.Context, userID, packageID primitive.ObjectID, amount float64, voucherID *primitive.ObjectID) (*InvestResult, error) {
	pkg, err := s.packages.Package(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if !pkg.IsActive() {
		return nil, ErrPackageInactive
	}
	if amount < pkg.MinAmount || amount > pkg.MaxAmount {
		return nil, ErrAmountOutOfRange
	}

	var redemption *RedemptionResult
	if voucherID != nil {
		redemption, err = s.vouchers.Redeem(ctx, userID, *voucherID, amount)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	inv := &models.Investment{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		PackageID:       pkg.ID,
		InvestedAmount:  amount,
		DailyOutputRate: pkg.DailyOutputRate(),
		DurationDays:    pkg.DurationDays,
		Status:          models.InvestmentActive,
		ExpiresOn:       now.AddDate(0, 0, pkg.DurationDays),
		CreatedAt:       now,
	}
	if redemption != nil {
		inv.VoucherID = &redemption.VoucherID
		inv.VoucherCovered = redemption.Covered
	}
	if err := s.investments.Insert(ctx, inv); err != nil {
		if redemption != nil {
			if rerr := s.vouchers.Restore(ctx, redemption.VoucherID); rerr != nil {
				log.Printf("invest: restoring voucher %s after insert failure: %v", redemption.VoucherID.Hex(), rerr)
			}
		}
		return nil, err
	}

	if _, err := s.users.AddTotalInvestment(ctx, userID, amount); err != nil {
		log.Printf("invest: updating cumulative total for %s failed: %v", userID.Hex(), err)
	}

	// The distributors are individually idempotent; a failure here is
	// picked up by the daily sweep rather than failing the investment.
	if err := s.referral.OnInvestmentConfirmed(ctx, inv.ID); err != nil {
		log.Printf("invest: referral bonus for %s failed: %v", inv.ID.Hex(), err)
	}
	if err := s.volume.OnInvestmentConfirmed(ctx, inv.ID); err != nil {
		log.Printf("invest: volume propagation for %s failed: %v", inv.ID.Hex(), err)
	}
	if _, err := s.career.Evaluate(ctx, userID); err != nil {
		log.Printf("invest: career evaluation for %s failed: %v", userID.Hex(), err)
	}

	result := &InvestResult{Investment: inv, Redemption: redemption, ExternalDue: amount}
	if redemption != nil {
		result.ExternalDue = redemption.ExternalDue
	}
	return result, nil
}
