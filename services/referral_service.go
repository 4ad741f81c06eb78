package services

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// ReferralService pays the one-time direct-referrer bonus on investment
// confirmation. Single level only: the bonus is not propagated further up
// the tree.
type ReferralService struct {
	users       UserStore
	ledger      LedgerStore
	investments InvestmentStore
	packages    PackageStore
	notifier    Notifier
}

func NewReferralService(users UserStore, ledger LedgerStore, investments InvestmentStore, packages PackageStore, notifier Notifier) *ReferralService {
	return &ReferralService{users: users, ledger: ledger, investments: investments, packages: packages, notifier: notifier}
}

// OnInvestmentConfirmed credits the investor's sponsor once per investment.
// Idempotent via the investment's referralPaid flag.
func (s *ReferralService) OnInvestmentConfirmed(ctx context.Context, investmentID primitive.ObjectID) error {
	inv, err := s.investments.Investment(ctx, investmentID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInvestmentNotFound
	}
	if inv.ReferralPaid {
		return nil
	}

	investor, err := s.users.User(ctx, inv.UserID)
	if err != nil {
		return err
	}
	if investor == nil || investor.ReferrerID == nil {
		// Nothing to pay (root's direct signups have no sponsor); still
		// claim the flag so sweeps stop revisiting the investment.
		_, err := s.investments.MarkReferralPaid(ctx, inv.ID)
		return err
	}

	pkg, err := s.packages.Package(ctx, inv.PackageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return ErrPackageNotFound
	}

	claimed, err := s.investments.MarkReferralPaid(ctx, inv.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	bonus := inv.InvestedAmount * pkg.ReferralPct / 100
	if bonus <= 0 {
		return nil
	}

	_, err = s.ledger.Credit(ctx, *investor.ReferrerID, models.WalletReferral, bonus, models.TxMeta{
		"source":       "referral_bonus",
		"investmentId": inv.ID.Hex(),
		"investorId":   investor.ID.Hex(),
	})
	if err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.WalletCredited(*investor.ReferrerID, models.WalletReferral, bonus, "referral bonus")
	}
	return nil
}

// Sweep pays referral bonuses for any confirmed investments the inline path
// missed (for instance a crash between investment insert and payout). Part
// of the admin daily trigger.
func (s *ReferralService) Sweep(ctx context.Context, day string) models.JobSummary {
	summary := models.JobSummary{Job: models.JobReferral, Date: day}

	invs, err := s.investments.UnpaidReferrals(ctx)
	if err != nil {
		log.Printf("referral sweep: listing investments failed: %v", err)
		summary.Failed++
		return summary
	}

	for i := range invs {
		if err := s.OnInvestmentConfirmed(ctx, invs[i].ID); err != nil {
			log.Printf("referral sweep: investment %s failed: %v", invs[i].ID.Hex(), err)
			summary.Failed++
			continue
		}
		summary.Processed++
	}
	return summary
}
