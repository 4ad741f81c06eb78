package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// ROIService credits each active investment its daily output and handles
// maturity, including spawning the renewal investment.
type ROIService struct {
	ledger      LedgerStore
	investments InvestmentStore
	packages    PackageStore
	notifier    Notifier
	now         func() time.Time
}

func NewROIService(ledger LedgerStore, investments InvestmentStore, packages PackageStore, notifier Notifier) *ROIService {
	return &ROIService{ledger: ledger, investments: investments, packages: packages, notifier: notifier, now: time.Now}
}

// Run executes the accrual batch for the given day (YYYY-MM-DD). One credit
// per investment per calendar day, guarded by (investmentId, day); per-
// investment failures are logged and skipped.
func (s *ROIService) Run(ctx context.Context, day string) models.JobSummary {
	summary := models.JobSummary{Job: models.JobROIAccrual, Date: day}

	invs, err := s.investments.Accruable(ctx, day)
	if err != nil {
		log.Printf("roi accrual: listing investments failed: %v", err)
		summary.Failed++
		return summary
	}

	for i := range invs {
		if err := s.accrue(ctx, &invs[i], day, &summary); err != nil {
			log.Printf("roi accrual: investment %s failed: %v", invs[i].ID.Hex(), err)
			summary.Failed++
		}
	}
	return summary
}

func (s *ROIService) accrue(ctx context.Context, inv *models.Investment, day string, summary *models.JobSummary) error {
	claimed, err := s.investments.MarkAccrued(ctx, inv.ID, day)
	if err != nil {
		return err
	}
	if !claimed {
		summary.Skipped++
		return nil
	}

	credit := inv.DailyCredit()
	_, err = s.ledger.Credit(ctx, inv.UserID, models.WalletROI, credit, models.TxMeta{
		"source":       "roi_accrual",
		"date":         day,
		"investmentId": inv.ID.Hex(),
	})
	if err != nil {
		// Release the day claim so a retry can credit it; otherwise the
		// day counts as accrued with no wallet credit behind it.
		if uerr := s.investments.UnmarkAccrued(ctx, inv.ID, day); uerr != nil {
			log.Printf("roi accrual: releasing day claim for %s: %v", inv.ID.Hex(), uerr)
		}
		return err
	}
	if s.notifier != nil {
		s.notifier.WalletCredited(inv.UserID, models.WalletROI, credit, "daily ROI")
	}

	if inv.DaysCredited+1 >= inv.DurationDays {
		if err := s.mature(ctx, inv); err != nil {
			return err
		}
	}
	summary.Processed++
	return nil
}

// mature marks the investment finished and, when the package keeps a
// renewable principle, spawns the follow-up investment. The renewal accrues
// ROI like any other investment but does not re-trigger referral bonus or
// business-volume propagation.
func (s *ROIService) mature(ctx context.Context, inv *models.Investment) error {
	now := s.now()
	if err := s.investments.MarkMatured(ctx, inv.ID, now); err != nil {
		return err
	}

	pkg, err := s.packages.Package(ctx, inv.PackageID)
	if err != nil || pkg == nil || pkg.RenewablePrinciplePct <= 0 {
		return err
	}

	renewal := &models.Investment{
		ID:              primitive.NewObjectID(),
		UserID:          inv.UserID,
		PackageID:       inv.PackageID,
		InvestedAmount:  inv.InvestedAmount * pkg.RenewablePrinciplePct / 100,
		DailyOutputRate: pkg.DailyOutputRate(),
		DurationDays:    pkg.DurationDays,
		Status:          models.InvestmentActive,
		IsBinaryUpdated: true,
		ReferralPaid:    true,
		RenewedFrom:     &inv.ID,
		ExpiresOn:       now.AddDate(0, 0, pkg.DurationDays),
		CreatedAt:       now,
	}
	return s.investments.Insert(ctx, renewal)
}
