package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

func newROIFixture() (*ROIService, *fakeLedger, *fakeInvestments, *fakePackages) {
	ledger := newFakeLedger()
	investments := newFakeInvestments()
	packages := newFakePackages()
	svc := NewROIService(ledger, investments, packages, &fakeNotifier{})
	return svc, ledger, investments, packages
}

func TestROIDailyCredit(t *testing.T) {
	svc, ledger, investments, packages := newROIFixture()
	ctx := context.Background()

	// 1000 at 225% over 150 days pays 15 per day.
	pkg := packages.add(&models.Package{Name: "Solar 1000", TotalOutputPct: 225, DurationDays: 150})
	userID := primitive.NewObjectID()
	require.NoError(t, investments.Insert(ctx, &models.Investment{
		UserID: userID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		Status: models.InvestmentActive,
	}))

	summary := svc.Run(ctx, "2026-08-27")

	assert.Equal(t, 1, summary.Processed)
	assert.InDelta(t, 15.0, ledger.balance(userID, models.WalletROI), 1e-9)
}

func TestROIRunIdempotentPerDay(t *testing.T) {
	svc, ledger, investments, packages := newROIFixture()
	ctx := context.Background()

	pkg := packages.add(&models.Package{TotalOutputPct: 225, DurationDays: 150})
	userID := primitive.NewObjectID()
	require.NoError(t, investments.Insert(ctx, &models.Investment{
		UserID: userID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		Status: models.InvestmentActive,
	}))

	svc.Run(ctx, "2026-08-27")
	second := svc.Run(ctx, "2026-08-27")

	assert.Equal(t, 0, second.Processed)
	assert.InDelta(t, 15.0, ledger.balance(userID, models.WalletROI), 1e-9)

	// A new day accrues again.
	third := svc.Run(ctx, "2026-08-28")
	assert.Equal(t, 1, third.Processed)
	assert.InDelta(t, 30.0, ledger.balance(userID, models.WalletROI), 1e-9)
}

func TestROICreditFailureReleasesDayClaim(t *testing.T) {
	svc, ledger, investments, packages := newROIFixture()
	ctx := context.Background()

	pkg := packages.add(&models.Package{TotalOutputPct: 225, DurationDays: 150})
	userID := primitive.NewObjectID()
	inv := &models.Investment{
		UserID: userID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		Status: models.InvestmentActive,
	}
	require.NoError(t, investments.Insert(ctx, inv))

	ledger.creditErr = errors.New("ledger unavailable")
	failed := svc.Run(ctx, "2026-08-27")

	assert.Equal(t, 1, failed.Failed)
	assert.Equal(t, 0, failed.Processed)
	assert.Equal(t, 0.0, ledger.balance(userID, models.WalletROI))

	// The day claim was released alongside the failed credit.
	after, err := investments.Investment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "", after.LastAccruedOn)
	assert.Equal(t, 0, after.DaysCredited)

	// A retry of the same day pays the missed credit exactly once.
	ledger.creditErr = nil
	retry := svc.Run(ctx, "2026-08-27")
	assert.Equal(t, 1, retry.Processed)
	assert.InDelta(t, 15.0, ledger.balance(userID, models.WalletROI), 1e-9)
}

func TestROIMaturitySpawnsRenewal(t *testing.T) {
	svc, _, investments, packages := newROIFixture()
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }

	pkg := packages.add(&models.Package{
		TotalOutputPct: 225, DurationDays: 150, RenewablePrinciplePct: 50,
	})
	userID := primitive.NewObjectID()
	original := &models.Investment{
		UserID: userID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		DaysCredited: 149, Status: models.InvestmentActive,
	}
	require.NoError(t, investments.Insert(ctx, original))

	summary := svc.Run(ctx, "2026-08-27")
	require.Equal(t, 1, summary.Processed)

	matured, err := investments.Investment(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvestmentMatured, matured.Status)
	require.NotNil(t, matured.MaturedAt)

	all, err := investments.ByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	renewal := all[1]
	assert.Equal(t, 500.0, renewal.InvestedAmount)
	assert.Equal(t, models.InvestmentActive, renewal.Status)
	require.NotNil(t, renewal.RenewedFrom)
	assert.Equal(t, original.ID, *renewal.RenewedFrom)
	// Renewals never re-trigger referral or volume propagation.
	assert.True(t, renewal.IsBinaryUpdated)
	assert.True(t, renewal.ReferralPaid)
}

func TestROIMaturityWithoutRenewablePrinciple(t *testing.T) {
	svc, _, investments, packages := newROIFixture()
	ctx := context.Background()

	pkg := packages.add(&models.Package{TotalOutputPct: 150, DurationDays: 100})
	userID := primitive.NewObjectID()
	original := &models.Investment{
		UserID: userID, PackageID: pkg.ID, InvestedAmount: 500,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 100,
		DaysCredited: 99, Status: models.InvestmentActive,
	}
	require.NoError(t, investments.Insert(ctx, original))

	svc.Run(ctx, "2026-08-27")

	all, err := investments.ByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, models.InvestmentMatured, all[0].Status)
}
