package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvest/stackvest_backend/models"
)

type dailyFixture struct {
	svc         *DailyService
	ledger      *fakeLedger
	tree        *fakeTree
	investments *fakeInvestments
	packages    *fakePackages
	jobs        *fakeJobRuns
	locker      *fakeLocker
}

func newDailyFixture() *dailyFixture {
	f := &dailyFixture{
		ledger:      newFakeLedger(),
		tree:        newFakeTree(),
		investments: newFakeInvestments(),
		packages:    newFakePackages(),
		jobs:        &fakeJobRuns{},
		locker:      newFakeLocker(),
	}
	notifier := &fakeNotifier{}
	roi := NewROIService(f.ledger, f.investments, f.packages, notifier)
	binary := NewBinaryService(f.tree, f.ledger, f.investments, f.packages, notifier)
	referral := NewReferralService(f.tree, f.ledger, f.investments, f.packages, notifier)
	f.svc = NewDailyService(roi, binary, referral, f.jobs, f.locker)
	return f
}

func TestDailyTriggerRunsAllJobsByDefault(t *testing.T) {
	f := newDailyFixture()

	summaries, err := f.svc.Trigger(context.Background(), models.DailyCalculationsRequest{Date: "2026-08-27"})
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	assert.Equal(t, models.JobROIAccrual, summaries[0].Job)
	assert.Equal(t, models.JobBinaryBonus, summaries[1].Job)
	assert.Equal(t, models.JobReferral, summaries[2].Job)
	assert.Len(t, f.jobs.runs, 3)
}

func TestDailyTriggerSelectsJobs(t *testing.T) {
	f := newDailyFixture()
	no := false

	summaries, err := f.svc.Trigger(context.Background(), models.DailyCalculationsRequest{
		Date: "2026-08-27", IncludeBinary: &no, IncludeReferral: &no,
	})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, models.JobROIAccrual, summaries[0].Job)
}

func TestDailyTriggerSecondRunReportsAlreadyRan(t *testing.T) {
	f := newDailyFixture()
	ctx := context.Background()

	pkg := f.packages.add(&models.Package{TotalOutputPct: 225, DurationDays: 150})
	user := f.tree.add(&models.User{})
	require.NoError(t, f.investments.Insert(ctx, &models.Investment{
		UserID: user.ID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		Status: models.InvestmentActive, IsBinaryUpdated: true, ReferralPaid: true,
		CreatedAt: time.Now(),
	}))

	first, err := f.svc.Trigger(ctx, models.DailyCalculationsRequest{Date: "2026-08-27"})
	require.NoError(t, err)
	assert.Equal(t, 1, first[0].Processed)

	second, err := f.svc.Trigger(ctx, models.DailyCalculationsRequest{Date: "2026-08-27"})
	require.NoError(t, err)
	for _, s := range second {
		assert.True(t, s.AlreadyRan)
		assert.Equal(t, 0, s.Processed)
	}

	// Exactly one day's credit despite the double trigger.
	assert.InDelta(t, 15.0, f.ledger.balance(user.ID, models.WalletROI), 1e-9)
	// Only the first trigger's runs are recorded.
	assert.Len(t, f.jobs.runs, 3)
}

func TestDailyTriggerDistinctDaysBothRun(t *testing.T) {
	f := newDailyFixture()
	ctx := context.Background()

	pkg := f.packages.add(&models.Package{TotalOutputPct: 225, DurationDays: 150})
	user := f.tree.add(&models.User{})
	require.NoError(t, f.investments.Insert(ctx, &models.Investment{
		UserID: user.ID, PackageID: pkg.ID, InvestedAmount: 1000,
		DailyOutputRate: pkg.DailyOutputRate(), DurationDays: 150,
		Status: models.InvestmentActive, IsBinaryUpdated: true, ReferralPaid: true,
		CreatedAt: time.Now(),
	}))

	_, err := f.svc.Trigger(ctx, models.DailyCalculationsRequest{Date: "2026-08-27"})
	require.NoError(t, err)
	_, err = f.svc.Trigger(ctx, models.DailyCalculationsRequest{Date: "2026-08-28"})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, f.ledger.balance(user.ID, models.WalletROI), 1e-9)
}
