package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvest/stackvest_backend/models"
)

type investFixture struct {
	svc         *InvestmentService
	tree        *fakeTree
	ledger      *fakeLedger
	investments *fakeInvestments
	packages    *fakePackages
	vouchers    *fakeVouchers
}

func newInvestFixture() *investFixture {
	f := &investFixture{
		tree:        newFakeTree(),
		ledger:      newFakeLedger(),
		investments: newFakeInvestments(),
		packages:    newFakePackages(),
		vouchers:    newFakeVouchers(),
	}
	notifier := &fakeNotifier{}
	voucherSvc := NewVoucherService(f.ledger, f.vouchers, DefaultVoucherConfig())
	volumeSvc := NewVolumeService(f.tree, f.investments)
	referralSvc := NewReferralService(f.tree, f.ledger, f.investments, f.packages, notifier)
	careerSvc := NewCareerService(f.tree, &fakeLevels{levels: standardLevels()}, f.ledger, notifier)
	f.svc = NewInvestmentService(f.tree, f.packages, f.investments, voucherSvc, volumeSvc, referralSvc, careerSvc)
	return f
}

func TestInvestValidatesPackage(t *testing.T) {
	f := newInvestFixture()
	ctx := context.Background()
	user := f.tree.add(&models.User{})

	inactive := f.packages.add(&models.Package{
		MinAmount: 100, MaxAmount: 5000, Status: models.PackageInActive,
	})
	_, err := f.svc.Invest(ctx, user.ID, inactive.ID, 1000, nil)
	assert.ErrorIs(t, err, ErrPackageInactive)

	active := f.packages.add(&models.Package{MinAmount: 100, MaxAmount: 5000})
	_, err = f.svc.Invest(ctx, user.ID, active.ID, 50, nil)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = f.svc.Invest(ctx, user.ID, active.ID, 9000, nil)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestInvestFansOutSideEffects(t *testing.T) {
	f := newInvestFixture()
	ctx := context.Background()

	sponsor := f.tree.add(&models.User{})
	investor := f.tree.add(&models.User{ReferrerID: &sponsor.ID})
	require.NoError(t, f.tree.AttachChild(ctx, sponsor.ID, models.PositionLeft, investor.ID))

	pkg := f.packages.add(&models.Package{
		MinAmount: 100, MaxAmount: 5000, DurationDays: 150,
		TotalOutputPct: 225, ReferralPct: 7,
	})

	result, err := f.svc.Invest(ctx, investor.ID, pkg.ID, 1200, nil)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, result.Investment.InvestedAmount)
	assert.Equal(t, 1200.0, result.ExternalDue)
	assert.InDelta(t, pkg.DailyOutputRate(), result.Investment.DailyOutputRate, 1e-12)

	// Referral bonus to the sponsor.
	assert.Equal(t, 84.0, f.ledger.balance(sponsor.ID, models.WalletReferral))

	// Business volume on the sponsor's left leg.
	sp, _ := f.tree.Node(ctx, sponsor.ID)
	assert.Equal(t, 1200.0, sp.LeftBusiness)

	// Cumulative total and the crossed career level.
	investorAfter, _ := f.tree.User(ctx, investor.ID)
	assert.Equal(t, 1200.0, investorAfter.TotalInvestment)
	assert.Equal(t, 1, investorAfter.CareerLevel)
	assert.Equal(t, 50.0, f.ledger.balance(investor.ID, models.WalletCareerLevel))
}

func TestInvestWithVoucherCoverage(t *testing.T) {
	f := newInvestFixture()
	ctx := context.Background()

	investor := f.tree.add(&models.User{})
	f.ledger.setBalance(investor.ID, models.WalletROI, 200)

	voucherSvc := NewVoucherService(f.ledger, f.vouchers, DefaultVoucherConfig())
	voucher, err := voucherSvc.Create(ctx, investor.ID, models.WalletROI, 200)
	require.NoError(t, err)

	pkg := f.packages.add(&models.Package{MinAmount: 100, MaxAmount: 5000, DurationDays: 100, TotalOutputPct: 150})

	// The 200 voucher is worth 400; a 300 investment is fully covered.
	result, err := f.svc.Invest(ctx, investor.ID, pkg.ID, 300, &voucher.ID)
	require.NoError(t, err)

	require.NotNil(t, result.Redemption)
	assert.True(t, result.Redemption.FullyCovered)
	assert.Equal(t, 0.0, result.ExternalDue)
	require.NotNil(t, result.Investment.VoucherID)
	assert.Equal(t, voucher.ID, *result.Investment.VoucherID)
	assert.Equal(t, 300.0, result.Investment.VoucherCovered)
}

func TestInvestRestoresVoucherOnInsertFailure(t *testing.T) {
	f := newInvestFixture()
	ctx := context.Background()

	investor := f.tree.add(&models.User{})
	f.ledger.setBalance(investor.ID, models.WalletROI, 200)

	voucherSvc := NewVoucherService(f.ledger, f.vouchers, DefaultVoucherConfig())
	voucher, err := voucherSvc.Create(ctx, investor.ID, models.WalletROI, 200)
	require.NoError(t, err)

	pkg := f.packages.add(&models.Package{MinAmount: 100, MaxAmount: 5000, DurationDays: 100, TotalOutputPct: 150})

	f.investments.insertErr = errors.New("insert failed")
	_, err = f.svc.Invest(ctx, investor.ID, pkg.ID, 300, &voucher.ID)
	require.Error(t, err)

	// The redeemed voucher is active again, not forfeited.
	restored, err := f.vouchers.Voucher(ctx, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoucherActive, restored.Status)

	f.investments.insertErr = nil
	result, err := f.svc.Invest(ctx, investor.ID, pkg.ID, 300, &voucher.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Redemption)
	assert.True(t, result.Redemption.FullyCovered)
}

func TestInvestRejectsUsedVoucherBeforeCreating(t *testing.T) {
	f := newInvestFixture()
	ctx := context.Background()

	investor := f.tree.add(&models.User{})
	f.ledger.setBalance(investor.ID, models.WalletROI, 100)

	voucherSvc := NewVoucherService(f.ledger, f.vouchers, DefaultVoucherConfig())
	voucher, err := voucherSvc.Create(ctx, investor.ID, models.WalletROI, 100)
	require.NoError(t, err)
	_, err = voucherSvc.Redeem(ctx, investor.ID, voucher.ID, 100)
	require.NoError(t, err)

	pkg := f.packages.add(&models.Package{MinAmount: 100, MaxAmount: 5000})

	before := len(f.investments.all())
	_, err = f.svc.Invest(ctx, investor.ID, pkg.ID, 150, &voucher.ID)

	assert.ErrorIs(t, err, ErrVoucherAlreadyUsed)
	assert.Len(t, f.investments.all(), before)
}
