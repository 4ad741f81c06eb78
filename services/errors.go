package services

import "errors"

// Engine error taxonomy. Controllers map these onto HTTP statuses; every
// mutation that returns one of them leaves the ledger unchanged.
var (
	// Validation
	ErrAmountOutOfRange  = errors.New("amount outside package bounds")
	ErrPackageInactive   = errors.New("package is not active")
	ErrInvalidWalletPair = errors.New("wallet pair not allowed for exchange")
	ErrSameWallet        = errors.New("cannot exchange a wallet with itself")
	ErrInvalidPosition   = errors.New("position must be left or right")

	// Funds
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// Limits
	ErrDailyLimitReached = errors.New("daily exchange limit reached for this wallet")
	ErrCappingLimit      = errors.New("amount exceeds withdrawal capping limit")
	ErrTreeFull          = errors.New("no free slot within maximum tree depth")

	// State conflicts
	ErrVoucherExpired       = errors.New("voucher has expired")
	ErrVoucherAlreadyUsed   = errors.New("voucher has already been used")
	ErrVoucherRevoked       = errors.New("voucher has been revoked")
	ErrAmountExceedsVoucher = errors.New("investment amount exceeds voucher value")
	ErrWithdrawalNotPending = errors.New("withdrawal is not pending")
	ErrPayoutAddressMissing = errors.New("no payout address registered")

	// Not found
	ErrReferrerNotFound   = errors.New("referrer not found or not active")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrPackageNotFound    = errors.New("package not found")
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrInvestmentNotFound = errors.New("investment not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrUserNotFound       = errors.New("user not found")
)
