package controllers

import (
	"errors"
	"net/http"

	"github.com/stackvest/stackvest_backend/services"
)

// statusForError maps engine errors onto HTTP status codes. Anything not in
// the taxonomy is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPackageNotFound),
		errors.Is(err, services.ErrVoucherNotFound),
		errors.Is(err, services.ErrInvestmentNotFound),
		errors.Is(err, services.ErrWithdrawalNotFound),
		errors.Is(err, services.ErrWalletNotFound),
		errors.Is(err, services.ErrReferrerNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrVoucherAlreadyUsed),
		errors.Is(err, services.ErrVoucherRevoked),
		errors.Is(err, services.ErrVoucherExpired),
		errors.Is(err, services.ErrWithdrawalNotPending):
		return http.StatusConflict
	case errors.Is(err, services.ErrAmountOutOfRange),
		errors.Is(err, services.ErrPackageInactive),
		errors.Is(err, services.ErrInvalidWalletPair),
		errors.Is(err, services.ErrSameWallet),
		errors.Is(err, services.ErrInvalidPosition),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrDailyLimitReached),
		errors.Is(err, services.ErrCappingLimit),
		errors.Is(err, services.ErrTreeFull),
		errors.Is(err, services.ErrAmountExceedsVoucher),
		errors.Is(err, services.ErrPayoutAddressMissing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internal details behind a generic message for 500s.
func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}
