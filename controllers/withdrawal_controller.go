package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

// WithdrawalController exposes the user side of withdrawals: filing a
// request and listing past ones. Decisions live on the admin surface.
type WithdrawalController struct {
	Withdrawals services.WithdrawalStore
	Service     *services.WithdrawalService
}

func NewWithdrawalController(withdrawals services.WithdrawalStore, service *services.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{Withdrawals: withdrawals, Service: service}
}

// RequestWithdrawal reserves the amount on the wallet and files a pending
// withdrawal for admin review.
func (wc *WithdrawalController) RequestWithdrawal(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawal, err := wc.Service.Request(ctx, userID, models.WalletType(req.WalletType), req.Amount, req.Method)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("RequestWithdrawal: user %s: %v", userID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request submitted successfully",
		Data:    withdrawal,
	})
}

// GetWithdrawals lists the authenticated user's withdrawal requests.
func (wc *WithdrawalController) GetWithdrawals(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawals, err := wc.Withdrawals.ByUser(ctx, userID)
	if err != nil {
		log.Printf("GetWithdrawals: user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}
