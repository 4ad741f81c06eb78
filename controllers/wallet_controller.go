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

// WalletController exposes wallet balances, the transaction report and the
// exchange operation.
type WalletController struct {
	Ledger   services.LedgerStore
	Exchange *services.ExchangeService
}

func NewWalletController(ledger services.LedgerStore, exchange *services.ExchangeService) *WalletController {
	return &WalletController{Ledger: ledger, Exchange: exchange}
}

// GetWallets returns all wallets of the authenticated user.
func (wc *WalletController) GetWallets(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wallets, err := wc.Ledger.Wallets(ctx, userID)
	if err != nil {
		log.Printf("GetWallets: loading wallets for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve wallets",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallets retrieved successfully",
		Data:    wallets,
	})
}

// GetTransactions returns the user's ledger entries, newest first,
// optionally filtered by wallet type and date range.
func (wc *WalletController) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	filter := models.TransactionFilter{Limit: 100}
	if walletType := c.QueryParam("walletType"); walletType != "" {
		t := models.WalletType(walletType)
		if !t.Valid() {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown wallet type",
			})
		}
		filter.WalletType = t
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid from date, expected YYYY-MM-DD",
			})
		}
		filter.From = t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid to date, expected YYYY-MM-DD",
			})
		}
		filter.To = t.AddDate(0, 0, 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transactions, err := wc.Ledger.Transactions(ctx, userID, filter)
	if err != nil {
		log.Printf("GetTransactions: loading transactions for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data:    transactions,
	})
}

// ExchangeWallet moves funds from an earning wallet into the withdrawal
// wallet.
func (wc *WalletController) ExchangeWallet(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.ExchangeRequest
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

	result, err := wc.Exchange.Exchange(ctx, userID, models.WalletType(req.FromType), models.WalletType(req.ToType), req.Amount)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("ExchangeWallet: user %s: %v", userID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Exchange completed successfully",
		Data:    result,
	})
}
