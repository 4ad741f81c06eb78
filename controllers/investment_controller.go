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
	"github.com/stackvest/stackvest_backend/repositories"
	"github.com/stackvest/stackvest_backend/services"
)

// InvestmentController exposes package listing and the invest operation.
type InvestmentController struct {
	Packages    *repositories.PackageRepository
	Investments services.InvestmentStore
	Investor    *services.InvestmentService
}

func NewInvestmentController(packages *repositories.PackageRepository, investments services.InvestmentStore, investor *services.InvestmentService) *InvestmentController {
	return &InvestmentController{Packages: packages, Investments: investments, Investor: investor}
}

// GetPackages lists the packages currently open for investment.
func (ic *InvestmentController) GetPackages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	packages, err := ic.Packages.ActivePackages(ctx)
	if err != nil {
		log.Printf("GetPackages: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve packages",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Packages retrieved successfully",
		Data:    packages,
	})
}

// Invest creates an investment from a confirmed payment, optionally partly
// or fully covered by a voucher.
func (ic *InvestmentController) Invest(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.InvestmentRequest
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

	packageID, err := primitive.ObjectIDFromHex(req.PackageID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid package ID",
		})
	}
	var voucherID *primitive.ObjectID
	if req.VoucherID != "" {
		id, err := primitive.ObjectIDFromHex(req.VoucherID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid voucher ID",
			})
		}
		voucherID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ic.Investor.Invest(ctx, userID, packageID, req.Amount, voucherID)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Invest: user %s package %s: %v", userID.Hex(), req.PackageID, err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Investment created successfully",
		Data:    result,
	})
}

// GetInvestments lists the authenticated user's investments.
func (ic *InvestmentController) GetInvestments(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	investments, err := ic.Investments.ByUser(ctx, userID)
	if err != nil {
		log.Printf("GetInvestments: user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve investments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Investments retrieved successfully",
		Data:    investments,
	})
}
