package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/repositories"
	"github.com/stackvest/stackvest_backend/services"
)

// AdminController groups the admin surface: the daily batch trigger,
// package and career-level management, and withdrawal decisions.
type AdminController struct {
	Daily       *services.DailyService
	Withdrawer  *services.WithdrawalService
	Withdrawals services.WithdrawalStore
	Packages    *repositories.PackageRepository
	Levels      *repositories.CareerRepository
}

func NewAdminController(daily *services.DailyService, withdrawer *services.WithdrawalService, withdrawals services.WithdrawalStore, packages *repositories.PackageRepository, levels *repositories.CareerRepository) *AdminController {
	return &AdminController{
		Daily:       daily,
		Withdrawer:  withdrawer,
		Withdrawals: withdrawals,
		Packages:    packages,
		Levels:      levels,
	}
}

// TriggerDailyCalculations runs the selected daily batches. Re-triggering
// for the same day reports alreadyRan instead of crediting twice.
func (ac *AdminController) TriggerDailyCalculations(c echo.Context) error {
	var req models.DailyCalculationsRequest
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

	// Batches iterate every eligible entity; give them more room than the
	// interactive endpoints.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summaries, err := ac.Daily.Trigger(ctx, req)
	if err != nil {
		log.Printf("TriggerDailyCalculations: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to run daily calculations",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Daily calculations completed",
		Data:    summaries,
	})
}

// GetAllPackages lists every package, active or not.
func (ac *AdminController) GetAllPackages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	packages, err := ac.Packages.AllPackages(ctx)
	if err != nil {
		log.Printf("GetAllPackages: %v", err)
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

// CreatePackage adds a new investment package.
func (ac *AdminController) CreatePackage(c echo.Context) error {
	var req models.PackageRequest
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

	status := req.Status
	if status == "" {
		status = models.PackageInActive
	}
	now := time.Now()
	pkg := models.Package{
		ID:                    primitive.NewObjectID(),
		Name:                  req.Name,
		MinAmount:             req.MinAmount,
		MaxAmount:             req.MaxAmount,
		DurationDays:          req.DurationDays,
		TotalOutputPct:        req.TotalOutputPct,
		RenewablePrinciplePct: req.RenewablePrinciplePct,
		ReferralPct:           req.ReferralPct,
		BinaryPct:             req.BinaryPct,
		PowerCapacity:         req.PowerCapacity,
		Status:                status,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.Packages.Insert(ctx, &pkg); err != nil {
		log.Printf("CreatePackage: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create package",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Package created successfully",
		Data:    pkg,
	})
}

// UpdatePackage updates an existing package definition. Running
// investments keep the rate they were created with.
func (ac *AdminController) UpdatePackage(c echo.Context) error {
	packageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid package ID",
		})
	}

	var req models.PackageRequest
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

	set := bson.M{
		"name":                  req.Name,
		"minAmount":             req.MinAmount,
		"maxAmount":             req.MaxAmount,
		"durationDays":          req.DurationDays,
		"totalOutputPct":        req.TotalOutputPct,
		"renewablePrinciplePct": req.RenewablePrinciplePct,
		"referralPct":           req.ReferralPct,
		"binaryPct":             req.BinaryPct,
		"powerCapacity":         req.PowerCapacity,
		"updatedAt":             time.Now(),
	}
	if req.Status != "" {
		set["status"] = req.Status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.Packages.Update(ctx, packageID, set); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("UpdatePackage: %s: %v", packageID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Package updated successfully",
	})
}

// GetCareerLevels lists all configured career levels.
func (ac *AdminController) GetCareerLevels(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	levels, err := ac.Levels.AllLevels(ctx)
	if err != nil {
		log.Printf("GetCareerLevels: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve career levels",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Career levels retrieved successfully",
		Data:    levels,
	})
}

// CreateCareerLevel adds a new career reward tier.
func (ac *AdminController) CreateCareerLevel(c echo.Context) error {
	var req models.CareerLevelRequest
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

	now := time.Now()
	level := models.CareerLevel{
		ID:                  primitive.NewObjectID(),
		Order:               req.Order,
		Name:                req.Name,
		InvestmentThreshold: req.InvestmentThreshold,
		RewardAmount:        req.RewardAmount,
		Status:              models.PackageActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.Levels.Insert(ctx, &level); err != nil {
		log.Printf("CreateCareerLevel: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create career level",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Career level created successfully",
		Data:    level,
	})
}

// GetPendingWithdrawals lists withdrawals awaiting a decision.
func (ac *AdminController) GetPendingWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawals, err := ac.Withdrawals.Pending(ctx)
	if err != nil {
		log.Printf("GetPendingWithdrawals: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}

// DecideWithdrawal approves or rejects a pending withdrawal. Approval
// captures the reserved funds; rejection releases them.
func (ac *AdminController) DecideWithdrawal(c echo.Context) error {
	adminID := middleware.GetUserIDFromToken(c)
	if adminID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID",
		})
	}

	var req models.WithdrawalDecision
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

	var withdrawal *models.Withdrawal
	if req.Status == models.WithdrawalApproved {
		withdrawal, err = ac.Withdrawer.Approve(ctx, withdrawalID, adminID, req.Note)
	} else {
		withdrawal, err = ac.Withdrawer.Reject(ctx, withdrawalID, adminID, req.Note)
	}
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("DecideWithdrawal: %s: %v", withdrawalID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal " + withdrawal.Status,
		Data:    withdrawal,
	})
}
