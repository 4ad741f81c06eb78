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
	"github.com/stackvest/stackvest_backend/utils"
)

// VoucherController exposes voucher purchase, listing and the QR image.
type VoucherController struct {
	Vouchers services.VoucherStore
	Service  *services.VoucherService
}

func NewVoucherController(vouchers services.VoucherStore, service *services.VoucherService) *VoucherController {
	return &VoucherController{Vouchers: vouchers, Service: service}
}

// CreateVoucher purchases a voucher from a wallet balance.
func (vc *VoucherController) CreateVoucher(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	var req models.VoucherRequest
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

	voucher, err := vc.Service.Create(ctx, userID, models.WalletType(req.FromWallet), req.Amount)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("CreateVoucher: user %s: %v", userID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Voucher created successfully",
		Data:    voucher,
	})
}

// GetVouchers lists the authenticated user's vouchers.
func (vc *VoucherController) GetVouchers(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vouchers, err := vc.Vouchers.ByUser(ctx, userID)
	if err != nil {
		log.Printf("GetVouchers: user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve vouchers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Vouchers retrieved successfully",
		Data:    vouchers,
	})
}

// GetVoucherQR returns the voucher code rendered as a PNG QR image.
func (vc *VoucherController) GetVoucherQR(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	voucherID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid voucher ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	voucher, err := vc.Vouchers.Voucher(ctx, voucherID)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			log.Printf("GetVoucherQR: loading voucher %s: %v", voucherID.Hex(), err)
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}
	if voucher == nil || voucher.UserID != userID {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Voucher not found",
		})
	}

	png, err := utils.GenerateQRCode(voucher.Code, 256)
	if err != nil {
		log.Printf("GetVoucherQR: rendering QR for %s: %v", voucherID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
