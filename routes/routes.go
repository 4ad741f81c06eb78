package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stackvest/stackvest_backend/controllers"
	"github.com/stackvest/stackvest_backend/websocket"
)

// Deps carries the wired controllers into route registration.
type Deps struct {
	Auth         *controllers.AuthController
	Wallet       *controllers.WalletController
	Investment   *controllers.InvestmentController
	Voucher      *controllers.VoucherController
	Withdrawal   *controllers.WithdrawalController
	Tree         *controllers.TreeController
	Notification *controllers.NotificationController
	Admin        *controllers.AdminController
	Hub          *websocket.Hub
}

// RegisterRoutes wires the full HTTP surface onto the Echo instance.
func RegisterRoutes(e *echo.Echo, d *Deps) {
	registerMainRoutes(e, d)
	registerUserRoutes(e, d)
	registerAdminRoutes(e, d)
}
