package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stackvest/stackvest_backend/middleware"
)

// registerUserRoutes wires the authenticated user surface under /api.
func registerUserRoutes(e *echo.Echo, d *Deps) {
	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware())
	api.Use(middleware.RequireUserType("user", "admin"))

	api.POST("/auth/logout", d.Auth.Logout)
	api.GET("/me", d.Auth.Me)

	api.GET("/packages", d.Investment.GetPackages)
	api.POST("/investments", d.Investment.Invest)
	api.GET("/investments", d.Investment.GetInvestments)

	api.GET("/wallets", d.Wallet.GetWallets)
	api.GET("/transactions", d.Wallet.GetTransactions)
	api.POST("/exchange", d.Wallet.ExchangeWallet)

	api.POST("/vouchers", d.Voucher.CreateVoucher)
	api.GET("/vouchers", d.Voucher.GetVouchers)
	api.GET("/vouchers/:id/qr", d.Voucher.GetVoucherQR)

	api.POST("/withdrawals", d.Withdrawal.RequestWithdrawal)
	api.GET("/withdrawals", d.Withdrawal.GetWithdrawals)

	api.GET("/binary-tree", d.Tree.GetBinaryTree)

	api.GET("/notifications", d.Notification.GetNotifications)
	api.PUT("/notifications/:id/read", d.Notification.MarkNotificationRead)
}
