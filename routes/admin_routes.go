package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/stackvest/stackvest_backend/middleware"
)

// registerAdminRoutes wires the admin surface under /api/admin.
func registerAdminRoutes(e *echo.Echo, d *Deps) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))

	admin.POST("/daily-calculations", d.Admin.TriggerDailyCalculations)

	admin.GET("/packages", d.Admin.GetAllPackages)
	admin.POST("/packages", d.Admin.CreatePackage)
	admin.PUT("/packages/:id", d.Admin.UpdatePackage)

	admin.GET("/career-levels", d.Admin.GetCareerLevels)
	admin.POST("/career-levels", d.Admin.CreateCareerLevel)

	admin.GET("/withdrawals/pending", d.Admin.GetPendingWithdrawals)
	admin.PUT("/withdrawals/:id/decision", d.Admin.DecideWithdrawal)
}
