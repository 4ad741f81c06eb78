package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/websocket"
)

// registerMainRoutes wires the public surface: health, auth and the
// WebSocket endpoint.
func registerMainRoutes(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Service is healthy",
		})
	})

	auth := e.Group("/api/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/login", d.Auth.Login)

	// Live wallet-credit and withdrawal events.
	ws := e.Group("/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, d.Hub, middleware.GetUserIDFromToken(c))
	})
}
