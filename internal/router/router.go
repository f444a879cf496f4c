// Package router wires the HTTP handlers and their middleware onto echo.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/handler"
	"github.com/iliyamo/safari-backoffice/internal/middleware"
	"github.com/iliyamo/safari-backoffice/internal/model"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health    echo.HandlerFunc
	Auth      *handler.AuthHandler
	Bookings  *handler.BookingHandler
	Payments  *handler.PaymentHandler
	Directory *handler.DirectoryHandler
	Documents *handler.DocumentHandler
}

// RegisterRoutes mounts the API under /api.  Auth endpoints are public;
// everything else requires an operator access token and passes through
// the rate limiter.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)

	g := api.Group("", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleOperator), limiter)
	g.GET("/me", h.Auth.Me)

	g.POST("/clients", h.Directory.CreateClient)
	g.GET("/clients", h.Directory.ListClients)
	g.POST("/hotels", h.Directory.CreateHotel)
	g.GET("/hotels", h.Directory.ListHotels)

	g.POST("/bookings", h.Bookings.Create)
	g.GET("/bookings", h.Bookings.List)
	g.GET("/bookings/invoice/:id", h.Documents.Invoice)
	g.GET("/bookings/voucher/:id", h.Documents.Voucher)
	g.GET("/bookings/:id", h.Bookings.Get)

	g.POST("/payments", h.Payments.Create)
}
