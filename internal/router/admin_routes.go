package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gourmet-table/internal/handler"
	"github.com/iliyamo/gourmet-table/internal/middleware"
)

// RegisterAdmin registers the staff endpoints.  They require the ADMIN
// role.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	for _, prefix := range APIPrefixes {
		g := e.Group(prefix)
		g.GET("/bookings", b.ListAll, auth, admin)
		g.PUT("/bookings/:id/status", b.UpdateStatus, auth, admin)
		g.GET("/admin/bookings/stats", b.Stats, auth, admin)
	}
}
