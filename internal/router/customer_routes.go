package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gourmet-table/internal/handler"
	"github.com/iliyamo/gourmet-table/internal/middleware"
)

// RegisterCustomer registers endpoints for signed-in diners.  All routes
// require a valid JWT with the CUSTOMER or ADMIN role.  idem guards the two
// submissions a client is likely to retry: creating a booking and merging
// the anonymous cart.
//
// The middleware is attached per route rather than on the group: a group
// with middleware also claims every unmatched path under its prefix, and
// the bare prefix is the whole server.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, c *handler.CartHandler, jwtSecret string, idem echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)
	role := middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin)

	for _, prefix := range APIPrefixes {
		g := e.Group(prefix)
		g.POST("/bookings", b.Create, auth, role, idem)
		g.GET("/bookings/mine", b.Mine, auth, role)

		g.GET("/cart", c.Get, auth, role)
		g.POST("/cart/items", c.AddItem, auth, role)
		g.PATCH("/cart/items/:productRef", c.SetQuantity, auth, role)
		g.DELETE("/cart/items/:productRef", c.RemoveItem, auth, role)
		g.POST("/cart/merge", c.Merge, auth, role, idem)
	}
}
