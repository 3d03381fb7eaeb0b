package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/gourmet-table/internal/handler" // import the handlers that implement business logic
)

// APIPrefixes are the path prefixes every API route is mounted under.  The
// bare paths are the public contract; /v1 serves the same handlers for
// clients that pin a version.
var APIPrefixes = []string{"", "/v1"}

// RegisterRoutes registers operational routes that sit outside the API:
// the health check used by load balancers and the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, metricsPath string) {
	e.GET("/healthz", handler.Health(db))
	if metricsPath != "" {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
}

// RegisterPublic registers unauthenticated endpoints.  Guests can see
// which seats are taken on a date and keep an anonymous cart, which the
// server prices and validates but never stores.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, c *handler.CartHandler) {
	for _, prefix := range APIPrefixes {
		g := e.Group(prefix)
		g.GET("/bookings/occupied-seats", b.OccupiedSeats)

		g.POST("/cart/guest/items", c.GuestAdd)
		g.PATCH("/cart/guest/items/:productRef", c.GuestSetQuantity)
		g.DELETE("/cart/guest/items/:productRef", c.GuestRemove)
		g.POST("/cart/guest/summary", c.GuestSummary)
	}
}
