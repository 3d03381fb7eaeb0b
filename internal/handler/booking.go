package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/model"
    "github.com/iliyamo/gourmet-table/internal/service"
)

// BookingService is what the booking handlers need from the service layer.
type BookingService interface {
    OccupiedSeats(ctx context.Context, date string) (model.Occupancy, error)
    Create(ctx context.Context, ownerID uint64, in service.CreateBookingInput) (model.Booking, error)
    ListForOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error)
    ListAll(ctx context.Context) ([]model.Booking, error)
    UpdateStatus(ctx context.Context, id, status string) (model.Booking, error)
    Stats(ctx context.Context) (model.BookingStats, error)
}

// BookingHandler serves the booking endpoints.  Identity comes from the
// JWT middleware; role checks happen in the router.
type BookingHandler struct {
    Bookings BookingService
}

// NewBookingHandler panics when svc is nil.
func NewBookingHandler(svc BookingService) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: svc}
}

// OccupiedSeats handles GET /bookings/occupied-seats?date=YYYY-MM-DD.
// It is public so the seat picker can grey out taken seats.
func (h *BookingHandler) OccupiedSeats(c echo.Context) error {
    occ, err := h.Bookings.OccupiedSeats(c.Request().Context(), c.QueryParam("date"))
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":       true,
        "serviceDate":   occ.ServiceDate,
        "bookedSeats":   occ.BookedSeats,
        "totalBookings": occ.TotalBookings,
    })
}

// Create handles POST /bookings.  A seat conflict answers 400 like any
// other rejected submission; the body carries code CONFLICT and the taken
// seats so the client knows to refetch the occupied seats.
func (h *BookingHandler) Create(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    var in service.CreateBookingInput
    if err := bind(c, &in); err != nil {
        return err
    }
    b, err := h.Bookings.Create(c.Request().Context(), ownerID, in)
    if err != nil {
        if apperr.Is(err, apperr.KindConflict) {
            return c.JSON(http.StatusBadRequest, apperr.As(err).Body())
        }
        return err
    }
    return c.JSON(http.StatusCreated, echo.Map{"success": true, "booking": b})
}

// Mine handles GET /bookings/mine, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    list, err := h.Bookings.ListForOwner(c.Request().Context(), ownerID)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": list})
}

// ListAll handles GET /bookings for admins.
func (h *BookingHandler) ListAll(c echo.Context) error {
    list, err := h.Bookings.ListAll(c.Request().Context())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": list})
}

type statusRequest struct {
    Status string `json:"status"`
}

// UpdateStatus handles PUT /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    var req statusRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    b, err := h.Bookings.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": b})
}

// Stats handles GET /admin/bookings/stats.
func (h *BookingHandler) Stats(c echo.Context) error {
    st, err := h.Bookings.Stats(c.Request().Context())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "stats": st})
}
