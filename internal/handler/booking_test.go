package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/middleware"
    "github.com/iliyamo/gourmet-table/internal/model"
    "github.com/iliyamo/gourmet-table/internal/service"
)

// serve runs h through a fresh echo instance with the production error
// handler, as user "7" unless user is empty.
func serve(h echo.HandlerFunc, method, path, body, user string, params ...string) *httptest.ResponseRecorder {
    e := echo.New()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if user != "" {
        c.Set("user_id", user)
    }
    if len(params) > 0 {
        names := make([]string, 0, len(params)/2)
        values := make([]string, 0, len(params)/2)
        for i := 0; i+1 < len(params); i += 2 {
            names = append(names, params[i])
            values = append(values, params[i+1])
        }
        c.SetParamNames(names...)
        c.SetParamValues(values...)
    }
    if err := h(c); err != nil {
        middleware.ErrorHandler(zerolog.Nop())(err, c)
    }
    return rec
}

func jsonBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var m map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
    return m
}

func TestOccupiedSeats(t *testing.T) {
    var gotDate string
    h := NewBookingHandler(&fakeBookings{occupiedFn: func(_ context.Context, date string) (model.Occupancy, error) {
        gotDate = date
        return model.Occupancy{ServiceDate: date, BookedSeats: []string{"A1", "A2"}, TotalBookings: 1}, nil
    }})

    rec := serve(h.OccupiedSeats, http.MethodGet, "/bookings/occupied-seats?date=2025-06-01", "", "")

    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "2025-06-01", gotDate)
    body := jsonBody(t, rec)
    assert.Equal(t, true, body["success"])
    assert.Equal(t, []any{"A1", "A2"}, body["bookedSeats"])
    assert.Equal(t, float64(1), body["totalBookings"])
}

func TestCreateBooking(t *testing.T) {
    const payload = `{"name":"Ada","email":"ada@example.com","phone":"555",
        "date":"2025-06-01","time":"19:00","note":"window","reservedSeats":["A1","A2"]}`

    t.Run("Created", func(t *testing.T) {
        var gotOwner uint64
        var gotIn service.CreateBookingInput
        h := NewBookingHandler(&fakeBookings{createFn: func(_ context.Context, owner uint64, in service.CreateBookingInput) (model.Booking, error) {
            gotOwner, gotIn = owner, in
            return model.Booking{ID: "b-1", OwnerID: owner, ReservedSeats: in.Seats, PartySize: len(in.Seats), Status: model.StatusPending}, nil
        }})

        rec := serve(h.Create, http.MethodPost, "/bookings", payload, "7")

        require.Equal(t, http.StatusCreated, rec.Code)
        assert.Equal(t, uint64(7), gotOwner)
        assert.Equal(t, []string{"A1", "A2"}, gotIn.Seats)
        assert.Equal(t, "Ada", gotIn.ContactName)
        assert.Equal(t, "ada@example.com", gotIn.ContactEmail)
        assert.Equal(t, "555", gotIn.ContactPhone)
        assert.Equal(t, "2025-06-01", gotIn.ServiceDate)
        assert.Equal(t, "19:00", gotIn.ServiceTime)
        assert.Equal(t, "window", gotIn.Note)
        booking := jsonBody(t, rec)["booking"].(map[string]any)
        assert.Equal(t, "b-1", booking["id"])
        assert.Equal(t, float64(2), booking["partySize"])
        assert.Equal(t, "Pending", booking["status"])
    })

    t.Run("ConflictIsBadRequest", func(t *testing.T) {
        h := NewBookingHandler(&fakeBookings{createFn: func(context.Context, uint64, service.CreateBookingInput) (model.Booking, error) {
            return model.Booking{}, apperr.Conflict("some seats are already booked").
                WithDetails(map[string]any{"seats": []string{"A2"}})
        }})

        rec := serve(h.Create, http.MethodPost, "/bookings", payload, "7")

        require.Equal(t, http.StatusBadRequest, rec.Code)
        body := jsonBody(t, rec)
        assert.Equal(t, false, body["success"])
        assert.Equal(t, "CONFLICT", body["code"])
        assert.Equal(t, "some seats are already booked", body["message"])
    })

    t.Run("ValidationPassesThrough", func(t *testing.T) {
        h := NewBookingHandler(&fakeBookings{createFn: func(context.Context, uint64, service.CreateBookingInput) (model.Booking, error) {
            return model.Booking{}, apperr.Validation("missing required fields: name")
        }})

        rec := serve(h.Create, http.MethodPost, "/bookings", `{}`, "7")

        assert.Equal(t, http.StatusBadRequest, rec.Code)
        assert.Equal(t, "VALIDATION_ERROR", jsonBody(t, rec)["code"])
    })

    t.Run("Unauthenticated", func(t *testing.T) {
        h := NewBookingHandler(&fakeBookings{})
        rec := serve(h.Create, http.MethodPost, "/bookings", payload, "")
        assert.Equal(t, http.StatusUnauthorized, rec.Code)
    })

    t.Run("MalformedBody", func(t *testing.T) {
        h := NewBookingHandler(&fakeBookings{})
        rec := serve(h.Create, http.MethodPost, "/bookings", `{"reservedSeats":`, "7")
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })
}

func TestMineAndListAll(t *testing.T) {
    fake := &fakeBookings{
        listForOwnerFn: func(_ context.Context, owner uint64) ([]model.Booking, error) {
            return []model.Booking{{ID: "b-2", OwnerID: owner}, {ID: "b-1", OwnerID: owner}}, nil
        },
        listAllFn: func(context.Context) ([]model.Booking, error) {
            return []model.Booking{{ID: "b-9", OwnerDisplayName: "Ada"}}, nil
        },
    }
    h := NewBookingHandler(fake)

    rec := serve(h.Mine, http.MethodGet, "/bookings/mine", "", "7")
    require.Equal(t, http.StatusOK, rec.Code)
    list := jsonBody(t, rec)["bookings"].([]any)
    require.Len(t, list, 2)
    assert.Equal(t, "b-2", list[0].(map[string]any)["id"])

    rec = serve(h.ListAll, http.MethodGet, "/bookings", "", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    all := jsonBody(t, rec)["bookings"].([]any)
    assert.Equal(t, "Ada", all[0].(map[string]any)["ownerDisplayName"])
}

func TestUpdateStatus(t *testing.T) {
    h := NewBookingHandler(&fakeBookings{updateStatusFn: func(_ context.Context, id, status string) (model.Booking, error) {
        if id != "b-1" {
            return model.Booking{}, apperr.NotFound("booking")
        }
        return model.Booking{ID: id, Status: model.BookingStatus(status)}, nil
    }})

    rec := serve(h.UpdateStatus, http.MethodPut, "/bookings/b-1/status", `{"status":"Cancelled"}`, "1", "id", "b-1")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Cancelled", jsonBody(t, rec)["booking"].(map[string]any)["status"])

    rec = serve(h.UpdateStatus, http.MethodPut, "/bookings/nope/status", `{"status":"Cancelled"}`, "1", "id", "nope")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "booking not found", jsonBody(t, rec)["message"])
}

func TestStats(t *testing.T) {
    h := NewBookingHandler(&fakeBookings{statsFn: func(context.Context) (model.BookingStats, error) {
        return model.BookingStats{TotalBookings: 4, PendingBookings: 2, TodayBookings: 1}, nil
    }})

    rec := serve(h.Stats, http.MethodGet, "/admin/bookings/stats", "", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    stats := jsonBody(t, rec)["stats"].(map[string]any)
    assert.Equal(t, float64(4), stats["totalBookings"])
    assert.Equal(t, float64(2), stats["pendingBookings"])
}

func TestGetUserID(t *testing.T) {
    e := echo.New()
    for _, v := range []any{uint64(5), 5, int64(5), float64(5), "5"} {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
        c.Set("user_id", v)
        id, err := getUserID(c)
        require.NoError(t, err)
        assert.Equal(t, uint64(5), id)
    }
    c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    c.Set("user_id", "abc")
    _, err := getUserID(c)
    assert.Error(t, err)
}
