package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/gourmet-table/internal/apperr"
	"github.com/iliyamo/gourmet-table/internal/floorplan"
	"github.com/iliyamo/gourmet-table/internal/metrics"
	"github.com/iliyamo/gourmet-table/internal/model"
	"github.com/iliyamo/gourmet-table/internal/queue"
	"github.com/iliyamo/gourmet-table/internal/repository"
	"github.com/iliyamo/gourmet-table/internal/validation"
)

const dateLayout = "2006-01-02"

// recentBookings is how many bookings the admin stats include.
const recentBookings = 3

// CreateBookingInput is the request to book seats.  Every contact field,
// the date, the time and at least one seat are required.
type CreateBookingInput struct {
	ContactName  string   `json:"name" validate:"notblank,max=120"`
	ContactEmail string   `json:"email" validate:"notblank,max=255"`
	ContactPhone string   `json:"phone" validate:"notblank,max=40"`
	ServiceDate  string   `json:"date" validate:"notblank"`
	ServiceTime  string   `json:"time" validate:"notblank,max=16"`
	Note         string   `json:"note" validate:"max=1000"`
	Seats        []string `json:"reservedSeats" validate:"required,min=1"`
}

func (in *CreateBookingInput) trim() {
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.ServiceDate = strings.TrimSpace(in.ServiceDate)
	in.ServiceTime = strings.TrimSpace(in.ServiceTime)
	in.Note = strings.TrimSpace(in.Note)
}

// BookingService allocates seats.  Its one guarantee: on any service date
// no seat belongs to two bookings that are not cancelled.  The check
// before writing gives a friendly answer; the booking_seats key enforces
// it when two requests race.
type BookingService struct {
	repo   *repository.BookingRepo
	plan   *floorplan.Plan
	events queue.Publisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewBookingService(repo *repository.BookingRepo, plan *floorplan.Plan, events queue.Publisher, log zerolog.Logger) *BookingService {
	if events == nil {
		events = queue.NoopPublisher{}
	}
	return &BookingService{
		repo:   repo,
		plan:   plan,
		events: events,
		log:    log.With().Str("component", "booking").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *BookingService) SetClock(now func() time.Time) { s.now = now }

func parseDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", apperr.Validation("date is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", apperr.Validationf("date %q must be formatted YYYY-MM-DD", date)
	}
	return date, nil
}

// OccupiedSeats lists the seats taken on date, in floor plan order, and
// how many bookings hold them.
func (s *BookingService) OccupiedSeats(ctx context.Context, date string) (model.Occupancy, error) {
	date, err := parseDate(date)
	if err != nil {
		return model.Occupancy{}, err
	}
	seats, n, err := s.repo.Occupancy(ctx, date)
	if err != nil {
		return model.Occupancy{}, apperr.Internal(err)
	}
	res := s.plan.Resolve(seats)
	booked := append(floorplan.Tokens(res.Seats), res.Invalid...)
	return model.Occupancy{ServiceDate: date, BookedSeats: booked, TotalBookings: n}, nil
}

// Create validates in and books its seats for owner.  Checks run in this
// order and stop at the first failure: required fields, seat tokens on
// the floor plan, seats still free.  Nothing is written on failure.
func (s *BookingService) Create(ctx context.Context, ownerID uint64, in CreateBookingInput) (model.Booking, error) {
	in.trim()
	if err := validation.Struct(in); err != nil {
		return model.Booking{}, err
	}
	date, err := parseDate(in.ServiceDate)
	if err != nil {
		return model.Booking{}, err
	}

	res := s.plan.Resolve(in.Seats)
	if len(res.Invalid) > 0 {
		return model.Booking{}, apperr.Validation("some seats do not exist").
			WithDetails(map[string]any{"invalidSeats": res.Invalid})
	}
	if len(res.Duplicates) > 0 {
		return model.Booking{}, apperr.Validation("a seat was requested more than once").
			WithDetails(map[string]any{"duplicateSeats": res.Duplicates})
	}
	tokens := floorplan.Tokens(res.Seats)

	now := s.now()
	b := model.Booking{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		ContactName:   in.ContactName,
		ContactEmail:  in.ContactEmail,
		ContactPhone:  in.ContactPhone,
		ServiceDate:   date,
		ServiceTime:   in.ServiceTime,
		PartySize:     len(tokens),
		ReservedSeats: tokens,
		Note:          in.Note,
		Status:        model.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := s.repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	taken, err := s.repo.TakenSeatsTx(ctx, tx, date, tokens)
	if err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	if len(taken) > 0 {
		metrics.IncBookingConflict("precheck")
		s.log.Info().Str("date", date).Strs("seats", taken).Uint64("owner_id", ownerID).Msg("seats already booked")
		return model.Booking{}, seatConflict(date, taken)
	}

	if err := s.repo.CreateTx(ctx, tx, &b); err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			_ = tx.Rollback()
			committed = true
			return model.Booking{}, s.lostRace(ctx, date, tokens, ownerID)
		}
		return model.Booking{}, apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	committed = true

	metrics.IncBookingCreated()
	s.log.Info().Str("booking_id", b.ID).Str("date", date).Strs("seats", tokens).Uint64("owner_id", ownerID).Msg("booking created")
	s.publish(b, queue.RoutingBookingCreated, "")
	return b, nil
}

// lostRace builds the conflict for a write refused by the seat key.  The
// transaction is already rolled back so the taken seats can be re-read.
func (s *BookingService) lostRace(ctx context.Context, date string, tokens []string, ownerID uint64) error {
	metrics.IncBookingConflict("commit")
	taken, err := s.repo.TakenSeats(ctx, date, tokens)
	if err != nil || len(taken) == 0 {
		// The winner may have been cancelled already; report every seat.
		taken = tokens
	}
	s.log.Warn().Str("date", date).Strs("seats", taken).Uint64("owner_id", ownerID).Msg("seat claim lost to concurrent booking")
	return seatConflict(date, taken)
}

func seatConflict(date string, seats []string) error {
	return apperr.Conflict("some seats are already booked for this date, please choose again").
		WithDetails(map[string]any{"serviceDate": date, "seats": seats})
}

// ListForOwner returns the owner's bookings, newest first.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error) {
	out, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// ListAll returns every booking with its owner's display name.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// UpdateStatus moves a booking to status.  Cancelling releases the seats;
// leaving Cancelled claims them again and fails with a conflict when
// someone else has booked one of them in the meantime.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (model.Booking, error) {
	next, ok := model.ParseBookingStatus(status)
	if !ok {
		return model.Booking{}, apperr.Validationf("status %q must be one of Pending, Approved, Cancelled", status)
	}

	tx, err := s.repo.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.repo.GetByIDTx(ctx, tx, id, true)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, apperr.NotFound("booking")
	}
	if err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	prev := b.Status
	if prev == next {
		return b, nil
	}

	switch {
	case prev.HoldsSeats() && !next.HoldsSeats():
		err = s.repo.ReleaseSeatsTx(ctx, tx, b.ID)
	case !prev.HoldsSeats() && next.HoldsSeats():
		err = s.repo.ClaimSeatsTx(ctx, tx, b.ID, b.ServiceDate, b.ReservedSeats)
		if errors.Is(err, repository.ErrSeatTaken) {
			_ = tx.Rollback()
			committed = true
			return model.Booking{}, s.lostRace(ctx, b.ServiceDate, b.ReservedSeats, b.OwnerID)
		}
	}
	if err != nil {
		return model.Booking{}, apperr.Internal(err)
	}

	now := s.now()
	if err := s.repo.UpdateStatusTx(ctx, tx, b.ID, next, now); err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, apperr.Internal(err)
	}
	committed = true

	b.Status = next
	b.UpdatedAt = now
	metrics.IncBookingStatus(string(next))
	s.log.Info().Str("booking_id", b.ID).Str("from", string(prev)).Str("to", string(next)).Msg("booking status changed")
	s.publish(b, queue.RoutingBookingStatusChanged, prev)
	return b, nil
}

// Stats summarises bookings for the admin dashboard.
func (s *BookingService) Stats(ctx context.Context) (model.BookingStats, error) {
	st, err := s.repo.Stats(ctx, s.now(), recentBookings)
	if err != nil {
		return st, apperr.Internal(err)
	}
	return st, nil
}

// publish sends the event in the background once the booking is
// committed.  A broker outage is logged and never fails the request.
func (s *BookingService) publish(b model.Booking, kind string, prev model.BookingStatus) {
	ev := queue.BookingEvent{
		Type:           kind,
		BookingID:      b.ID,
		OwnerID:        b.OwnerID,
		ContactName:    b.ContactName,
		ServiceDate:    b.ServiceDate,
		ServiceTime:    b.ServiceTime,
		Seats:          b.ReservedSeats,
		PartySize:      b.PartySize,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		OccurredAt:     s.now().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("booking_id", ev.BookingID).Str("event", kind).Msg("event not published")
		}
	}()
}
