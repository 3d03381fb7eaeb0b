package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gourmet-table/internal/database"
	"github.com/iliyamo/gourmet-table/internal/model"
)

// BookingRepo persists table bookings.  The bookings table is the record
// of every booking ever made; booking_seats mirrors the seats of the
// bookings that still hold them and is where double booking is refused.
type BookingRepo struct {
	db        *sql.DB
	forUpdate string
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, forUpdate: database.ForUpdate(db)}
}

// DB exposes the handle so services can open transactions spanning
// several repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `b.id, b.owner_id, b.contact_name, b.contact_email, b.contact_phone,
	b.service_date, b.service_time, b.reserved_seats, b.note, b.status, b.created_at, b.updated_at`

const seatSep = ","

func joinSeats(tokens []string) string { return strings.Join(tokens, seatSep) }

func splitSeats(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, seatSep)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner, extra ...any) (model.Booking, error) {
	var (
		b      model.Booking
		seats  string
		note   sql.NullString
		status string
	)
	dest := []any{&b.ID, &b.OwnerID, &b.ContactName, &b.ContactEmail, &b.ContactPhone,
		&b.ServiceDate, &b.ServiceTime, &seats, &note, &status, &b.CreatedAt, &b.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return b, err
	}
	b.ReservedSeats = splitSeats(seats)
	b.PartySize = len(b.ReservedSeats)
	b.Note = note.String
	b.Status = model.BookingStatus(status)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func collectBookings(rows *sql.Rows, withOwnerName bool) ([]model.Booking, error) {
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		var (
			b    model.Booking
			name sql.NullString
			err  error
		)
		if withOwnerName {
			b, err = scanBooking(rows, &name)
			b.OwnerDisplayName = name.String
		} else {
			b, err = scanBooking(rows)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Occupancy returns the seats held on date by bookings that are not
// cancelled, together with how many such bookings exist.  Seats are read
// from the bookings themselves so the two numbers always agree.
func (r *BookingRepo) Occupancy(ctx context.Context, date string) (seats []string, bookings int, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reserved_seats FROM bookings WHERE service_date = ? AND status <> ?`,
		date, string(model.StatusCancelled))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	seats = []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, 0, err
		}
		seats = append(seats, splitSeats(s)...)
		bookings++
	}
	return seats, bookings, rows.Err()
}

// TakenSeats returns which of tokens are already claimed on date.
func (r *BookingRepo) TakenSeats(ctx context.Context, date string, tokens []string) ([]string, error) {
	return takenSeats(ctx, r.db, date, tokens)
}

// TakenSeatsTx is TakenSeats inside tx.
func (r *BookingRepo) TakenSeatsTx(ctx context.Context, tx *sql.Tx, date string, tokens []string) ([]string, error) {
	return takenSeats(ctx, tx, date, tokens)
}

func takenSeats(ctx context.Context, q querier, date string, tokens []string) ([]string, error) {
	taken := []string{}
	if len(tokens) == 0 {
		return taken, nil
	}
	query := `SELECT seat_token FROM booking_seats WHERE service_date = ? AND seat_token IN (?` +
		strings.Repeat(",?", len(tokens)-1) + `) ORDER BY seat_token`
	args := make([]any, 0, len(tokens)+1)
	args = append(args, date)
	for _, t := range tokens {
		args = append(args, t)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		taken = append(taken, t)
	}
	return taken, rows.Err()
}

// CreateTx inserts b and claims its seats within tx.  ErrSeatTaken is
// returned when any seat is already claimed for the same date; the
// caller must then roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, owner_id, contact_name, contact_email, contact_phone,
		service_date, service_time, reserved_seats, note, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var note sql.NullString
	if b.Note != "" {
		note = sql.NullString{String: b.Note, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, q, b.ID, b.OwnerID, b.ContactName, b.ContactEmail, b.ContactPhone,
		b.ServiceDate, b.ServiceTime, joinSeats(b.ReservedSeats), note, string(b.Status),
		b.CreatedAt, b.UpdatedAt); err != nil {
		return err
	}
	b.PartySize = len(b.ReservedSeats)
	if !b.Status.HoldsSeats() {
		return nil
	}
	return r.ClaimSeatsTx(ctx, tx, b.ID, b.ServiceDate, b.ReservedSeats)
}

// ClaimSeatsTx inserts one booking_seats row per token in a single
// statement.  A duplicate key means another booking holds one of the
// seats and is reported as ErrSeatTaken.  So is a deadlock or lock wait
// timeout, which MySQL raises instead when two bookings insert
// overlapping seat rows at the same moment.
func (r *BookingRepo) ClaimSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, date string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (service_date, seat_token, booking_id) VALUES `
	args := make([]any, 0, len(tokens)*3)
	for i, t := range tokens {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, date, t, bookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) || database.IsLockContention(err) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// ReleaseSeatsTx drops every seat claim of the booking.
func (r *BookingRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, bookingID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = ?`, bookingID)
	return err
}

// GetByID fetches a booking.  ErrNotFound when the id is unknown.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	return getBooking(ctx, r.db, id, "")
}

// GetByIDTx fetches a booking within tx, locking the row on MySQL so a
// concurrent status change waits.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string, forUpdate bool) (model.Booking, error) {
	lock := ""
	if forUpdate {
		lock = r.forUpdate
	}
	return getBooking(ctx, tx, id, lock)
}

func getBooking(ctx context.Context, q querier, id, lock string) (model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?` + lock
	b, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

// UpdateStatusTx sets the status and updated_at of a booking.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id string, status model.BookingStatus, at time.Time) error {
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, string(status), at, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's bookings, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.owner_id = ? ORDER BY b.created_at DESC, b.id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows, false)
}

// ListAll returns every booking with its owner's display name, newest
// first.  Bookings whose owner is unknown carry an empty name.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.listWithOwner(ctx, 0)
}

func (r *BookingRepo) listWithOwner(ctx context.Context, limit int) ([]model.Booking, error) {
	query := `SELECT ` + bookingColumns + `, u.name FROM bookings b
		LEFT JOIN users u ON u.id = b.owner_id
		ORDER BY b.created_at DESC, b.id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows, true)
}

// Stats counts all bookings, the pending ones and those whose service
// date is the UTC calendar day of today, and returns the recent newest
// bookings.
func (r *BookingRepo) Stats(ctx context.Context, today time.Time, recent int) (model.BookingStats, error) {
	var st model.BookingStats
	day := today.UTC().Format("2006-01-02")
	err := r.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN service_date = ? THEN 1 ELSE 0 END), 0)
		FROM bookings`, string(model.StatusPending), day).
		Scan(&st.TotalBookings, &st.PendingBookings, &st.TodayBookings)
	if err != nil {
		return st, err
	}
	st.RecentBookings, err = r.listWithOwner(ctx, recent)
	return st, err
}
