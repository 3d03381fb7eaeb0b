package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gourmet-table/internal/database/dbtest"
	"github.com/iliyamo/gourmet-table/internal/model"
)

var base = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func newBooking(owner uint64, date string, at time.Time, seats ...string) *model.Booking {
	return &model.Booking{
		ID:            uuid.NewString(),
		OwnerID:       owner,
		ContactName:   "Ada",
		ContactEmail:  "ada@example.com",
		ContactPhone:  "555-0100",
		ServiceDate:   date,
		ServiceTime:   "19:00",
		ReservedSeats: seats,
		Status:        model.StatusPending,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func insertBooking(t *testing.T, repo *BookingRepo, b *model.Booking) error {
	t.Helper()
	ctx := context.Background()
	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	if err := repo.CreateTx(ctx, tx, b); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func cancelBooking(t *testing.T, repo *BookingRepo, id string) {
	t.Helper()
	ctx := context.Background()
	tx, err := repo.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusTx(ctx, tx, id, model.StatusCancelled, base))
	require.NoError(t, repo.ReleaseSeatsTx(ctx, tx, id))
	require.NoError(t, tx.Commit())
}

func TestBookingRepo_CreateAndOccupancy(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	b := newBooking(1, "2025-06-01", base, "A1", "A2")
	b.Note = "window please"
	require.NoError(t, insertBooking(t, repo, b))
	require.NoError(t, insertBooking(t, repo, newBooking(2, "2025-06-02", base, "A1")))

	seats, n, err := repo.Occupancy(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "A2"}, seats)
	assert.Equal(t, 1, n)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PartySize)
	assert.Equal(t, []string{"A1", "A2"}, got.ReservedSeats)
	assert.Equal(t, "window please", got.Note)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.True(t, base.Equal(got.CreatedAt))
}

func TestBookingRepo_SeatClaimIsExclusivePerDate(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	first := newBooking(1, "2025-06-01", base, "A1", "A2")
	require.NoError(t, insertBooking(t, repo, first))

	err := insertBooking(t, repo, newBooking(2, "2025-06-01", base, "A2", "A3"))
	assert.ErrorIs(t, err, ErrSeatTaken)

	// The failed booking left nothing behind.
	_, n, err := repo.Occupancy(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	taken, err := repo.TakenSeats(ctx, "2025-06-01", []string{"A2", "A3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, taken)

	cancelBooking(t, repo, first.ID)

	seats, n, err := repo.Occupancy(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Empty(t, seats)
	assert.Equal(t, 0, n)
	assert.NoError(t, insertBooking(t, repo, newBooking(2, "2025-06-01", base, "A2", "A3")))
}

func TestBookingRepo_GetByIDNotFound(t *testing.T) {
	repo := NewBookingRepo(dbtest.New(t))
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	tx, err := repo.DB().BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func(tx *sql.Tx) { _ = tx.Rollback() }(tx)
	err = repo.UpdateStatusTx(context.Background(), tx, "missing", model.StatusApproved, base)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_Listings(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	ada := dbtest.SeedUser(t, db, "Ada Lovelace", "ada@example.com")
	bob := dbtest.SeedUser(t, db, "Bob", "bob@example.com")

	older := newBooking(ada, "2025-06-01", base, "A1")
	newer := newBooking(ada, "2025-06-03", base.Add(time.Hour), "B1")
	other := newBooking(bob, "2025-06-01", base.Add(30*time.Minute), "C1")
	orphan := newBooking(999, "2025-06-01", base.Add(-time.Hour), "D1")
	for _, b := range []*model.Booking{older, newer, other, orphan} {
		require.NoError(t, insertBooking(t, repo, b))
	}

	mine, err := repo.ListByOwner(ctx, ada)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	none, err := repo.ListByOwner(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{newer.ID, other.ID, older.ID, orphan.ID},
		[]string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})
	assert.Equal(t, "Ada Lovelace", all[0].OwnerDisplayName)
	assert.Equal(t, "Bob", all[1].OwnerDisplayName)
	assert.Equal(t, "", all[3].OwnerDisplayName)
}

func TestBookingRepo_Stats(t *testing.T) {
	db := dbtest.New(t)
	repo := NewBookingRepo(db)
	ctx := context.Background()

	// Two bookings are served on 2025-05-20, one of them made the day before.
	yesterday := newBooking(1, "2025-05-20", base.Add(-24*time.Hour), "A1")
	todayA := newBooking(1, "2025-05-20", base, "A2")
	todayB := newBooking(2, "2025-06-02", base.Add(time.Minute), "A1")
	for _, b := range []*model.Booking{yesterday, todayA, todayB} {
		require.NoError(t, insertBooking(t, repo, b))
	}
	cancelBooking(t, repo, todayA.ID)

	st, err := repo.Stats(ctx, base.Add(3*time.Hour), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalBookings)
	assert.Equal(t, 2, st.PendingBookings)
	assert.Equal(t, 2, st.TodayBookings)
	require.Len(t, st.RecentBookings, 2)
	assert.Equal(t, todayB.ID, st.RecentBookings[0].ID)
}
