package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-call-booking/internal/model"
)

func TestMonthlySlotCandidates_WeekdaysAndHoursOnly(t *testing.T) {
	// First instant of the month, so every weekday slot is future.
	now := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	out := MonthlySlotCandidates(now)
	require.NotEmpty(t, out)

	for _, s := range out {
		wd := s.StartsAt.Weekday()
		assert.NotEqual(t, time.Saturday, wd, "slot on %s", s.Date)
		assert.NotEqual(t, time.Sunday, wd, "slot on %s", s.Date)
		assert.GreaterOrEqual(t, s.StartsAt.Hour(), FirstHour)
		assert.Less(t, s.StartsAt.Hour(), LastHour)
		assert.True(t, s.StartsAt.After(now), "slot %s %s not in the future", s.Date, s.Time)
		assert.Equal(t, time.August, s.StartsAt.Month())
	}
}

func TestMonthlySlotCandidates_FullMonthCount(t *testing.T) {
	// From the first instant of the month every weekday slot qualifies.
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	out := MonthlySlotCandidates(now)

	// September 2026 has 22 weekdays; 8 hourly marks each.
	assert.Len(t, out, 22*(LastHour-FirstHour))

	// Chronological because the enumeration walks day then hour.
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].StartsAt.After(out[i-1].StartsAt))
	}
}

func TestMonthlySlotCandidates_DropsPastInstants(t *testing.T) {
	// Mid-month, mid-day: everything at or before now must be gone.
	now := time.Date(2026, time.September, 15, 13, 0, 0, 0, time.UTC)
	out := MonthlySlotCandidates(now)
	require.NotEmpty(t, out)

	for _, s := range out {
		assert.True(t, s.StartsAt.After(now))
	}
	// The 13:00 mark of the 15th itself is not strictly future.
	for _, s := range out {
		if s.Date == "2026-09-15" {
			assert.NotEqual(t, "13:00", s.Time)
		}
	}
}

func TestSlotRepoCreate_RejectsPast(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSlotRepo(db)
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	// Same instant as now: not strictly future.
	_, err = repo.Create(context.Background(), "2026-09-01", "12:00", now)
	assert.ErrorIs(t, err, ErrPastSlot)

	_, err = repo.Create(context.Background(), "2026-08-31", "10:00", now)
	assert.ErrorIs(t, err, ErrPastSlot)
}

func TestSlotRepoCreate_MapsDuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO timeslots").
		WillReturnError(errors.New("Error 1062: Duplicate entry '2099-01-15-10:00' for key 'uq_timeslots_pair'"))

	repo := NewSlotRepo(db)
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	_, err = repo.Create(context.Background(), "2099-01-15", "10:00", now)
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoCreate_ReturnsAssignedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO timeslots").
		WithArgs("2099-01-15", "10:00", "2099-01-15 10:00:00").
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := NewSlotRepo(db)
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	slot, err := repo.Create(context.Background(), "2099-01-15", "10:00", now)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), slot.ID)
	assert.Equal(t, "2099-01-15", slot.Date)
	assert.Equal(t, "10:00", slot.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoSweepExpired_ReturnsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM timeslots WHERE starts_at").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewSlotRepo(db)
	n, err := repo.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoClaimTx_WonAndLost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSlotRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timeslots WHERE slot_date").
		WithArgs("2099-01-15", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	claimed, err := repo.ClaimTx(ctx, tx, "2099-01-15", "10:00")
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NoError(t, tx.Commit())

	// Second claimant: the row is gone, zero rows affected.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timeslots WHERE slot_date").
		WithArgs("2099-01-15", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	claimed, err = repo.ClaimTx(ctx, tx, "2099-01-15", "10:00")
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoListByDate_ScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	starts := time.Date(2099, time.January, 15, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "slot_date", "slot_time", "starts_at"}).
		AddRow(1, "2099-01-15", "10:00", starts).
		AddRow(2, "2099-01-15", "11:00", starts.Add(time.Hour))
	mock.ExpectQuery("SELECT id, slot_date, slot_time, starts_at").
		WithArgs("2099-01-15").
		WillReturnRows(rows)

	repo := NewSlotRepo(db)
	slots, err := repo.ListByDate(context.Background(), "2099-01-15")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "10:00", slots[0].Time)
	assert.Equal(t, "11:00", slots[1].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoDeleteByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM timeslots WHERE id").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSlotRepo(db)
	err = repo.DeleteByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotInstant_ParsesUTC(t *testing.T) {
	got, err := model.SlotInstant("2099-01-15", "10:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2099, time.January, 15, 10, 0, 0, 0, time.UTC), got)

	_, err = model.SlotInstant("15/01/2099", "10:00")
	assert.Error(t, err)
	_, err = model.SlotInstant("2099-01-15", "10am")
	assert.Error(t, err)
}
