package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/coach-call-booking/internal/model"
)

// Business-hours window for generated slots: hourly marks from
// FirstHour up to but excluding LastHour, Monday through Friday.
const (
	FirstHour = 10
	LastHour  = 18
)

// SlotRepo provides data access to the timeslots table.  A slot row is
// identified by its (slot_date, slot_time) pair, which carries a unique
// key, and additionally stores the combined UTC instant in starts_at so
// that expiry comparisons and range scans can happen in SQL.  All
// timestamps are UTC – callers must not pass local times.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span the slot and booking repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// SweepExpired deletes every slot whose instant is at or before the
// current UTC time, regardless of date.  It is invoked opportunistically
// on every availability read; there is no background job.  The returned
// count is the number of rows removed.
func (r *SlotRepo) SweepExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM timeslots WHERE starts_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListByDate returns the live slots for one calendar date, sorted
// ascending by time of day.  The starts_at guard keeps same-day slots
// whose hour has already passed out of the result even when the sweep
// preceding this call failed.
func (r *SlotRepo) ListByDate(ctx context.Context, date string) ([]model.Slot, error) {
	const q = `SELECT id, slot_date, slot_time, starts_at
               FROM timeslots
               WHERE slot_date = ? AND starts_at > UTC_TIMESTAMP()
               ORDER BY slot_time ASC`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.Date, &s.Time, &s.StartsAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Create inserts a single slot.  It rejects instants that are not
// strictly in the future with ErrPastSlot before touching the database,
// and maps a unique-key violation on (slot_date, slot_time) to
// ErrDuplicateSlot.  On success the returned slot carries its assigned
// id.
func (r *SlotRepo) Create(ctx context.Context, date, clock string, now time.Time) (model.Slot, error) {
	startsAt, err := model.SlotInstant(date, clock)
	if err != nil {
		return model.Slot{}, err
	}
	if !startsAt.After(now) {
		return model.Slot{}, ErrPastSlot
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO timeslots (slot_date, slot_time, starts_at) VALUES (?, ?, ?)`,
		date, clock, startsAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Slot{}, ErrDuplicateSlot
		}
		return model.Slot{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Slot{}, err
	}
	return model.Slot{ID: uint64(id), Date: date, Time: clock, StartsAt: startsAt}, nil
}

// ExistingPairs returns the set of (date, time) pairs currently stored,
// keyed as "date" + "T" + "time".  The bulk generator consults it so
// that re-running generation never duplicates a pair that is already
// present, live or not.
func (r *SlotRepo) ExistingPairs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot_date, slot_time FROM timeslots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pairs := make(map[string]struct{})
	for rows.Next() {
		var date, clock string
		if err := rows.Scan(&date, &clock); err != nil {
			return nil, err
		}
		pairs[date+"T"+clock] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// MonthlySlotCandidates enumerates every weekday (Mon-Fri) of the
// calendar month containing now, crossed with every hourly mark in the
// business-hours window, and keeps the pairs whose instant lies
// strictly in the future.  Weekend dates are skipped entirely.  The
// result is sorted chronologically because the enumeration itself is.
func MonthlySlotCandidates(now time.Time) []model.Slot {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []model.Slot
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for hour := FirstHour; hour < LastHour; hour++ {
			startsAt := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
			if !startsAt.After(now) {
				continue
			}
			out = append(out, model.Slot{
				Date:     d.Format(model.DateLayout),
				Time:     startsAt.Format(model.TimeLayout),
				StartsAt: startsAt,
			})
		}
	}
	return out
}

// CreateBatch inserts the given slots inside a single transaction and
// returns them with their assigned ids.  Callers are expected to have
// filtered out pairs that already exist; a unique-key violation still
// aborts the whole batch with ErrDuplicateSlot rather than leaving a
// partial insert behind.
func (r *SlotRepo) CreateBatch(ctx context.Context, slots []model.Slot) ([]model.Slot, error) {
	if len(slots) == 0 {
		return []model.Slot{}, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	created := make([]model.Slot, 0, len(slots))
	for _, s := range slots {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO timeslots (slot_date, slot_time, starts_at) VALUES (?, ?, ?)`,
			s.Date, s.Time, s.StartsAt.Format("2006-01-02 15:04:05"))
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return nil, ErrDuplicateSlot
			}
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		s.ID = uint64(id)
		created = append(created, s)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return created, nil
}

// ClaimTx deletes the live slot at (date, time) within the provided
// transaction and reports whether a row was actually removed.  The
// starts_at guard means an expired slot can never be claimed even if
// it has not been swept yet.  A false return with nil error is the
// lost-the-race case: the slot was booked or removed by someone else.
func (r *SlotRepo) ClaimTx(ctx context.Context, tx *sql.Tx, date, clock string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM timeslots WHERE slot_date = ? AND slot_time = ? AND starts_at > UTC_TIMESTAMP()`,
		date, clock)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteByID removes a slot by id.  ErrNotFound is returned when no
// row matched.
func (r *SlotRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeslots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
