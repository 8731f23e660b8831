package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coach-call-booking/internal/model"
)

// BookingRepo provides data access to the bookings table.  A booking
// is written exactly once, in the same transaction that claims the
// slot it was made for, and is never updated afterwards.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the scope of an existing
// transaction and populates the generated id and created_at on the
// provided record.  The caller must commit or roll back the
// transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (slot_date, slot_time, name, email, phone, call_type, message)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.Date, b.Time, b.Name, b.Email, b.Phone, b.CallType, b.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to pick up the database-assigned timestamp.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// List returns all bookings ordered by creation time descending
// (newest first).  When no bookings exist an empty slice is returned.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT id, slot_date, slot_time, name, email, phone, call_type, message, created_at
               FROM bookings
               ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Date, &b.Time, &b.Name, &b.Email, &b.Phone,
			&b.CallType, &b.Message, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Delete removes a booking by id.  ErrNotFound is returned when no row
// matched.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
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
