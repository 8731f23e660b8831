package model

import "time"

// Layouts used for the date and time-of-day strings stored with every
// slot and booking.  All instants are interpreted in UTC.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Slot is a single bookable (date, time) unit for a call.  A slot is
// live while its instant lies strictly in the future; once the instant
// has passed the slot is expired and will be removed by the next sweep.
// Slots are never updated in place – they are created and then deleted,
// either by a booking, by the expiry sweep or by an administrator.
//
// Fields:
//  ID       – primary key identifier assigned on insert.
//  Date     – calendar date in "2006-01-02" form.
//  Time     – hourly mark in "15:04" form.
//  StartsAt – the combined UTC instant, used for expiry and ordering.
type Slot struct {
	ID       uint64    `json:"id"`        // timeslots.id
	Date     string    `json:"date"`      // timeslots.slot_date
	Time     string    `json:"time"`      // timeslots.slot_time
	StartsAt time.Time `json:"starts_at"` // timeslots.starts_at
}

// SlotInstant combines a date string and a time-of-day string into the
// UTC instant the slot starts at.  It returns an error when either
// component does not match the expected layout.
func SlotInstant(date, clock string) (time.Time, error) {
	return time.Parse(DateLayout+"T"+TimeLayout, date+"T"+clock)
}

// Expired reports whether the slot's instant is at or before now.
// A slot whose instant equals now is already unusable for a call and
// is therefore treated as expired.
func (s Slot) Expired(now time.Time) bool {
	return !s.StartsAt.After(now)
}
