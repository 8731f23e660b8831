package model

import "time"

// Booking records a completed slot reservation together with the
// requester's details.  It is created in the same transaction that
// deletes the source slot and is immutable afterwards; administrators
// may only review and delete bookings.
//
// Fields:
//  ID        – primary key identifier.
//  Date      – calendar date taken over from the booked slot.
//  Time      – time-of-day taken over from the booked slot.
//  Name      – requester's name.
//  Email     – requester's email address.
//  Phone     – requester's phone number.
//  CallType  – kind of call (e.g. "Discovery Call").
//  Message   – free-form message from the requester.
//  CreatedAt – when the booking was persisted.
type Booking struct {
	ID        uint64    `json:"id"`         // bookings.id
	Date      string    `json:"date"`       // bookings.slot_date
	Time      string    `json:"time"`       // bookings.slot_time
	Name      string    `json:"name"`       // bookings.name
	Email     string    `json:"email"`      // bookings.email
	Phone     string    `json:"phone"`      // bookings.phone
	CallType  string    `json:"call_type"`  // bookings.call_type
	Message   string    `json:"message"`    // bookings.message
	CreatedAt time.Time `json:"created_at"` // bookings.created_at
}
