// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published after a slot has been claimed and
// its booking committed.  It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type BookingCreatedEvent struct {
	BookingID uint64 `json:"booking_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CallType  string `json:"call_type"`
	CreatedAt string `json:"created_at"`
}
