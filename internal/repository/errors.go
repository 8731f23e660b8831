// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSlotGone indicates that the slot a caller tried to book
// was claimed by someone else between listing and booking, while
// ErrOrderConflict signals that a reorder swap lost the race against a
// concurrent reorder and must be retried from fresh data.
package repository

import "errors"

// ErrNotFound is returned when a record addressed by id does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrPastSlot is returned when a caller attempts to create or book a
// slot whose instant is not strictly in the future. Nothing is
// written in that case. Handlers should translate this into an HTTP
// 422 response.
var ErrPastSlot = errors.New("slot is in the past")

// ErrDuplicateSlot is returned when creating a slot that collides with
// an existing (date, time) pair. Handlers should translate this into
// an HTTP 409 response.
var ErrDuplicateSlot = errors.New("slot already exists")

// ErrSlotGone is returned when the slot targeted by a booking no
// longer exists at commit time, typically because a concurrent caller
// booked it first. The caller should re-fetch availability and retry
// with a different slot. Handlers should translate this into an HTTP
// 409 response.
var ErrSlotGone = errors.New("slot no longer available")

// ErrOrderConflict is returned when a reorder swap detects that one of
// the two items' rank changed since it was read. The whole swap is
// aborted and no rank is written. Handlers should translate this into
// an HTTP 409 response.
var ErrOrderConflict = errors.New("order changed concurrently")

// ErrDuplicateOrder is returned when creating a program whose rank
// collides with an existing program in the same partition. Handlers
// should translate this into an HTTP 409 response.
var ErrDuplicateOrder = errors.New("order already taken in partition")
