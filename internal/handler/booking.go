package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/model"
	"github.com/iliyamo/coach-call-booking/internal/notify"
	"github.com/iliyamo/coach-call-booking/internal/queue"
	"github.com/iliyamo/coach-call-booking/internal/repository"
	queue_publisher "github.com/iliyamo/coach-call-booking/internal/service"
)

// BookingHandler converts a live slot into a booking and serves the
// admin review endpoints.  The critical path runs in two stages: the
// notification relay must confirm the submission first, and only then
// are the slot claim and the booking insert committed together in one
// transaction.  If the relay fails nothing is written; if the slot is
// gone at commit time the transaction rolls back and the caller is
// told to pick another slot.
type BookingHandler struct {
	Slots        *repository.SlotRepo
	Bookings     *repository.BookingRepo
	Notifier     notify.Sender
	RelayTimeout time.Duration
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(slots *repository.SlotRepo, bookings *repository.BookingRepo, notifier notify.Sender, relayTimeout time.Duration) *BookingHandler {
	if slots == nil || bookings == nil || notifier == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	if relayTimeout <= 0 {
		relayTimeout = 10 * time.Second
	}
	return &BookingHandler{Slots: slots, Bookings: bookings, Notifier: notifier, RelayTimeout: relayTimeout}
}

type bookingReq struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	CallType string `json:"call_type"`
	Message  string `json:"message"`
}

// CreateBooking handles POST /v1/bookings.  Flow: validate input,
// confirm the submission with the relay under a bounded timeout, then
// claim the slot and insert the booking in one transaction.  At most
// one of two concurrent requests for the same (date, time) can claim
// the row; the loser rolls back and receives 409.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and phone are required"})
	}
	if req.CallType == "" {
		req.CallType = "Discovery Call"
	}
	startsAt, err := model.SlotInstant(req.Date, req.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and time HH:MM"})
	}
	if !startsAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "slot is in the past"})
	}

	// Stage one: the relay must confirm before anything is written.
	relayCtx, cancel := context.WithTimeout(c.Request().Context(), h.RelayTimeout)
	defer cancel()
	if err := h.Notifier.Send(relayCtx, map[string]string{
		"name":    req.Name,
		"email":   req.Email,
		"number":  req.Phone,
		"type":    req.CallType,
		"message": req.Message,
		"date":    req.Date,
		"time":    req.Time,
	}); err != nil {
		log.Printf("booking relay failed for %s %s: %v", req.Date, req.Time, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "notification failed, please retry"})
	}

	// Stage two: claim the slot and record the booking atomically.
	ctx := c.Request().Context()
	tx, err := h.Slots.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	claimed, err := h.Slots.ClaimTx(ctx, tx, req.Date, req.Time)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to claim slot"})
	}
	if !claimed {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrSlotGone.Error()})
	}
	booking := &model.Booking{
		Date:     req.Date,
		Time:     req.Time,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		CallType: req.CallType,
		Message:  req.Message,
	}
	if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best-effort event; a broker outage must not fail the booking.
	_ = queue_publisher.PublishBookingCreated(ctx, queue.BookingCreatedEvent{
		BookingID: booking.ID,
		Date:      booking.Date,
		Time:      booking.Time,
		Name:      booking.Name,
		Email:     booking.Email,
		CallType:  booking.CallType,
		CreatedAt: booking.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"item": booking})
}

// ListBookings handles GET /v1/bookings for admin review, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.Bookings.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}

// DeleteBooking handles DELETE /v1/bookings/:id, the explicit
// administrative removal of a booking record.
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Bookings.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete booking"})
	}
	return c.NoContent(http.StatusNoContent)
}
