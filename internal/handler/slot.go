package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/model"
	"github.com/iliyamo/coach-call-booking/internal/repository"
)

// SlotHandler serves the call-slot inventory: the public availability
// listing and the admin-only add, bulk-generate and delete operations.
// Expired slots are swept as a side effect of every availability read;
// there is no background cleanup job.
type SlotHandler struct {
	Slots *repository.SlotRepo
	now   func() time.Time
}

// NewSlotHandler constructs a SlotHandler with the provided repository.
func NewSlotHandler(slots *repository.SlotRepo) *SlotHandler {
	if slots == nil {
		panic("nil repository passed to NewSlotHandler")
	}
	return &SlotHandler{
		Slots: slots,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListSlots handles GET /v1/slots?date=YYYY-MM-DD.  It first sweeps
// every expired slot, whatever its date; the sweep is best-effort and a
// failure there is logged without affecting the listing.  The response
// contains the live slots of the requested date sorted ascending by
// time of day.
func (h *SlotHandler) ListSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing date"})
	}
	ctx := c.Request().Context()
	if _, err := h.Slots.SweepExpired(ctx); err != nil {
		// Expired rows are filtered out of the listing query anyway,
		// so the read stays correct even when the sweep fails.
		log.Printf("slot sweep failed: %v", err)
	}
	slots, err := h.Slots.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slots"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// AddSlot handles POST /v1/slots.  The body carries {date, time}.  A
// slot whose instant is not strictly in the future is rejected with
// 422, and a (date, time) collision with an existing slot yields 409.
func (h *SlotHandler) AddSlot(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := model.SlotInstant(body.Date, body.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and time HH:MM"})
	}
	slot, err := h.Slots.Create(c.Request().Context(), body.Date, body.Time, h.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPastSlot):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "cannot add a past time slot"})
		case errors.Is(err, repository.ErrDuplicateSlot):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create slot"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": slot})
}

// GenerateMonthlySlots handles POST /v1/slots/generate.  It enumerates
// every weekday of the current calendar month crossed with the
// business-hours marks, drops past instants and pairs that already
// exist, and inserts the remainder.  Re-running it without bookings in
// between creates nothing.
func (h *SlotHandler) GenerateMonthlySlots(c echo.Context) error {
	ctx := c.Request().Context()
	existing, err := h.Slots.ExistingPairs(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load existing slots"})
	}
	candidates := repository.MonthlySlotCandidates(h.now())
	fresh := make([]model.Slot, 0, len(candidates))
	for _, s := range candidates {
		if _, ok := existing[s.Date+"T"+s.Time]; ok {
			continue
		}
		fresh = append(fresh, s)
	}
	created, err := h.Slots.CreateBatch(ctx, fresh)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create slots"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"created": len(created),
		"items":   created,
	})
}

// DeleteSlot handles DELETE /v1/slots/:id, the admin's manual removal
// of a single slot.
func (h *SlotHandler) DeleteSlot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if err := h.Slots.DeleteByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete slot"})
	}
	return c.NoContent(http.StatusNoContent)
}
