package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/model"
	"github.com/iliyamo/coach-call-booking/internal/repository"
)

// ProgramHandler serves the program catalog: the public per-partition
// listing plus admin CRUD and the move-up/move-down reordering.  A
// move swaps the ranks of exactly two neighbouring items inside one
// transaction, guarded by the rank values read just before – a
// concurrent reorder of either item aborts the whole swap so the
// strictly-increasing order of the partition is never corrupted.
type ProgramHandler struct {
	Programs *repository.ProgramRepo
}

// NewProgramHandler constructs a ProgramHandler.
func NewProgramHandler(programs *repository.ProgramRepo) *ProgramHandler {
	if programs == nil {
		panic("nil repository passed to NewProgramHandler")
	}
	return &ProgramHandler{Programs: programs}
}

// ListPrograms handles GET /v1/programs/:partition, returning the
// partition's items sorted ascending by rank.
func (h *ProgramHandler) ListPrograms(c echo.Context) error {
	partition := c.Param("partition")
	if !model.ValidPartition(partition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown partition"})
	}
	programs, err := h.Programs.ListByPartition(c.Request().Context(), partition)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load programs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": programs})
}

type programReq struct {
	Partition       string            `json:"partition"`
	Order           int               `json:"order"`
	Title           string            `json:"title"`
	Subtitle        string            `json:"subtitle"`
	Overview        string            `json:"overview"`
	Image           string            `json:"image"`
	Content         []string          `json:"content"`
	Outcomes        []string          `json:"outcomes"`
	Differences     []string          `json:"differences"`
	Format          []model.FormatRow `json:"format"`
	Audience        model.Audience    `json:"audience"`
	FullDescription string            `json:"full_description"`
}

// CreateProgram handles POST /v1/programs.  The rank is caller-supplied
// and must be free within the partition; a collision yields 409 rather
// than leaving two items fighting over one position.
func (h *ProgramHandler) CreateProgram(c echo.Context) error {
	var req programReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidPartition(req.Partition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown partition"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	program := &model.Program{
		Partition:       req.Partition,
		Order:           req.Order,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Overview:        req.Overview,
		Image:           req.Image,
		Content:         req.Content,
		Outcomes:        req.Outcomes,
		Differences:     req.Differences,
		Format:          req.Format,
		Audience:        req.Audience,
		FullDescription: req.FullDescription,
	}
	if err := h.Programs.Create(c.Request().Context(), program); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "order already taken in partition"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create program"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": program})
}

// UpdateProgram handles PUT /v1/programs/:id.  Content fields only;
// partition and rank never change through this endpoint.
func (h *ProgramHandler) UpdateProgram(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	var req programReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	program := model.Program{
		ID:              id,
		Title:           req.Title,
		Subtitle:        req.Subtitle,
		Overview:        req.Overview,
		Image:           req.Image,
		Content:         req.Content,
		Outcomes:        req.Outcomes,
		Differences:     req.Differences,
		Format:          req.Format,
		Audience:        req.Audience,
		FullDescription: req.FullDescription,
	}
	if err := h.Programs.Update(c.Request().Context(), program); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update program"})
	}
	updated, err := h.Programs.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reload program"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": updated})
}

// DeleteProgram handles DELETE /v1/programs/:id.  Ranks of the
// remaining items are left as they are; gaps are harmless because only
// relative order matters.
func (h *ProgramHandler) DeleteProgram(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	if err := h.Programs.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete program"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveProgram handles POST /v1/programs/:id/move with body
// {"direction": "up"|"down"} (an explicit "partition" is accepted but
// derived from the item when omitted).  The handler derives
// the partition's current order, locates the item, and swaps its rank
// with the neighbour in the requested direction.  Moving the first
// item up or the last item down is a no-op that returns the list
// unchanged.  A concurrent rank change on either item aborts the swap
// with 409; the caller should re-fetch and retry.
func (h *ProgramHandler) MoveProgram(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	var body struct {
		Partition string `json:"partition"`
		Direction string `json:"direction"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Direction != "up" && body.Direction != "down" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "direction must be up or down"})
	}

	ctx := c.Request().Context()
	if body.Partition == "" {
		// Partition omitted: derive it from the item itself.
		p, err := h.Programs.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load program"})
		}
		body.Partition = p.Partition
	} else if !model.ValidPartition(body.Partition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown partition"})
	}

	programs, err := h.Programs.ListByPartition(ctx, body.Partition)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load programs"})
	}
	idx := -1
	for i, p := range programs {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "program not found in partition"})
	}
	other := idx - 1
	if body.Direction == "down" {
		other = idx + 1
	}
	if other < 0 || other >= len(programs) {
		// Already at the boundary; every rank stays as it is.
		return c.JSON(http.StatusOK, echo.Map{"items": programs, "moved": false})
	}

	a, b := programs[idx], programs[other]
	tx, err := h.Programs.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Programs.SwapOrderTx(ctx, tx, body.Partition, a.ID, a.Order, b.ID, b.Order); err != nil {
		if errors.Is(err, repository.ErrOrderConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "order changed concurrently, re-fetch and retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reorder"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	programs, err = h.Programs.ListByPartition(ctx, body.Partition)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reload programs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": programs, "moved": true})
}
