package reservation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nightfury12901/restaurant-temp/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetBookingWindow(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Window())
}

func (h *Handler) GetAvailability(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required",
			map[string]string{"date": "Please select a date"})
		return
	}

	out, err := h.service.Availability(c.Request.Context(), date)
	if err != nil {
		h.writeError(c, err, "Failed to load availability")
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	r, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to create reservation")
		return
	}
	response.Success(c, http.StatusCreated, r)
}

func (h *Handler) GetReservation(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to load reservation")
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) ListReservations(c *gin.Context) {
	f := ListFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Date:   strings.TrimSpace(c.Query("date")),
	}
	items, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err, "Failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"reservations": items,
		"count":        len(items),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to load stats")
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	r, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err, "Failed to update reservation")
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) DeleteReservation(c *gin.Context) {
	remaining, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to delete reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": remaining})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	if verr, ok := asValidation(err); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation details", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "This time slot is fully booked")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "A cancelled reservation cannot be reopened")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be pending, confirmed or cancelled")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	if verr := bindError(err); verr != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", verr.Fields)
		return
	}
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
}
