package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reservaestilo/booking-api/internal/httperr"
	infraRepo "github.com/reservaestilo/booking-api/internal/infra/repository"
	"github.com/reservaestilo/booking-api/internal/timezone"
)

type BookingsHandler struct {
	repo *infraRepo.BookingGormRepository
	tz   string
}

func NewBookingsHandler(repo *infraRepo.BookingGormRepository, tz string) *BookingsHandler {
	return &BookingsHandler{repo: repo, tz: tz}
}

// ListByDate lista las reservas confirmadas de un día (vista del
// operador, sin tocar el calendario externo).
func (h *BookingsHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Fecha obligatoria.")
		return
	}

	day, err := parseDate(dateStr, h.tz)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Fecha inválida.")
		return
	}

	bookings, err := h.repo.ListByDate(c.Request.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Error al listar reservas.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     dateStr,
		"bookings": bookings,
	})
}

func parseDate(dateStr, tz string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, timezone.Location(tz))
}
