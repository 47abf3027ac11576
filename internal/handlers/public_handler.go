package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
	"github.com/reservaestilo/booking-api/internal/notify"
	"github.com/reservaestilo/booking-api/internal/session"
	ucbooking "github.com/reservaestilo/booking-api/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	catalog      ucbooking.Catalog
	availability *ucbooking.GetAvailability
	sessions     *session.Registry
	whatsappLink string
}

func NewPublicHandler(
	catalog ucbooking.Catalog,
	availability *ucbooking.GetAvailability,
	sessions *session.Registry,
	whatsappLink string,
) *PublicHandler {
	return &PublicHandler{
		catalog:      catalog,
		availability: availability,
		sessions:     sessions,
		whatsappLink: whatsappLink,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

type BookRequest struct {
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"required"` // HH:MM
	ClientName string `json:"client_name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

////////////////////////////////////////////////////////
// CATÁLOGO
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		httperr.BadGateway(c, "catalog_unavailable", "No se pudo cargar el catálogo de servicios.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

////////////////////////////////////////////////////////
// DISPONIBILIDAD
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	dateStr := c.Query("date")
	serviceID := c.Query("service_id")

	if dateStr == "" || serviceID == "" {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Fecha y servicio son obligatorios.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), ucbooking.AvailabilityInput{
		ServiceID: serviceID,
		Date:      dateStr,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// SESIONES
////////////////////////////////////////////////////////

func (h *PublicHandler) StartSession(c *gin.Context) {
	m := h.sessions.Create()
	c.JSON(http.StatusCreated, m.Snapshot())
}

func (h *PublicHandler) SelectService(c *gin.Context) {
	m, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, httperr.CodeSessionNotFound, "Sesión no encontrada.")
		return
	}

	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Datos inválidos.")
		return
	}

	service, err := h.catalog.ByID(c.Request.Context(), req.ServiceID)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	if err := m.SelectService(service); err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, m.Snapshot())
}

func (h *PublicHandler) Book(c *gin.Context) {
	m, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, httperr.CodeSessionNotFound, "Sesión no encontrada.")
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Datos inválidos.")
		return
	}

	snap := m.Snapshot()
	if snap.Service == nil {
		httperr.Conflict(c, httperr.CodeInvalidState, "Primero hay que elegir un servicio.")
		return
	}

	// Re-chequeo contra el calendario fresco: si otro cliente tomó el
	// turno durante la selección, acá se corta.
	slots, err := h.availability.Execute(c.Request.Context(), ucbooking.AvailabilityInput{
		ServiceID: snap.Service.ID,
		Date:      req.Date,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}
	if !containsSlot(slots, req.Time) {
		httperr.Conflict(c, httperr.CodeSlotTaken, "Ese horario ya no está disponible. Elige otro.")
		return
	}

	redirectURL, err := m.Book(c.Request.Context(), session.BookInput{
		Date:       req.Date,
		Time:       req.Time,
		ClientName: req.ClientName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"redirect_url": redirectURL,
		"session":      m.Snapshot(),
	})
}

func (h *PublicHandler) SessionState(c *gin.Context) {
	m, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, httperr.CodeSessionNotFound, "Sesión no encontrada.")
		return
	}

	c.JSON(http.StatusOK, m.Snapshot())
}

func (h *PublicHandler) CancelSession(c *gin.Context) {
	m, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, httperr.CodeSessionNotFound, "Sesión no encontrada.")
		return
	}

	if err := m.Cancel(c.Request.Context()); err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, m.Snapshot())
}

////////////////////////////////////////////////////////
// RETORNO DEL PAGO
////////////////////////////////////////////////////////

// PaymentReturn atiende la redirección de vuelta desde Mercado Pago.
// Cualquier status que no sea literalmente "approved" (ausente, "null",
// "failure", "rejected", "pending"...) se trata como no-aprobado. El
// flag aprobado es solo un atajo: dispara una conciliación inmediata,
// la consulta directa al gateway sigue siendo la autoridad.
func (h *PublicHandler) PaymentReturn(c *gin.Context) {
	status := c.Query("status")
	token := c.Query("external_reference")

	if token == "" {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Falta la referencia de pago.")
		return
	}

	ref, err := domain.DecodeReference(token)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Referencia de pago inválida.")
		return
	}

	m, found := h.sessions.FindByEvent(ref.EventID)
	if found {
		if status == "approved" {
			m.Nudge(c.Request.Context())
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  normalizeStatus(status),
			"session": m.Snapshot(),
		})
		return
	}

	// La sesión ya no vive en este proceso. Los datos del cliente se
	// recuperan igual desde la referencia: nada se pierde.
	c.JSON(http.StatusOK, gin.H{
		"status":  normalizeStatus(status),
		"request": ref.Request,
		"message": returnMessage(status),
	})
}

func normalizeStatus(status string) string {
	if status == "approved" {
		return "approved"
	}
	return "not_approved"
}

func returnMessage(status string) string {
	if status == "approved" {
		return "El pago fue aprobado. Revisa tu correo para los detalles de la reserva."
	}
	return "Volviste sin completar el pago. No se realizó ningún cobro."
}

////////////////////////////////////////////////////////
// WHATSAPP
////////////////////////////////////////////////////////

func (h *PublicHandler) WhatsAppLink(c *gin.Context) {
	serviceName := ""
	if id := c.Query("service_id"); id != "" {
		if service, err := h.catalog.ByID(c.Request.Context(), id); err == nil {
			serviceName = service.Name
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"link": notify.WhatsAppLink(h.whatsappLink, serviceName),
	})
}

////////////////////////////////////////////////////////
// HELPERS
////////////////////////////////////////////////////////

func containsSlot(slots []string, t string) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

func mapBookingError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, httperr.CodeInvalidRequest):
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Datos inválidos.")
	case httperr.IsBusiness(err, httperr.CodeServiceNotFound):
		httperr.BadRequest(c, httperr.CodeServiceNotFound, "Servicio inválido.")
	case httperr.IsBusiness(err, httperr.CodeInvalidState):
		httperr.Conflict(c, httperr.CodeInvalidState, "La sesión no admite esa acción.")
	case httperr.IsBusiness(err, httperr.CodeSlotTaken):
		httperr.Conflict(c, httperr.CodeSlotTaken, "Ese horario ya no está disponible.")
	case httperr.IsBusiness(err, httperr.CodeCalendarUnavailable):
		httperr.BadGateway(c, httperr.CodeCalendarUnavailable, "El calendario no respondió. Intenta de nuevo.")
	case httperr.IsBusiness(err, httperr.CodePaymentGatewayError):
		httperr.BadGateway(c, httperr.CodePaymentGatewayError, "No se pudo generar el link de pago. El turno fue liberado.")
	case httperr.IsBusiness(err, httperr.CodeHoldExpired):
		httperr.Conflict(c, httperr.CodeHoldExpired, "La reserva provisoria venció. Vuelve a elegir un horario.")
	default:
		httperr.Internal(c, "booking_failed", "Error al procesar la reserva.")
	}
}
