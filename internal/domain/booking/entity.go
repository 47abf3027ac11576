package booking

import (
	"time"

	"github.com/reservaestilo/booking-api/internal/httperr"
)

// ServiceOffering es una fila del catálogo externo. Solo lectura:
// el motor de reservas nunca la modifica.
type ServiceOffering struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DurationMin int    `json:"duration_min"`
	TotalPrice  int    `json:"total_price"`
	Deposit     int    `json:"deposit"`
	Balance     int    `json:"balance"`
}

// BookingRequest son los datos que el cliente envía al reservar.
// Las claves JSON viajan dentro del external_reference de Mercado Pago,
// por lo que deben mantenerse estables entre versiones.
type BookingRequest struct {
	ClientName  string    `json:"cliente"`
	Email       string    `json:"email"`
	Phone       string    `json:"tel"`
	ServiceID   string    `json:"servicio_id"`
	ServiceName string    `json:"servicio"`
	Date        string    `json:"fecha"` // YYYY-MM-DD
	Time        string    `json:"hora"`  // HH:MM
	DurationMin int       `json:"duracion"`
	Deposit     int       `json:"abono"`
	TotalPrice  int       `json:"precio_total"`
	Balance     int       `json:"pendiente"`
	CreatedAt   time.Time `json:"creado"`
}

// Interval retorna el intervalo [inicio, fin) del turno solicitado.
func (r BookingRequest) Interval(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, loc)
	if err != nil {
		return time.Time{}, time.Time{}, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}
	return start, start.Add(time.Duration(r.DurationMin) * time.Minute), nil
}

// Hold es el bloqueo provisorio de un turno, materializado como un
// evento real en el calendario externo. EventID es la identidad del
// evento; el hold vive y muere con él.
type Hold struct {
	EventID   string
	Request   BookingRequest
	CreatedAt time.Time
	ExpiresAt time.Time
	State     HoldState
}

func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

func (h *Hold) SecondsRemaining(now time.Time) int {
	rem := int(h.ExpiresAt.Sub(now).Seconds())
	if rem < 0 {
		return 0
	}
	return rem
}
