package booking

import (
	"context"
	"time"

	"github.com/reservaestilo/booking-api/internal/clock"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

// Catalog es lo mínimo que el motor necesita del catálogo externo.
type Catalog interface {
	List(ctx context.Context) ([]domain.ServiceOffering, error)
	ByID(ctx context.Context, id string) (domain.ServiceOffering, error)
}

type AvailabilityInput struct {
	ServiceID string
	Date      string // YYYY-MM-DD
}

type GetAvailability struct {
	calendar    domain.CalendarGateway
	catalog     Catalog
	clock       clock.Clock
	loc         *time.Location
	window      domain.Window
	horizonDays int
}

func NewGetAvailability(
	calendar domain.CalendarGateway,
	catalog Catalog,
	clk clock.Clock,
	loc *time.Location,
	window domain.Window,
	horizonDays int,
) *GetAvailability {
	return &GetAvailability{
		calendar:    calendar,
		catalog:     catalog,
		clock:       clk,
		loc:         loc,
		window:      window,
		horizonDays: horizonDays,
	}
}

// Execute calcula los inicios libres del día pedido. Siempre consulta el
// calendario fresco: los holds pendientes son eventos reales, así que
// bloquean turnos para cualquier otro cliente sin lock local alguno.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]string, error) {

	service, err := uc.catalog.ByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, uc.loc)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	now := uc.clock.Now().In(uc.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)

	if day.Before(today) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}
	if uc.horizonDays > 0 && day.After(today.AddDate(0, 0, uc.horizonDays)) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}

	busy, err := uc.calendar.ListBusy(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeCalendarUnavailable)
	}

	slots := domain.FreeSlots(domain.FreeSlotsInput{
		Day:         day,
		DurationMin: service.DurationMin,
		Busy:        busy,
		Now:         now,
		Window:      uc.window,
	})

	// lista vacía = sin disponibilidad, no es un error
	return slots, nil
}
