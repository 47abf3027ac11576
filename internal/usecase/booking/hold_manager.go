package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/reservaestilo/booking-api/internal/clock"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

const confirmedColorID = "10" // verde "basil" en Google Calendar

// HoldManager crea, confirma y libera holds. Un hold es dueño de su
// evento de calendario durante toda su vida; no hay otro registro que
// mantener consistente, por eso un fallo al crear no deja huérfanos.
type HoldManager struct {
	calendar domain.CalendarGateway
	clock    clock.Clock
	ttl      time.Duration
	loc      *time.Location
}

func NewHoldManager(
	calendar domain.CalendarGateway,
	clk clock.Clock,
	ttl time.Duration,
	loc *time.Location,
) *HoldManager {
	return &HoldManager{
		calendar: calendar,
		clock:    clk,
		ttl:      ttl,
		loc:      loc,
	}
}

// Create inserta el evento provisorio que bloquea el turno. Seguro de
// llamar concurrentemente desde sesiones independientes: el calendario
// externo serializa las escrituras.
func (m *HoldManager) Create(ctx context.Context, req domain.BookingRequest) (*domain.Hold, error) {
	start, end, err := req.Interval(m.loc)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	eventID, err := m.calendar.InsertEvent(ctx, domain.EventInput{
		Summary: fmt.Sprintf("[PENDIENTE] %s - %s", req.ServiceName, req.ClientName),
		Description: fmt.Sprintf(
			"Reserva provisoria en espera de pago.\nCliente: %s\nTel: %s\nEmail: %s\nVence: %s",
			req.ClientName, req.Phone, req.Email,
			expiresAt.In(m.loc).Format("2006-01-02 15:04:05"),
		),
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeCalendarUnavailable)
	}

	return &domain.Hold{
		EventID:   eventID,
		Request:   req,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		State:     domain.InitialHoldState(),
	}, nil
}

// Confirm muta el evento provisorio, en su lugar, a reserva confirmada.
// Misma identidad de evento: no hay re-chequeo de solape posible ni
// necesario. Un fallo aquí NO es un fallo de pago: el cliente ya pagó,
// por eso se distingue como confirm_sync_failure para revisión manual.
func (m *HoldManager) Confirm(ctx context.Context, h *domain.Hold, paymentID string) error {
	if err := domain.CanConfirm(h, m.clock.Now()); err != nil {
		return err
	}

	err := m.calendar.PatchEvent(ctx, h.EventID, domain.EventPatch{
		Summary: fmt.Sprintf("%s - %s", h.Request.ServiceName, h.Request.ClientName),
		Description: fmt.Sprintf(
			"Reserva CONFIRMADA.\nCliente: %s\nTel: %s\nEmail: %s\nPago: %s\nAbono: $%d\nSaldo pendiente: $%d",
			h.Request.ClientName, h.Request.Phone, h.Request.Email,
			paymentID, h.Request.Deposit, h.Request.Balance,
		),
		ColorID: confirmedColorID,
	})
	if err != nil {
		return httperr.ErrBusiness(httperr.CodeConfirmSyncFailure)
	}

	h.State = domain.HoldConfirmed
	return nil
}

// Release borra el evento del hold. Idempotente: liberar dos veces
// termina en el mismo estado que liberar una.
func (m *HoldManager) Release(ctx context.Context, h *domain.Hold) error {
	if !domain.CanRelease(h) {
		return nil
	}

	if err := m.calendar.DeleteEvent(ctx, h.EventID); err != nil {
		return httperr.ErrBusiness(httperr.CodeCalendarUnavailable)
	}

	h.State = domain.HoldReleased
	return nil
}
