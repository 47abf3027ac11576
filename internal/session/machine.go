package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/reservaestilo/booking-api/internal/alerts"
	"github.com/reservaestilo/booking-api/internal/clock"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
	"github.com/reservaestilo/booking-api/internal/models"
	"github.com/reservaestilo/booking-api/internal/notify"
	ucbooking "github.com/reservaestilo/booking-api/internal/usecase/booking"
	"github.com/reservaestilo/booking-api/internal/validators"
)

// ===============================
// Estados por sesión
// ===============================

type State string

const (
	StateIdle              State = "idle"
	StateSelecting         State = "selecting"
	StateHoldPending       State = "hold_pending"
	StateAwaitingPayment   State = "awaiting_payment"
	StateConfirming        State = "confirming"
	StateConfirmed         State = "confirmed"          // terminal
	StateConfirmedUnsynced State = "confirmed_unsynced" // terminal, requiere operador
	StateExpired           State = "expired"            // terminal por intento
)

// AlertSink recibe las anomalías que requieren seguimiento manual.
type AlertSink interface {
	Dispatch(ev alerts.Event)
}

// BookingRecorder persiste el registro local de reservas confirmadas.
type BookingRecorder interface {
	SaveConfirmed(ctx context.Context, b *models.Booking) error
}

type Deps struct {
	Holds        *ucbooking.HoldManager
	Payments     domain.PaymentGateway
	Bookings     BookingRecorder
	Alerts       AlertSink
	Notifier     notify.Notifier
	Clock        clock.Clock
	Loc          *time.Location
	PollInterval time.Duration
}

// Machine es la máquina de estados de UNA sesión de cliente. Cada sesión
// es un valor propio: no existe estado de reserva global en el proceso.
// El único recurso compartido entre sesiones es el calendario externo.
type Machine struct {
	id     string
	deps   Deps
	poller *Poller

	mu          sync.Mutex
	state       State
	service     *domain.ServiceOffering
	hold        *domain.Hold
	reference   string
	redirectURL string
	paymentID   string
	stopPoll    context.CancelFunc
	touched     time.Time
}

func newMachine(id string, deps Deps) *Machine {
	return &Machine{
		id:   id,
		deps: deps,
		poller: &Poller{
			payments: deps.Payments,
			clock:    deps.Clock,
			interval: deps.PollInterval,
		},
		state:   StateIdle,
		touched: deps.Clock.Now(),
	}
}

func (m *Machine) ID() string { return m.id }

// SelectService mueve la sesión a Selecting. Permitido desde Idle,
// Selecting y Expired (reintento tras vencimiento).
func (m *Machine) SelectService(service domain.ServiceOffering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchLocked()

	switch m.state {
	case StateIdle, StateSelecting, StateExpired:
		svc := service
		m.service = &svc
		m.hold = nil
		m.reference = ""
		m.redirectURL = ""
		m.paymentID = ""
		m.state = StateSelecting
		return nil
	default:
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
}

type BookInput struct {
	Date       string
	Time       string
	ClientName string
	Email      string
	Phone      string
}

// Book recorre Selecting → HoldPending → AwaitingPayment: crea el hold
// (evento provisorio en el calendario), luego la preferencia de pago, y
// recién entonces arranca el poller de conciliación. El orden importa:
// el hold debe existir y ser visible antes de emitir la referencia.
func (m *Machine) Book(ctx context.Context, in BookInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchLocked()

	if m.state != StateSelecting || m.service == nil {
		return "", httperr.ErrBusiness(httperr.CodeInvalidState)
	}

	if err := validateContact(in); err != nil {
		return "", err
	}

	req := domain.BookingRequest{
		ClientName:  strings.TrimSpace(in.ClientName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		ServiceID:   m.service.ID,
		ServiceName: m.service.Name,
		Date:        in.Date,
		Time:        in.Time,
		DurationMin: m.service.DurationMin,
		Deposit:     m.service.Deposit,
		TotalPrice:  m.service.TotalPrice,
		Balance:     m.service.Balance,
		CreatedAt:   m.deps.Clock.Now(),
	}

	hold, err := m.deps.Holds.Create(ctx, req)
	if err != nil {
		// holdCreateFailed: la sesión vuelve a Selecting con el error a la vista
		return "", err
	}
	m.hold = hold
	m.state = StateHoldPending

	reference, err := domain.PaymentReference{Request: req, EventID: hold.EventID}.Encode()
	if err != nil {
		m.releaseLocked(ctx)
		m.state = StateSelecting
		return "", httperr.ErrBusiness(httperr.CodePaymentGatewayError)
	}

	pref, err := m.deps.Payments.CreatePreference(ctx, domain.PreferenceInput{
		Title:             fmt.Sprintf("Reserva: %s", req.ServiceName),
		Amount:            req.Deposit,
		PayerEmail:        req.Email,
		ExternalReference: reference,
	})
	if err != nil {
		// paymentRefFailed: liberar de inmediato, el turno no puede quedar tomado
		m.releaseLocked(ctx)
		m.state = StateSelecting
		return "", httperr.ErrBusiness(httperr.CodePaymentGatewayError)
	}

	m.reference = reference
	m.redirectURL = pref.RedirectURL
	m.state = StateAwaitingPayment

	pollCtx, cancel := context.WithCancel(context.Background())
	m.stopPoll = cancel
	go m.poller.Run(pollCtx, m.hold, m.reference, m)

	return pref.RedirectURL, nil
}

// Cancel sigue exactamente el mismo camino de liberación que el
// vencimiento: detiene el poller, borra el evento y vuelve a Selecting.
func (m *Machine) Cancel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchLocked()

	switch m.state {
	case StateHoldPending, StateAwaitingPayment:
		m.cancelPollLocked()
		m.releaseLocked(ctx)
		m.state = StateSelecting
		return nil
	case StateIdle, StateSelecting, StateExpired:
		m.state = StateSelecting
		return nil
	default:
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
}

// Nudge ejecuta una verificación de conciliación inmediata. Es el
// camino rápido cuando el cliente vuelve del proveedor con
// status=approved; la consulta directa sigue siendo la autoridad.
func (m *Machine) Nudge(ctx context.Context) {
	m.mu.Lock()
	m.touchLocked()
	hold := m.hold
	reference := m.reference
	waiting := m.state == StateAwaitingPayment
	m.mu.Unlock()

	if !waiting || hold == nil {
		return
	}
	m.poller.Tick(ctx, hold, reference, m)
}

// ===============================
// Callbacks del poller
// ===============================

// Approved es invocado a lo sumo una vez por corrida del poller, pero un
// Nudge puede duplicarlo: el chequeo de estado garantiza una sola
// confirmación por hold; lo demás es no-op.
func (m *Machine) Approved(ctx context.Context, paymentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingPayment {
		return
	}
	m.state = StateConfirming

	// El poller se detiene recién después de confirmar: cancelar antes
	// mataría el mismo contexto con el que vamos a parchear el evento.
	defer m.cancelPollLocked()

	err := m.deps.Holds.Confirm(ctx, m.hold, paymentID)
	switch {
	case err == nil:
		m.paymentID = paymentID
		m.state = StateConfirmed
		m.recordLocked(ctx, paymentID)
		go m.deps.Notifier.BookingConfirmed(context.Background(), m.hold.Request, paymentID)

	case httperr.IsBusiness(err, httperr.CodeHoldExpired),
		httperr.IsBusiness(err, httperr.CodeInvalidState):
		// la aprobación llegó tarde: el hold ya no es confirmable
		m.releaseLocked(ctx)
		m.state = StateExpired

	default:
		// Pago capturado, calendario sin actualizar. Jamás silencioso.
		m.paymentID = paymentID
		m.state = StateConfirmedUnsynced
		m.deps.Alerts.Dispatch(alerts.Event{
			Kind:      alerts.KindConfirmSync,
			EventID:   m.hold.EventID,
			PaymentID: paymentID,
			Detail:    fmt.Sprintf("pago aprobado pero el evento no pudo confirmarse: %v", err),
		})
	}
}

func (m *Machine) TimedOut(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingPayment {
		return
	}
	m.releaseLocked(ctx)
	m.cancelPollLocked()
	m.state = StateExpired
}

func (m *Machine) Ambiguous(matches int) {
	m.mu.Lock()
	eventID := ""
	if m.hold != nil {
		eventID = m.hold.EventID
	}
	m.mu.Unlock()

	m.deps.Alerts.Dispatch(alerts.Event{
		Kind:    alerts.KindAmbiguous,
		EventID: eventID,
		Detail:  fmt.Sprintf("%d pagos aprobados para una misma referencia; se tomó el primero", matches),
	})
}

// ===============================
// Helpers (requieren m.mu tomado)
// ===============================

func (m *Machine) cancelPollLocked() {
	if m.stopPoll != nil {
		m.stopPoll()
		m.stopPoll = nil
	}
}

// touchLocked marca actividad del cliente; decide cuándo la sesión es
// descartable por inactividad.
func (m *Machine) touchLocked() {
	m.touched = m.deps.Clock.Now()
}

func (m *Machine) releaseLocked(ctx context.Context) {
	if m.hold == nil {
		return
	}
	if err := m.deps.Holds.Release(ctx, m.hold); err != nil {
		// El evento provisorio sigue bloqueando el turno: alerta para
		// que el operador lo borre a mano.
		m.deps.Alerts.Dispatch(alerts.Event{
			Kind:    alerts.KindReleaseFailure,
			EventID: m.hold.EventID,
			Detail:  fmt.Sprintf("no se pudo liberar el hold de la sesión %s: %v", m.id, err),
		})
	}
}

func (m *Machine) recordLocked(ctx context.Context, paymentID string) {
	if m.deps.Bookings == nil {
		return
	}

	start, end, err := m.hold.Request.Interval(m.deps.Loc)
	if err != nil {
		return
	}

	record := &models.Booking{
		EventID:     m.hold.EventID,
		PaymentID:   paymentID,
		ClientName:  m.hold.Request.ClientName,
		ClientEmail: m.hold.Request.Email,
		ClientPhone: m.hold.Request.Phone,
		ServiceID:   m.hold.Request.ServiceID,
		ServiceName: m.hold.Request.ServiceName,
		StartTime:   start,
		EndTime:     end,
		Deposit:     m.hold.Request.Deposit,
		TotalPrice:  m.hold.Request.TotalPrice,
		Balance:     m.hold.Request.Balance,
	}
	if err := m.deps.Bookings.SaveConfirmed(ctx, record); err != nil {
		// el calendario sigue siendo la agenda de verdad
		log.Printf("session %s: registro local de reserva falló: %v", m.id, err)
	}
}

func validateContact(in BookInput) error {
	if strings.TrimSpace(in.ClientName) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Phone) == "" {
		return httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}
	if !strings.Contains(in.Email, "@") {
		return httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}
	if !validators.IsPhoneValid(in.Phone) {
		return httperr.ErrBusiness(httperr.CodeInvalidRequest)
	}
	return nil
}

// ===============================
// Snapshot
// ===============================

type Snapshot struct {
	SessionID        string                  `json:"session_id"`
	State            State                   `json:"state"`
	Service          *domain.ServiceOffering `json:"service,omitempty"`
	Request          *domain.BookingRequest  `json:"request,omitempty"`
	RedirectURL      string                  `json:"redirect_url,omitempty"`
	PaymentID        string                  `json:"payment_id,omitempty"`
	SecondsRemaining int                     `json:"seconds_remaining"`
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchLocked()

	snap := Snapshot{
		SessionID:   m.id,
		State:       m.state,
		Service:     m.service,
		RedirectURL: m.redirectURL,
		PaymentID:   m.paymentID,
	}
	if m.hold != nil {
		req := m.hold.Request
		snap.Request = &req
		if m.state == StateAwaitingPayment || m.state == StateHoldPending {
			snap.SecondsRemaining = m.hold.SecondsRemaining(m.deps.Clock.Now())
		}
	}
	return snap
}

func (m *Machine) holdEventID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hold == nil {
		return ""
	}
	return m.hold.EventID
}

// reapable decide si la sesión puede descartarse: las terminales tras
// una ventana de gracia (el cliente todavía consulta el resultado), el
// resto tras el TTL de inactividad. Nunca con un pago en curso.
func (m *Machine) reapable(now time.Time, idleTTL, linger time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idle := now.Sub(m.touched)
	switch m.state {
	case StateHoldPending, StateAwaitingPayment, StateConfirming:
		return false
	case StateConfirmed, StateConfirmedUnsynced, StateExpired:
		return idle >= linger
	default:
		return idle >= idleTTL
	}
}
