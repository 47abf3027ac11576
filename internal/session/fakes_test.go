package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reservaestilo/booking-api/internal/alerts"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/models"
	"github.com/reservaestilo/booking-api/internal/notify"
)

// fakeCalendar: calendario en memoria con read-after-write, suficiente
// para observar inserciones, parches y borrados del ciclo de un hold.
type fakeCalendar struct {
	mu      sync.Mutex
	nextID  int
	events  map[string]domain.EventInput
	patches map[string]domain.EventPatch
	deletes int

	failInsert bool
	failPatch  bool
	failDelete bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events:  make(map[string]domain.EventInput),
		patches: make(map[string]domain.EventPatch),
	}
}

func (f *fakeCalendar) ListBusy(ctx context.Context, from, to time.Time) ([]domain.BusyInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var busy []domain.BusyInterval
	for _, ev := range f.events {
		if ev.Start.Before(to) && ev.End.After(from) {
			busy = append(busy, domain.BusyInterval{Start: ev.Start, End: ev.End})
		}
	}
	return busy, nil
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, ev domain.EventInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failInsert {
		return "", errors.New("calendar down")
	}
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	f.events[id] = ev
	return id, nil
}

func (f *fakeCalendar) PatchEvent(ctx context.Context, eventID string, patch domain.EventPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPatch {
		return errors.New("calendar down")
	}
	if _, ok := f.events[eventID]; !ok {
		return errors.New("event not found")
	}
	f.patches[eventID] = patch
	return nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete {
		return errors.New("calendar down")
	}
	if _, ok := f.events[eventID]; ok {
		delete(f.events, eventID)
		f.deletes++
	}
	return nil
}

func (f *fakeCalendar) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func (f *fakeCalendar) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// fakePayments controla a mano qué responde el gateway de pagos.
type fakePayments struct {
	mu sync.Mutex

	failCreate  bool
	queryErr    error
	result      domain.ApprovalResult
	createCalls int
	queryCalls  int
	lastRef     string
}

func (f *fakePayments) CreatePreference(ctx context.Context, in domain.PreferenceInput) (domain.PreferenceRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	f.lastRef = in.ExternalReference
	if f.failCreate {
		return domain.PreferenceRef{}, errors.New("mercadopago down")
	}
	return domain.PreferenceRef{
		RedirectURL: "https://pago.example/init/" + fmt.Sprint(f.createCalls),
		GatewayID:   fmt.Sprintf("pref-%d", f.createCalls),
	}, nil
}

func (f *fakePayments) QueryApproved(ctx context.Context, externalReference string) (domain.ApprovalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryCalls++
	if f.queryErr != nil {
		return domain.ApprovalResult{}, f.queryErr
	}
	return f.result, nil
}

func (f *fakePayments) approve(paymentID string, matches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = domain.ApprovalResult{Approved: true, PaymentID: paymentID, Matches: matches}
}

// fakeAlerts acumula las alertas despachadas, sin cola ni goroutine.
type fakeAlerts struct {
	mu     sync.Mutex
	events []alerts.Event
}

func (f *fakeAlerts) Dispatch(ev alerts.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeAlerts) byKind(kind alerts.Kind) []alerts.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []alerts.Event
	for _, ev := range f.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type fakeRecorder struct {
	mu    sync.Mutex
	saved []*models.Booking
}

func (f *fakeRecorder) SaveConfirmed(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, b)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// chanNotifier publica cada confirmación en un canal para que el test
// pueda esperarla (la máquina notifica en una goroutine propia).
type chanNotifier struct {
	confirmed chan string
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{confirmed: make(chan string, 4)}
}

func (n *chanNotifier) BookingConfirmed(ctx context.Context, req domain.BookingRequest, paymentID string) {
	n.confirmed <- paymentID
}

var _ notify.Notifier = (*chanNotifier)(nil)
