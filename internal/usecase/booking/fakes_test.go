package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

// fakeCalendar simula el calendario externo: cada evento insertado pasa
// a ser un intervalo ocupado visible de inmediato (read-after-write).
type fakeCalendar struct {
	mu      sync.Mutex
	nextID  int
	events  map[string]domain.EventInput
	patches map[string]domain.EventPatch

	inserts int
	deletes int

	failList   bool
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

	if f.failList {
		return nil, errors.New("calendar down")
	}

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
	f.inserts++
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

	// idempotente: borrar lo inexistente no es error
	if _, ok := f.events[eventID]; ok {
		delete(f.events, eventID)
		f.deletes++
	}
	return nil
}

type fakeCatalog struct {
	services map[string]domain.ServiceOffering
}

func (f *fakeCatalog) List(ctx context.Context) ([]domain.ServiceOffering, error) {
	var out []domain.ServiceOffering
	for _, s := range f.services {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCatalog) ByID(ctx context.Context, id string) (domain.ServiceOffering, error) {
	s, ok := f.services[id]
	if !ok {
		return domain.ServiceOffering{}, httperr.ErrBusiness(httperr.CodeServiceNotFound)
	}
	return s, nil
}
