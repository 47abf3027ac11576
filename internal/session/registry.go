package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reservaestilo/booking-api/internal/httperr"
)

const (
	sweepInterval  = time.Minute
	sessionIdleTTL = 30 * time.Minute
	terminalLinger = 10 * time.Minute
)

// Registry mantiene las sesiones activas del proceso. Cada sesión tiene
// su propia máquina; el registry solo las encuentra por id o por evento.
type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Machine
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Machine),
	}
}

func (r *Registry) Create() *Machine {
	m := newMachine(uuid.NewString(), r.deps)

	r.mu.Lock()
	r.sessions[m.ID()] = m
	r.mu.Unlock()

	return m
}

func (r *Registry) Get(id string) (*Machine, error) {
	r.mu.RLock()
	m, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeSessionNotFound)
	}
	return m, nil
}

// FindByEvent ubica la sesión dueña de un hold a partir del id del
// evento embebido en la referencia de pago.
func (r *Registry) FindByEvent(eventID string) (*Machine, bool) {
	if eventID == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.sessions {
		if m.holdEventID() == eventID {
			return m, true
		}
	}
	return nil, false
}

// Run barre periódicamente las sesiones descartables: las terminales
// tras su ventana de gracia y las abandonadas tras el TTL de
// inactividad. Sesiones con un pago en curso jamás se tocan: su poller
// las lleva solo a un estado terminal. Bloquea hasta cancelar ctx.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(r.deps.Clock.Now())
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.sessions {
		if !m.reapable(now, sessionIdleTTL, terminalLinger) {
			continue
		}
		m.mu.Lock()
		m.cancelPollLocked()
		m.mu.Unlock()
		delete(r.sessions, id)
	}
}

// Close detiene los pollers de todas las sesiones (apagado del proceso).
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.sessions {
		m.mu.Lock()
		m.cancelPollLocked()
		m.mu.Unlock()
	}
}
