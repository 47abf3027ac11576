package session

import (
	"context"
	"log"
	"time"

	"github.com/reservaestilo/booking-api/internal/clock"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
)

// Events son las salidas del poller de conciliación hacia la máquina
// de estados de la sesión.
type Events interface {
	Approved(ctx context.Context, paymentID string)
	TimedOut(ctx context.Context)
	Ambiguous(matches int)
}

// Poller pregunta al gateway de pagos, en un intervalo fijo, si la
// referencia pendiente ya fue aprobada. Es un ticker cancelable, nunca
// un sleep bloqueante: una sesión esperando no frena a las demás.
type Poller struct {
	payments domain.PaymentGateway
	clock    clock.Clock
	interval time.Duration
}

func (p *Poller) Run(ctx context.Context, hold *domain.Hold, reference string, ev Events) {
	interval := p.interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.Tick(ctx, hold, reference, ev) {
				return
			}
		}
	}
}

// Tick ejecuta una verificación y retorna true cuando el poller debe
// detenerse. El vencimiento manda: se evalúa antes de consultar, y un
// error transitorio del gateway solo significa "seguir esperando": el
// reloj del TTL corre desde la creación del hold y nada lo extiende.
func (p *Poller) Tick(ctx context.Context, hold *domain.Hold, reference string, ev Events) bool {
	if hold.Expired(p.clock.Now()) {
		ev.TimedOut(ctx)
		return true
	}

	res, err := p.payments.QueryApproved(ctx, reference)
	if err != nil {
		log.Printf("poller: consulta de pago falló, se reintenta: %v", err)
		return false
	}
	if !res.Approved {
		return false
	}

	if res.Matches > 1 {
		ev.Ambiguous(res.Matches)
	}
	ev.Approved(ctx, res.PaymentID)
	return true
}
