package notify

import (
	"context"

	"github.com/reservaestilo/booking-api/internal/domain/booking"
)

// Notifier avisa al cliente que su reserva quedó confirmada.
// Mejor esfuerzo: un fallo aquí nunca afecta la reserva.
type Notifier interface {
	BookingConfirmed(ctx context.Context, req booking.BookingRequest, paymentID string)
}

type Noop struct{}

func (Noop) BookingConfirmed(context.Context, booking.BookingRequest, string) {}
