package booking

import (
	"time"

	"github.com/reservaestilo/booking-api/internal/httperr"
)

// ===============================
// Hold Status
// ===============================

type HoldState string

const (
	HoldPending   HoldState = "pending"
	HoldConfirmed HoldState = "confirmed"
	HoldReleased  HoldState = "released"
)

// ===============================
// Validations
// ===============================

// CanConfirm define si un hold puede promoverse a reserva confirmada.
// Confirmar un hold vencido es un error del llamador: debió liberarlo antes.
func CanConfirm(h *Hold, now time.Time) error {
	if h.State != HoldPending {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	if !now.Before(h.ExpiresAt) {
		return httperr.ErrBusiness(httperr.CodeHoldExpired)
	}
	return nil
}

// CanRelease define si un hold requiere liberar su evento externo.
// Liberar un hold ya liberado no es un error (idempotente).
func CanRelease(h *Hold) bool {
	return h.State == HoldPending
}

func InitialHoldState() HoldState {
	return HoldPending
}
