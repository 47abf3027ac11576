package booking

import (
	"context"
	"time"
)

// ===============================
// Puertos hacia colaboradores externos
// ===============================

type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

type EventPatch struct {
	Summary     string
	Description string
	ColorID     string
}

// CalendarGateway es el calendario externo: única fuente de verdad sobre
// qué intervalos están ocupados. Cada mutación es una operación simple
// identificada por el id del evento; no hay transacciones.
type CalendarGateway interface {
	ListBusy(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
	InsertEvent(ctx context.Context, ev EventInput) (string, error)
	PatchEvent(ctx context.Context, eventID string, patch EventPatch) error

	// DeleteEvent es idempotente: borrar un evento inexistente no es error.
	DeleteEvent(ctx context.Context, eventID string) error
}

type PreferenceInput struct {
	Title             string
	Amount            int
	PayerEmail        string
	ExternalReference string
}

type PreferenceRef struct {
	RedirectURL string
	GatewayID   string
}

// ApprovalResult reporta cuántos pagos aprobados coinciden con la
// referencia. Más de uno es una anomalía que el caller debe informar.
type ApprovalResult struct {
	Approved  bool
	PaymentID string
	Matches   int
}

type PaymentGateway interface {
	CreatePreference(ctx context.Context, in PreferenceInput) (PreferenceRef, error)
	QueryApproved(ctx context.Context, externalReference string) (ApprovalResult, error)
}
