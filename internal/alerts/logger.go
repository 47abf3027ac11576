package alerts

import (
	"gorm.io/gorm"

	"github.com/reservaestilo/booking-api/internal/models"
)

type Kind string

const (
	// KindConfirmSync: el pago fue capturado pero el calendario no pudo
	// actualizarse. La más grave: hay dinero movido sin recurso asignado.
	KindConfirmSync Kind = "confirm_sync_failure"

	// KindAmbiguous: más de un pago aprobado coincide con una referencia.
	KindAmbiguous Kind = "reconciliation_ambiguous"

	// KindReleaseFailure: el evento provisorio no pudo borrarse y sigue
	// bloqueando el turno en el calendario; hay que limpiarlo a mano.
	KindReleaseFailure Kind = "release_failure"
)

type Event struct {
	Kind      Kind
	EventID   string
	PaymentID string
	Detail    string
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ev Event) error {
	row := models.AlertLog{
		Kind:      string(ev.Kind),
		EventID:   ev.EventID,
		PaymentID: ev.PaymentID,
		Detail:    ev.Detail,
	}

	return l.db.Create(&row).Error
}
