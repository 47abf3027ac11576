package models

import "time"

// AlertLog registra las anomalías que requieren intervención manual:
// pago capturado sin calendario sincronizado, o múltiples pagos
// aprobados para una misma referencia.
type AlertLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Kind      string `gorm:"size:50;not null" json:"kind"`
	EventID   string `gorm:"size:255" json:"event_id"`
	PaymentID string `gorm:"size:100" json:"payment_id"`
	Detail    string `gorm:"type:text" json:"detail"`

	Resolved   bool       `gorm:"default:false" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at"`

	CreatedAt time.Time `json:"created_at"`
}
