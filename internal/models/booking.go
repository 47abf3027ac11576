package models

import "time"

// Booking es el registro local de una reserva ya confirmada. El calendario
// externo sigue siendo la agenda de verdad; esta fila existe para que el
// operador pueda listar su día sin consultar el calendario.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EventID   string `gorm:"size:255;uniqueIndex;not null" json:"event_id"`
	PaymentID string `gorm:"size:100" json:"payment_id"`

	ClientName  string `gorm:"size:100;not null" json:"client_name"`
	ClientEmail string `gorm:"size:100" json:"client_email"`
	ClientPhone string `gorm:"size:20" json:"client_phone"`

	ServiceID   string `gorm:"size:100" json:"service_id"`
	ServiceName string `gorm:"size:100;not null" json:"service_name"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Deposit    int `json:"deposit"`
	TotalPrice int `json:"total_price"`
	Balance    int `json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
