package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/validators"
)

type EmailSender struct {
	host     string
	port     string
	from     string
	password string
}

func NewEmailSender(host, port, from, password string) *EmailSender {
	return &EmailSender{host: host, port: port, from: from, password: password}
}

func (s *EmailSender) BookingConfirmed(ctx context.Context, req booking.BookingRequest, paymentID string) {
	if req.Email == "" {
		return
	}
	if !validators.IsEmailDomainValid(req.Email) {
		log.Printf("notify: dominio de %s sin MX, se omite el envío", req.Email)
		return
	}

	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Reserva confirmada\r\n\r\n"+
			"Hola %s!\r\n\r\n"+
			"Tu reserva de %s quedó confirmada para el %s a las %s.\r\n"+
			"Abono recibido: $%d (pago %s). Saldo pendiente: $%d.\r\n\r\n"+
			"Te esperamos!\r\n",
		s.from, req.Email,
		req.ClientName,
		req.ServiceName, req.Date, req.Time,
		req.Deposit, paymentID, req.Balance,
	)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{req.Email}, []byte(body)); err != nil {
		// mejor esfuerzo
		log.Printf("notify: email a %s falló: %v", req.Email, err)
	}
}
