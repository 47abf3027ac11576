package booking

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PaymentReference es el token opaco que viaja como external_reference
// hacia Mercado Pago y vuelve intacto en la redirección. Codifica la
// solicitud completa más el evento del hold, de modo que el sistema no
// depende de estado en memoria para retomar una reserva a mitad de pago.
type PaymentReference struct {
	Request BookingRequest
	EventID string
}

type referencePayload struct {
	BookingRequest
	EventID string `json:"evento"`
}

// Encode serializa la referencia como base64 URL-safe de un JSON.
// Debe sobrevivir byte a byte el viaje de ida y vuelta por el proveedor.
func (p PaymentReference) Encode() (string, error) {
	raw, err := json.Marshal(referencePayload{
		BookingRequest: p.Request,
		EventID:        p.EventID,
	})
	if err != nil {
		return "", fmt.Errorf("codificando referencia de pago: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func DecodeReference(token string) (PaymentReference, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return PaymentReference{}, fmt.Errorf("decodificando referencia de pago: %w", err)
	}

	var payload referencePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return PaymentReference{}, fmt.Errorf("decodificando referencia de pago: %w", err)
	}

	return PaymentReference{
		Request: payload.BookingRequest,
		EventID: payload.EventID,
	}, nil
}
