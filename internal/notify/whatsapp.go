package notify

import (
	"fmt"
	"net/url"
)

// WhatsAppLink arma el deep link wa.me con un mensaje prellenado para
// consultar por un servicio. base es el link configurado (https://wa.me/<fono>).
func WhatsAppLink(base, serviceName string) string {
	msg := "Hola! Quiero consultar por una reserva."
	if serviceName != "" {
		msg = fmt.Sprintf("Hola! Quiero consultar por el servicio %q.", serviceName)
	}
	return base + "?text=" + url.QueryEscape(msg)
}
