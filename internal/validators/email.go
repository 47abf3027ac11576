package validators

import (
	"net"
	"strings"
)

// IsEmailDomainValid comprueba que el dominio del correo exista de
// verdad: registros MX, o resolución directa como respaldo (dominios
// chicos sin MX explícito). Es una consulta DNS en vivo, demasiado
// lenta para el camino de la reserva: solo protege el envío de la
// confirmación, donde un fallo no cuesta nada.
func IsEmailDomainValid(email string) bool {
	domain := emailDomain(email)
	if domain == "" {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	ips, err := net.LookupIP(domain)
	return err == nil && len(ips) > 0
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
