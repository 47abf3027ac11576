package validators

import "strings"

// IsPhoneValid acepta números con prefijo internacional opcional,
// espacios y guiones. Exige al menos 8 dígitos.
func IsPhoneValid(phone string) bool {
	cleaned := strings.TrimPrefix(strings.TrimSpace(phone), "+")

	digits := 0
	for _, r := range cleaned {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-':
			// separadores permitidos
		default:
			return false
		}
	}

	return digits >= 8
}
