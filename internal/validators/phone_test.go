package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneValid(t *testing.T) {
	valid := []string{
		"+56911112222",
		"+56 9 1111 2222",
		"9-1111-2222",
		"  +56911112222  ",
	}
	for _, phone := range valid {
		assert.True(t, IsPhoneValid(phone), "debería aceptar %q", phone)
	}

	invalid := []string{
		"",
		"1234567",          // pocos dígitos
		"+56 9 abcd 2222",  // letras
		"(569) 1111-2222",  // paréntesis
		"9 1111 2222 ext5", // sufijo
	}
	for _, phone := range invalid {
		assert.False(t, IsPhoneValid(phone), "debería rechazar %q", phone)
	}
}
