package httperr

import "errors"

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// ===============================
// Códigos de negocio del motor de reservas
// ===============================

const (
	CodeInvalidRequest          = "invalid_request"
	CodeServiceNotFound         = "service_not_found"
	CodeSlotTaken               = "slot_taken"
	CodeSessionNotFound         = "session_not_found"
	CodeInvalidState            = "invalid_state"
	CodeCalendarUnavailable     = "calendar_unavailable"
	CodePaymentGatewayError     = "payment_gateway_error"
	CodeHoldExpired             = "hold_expired"
	CodeReconciliationAmbiguous = "reconciliation_ambiguous"
	CodeConfirmSyncFailure      = "confirm_sync_failure"
)
