package httperr

import "errors"

// Well-known business error codes surfaced by the scheduling engine.
const (
	CodeSlotUnavailable  = "slot_unavailable"
	CodeAlreadyPostponed = "already_postponed"
	CodeBookingNotFound  = "booking_not_found"
	CodeRuleNotFound     = "rule_not_found"
	CodeInvalidSlotTime  = "invalid_slot_time"
	CodePastDate         = "past_date"
	CodeInvalidState     = "invalid_state"
	CodePaymentFailed    = "payment_failed"
	CodeInvalidRule      = "invalid_rule"
)

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

// BusinessCode extracts the code from a business error, or "" if err is not one.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
